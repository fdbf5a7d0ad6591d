package event

import "strings"

// UserSettings holds per-user display preferences. VisibleCategories is a
// comma-joined id list; the empty string means every category is visible,
// so a user who never hides anything needs no bookkeeping as categories
// come and go.
type UserSettings struct {
	UserID            string `gorm:"column:user_id;primaryKey;size:190;not null" json:"userId"`
	WeekStartDay      int    `gorm:"column:week_start_day;not null;default:0" json:"weekStartDay"`
	ShowUSHolidays    bool   `gorm:"column:show_us_holidays;not null;default:true" json:"showUSHolidays"`
	ShowIndiaHolidays bool   `gorm:"column:show_india_holidays;not null;default:false" json:"showIndiaHolidays"`
	VisibleCategories string `gorm:"column:visible_categories;type:text" json:"-"`
	UpdatedAt         int64  `gorm:"column:updated_at_ms;not null" json:"updatedAt"`
}

// TableName provides the explicit table binding for GORM.
func (UserSettings) TableName() string {
	return "user_settings"
}

// VisibleCategorySet returns the visible ids as a set, or nil when every
// category is visible.
func (s UserSettings) VisibleCategorySet() map[string]bool {
	if s.VisibleCategories == "" {
		return nil
	}
	set := make(map[string]bool)
	for _, id := range strings.Split(s.VisibleCategories, ",") {
		if id != "" {
			set[id] = true
		}
	}
	return set
}

// SetVisibleCategories replaces the stored visible set. An empty list
// restores the everything-visible default.
func (s *UserSettings) SetVisibleCategories(ids []string) {
	s.VisibleCategories = strings.Join(ids, ",")
}

// AddVisibleCategories marks the given ids visible. When every category is
// already visible there is nothing to record.
func (s *UserSettings) AddVisibleCategories(ids []string) {
	if s.VisibleCategories == "" {
		return
	}
	set := s.VisibleCategorySet()
	for _, id := range ids {
		if id == "" || set[id] {
			continue
		}
		set[id] = true
		s.VisibleCategories += "," + id
	}
}

// RemoveVisibleCategories drops the given ids from the visible set.
func (s *UserSettings) RemoveVisibleCategories(ids []string) {
	set := s.VisibleCategorySet()
	if set == nil {
		return
	}
	for _, id := range ids {
		delete(set, id)
	}
	var kept []string
	for _, id := range strings.Split(s.VisibleCategories, ",") {
		if set[id] {
			kept = append(kept, id)
			set[id] = false
		}
	}
	s.VisibleCategories = strings.Join(kept, ",")
}
