package sync

import (
	"sort"
	"strings"

	"github.com/kpessa/yearview/internal/event"
)

// Deduplicate is the corrective sweep for duplicates introduced by racing
// sync passes. It groups remote-linked events by remote key and by full
// field signature, keeps one survivor per group, and plans deletion of
// the rest. Running it on an already-deduplicated set plans nothing.
func (e *Engine) Deduplicate(locals []event.Event, categories []event.Category) []Intent {
	remoteCategoryIDs := make(map[string]bool)
	for _, c := range categories {
		if c.IsRemoteBacked() {
			remoteCategoryIDs[c.ID] = true
		}
	}

	byRemoteKey := make(map[string][]event.Event)
	bySignature := make(map[string][]event.Event)
	for _, local := range locals {
		remoteLinked := local.GoogleEventID != "" ||
			local.GoogleCalendarID != "" ||
			remoteCategoryIDs[local.CategoryID]
		if !remoteLinked {
			continue
		}

		if local.GoogleEventID != "" {
			key := local.RemoteKey()
			byRemoteKey[key] = append(byRemoteKey[key], local)
		}

		signature := strings.Join([]string{
			local.CategoryID, local.Title, local.Date,
			local.EndDate, local.StartTime, local.EndTime,
		}, "::")
		bySignature[signature] = append(bySignature[signature], local)
	}

	doomed := make(map[string]bool)
	condemn := func(bucket []event.Event) {
		if len(bucket) <= 1 {
			return
		}
		sorted := append([]event.Event(nil), bucket...)
		// Survivor order: a linked record beats an unlinked one, then the
		// oldest record wins, then id keeps the choice deterministic. The
		// same comparator orders both grouping passes so they agree on
		// survivors when their groups overlap.
		sort.Slice(sorted, func(i, j int) bool {
			a, b := sorted[i], sorted[j]
			if (a.GoogleEventID != "") != (b.GoogleEventID != "") {
				return a.GoogleEventID != ""
			}
			if a.CreatedAt != b.CreatedAt {
				return a.CreatedAt < b.CreatedAt
			}
			return a.ID < b.ID
		})
		for _, duplicate := range sorted[1:] {
			doomed[duplicate.ID] = true
		}
	}

	for _, bucket := range byRemoteKey {
		condemn(bucket)
	}
	for _, bucket := range bySignature {
		condemn(bucket)
	}

	if len(doomed) == 0 {
		return nil
	}
	ids := make([]string, 0, len(doomed))
	for id := range doomed {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	intents := make([]Intent, 0, len(ids))
	for _, id := range ids {
		intents = append(intents, Intent{Op: OpDelete, Entity: EntityEvent, ID: id})
	}
	return intents
}
