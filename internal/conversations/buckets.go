// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package conversations

import (
	"time"

	"github.com/jeranaias/insight-tui/internal/model"
)

// =============================================================================
// RECENCY BUCKETS
// =============================================================================

// Buckets groups conversations by how recently they were touched. Within a
// bucket the input order is preserved, so the server's recency sort carries
// through to the sidebar.
type Buckets struct {
	Today          []model.Conversation
	Yesterday      []model.Conversation
	Previous7Days  []model.Conversation
	Previous30Days []model.Conversation
	PreviousYear   []model.Conversation
}

// Empty reports whether no conversation landed in any bucket.
func (b Buckets) Empty() bool {
	return len(b.Today) == 0 && len(b.Yesterday) == 0 &&
		len(b.Previous7Days) == 0 && len(b.Previous30Days) == 0 &&
		len(b.PreviousYear) == 0
}

// startOfDay truncates t to local midnight.
func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// Categorize splits conversations into recency buckets relative to now.
// Boundaries are local calendar days, not rolling 24-hour windows, so a
// conversation from 23:59 yesterday is "Yesterday" at 00:01 today. "Today"
// has no upper bound; a future timestamp from clock skew still lands there.
// Anything older than a year is dropped from the sidebar.
func Categorize(convs []model.Conversation, now time.Time) Buckets {
	var (
		today     = startOfDay(now)
		yesterday = today.AddDate(0, 0, -1)
		week      = today.AddDate(0, 0, -7)
		month     = today.AddDate(0, 0, -30)
		year      = today.AddDate(-1, 0, 0)
	)

	var b Buckets
	for _, conv := range convs {
		ts := conv.LastInteraction.In(now.Location())
		switch {
		case !ts.Before(today):
			b.Today = append(b.Today, conv)
		case !ts.Before(yesterday):
			b.Yesterday = append(b.Yesterday, conv)
		case !ts.Before(week):
			b.Previous7Days = append(b.Previous7Days, conv)
		case !ts.Before(month):
			b.Previous30Days = append(b.Previous30Days, conv)
		case !ts.Before(year):
			b.PreviousYear = append(b.PreviousYear, conv)
		}
	}
	return b
}
