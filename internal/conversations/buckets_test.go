// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package conversations

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/jeranaias/insight-tui/internal/model"
)

func conv(id string, ts time.Time) model.Conversation {
	return model.Conversation{ID: id, Title: id, LastInteraction: ts}
}

func TestCategorize(t *testing.T) {
	// Mid-afternoon local time so day boundaries are unambiguous.
	now := time.Date(2025, 6, 15, 15, 0, 0, 0, time.UTC)

	input := []model.Conversation{
		conv("this-morning", time.Date(2025, 6, 15, 8, 0, 0, 0, time.UTC)),
		conv("midnight-today", time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)),
		conv("late-yesterday", time.Date(2025, 6, 14, 23, 59, 0, 0, time.UTC)),
		conv("three-days-ago", time.Date(2025, 6, 12, 12, 0, 0, 0, time.UTC)),
		conv("two-weeks-ago", time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)),
		conv("three-months-ago", time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)),
		conv("two-years-ago", time.Date(2023, 6, 15, 12, 0, 0, 0, time.UTC)),
	}

	b := Categorize(input, now)

	ids := func(convs []model.Conversation) []string {
		var out []string
		for _, c := range convs {
			out = append(out, c.ID)
		}
		return out
	}

	assert.Equal(t, []string{"this-morning", "midnight-today"}, ids(b.Today))
	assert.Equal(t, []string{"late-yesterday"}, ids(b.Yesterday))
	assert.Equal(t, []string{"three-days-ago"}, ids(b.Previous7Days))
	assert.Equal(t, []string{"two-weeks-ago"}, ids(b.Previous30Days))
	assert.Equal(t, []string{"three-months-ago"}, ids(b.PreviousYear))
	// Older than a year drops out entirely.
	assert.NotContains(t, ids(b.PreviousYear), "two-years-ago")
}

func TestCategorize_FutureTimestampIsToday(t *testing.T) {
	now := time.Date(2025, 6, 15, 15, 0, 0, 0, time.UTC)
	b := Categorize([]model.Conversation{
		conv("skewed", now.Add(2*time.Hour)),
	}, now)
	assert.Len(t, b.Today, 1)
}

func TestCategorize_Empty(t *testing.T) {
	b := Categorize(nil, time.Now())
	assert.True(t, b.Empty())
}

func TestCategorize_LocalDayBoundary(t *testing.T) {
	// Just after midnight: something from two minutes ago is "Yesterday".
	loc := time.FixedZone("UTC+2", 2*60*60)
	now := time.Date(2025, 6, 15, 0, 1, 0, 0, loc)

	b := Categorize([]model.Conversation{
		conv("pre-midnight", now.Add(-2*time.Minute)),
	}, now)

	assert.Empty(t, b.Today)
	assert.Len(t, b.Yesterday, 1)
}
