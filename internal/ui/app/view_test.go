// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package app

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/insight-tui/internal/model"
)

func dictAnswer(t *testing.T) model.Answer {
	t.Helper()
	return model.Answer{
		Kind: model.AnswerDict,
		Rows: []model.Row{
			{
				Columns: []string{"region", "trips"},
				Values:  map[string]string{"region": "North", "trips": "1042"},
			},
			{
				Columns: []string{"region", "trips"},
				Values:  map[string]string{"region": "South", "trips": "98"},
			},
		},
	}
}

func TestRenderTable(t *testing.T) {
	out := renderTable(dictAnswer(t), 80)
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")

	// Header, separator, two data rows, row count.
	require.Len(t, lines, 5)
	assert.Contains(t, lines[0], "region")
	assert.Contains(t, lines[0], "trips")
	// Column order follows the backend, not the alphabet of map keys.
	assert.Less(t, strings.Index(lines[0], "region"), strings.Index(lines[0], "trips"))
	assert.Contains(t, lines[2], "North")
	assert.Contains(t, lines[4], "2 rows")
}

func TestRenderTable_Empty(t *testing.T) {
	out := renderTable(model.Answer{Kind: model.AnswerDict}, 80)
	assert.Contains(t, out, "empty result")
}

func TestRenderTable_ClampsWideColumns(t *testing.T) {
	ans := model.Answer{
		Kind: model.AnswerDict,
		Rows: []model.Row{{
			Columns: []string{"note"},
			Values:  map[string]string{"note": strings.Repeat("x", 500)},
		}},
	}
	out := renderTable(ans, 40)
	for _, line := range strings.Split(out, "\n") {
		assert.LessOrEqual(t, len([]rune(line)), 60)
	}
}

func TestRenderFeedbackMarker(t *testing.T) {
	assert.Equal(t, "[+1]", renderFeedbackMarker(model.FeedbackLike))
	assert.Equal(t, "[-1]", renderFeedbackMarker(model.FeedbackDislike))
	assert.Equal(t, "", renderFeedbackMarker(model.FeedbackNone))
}
