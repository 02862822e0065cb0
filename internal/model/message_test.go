// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// ANSWER DECODING TESTS
// =============================================================================

func TestAnswer_UnmarshalText(t *testing.T) {
	var a Answer
	err := json.Unmarshal([]byte(`{"type":"TEXT","content":"Revenue grew 4% QoQ."}`), &a)
	require.NoError(t, err)
	assert.Equal(t, AnswerText, a.Kind)
	assert.Equal(t, "Revenue grew 4% QoQ.", a.Content)
	assert.Empty(t, a.Rows)
}

func TestAnswer_UnmarshalDictArray(t *testing.T) {
	raw := `{"type":"DICT","content":[
		{"region":"North","trips":1042,"on_time":true},
		{"region":"South","trips":980,"on_time":false}
	]}`

	var a Answer
	err := json.Unmarshal([]byte(raw), &a)
	require.NoError(t, err)
	require.Len(t, a.Rows, 2)

	// Column order must match document order, not Go map iteration order.
	assert.Equal(t, []string{"region", "trips", "on_time"}, a.ColumnOrder())
	assert.Equal(t, "North", a.Rows[0].Values["region"])
	assert.Equal(t, "1042", a.Rows[0].Values["trips"])
	assert.Equal(t, "false", a.Rows[1].Values["on_time"])
}

func TestAnswer_UnmarshalDictSingleObject(t *testing.T) {
	// The backend occasionally sends a bare object; it renders as one row.
	var a Answer
	err := json.Unmarshal([]byte(`{"type":"DICT","content":{"kpi":"load factor","value":0.87}}`), &a)
	require.NoError(t, err)
	require.Len(t, a.Rows, 1)
	assert.Equal(t, []string{"kpi", "value"}, a.Rows[0].Columns)
	assert.Equal(t, "0.87", a.Rows[0].Values["value"])
}

func TestAnswer_UnmarshalNullContent(t *testing.T) {
	var a Answer
	err := json.Unmarshal([]byte(`{"type":"TEXT","content":null}`), &a)
	require.NoError(t, err)
	assert.Empty(t, a.Content)
}

func TestAnswer_PlainText(t *testing.T) {
	text := NewTextAnswer("plain")
	assert.Equal(t, "plain", text.PlainText())

	dict := Answer{Kind: AnswerDict, Rows: []Row{
		{Columns: []string{"k"}, Values: map[string]string{"k": "v"}},
	}}
	assert.Contains(t, dict.PlainText(), `"k": "v"`)
}

func TestAnswer_RoundTrip(t *testing.T) {
	in := Answer{Kind: AnswerDict, Rows: []Row{
		{Columns: []string{"a"}, Values: map[string]string{"a": "1"}},
	}}
	data, err := json.Marshal(in)
	require.NoError(t, err)

	var out Answer
	require.NoError(t, json.Unmarshal(data, &out))
	assert.Equal(t, AnswerDict, out.Kind)
	require.Len(t, out.Rows, 1)
	assert.Equal(t, "1", out.Rows[0].Values["a"])
}

// =============================================================================
// MESSAGE TESTS
// =============================================================================

func TestMessage_DecodeWire(t *testing.T) {
	raw := `{
		"message_id": "m1",
		"question": {"type": "TEXT", "content": "What is KPI X?"},
		"answer": {"type": "TEXT", "content": "KPI X is 42."},
		"timestamp": "2025-06-01T09:30:00Z",
		"feedback": "LIKE"
	}`

	var m Message
	require.NoError(t, json.Unmarshal([]byte(raw), &m))
	assert.Equal(t, "m1", m.ID)
	assert.Equal(t, QuestionText, m.Question.Kind)
	assert.Equal(t, "What is KPI X?", m.Question.Content)
	assert.Equal(t, FeedbackLike, m.Feedback)
	assert.False(t, m.IsPlaceholder())
}

func TestNewWaitingMessage(t *testing.T) {
	m := NewWaitingMessage(NewTextQuestion("What is KPI X?"))
	assert.True(t, m.IsPlaceholder())
	assert.Equal(t, WaitingMessageID, m.ID)
	assert.Equal(t, "What is KPI X?", m.Question.Content)
	assert.Equal(t, WaitingAnswerText, m.Answer.Content)
}

func TestMessage_QuestionPreview(t *testing.T) {
	audio := Message{Question: NewAudioQuestion("AAAA")}
	assert.Equal(t, "[voice question]", audio.QuestionPreview(40))

	long := Message{Question: NewTextQuestion("a long question that keeps going and going")}
	got := long.QuestionPreview(20)
	assert.LessOrEqual(t, len([]rune(got)), 20)
	assert.Contains(t, got, "...")
}

func TestFeedback_Valid(t *testing.T) {
	assert.True(t, FeedbackLike.Valid())
	assert.True(t, FeedbackDislike.Valid())
	assert.False(t, FeedbackNone.Valid())
	assert.False(t, Feedback("MAYBE").Valid())
}

// =============================================================================
// CONVERSATION TESTS
// =============================================================================

func TestConversation_DisplayTitle(t *testing.T) {
	assert.Equal(t, "Q3 review", Conversation{Title: "Q3 review"}.DisplayTitle())
	assert.Equal(t, "Untitled conversation", Conversation{Title: "  "}.DisplayTitle())
}

func TestConversation_TitlePreview(t *testing.T) {
	c := Conversation{Title: "operational performance deep dive 2025"}
	got := c.TitlePreview(12)
	assert.LessOrEqual(t, len([]rune(got)), 12)
}
