// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures exchanged with the analytics
// assistant backend.
package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// WaitingMessageID is the sentinel ID of the transient placeholder message
// shown while a send is in flight. At most one message with this ID may exist
// in a rendered history at any time.
const WaitingMessageID = "waiting"

// WaitingAnswerText is the answer body displayed on the placeholder.
const WaitingAnswerText = "Waiting for response..."

// =============================================================================
// QUESTION / ANSWER KINDS
// =============================================================================

// QuestionKind identifies how a question was captured.
type QuestionKind string

const (
	QuestionText  QuestionKind = "TEXT"
	QuestionAudio QuestionKind = "AUDIO"
)

// AnswerKind identifies how an answer payload must be rendered.
type AnswerKind string

const (
	AnswerText  AnswerKind = "TEXT"
	AnswerDict  AnswerKind = "DICT"
	AnswerImage AnswerKind = "IMAGE"
)

// Feedback is a user annotation on a single message. The two values are
// mutually exclusive per message; the zero value means no feedback.
type Feedback string

const (
	FeedbackNone    Feedback = ""
	FeedbackLike    Feedback = "LIKE"
	FeedbackDislike Feedback = "DISLIKE"
)

// Valid reports whether f is one of the two settable feedback values.
func (f Feedback) Valid() bool {
	return f == FeedbackLike || f == FeedbackDislike
}

// =============================================================================
// QUESTION TYPE
// =============================================================================

// Question is the user-supplied half of a message. For AUDIO questions the
// content is base64-encoded raw audio with no media-type prefix.
type Question struct {
	Kind    QuestionKind `json:"type"`
	Content string       `json:"content"`
}

// NewTextQuestion creates a TEXT question.
func NewTextQuestion(content string) Question {
	return Question{Kind: QuestionText, Content: content}
}

// NewAudioQuestion creates an AUDIO question from a base64 payload.
// The caller must strip any "data:...;base64," media prefix first.
func NewAudioQuestion(base64Payload string) Question {
	return Question{Kind: QuestionAudio, Content: base64Payload}
}

// =============================================================================
// ANSWER TYPE
// =============================================================================

// Row is a single record of a DICT answer. Values is keyed by column name;
// Columns preserves the column order the backend emitted, which Go maps do
// not retain on their own.
type Row struct {
	Columns []string
	Values  map[string]string
}

// Answer is the backend-generated half of a message. Content holds the TEXT
// or IMAGE payload; Rows holds the decoded DICT payload.
type Answer struct {
	Kind    AnswerKind
	Content string
	Rows    []Row
}

// answerWire mirrors the backend JSON shape before the union is resolved.
type answerWire struct {
	Kind    AnswerKind      `json:"type"`
	Content json.RawMessage `json:"content"`
}

// UnmarshalJSON resolves the string-or-rows union on the answer content.
// DICT content may arrive as a single object or as an array of objects; a
// single object is treated as a one-row table, matching the backend.
func (a *Answer) UnmarshalJSON(data []byte) error {
	var wire answerWire
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}
	a.Kind = wire.Kind
	a.Content = ""
	a.Rows = nil

	if len(wire.Content) == 0 || string(wire.Content) == "null" {
		return nil
	}

	if wire.Kind == AnswerDict {
		rows, err := decodeRows(wire.Content)
		if err != nil {
			return fmt.Errorf("decoding DICT answer: %w", err)
		}
		a.Rows = rows
		return nil
	}

	var s string
	if err := json.Unmarshal(wire.Content, &s); err != nil {
		return fmt.Errorf("decoding %s answer: %w", wire.Kind, err)
	}
	a.Content = s
	return nil
}

// MarshalJSON emits the wire shape of the answer.
func (a Answer) MarshalJSON() ([]byte, error) {
	if a.Kind == AnswerDict {
		rows := make([]map[string]string, 0, len(a.Rows))
		for _, r := range a.Rows {
			rows = append(rows, r.Values)
		}
		return json.Marshal(struct {
			Kind    AnswerKind          `json:"type"`
			Content []map[string]string `json:"content"`
		}{a.Kind, rows})
	}
	return json.Marshal(struct {
		Kind    AnswerKind `json:"type"`
		Content string     `json:"content"`
	}{a.Kind, a.Content})
}

// decodeRows parses DICT content, keeping the backend's column order.
func decodeRows(raw json.RawMessage) ([]Row, error) {
	trimmed := bytes.TrimLeft(raw, " \t\r\n")
	if len(trimmed) == 0 {
		return nil, nil
	}

	// Single object: wrap as a one-row array.
	if trimmed[0] == '{' {
		row, err := decodeRow(trimmed)
		if err != nil {
			return nil, err
		}
		return []Row{row}, nil
	}

	var rawRows []json.RawMessage
	if err := json.Unmarshal(trimmed, &rawRows); err != nil {
		return nil, err
	}

	rows := make([]Row, 0, len(rawRows))
	for _, rr := range rawRows {
		row, err := decodeRow(rr)
		if err != nil {
			return nil, err
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// decodeRow walks one JSON object token by token so the key order survives.
func decodeRow(raw json.RawMessage) (Row, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return Row{}, err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return Row{}, fmt.Errorf("expected object, got %v", tok)
	}

	row := Row{Values: make(map[string]string)}
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return Row{}, err
		}
		key := keyTok.(string)

		var val any
		if err := dec.Decode(&val); err != nil {
			return Row{}, err
		}

		row.Columns = append(row.Columns, key)
		row.Values[key] = stringifyCell(val)
	}
	// Consume the closing brace.
	if _, err := dec.Token(); err != nil {
		return Row{}, err
	}
	return row, nil
}

// stringifyCell renders a decoded JSON value for table display.
func stringifyCell(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case json.Number:
		return val.String()
	case bool:
		if val {
			return "true"
		}
		return "false"
	default:
		b, err := json.Marshal(val)
		if err != nil {
			return fmt.Sprintf("%v", val)
		}
		return string(b)
	}
}

// NewTextAnswer creates a TEXT answer.
func NewTextAnswer(content string) Answer {
	return Answer{Kind: AnswerText, Content: content}
}

// PlainText flattens the answer for clipboard and speech use. DICT rows are
// serialized as indented JSON, the same shape the browser client copied.
func (a Answer) PlainText() string {
	if a.Kind != AnswerDict {
		return a.Content
	}
	rows := make([]map[string]string, 0, len(a.Rows))
	for _, r := range a.Rows {
		rows = append(rows, r.Values)
	}
	b, err := json.MarshalIndent(rows, "", "  ")
	if err != nil {
		return ""
	}
	return string(b)
}

// ColumnOrder returns the header order for rendering a DICT answer, taken
// from the first row.
func (a Answer) ColumnOrder() []string {
	if len(a.Rows) == 0 {
		return nil
	}
	return a.Rows[0].Columns
}

// =============================================================================
// MESSAGE TYPE
// =============================================================================

// Message is one question/answer exchange within a conversation. The ID is
// server-assigned except for the transient placeholder.
type Message struct {
	ID        string    `json:"message_id"`
	Question  Question  `json:"question"`
	Answer    Answer    `json:"answer"`
	Timestamp time.Time `json:"timestamp"`
	Feedback  Feedback  `json:"feedback,omitempty"`
}

// NewWaitingMessage synthesizes the placeholder shown while a send is in
// flight. It is never persisted and is replaced by the next full refetch.
func NewWaitingMessage(q Question) Message {
	return Message{
		ID:        WaitingMessageID,
		Question:  q,
		Answer:    NewTextAnswer(WaitingAnswerText),
		Timestamp: time.Now(),
	}
}

// IsPlaceholder reports whether this is the transient waiting message.
func (m Message) IsPlaceholder() bool {
	return m.ID == WaitingMessageID
}

// QuestionPreview returns a short display form of the question. AUDIO
// questions render as a marker since the payload is raw audio.
func (m Message) QuestionPreview(maxLen int) string {
	if m.Question.Kind == QuestionAudio {
		return "[voice question]"
	}
	content := strings.ReplaceAll(m.Question.Content, "\n", " ")
	runes := []rune(content)
	if maxLen <= 3 || len(runes) <= maxLen {
		return content
	}
	return string(runes[:maxLen-3]) + "..."
}
