// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/insight-tui/internal/model"
)

func history(ids ...string) []model.Message {
	msgs := make([]model.Message, 0, len(ids))
	for _, id := range ids {
		msgs = append(msgs, model.Message{
			ID:       id,
			Question: model.NewTextQuestion("q-" + id),
			Answer:   model.NewTextAnswer("a-" + id),
		})
	}
	return msgs
}

func messageIDs(msgs []model.Message) []string {
	var out []string
	for _, m := range msgs {
		out = append(out, m.ID)
	}
	return out
}

// =============================================================================
// LOADING
// =============================================================================

func TestEnsureLoaded_FetchesOnce(t *testing.T) {
	c := NewController()

	ticket, ok := c.EnsureLoaded("c1")
	require.True(t, ok)
	assert.Equal(t, PhaseLoading, c.Phase("c1"))

	// A second call while the fetch is in flight issues nothing.
	_, ok = c.EnsureLoaded("c1")
	assert.False(t, ok)

	require.True(t, c.CommitLoad(ticket, history("m1"), nil))
	assert.Equal(t, PhaseReady, c.Phase("c1"))
	assert.Equal(t, []string{"m1"}, messageIDs(c.Messages("c1")))

	// Once fetched, revisiting renders from cache.
	_, ok = c.EnsureLoaded("c1")
	assert.False(t, ok)
}

func TestEnsureLoaded_PerConversation(t *testing.T) {
	c := NewController()

	t1, ok := c.EnsureLoaded("c1")
	require.True(t, ok)
	require.True(t, c.CommitLoad(t1, history("m1"), nil))

	// A different conversation still needs its first fetch.
	_, ok = c.EnsureLoaded("c2")
	assert.True(t, ok)
}

func TestCommitLoad_InitialFailure(t *testing.T) {
	c := NewController()

	ticket, _ := c.EnsureLoaded("c1")
	require.True(t, c.CommitLoad(ticket, nil, errors.New("backend down")))

	assert.Equal(t, PhaseError, c.Phase("c1"))
	assert.Equal(t, "backend down", c.ErrorText("c1"))

	// Retry is a reload; success clears the error.
	retry := c.BeginReload("c1")
	require.True(t, c.CommitLoad(retry, history("m1"), nil))
	assert.Equal(t, PhaseReady, c.Phase("c1"))
	assert.Empty(t, c.ErrorText("c1"))
}

func TestCommitLoad_StaleTicketDropped(t *testing.T) {
	c := NewController()

	first, _ := c.EnsureLoaded("c1")
	second := c.BeginReload("c1")

	// The newer fetch settles first.
	require.True(t, c.CommitLoad(second, history("m1", "m2"), nil))

	// The older result arrives late and is dropped.
	assert.False(t, c.CommitLoad(first, history("m1"), nil))
	assert.Equal(t, []string{"m1", "m2"}, messageIDs(c.Messages("c1")))
}

func TestCommitLoad_ForgottenConversation(t *testing.T) {
	c := NewController()

	ticket, _ := c.EnsureLoaded("c1")
	c.Forget("c1")

	assert.False(t, c.CommitLoad(ticket, history("m1"), nil))
	assert.Empty(t, c.Messages("c1"))
}

// =============================================================================
// SENDING
// =============================================================================

func TestBeginSend_PlaceholderAppended(t *testing.T) {
	c := NewController()
	ticket, _ := c.EnsureLoaded("c1")
	require.True(t, c.CommitLoad(ticket, history("m1"), nil))

	placeholder, ok := c.BeginSend("c1", model.NewTextQuestion("why?"))
	require.True(t, ok)
	assert.True(t, placeholder.IsPlaceholder())
	assert.Equal(t, PhaseSending, c.Phase("c1"))

	msgs := c.Messages("c1")
	require.Len(t, msgs, 2)
	assert.Equal(t, model.WaitingMessageID, msgs[1].ID)
	assert.Equal(t, "why?", msgs[1].Question.Content)
}

func TestBeginSend_OneAtATime(t *testing.T) {
	c := NewController()

	_, ok := c.BeginSend("c1", model.NewTextQuestion("first"))
	require.True(t, ok)

	_, ok = c.BeginSend("c1", model.NewTextQuestion("second"))
	assert.False(t, ok)

	// Only one placeholder ever exists.
	var placeholders int
	for _, m := range c.Messages("c1") {
		if m.IsPlaceholder() {
			placeholders++
		}
	}
	assert.Equal(t, 1, placeholders)
}

func TestSend_SuccessfulRoundTrip(t *testing.T) {
	c := NewController()
	ticket, _ := c.EnsureLoaded("c1")
	require.True(t, c.CommitLoad(ticket, history("m1"), nil))

	_, ok := c.BeginSend("c1", model.NewTextQuestion("why?"))
	require.True(t, ok)

	c.FinishSend("c1", nil)
	assert.False(t, c.Sending("c1"))

	// Placeholder survives until the post-send refetch settles.
	require.Len(t, c.Messages("c1"), 2)

	refetch := c.BeginReload("c1")
	require.True(t, c.CommitLoad(refetch, history("m1", "m2"), nil))

	msgs := c.Messages("c1")
	assert.Equal(t, []string{"m1", "m2"}, messageIDs(msgs))
	for _, m := range msgs {
		assert.False(t, m.IsPlaceholder())
	}
	assert.Equal(t, PhaseReady, c.Phase("c1"))
}

func TestSend_FailureStillRefetches(t *testing.T) {
	c := NewController()
	ticket, _ := c.EnsureLoaded("c1")
	require.True(t, c.CommitLoad(ticket, history("m1"), nil))

	_, ok := c.BeginSend("c1", model.NewTextQuestion("why?"))
	require.True(t, ok)

	c.FinishSend("c1", errors.New("query engine unavailable"))
	assert.Equal(t, PhaseSendFailed, c.Phase("c1"))
	assert.Equal(t, "query engine unavailable", c.ErrorText("c1"))

	// The refetch runs regardless and removes the placeholder even when it
	// fails too.
	refetch := c.BeginReload("c1")
	require.True(t, c.CommitLoad(refetch, nil, errors.New("still down")))

	msgs := c.Messages("c1")
	assert.Equal(t, []string{"m1"}, messageIDs(msgs))
	assert.Equal(t, PhaseSendFailed, c.Phase("c1"))

	// The composer is unlocked for a retry.
	_, ok = c.BeginSend("c1", model.NewTextQuestion("retry"))
	assert.True(t, ok)
}

// =============================================================================
// FEEDBACK
// =============================================================================

func TestSetFeedback_Optimistic(t *testing.T) {
	c := NewController()
	ticket, _ := c.EnsureLoaded("c1")
	require.True(t, c.CommitLoad(ticket, history("m1"), nil))

	prev, ok := c.SetFeedback("c1", "m1", model.FeedbackLike)
	require.True(t, ok)
	assert.Equal(t, model.FeedbackNone, prev)
	assert.Equal(t, model.FeedbackLike, c.Messages("c1")[0].Feedback)

	// Success keeps the optimistic value.
	c.ApplyFeedbackResult("c1", "m1", prev, nil)
	assert.Equal(t, model.FeedbackLike, c.Messages("c1")[0].Feedback)
}

func TestSetFeedback_Overwrite(t *testing.T) {
	c := NewController()
	ticket, _ := c.EnsureLoaded("c1")
	msgs := history("m1")
	msgs[0].Feedback = model.FeedbackLike
	require.True(t, c.CommitLoad(ticket, msgs, nil))

	prev, ok := c.SetFeedback("c1", "m1", model.FeedbackDislike)
	require.True(t, ok)
	assert.Equal(t, model.FeedbackLike, prev)
	assert.Equal(t, model.FeedbackDislike, c.Messages("c1")[0].Feedback)
}

func TestFeedback_RollbackOnError(t *testing.T) {
	c := NewController()
	ticket, _ := c.EnsureLoaded("c1")
	require.True(t, c.CommitLoad(ticket, history("m1"), nil))

	prev, ok := c.SetFeedback("c1", "m1", model.FeedbackDislike)
	require.True(t, ok)

	c.ApplyFeedbackResult("c1", "m1", prev, errors.New("backend rejected"))
	assert.Equal(t, model.FeedbackNone, c.Messages("c1")[0].Feedback)
}

func TestSetFeedback_RefusesPlaceholderAndUnknown(t *testing.T) {
	c := NewController()
	ticket, _ := c.EnsureLoaded("c1")
	require.True(t, c.CommitLoad(ticket, history("m1"), nil))
	_, ok := c.BeginSend("c1", model.NewTextQuestion("q"))
	require.True(t, ok)

	_, ok = c.SetFeedback("c1", model.WaitingMessageID, model.FeedbackLike)
	assert.False(t, ok)

	_, ok = c.SetFeedback("c1", "no-such-message", model.FeedbackLike)
	assert.False(t, ok)
}

// =============================================================================
// ACTIVE CONVERSATION
// =============================================================================

func TestActive_ClearedByForget(t *testing.T) {
	c := NewController()
	c.SetActive("c1")
	assert.Equal(t, "c1", c.Active())

	c.Forget("c1")
	assert.Equal(t, "", c.Active())
}
