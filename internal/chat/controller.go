// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat holds the message exchange state machine. The controller
// tracks per-conversation history, the in-flight send placeholder, and load
// tickets that keep concurrent refetches from racing each other.
//
// The controller never touches the network. The UI layer runs the HTTP calls
// and feeds their results back in through CommitLoad, FinishSend, and
// ApplyFeedbackResult; the controller decides whether each result still
// applies or has been superseded.
package chat

import (
	"log"
	"sync"

	"github.com/google/uuid"

	"github.com/jeranaias/insight-tui/internal/model"
)

// =============================================================================
// PHASES
// =============================================================================

// Phase is the lifecycle stage of one conversation's view.
type Phase int

const (
	// PhaseIdle means the conversation has never been loaded.
	PhaseIdle Phase = iota

	// PhaseLoading means the first history fetch is in flight.
	PhaseLoading

	// PhaseReady means history is loaded and the composer is usable.
	PhaseReady

	// PhaseError means the history fetch failed; the view shows the error
	// with a retry affordance instead of messages.
	PhaseError

	// PhaseSending means a question is in flight and the placeholder is
	// visible. The composer is locked.
	PhaseSending

	// PhaseSendFailed means the last send failed. History is still shown;
	// the composer is unlocked so the question can be retried.
	PhaseSendFailed
)

// String returns the phase name for logs.
func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseLoading:
		return "loading"
	case PhaseReady:
		return "ready"
	case PhaseError:
		return "error"
	case PhaseSending:
		return "sending"
	case PhaseSendFailed:
		return "send-failed"
	default:
		return "unknown"
	}
}

// =============================================================================
// LOAD TICKETS
// =============================================================================

// LoadTicket identifies one history fetch. A commit whose ticket no longer
// matches the conversation's current generation is stale and dropped, which
// gives last-initiated-wins semantics when fetches overlap.
type LoadTicket struct {
	ConversationID string
	Gen            uint64

	// ID correlates the fetch in logs.
	ID uuid.UUID
}

// =============================================================================
// CONTROLLER
// =============================================================================

// convState is everything tracked for a single conversation.
type convState struct {
	phase    Phase
	messages []model.Message
	fetched  bool
	gen      uint64
	sending  bool

	// pending is the transient waiting placeholder, shown after the real
	// messages. Nil when no send is settling.
	pending *model.Message

	errText string
}

// Controller is the chat state machine. Safe for concurrent use.
type Controller struct {
	mu     sync.Mutex
	active string
	states map[string]*convState
}

// NewController creates an empty chat controller.
func NewController() *Controller {
	return &Controller{states: make(map[string]*convState)}
}

// state returns the tracked state for a conversation, creating it on first
// sight. Callers hold c.mu.
func (c *Controller) state(conversationID string) *convState {
	st, ok := c.states[conversationID]
	if !ok {
		st = &convState{phase: PhaseIdle}
		c.states[conversationID] = st
	}
	return st
}

// SetActive marks the conversation currently on screen.
func (c *Controller) SetActive(conversationID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.active = conversationID
}

// Active returns the conversation currently on screen.
func (c *Controller) Active() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.active
}

// =============================================================================
// LOADING
// =============================================================================

// EnsureLoaded starts the first history fetch for a conversation. Once a
// conversation has been fetched it stays cached; revisiting it renders
// immediately and returns ok=false. A fetch already in flight also returns
// ok=false.
func (c *Controller) EnsureLoaded(conversationID string) (LoadTicket, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	st := c.state(conversationID)
	if st.fetched || st.phase == PhaseLoading {
		return LoadTicket{}, false
	}
	return c.beginLoadLocked(conversationID, st), true
}

// BeginReload starts an unconditional refetch, used after every send and on
// explicit retry. Existing messages stay on screen while it runs.
func (c *Controller) BeginReload(conversationID string) LoadTicket {
	c.mu.Lock()
	defer c.mu.Unlock()

	st := c.state(conversationID)
	if !st.fetched && len(st.messages) == 0 {
		st.phase = PhaseLoading
	}
	return c.beginLoadLocked(conversationID, st)
}

// beginLoadLocked bumps the generation and issues a ticket. Callers hold c.mu.
func (c *Controller) beginLoadLocked(conversationID string, st *convState) LoadTicket {
	st.gen++
	if st.phase == PhaseIdle || st.phase == PhaseError {
		st.phase = PhaseLoading
		st.errText = ""
	}
	t := LoadTicket{ConversationID: conversationID, Gen: st.gen, ID: uuid.New()}
	log.Printf("history fetch %s started for conversation %s (gen %d)", t.ID, conversationID, t.Gen)
	return t
}

// CommitLoad applies a fetch result. Stale tickets are dropped: only the
// most recently initiated fetch for a conversation may settle its state.
// Settling always removes the waiting placeholder, success or not.
func (c *Controller) CommitLoad(t LoadTicket, msgs []model.Message, err error) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	st, ok := c.states[t.ConversationID]
	if !ok || t.Gen != st.gen {
		log.Printf("history fetch %s dropped as stale", t.ID)
		return false
	}

	st.pending = nil

	if err != nil {
		if st.fetched {
			// A failed refetch keeps the history already on screen.
			st.phase = PhaseSendFailed
			st.errText = err.Error()
		} else {
			st.phase = PhaseError
			st.errText = err.Error()
		}
		return true
	}

	st.messages = msgs
	st.fetched = true
	st.errText = ""
	if !st.sending {
		st.phase = PhaseReady
	}
	return true
}

// =============================================================================
// SENDING
// =============================================================================

// BeginSend injects the waiting placeholder and locks the composer. A send
// already in flight for this conversation refuses a second one.
func (c *Controller) BeginSend(conversationID string, q model.Question) (model.Message, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	st := c.state(conversationID)
	if st.sending {
		return model.Message{}, false
	}

	placeholder := model.NewWaitingMessage(q)
	st.sending = true
	st.pending = &placeholder
	st.phase = PhaseSending
	st.errText = ""
	return placeholder, true
}

// FinishSend records the outcome of the HTTP send. The caller refetches
// history afterwards in every case; the placeholder stays visible until that
// refetch settles.
func (c *Controller) FinishSend(conversationID string, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	st := c.state(conversationID)
	st.sending = false
	if err != nil {
		st.phase = PhaseSendFailed
		st.errText = err.Error()
		return
	}
	if st.fetched {
		st.phase = PhaseReady
	}
}

// Sending reports whether a send is in flight for the conversation.
func (c *Controller) Sending(conversationID string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	st, ok := c.states[conversationID]
	return ok && st.sending
}

// =============================================================================
// FEEDBACK
// =============================================================================

// SetFeedback applies feedback optimistically and returns the previous value
// so a failed backend call can roll it back. Unknown message IDs and the
// placeholder are refused.
func (c *Controller) SetFeedback(conversationID, messageID string, fb model.Feedback) (model.Feedback, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	st, ok := c.states[conversationID]
	if !ok || messageID == model.WaitingMessageID {
		return model.FeedbackNone, false
	}
	for i := range st.messages {
		if st.messages[i].ID == messageID {
			prev := st.messages[i].Feedback
			st.messages[i].Feedback = fb
			return prev, true
		}
	}
	return model.FeedbackNone, false
}

// ApplyFeedbackResult settles an optimistic feedback update. On error the
// previous value is restored.
func (c *Controller) ApplyFeedbackResult(conversationID, messageID string, prev model.Feedback, err error) {
	if err == nil {
		return
	}
	log.Printf("feedback update failed for message %s, rolling back: %v", messageID, err)

	c.mu.Lock()
	defer c.mu.Unlock()

	st, ok := c.states[conversationID]
	if !ok {
		return
	}
	for i := range st.messages {
		if st.messages[i].ID == messageID {
			st.messages[i].Feedback = prev
			return
		}
	}
}

// =============================================================================
// SNAPSHOTS
// =============================================================================

// Messages returns a copy of the rendered history: the fetched messages plus
// the waiting placeholder while a send settles.
func (c *Controller) Messages(conversationID string) []model.Message {
	c.mu.Lock()
	defer c.mu.Unlock()

	st, ok := c.states[conversationID]
	if !ok {
		return nil
	}
	out := make([]model.Message, 0, len(st.messages)+1)
	out = append(out, st.messages...)
	if st.pending != nil {
		out = append(out, *st.pending)
	}
	return out
}

// Phase returns the conversation's current phase.
func (c *Controller) Phase(conversationID string) Phase {
	c.mu.Lock()
	defer c.mu.Unlock()
	st, ok := c.states[conversationID]
	if !ok {
		return PhaseIdle
	}
	return st.phase
}

// ErrorText returns the display error for PhaseError and PhaseSendFailed.
func (c *Controller) ErrorText(conversationID string) string {
	c.mu.Lock()
	defer c.mu.Unlock()
	st, ok := c.states[conversationID]
	if !ok {
		return ""
	}
	return st.errText
}

// Forget drops all tracked state for a conversation, used after deletion.
// Any in-flight fetch for it becomes stale automatically.
func (c *Controller) Forget(conversationID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.states, conversationID)
	if c.active == conversationID {
		c.active = ""
	}
}
