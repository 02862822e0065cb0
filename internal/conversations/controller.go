// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package conversations manages the conversation list: fetching, creating,
// deleting, and grouping threads into the recency buckets the sidebar shows.
package conversations

import (
	"context"
	"errors"
	"strings"

	"github.com/jeranaias/insight-tui/internal/api"
	"github.com/jeranaias/insight-tui/internal/model"
)

// ErrEmptyTitle rejects a create whose title is empty or whitespace. The
// check runs locally so the backend is never asked to create a blank thread.
var ErrEmptyTitle = errors.New("conversation title must not be empty")

// Controller performs conversation list operations against the backend.
type Controller struct {
	client *api.Client
}

// NewController creates a conversation controller.
func NewController(client *api.Client) *Controller {
	return &Controller{client: client}
}

// List fetches all conversations, server-ordered by recency.
func (c *Controller) List(ctx context.Context, token string) ([]model.Conversation, error) {
	return c.client.ListConversations(ctx, token)
}

// Create makes a new titled conversation. The title is trimmed before it is
// sent; a whitespace-only title fails without touching the network.
func (c *Controller) Create(ctx context.Context, title, token string) (model.Conversation, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return model.Conversation{}, ErrEmptyTitle
	}
	return c.client.CreateConversation(ctx, title, token)
}

// Delete removes a conversation.
func (c *Controller) Delete(ctx context.Context, conversationID, token string) error {
	return c.client.DeleteConversation(ctx, conversationID, token)
}

// NextAfterDelete picks where to navigate once deletedID is gone: the first
// remaining conversation, or "" when the list is empty and the landing
// screen is the only place left.
func NextAfterDelete(all []model.Conversation, deletedID string) string {
	for _, conv := range all {
		if conv.ID != deletedID {
			return conv.ID
		}
	}
	return ""
}
