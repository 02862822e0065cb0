// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package conversations

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/insight-tui/internal/api"
	"github.com/jeranaias/insight-tui/internal/model"
)

func TestCreate_RejectsEmptyTitle(t *testing.T) {
	var called bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	t.Cleanup(srv.Close)

	ctrl := NewController(api.NewClient(srv.URL))

	for _, title := range []string{"", "   ", "\t\n"} {
		_, err := ctrl.Create(context.Background(), title, "tok")
		assert.ErrorIs(t, err, ErrEmptyTitle, "title %q", title)
	}
	assert.False(t, called, "blank titles must not reach the backend")
}

func TestCreate_TrimsTitle(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"conversation_id":"c1","title":"Fuel burn"}`))
	}))
	t.Cleanup(srv.Close)

	ctrl := NewController(api.NewClient(srv.URL))
	conv, err := ctrl.Create(context.Background(), "  Fuel burn  ", "tok")
	require.NoError(t, err)
	assert.Equal(t, "c1", conv.ID)
}

func TestNextAfterDelete(t *testing.T) {
	all := []model.Conversation{{ID: "c1"}, {ID: "c2"}, {ID: "c3"}}

	tests := []struct {
		name    string
		all     []model.Conversation
		deleted string
		want    string
	}{
		{"deleting the first picks the next", all, "c1", "c2"},
		{"deleting a later one picks the first", all, "c2", "c1"},
		{"deleting the only one leaves nowhere", []model.Conversation{{ID: "c1"}}, "c1", ""},
		{"empty list leaves nowhere", nil, "c1", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NextAfterDelete(tt.all, tt.deleted))
		})
	}
}
