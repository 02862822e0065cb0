// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package api implements the HTTP client for the analytics assistant backend.
//
// All operations except SignIn carry a bearer token in the Authorization
// header. Responses are mapped onto the package error taxonomy: 401 becomes
// ErrUnauthorized, 404 becomes ErrNotFound, everything else unexpected
// becomes an *APIError. Network failures terminate the operation and are
// reported, never retried automatically.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/jeranaias/insight-tui/internal/model"
)

// Configuration constants for the backend client.
const (
	// DefaultTimeout is the default timeout for API requests. Sends can be
	// slow because the backend runs the analytics query synchronously.
	DefaultTimeout = 60 * time.Second

	// MaxResponseSize is the maximum allowed response body size.
	// IMAGE answers are base64 PNG and can be large; DICT answers are not.
	MaxResponseSize = 16 * 1024 * 1024 // 16MB
)

// Client talks to the analytics assistant backend.
type Client struct {
	baseURL    string
	httpClient *http.Client
	userAgent  string

	// limiter caps the client-side request rate so a stuck retry loop in a
	// caller can never hammer the backend.
	limiter *rate.Limiter
}

// NewClient creates a backend client for the given base URL.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{Timeout: DefaultTimeout},
		userAgent:  "insight-tui/0.1.0",
		limiter:    rate.NewLimiter(rate.Limit(10), 20),
	}
}

// WithTimeout sets the request timeout.
func (c *Client) WithTimeout(timeout time.Duration) *Client {
	c.httpClient.Timeout = timeout
	return c
}

// WithHTTPClient replaces the underlying HTTP client (used by tests).
func (c *Client) WithHTTPClient(hc *http.Client) *Client {
	c.httpClient = hc
	return c
}

// WithRateLimit overrides the client-side request rate limit.
func (c *Client) WithRateLimit(perSecond float64, burst int) *Client {
	c.limiter = rate.NewLimiter(rate.Limit(perSecond), burst)
	return c
}

// BaseURL returns the configured backend base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// =============================================================================
// AUTHENTICATION
// =============================================================================

// TokenResponse is the identity service's reply to a credentials grant.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	Username    string `json:"username"`
}

// SignIn exchanges a username/password pair for a bearer token.
// A non-success status or a missing token both map to ErrInvalidCredentials;
// the caller surfaces that inline on the login form and leaves session state
// untouched.
func (c *Client) SignIn(ctx context.Context, username, password string) (TokenResponse, error) {
	form := url.Values{}
	form.Set("username", username)
	form.Set("password", password)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/token",
		strings.NewReader(form.Encode()))
	if err != nil {
		return TokenResponse{}, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("User-Agent", c.userAgent)

	body, status, err := c.do(ctx, req)
	if err != nil {
		return TokenResponse{}, err
	}
	if status != http.StatusOK {
		return TokenResponse{}, ErrInvalidCredentials
	}

	var tok TokenResponse
	if err := json.Unmarshal(body, &tok); err != nil {
		return TokenResponse{}, fmt.Errorf("failed to parse token response: %w", err)
	}
	if tok.AccessToken == "" {
		return TokenResponse{}, ErrInvalidCredentials
	}
	tok.Username = username
	return tok, nil
}

// =============================================================================
// CONVERSATIONS
// =============================================================================

// conversationsResponse is the wire envelope for the conversation list.
type conversationsResponse struct {
	Conversations []model.Conversation `json:"conversations"`
}

// ListConversations fetches all conversations for the token's owner,
// ordered by recency by the server.
func (c *Client) ListConversations(ctx context.Context, token string) ([]model.Conversation, error) {
	body, err := c.authedJSON(ctx, http.MethodGet, "/conversations/", nil, token)
	if err != nil {
		return nil, err
	}

	var resp conversationsResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse conversations: %w", err)
	}
	return resp.Conversations, nil
}

// createConversationRequest is the body of a conversation create call.
type createConversationRequest struct {
	Title string `json:"title"`
}

// CreateConversation creates a titled conversation and returns it.
// Title validation happens in the conversations controller before the
// network is touched.
func (c *Client) CreateConversation(ctx context.Context, title, token string) (model.Conversation, error) {
	body, err := c.authedJSON(ctx, http.MethodPost, "/create_conversation/",
		createConversationRequest{Title: title}, token)
	if err != nil {
		return model.Conversation{}, err
	}

	var conv model.Conversation
	if err := json.Unmarshal(body, &conv); err != nil {
		return model.Conversation{}, fmt.Errorf("failed to parse conversation: %w", err)
	}
	return conv, nil
}

// DeleteConversation removes a conversation. The ack body is
// implementation-defined and discarded.
func (c *Client) DeleteConversation(ctx context.Context, conversationID, token string) error {
	_, err := c.authedJSON(ctx, http.MethodDelete, "/delete_conversation/"+url.PathEscape(conversationID), nil, token)
	return err
}

// =============================================================================
// MESSAGES
// =============================================================================

// messagesResponse is the wire envelope for a conversation history.
type messagesResponse struct {
	Messages []model.Message `json:"messages"`
}

// ListMessages fetches the full message history of a conversation, ordered
// by server-assigned timestamp ascending.
func (c *Client) ListMessages(ctx context.Context, conversationID, token string) ([]model.Message, error) {
	body, err := c.authedJSON(ctx, http.MethodGet,
		"/conversations/"+url.PathEscape(conversationID)+"/messages/", nil, token)
	if err != nil {
		return nil, err
	}

	var resp messagesResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse messages: %w", err)
	}
	return resp.Messages, nil
}

// sendMessageRequest is the body of a message send call.
type sendMessageRequest struct {
	Question model.Question `json:"question"`
}

// SendResult is the backend's direct reply to a send. Callers discard it and
// refetch the full history; it exists so the contract stays visible.
type SendResult struct {
	MessageID string       `json:"message_id"`
	Answer    model.Answer `json:"answer"`
}

// SendMessage submits a question to a conversation and blocks until the
// backend has produced an answer. For AUDIO questions the content must be
// base64 with the media-type prefix already stripped.
func (c *Client) SendMessage(ctx context.Context, conversationID string, q model.Question, token string) (SendResult, error) {
	body, err := c.authedJSON(ctx, http.MethodPost,
		"/create_message/"+url.PathEscape(conversationID)+"/", sendMessageRequest{Question: q}, token)
	if err != nil {
		return SendResult{}, err
	}

	var res SendResult
	if err := json.Unmarshal(body, &res); err != nil {
		return SendResult{}, fmt.Errorf("failed to parse send result: %w", err)
	}
	return res, nil
}

// feedbackRequest is the body of a feedback update call.
type feedbackRequest struct {
	Feedback model.Feedback `json:"feedback"`
}

// UpdateFeedback sets the LIKE/DISLIKE annotation on a message. Setting a
// new value overwrites the previous one; there is no toggle semantics on the
// wire.
func (c *Client) UpdateFeedback(ctx context.Context, conversationID, messageID string, fb model.Feedback, token string) error {
	path := "/conversations/" + url.PathEscape(conversationID) +
		"/messages/" + url.PathEscape(messageID) + "/feedback"
	_, err := c.authedJSON(ctx, http.MethodPut, path, feedbackRequest{Feedback: fb}, token)
	return err
}

// =============================================================================
// REQUEST PLUMBING
// =============================================================================

// authedJSON performs a bearer-authorized JSON request and returns the body
// of a 2xx response, or a mapped error.
func (c *Client) authedJSON(ctx context.Context, method, path string, reqBody any, token string) ([]byte, error) {
	var reader io.Reader
	if reqBody != nil {
		data, err := json.Marshal(reqBody)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("User-Agent", c.userAgent)
	if reqBody != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	body, status, err := c.do(ctx, req)
	if err != nil {
		return nil, err
	}
	if status < 200 || status > 299 {
		return nil, mapStatus(status, body)
	}
	return body, nil
}

// do executes a single request. Bodies are read through a size limit so a
// misbehaving backend cannot exhaust memory.
func (c *Client) do(ctx context.Context, req *http.Request) ([]byte, int, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, 0, err
	}

	c.logRequest(req)
	start := time.Now()

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, &APIError{Message: err.Error()}
	}
	defer resp.Body.Close()

	c.logResponse(resp, time.Since(start))

	body, err := io.ReadAll(io.LimitReader(resp.Body, MaxResponseSize))
	if err != nil {
		return nil, 0, &APIError{Status: resp.StatusCode, Message: "failed to read response: " + err.Error()}
	}
	if int64(len(body)) == MaxResponseSize {
		return nil, 0, &APIError{Status: resp.StatusCode, Message: "response exceeded maximum size"}
	}
	return body, resp.StatusCode, nil
}

// mapStatus converts an error status into the package taxonomy.
func mapStatus(status int, body []byte) error {
	switch status {
	case http.StatusUnauthorized, http.StatusForbidden:
		return ErrUnauthorized
	case http.StatusNotFound:
		return ErrNotFound
	default:
		msg := strings.TrimSpace(string(body))
		if len(msg) > 200 {
			msg = msg[:200]
		}
		return &APIError{Status: status, Message: msg}
	}
}

// logRequest logs an API request without exposing sensitive data.
// Headers carry the bearer token and bodies may carry questions, so only
// method and path are logged.
func (c *Client) logRequest(req *http.Request) {
	log.Printf("API request: %s %s", req.Method, req.URL.Path)
}

// logResponse logs status and duration only.
func (c *Client) logResponse(resp *http.Response, duration time.Duration) {
	log.Printf("API response: %d (%v)", resp.StatusCode, duration)
}
