// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures exchanged with the analytics
// assistant backend: conversations, messages, question/answer payloads, and
// per-message feedback.
//
// The wire format follows the backend contract: a Message carries a Question
// (TEXT or AUDIO) and an Answer (TEXT, DICT, or IMAGE). DICT answers are an
// ordered sequence of row objects rendered as a table.
//
// The client may synthesize one transient placeholder Message (ID "waiting")
// per in-flight send. Placeholders are never persisted and are replaced
// wholesale by the next full history refetch, never patched in place.
package model
