// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package audio captures voice questions. A Recorder wraps a capture Device
// with toggle semantics: the same action starts a recording or stops the
// active one and yields its payload, base64-encoded for the wire.
package audio

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"sync"
)

// ErrNoDevice means no capture device is configured. Voice questions are an
// optional surface; the composer hides the record action in this state.
var ErrNoDevice = errors.New("no audio capture device configured")

// ErrNotRecording means Stop was called with no recording active.
var ErrNotRecording = errors.New("no recording in progress")

// Device produces raw audio bytes. Start begins capture; Stop ends it and
// returns everything captured since Start. A Device is exclusive: one
// capture at a time.
type Device interface {
	Start(ctx context.Context) error
	Stop() ([]byte, error)
}

// StripMediaPrefix removes a "data:...;base64," media prefix when present.
// Payloads captured locally never carry one, but content pasted from a
// browser recording does, and the backend expects bare base64 either way.
func StripMediaPrefix(payload string) string {
	if !strings.HasPrefix(payload, "data:") {
		return payload
	}
	if i := strings.Index(payload, ";base64,"); i >= 0 {
		return payload[i+len(";base64,"):]
	}
	return payload
}

// =============================================================================
// RECORDER
// =============================================================================

// Recorder drives a Device with toggle semantics and produces wire-ready
// base64 payloads.
type Recorder struct {
	mu     sync.Mutex
	device Device
	active bool
}

// NewRecorder wraps a device. A nil device yields a recorder whose Toggle
// always fails with ErrNoDevice.
func NewRecorder(device Device) *Recorder {
	return &Recorder{device: device}
}

// Recording reports whether a capture is in progress.
func (r *Recorder) Recording() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.active
}

// Available reports whether a capture device is configured.
func (r *Recorder) Available() bool {
	return r.device != nil
}

// Toggle starts a recording, or stops the active one and returns its base64
// payload. started is true when a new capture began; when started is false
// and err is nil, payload holds the finished recording.
func (r *Recorder) Toggle(ctx context.Context) (payload string, started bool, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.device == nil {
		return "", false, ErrNoDevice
	}

	if !r.active {
		if err := r.device.Start(ctx); err != nil {
			return "", false, fmt.Errorf("failed to start recording: %w", err)
		}
		r.active = true
		return "", true, nil
	}

	raw, err := r.device.Stop()
	r.active = false
	if err != nil {
		return "", false, fmt.Errorf("failed to stop recording: %w", err)
	}
	return base64.StdEncoding.EncodeToString(raw), false, nil
}

// Cancel stops an active recording and discards the audio.
func (r *Recorder) Cancel() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.active {
		return ErrNotRecording
	}
	r.active = false
	if _, err := r.device.Stop(); err != nil {
		return fmt.Errorf("failed to cancel recording: %w", err)
	}
	return nil
}
