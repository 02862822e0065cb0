// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package audio

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"sync"
	"syscall"
)

// CommandDevice captures audio by running an external recorder process,
// typically arecord or sox configured in the capture_cmd setting. The
// process writes raw audio to stdout until it receives SIGINT.
type CommandDevice struct {
	mu   sync.Mutex
	name string
	args []string

	cmd  *exec.Cmd
	out  *bytes.Buffer
	done chan error
}

// NewCommandDevice builds a device from a command name and its arguments.
func NewCommandDevice(name string, args ...string) *CommandDevice {
	return &CommandDevice{name: name, args: args}
}

// Start implements Device.
func (d *CommandDevice) Start(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.cmd != nil {
		return fmt.Errorf("capture already running")
	}

	out := &bytes.Buffer{}
	cmd := exec.CommandContext(ctx, d.name, d.args...)
	cmd.Stdout = out
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to start %s: %w", d.name, err)
	}

	done := make(chan error, 1)
	go func() { done <- cmd.Wait() }()

	d.cmd = cmd
	d.out = out
	d.done = done
	return nil
}

// Stop implements Device. The recorder process is interrupted and its
// stdout becomes the captured payload. Recorders exit nonzero on SIGINT on
// some platforms, so the exit status is ignored once output exists.
func (d *CommandDevice) Stop() ([]byte, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.cmd == nil {
		return nil, ErrNotRecording
	}

	if err := d.cmd.Process.Signal(syscall.SIGINT); err != nil {
		d.cmd.Process.Kill()
	}
	waitErr := <-d.done

	raw := d.out.Bytes()
	d.cmd = nil
	d.out = nil
	d.done = nil

	if len(raw) == 0 && waitErr != nil {
		return nil, fmt.Errorf("capture produced no audio: %w", waitErr)
	}
	return raw, nil
}
