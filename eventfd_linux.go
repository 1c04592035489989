// Copyright 2025 Ayman Bagabas
// SPDX-License-Identifier: MIT

//go:build linux

package wlclient

import (
	"errors"

	"golang.org/x/sys/unix"
)

// eventfd is a one-bit cross-thread wake-up primitive exposing a pollable
// file descriptor (§4, "Eventfd / socket-pair abstraction"), mirroring
// utils/eventfd/linux.rs.
type eventfd struct {
	fd int
}

func newEventfd() (*eventfd, error) {
	fd, err := unix.Eventfd(0, unix.EFD_CLOEXEC|unix.EFD_NONBLOCK)
	if err != nil {
		return nil, err
	}
	return &eventfd{fd: fd}, nil
}

// Bump signals the eventfd, waking anything polling it for readability.
func (e *eventfd) Bump() error {
	var buf [8]byte
	buf[0] = 1
	_, err := unix.Write(e.fd, buf[:])
	return err
}

// Clear drains the eventfd's counter, leaving it non-readable until the
// next Bump.
func (e *eventfd) Clear() error {
	var buf [8]byte
	_, err := unix.Read(e.fd, buf[:])
	if err != nil && errors.Is(err, unix.EAGAIN) {
		return nil
	}
	return err
}

// Fd returns the raw file descriptor, for registration with the poller.
func (e *eventfd) Fd() int { return e.fd }

// Close closes the underlying file descriptor.
func (e *eventfd) Close() error {
	return unix.Close(e.fd)
}
