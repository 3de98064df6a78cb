// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Authgate Contributors

// Package listener opens the gateway's HTTP listener on TCP or a Unix socket.
package listener

import (
	"errors"
	"io/fs"
	"net"
	"os"
	"strconv"
	"strings"

	"github.com/samber/oops"
)

// IsUnixPath reports whether addr names a Unix socket rather than a TCP address.
func IsUnixPath(addr string) bool {
	return strings.HasPrefix(addr, "/")
}

// Listen opens addr. Absolute paths are Unix sockets: a stale socket file is
// removed first and, when mode is non-zero, the new socket is chmod'ed to it.
// Anything else is a TCP host:port.
func Listen(addr string, mode os.FileMode) (net.Listener, error) {
	if addr == "" {
		return nil, oops.Code("LISTEN_FAILED").Errorf("listen address is required")
	}
	if !IsUnixPath(addr) {
		l, err := net.Listen("tcp", addr)
		if err != nil {
			return nil, oops.Code("LISTEN_FAILED").With("addr", addr).Wrap(err)
		}
		return l, nil
	}

	if err := os.Remove(addr); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, oops.Code("LISTEN_FAILED").
			With("addr", addr).
			With("operation", "remove stale socket").
			Wrap(err)
	}

	l, err := net.Listen("unix", addr)
	if err != nil {
		return nil, oops.Code("LISTEN_FAILED").With("addr", addr).Wrap(err)
	}

	if mode != 0 {
		if err := os.Chmod(addr, mode); err != nil {
			_ = l.Close()
			return nil, oops.Code("LISTEN_FAILED").
				With("addr", addr).
				With("operation", "set socket permissions").
				Wrap(err)
		}
	}
	return l, nil
}

// ParseSocketMode parses an octal permission string such as "0660" or "660".
// An empty string yields 0, meaning the umask default is kept.
func ParseSocketMode(s string) (os.FileMode, error) {
	if s == "" {
		return 0, nil
	}
	v, err := strconv.ParseUint(s, 8, 32)
	if err != nil {
		return 0, oops.Code("LISTEN_INVALID_SOCKET_MODE").With("socket_mode", s).Wrap(err)
	}
	if v > 0o777 {
		return 0, oops.Code("LISTEN_INVALID_SOCKET_MODE").
			With("socket_mode", s).
			Errorf("socket mode must not exceed 0777")
	}
	return os.FileMode(v), nil
}
