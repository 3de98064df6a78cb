// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Authgate Contributors

package auth

import (
	"crypto/rand"
	"io"

	"github.com/samber/oops"
)

// Session token configuration.
const (
	DefaultSessionCapacity = 100
	DefaultTokenLength     = 64 // ~381 bits over a 62-symbol alphabet
	MinTokenLength         = 50
)

const tokenAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

// Bytes at or above this value are rejected so every symbol is equally likely.
const maxUnbiasedByte = 256 - 256%len(tokenAlphabet)

// maxTokenRounds bounds how many reads generateToken makes before giving up
// on a source that keeps producing rejected bytes.
const maxTokenRounds = 16

// NewEntropySource returns the operating system's secure random source after
// confirming it can be read. Failure is fatal for a gateway process.
func NewEntropySource() (io.Reader, error) {
	if err := probeEntropy(rand.Reader); err != nil {
		return nil, err
	}
	return rand.Reader, nil
}

func probeEntropy(r io.Reader) error {
	if r == nil {
		return oops.Code("SESSION_ENTROPY_UNAVAILABLE").Errorf("entropy source is required")
	}
	probe := make([]byte, 16)
	if _, err := io.ReadFull(r, probe); err != nil {
		return oops.Code("SESSION_ENTROPY_UNAVAILABLE").
			With("operation", "probe entropy source").
			Wrap(err)
	}
	return nil
}

// generateToken reads from r and maps the bytes onto tokenAlphabet using
// rejection sampling until length symbols have been produced.
func generateToken(r io.Reader, length int) (string, error) {
	out := make([]byte, 0, length)
	buf := make([]byte, length+length/4)

	for round := 0; len(out) < length; round++ {
		if round == maxTokenRounds {
			return "", oops.Code("SESSION_TOKEN_GENERATE_FAILED").
				With("rounds", round).
				Errorf("entropy source produced too few usable bytes")
		}
		if _, err := io.ReadFull(r, buf); err != nil {
			return "", oops.Code("SESSION_TOKEN_GENERATE_FAILED").
				With("operation", "read entropy").
				With("requested_bytes", len(buf)).
				Wrap(err)
		}
		for _, b := range buf {
			if int(b) >= maxUnbiasedByte {
				continue
			}
			out = append(out, tokenAlphabet[int(b)%len(tokenAlphabet)])
			if len(out) == length {
				break
			}
		}
	}

	return string(out), nil
}
