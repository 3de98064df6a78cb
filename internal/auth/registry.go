// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Authgate Contributors

package auth

import (
	"io"
	"sync"

	"github.com/samber/oops"
)

// none marks an absent link in the recency list.
const none = -1

// slot is one arena entry. prev points towards the most recently issued
// token, next towards the least recently issued one.
type slot struct {
	token string
	prev  int
	next  int
}

// SessionRegistry is a capacity-bounded set of live session tokens.
//
// Entries live in an arena that never grows past the capacity. A map indexes
// tokens to arena slots and a doubly-linked list threaded through the arena
// keeps issuance order. When the registry is full, the slot at the tail (the
// least recently issued token) is reused for the new token.
//
// Only Issue updates recency. IsValid is a pure read, so a token's lifetime is
// bounded by the number of logins that happen after it, regardless of use.
//
// SessionRegistry is safe for concurrent use.
type SessionRegistry struct {
	mu    sync.RWMutex
	index map[string]int
	slots []slot
	head  int
	tail  int

	capacity    int
	tokenLength int
	entropy     io.Reader
	onEvict     func()
}

// RegistryOption configures a SessionRegistry.
type RegistryOption func(*SessionRegistry)

// WithCapacity sets the maximum number of live sessions.
func WithCapacity(n int) RegistryOption {
	return func(r *SessionRegistry) {
		r.capacity = n
	}
}

// WithTokenLength sets the number of characters in issued tokens.
func WithTokenLength(n int) RegistryOption {
	return func(r *SessionRegistry) {
		r.tokenLength = n
	}
}

// WithEvictionHook registers fn to be called, outside the registry lock,
// every time an entry is evicted to make room for a new one.
func WithEvictionHook(fn func()) RegistryOption {
	return func(r *SessionRegistry) {
		r.onEvict = fn
	}
}

// NewSessionRegistry creates an empty registry drawing tokens from entropy.
// The entropy reader must be safe for concurrent use; it is probed once and
// an unreadable source is reported as an error.
func NewSessionRegistry(entropy io.Reader, opts ...RegistryOption) (*SessionRegistry, error) {
	r := &SessionRegistry{
		head:        none,
		tail:        none,
		capacity:    DefaultSessionCapacity,
		tokenLength: DefaultTokenLength,
		entropy:     entropy,
	}
	for _, opt := range opts {
		opt(r)
	}

	if r.capacity < 1 {
		return nil, oops.Code("SESSION_INVALID_CAPACITY").
			With("capacity", r.capacity).
			Errorf("session capacity must be at least 1")
	}
	if r.tokenLength < MinTokenLength {
		return nil, oops.Code("SESSION_INVALID_TOKEN_LENGTH").
			With("token_length", r.tokenLength).
			Errorf("session token length must be at least %d", MinTokenLength)
	}
	if err := probeEntropy(entropy); err != nil {
		return nil, err
	}

	r.index = make(map[string]int, r.capacity)
	r.slots = make([]slot, 0, r.capacity)
	return r, nil
}

// Issue creates a new session token and records it as alive, evicting the
// least recently issued token if the registry is full.
func (r *SessionRegistry) Issue() (string, error) {
	token, err := generateToken(r.entropy, r.tokenLength)
	if err != nil {
		return "", err
	}

	r.mu.Lock()
	evicted := r.insert(token)
	r.mu.Unlock()

	if evicted && r.onEvict != nil {
		r.onEvict()
	}
	return token, nil
}

// IsValid reports whether token is currently live. It does not affect
// eviction order.
func (r *SessionRegistry) IsValid(token string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.index[token]
	return ok
}

// Len returns the number of live sessions.
func (r *SessionRegistry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.index)
}

// Capacity returns the maximum number of live sessions.
func (r *SessionRegistry) Capacity() int {
	return r.capacity
}

// insert must be called with mu held. It reports whether an entry was evicted.
func (r *SessionRegistry) insert(token string) bool {
	if idx, ok := r.index[token]; ok {
		r.unlink(idx)
		r.pushFront(idx)
		return false
	}

	var idx int
	evicted := false
	if len(r.slots) < r.capacity {
		r.slots = append(r.slots, slot{token: token, prev: none, next: none})
		idx = len(r.slots) - 1
	} else {
		idx = r.tail
		r.unlink(idx)
		delete(r.index, r.slots[idx].token)
		r.slots[idx] = slot{token: token, prev: none, next: none}
		evicted = true
	}

	r.pushFront(idx)
	r.index[token] = idx
	return evicted
}

func (r *SessionRegistry) unlink(idx int) {
	s := &r.slots[idx]
	if s.prev != none {
		r.slots[s.prev].next = s.next
	} else {
		r.head = s.next
	}
	if s.next != none {
		r.slots[s.next].prev = s.prev
	} else {
		r.tail = s.prev
	}
	s.prev, s.next = none, none
}

func (r *SessionRegistry) pushFront(idx int) {
	r.slots[idx].prev = none
	r.slots[idx].next = r.head
	if r.head != none {
		r.slots[r.head].prev = idx
	}
	r.head = idx
	if r.tail == none {
		r.tail = idx
	}
}
