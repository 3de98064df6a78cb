// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Authgate Contributors

package web

import (
	"net/url"
	"path"

	"github.com/gobwas/glob"
	"github.com/samber/oops"
)

// PublicPaths matches forwarded request URIs that skip authentication.
//
// Pattern matching uses gobwas/glob with '/' as the segment separator:
//   - '*' matches within a single path segment
//   - '**' matches across segments
//
// Examples:
//   - "/favicon.ico" matches only that path
//   - "/static/*" matches "/static/app.css" but NOT "/static/img/logo.png"
//   - "/static/**" matches both
//
// The query string is ignored and the path is cleaned before matching, so
// "/static/../admin" is checked as "/admin".
type PublicPaths struct {
	patterns []compiledPath
}

type compiledPath struct {
	pattern string
	glob    glob.Glob
}

// NewPublicPaths compiles patterns. Empty or malformed patterns are errors.
func NewPublicPaths(patterns []string) (*PublicPaths, error) {
	compiled := make([]compiledPath, len(patterns))
	for i, pattern := range patterns {
		if pattern == "" {
			return nil, oops.Code("WEB_INVALID_PUBLIC_PATH").
				With("index", i).
				Errorf("empty public path pattern")
		}
		g, err := glob.Compile(pattern, '/')
		if err != nil {
			return nil, oops.Code("WEB_INVALID_PUBLIC_PATH").
				With("index", i).
				With("pattern", pattern).
				Wrap(err)
		}
		compiled[i] = compiledPath{pattern: pattern, glob: g}
	}
	return &PublicPaths{patterns: compiled}, nil
}

// Patterns returns a copy of the configured patterns.
func (p *PublicPaths) Patterns() []string {
	out := make([]string, len(p.patterns))
	for i, c := range p.patterns {
		out[i] = c.pattern
	}
	return out
}

// Match reports whether uri is public. uri is a request path with optional
// query; empty, unparseable or absolute-form URIs never match.
func (p *PublicPaths) Match(uri string) bool {
	if len(p.patterns) == 0 || uri == "" {
		return false
	}
	u, err := url.ParseRequestURI(uri)
	if err != nil || u.Scheme != "" || u.Host != "" || u.Path == "" {
		return false
	}
	clean := path.Clean(u.Path)
	for _, c := range p.patterns {
		if c.glob.Match(clean) {
			return true
		}
	}
	return false
}
