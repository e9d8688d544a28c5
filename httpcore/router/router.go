// Copyright 2025 The packetd Authors
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package router matches glob-style route patterns with :param
// placeholders against a request path, per method.
package router

import (
	"regexp"
	"strings"
	"sync"
)

// Endpoint is the terminal handler a matched route resolves to. The
// pipeline (httpcore/middleware) invokes it after the middleware chain.
type Endpoint func(ctx any) error

type route struct {
	method   string
	pattern  string
	key      string // "<METHOD>_<pattern>"
	re       *regexp.Regexp
	literal  bool
	endpoint Endpoint
}

// Router holds the registered (method, pattern) -> endpoint table.
// Registration is expected at startup; Match is safe for concurrent use
// once registration is done (compiled patterns are cached).
type Router struct {
	mu     sync.RWMutex
	byVerb map[string][]*route
}

func New() *Router {
	return &Router{byVerb: make(map[string][]*route)}
}

func compile(pattern string) (*regexp.Regexp, bool) {
	literal := !strings.Contains(pattern, ":")
	re := regexp.MustCompile("^" + buildPattern(pattern) + "$")
	return re, literal
}

func buildPattern(pattern string) string {
	segments := strings.Split(pattern, "/")
	for i, seg := range segments {
		if strings.HasPrefix(seg, ":") {
			segments[i] = "[^/]+"
		} else {
			segments[i] = regexp.QuoteMeta(seg)
		}
	}
	return strings.Join(segments, "/")
}

// Key returns the canonical "<METHOD>_<pattern>" registration key used
// to identify a registered route.
func Key(method, pattern string) string {
	return strings.ToUpper(method) + "_" + pattern
}

// Register adds a route. Patterns with literal segments are tried before
// placeholder patterns at match time regardless of registration order.
func (r *Router) Register(method, pattern string, endpoint Endpoint) {
	method = strings.ToUpper(method)
	re, literal := compile(pattern)
	rt := &route{
		method:   method,
		pattern:  pattern,
		key:      Key(method, pattern),
		re:       re,
		literal:  literal,
		endpoint: endpoint,
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.byVerb[method] = append(r.byVerb[method], rt)
}

// Match finds the endpoint registered for method whose pattern matches
// path. Literal patterns are preferred over placeholder patterns when
// both would match; among equally-specific patterns the first registered
// wins.
func (r *Router) Match(method, path string) (Endpoint, string, bool) {
	method = strings.ToUpper(method)

	r.mu.RLock()
	candidates := r.byVerb[method]
	r.mu.RUnlock()

	var literalMatch, placeholderMatch *route
	for _, rt := range candidates {
		if !rt.re.MatchString(path) {
			continue
		}
		if rt.literal {
			if literalMatch == nil {
				literalMatch = rt
			}
			continue
		}
		if placeholderMatch == nil {
			placeholderMatch = rt
		}
	}

	if literalMatch != nil {
		return literalMatch.endpoint, literalMatch.key, true
	}
	if placeholderMatch != nil {
		return placeholderMatch.endpoint, placeholderMatch.key, true
	}
	return nil, "", false
}
