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

package router

import "testing"

func noop(ctx any) error { return nil }

func TestLiteralPrecedesPlaceholder(t *testing.T) {
	r := New()
	r.Register("GET", "/users/:id", noop)
	r.Register("GET", "/users/me", noop)

	_, key, ok := r.Match("GET", "/users/me")
	if !ok {
		t.Fatal("expected a match")
	}
	if key != "GET_/users/me" {
		t.Fatalf("expected literal route to win, got key %q", key)
	}
}

func TestPlaceholderMatches(t *testing.T) {
	r := New()
	r.Register("GET", "/users/:id", noop)

	_, key, ok := r.Match("GET", "/users/42")
	if !ok || key != "GET_/users/:id" {
		t.Fatalf("got key=%q ok=%v", key, ok)
	}
}

func TestNoMatch(t *testing.T) {
	r := New()
	r.Register("GET", "/x", noop)
	if _, _, ok := r.Match("GET", "/y"); ok {
		t.Fatal("expected no match")
	}
	if _, _, ok := r.Match("POST", "/x"); ok {
		t.Fatal("expected no match for wrong method")
	}
}

func TestMethodUppercased(t *testing.T) {
	r := New()
	r.Register("get", "/x", noop)
	if _, _, ok := r.Match("GET", "/x"); !ok {
		t.Fatal("expected registration to be case-insensitive on method")
	}
}
