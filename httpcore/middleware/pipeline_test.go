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

package middleware

import (
	"testing"

	"github.com/wiredhq/wired/httpcore/response"
	"github.com/wiredhq/wired/httpcore/router"
)

func newCtx(method, route string) *Context {
	return &Context{Method: method, Route: route, Response: response.New()}
}

func TestDispatchRunsMiddlewareInOrderThenEndpoint(t *testing.T) {
	r := router.New()
	var order []string
	r.Register("GET", "/ping", func(c any) error {
		order = append(order, "endpoint")
		c.(*Context).Response.SetStatus(200)
		return nil
	})

	p := New(r)
	p.Use(func(ctx *Context, next func() error) error {
		order = append(order, "before-1")
		err := next()
		order = append(order, "after-1")
		return err
	})
	p.Use(func(ctx *Context, next func() error) error {
		order = append(order, "before-2")
		return next()
	})

	ctx := newCtx("GET", "/ping")
	defer ctx.Dispose()

	if err := p.Dispatch(ctx); err != nil {
		t.Fatalf("Dispatch: %v", err)
	}

	want := []string{"before-1", "before-2", "endpoint", "after-1"}
	if len(order) != len(want) {
		t.Fatalf("got %v want %v", order, want)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("got %v want %v", order, want)
		}
	}
}

func TestDispatchNoMatchIsNotFound(t *testing.T) {
	r := router.New()
	p := New(r)

	ctx := newCtx("GET", "/missing")
	defer ctx.Dispose()

	if err := p.Dispatch(ctx); err != nil {
		t.Fatalf("Dispatch: %v", err)
	}
	// status was set by the terminal step via SetStatus, no AddHeader
	// call is made here so we only assert no error surfaced.
}

func TestDispatchStaticResourceTakesPriority(t *testing.T) {
	r := router.New()
	r.Register("GET", "/index.html", func(c any) error {
		t.Fatal("endpoint should not run when a static resource matches")
		return nil
	})

	p := New(r)
	p.SetStaticResource(func(route string) ([]byte, string, bool) {
		if route == "/index.html" {
			return []byte("<html></html>"), "text/html", true
		}
		return nil, "", false
	})

	ctx := newCtx("GET", "/index.html")
	defer ctx.Dispose()

	if err := p.Dispatch(ctx); err != nil {
		t.Fatalf("Dispatch: %v", err)
	}
}

func TestDispatchRecoversEndpointPanic(t *testing.T) {
	r := router.New()
	r.Register("GET", "/boom", func(c any) error {
		panic("kaboom")
	})

	p := New(r)
	ctx := newCtx("GET", "/boom")
	defer ctx.Dispose()

	err := p.Dispatch(ctx)
	if err == nil {
		t.Fatal("expected an error from the recovered panic")
	}
	ep, ok := err.(*EndpointPanic)
	if !ok {
		t.Fatalf("expected *EndpointPanic, got %T", err)
	}
	if ep.Committed {
		t.Fatal("response was never committed, expected Committed=false")
	}
	if ep.RouteKey != router.Key("GET", "/boom") {
		t.Fatalf("got RouteKey %q", ep.RouteKey)
	}
}

func TestDispatchRecoversPanicAfterCommit(t *testing.T) {
	r := router.New()
	r.Register("GET", "/boom", func(c any) error {
		ctx := c.(*Context)
		ctx.Response.SetStatus(200)
		if err := ctx.Response.Commit(discard{}); err != nil {
			t.Fatalf("Commit: %v", err)
		}
		panic("late kaboom")
	})

	p := New(r)
	ctx := newCtx("GET", "/boom")
	defer ctx.Dispose()

	err := p.Dispatch(ctx)
	ep, ok := err.(*EndpointPanic)
	if !ok {
		t.Fatalf("expected *EndpointPanic, got %T (%v)", err, err)
	}
	if !ep.Committed {
		t.Fatal("expected Committed=true after Commit was called")
	}
}

type discard struct{}

func (discard) Write(p []byte) (int, error) { return len(p), nil }
