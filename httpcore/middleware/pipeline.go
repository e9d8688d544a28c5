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
	"runtime"

	"github.com/wiredhq/wired/httpcore/response"
	"github.com/wiredhq/wired/httpcore/router"
)

// Middleware is one link of the pipeline: given the context and a next
// function that continues the chain, it returns whatever the chain
// below it returned (after doing its own work before and/or after
// calling next).
type Middleware func(ctx *Context, next func() error) error

// StaticResource is the static-serving extension hook: given a route,
// it returns the resource's bytes and MIME type, or ok=false if the
// path isn't a known static resource.
type StaticResource func(route string) (content []byte, mimeType string, ok bool)

// Pipeline holds the ordered middleware chain, the route table and the
// optional static-resource hook, and performs dispatch.
type Pipeline struct {
	chain  []Middleware
	router *router.Router
	static StaticResource
}

// New builds a Pipeline dispatching unmatched middleware chains through
// r's registered routes.
func New(r *router.Router) *Pipeline {
	return &Pipeline{router: r}
}

// Use appends mw to the end of the chain. Order of registration is
// execution order.
func (p *Pipeline) Use(mw Middleware) {
	p.chain = append(p.chain, mw)
}

// SetStaticResource installs the static-resource hook, consulted before
// route matching in the terminal step.
func (p *Pipeline) SetStaticResource(fn StaticResource) {
	p.static = fn
}

// Dispatch runs ctx through the full middleware chain and the terminal
// route-resolution step, recovering any panic raised by a middleware or
// endpoint as an EndpointPanic. The response is never committed by
// Dispatch itself — the caller (the connection driver) does that once
// Dispatch returns, unless the endpoint wrote directly to ctx.Raw and
// committed nothing.
func (p *Pipeline) Dispatch(ctx *Context) (err error) {
	defer func() {
		if r := recover(); r != nil {
			const size = 64 << 10
			stack := make([]byte, size)
			stack = stack[:runtime.Stack(stack, false)]
			committed := ctx.Response != nil && ctx.Response.Committed()
			err = &EndpointPanic{Value: r, RouteKey: ctx.RouteKey, Committed: committed, StackTrace: stack}
		}
	}()
	return p.run(ctx, 0)
}

func (p *Pipeline) run(ctx *Context, i int) error {
	if i < len(p.chain) {
		mw := p.chain[i]
		return mw(ctx, func() error { return p.run(ctx, i+1) })
	}
	return p.terminal(ctx)
}

func (p *Pipeline) terminal(ctx *Context) error {
	if p.static != nil {
		if content, mime, ok := p.static(ctx.Route); ok {
			ctx.Response.SetStatus(200)
			ctx.Response.SetContentType(mime)
			ctx.Response.SetContent(response.NewBytesContent(content))
			return nil
		}
	}

	endpoint, key, ok := p.router.Match(ctx.Method, ctx.Route)
	if !ok {
		ctx.Response.SetStatus(404)
		ctx.Response.SetContentType("text/plain; charset=utf-8")
		ctx.Response.SetContent(response.NewBytesContent([]byte("not found")))
		return nil
	}

	ctx.RouteKey = key
	return endpoint(ctx)
}
