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

// Package controller wires the connection driver, the request
// pipeline, the observability subscriber and the admin server into one
// process lifecycle: New builds everything from configuration, Start
// runs it, Reload re-applies what can safely change at runtime, and
// Stop drains it.
package controller

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/hashicorp/go-multierror"
	pkgerrors "github.com/pkg/errors"

	"github.com/wiredhq/wired/common"
	"github.com/wiredhq/wired/confengine"
	"github.com/wiredhq/wired/httpcore/conn"
	"github.com/wiredhq/wired/httpcore/middleware"
	"github.com/wiredhq/wired/httpcore/router"
	"github.com/wiredhq/wired/internal/pubsub"
	"github.com/wiredhq/wired/logger"
	"github.com/wiredhq/wired/observability"
	"github.com/wiredhq/wired/server"
)

// Controller owns the process-lifetime collaborators: the connection
// driver (the actual HTTP/1.1+HTTP/2+WebSocket core), the pipeline it
// dispatches into, the round-trip bus and its observability subscriber,
// and the admin HTTP server.
type Controller struct {
	ctx    context.Context
	cancel context.CancelFunc

	buildInfo common.BuildInfo
	connCfg   conn.Config

	router   *router.Router
	pipeline *middleware.Pipeline
	bus      *pubsub.PubSub

	driver *conn.Driver
	obs    *observability.Observability
	admin  *server.Server
}

func setupLogger(conf *confengine.Config) error {
	var opts logger.Options
	if err := conf.UnpackChild("logger", &opts); err != nil {
		return err
	}

	if opts.Filename == "" {
		opts.Filename = "wired.log"
	}
	if opts.MaxBackups <= 0 {
		opts.MaxBackups = 10
	}
	if opts.MaxAge <= 0 {
		opts.MaxAge = 7
	}
	if opts.MaxSize <= 0 {
		opts.MaxSize = 100
	}

	logger.SetOptions(opts)
	return nil
}

// New builds a Controller from conf. Routes are registered on the
// returned Controller's Router before Start is called; the router is
// otherwise empty, matching the core's stance that endpoint definitions
// are an embedding-application concern, not a core one.
func New(conf *confengine.Config, buildInfo common.BuildInfo) (*Controller, error) {
	if err := setupLogger(conf); err != nil {
		return nil, err
	}

	connCfg := conn.DefaultConfig()
	if err := conf.UnpackChild("conn", &connCfg); err != nil {
		return nil, err
	}

	rt := router.New()
	pipeline := middleware.New(rt)
	if rs := connCfg.ResourceServing; rs != nil && rs.Enabled {
		pipeline.SetStaticResource(newFileProvider(rs.RootNamespace))
	}

	bus := pubsub.New()

	obs, err := observability.New(conf, bus)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "observability")
	}

	onRoundTrip := func(method, route, protocol string, status, streamID int, reqBytes, respBytes int64, dur time.Duration) {
		bus.Publish(common.RoundTrip{
			Method:        method,
			Route:         route,
			RouteKey:      route,
			Protocol:      protocol,
			Status:        status,
			StreamID:      streamID,
			RequestBytes:  reqBytes,
			ResponseBytes: respBytes,
			Duration:      dur,
			Timestamp:     time.Now(),
		})
	}

	driver, err := conn.New(connCfg, pipeline, onRoundTrip)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "connection driver")
	}

	admin, err := server.New(conf)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "admin server")
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Controller{
		ctx:       ctx,
		cancel:    cancel,
		buildInfo: buildInfo,
		connCfg:   connCfg,
		router:    rt,
		pipeline:  pipeline,
		bus:       bus,
		driver:    driver,
		obs:       obs,
		admin:     admin,
	}, nil
}

// Router exposes the route table for the embedding application to
// register endpoints on before Start is called.
func (c *Controller) Router() *router.Router {
	return c.router
}

// Pipeline exposes the dispatch chain for the embedding application to
// append middleware to before Start is called.
func (c *Controller) Pipeline() *middleware.Pipeline {
	return c.pipeline
}

func (c *Controller) Start() error {
	c.obs.Start()
	buildInfo.WithLabelValues(c.buildInfo.Version, c.buildInfo.GitHash, c.buildInfo.Time).Inc()

	go c.recordUptime()

	go func() {
		if err := c.driver.ListenAndServe(); err != nil {
			logger.Errorf("connection driver stopped: %v", err)
		}
	}()

	if c.admin != nil {
		go func() {
			err := c.admin.ListenAndServe()
			if err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Errorf("admin server stopped: %v", err)
			}
		}()
	}

	return nil
}

func (c *Controller) recordUptime() {
	ticker := time.NewTicker(15 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			uptime.Set(float64(time.Now().Unix() - common.Started()))
		case <-c.ctx.Done():
			return
		}
	}
}

// Reload re-applies the collaborators that can safely change without a
// listener restart: logging level/destination. bindAddress, TLS
// material and HTTP/2 settings take effect only on the next process
// start.
func (c *Controller) Reload(conf *confengine.Config) error {
	reloadTotal.Inc()
	return setupLogger(conf)
}

func (c *Controller) Stop() {
	ctx, cancel := context.WithTimeout(context.Background(), c.connCfg.ShutdownGrace)
	defer cancel()

	var errs *multierror.Error
	if err := c.driver.Shutdown(ctx); err != nil {
		errs = multierror.Append(errs, pkgerrors.Wrap(err, "connection driver shutdown"))
	}
	if c.admin != nil {
		if err := c.admin.Shutdown(ctx); err != nil {
			errs = multierror.Append(errs, pkgerrors.Wrap(err, "admin server shutdown"))
		}
	}
	if errs.ErrorOrNil() != nil {
		logger.Warnf("controller stop: %v", errs)
	}

	c.obs.Close()
	c.cancel()
}
