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

package observability

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/wiredhq/wired/common"
)

// mongoSinker writes one document per RoundTrip to a MongoDB collection,
// for deployments that want a queryable audit trail instead of a log
// file.
type mongoSinker struct {
	client     *mongo.Client
	collection *mongo.Collection
	timeout    time.Duration
}

func newMongoSinker(cfg MongoConfig) (Sinker, error) {
	cfg.Validate()

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Timeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, err
	}
	if err := client.Ping(ctx, nil); err != nil {
		return nil, err
	}

	return &mongoSinker{
		client:     client,
		collection: client.Database(cfg.Database).Collection(cfg.Collection),
		timeout:    cfg.Timeout,
	}, nil
}

func (s *mongoSinker) Sink(rt common.RoundTrip) error {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	_, err := s.collection.InsertOne(ctx, roundTripRecord{
		Method:        rt.Method,
		Route:         rt.Route,
		RouteKey:      rt.RouteKey,
		Protocol:      rt.Protocol,
		Status:        rt.Status,
		StreamID:      rt.StreamID,
		RequestBytes:  rt.RequestBytes,
		ResponseBytes: rt.ResponseBytes,
		DurationMS:    rt.Duration.Milliseconds(),
		Timestamp:     rt.Timestamp.Format(time.RFC3339Nano),
	})
	return err
}

func (s *mongoSinker) Close() {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()
	s.client.Disconnect(ctx)
}
