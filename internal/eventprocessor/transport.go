// Careguide - Adaptive Content Recommendation for Care Programs
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/careguide

package eventprocessor

import (
	"context"
	"errors"
	"fmt"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	natsgo "github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"

	"github.com/tomtom215/careguide/internal/config"
	"github.com/tomtom215/careguide/internal/logging"
)

// Transport backends.
const (
	BackendChannel = "gochannel"
	BackendNATS    = "nats"
)

// channelBuffer is the per-subscriber buffer of the in-process transport.
const channelBuffer = 256

// Transport bundles a publisher and subscriber pair together with the
// resources behind them.
type Transport struct {
	Publisher  message.Publisher
	Subscriber message.Subscriber

	backend string
	server  *EmbeddedServer
	conn    *natsgo.Conn
	streams *StreamInitializer
}

// NewTransport builds the transport selected by cfg. With NATS disabled
// it is an in-process gochannel; otherwise it connects to NATS (starting
// the embedded server when configured) and ensures the stream exists.
func NewTransport(ctx context.Context, cfg *config.NATSConfig, logger watermill.LoggerAdapter) (*Transport, error) {
	if logger == nil {
		logger = watermill.NopLogger{}
	}

	if !cfg.Enabled {
		ch := gochannel.NewGoChannel(gochannel.Config{OutputChannelBuffer: channelBuffer}, logger)
		return &Transport{Publisher: ch, Subscriber: ch, backend: BackendChannel}, nil
	}

	t := &Transport{backend: BackendNATS}
	url := cfg.URL

	if cfg.EmbeddedServer {
		srv, err := NewEmbeddedServer(cfg)
		if err != nil {
			return nil, fmt.Errorf("start embedded NATS: %w", err)
		}
		t.server = srv
		url = srv.ClientURL()
		logging.Info().Str("url", url).Str("store_dir", cfg.StoreDir).Msg("Embedded NATS server started")
	}

	if err := t.initNATS(ctx, url, cfg, logger); err != nil {
		_ = t.Close(context.Background())
		return nil, err
	}
	return t, nil
}

func (t *Transport) initNATS(ctx context.Context, url string, cfg *config.NATSConfig, logger watermill.LoggerAdapter) error {
	nc, err := natsgo.Connect(url, natsOptions(cfg, "admin", logger)...)
	if err != nil {
		return fmt.Errorf("connect to NATS: %w", err)
	}
	t.conn = nc

	js, err := jetstream.New(nc)
	if err != nil {
		return fmt.Errorf("create JetStream context: %w", err)
	}

	streamCfg := StreamConfigFrom(cfg)
	streams, err := NewStreamInitializer(js, &streamCfg)
	if err != nil {
		return err
	}
	if _, err := streams.EnsureStream(ctx); err != nil {
		return err
	}
	t.streams = streams

	if t.Publisher, err = NewNATSPublisher(url, cfg, logger); err != nil {
		return err
	}
	if t.Subscriber, err = NewNATSSubscriber(url, cfg, logger); err != nil {
		return err
	}

	logging.Info().Str("stream", streamCfg.Name).Strs("subjects", streamCfg.Subjects).Msg("NATS event transport ready")
	return nil
}

// Backend returns BackendChannel or BackendNATS.
func (t *Transport) Backend() string {
	return t.backend
}

// Healthy reports whether events can flow. For NATS this requires a live
// connection and an accessible stream.
func (t *Transport) Healthy(ctx context.Context) bool {
	if t.backend == BackendChannel {
		return true
	}
	if t.conn == nil || !t.conn.IsConnected() || t.streams == nil {
		return false
	}
	return t.streams.IsHealthy(ctx)
}

// Close releases the subscriber, publisher, connection and embedded
// server, in that order.
func (t *Transport) Close(ctx context.Context) error {
	var errs []error

	if t.Subscriber != nil {
		if err := t.Subscriber.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close subscriber: %w", err))
		}
	}
	// gochannel serves as both ends.
	if t.Publisher != nil && t.backend != BackendChannel {
		if err := t.Publisher.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close publisher: %w", err))
		}
	}
	if t.conn != nil {
		t.conn.Close()
	}
	if t.server != nil {
		if err := t.server.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("shutdown NATS server: %w", err))
		}
	}
	return errors.Join(errs...)
}
