// Chronicus - Media Playback Session Tracking and Reporting
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/chronicus

package event

import (
	"context"
	"fmt"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

// BusConfig holds configuration for the in-process event bus.
type BusConfig struct {
	// OutputChannelBuffer is the per-subscriber channel buffer size.
	// Buffering keeps publishers (the host's event feed) from blocking on
	// slow handlers for unrelated sessions.
	OutputChannelBuffer int64
}

// DefaultBusConfig returns production defaults for the bus.
func DefaultBusConfig() BusConfig {
	return BusConfig{
		OutputChannelBuffer: 256,
	}
}

// Bus is the typed event source the host publishes playback events into.
// It wraps a Watermill gochannel Pub/Sub: the core owns no network
// transport, so start/progress/stop arrive in-process and fan out to the
// registered handlers by topic.
type Bus struct {
	pubsub *gochannel.GoChannel
}

// NewBus creates a new in-process event bus.
func NewBus(cfg BusConfig, logger watermill.LoggerAdapter) *Bus {
	if logger == nil {
		logger = watermill.NewStdLogger(false, false)
	}

	pubsub := gochannel.NewGoChannel(gochannel.Config{
		OutputChannelBuffer: cfg.OutputChannelBuffer,
	}, logger)

	return &Bus{pubsub: pubsub}
}

// Publish validates, serializes, and publishes an event to its kind's topic.
func (b *Bus) Publish(_ context.Context, e *PlaybackEvent) error {
	payload, err := Marshal(e)
	if err != nil {
		return fmt.Errorf("publish %s: %w", e.Kind, err)
	}

	msg := message.NewMessage(watermill.NewUUID(), payload)
	if err := b.pubsub.Publish(e.Topic(), msg); err != nil {
		return fmt.Errorf("publish %s: %w", e.Kind, err)
	}
	return nil
}

// Subscriber exposes the bus's subscribe side for router handler wiring.
func (b *Bus) Subscriber() message.Subscriber {
	return b.pubsub
}

// Close shuts the bus down; pending subscriber channels are closed.
func (b *Bus) Close() error {
	return b.pubsub.Close()
}
