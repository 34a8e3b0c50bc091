// Package codec serializes typed events into size-bounded transport payloads for the
// consensus log, and decodes retrieved payloads back into events.
package codec

import (
	"encoding/json"
	"errors"
	"fmt"
	"github.com/Zolldyk/chaintrace-sub003/pkg/types/trace"
)

// DefaultMaxPayloadSize matches the typical consensus-log message limit of 1 KiB.
const DefaultMaxPayloadSize = 1024

var (
	ErrPayloadTooLarge = errors.New("encoded payload exceeds maximum size")
	ErrInvalidEvent    = errors.New("event failed validation")
	ErrDecode          = errors.New("failed to decode payload")
)

type Codec struct {
	maxPayloadSize int
}

type Encoded struct {
	Bytes     []byte
	SizeBytes int
}

func New(maxPayloadSize int) *Codec {
	if maxPayloadSize <= 0 {
		maxPayloadSize = DefaultMaxPayloadSize
	}

	return &Codec{
		maxPayloadSize: maxPayloadSize,
	}
}

func (c *Codec) MaxPayloadSize() int {
	return c.maxPayloadSize
}

// Encode serializes the event deterministically. JSON encoding in Go is deterministic,
// as struct fields keep declaration order and map keys are sorted.
func (c *Codec) Encode(event trace.EventRecord) (Encoded, error) {
	if err := event.Validate(); err != nil {
		return Encoded{}, fmt.Errorf("%w: %v", ErrInvalidEvent, err)
	}

	data, err := json.Marshal(event)
	if err != nil {
		return Encoded{}, fmt.Errorf("%w: %v", ErrInvalidEvent, err)
	}

	if len(data) > c.maxPayloadSize {
		return Encoded{}, fmt.Errorf("%w: %d > %d bytes", ErrPayloadTooLarge, len(data), c.maxPayloadSize)
	}

	return Encoded{
		Bytes:     data,
		SizeBytes: len(data),
	}, nil
}

// Decode is the exact inverse of Encode for all valid inputs.
func (c *Codec) Decode(data []byte) (trace.EventRecord, error) {
	var event trace.EventRecord
	if err := json.Unmarshal(data, &event); err != nil {
		return trace.EventRecord{}, fmt.Errorf("%w: %v", ErrDecode, err)
	}

	if err := event.Validate(); err != nil {
		return trace.EventRecord{}, fmt.Errorf("%w: %v", ErrDecode, err)
	}

	return event, nil
}
