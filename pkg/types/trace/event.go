package trace

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"
	"time"
)

type (
	// EventRecord is a single tamper-evident lifecycle event for one product. Records are
	// immutable once constructed: they are created by a caller, signed, and never mutated
	// by the pipeline.
	EventRecord struct {
		ProductID       string         `json:"product_id" bson:"product_id"`
		EventType       EventType      `json:"event_type" bson:"event_type"`
		Actor           Actor          `json:"actor" bson:"actor"`
		Location        *Location      `json:"location,omitempty" bson:"location,omitempty"`
		Payload         map[string]any `json:"payload,omitempty" bson:"payload,omitempty"`
		Signature       string         `json:"signature" bson:"signature"`
		PreviousEventID string         `json:"previous_event_id,omitempty" bson:"previous_event_id,omitempty"`
		Timestamp       time.Time      `json:"timestamp" bson:"timestamp"`
		SchemaVersion   string         `json:"schema_version" bson:"schema_version"`
	}

	EventType string
	ActorRole string

	Actor struct {
		ID    string    `json:"id" bson:"id"`
		Role  ActorRole `json:"role" bson:"role"`
		OrgID string    `json:"org_id,omitempty" bson:"org_id,omitempty"`
	}

	Location struct {
		Name        string       `json:"name,omitempty" bson:"name,omitempty"`
		Region      string       `json:"region,omitempty" bson:"region,omitempty"`
		Coordinates *Coordinates `json:"coordinates,omitempty" bson:"coordinates,omitempty"`
	}

	Coordinates struct {
		Latitude  float64 `json:"lat" bson:"lat"`
		Longitude float64 `json:"lng" bson:"lng"`
	}
)

const (
	EventTypeCreated   EventType = "created"
	EventTypeProcessed EventType = "processed"
	EventTypeVerified  EventType = "verified"
	EventTypeRejected  EventType = "rejected"
	EventTypeCustom    EventType = "custom"

	RoleProducer  ActorRole = "producer"
	RoleProcessor ActorRole = "processor"
	RoleVerifier  ActorRole = "verifier"
)

// MinSignatureLength is the minimum number of characters a signature must have for an
// event to be considered signed.
const MinSignatureLength = 16

var (
	ErrMissingProductId = errors.New("event has no product id")
	ErrMissingActor     = errors.New("event has no actor identity")
	ErrMissingTimestamp = errors.New("event has no timestamp")
	ErrUnknownEventType = errors.New("unknown event type")
)

func (t EventType) Valid() bool {
	switch t {
	case EventTypeCreated, EventTypeProcessed, EventTypeVerified, EventTypeRejected, EventTypeCustom:
		return true
	default:
		return false
	}
}

func (e EventRecord) Validate() error {
	if e.ProductID == "" {
		return ErrMissingProductId
	}

	if e.Actor.ID == "" {
		return ErrMissingActor
	}

	if e.Timestamp.IsZero() {
		return ErrMissingTimestamp
	}

	if !e.EventType.Valid() {
		return fmt.Errorf("%w: %s", ErrUnknownEventType, e.EventType)
	}

	return nil
}

// Signed reports whether the event carries a signature long enough to count as present.
// Signature verification against a key registry is the verifier's concern, not ours.
func (e EventRecord) Signed() bool {
	return len(e.Signature) >= MinSignatureLength
}

// EventID derives the stable identifier of the event: a hex-encoded SHA-256 hash over
// the product id, timestamp, actor identity and event type. Chain links
// (PreviousEventID) reference these ids.
func (e EventRecord) EventID() string {
	digest := sha256.New()
	digest.Write([]byte(e.ProductID))

	tsBytes := make([]byte, 8)
	binary.LittleEndian.PutUint64(tsBytes, uint64(e.Timestamp.UnixNano()))
	digest.Write(tsBytes)

	digest.Write([]byte(e.Actor.ID))
	digest.Write([]byte(e.EventType))

	return hex.EncodeToString(digest.Sum(nil))
}
