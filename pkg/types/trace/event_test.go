package trace

import (
	"github.com/stretchr/testify/require"
	"testing"
	"time"
)

var testEvent = EventRecord{
	ProductID: "PRD-1001",
	EventType: EventTypeCreated,
	Actor: Actor{
		ID:    "0.0.12345",
		Role:  RoleProducer,
		OrgID: "org-farm-01",
	},
	Signature:     "a1b2c3d4e5f60718a1b2c3d4e5f60718",
	Timestamp:     time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC),
	SchemaVersion: "1.0",
}

func TestValidateOk(t *testing.T) {
	require.NoError(t, testEvent.Validate())
}

func TestValidateMissingProductId(t *testing.T) {
	event := testEvent
	event.ProductID = ""

	require.ErrorIs(t, event.Validate(), ErrMissingProductId)
}

func TestValidateMissingActor(t *testing.T) {
	event := testEvent
	event.Actor.ID = ""

	require.ErrorIs(t, event.Validate(), ErrMissingActor)
}

func TestValidateMissingTimestamp(t *testing.T) {
	event := testEvent
	event.Timestamp = time.Time{}

	require.ErrorIs(t, event.Validate(), ErrMissingTimestamp)
}

func TestValidateUnknownEventType(t *testing.T) {
	event := testEvent
	event.EventType = "shipped"

	require.ErrorIs(t, event.Validate(), ErrUnknownEventType)
}

func TestSigned(t *testing.T) {
	require.True(t, testEvent.Signed())

	unsigned := testEvent
	unsigned.Signature = ""
	require.False(t, unsigned.Signed())

	short := testEvent
	short.Signature = "abc123"
	require.False(t, short.Signed())
}

func TestEventIdDeterministic(t *testing.T) {
	require.Equal(t, testEvent.EventID(), testEvent.EventID())
	require.Len(t, testEvent.EventID(), 64)
}

func TestEventIdChangesWithFields(t *testing.T) {
	other := testEvent
	other.Timestamp = other.Timestamp.Add(time.Second)
	require.NotEqual(t, testEvent.EventID(), other.EventID())

	other = testEvent
	other.ProductID = "PRD-1002"
	require.NotEqual(t, testEvent.EventID(), other.EventID())

	other = testEvent
	other.EventType = EventTypeProcessed
	require.NotEqual(t, testEvent.EventID(), other.EventID())
}
