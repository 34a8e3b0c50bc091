package mirror

import (
	"context"
	"encoding/json"
	"fmt"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func newTestClient(t *testing.T, baseURL string) *Client {
	client, err := NewClient(zap.NewNop(), []string{baseURL}, time.Second*2)
	require.NoError(t, err)

	t.Cleanup(client.Close)

	return client
}

func messageFixture(sequence uint64) TopicMessage {
	return TopicMessage{
		ConsensusTimestamp: "1714557600.000000001",
		TopicID:            "0.0.4001",
		Message:            "eyJrIjoidiJ9", // {"k":"v"}
		SequenceNumber:     sequence,
		PayerAccountID:     "0.0.12345",
	}
}

func TestNewClientRequiresNodes(t *testing.T) {
	_, err := NewClient(zap.NewNop(), nil, time.Second)
	require.ErrorIs(t, err, ErrNoMirrorNodes)
}

func TestTopicMessagesSinglePage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/v1/topics/0.0.4001/messages", r.URL.Path)
		require.Equal(t, "asc", r.URL.Query().Get("order"))

		_ = json.NewEncoder(w).Encode(messagesResponse{
			Messages: []TopicMessage{messageFixture(1), messageFixture(2)},
		})
	}))
	defer server.Close()

	messages, err := newTestClient(t, server.URL).TopicMessages(context.Background(), "0.0.4001")
	require.NoError(t, err)
	require.Len(t, messages, 2)
	require.EqualValues(t, 1, messages[0].SequenceNumber)
	require.EqualValues(t, 2, messages[1].SequenceNumber)
}

func TestTopicMessagesFollowsPagination(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("timestamp") == "" {
			next := fmt.Sprintf("/api/v1/topics/0.0.4001/messages?order=asc&limit=%d&timestamp=gt:1714557600.000000001", defaultPageLimit)
			_ = json.NewEncoder(w).Encode(messagesResponse{
				Messages: []TopicMessage{messageFixture(1)},
				Links:    responseLinks{Next: &next},
			})
			return
		}

		_ = json.NewEncoder(w).Encode(messagesResponse{
			Messages: []TopicMessage{messageFixture(2)},
		})
	}))
	defer server.Close()

	messages, err := newTestClient(t, server.URL).TopicMessages(context.Background(), "0.0.4001")
	require.NoError(t, err)
	require.Len(t, messages, 2)
	require.EqualValues(t, 2, messages[1].SequenceNumber)
}

func TestTopicMessagesEmptyTopicIsNotAnError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// The mirror returns 404 until the topic's first message reaches it.
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	messages, err := newTestClient(t, server.URL).TopicMessages(context.Background(), "0.0.4001")
	require.NoError(t, err)
	require.Empty(t, messages)
}

func TestTopicMessagesServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)

	_, err := client.TopicMessages(context.Background(), "0.0.4001")
	require.ErrorIs(t, err, ErrNetwork)

	// The failing node is parked, so the next call has nowhere to go.
	_, err = client.TopicMessages(context.Background(), "0.0.4001")
	require.ErrorIs(t, err, ErrNoMirrorNodes)
}

func TestTopicMessagesTimeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(time.Millisecond * 300)
	}))
	defer server.Close()

	client, err := NewClient(zap.NewNop(), []string{server.URL}, time.Millisecond*50)
	require.NoError(t, err)
	defer client.Close()

	_, err = client.TopicMessages(context.Background(), "0.0.4001")
	require.ErrorIs(t, err, ErrTimeout)
}

func TestPing(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/v1/network/nodes", r.URL.Path)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	require.NoError(t, newTestClient(t, server.URL).Ping(context.Background()))
}

func TestPingFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	require.ErrorIs(t, newTestClient(t, server.URL).Ping(context.Background()), ErrNetwork)
}

func TestPayloadDecodesBase64(t *testing.T) {
	payload, err := messageFixture(1).Payload()
	require.NoError(t, err)
	require.Equal(t, `{"k":"v"}`, string(payload))

	_, err = TopicMessage{Message: "%%%not-base64%%%"}.Payload()
	require.Error(t, err)
}
