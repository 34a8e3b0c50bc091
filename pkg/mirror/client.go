// Package mirror reads topic messages back from the consensus log's mirror-node REST
// API. The mirror is eventually consistent: a submitted message becomes queryable some
// time after consensus, which is why confirmation is a polling concern upstream.
package mirror

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"go.uber.org/zap"
	"net"
	"net/http"
	"net/url"
	"time"
)

var (
	ErrNetwork = errors.New("mirror node query failed")
	ErrTimeout = errors.New("mirror node query timed out")
)

// maxPages bounds pagination so a runaway links.next chain cannot loop forever.
const maxPages = 100

const defaultPageLimit = 100

type Client struct {
	logger  *zap.Logger
	client  *http.Client
	pool    *nodePool
	timeout time.Duration
}

func NewClient(logger *zap.Logger, baseURLs []string, requestTimeout time.Duration) (*Client, error) {
	if len(baseURLs) == 0 {
		return nil, ErrNoMirrorNodes
	}

	httpClient := &http.Client{
		Timeout: requestTimeout,
	}

	return &Client{
		logger:  logger,
		client:  httpClient,
		pool:    newNodePool(baseURLs, defaultLivenessTest(httpClient), time.Second*30),
		timeout: requestTimeout,
	}, nil
}

func (c *Client) Close() {
	c.pool.close()
}

// Ping probes a live mirror node, for health reporting.
func (c *Client) Ping(ctx context.Context) error {
	baseURL, err := c.pool.get()
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, baseURL+"/api/v1/network/nodes?limit=1", nil)
	if err != nil {
		return err
	}

	res, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrNetwork, err)
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode > 299 {
		return fmt.Errorf("%w: unexpected status %d", ErrNetwork, res.StatusCode)
	}

	return nil
}

// TopicMessages fetches every message on the topic in consensus order, following
// links.next pagination until the mirror reports no further page.
func (c *Client) TopicMessages(ctx context.Context, topicID string) ([]TopicMessage, error) {
	baseURL, err := c.pool.get()
	if err != nil {
		return nil, err
	}

	path := fmt.Sprintf("/api/v1/topics/%s/messages?order=asc&limit=%d", url.PathEscape(topicID), defaultPageLimit)

	var messages []TopicMessage
	for page := 0; page < maxPages; page++ {
		res, err := c.fetchPage(ctx, baseURL, path)
		if err != nil {
			c.pool.markDead(baseURL)
			return nil, err
		}

		messages = append(messages, res.Messages...)

		if res.Links.Next == nil || *res.Links.Next == "" {
			return messages, nil
		}

		path = *res.Links.Next
	}

	c.logger.Warn(
		"Stopped following mirror pagination after page limit",
		zap.String("topic_id", topicID),
		zap.Int("max_pages", maxPages),
		zap.Int("messages", len(messages)),
	)

	return messages, nil
}

func (c *Client) fetchPage(ctx context.Context, baseURL, path string) (messagesResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, baseURL+path, nil)
	if err != nil {
		return messagesResponse{}, fmt.Errorf("%w: %v", ErrNetwork, err)
	}

	res, err := c.client.Do(req)
	if err != nil {
		var netErr net.Error
		if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
			return messagesResponse{}, fmt.Errorf("%w: %v", ErrTimeout, err)
		}

		return messagesResponse{}, fmt.Errorf("%w: %v", ErrNetwork, err)
	}
	defer res.Body.Close()

	// The mirror returns 404 for topics with no messages yet: treat as an empty page,
	// not a failure, since "not visible yet" is an expected state.
	if res.StatusCode == http.StatusNotFound {
		return messagesResponse{}, nil
	}

	if res.StatusCode < 200 || res.StatusCode > 299 {
		return messagesResponse{}, fmt.Errorf("%w: unexpected status %d", ErrNetwork, res.StatusCode)
	}

	var decoded messagesResponse
	if err := json.NewDecoder(res.Body).Decode(&decoded); err != nil {
		return messagesResponse{}, fmt.Errorf("%w: %v", ErrNetwork, err)
	}

	return decoded, nil
}
