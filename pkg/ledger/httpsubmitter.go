package ledger

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"net"
	"net/http"
	"time"
)

// HTTPSubmitter delivers payloads to the consensus topic through a relay endpoint that
// holds the operator credentials. Transport failures are classified by HTTP status at
// this boundary, never by downstream message inspection.
type HTTPSubmitter struct {
	client     *http.Client
	submitURL  string
	operatorID string
	logger     *zap.Logger
}

type (
	submitRequest struct {
		TopicID        string `json:"topic_id"`
		Message        string `json:"message"` // Base64
		PayerAccountID string `json:"payer_account_id"`
		// Nonce prevents duplicate-transaction rejections when the same payload is retried.
		Nonce uuid.UUID `json:"nonce"`
	}

	submitResponse struct {
		SequenceNumber uint64 `json:"sequence_number"`
		TransactionID  string `json:"transaction_id"`
	}
)

var _ Submitter = (*HTTPSubmitter)(nil)

func NewHTTPSubmitter(logger *zap.Logger, submitURL, operatorID string, timeout time.Duration) *HTTPSubmitter {
	return &HTTPSubmitter{
		client: &http.Client{
			Timeout: timeout,
		},
		submitURL:  submitURL,
		operatorID: operatorID,
		logger:     logger,
	}
}

func (s *HTTPSubmitter) Submit(ctx context.Context, topicID string, payload []byte) (SubmitResult, error) {
	body, err := json.Marshal(submitRequest{
		TopicID:        topicID,
		Message:        base64.StdEncoding.EncodeToString(payload),
		PayerAccountID: s.operatorID,
		Nonce:          uuid.New(),
	})
	if err != nil {
		return SubmitResult{}, NewSubmitError(ErrorKindInvalidMessage, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.submitURL, bytes.NewReader(body))
	if err != nil {
		return SubmitResult{}, NewSubmitError(ErrorKindInvalidMessage, err)
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := s.client.Do(req)
	if err != nil {
		var netErr net.Error
		if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
			return SubmitResult{}, NewSubmitError(ErrorKindTimeout, err)
		}

		return SubmitResult{}, NewSubmitError(ErrorKindUnavailable, err)
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode > 299 {
		return SubmitResult{}, NewSubmitError(classifyStatus(res.StatusCode), fmt.Errorf("unexpected status %d", res.StatusCode))
	}

	var decoded submitResponse
	if err := json.NewDecoder(res.Body).Decode(&decoded); err != nil {
		s.logger.Error("Failed to decode submit response", zap.Error(err), zap.String("topic_id", topicID))
		return SubmitResult{}, NewSubmitError(ErrorKindInternal, err)
	}

	return SubmitResult{
		SequenceNumber: decoded.SequenceNumber,
		TransactionID:  decoded.TransactionID,
	}, nil
}

func classifyStatus(status int) ErrorKind {
	switch {
	case status == http.StatusRequestTimeout || status == http.StatusGatewayTimeout:
		return ErrorKindTimeout
	case status == http.StatusTooManyRequests:
		return ErrorKindThrottled
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return ErrorKindUnauthorized
	case status >= 500:
		return ErrorKindUnavailable
	default:
		return ErrorKindInvalidMessage
	}
}
