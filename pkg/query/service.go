// Package query turns raw mirror-node messages into filtered, decoded event sets with
// retrieval-time metadata.
package query

import (
	"context"
	"fmt"
	"github.com/Zolldyk/chaintrace-sub003/pkg/codec"
	"github.com/Zolldyk/chaintrace-sub003/pkg/mirror"
	"github.com/Zolldyk/chaintrace-sub003/pkg/types/trace"
	"go.uber.org/zap"
	"time"
)

// MessageSource is the read-side capability the service decodes from. Satisfied by
// mirror.Client.
type MessageSource interface {
	TopicMessages(ctx context.Context, topicID string) ([]mirror.TopicMessage, error)
}

type Service struct {
	logger *zap.Logger
	source MessageSource
	codec  *codec.Codec
	budget time.Duration
}

// DefaultQueryBudget is the latency budget a fetch is expected to complete within.
const DefaultQueryBudget = 30 * time.Second

func NewService(logger *zap.Logger, source MessageSource, eventCodec *codec.Codec, budget time.Duration) *Service {
	if budget <= 0 {
		budget = DefaultQueryBudget
	}

	return &Service{
		logger: logger,
		source: source,
		codec:  eventCodec,
		budget: budget,
	}
}

// Fetch retrieves, decodes and filters the topic's messages. A single malformed
// message never fails the whole query: it is skipped and reported as a warning in the
// metadata. The result is recomputed on every call and never cached here.
func (s *Service) Fetch(ctx context.Context, topicID string, filters []Filter) (trace.RetrievalResult, error) {
	start := time.Now()

	messages, err := s.source.TopicMessages(ctx, topicID)
	if err != nil {
		return trace.RetrievalResult{}, err
	}

	var (
		events   []trace.EventRecord
		warnings []string
	)

	for _, message := range messages {
		payload, err := message.Payload()
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("message %d: invalid base64 payload: %v", message.SequenceNumber, err))
			continue
		}

		event, err := s.codec.Decode(payload)
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("message %d: %v", message.SequenceNumber, err))
			continue
		}

		matched, err := matchesAll(filters, event)
		if err != nil {
			return trace.RetrievalResult{}, err
		}

		if matched {
			events = append(events, event)
		}
	}

	queryTime := time.Since(start)
	withinBudget := queryTime <= s.budget

	if !withinBudget {
		s.logger.Warn(
			"Mirror query exceeded latency budget",
			zap.String("topic_id", topicID),
			zap.Duration("query_time", queryTime),
			zap.Duration("budget", s.budget),
		)
	}

	if len(warnings) > 0 {
		s.logger.Warn(
			"Skipped undecodable topic messages",
			zap.String("topic_id", topicID),
			zap.Strings("warnings", warnings),
		)
	}

	return trace.RetrievalResult{
		Found:  len(events) > 0,
		Events: events,
		Metadata: trace.RetrievalMetadata{
			QueryTimeMs:  queryTime.Milliseconds(),
			WithinBudget: withinBudget,
			MessageCount: len(messages),
			Warnings:     warnings,
		},
	}, nil
}

func matchesAll(filters []Filter, event trace.EventRecord) (bool, error) {
	for i := range filters {
		matched, err := filters[i].Matches(event)
		if err != nil {
			return false, err
		}

		if !matched {
			return false, nil
		}
	}

	return true, nil
}
