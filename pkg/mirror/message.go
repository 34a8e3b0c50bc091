package mirror

import (
	"encoding/base64"
	"github.com/Zolldyk/chaintrace-sub003/pkg/types/trace"
)

// TopicMessage is one record from the mirror node's topic message endpoint. Message
// holds the base64-encoded payload exactly as the read API returns it.
type TopicMessage struct {
	ConsensusTimestamp trace.ConsensusTimestamp `json:"consensus_timestamp"`
	TopicID            string                   `json:"topic_id"`
	Message            string                   `json:"message"`
	RunningHash        string                   `json:"running_hash"`
	SequenceNumber     uint64                   `json:"sequence_number"`
	PayerAccountID     string                   `json:"payer_account_id"`
}

// Payload decodes the base64 message body into the raw codec bytes.
func (m TopicMessage) Payload() ([]byte, error) {
	return base64.StdEncoding.DecodeString(m.Message)
}

type (
	messagesResponse struct {
		Messages []TopicMessage `json:"messages"`
		Links    responseLinks  `json:"links"`
	}

	responseLinks struct {
		Next *string `json:"next"`
	}
)
