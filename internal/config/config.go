package config

import (
	"encoding/json"
	"fmt"
	"github.com/Zolldyk/chaintrace-sub003/pkg/types"
	"github.com/caarlos0/env/v10"
	"os"
	"strings"
)

type (
	Config struct {
		Production   bool         `json:"production" env:"PRODUCTION" envDefault:"false"`
		PrettyLogs   bool         `json:"pretty_logs" env:"PRETTY_LOGS" envDefault:"false"`
		LogLevel     string       `json:"log_level" env:"LOG_LEVEL" envDefault:"info"`
		Server       Server       `json:"server" envPrefix:"SERVER_"`
		Hedera       Hedera       `json:"hedera" envPrefix:"HEDERA_"`
		Retry        Retry        `json:"retry" envPrefix:"RETRY_"`
		Confirmation Confirmation `json:"confirmation" envPrefix:"CONFIRMATION_"`
		DeadLetter   DeadLetter   `json:"dead_letter" envPrefix:"DEAD_LETTER_"`
	}

	Server struct {
		Address string `json:"address" env:"ADDRESS" envDefault:"0.0.0.0:8080"`
	}

	Hedera struct {
		TopicID            string                   `json:"topic_id" env:"TOPIC_ID"`
		OperatorID         string                   `json:"operator_id" env:"OPERATOR_ID"`
		OperatorKey        string                   `json:"operator_key" env:"OPERATOR_KEY"`
		NetworkType        NetworkType              `json:"network_type" env:"NETWORK_TYPE" envDefault:"testnet"`
		SubmitURL          string                   `json:"submit_url" env:"SUBMIT_URL"`
		MirrorNodes        []string                 `json:"mirror_nodes" env:"MIRROR_NODES" envSeparator:","`
		MessageTimeout     types.MarshalledDuration `json:"message_timeout" env:"MESSAGE_TIMEOUT" envDefault:"10s"`
		ConfirmationBudget types.MarshalledDuration `json:"confirmation_budget" env:"CONFIRMATION_BUDGET" envDefault:"30s"`
		MaxPayloadSize     int                      `json:"max_payload_size" env:"MAX_PAYLOAD_SIZE" envDefault:"1024"`
	}

	NetworkType string

	Retry struct {
		MaxRetries uint64                   `json:"max_retries" env:"MAX_RETRIES" envDefault:"3"`
		BaseDelay  types.MarshalledDuration `json:"base_delay" env:"BASE_DELAY" envDefault:"500ms"`
		MaxDelay   types.MarshalledDuration `json:"max_delay" env:"MAX_DELAY" envDefault:"10s"`
		Multiplier float64                  `json:"multiplier" env:"MULTIPLIER" envDefault:"2"`
	}

	Confirmation struct {
		InitialPollInterval types.MarshalledDuration `json:"initial_poll_interval" env:"INITIAL_POLL_INTERVAL" envDefault:"500ms"`
		MaxPollInterval     types.MarshalledDuration `json:"max_poll_interval" env:"MAX_POLL_INTERVAL" envDefault:"2s"`
	}

	DeadLetter struct {
		Backend       DeadLetterBackend `json:"backend" env:"BACKEND" envDefault:"leveldb"`
		Path          string            `json:"path" env:"PATH" envDefault:"deadletters.db"`
		MongoURI      string            `json:"mongo_uri" env:"MONGO_URI"`
		MongoDatabase string            `json:"mongo_database" env:"MONGO_DATABASE" envDefault:"chaintrace"`
	}

	DeadLetterBackend string
)

const (
	NetworkTypeMainnet    NetworkType = "mainnet"
	NetworkTypeTestnet    NetworkType = "testnet"
	NetworkTypePreviewnet NetworkType = "previewnet"

	DeadLetterBackendLevelDB DeadLetterBackend = "leveldb"
	DeadLetterBackendMongoDB DeadLetterBackend = "mongodb"
)

func Load() (Config, error) {
	var conf Config

	// Try to load JSON config file, but fallback to environment variables if it does not exist
	if _, err := os.Stat("config.json"); err == nil {
		bytes, err := os.ReadFile("config.json")
		if err != nil {
			return Config{}, err
		}

		if err := json.Unmarshal(bytes, &conf); err != nil {
			return Config{}, err
		}

		return conf, conf.Validate()
	}

	if err := env.Parse(&conf); err != nil {
		return Config{}, err
	}

	return conf, conf.Validate()
}

// Validate fails fast at construction: a node with no topic or no mirror nodes cannot
// do anything useful, so it should not start.
func (c Config) Validate() error {
	if c.Hedera.TopicID == "" {
		return missingField("hedera.topic_id")
	}

	if c.Hedera.OperatorID == "" {
		return missingField("hedera.operator_id")
	}

	if c.Hedera.SubmitURL == "" {
		return missingField("hedera.submit_url")
	}

	if len(c.Hedera.MirrorNodes) == 0 {
		return missingField("hedera.mirror_nodes")
	}

	switch c.Hedera.NetworkType.ConvertCase() {
	case NetworkTypeMainnet, NetworkTypeTestnet, NetworkTypePreviewnet:
	default:
		return fmt.Errorf("config: unknown network type %q", c.Hedera.NetworkType)
	}

	switch c.DeadLetter.Backend {
	case DeadLetterBackendLevelDB:
		if c.DeadLetter.Path == "" {
			return missingField("dead_letter.path")
		}
	case DeadLetterBackendMongoDB:
		if c.DeadLetter.MongoURI == "" {
			return missingField("dead_letter.mongo_uri")
		}
	default:
		return fmt.Errorf("config: unknown dead-letter backend %q", c.DeadLetter.Backend)
	}

	return nil
}

func missingField(name string) error {
	return fmt.Errorf("config: required field %s is not set", name)
}

func (n NetworkType) ConvertCase() NetworkType {
	return NetworkType(strings.ToLower(n.String()))
}

func (n NetworkType) String() string {
	return string(n)
}
