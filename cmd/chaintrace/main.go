package main

import (
	"context"
	"github.com/Zolldyk/chaintrace-sub003/internal/config"
	"github.com/Zolldyk/chaintrace-sub003/internal/server"
	"github.com/Zolldyk/chaintrace-sub003/pkg/codec"
	"github.com/Zolldyk/chaintrace-sub003/pkg/confirm"
	"github.com/Zolldyk/chaintrace-sub003/pkg/deadletter"
	"github.com/Zolldyk/chaintrace-sub003/pkg/ledger"
	"github.com/Zolldyk/chaintrace-sub003/pkg/mirror"
	"github.com/Zolldyk/chaintrace-sub003/pkg/publisher"
	"github.com/Zolldyk/chaintrace-sub003/pkg/query"
	"github.com/Zolldyk/chaintrace-sub003/pkg/retry"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/sync/errgroup"
	"os"
	"os/signal"
	"strings"
	"syscall"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger := buildLogger(cfg)
	defer logger.Sync()

	mirrorClient, err := mirror.NewClient(
		logger.With(zap.String("module", "mirror")),
		cfg.Hedera.MirrorNodes,
		cfg.Hedera.MessageTimeout.Duration(),
	)
	if err != nil {
		logger.Fatal("Failed to create mirror client", zap.Error(err))
	}
	defer mirrorClient.Close()

	deadLetterStore := buildDeadLetterStore(cfg, logger)
	defer deadLetterStore.Close(context.Background())

	eventCodec := codec.New(cfg.Hedera.MaxPayloadSize)

	submitter := ledger.NewHTTPSubmitter(
		logger.With(zap.String("module", "submitter")),
		cfg.Hedera.SubmitURL,
		cfg.Hedera.OperatorID,
		cfg.Hedera.MessageTimeout.Duration(),
	)

	eventPublisher := publisher.New(
		logger.With(zap.String("module", "publisher")),
		eventCodec,
		submitter,
		deadletter.NewRecorder(logger.With(zap.String("module", "dead_letter")), deadLetterStore),
		retry.Config{
			MaxRetries: cfg.Retry.MaxRetries,
			BaseDelay:  cfg.Retry.BaseDelay.Duration(),
			MaxDelay:   cfg.Retry.MaxDelay.Duration(),
			Multiplier: cfg.Retry.Multiplier,
		},
		cfg.Hedera.TopicID,
		cfg.Hedera.MessageTimeout.Duration(),
	)

	queryService := query.NewService(
		logger.With(zap.String("module", "query")),
		mirrorClient,
		eventCodec,
		cfg.Hedera.ConfirmationBudget.Duration(),
	)

	waiter := confirm.NewWaiter(
		logger.With(zap.String("module", "confirmation")),
		queryService,
		cfg.Confirmation.InitialPollInterval.Duration(),
		cfg.Confirmation.MaxPollInterval.Duration(),
	)

	httpServer := server.NewServer(
		cfg,
		logger.With(zap.String("module", "server")),
		eventPublisher,
		queryService,
		waiter,
		deadLetterStore,
		mirrorClient,
	)

	var group errgroup.Group
	group.Go(httpServer.Run)

	go func() {
		if err := group.Wait(); err != nil {
			logger.Fatal("Failed to run HTTP server", zap.Error(err))
		}
	}()

	// Wait for shutdown signal
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)
	<-stop

	logger.Info("Received shutdown signal!")
}

func buildLogger(cfg config.Config) *zap.Logger {
	var logCfg zap.Config
	if cfg.Production {
		logCfg = zap.NewProductionConfig()

		if cfg.PrettyLogs {
			logCfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
			logCfg.Encoding = "console"
		}
	} else {
		logCfg = zap.NewDevelopmentConfig()
		logCfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	switch strings.ToLower(cfg.LogLevel) {
	case "error":
		logCfg.Level = zap.NewAtomicLevelAt(zapcore.ErrorLevel)
	case "warn":
		logCfg.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
	case "debug":
		logCfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	default:
		logCfg.Level = zap.NewAtomicLevelAt(zapcore.InfoLevel)
	}

	logger, err := logCfg.Build()
	if err != nil {
		panic(err)
	}

	return logger
}

func buildDeadLetterStore(cfg config.Config, logger *zap.Logger) deadletter.Store {
	switch cfg.DeadLetter.Backend {
	case config.DeadLetterBackendMongoDB:
		db := connectMongo(cfg, logger)

		store := deadletter.NewMongoStore(logger.With(zap.String("module", "dead_letter")), db)
		if err := store.InitSchema(context.Background()); err != nil {
			logger.Fatal("Failed to initialize dead-letter schema", zap.Error(err))
		}

		return store
	default:
		store, err := deadletter.NewLevelDBStore(cfg.DeadLetter.Path)
		if err != nil {
			logger.Fatal("Failed to open dead-letter store", zap.Error(err))
		}

		return store
	}
}

func connectMongo(cfg config.Config, logger *zap.Logger) *mongo.Database {
	opts := options.Client().
		ApplyURI(cfg.DeadLetter.MongoURI).
		SetServerAPIOptions(options.ServerAPI(options.ServerAPIVersion1))

	client, err := mongo.Connect(context.Background(), opts)
	if err != nil {
		logger.Fatal("Failed to connect to MongoDB", zap.Error(err))
	}

	// Ping server
	if err := client.Ping(context.Background(), nil); err != nil {
		logger.Fatal("Failed to ping MongoDB server", zap.Error(err))
	}

	return client.Database(cfg.DeadLetter.MongoDatabase)
}
