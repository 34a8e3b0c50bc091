package server

import (
	"context"
	"github.com/Zolldyk/chaintrace-sub003/internal/config"
	"github.com/Zolldyk/chaintrace-sub003/pkg/deadletter"
	"github.com/Zolldyk/chaintrace-sub003/pkg/query"
	"github.com/Zolldyk/chaintrace-sub003/pkg/types/trace"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"time"
)

type (
	Publisher interface {
		Publish(ctx context.Context, event trace.EventRecord) trace.SubmissionReceipt
	}

	QueryService interface {
		Fetch(ctx context.Context, topicID string, filters []query.Filter) (trace.RetrievalResult, error)
	}

	ConfirmationWaiter interface {
		Wait(ctx context.Context, topicID, productID string, deadline time.Duration) (bool, error)
	}

	Pinger interface {
		Ping(ctx context.Context) error
	}
)

type Server struct {
	config      config.Config
	logger      *zap.Logger
	publisher   Publisher
	queries     QueryService
	waiter      ConfirmationWaiter
	deadletters deadletter.Store
	mirror      Pinger

	router *gin.Engine
}

func NewServer(
	cfg config.Config,
	logger *zap.Logger,
	publisher Publisher,
	queries QueryService,
	waiter ConfirmationWaiter,
	deadletters deadletter.Store,
	mirror Pinger,
) *Server {
	if cfg.Production {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.Default()
	router.Use(cors.Default())

	return &Server{
		config:      cfg,
		logger:      logger,
		publisher:   publisher,
		queries:     queries,
		waiter:      waiter,
		deadletters: deadletters,
		mirror:      mirror,

		router: router,
	}
}

func (s *Server) Run() error {
	_ = s.router.SetTrustedProxies(nil)

	s.registerRoutes()

	return s.router.Run(s.config.Server.Address)
}

func (s *Server) registerRoutes() {
	s.router.POST("/event", s.HandleSubmit)
	s.router.GET("/events/:product_id", s.HandleGetEvents)
	s.router.GET("/events/:product_id/confirmation", s.HandleConfirmation)
	s.router.POST("/events/verify", s.HandleVerify)
	s.router.GET("/status", s.HandleStatus)

	// Register development / debug endpoints
	if !s.config.Production {
		s.router.GET("/debug/deadletters", s.HandleDeadLetters)
	}
}
