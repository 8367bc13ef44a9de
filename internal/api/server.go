// Package api exposes the verification service over HTTP.
package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/yourorg/attendzk/internal/verify"
	"github.com/yourorg/attendzk/pkg/ledger"
)

type Server struct {
	router *gin.Engine
	http   *http.Server
	svc    *verify.Service
	hashes ledger.HashLedger
	log    zerolog.Logger
}

func NewServer(addr string, svc *verify.Service, hashes ledger.HashLedger, log zerolog.Logger) *Server {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()

	s := &Server{
		router: router,
		svc:    svc,
		hashes: hashes,
		log:    log.With().Str("component", "api").Logger(),
	}

	router.Use(gin.Recovery(), requestLogger(s.log))

	router.GET("/health", s.handleHealth)
	zk := router.Group("/api/zk")
	{
		zk.POST("/verify", requireWallet(), s.handleVerify)
		zk.GET("/records/:id", s.handleGetRecord)
	}
	router.GET("/api/ledger/:id/hashes", s.handleGetHashes)

	s.http = &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Handler exposes the router for tests.
func (s *Server) Handler() http.Handler { return s.router }

func (s *Server) Start() error {
	s.log.Info().Str("addr", s.http.Addr).Msg("http server listening")
	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}
