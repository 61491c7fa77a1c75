package main

import (
	"fmt"
	"net/http"
	"time"

	"github.com/JaimeStill/agent-registry/internal/config"
	"github.com/JaimeStill/agent-registry/internal/infrastructure"
	"github.com/JaimeStill/agent-registry/internal/server"
	"github.com/JaimeStill/agent-registry/pkg/routes"
)

// Server coordinates the infrastructure, the domain, and the HTTP listener.
type Server struct {
	infra   *infrastructure.Infrastructure
	domain  *Domain
	handler http.Handler
	http    server.System
}

// NewServer builds every subsystem without starting any of them.
func NewServer(cfg *config.Config) (*Server, error) {
	infra, err := infrastructure.New(cfg)
	if err != nil {
		return nil, err
	}
	return newServer(infra, cfg)
}

func newServer(infra *infrastructure.Infrastructure, cfg *config.Config) (*Server, error) {
	domain, err := NewDomain(infra, cfg)
	if err != nil {
		return nil, err
	}

	r := routes.New()
	registerRoutes(r, infra, domain, cfg)
	handler := buildMiddleware(infra, cfg).Apply(r.Build())

	infra.Logger.Info(
		"server initialized",
		"addr", cfg.Server.Addr(),
		"version", cfg.Version,
		"storage", cfg.Storage.Backend,
	)

	return &Server{
		infra:   infra,
		domain:  domain,
		handler: handler,
		http:    server.New(&cfg.Server, handler, infra.Logger),
	}, nil
}

// Start starts the infrastructure, seeds an empty registry, and begins
// serving. Readiness is reported once startup hooks complete.
func (s *Server) Start() error {
	s.infra.Logger.Info("starting service")

	if err := s.infra.Start(); err != nil {
		return err
	}

	if err := s.domain.Agents.Initialize(s.infra.Context()); err != nil {
		return fmt.Errorf("agents initialize failed: %w", err)
	}

	if err := s.http.Start(s.infra.Lifecycle); err != nil {
		return err
	}

	go func() {
		s.infra.Lifecycle.WaitForStartup()
		s.infra.Logger.Info("all subsystems ready")
	}()

	return nil
}

// Shutdown stops every subsystem within timeout.
func (s *Server) Shutdown(timeout time.Duration) error {
	s.infra.Logger.Info("initiating shutdown")
	return s.infra.Lifecycle.Shutdown(timeout)
}
