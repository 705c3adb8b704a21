// Package qdrant implements the store contract on the Qdrant gRPC client.
package qdrant

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/qdrant/go-client/qdrant"

	"github.com/lagunalab/cartodex/internal/domain"
	"github.com/lagunalab/cartodex/internal/store"
)

const defaultGRPCPort = 6334

// Store implements store.Store for Qdrant.
type Store struct {
	client *qdrant.Client
}

var _ store.Store = (*Store)(nil)

// New connects to a Qdrant server. Addr accepts "host", "host:port" or a
// full http(s) URL; https implies TLS.
func New(cfg store.Config) (*Store, error) {
	if cfg.Addr == "" {
		return nil, fmt.Errorf("qdrant addr is required")
	}

	addr := cfg.Addr
	if !strings.Contains(addr, "://") {
		addr = "http://" + addr
	}
	u, err := url.Parse(addr)
	if err != nil {
		return nil, fmt.Errorf("parse qdrant addr: %w", err)
	}

	port := defaultGRPCPort
	if u.Port() != "" {
		port, err = strconv.Atoi(u.Port())
		if err != nil {
			return nil, fmt.Errorf("invalid qdrant port: %w", err)
		}
	}

	client, err := qdrant.NewClient(&qdrant.Config{
		Host:   u.Hostname(),
		Port:   port,
		APIKey: cfg.APIKey,
		UseTLS: u.Scheme == "https",
	})
	if err != nil {
		return nil, fmt.Errorf("create qdrant client: %w", err)
	}

	return &Store{client: client}, nil
}

// Ping verifies server availability.
func (s *Store) Ping(ctx context.Context) error {
	if _, err := s.client.HealthCheck(ctx); err != nil {
		return fmt.Errorf("%w: health check: %w", domain.ErrStoreUnavailable, err)
	}
	return nil
}

// Close releases the gRPC connection.
func (s *Store) Close() error {
	if err := s.client.Close(); err != nil {
		return fmt.Errorf("close qdrant client: %w", err)
	}
	return nil
}
