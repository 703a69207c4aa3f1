// Package api provides interfaces for dependency injection
package api

import (
	"context"

	"github.com/go-kit/log"
	"github.com/ssargent/frugy/pkg/registry"
)

// ServerStarter defines the interface for starting the API server
type ServerStarter interface {
	// StartServer serves the API until ctx is cancelled
	StartServer(ctx context.Context, reg *registry.Registry, store IImageStore, config ServerConfig, logger log.Logger) error
}

// ServerFactory creates server instances
type ServerFactory interface {
	// CreateServerStarter creates a server starter
	CreateServerStarter() ServerStarter
}
