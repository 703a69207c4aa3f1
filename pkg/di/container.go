// Package di provides dependency injection container
package di

import (
	"github.com/ssargent/frugy/pkg/api"      //nolint:depguard
	"github.com/ssargent/frugy/pkg/registry" //nolint:depguard
)

// Container holds all the dependencies for the application
type Container struct {
	registry      *registry.Registry
	serverFactory api.ServerFactory
}

// NewContainer creates a new dependency injection container
func NewContainer() *Container {
	return &Container{
		registry:      registry.Default(),
		serverFactory: api.NewServerFactory(),
	}
}

// GetRegistry returns the area type registry
func (c *Container) GetRegistry() *registry.Registry {
	return c.registry
}

// GetServerFactory returns the server factory
func (c *Container) GetServerFactory() api.ServerFactory {
	return c.serverFactory
}

// SetRegistry allows overriding the area type registry (for testing)
func (c *Container) SetRegistry(reg *registry.Registry) {
	c.registry = reg
}

// SetServerFactory allows overriding the server factory (for testing)
func (c *Container) SetServerFactory(factory api.ServerFactory) {
	c.serverFactory = factory
}
