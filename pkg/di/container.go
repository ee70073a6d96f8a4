// Package di provides dependency injection container
package di

import (
	"github.com/ssargent/tapebox/pkg/api" //nolint:depguard
	"github.com/ssargent/tapebox/pkg/tape"
)

// StoreFactory opens a tape store for the given settings
type StoreFactory func(config tape.Config) (*tape.Store, error)

// Container holds all the dependencies for the application
type Container struct {
	serverFactory api.ServerFactory
	storeFactory  StoreFactory
}

// NewContainer creates a new dependency injection container
func NewContainer() *Container {
	return &Container{
		serverFactory: api.NewServerFactory(),
		storeFactory:  tape.NewStore,
	}
}

// GetServerFactory returns the server factory
func (c *Container) GetServerFactory() api.ServerFactory {
	return c.serverFactory
}

// SetServerFactory allows overriding the server factory (for testing)
func (c *Container) SetServerFactory(factory api.ServerFactory) {
	c.serverFactory = factory
}

// OpenStore opens a tape store through the configured factory
func (c *Container) OpenStore(config tape.Config) (*tape.Store, error) {
	return c.storeFactory(config)
}

// SetStoreFactory allows overriding how stores are opened (for testing)
func (c *Container) SetStoreFactory(factory StoreFactory) {
	c.storeFactory = factory
}
