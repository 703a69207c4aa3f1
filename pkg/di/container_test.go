package di

import (
	"context"
	"testing"

	"github.com/go-kit/log"
	"github.com/ssargent/frugy/pkg/api"
	"github.com/ssargent/frugy/pkg/registry"
	"github.com/stretchr/testify/assert"
)

type stubStarter struct{}

func (stubStarter) StartServer(context.Context, *registry.Registry, api.IImageStore, api.ServerConfig, log.Logger) error {
	return nil
}

type stubFactory struct{}

func (stubFactory) CreateServerStarter() api.ServerStarter { return stubStarter{} }

func TestContainer(t *testing.T) {
	c := NewContainer()
	assert.Equal(t, []string{registry.BoardInfo, registry.ChassisInfo, registry.ProductInfo}, c.GetRegistry().Names())
	assert.IsType(t, &api.DefaultServerFactory{}, c.GetServerFactory())

	c.SetServerFactory(stubFactory{})
	assert.IsType(t, stubStarter{}, c.GetServerFactory().CreateServerStarter())

	reg := registry.New()
	c.SetRegistry(reg)
	assert.Same(t, reg, c.GetRegistry())
}
