package api

import (
	"net"
	"strconv"

	"github.com/segmentio/ksuid"
	"github.com/ssargent/frugy/pkg/document"
	"github.com/ssargent/frugy/pkg/registry"
	"github.com/ssargent/frugy/pkg/storage"
)

// APIResponse represents a standard API response
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// ServerConfig holds configuration for the API server
type ServerConfig struct {
	Bind   string
	Port   int
	APIKey string // empty disables authentication
}

// Addr returns the listen address.
func (c ServerConfig) Addr() string {
	return net.JoinHostPort(c.Bind, strconv.Itoa(c.Port))
}

// SchemaResponse describes one area type
type SchemaResponse struct {
	Type   string               `json:"type"`
	Doc    string               `json:"doc,omitempty"`
	Fields []registry.FieldInfo `json:"fields"`
}

// AreaResponse is a decoded area
type AreaResponse struct {
	Type   string          `json:"type"`
	Size   int             `json:"size"`
	Fields document.Fields `json:"fields"`
}

// ImageResponse is a stored image with its decoded fields
type ImageResponse struct {
	storage.Entry
	Fields document.Fields `json:"fields,omitempty"`
}

// IImageStore defines the image catalog operations used by the API
type IImageStore interface {
	Put(typ string, image []byte) (ksuid.KSUID, error)
	Get(id ksuid.KSUID) (*storage.Entry, error)
	List() ([]storage.Entry, error)
	Delete(id ksuid.KSUID) error
}
