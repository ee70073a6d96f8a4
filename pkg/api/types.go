package api

import (
	"github.com/ssargent/tapebox/pkg/tape"
)

// APIResponse represents a standard API response
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// ServerConfig holds configuration for the API server
type ServerConfig struct {
	Port   int
	Bind   string
	APIKey string // empty disables authentication
}

// TapeStore defines the tape operations exposed over HTTP
type TapeStore interface {
	SaveOrUpdate(name string, data []byte) error
	Load(name string) ([]byte, error)
	Remove(name string) (bool, error)
	Recover(name string) (bool, error)
	List() ([]tape.ProgramInfo, error)
	Stats() (*tape.Stats, error)
	DebugDump() (string, error)
}
