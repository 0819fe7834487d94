package server

import (
	"github.com/giantswarm/brix-meter/internal/session"
)

// ServerContext holds shared dependencies for MCP tool handlers.
type ServerContext struct {
	Service   *session.Service
	OutputDir string // batch run results directory
}
