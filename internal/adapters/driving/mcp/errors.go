// Package mcp provides an MCP (Model Context Protocol) server adapter for ContextPilot.
// It lets AI assistants like Claude store, rank and compose user context.
package mcp

import "errors"

// ErrMissingContextService is returned when the context service is not provided.
var ErrMissingContextService = errors.New("mcp: context service is required")
