// Package logging provides structured logging utilities for the mcp-kusto
// application.
//
// This package centralizes logging patterns to ensure consistent, structured
// logging throughout the codebase using the standard library's slog package.
//
// # Key Features
//
//   - Structured logging with slog
//   - Host/URL sanitization so cluster topology does not leak into logs
//   - Token masking for credential material
//   - Consistent attribute naming across the codebase
//
// # Usage Patterns
//
// Create a logger with standard attributes:
//
//	logger := logging.WithTool(slog.Default(), "execute_kql")
//	logger.Info("query completed",
//	    logging.Cluster("prod"),
//	    logging.Rows(42),
//	    logging.Duration(elapsed))
//
// Sanitize sensitive data before logging:
//
//	logger.Info("connection established",
//	    logging.Host(endpoint))
//
// In stdio mode stdout carries the MCP protocol, so Setup directs the JSON
// handler to a file or stderr, never stdout.
package logging
