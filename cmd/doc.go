// Package cmd provides the command-line interface for mcp-kusto.
//
// This package implements a Cobra-based CLI with multiple subcommands:
//   - serve: Starts the MCP server (default behavior when no subcommand is provided)
//   - version: Displays the application version
//
// The CLI runs the serve command when no subcommand is specified, so a bare
// `mcp-kusto` invocation is what MCP host configurations typically use.
//
// Command Structure:
//
//	mcp-kusto [flags]                 # Starts the MCP server (default)
//	mcp-kusto serve [flags]           # Explicitly starts the MCP server
//	mcp-kusto version                 # Shows version information
//	mcp-kusto help [command]          # Shows help information
//
// The serve command supports multiple transport options:
//   - stdio: Standard input/output (default) - for command-line integration
//   - sse: Server-Sent Events over HTTP - for web-based clients
//   - streamable-http: Streamable HTTP transport - for HTTP-based integration
//
// Transport Configuration Examples:
//
//	mcp-kusto serve --transport stdio            # Default STDIO transport
//	mcp-kusto serve --transport sse --http-addr :8080 --sse-endpoint /sse
//	mcp-kusto serve --transport streamable-http --http-addr :9000 --http-endpoint /mcp
//
// The serve command also accepts --config for the cluster configuration file
// and --log-level/--log-file for structured logging. In stdio mode stdout
// carries the MCP protocol, so logs always go to a file or stderr.
package cmd
