// Package driving provides interfaces through which the CLI, watcher and
// MCP server drive the documentation pipeline (primary/inbound ports).
package driving
