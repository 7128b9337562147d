// Package connectors groups the repository content sources the crawler
// can read from: the local filesystem and remote GitHub repositories.
package connectors
