// Package driven provides interfaces for infrastructure adapters
// (secondary/outbound ports): repository content sources, LLM and
// embedding providers, and the record and vector stores.
package driven
