// Package services contains the pipeline orchestrators: the tree
// crawler, node processor, scheduler, document materialiser, index
// builder, semantic search, and the wiring that composes them. Services
// depend only on domain types and ports, never on concrete adapters.
package services
