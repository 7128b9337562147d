// Package domain contains the core types of the documentation pipeline:
// the crawled repository tree, per-node processing records, materialised
// documents, embedding chunks, configuration, and sentinel errors.
//
// The package has no dependencies on adapters or services; it is pure data
// and invariants.
package domain
