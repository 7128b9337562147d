package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// RecordStatus is the lifecycle state of a ProcessingRecord.
type RecordStatus string

const (
	// StatusPending means the node has not been picked up yet.
	StatusPending RecordStatus = "pending"

	// StatusInProgress means a worker is processing the node.
	StatusInProgress RecordStatus = "in_progress"

	// StatusDone means a summary was produced for the recorded fingerprint.
	StatusDone RecordStatus = "done"

	// StatusFailed means processing exhausted its retries.
	StatusFailed RecordStatus = "failed"

	// StatusBlocked means an ancestor could not be processed because a
	// descendant failed. Terminal for the run; re-evaluated next run.
	StatusBlocked RecordStatus = "blocked"
)

// ProcessingRecord is the persisted processing state and summary for one
// RepoNode, keyed by node path. Owned by the scheduler; every state
// transition is written to the record store immediately.
type ProcessingRecord struct {
	// Path is the node's repository-relative path.
	Path string `json:"path"`

	// Kind is the node kind at processing time.
	Kind NodeKind `json:"kind"`

	// Fingerprint is the content hash the summary was produced from:
	// file bytes for files, concatenated child summaries for folders.
	Fingerprint string `json:"fingerprint"`

	// Summary is the generated summary text. Empty unless Status is done.
	Summary string `json:"summary,omitempty"`

	// Status is the record's lifecycle state.
	Status RecordStatus `json:"status"`

	// Attempts counts summarisation attempts, including retries.
	Attempts int `json:"attempts"`

	// Error holds the terminal error message for failed or blocked records.
	Error string `json:"error,omitempty"`

	// CreatedAt is when the record was first written.
	CreatedAt time.Time `json:"created_at"`

	// UpdatedAt is when the record last changed state.
	UpdatedAt time.Time `json:"updated_at"`
}

// Reusable reports whether the stored summary can stand in for processing
// a node whose current inputs hash to fingerprint.
func (r *ProcessingRecord) Reusable(fingerprint string) bool {
	return r.Status == StatusDone && r.Fingerprint == fingerprint
}

// FingerprintBytes hashes raw file content.
func FingerprintBytes(content []byte) string {
	sum := sha256.Sum256(content)
	return hex.EncodeToString(sum[:])
}

// FingerprintSummaries hashes an ordered list of child summaries. The
// separator keeps boundary shifts between adjacent summaries distinct.
func FingerprintSummaries(summaries []string) string {
	h := sha256.New()
	for _, s := range summaries {
		h.Write([]byte(s))
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))
}
