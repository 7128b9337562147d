package domain

// DocumentNode is one materialised document derived from a ProcessingRecord.
// Document nodes are rebuilt fresh on every materialisation run; only the
// written files persist.
type DocumentNode struct {
	// Path is the source node's repository-relative path.
	Path string

	// Kind mirrors the source node kind.
	Kind NodeKind

	// Title is the human-readable document title, derived from the path.
	Title string

	// Body is the summary text for the node.
	Body string

	// ParentLink is the link target of the parent document, empty for the
	// root document.
	ParentLink string

	// ChildLinks are link targets of child documents in child order.
	ChildLinks []DocumentLink

	// Children are the child document nodes in the same order.
	Children []*DocumentNode
}

// DocumentLink is a titled link to a related document.
type DocumentLink struct {
	Title string
	Href  string
}

// Chunk is a bounded-length slice of a document's body, the unit of
// embedding. Chunks are immutable once written to the vector store.
type Chunk struct {
	// ID is the unique identifier for the chunk.
	ID string

	// DocumentPath is the source document's path under the markdown root.
	DocumentPath string

	// Position is the ordinal position within the document.
	Position int

	// Content is the chunk text.
	Content string

	// Embedding is the vector representation of the content.
	Embedding []float32

	// Metadata carries arbitrary key-value pairs (content type, audience).
	Metadata map[string]any
}

// ChunkHit is a nearest-neighbour search result.
type ChunkHit struct {
	// Chunk is the matched chunk, including its text and metadata.
	Chunk Chunk

	// Similarity is the cosine similarity score (0-1).
	Similarity float64
}
