package domain

import "sort"

// NodeKind distinguishes file nodes from folder nodes.
type NodeKind string

const (
	// NodeFile is a leaf node backed by file content.
	NodeFile NodeKind = "file"

	// NodeFolder is an internal node whose summary derives from its children.
	NodeFolder NodeKind = "folder"
)

// RepoNode is a file or folder in the crawled repository tree.
// Nodes are created by the crawler and immutable afterwards; processing
// state lives in ProcessingRecord, not here.
type RepoNode struct {
	// Path is the slash-separated path relative to the repository root.
	// The root node has an empty path.
	Path string

	// Name is the base name of the entry.
	Name string

	// Kind is file or folder.
	Kind NodeKind

	// Children holds child nodes for folders, sorted lexically by name.
	Children []*RepoNode

	// Parent is a lookup back-reference. Nil for the root.
	Parent *RepoNode `json:"-"`
}

// IsFolder reports whether the node is a folder.
func (n *RepoNode) IsFolder() bool {
	return n.Kind == NodeFolder
}

// SortChildren orders children lexically by name so downstream processing
// order is reproducible.
func (n *RepoNode) SortChildren() {
	sort.Slice(n.Children, func(i, j int) bool {
		return n.Children[i].Name < n.Children[j].Name
	})
}

// Walk visits the node and all descendants depth-first, children before
// parents. The visit order matches processing dependency order.
func (n *RepoNode) Walk(fn func(*RepoNode)) {
	for _, child := range n.Children {
		child.Walk(fn)
	}
	fn(n)
}

// CountNodes returns the total number of nodes in the subtree, including
// the receiver.
func (n *RepoNode) CountNodes() int {
	count := 0
	n.Walk(func(*RepoNode) { count++ })
	return count
}
