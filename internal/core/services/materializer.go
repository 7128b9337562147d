package services

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/eabdelmoneim/autodoc/internal/core/domain"
	"github.com/eabdelmoneim/autodoc/internal/core/ports/driven"
	"github.com/eabdelmoneim/autodoc/internal/core/ports/driving"
	"github.com/eabdelmoneim/autodoc/internal/logger"
)

// Materializer transforms the persisted summary records into a linked
// markdown document tree mirroring the repository layout. The record
// store is its authoritative input; the crawled tree is not needed.
//
// Files become "<path>.md"; folders become "<path>/README.md" so the
// generated tree is browsable as-is. Each document links to its parent
// and children, relatively by default or absolutely under the hosted URL
// when link hosting is enabled.
type Materializer struct {
	records driven.RecordStore
	cfg     *domain.Config
}

// NewMaterializer creates a materialiser reading from the given store.
func NewMaterializer(records driven.RecordStore, cfg *domain.Config) *Materializer {
	return &Materializer{
		records: records,
		cfg:     cfg,
	}
}

// Materialize writes one document per done record under outDir. Records
// that are missing or not done are skipped with a warning and their
// documents omitted; materialisation proceeds for the rest of the tree.
func (m *Materializer) Materialize(ctx context.Context, outDir string) (*driving.MaterializeSummary, error) {
	records, err := m.records.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list records: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("%w: no summary records under %s", domain.ErrNotFound, m.cfg.JSONRoot())
	}

	done := make(map[string]*domain.ProcessingRecord, len(records))
	summary := &driving.MaterializeSummary{}
	for i := range records {
		record := &records[i]
		if record.Status != domain.StatusDone {
			logger.Warn("Skipping document for %s: record is %s", displayRecordPath(record.Path), record.Status)
			summary.Skipped = append(summary.Skipped, record.Path)
			continue
		}
		done[record.Path] = record
	}
	sort.Strings(summary.Skipped)

	nodes := m.buildNodes(done)
	for _, node := range nodes {
		if err := m.write(node, outDir); err != nil {
			return nil, err
		}
		summary.Written++
	}
	return summary, nil
}

// buildNodes converts done records into document nodes with parent and
// child links, reconstructing the hierarchy from record paths alone.
// Nodes are returned in path order so output is deterministic.
func (m *Materializer) buildNodes(done map[string]*domain.ProcessingRecord) []*domain.DocumentNode {
	nodes := make(map[string]*domain.DocumentNode, len(done))
	paths := make([]string, 0, len(done))
	for p, record := range done {
		nodes[p] = &domain.DocumentNode{
			Path:  p,
			Kind:  record.Kind,
			Title: m.title(p, record.Kind),
			Body:  record.Summary,
		}
		paths = append(paths, p)
	}
	sort.Strings(paths)

	for _, p := range paths {
		if p == "" {
			continue
		}
		node := nodes[p]
		parent, ok := nodes[parentPath(p)]
		if !ok {
			// Parent record failed or is blocked; the document stands
			// alone without an Up link.
			continue
		}
		parent.Children = append(parent.Children, node)
		node.ParentLink = m.link(node, parent)
		parent.ChildLinks = append(parent.ChildLinks, domain.DocumentLink{
			Title: node.Title,
			Href:  m.link(parent, node),
		})
	}

	ordered := make([]*domain.DocumentNode, 0, len(paths))
	for _, p := range paths {
		ordered = append(ordered, nodes[p])
	}
	return ordered
}

func (m *Materializer) write(node *domain.DocumentNode, outDir string) error {
	target := filepath.Join(outDir, filepath.FromSlash(m.docPath(node)))
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return fmt.Errorf("create %s: %w", filepath.Dir(target), err)
	}
	if err := os.WriteFile(target, []byte(m.render(node)), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", target, err)
	}
	return nil
}

// render produces the markdown body with navigation links.
func (m *Materializer) render(node *domain.DocumentNode) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", node.Title)
	b.WriteString(node.Body)
	b.WriteString("\n")

	if len(node.ChildLinks) > 0 {
		b.WriteString("\n## Contents\n\n")
		for _, link := range node.ChildLinks {
			fmt.Fprintf(&b, "- [%s](%s)\n", link.Title, link.Href)
		}
	}
	if node.ParentLink != "" {
		fmt.Fprintf(&b, "\n[Up](%s)\n", node.ParentLink)
	}
	return b.String()
}

// docPath maps a node path to its document path under the markdown root.
func (m *Materializer) docPath(node *domain.DocumentNode) string {
	if node.Kind == domain.NodeFolder {
		return path.Join(node.Path, "README.md")
	}
	return node.Path + ".md"
}

// link renders the href for target as seen from the document that
// contains it, absolute under the hosted URL when hosting is enabled.
func (m *Materializer) link(from, target *domain.DocumentNode) string {
	targetDoc := m.docPath(target)
	if m.cfg.LinkHosted {
		return strings.TrimSuffix(m.cfg.HostedURL, "/") + "/" + targetDoc
	}
	return relativeHref(m.docPath(from), targetDoc)
}

// relativeHref resolves target against the directory containing from,
// so navigation works wherever the markdown tree is browsed.
func relativeHref(from, target string) string {
	fromDir := path.Dir(from)
	if fromDir == "." {
		return target
	}
	fromParts := strings.Split(fromDir, "/")

	var targetParts []string
	if targetDir := path.Dir(target); targetDir != "." {
		targetParts = strings.Split(targetDir, "/")
	}

	common := 0
	for common < len(fromParts) && common < len(targetParts) && fromParts[common] == targetParts[common] {
		common++
	}

	segments := make([]string, 0, len(targetParts)-common+1)
	segments = append(segments, targetParts[common:]...)
	segments = append(segments, path.Base(target))
	return strings.Repeat("../", len(fromParts)-common) + strings.Join(segments, "/")
}

func (m *Materializer) title(p string, kind domain.NodeKind) string {
	if p == "" {
		return m.cfg.Name
	}
	if kind == domain.NodeFolder {
		return path.Base(p) + "/"
	}
	return path.Base(p)
}

func parentPath(p string) string {
	parent := path.Dir(p)
	if parent == "." {
		return ""
	}
	return parent
}

func displayRecordPath(p string) string {
	if p == "" {
		return "(root)"
	}
	return p
}
