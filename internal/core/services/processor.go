package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/eabdelmoneim/autodoc/internal/chunker"
	"github.com/eabdelmoneim/autodoc/internal/core/domain"
	"github.com/eabdelmoneim/autodoc/internal/core/ports/driven"
	"github.com/eabdelmoneim/autodoc/internal/logger"
)

// summaryMaxTokens bounds the length of a generated summary.
const summaryMaxTokens = 1024

// summaryTemperature keeps summaries close to the source material.
const summaryTemperature = 0.2

// ChildSummary pairs a child node with its already-produced summary, in
// prompt order: files before subfolders, crawl order within each group.
type ChildSummary struct {
	Path    string
	Kind    domain.NodeKind
	Summary string
}

// NodeProcessor produces a summary for exactly one node whose
// dependencies are already resolved. Prompt construction and chunking
// live here; persistence and ordering are the scheduler's concern.
type NodeProcessor struct {
	llm driven.LLMService
	cfg *domain.Config
}

// NewNodeProcessor creates a processor using the given LLM service.
func NewNodeProcessor(llm driven.LLMService, cfg *domain.Config) *NodeProcessor {
	return &NodeProcessor{
		llm: llm,
		cfg: cfg,
	}
}

// ProcessFile summarises one file. Content over the input budget is split
// on line boundaries, each chunk summarised independently, and a final
// consolidation call merges the chunk summaries. Generation failures wrap
// domain.ErrGeneration; content that cannot be split within the budget
// fails with domain.ErrTooLarge.
func (p *NodeProcessor) ProcessFile(ctx context.Context, node *domain.RepoNode, content string) (string, error) {
	budget := p.promptBudget()
	chunks, err := chunker.SplitLines(content, budget, p.cfg.MinChunkChars, budget)
	if err != nil {
		return "", fmt.Errorf("split %s: %w", node.Path, err)
	}

	if len(chunks) == 1 {
		summary, err := p.generate(ctx, p.filePrompt(node, chunks[0]))
		if err != nil {
			return "", fmt.Errorf("summarise %s: %w", node.Path, err)
		}
		return summary, nil
	}

	logger.Debug("Summarising %s in %d chunks", node.Path, len(chunks))
	partials := make([]string, len(chunks))
	for i, chunk := range chunks {
		partial, err := p.generate(ctx, p.filePrompt(node, chunk))
		if err != nil {
			return "", fmt.Errorf("summarise %s chunk %d: %w", node.Path, i, err)
		}
		partials[i] = partial
	}

	summary, err := p.generate(ctx, p.consolidatePrompt(node, partials))
	if err != nil {
		return "", fmt.Errorf("consolidate %s: %w", node.Path, err)
	}
	return summary, nil
}

// ProcessFolder summarises one folder from its children's summaries.
func (p *NodeProcessor) ProcessFolder(ctx context.Context, node *domain.RepoNode, children []ChildSummary) (string, error) {
	summary, err := p.generate(ctx, p.folderPrompt(node, children))
	if err != nil {
		return "", fmt.Errorf("summarise folder %s: %w", node.Path, err)
	}
	return summary, nil
}

// generate runs one LLM call with summary options. Non-transient provider
// failures are wrapped as generation errors by the caller's retry policy.
func (p *NodeProcessor) generate(ctx context.Context, prompt string) (string, error) {
	result, err := p.llm.Generate(ctx, prompt, driven.GenerateOptions{
		MaxTokens:   summaryMaxTokens,
		Temperature: summaryTemperature,
	})
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(result), nil
}

// promptBudget is the input budget available to content after the prompt
// preamble is accounted for.
func (p *NodeProcessor) promptBudget() int {
	// Reserve a slice of the budget for the template text itself.
	reserved := len(p.cfg.FilePrompt) + len(p.cfg.FolderPrompt) + 512
	budget := p.cfg.MaxInputChars - reserved
	if budget < p.cfg.MinChunkChars {
		budget = p.cfg.MinChunkChars
	}
	return budget
}

func (p *NodeProcessor) filePrompt(node *domain.RepoNode, content string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Project: %s\nFile: %s\n\n", p.cfg.Name, node.Path)
	b.WriteString(p.cfg.FilePrompt)
	b.WriteString("\n\n")
	b.WriteString(content)
	return b.String()
}

func (p *NodeProcessor) consolidatePrompt(node *domain.RepoNode, partials []string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Project: %s\nFile: %s\n\n", p.cfg.Name, node.Path)
	fmt.Fprintf(&b, "The file was summarised in %d parts. Merge the part summaries below into one coherent summary of the whole file, aimed at a %s audience.\n",
		len(partials), p.cfg.TargetAudience)
	for i, partial := range partials {
		fmt.Fprintf(&b, "\nPart %d:\n%s\n", i+1, partial)
	}
	return b.String()
}

func (p *NodeProcessor) folderPrompt(node *domain.RepoNode, children []ChildSummary) string {
	name := node.Name
	if node.Path == "" {
		name = p.cfg.Name
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Project: %s\nFolder: %s\n\n", p.cfg.Name, name)
	b.WriteString(p.cfg.FolderPrompt)
	b.WriteString("\n")
	for _, child := range children {
		label := "File"
		if child.Kind == domain.NodeFolder {
			label = "Subfolder"
		}
		fmt.Fprintf(&b, "\n%s %s:\n%s\n", label, child.Path, child.Summary)
	}
	return b.String()
}
