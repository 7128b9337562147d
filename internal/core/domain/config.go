package domain

import (
	"fmt"
	"path/filepath"
)

// Default configuration values.
const (
	DefaultConcurrency       = 4
	DefaultRequestsPerSecond = 2.0
	DefaultBurst             = 4
	DefaultMaxAttempts       = 4
	DefaultMaxInputChars     = 12000
	DefaultMinChunkChars     = 500
	DefaultChunkSize         = 1000
	DefaultChunkOverlap      = 200
)

// Default prompt templates. Users override these in the config file.
const (
	DefaultFilePrompt = `Write a detailed technical summary of the following %s, aimed at a %s audience. Explain what the code does and how it fits together.`

	DefaultFolderPrompt = `Write a high-level overview of the folder described by the following file and subfolder summaries, aimed at a %s audience. Explain the folder's purpose and how its parts relate.`

	DefaultChatPrompt = `You are a documentation assistant. Answer questions about this codebase using the indexed documentation. Cite document paths in your answers.`
)

// Config enumerates everything the pipeline needs. It is loaded from a
// TOML file by the config adapter and validated before any work begins.
type Config struct {
	// Name is the project name used in prompts and document titles.
	Name string `toml:"name"`

	// OrgName and Repos identify remote repositories when crawling
	// through the GitHub source instead of a local checkout.
	OrgName string   `toml:"org_name"`
	Repos   []string `toml:"repos"`

	// Root is the local repository path to crawl. Ignored when a GitHub
	// source is configured.
	Root string `toml:"root"`

	// Output is the base directory for all pipeline artifacts.
	Output string `toml:"output"`

	// LLMs is an ordered preference list of model identifiers, e.g.
	// "openai:gpt-4o-mini" or "ollama:llama3.2". The first provider that
	// constructs and responds to a ping is used.
	LLMs []string `toml:"llms"`

	// Ignore holds glob-style patterns excluded from the crawl.
	Ignore []string `toml:"ignore"`

	// Prompt templates and hints.
	FilePrompt     string `toml:"file_prompt"`
	FolderPrompt   string `toml:"folder_prompt"`
	ChatPrompt     string `toml:"chat_prompt"`
	ContentType    string `toml:"content_type"`
	TargetAudience string `toml:"target_audience"`

	// LinkHosted switches document links from relative paths to absolute
	// URLs under HostedURL.
	LinkHosted bool   `toml:"link_hosted"`
	HostedURL  string `toml:"hosted_url"`

	// Concurrency bounds the worker pool for summarisation and embedding.
	Concurrency int `toml:"concurrency"`

	// RequestsPerSecond and Burst configure the token-bucket limiter that
	// gates external calls independently of the worker pool.
	RequestsPerSecond float64 `toml:"requests_per_second"`
	Burst             int     `toml:"burst"`

	// MaxAttempts is the retry ceiling for transient external-call errors.
	MaxAttempts int `toml:"max_attempts"`

	// MaxInputChars is the model input budget for a single call.
	MaxInputChars int `toml:"max_input_chars"`

	// MinChunkChars is the smallest allowed prompt chunk, except the final
	// chunk of a file.
	MinChunkChars int `toml:"min_chunk_chars"`

	// ChunkSize and ChunkOverlap control embedding chunk windowing.
	ChunkSize    int `toml:"chunk_size"`
	ChunkOverlap int `toml:"chunk_overlap"`
}

// ApplyDefaults fills zero-valued fields with defaults.
func (c *Config) ApplyDefaults() {
	if c.ContentType == "" {
		c.ContentType = "code"
	}
	if c.TargetAudience == "" {
		c.TargetAudience = "technical"
	}
	if c.FilePrompt == "" {
		c.FilePrompt = fmt.Sprintf(DefaultFilePrompt, c.ContentType, c.TargetAudience)
	}
	if c.FolderPrompt == "" {
		c.FolderPrompt = fmt.Sprintf(DefaultFolderPrompt, c.TargetAudience)
	}
	if c.ChatPrompt == "" {
		c.ChatPrompt = DefaultChatPrompt
	}
	if c.Concurrency <= 0 {
		c.Concurrency = DefaultConcurrency
	}
	if c.RequestsPerSecond <= 0 {
		c.RequestsPerSecond = DefaultRequestsPerSecond
	}
	if c.Burst <= 0 {
		c.Burst = DefaultBurst
	}
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = DefaultMaxAttempts
	}
	if c.MaxInputChars <= 0 {
		c.MaxInputChars = DefaultMaxInputChars
	}
	if c.MinChunkChars <= 0 {
		c.MinChunkChars = DefaultMinChunkChars
	}
	if c.ChunkSize <= 0 {
		c.ChunkSize = DefaultChunkSize
	}
	if c.ChunkOverlap < 0 || c.ChunkOverlap >= c.ChunkSize {
		c.ChunkOverlap = c.ChunkSize / 5
	}
}

// Validate checks the configuration for fatal problems. All validation
// errors wrap ErrInvalidConfig.
func (c *Config) Validate() error {
	if c.Name == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidConfig)
	}
	if c.Root == "" && (c.OrgName == "" || len(c.Repos) == 0) {
		return fmt.Errorf("%w: either root or org_name with repos is required", ErrInvalidConfig)
	}
	if c.Output == "" {
		return fmt.Errorf("%w: output directory is required", ErrInvalidConfig)
	}
	if len(c.LLMs) == 0 {
		return fmt.Errorf("%w: at least one model identifier is required", ErrInvalidConfig)
	}
	if c.MinChunkChars > c.MaxInputChars {
		return fmt.Errorf("%w: min_chunk_chars exceeds max_input_chars", ErrInvalidConfig)
	}
	if c.LinkHosted && c.HostedURL == "" {
		return fmt.Errorf("%w: link_hosted requires hosted_url", ErrInvalidConfig)
	}
	return nil
}

// JSONRoot is where ProcessingRecords are persisted.
func (c *Config) JSONRoot() string {
	return filepath.Join(c.Output, "json")
}

// MarkdownRoot is where materialised documents are written.
func (c *Config) MarkdownRoot() string {
	return filepath.Join(c.Output, "markdown")
}

// DataRoot is where the vector index is persisted.
func (c *Config) DataRoot() string {
	return filepath.Join(c.Output, "data")
}
