package importer

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"db2graph/internal/engine"
	"db2graph/internal/mapping"
)

const (
	DefaultProgram = "neo4j-import"
	DefaultIDType  = "string"
	DefaultTimeout = time.Hour

	// DefaultExitTimeout is how long the tool may keep running after reporting its outcome.
	DefaultExitTimeout = 30 * time.Second
)

var idTypes = map[string]bool{"string": true, "integer": true, "actual": true}

// NodeConfig is one --nodes argument pair.
type NodeConfig struct {
	Label string
	Files []string
}

func (n NodeConfig) Args() []string {
	flag := "--nodes"
	if n.Label != "" {
		flag += ":" + n.Label
	}
	return []string{flag, joinFiles(n.Files)}
}

// RelationshipConfig is one --relationships argument pair. The type is optional; without it
// every row must carry a :TYPE column.
type RelationshipConfig struct {
	Type  string
	Files []string
}

func (r RelationshipConfig) Args() []string {
	flag := "--relationships"
	if r.Type != "" {
		flag += ":" + r.Type
	}
	return []string{flag, joinFiles(r.Files)}
}

func joinFiles(files []string) string {
	abs := make([]string, len(files))
	for i, f := range files {
		if p, err := filepath.Abs(f); err == nil {
			abs[i] = p
		} else {
			abs[i] = f
		}
	}
	return strings.Join(abs, ",")
}

// Config describes one run of the bulk import tool.
type Config struct {
	program       string
	destination   string
	formatting    mapping.Formatting
	idType        string
	timeout       time.Duration
	exitTimeout   time.Duration
	env           map[string]string
	nodes         []NodeConfig
	relationships []RelationshipConfig
}

type ConfigBuilder struct {
	toolDir string
	c       Config
}

// NewConfig starts a config for the tool found in toolDirectory (its bin directory is
// searched first) writing the store at destination.
func NewConfig(toolDirectory, destination string) *ConfigBuilder {
	return &ConfigBuilder{
		toolDir: toolDirectory,
		c: Config{
			program:     DefaultProgram,
			destination: destination,
			formatting:  mapping.DefaultFormatting(),
			idType:      DefaultIDType,
			timeout:     DefaultTimeout,
			exitTimeout: DefaultExitTimeout,
			env:         make(map[string]string),
		},
	}
}

func (b *ConfigBuilder) Program(program string) *ConfigBuilder {
	b.c.program = program
	return b
}

func (b *ConfigBuilder) Formatting(f mapping.Formatting) *ConfigBuilder {
	b.c.formatting = f
	return b
}

func (b *ConfigBuilder) IDType(idType string) *ConfigBuilder {
	b.c.idType = idType
	return b
}

// Timeout bounds the wait for the tool to report completion.
func (b *ConfigBuilder) Timeout(d time.Duration) *ConfigBuilder {
	b.c.timeout = d
	return b
}

// ExitTimeout bounds the wait for the tool to exit once its output has ended or reported
// completion. A tool still running after that is terminated.
func (b *ConfigBuilder) ExitTimeout(d time.Duration) *ConfigBuilder {
	b.c.exitTimeout = d
	return b
}

func (b *ConfigBuilder) Environment(env map[string]string) *ConfigBuilder {
	for k, v := range env {
		b.c.env[k] = v
	}
	return b
}

func (b *ConfigBuilder) AddNodes(label string, files ...string) *ConfigBuilder {
	b.c.nodes = append(b.c.nodes, NodeConfig{Label: label, Files: files})
	return b
}

func (b *ConfigBuilder) AddRelationships(relType string, files ...string) *ConfigBuilder {
	b.c.relationships = append(b.c.relationships, RelationshipConfig{Type: relType, Files: files})
	return b
}

// FromManifest adds every node and relationship file set of an export.
func (b *ConfigBuilder) FromManifest(m *engine.Manifest) *ConfigBuilder {
	for _, n := range m.Nodes {
		b.AddNodes(n.Label, n.Files...)
	}
	for _, r := range m.Relationships {
		b.AddRelationships(r.Type, r.Files...)
	}
	return b
}

func (b *ConfigBuilder) Build() (*Config, error) {
	c := b.c
	if c.program == "" {
		return nil, errors.New("import tool program is required")
	}
	if c.destination == "" {
		return nil, errors.New("import destination is required")
	}
	if !idTypes[c.idType] {
		return nil, fmt.Errorf("invalid id type %q: expected string, integer or actual", c.idType)
	}
	if c.timeout <= 0 {
		return nil, fmt.Errorf("invalid import timeout %s", c.timeout)
	}
	if c.exitTimeout <= 0 {
		return nil, fmt.Errorf("invalid exit timeout %s", c.exitTimeout)
	}
	if len(c.nodes) == 0 {
		return nil, errors.New("at least one node file set is required")
	}
	for _, n := range c.nodes {
		if len(n.Files) == 0 {
			return nil, fmt.Errorf("node set %q has no files", n.Label)
		}
	}
	for _, r := range c.relationships {
		if len(r.Files) == 0 {
			return nil, fmt.Errorf("relationship set %q has no files", r.Type)
		}
	}

	if b.toolDir != "" && !filepath.IsAbs(c.program) {
		c.program = filepath.Join(b.toolDir, "bin", c.program)
	}
	c.nodes = append([]NodeConfig(nil), c.nodes...)
	c.relationships = append([]RelationshipConfig(nil), c.relationships...)
	env := make(map[string]string, len(c.env))
	for k, v := range c.env {
		env[k] = v
	}
	c.env = env
	return &c, nil
}

func (c *Config) Program() string { return c.program }

func (c *Config) Timeout() time.Duration { return c.timeout }

// Args renders the tool arguments.
func (c *Config) Args() []string {
	args := []string{
		"--into", c.destination,
		"--delimiter", c.formatting.DelimiterArg(),
		"--quote", c.formatting.QuoteArg(),
		"--id-type", c.idType,
	}
	for _, n := range c.nodes {
		args = append(args, n.Args()...)
	}
	for _, r := range c.relationships {
		args = append(args, r.Args()...)
	}
	return args
}
