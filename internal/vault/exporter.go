package vault

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"notebox-backend/internal/items"
)

// Exporter writes permanent notes into a markdown vault directory with yaml
// frontmatter. An empty dir means "not configured" and export commands are
// rejected upstream.
type Exporter struct {
	dir string
}

func New(dir string) *Exporter {
	return &Exporter{dir: dir}
}

func (e *Exporter) Configured() bool {
	return e.dir != ""
}

type frontmatter struct {
	ID      string   `yaml:"id"`
	Tags    []string `yaml:"tags,omitempty"`
	Aliases []string `yaml:"aliases,omitempty"`
	Source  string   `yaml:"source,omitempty"`
	Created string   `yaml:"created"`
}

// Export writes <dir>/<safe-title>.md and returns the written path. The write
// goes through a temp file and rename so a crash never leaves a torn note.
func (e *Exporter) Export(it items.Item) (string, error) {
	if !e.Configured() {
		return "", fmt.Errorf("vault dir not configured")
	}
	if err := os.MkdirAll(e.dir, 0o755); err != nil {
		return "", err
	}

	fm, err := yaml.Marshal(frontmatter{
		ID:      it.ID,
		Tags:    it.Tags,
		Aliases: it.Aliases,
		Source:  it.Source,
		Created: it.CreatedAt.Format("2006-01-02"),
	})
	if err != nil {
		return "", err
	}

	var b strings.Builder
	b.WriteString("---\n")
	b.Write(fm)
	b.WriteString("---\n\n")
	b.WriteString("# " + it.Title + "\n")
	if it.Content != "" {
		b.WriteString("\n" + it.Content + "\n")
	}

	path := filepath.Join(e.dir, safeFilename(it.Title)+".md")
	tmp, err := os.CreateTemp(e.dir, ".export-*")
	if err != nil {
		return "", err
	}
	if _, err := tmp.WriteString(b.String()); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return "", err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return "", err
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return "", err
	}
	return path, nil
}

// safeFilename strips characters that break filesystems or vault tooling.
func safeFilename(title string) string {
	out := strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', '*', '?', '"', '<', '>', '|', '\n', '\t':
			return '-'
		}
		return r
	}, strings.TrimSpace(title))
	if out == "" {
		out = "untitled"
	}
	const maxLen = 120
	if runes := []rune(out); len(runes) > maxLen {
		out = string(runes[:maxLen])
	}
	return out
}
