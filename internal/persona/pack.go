// Package persona loads companion persona packs from YAML files and hot
// reloads them when the files change. A pack can override the system prompt,
// the emotion keyword table, the canned fallback replies and the default
// voice; anything it leaves out keeps the built-in behavior.
package persona

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/mapleai/maple/internal/emotion"
	"github.com/mapleai/maple/pkg/types"
)

// Pack is one persona definition as loaded from YAML.
type Pack struct {
	// Name identifies the pack; the file stem is used when empty.
	Name string `yaml:"name"`

	// SystemPrompt replaces the default reply framing when set.
	SystemPrompt string `yaml:"system_prompt"`

	// Keywords overrides individual emotion keyword sets. Labels absent
	// here keep the built-in keywords.
	Keywords map[string][]string `yaml:"keywords"`

	// FallbackReplies replaces the canned reply pool when non-empty.
	FallbackReplies []string `yaml:"fallback_replies"`

	// Voice is the default synthesis voice for this persona.
	Voice string `yaml:"voice"`
}

// LoadPack reads and validates one persona file.
func LoadPack(path string) (*Pack, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading persona file: %w", err)
	}

	var pack Pack
	if err := yaml.Unmarshal(data, &pack); err != nil {
		return nil, fmt.Errorf("parsing persona file %s: %w", filepath.Base(path), err)
	}

	if pack.Name == "" {
		pack.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}

	for label := range pack.Keywords {
		if !types.IsValidEmotion(types.Emotion(label)) {
			return nil, fmt.Errorf("persona %s: unknown emotion label %q", pack.Name, label)
		}
	}

	return &pack, nil
}

// Classifier builds an emotion classifier with this pack's keyword overrides
// layered over the defaults. The tie-break order stays fixed regardless of
// overrides.
func (p *Pack) Classifier() *emotion.Classifier {
	if len(p.Keywords) == 0 {
		return emotion.NewClassifier()
	}

	keywords := emotion.DefaultKeywords()
	for label, words := range p.Keywords {
		keywords[types.Emotion(label)] = words
	}

	base := emotion.NewClassifier()
	return emotion.NewClassifierWithKeywords(keywords, base.Labels())
}
