// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package polls

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v2"

	"github.com/danielhkuo/voteserver/models"
)

// Config is the content of the poll configuration file
type Config struct {
	Banner     string
	WelcomeMsg string
	Polls      []Definition
}

type fileConfig struct {
	Banner     string        `yaml:"banner"`
	WelcomeMsg string        `yaml:"welcome_msg"`
	Polls      yaml.MapSlice `yaml:"polls"`
}

type pollEntry struct {
	Question    string   `yaml:"question"`
	Title       string   `yaml:"title"`
	Note        string   `yaml:"note"`
	YesNo       bool     `yaml:"yesno"`
	Options     []string `yaml:"options"`
	WriteIn     bool     `yaml:"writein"`
	Ranked      bool     `yaml:"ranked"`
	MultiChoice bool     `yaml:"multichoice"`
}

// Load reads and parses a poll configuration file
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("failed to read poll config: %w", err)
	}
	return Parse(data)
}

// Parse decodes a poll configuration. Polls keep the order of the file.
func Parse(data []byte) (Config, error) {
	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return Config{}, fmt.Errorf("failed to parse poll config: %w", err)
	}

	cfg := Config{
		Banner:     fc.Banner,
		WelcomeMsg: fc.WelcomeMsg,
	}

	seen := make(map[string]bool)
	for _, item := range fc.Polls {
		name := fmt.Sprint(item.Key)
		if seen[name] {
			return Config{}, fmt.Errorf("duplicate poll '%s'", name)
		}
		seen[name] = true

		// Round-trip the raw value to decode it into a typed entry
		raw, err := yaml.Marshal(item.Value)
		if err != nil {
			return Config{}, fmt.Errorf("poll '%s': %w", name, err)
		}
		var entry pollEntry
		if err := yaml.Unmarshal(raw, &entry); err != nil {
			return Config{}, fmt.Errorf("poll '%s': %w", name, err)
		}

		def, err := entry.definition(name)
		if err != nil {
			return Config{}, err
		}
		cfg.Polls = append(cfg.Polls, def)
	}

	return cfg, nil
}

func (e pollEntry) definition(name string) (Definition, error) {
	def := Definition{
		Name:     name,
		Question: e.Question,
		Title:    e.Title,
		Note:     e.Note,
		Options:  e.Options,
		WriteIn:  e.WriteIn,
	}

	switch {
	case e.YesNo:
		def.Kind = models.KindYesNo
		def.Options = nil
		def.WriteIn = false
	case len(e.Options) == 0 && !e.WriteIn:
		return Definition{}, fmt.Errorf("poll '%s': %w", name, errors.New("needs yesno or options"))
	case e.Ranked:
		// ranked wins when both ranked and multichoice are set
		def.Kind = models.KindRanked
	case e.MultiChoice:
		def.Kind = models.KindMultiChoice
	default:
		def.Kind = models.KindSingleChoice
	}

	return def, nil
}
