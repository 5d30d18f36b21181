package agents

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/hadoku/trader/internal/contracts"
)

// File is the on-disk agent registry format.
type File struct {
	Agents []*contracts.AgentConfig `yaml:"agents" json:"agents"`
}

// Load reads an agent registry from a YAML file. Unknown fields fail
// immediately so a typo in a strategy file can never silently become a
// default value. Every config is validated before any is returned.
func Load(path string) ([]*contracts.AgentConfig, []byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, err
	}

	configs, err := Parse(data)
	if err != nil {
		return nil, data, err
	}
	return configs, data, nil
}

// Parse decodes and validates a registry document.
func Parse(data []byte) ([]*contracts.AgentConfig, error) {
	var file File
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&file); err != nil {
		return nil, fmt.Errorf("decode agents: %w", err)
	}
	if len(file.Agents) == 0 {
		return nil, fmt.Errorf("decode agents: empty registry")
	}

	seen := make(map[string]bool, len(file.Agents))
	for _, cfg := range file.Agents {
		if err := Validate(cfg); err != nil {
			return nil, err
		}
		if seen[cfg.ID] {
			return nil, ValidationError{"id", fmt.Sprintf("duplicate agent id %q", cfg.ID)}
		}
		seen[cfg.ID] = true
	}
	return file.Agents, nil
}

// Hash returns the SHA-256 of the config set's canonical JSON encoding.
// Struct field order makes the encoding deterministic, so the hash
// identifies the exact configuration a report was produced under.
func Hash(configs []*contracts.AgentConfig) (string, error) {
	jsonBytes, err := json.Marshal(File{Agents: configs})
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(jsonBytes)
	return hex.EncodeToString(sum[:]), nil
}
