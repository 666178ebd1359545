package redact

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	"github.com/BurntSushi/toml"
)

// Allowlist holds content patterns that are never redacted.
type Allowlist struct {
	Regexes []string
}

// DefaultAllowlistPath returns ~/.config/leaderlog/allowlist.toml.
func DefaultAllowlistPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".config", "leaderlog", "allowlist.toml"), nil
}

// LoadAllowlist reads an allowlist file of the form
//
//	[allowlist]
//	regexes = ['''example-token-\d+''']
//
// A missing file yields an empty allowlist. Invalid TOML or patterns are errors.
func LoadAllowlist(path string) (*Allowlist, error) {
	empty := &Allowlist{Regexes: []string{}}
	if path == "" {
		return empty, nil
	}

	var file struct {
		Allowlist struct {
			Regexes []string
		}
	}
	if _, err := toml.DecodeFile(path, &file); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return empty, nil
		}
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidTOML, path, err)
	}

	for _, pattern := range file.Allowlist.Regexes {
		if _, err := regexp.Compile(pattern); err != nil {
			return nil, fmt.Errorf("%w: %q in %s: %v", ErrInvalidRegex, pattern, path, err)
		}
	}

	if file.Allowlist.Regexes == nil {
		return empty, nil
	}
	return &Allowlist{Regexes: file.Allowlist.Regexes}, nil
}
