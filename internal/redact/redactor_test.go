package redact

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedact_CleanProse(t *testing.T) {
	r, err := New(nil)
	require.NoError(t, err)

	text := "Ran a calm all-hands and let the team own the retro agenda."
	got, n, err := r.Redact(text)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
	assert.Equal(t, text, got)
}

func TestRedact_BlankSkipsDetection(t *testing.T) {
	r, err := New(nil)
	require.NoError(t, err)

	got, n, err := r.Redact("  \n")
	require.NoError(t, err)
	assert.Equal(t, 0, n)
	assert.Equal(t, "  \n", got)
}

func TestReplaceFindings(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		findings []Finding
		expected string
	}{
		{
			name:     "none",
			text:     "nothing here",
			expected: "nothing here",
		},
		{
			name:     "single",
			text:     "token is abc123secret ok",
			findings: []Finding{{RuleID: "generic-api-key", Secret: "abc123secret"}},
			expected: "token is [REDACTED:generic-api-key] ok",
		},
		{
			name:     "every_occurrence",
			text:     "k1 then k1 again",
			findings: []Finding{{RuleID: "r", Secret: "k1"}},
			expected: "[REDACTED:r] then [REDACTED:r] again",
		},
		{
			name: "longest_first",
			text: "secret-long-value",
			findings: []Finding{
				{RuleID: "short", Secret: "secret"},
				{RuleID: "long", Secret: "secret-long-value"},
			},
			expected: "[REDACTED:long]",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, replaceFindings(tt.text, tt.findings))
		})
	}
}

func TestNew_InvalidPattern(t *testing.T) {
	_, err := New(&Allowlist{Regexes: []string{"("}})
	assert.ErrorIs(t, err, ErrInvalidRegex)
}

func TestLoadAllowlist(t *testing.T) {
	dir := t.TempDir()

	t.Run("missing_file", func(t *testing.T) {
		a, err := LoadAllowlist(filepath.Join(dir, "absent.toml"))
		require.NoError(t, err)
		assert.Empty(t, a.Regexes)
	})

	t.Run("empty_path", func(t *testing.T) {
		a, err := LoadAllowlist("")
		require.NoError(t, err)
		assert.NotNil(t, a.Regexes)
	})

	t.Run("valid", func(t *testing.T) {
		path := filepath.Join(dir, "ok.toml")
		require.NoError(t, os.WriteFile(path, []byte("[allowlist]\nregexes = ['''demo-key-\\d+''']\n"), 0o600))

		a, err := LoadAllowlist(path)
		require.NoError(t, err)
		assert.Equal(t, []string{`demo-key-\d+`}, a.Regexes)

		_, err = New(a)
		assert.NoError(t, err)
	})

	t.Run("no_section", func(t *testing.T) {
		path := filepath.Join(dir, "blank.toml")
		require.NoError(t, os.WriteFile(path, []byte("# nothing\n"), 0o600))

		a, err := LoadAllowlist(path)
		require.NoError(t, err)
		assert.NotNil(t, a.Regexes)
		assert.Empty(t, a.Regexes)
	})

	t.Run("invalid_toml", func(t *testing.T) {
		path := filepath.Join(dir, "bad.toml")
		require.NoError(t, os.WriteFile(path, []byte("[allowlist\n"), 0o600))

		_, err := LoadAllowlist(path)
		assert.ErrorIs(t, err, ErrInvalidTOML)
	})

	t.Run("invalid_regex", func(t *testing.T) {
		path := filepath.Join(dir, "regex.toml")
		require.NoError(t, os.WriteFile(path, []byte("[allowlist]\nregexes = ['''(''']\n"), 0o600))

		_, err := LoadAllowlist(path)
		assert.ErrorIs(t, err, ErrInvalidRegex)
	})
}

func TestDefaultAllowlistPath(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	p, err := DefaultAllowlistPath()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, ".config", "leaderlog", "allowlist.toml"), p)
}
