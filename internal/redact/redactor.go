package redact

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	gitleaksConfig "github.com/zricethezav/gitleaks/v8/config"
	"github.com/zricethezav/gitleaks/v8/detect"
	gitleaksRegexp "github.com/zricethezav/gitleaks/v8/regexp"
)

// Finding is one detected credential.
type Finding struct {
	RuleID string
	Secret string
}

// Redactor replaces detected credentials with [REDACTED:rule-id] markers.
type Redactor struct {
	allowlist *Allowlist
}

// New creates a Redactor. A nil allowlist exempts nothing.
func New(allowlist *Allowlist) (*Redactor, error) {
	if allowlist == nil {
		allowlist = &Allowlist{}
	}
	for _, pattern := range allowlist.Regexes {
		if _, err := regexp.Compile(pattern); err != nil {
			return nil, fmt.Errorf("%w: %q: %v", ErrInvalidRegex, pattern, err)
		}
	}
	return &Redactor{allowlist: allowlist}, nil
}

// Detect scans text with the Gitleaks default rules.
//
// A detector is built per call; Gitleaks detectors accumulate findings and
// are not meant to be shared.
func (r *Redactor) Detect(text string) ([]Finding, error) {
	detector, err := detect.NewDetectorDefaultConfig()
	if err != nil {
		return nil, fmt.Errorf("create detector: %w", err)
	}
	if len(r.allowlist.Regexes) > 0 {
		applyAllowlist(&detector.Config, r.allowlist)
	}

	found := detector.DetectString(text)
	out := make([]Finding, 0, len(found))
	for _, f := range found {
		secret := f.Secret
		if secret == "" {
			secret = f.Match
		}
		if secret == "" {
			continue
		}
		out = append(out, Finding{RuleID: f.RuleID, Secret: secret})
	}
	return out, nil
}

// Redact returns text with every detected credential replaced, and the
// number of findings.
func (r *Redactor) Redact(text string) (string, int, error) {
	if strings.TrimSpace(text) == "" {
		return text, 0, nil
	}
	findings, err := r.Detect(text)
	if err != nil {
		return "", 0, err
	}
	return replaceFindings(text, findings), len(findings), nil
}

// replaceFindings substitutes longer secrets first so a secret that contains
// another is replaced whole.
func replaceFindings(text string, findings []Finding) string {
	sorted := make([]Finding, len(findings))
	copy(sorted, findings)
	sort.SliceStable(sorted, func(i, j int) bool {
		return len(sorted[i].Secret) > len(sorted[j].Secret)
	})

	for _, f := range sorted {
		text = strings.ReplaceAll(text, f.Secret, fmt.Sprintf("[REDACTED:%s]", f.RuleID))
	}
	return text
}

// applyAllowlist adds the user's patterns as a global Gitleaks allowlist.
// Patterns were compiled once in New.
func applyAllowlist(cfg *gitleaksConfig.Config, allowlist *Allowlist) {
	global := &gitleaksConfig.Allowlist{
		Description: "leaderlog user allowlist",
	}
	for _, pattern := range allowlist.Regexes {
		re := regexp.MustCompile(pattern)
		global.Regexes = append(global.Regexes, (*gitleaksRegexp.Regexp)(re))
	}
	global.StopWords = append(global.StopWords, allowlist.Regexes...)
	cfg.Allowlists = append(cfg.Allowlists, global)
}
