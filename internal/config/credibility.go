package config

import (
	_ "embed"
	"fmt"
	"net/url"
	"os"
	"strings"
	"unicode"

	"gopkg.in/yaml.v3"
)

//go:embed credibility.yaml
var defaultCredibility []byte

// CredibilityConfig is the versioned set of keyword and domain lists the
// analyzer consults. It is loaded once at startup and never mutated.
type CredibilityConfig struct {
	Version         int                        `yaml:"version"`
	DefaultLanguage string                     `yaml:"default_language"`
	Languages       map[string]*LanguageConfig `yaml:"languages"`
}

// LanguageConfig holds the lists for one language tag.
type LanguageConfig struct {
	QueryTemplate    string        `yaml:"query_template"` // fmt template with one %s for the claim
	Region           string        `yaml:"region"`
	SearchLanguage   string        `yaml:"search_language"`
	NegationKeywords []string      `yaml:"negation_keywords"`
	Recency          []RecencyRule `yaml:"recency"`
	TrustedSources   []string      `yaml:"trusted_sources"`
	FactCheckers     []string      `yaml:"fact_checkers"`
	Opposites        [][2]string   `yaml:"opposites"`
}

// RecencyRule maps temporal keywords to a search recency filter.
type RecencyRule struct {
	Keywords []string `yaml:"keywords"`
	Filter   string   `yaml:"filter"`
}

// LoadCredibility parses the credibility lists from path, or the embedded
// defaults when path is empty.
func LoadCredibility(path string) (*CredibilityConfig, error) {
	data := defaultCredibility
	if path != "" {
		var err error
		data, err = os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read credibility file: %w", err)
		}
	}
	return ParseCredibility(data)
}

// ParseCredibility decodes and validates a credibility YAML document.
func ParseCredibility(data []byte) (*CredibilityConfig, error) {
	var cfg CredibilityConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse credibility lists: %w", err)
	}

	if cfg.DefaultLanguage == "" {
		cfg.DefaultLanguage = "en"
	}
	if _, ok := cfg.Languages[cfg.DefaultLanguage]; !ok {
		return nil, fmt.Errorf("credibility lists missing default language %q", cfg.DefaultLanguage)
	}

	for tag, lang := range cfg.Languages {
		if lang == nil {
			return nil, fmt.Errorf("language %q has no lists", tag)
		}
		if strings.Count(lang.QueryTemplate, "%s") != 1 {
			return nil, fmt.Errorf("language %q: query_template must contain exactly one %%s", tag)
		}
		lang.NegationKeywords = lowerAll(lang.NegationKeywords)
		lang.TrustedSources = lowerAll(lang.TrustedSources)
		lang.FactCheckers = lowerAll(lang.FactCheckers)
		for i := range lang.Recency {
			lang.Recency[i].Keywords = lowerAll(lang.Recency[i].Keywords)
		}
		for i := range lang.Opposites {
			lang.Opposites[i][0] = strings.ToLower(lang.Opposites[i][0])
			lang.Opposites[i][1] = strings.ToLower(lang.Opposites[i][1])
		}
	}

	return &cfg, nil
}

// For returns the lists for a language tag, falling back to the default language.
func (c *CredibilityConfig) For(lang string) *LanguageConfig {
	if l, ok := c.Languages[strings.ToLower(lang)]; ok {
		return l
	}
	return c.Languages[c.DefaultLanguage]
}

// Resolve returns the canonical tag used for lang.
func (c *CredibilityConfig) Resolve(lang string) string {
	lang = strings.ToLower(lang)
	if _, ok := c.Languages[lang]; ok {
		return lang
	}
	return c.DefaultLanguage
}

// Query builds the search query for a claim.
func (l *LanguageConfig) Query(claim string) string {
	return fmt.Sprintf(l.QueryTemplate, claim)
}

// IsTrusted reports whether link contains a trusted news domain.
func (l *LanguageConfig) IsTrusted(link string) (string, bool) {
	return matchDomain(link, l.TrustedSources)
}

// IsFactChecker reports whether link contains a fact-checker domain.
func (l *LanguageConfig) IsFactChecker(link string) (string, bool) {
	return matchDomain(link, l.FactCheckers)
}

// HasNegation reports whether text contains any negation keyword. Single-word
// keywords must appear as whole words; phrases are matched as substrings.
func (l *LanguageConfig) HasNegation(text string) bool {
	text = strings.ToLower(text)
	words := Words(text)
	for _, kw := range l.NegationKeywords {
		if strings.ContainsFunc(kw, unicode.IsSpace) {
			if strings.Contains(text, kw) {
				return true
			}
			continue
		}
		if words[kw] {
			return true
		}
	}
	return false
}

// RecencyFilter returns the filter of the first rule whose keyword occurs in text.
func (l *LanguageConfig) RecencyFilter(text string) string {
	text = strings.ToLower(text)
	for _, rule := range l.Recency {
		for _, kw := range rule.Keywords {
			if strings.Contains(text, kw) {
				return rule.Filter
			}
		}
	}
	return ""
}

// Opposite finds a word in claim whose opposite appears in text while the word
// itself does not. Words are compared whole, case-insensitively.
func (l *LanguageConfig) Opposite(claim, text string) (said, found string, ok bool) {
	claimWords := Words(claim)
	textWords := Words(text)
	for _, pair := range l.Opposites {
		for _, dir := range [][2]string{{pair[0], pair[1]}, {pair[1], pair[0]}} {
			if claimWords[dir[0]] && textWords[dir[1]] && !textWords[dir[0]] {
				return dir[0], dir[1], true
			}
		}
	}
	return "", "", false
}

// Words returns the set of lowercased letter/digit runs in s.
func Words(s string) map[string]bool {
	set := make(map[string]bool)
	for _, w := range strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	}) {
		set[w] = true
	}
	return set
}

// matchDomain compares the link's host against domains: an exact match or a
// subdomain of a listed domain counts.
func matchDomain(link string, domains []string) (string, bool) {
	host := linkHost(link)
	if host == "" {
		return "", false
	}
	for _, d := range domains {
		if host == d || strings.HasSuffix(host, "."+d) {
			return d, true
		}
	}
	return "", false
}

// linkHost returns the lowercased host of link, accepting links without a scheme.
func linkHost(link string) string {
	link = strings.TrimSpace(link)
	if !strings.Contains(link, "://") {
		link = "http://" + link
	}
	u, err := url.Parse(link)
	if err != nil {
		return ""
	}
	return strings.ToLower(u.Hostname())
}

func lowerAll(in []string) []string {
	out := make([]string, len(in))
	for i, s := range in {
		out[i] = strings.ToLower(strings.TrimSpace(s))
	}
	return out
}
