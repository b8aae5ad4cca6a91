package internal

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	"gopkg.in/yaml.v3"
)

// ExcludeRule drops detected subscriptions by name, optionally only
// within one category.
type ExcludeRule struct {
	Pattern  string `yaml:"pattern"`
	Category string `yaml:"category,omitempty"`

	// compiled fields
	regex *regexp.Regexp `yaml:"-"`
}

// Group collapses multiple extracted service names under a single
// canonical name before deduplication. Useful when the same vendor
// shows up as "netflix", "netflix inc" and "dvd netflix".
type Group struct {
	Name     string   `yaml:"name"`
	Patterns []string `yaml:"patterns"`

	// compiled patterns
	regexes []*regexp.Regexp `yaml:"-"`
}

// CategoryRule forces a category for services whose name matches a
// pattern. Rules from the config file always apply; the built-in
// defaults only repair records still classified as "other".
type CategoryRule struct {
	Pattern  string `yaml:"pattern"`
	Category string `yaml:"category"`

	// compiled fields
	regex *regexp.Regexp `yaml:"-"`
}

// DefaultCategoryRules maps well-known services to their category.
// Included unless disabled via use_default_categories: false.
var DefaultCategoryRules = []CategoryRule{
	{Pattern: "netflix", Category: "streaming"},
	{Pattern: "hulu", Category: "streaming"},
	{Pattern: "disney", Category: "streaming"},
	{Pattern: "hbo", Category: "streaming"},
	{Pattern: "paramount", Category: "streaming"},
	{Pattern: "peacock", Category: "streaming"},
	{Pattern: "crunchyroll", Category: "streaming"},
	{Pattern: "spotify", Category: "streaming"},
	{Pattern: "tidal", Category: "streaming"},
	{Pattern: "audible", Category: "streaming"},
	{Pattern: "youtube", Category: "streaming"},
	{Pattern: "xfinity", Category: "utilities"},
	{Pattern: "comcast", Category: "utilities"},
	{Pattern: "verizon", Category: "utilities"},
	{Pattern: "t-?mobile", Category: "utilities"},
	{Pattern: "adobe", Category: "software"},
	{Pattern: "jetbrains", Category: "software"},
	{Pattern: "github", Category: "software"},
	{Pattern: "notion", Category: "software"},
	{Pattern: "1password", Category: "software"},
	{Pattern: "microsoft", Category: "software"},
	{Pattern: "doordash", Category: "food_delivery"},
	{Pattern: "grubhub", Category: "food_delivery"},
	{Pattern: "hellofresh", Category: "food_delivery"},
	{Pattern: "dropbox", Category: "storage"},
	{Pattern: "icloud", Category: "storage"},
	{Pattern: "google one", Category: "storage"},
	{Pattern: "backblaze", Category: "storage"},
	{Pattern: "geico", Category: "insurance"},
	{Pattern: "lemonade", Category: "insurance"},
	{Pattern: "playstation", Category: "entertainment"},
	{Pattern: "nintendo", Category: "entertainment"},
	{Pattern: "xbox", Category: "entertainment"},
}

// AIConfig configures the optional OpenAI-compatible classifier.
type AIConfig struct {
	Model   string `yaml:"model,omitempty"`
	BaseURL string `yaml:"base_url,omitempty"`
}

type Config struct {
	// Groups combines several extracted names into one subscription
	Groups []Group `yaml:"groups,omitempty"`

	// Categories overrides the category for matching service names
	Categories []CategoryRule `yaml:"categories,omitempty"`

	// UseDefaultCategories controls whether built-in category rules
	// for well-known services are applied. Defaults to true.
	UseDefaultCategories *bool `yaml:"use_default_categories,omitempty"`

	// Exclude is a list of exclusion rules (strings or objects with a
	// category bound)
	Exclude []yaml.Node `yaml:"exclude,omitempty"`

	// AI holds classifier settings
	AI AIConfig `yaml:"ai,omitempty"`

	// compiled rules (not serialized)
	excludeRules    []ExcludeRule  `yaml:"-"`
	defaultCategory []CategoryRule `yaml:"-"`
}

// DefaultConfigPath returns the default config file path
// (~/.subsleuth/config.yaml).
func DefaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".subsleuth", "config.yaml")
}

// NewDefaultConfig creates a config with only the built-in category
// rules compiled. Use this when no config file exists.
func NewDefaultConfig() (*Config, error) {
	cfg := &Config{}
	if err := cfg.compileDefaults(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) compileDefaults() error {
	useDefaults := c.UseDefaultCategories == nil || *c.UseDefaultCategories
	if !useDefaults {
		return nil
	}
	c.defaultCategory = make([]CategoryRule, len(DefaultCategoryRules))
	copy(c.defaultCategory, DefaultCategoryRules)
	for i := range c.defaultCategory {
		re, err := regexp.Compile("(?i)" + c.defaultCategory[i].Pattern)
		if err != nil {
			return fmt.Errorf("invalid default category pattern %q: %w", c.defaultCategory[i].Pattern, err)
		}
		c.defaultCategory[i].regex = re
	}
	return nil
}

func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	// Compile group patterns
	for i := range cfg.Groups {
		for _, pattern := range cfg.Groups[i].Patterns {
			re, err := regexp.Compile("(?i)" + pattern) // case-insensitive
			if err != nil {
				return nil, fmt.Errorf("invalid group pattern %q: %w", pattern, err)
			}
			cfg.Groups[i].regexes = append(cfg.Groups[i].regexes, re)
		}
	}

	// Compile category overrides
	for i := range cfg.Categories {
		re, err := regexp.Compile("(?i)" + cfg.Categories[i].Pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid category pattern %q: %w", cfg.Categories[i].Pattern, err)
		}
		cfg.Categories[i].regex = re
	}

	// Parse exclude rules (supports both strings and objects)
	for _, node := range cfg.Exclude {
		var rule ExcludeRule

		if node.Kind == yaml.ScalarNode {
			// Simple string pattern
			rule.Pattern = node.Value
		} else if node.Kind == yaml.MappingNode {
			if err := node.Decode(&rule); err != nil {
				return nil, fmt.Errorf("parsing exclude rule: %w", err)
			}
		} else {
			return nil, fmt.Errorf("invalid exclude rule format")
		}

		re, err := regexp.Compile("(?i)" + rule.Pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid exclude pattern %q: %w", rule.Pattern, err)
		}
		rule.regex = re

		cfg.excludeRules = append(cfg.excludeRules, rule)
	}

	if err := cfg.compileDefaults(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	// Create parent directories if they don't exist
	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("creating directory %s: %w", dir, err)
		}
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	return nil
}

// ApplyGroups rewrites extracted names that match a group pattern to
// the group's canonical name. Must run before deduplication since the
// name is half of the identity key.
func (c *Config) ApplyGroups(subs []Subscription) []Subscription {
	if c == nil || len(c.Groups) == 0 {
		return subs
	}

	result := make([]Subscription, len(subs))
	for i, sub := range subs {
		result[i] = sub
		for _, group := range c.Groups {
			for _, re := range group.regexes {
				if re.MatchString(sub.Name) {
					result[i].Name = normalizeName(group.Name)
					break
				}
			}
		}
	}
	return result
}

// ApplyCategoryOverrides applies user category rules to every record,
// and built-in default rules only to records still categorized as
// "other" (defaults must never outrank the classifier or the keyword
// patterns). Must run before deduplication.
func (c *Config) ApplyCategoryOverrides(subs []Subscription) []Subscription {
	if c == nil {
		return subs
	}

	result := make([]Subscription, len(subs))
	for i, sub := range subs {
		result[i] = sub
		for _, rule := range c.Categories {
			if rule.regex.MatchString(sub.Name) {
				result[i].Category = Category(rule.Category)
				break
			}
		}
		if result[i].Category == CategoryOther {
			for _, rule := range c.defaultCategory {
				if rule.regex.MatchString(sub.Name) {
					result[i].Category = Category(rule.Category)
					break
				}
			}
		}
	}
	return result
}

// ShouldExclude returns true if the subscription matches any exclude
// rule, respecting the rule's optional category bound.
func (c *Config) ShouldExclude(sub Subscription) bool {
	if c == nil {
		return false
	}
	for _, rule := range c.excludeRules {
		if !rule.regex.MatchString(sub.Name) {
			continue
		}
		if rule.Category != "" && rule.Category != string(sub.Category) {
			continue
		}
		return true
	}
	return false
}

// FilterByExclusions removes subscriptions matching exclusion rules.
func FilterByExclusions(subs []Subscription, cfg *Config) []Subscription {
	if cfg == nil {
		return subs
	}
	result := make([]Subscription, 0, len(subs))
	for _, sub := range subs {
		if !cfg.ShouldExclude(sub) {
			result = append(result, sub)
		}
	}
	return result
}
