package config

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

//go:generate go run ../../cmd/schema/main.go schema.json

//go:embed defaults.yml
var defaultConfig []byte

const defaultPause = time.Second

// Config holds the application configuration
type Config struct {
	Fetch struct {
		Timeout   time.Duration `yaml:"timeout" json:"timeout" jsonschema:"default=15s,description=Timeout of every outbound request"`
		UserAgent string        `yaml:"user_agent" json:"user_agent" jsonschema:"description=User agent for HTTP requests"`
		MaxBody   int64         `yaml:"max_body" json:"max_body" jsonschema:"default=5242880,description=Maximum bytes read from a response"`
	} `yaml:"fetch" json:"fetch" jsonschema:"description=HTTP transport configuration"`

	Extraction ExtractionConfig `yaml:"extraction" json:"extraction" jsonschema:"description=Article text extraction configuration"`

	Resolver struct {
		Aggregators []string `yaml:"aggregators" json:"aggregators" jsonschema:"description=Hosts whose pages are scanned for the publisher URL"`
	} `yaml:"resolver" json:"resolver" jsonschema:"description=Link resolution configuration"`

	Assembly struct {
		Window time.Duration `yaml:"window" json:"window" jsonschema:"default=168h,description=Maximum age of an entry"`
		Pause  time.Duration `yaml:"pause" json:"pause" jsonschema:"default=1s,description=Delay between per-entry network operations"`
	} `yaml:"assembly" json:"assembly" jsonschema:"description=Feed assembly configuration"`

	Variants map[string]Variant `yaml:"variants" json:"variants" jsonschema:"description=Language/topic variants selectable from the command line"`
}

// ExtractionConfig holds content extraction settings
type ExtractionConfig struct {
	MaxChars        int  `yaml:"max_chars" json:"max_chars" jsonschema:"default=2300,description=Maximum characters of extracted text"`
	MinLineLength   int  `yaml:"min_line_length" json:"min_line_length" jsonschema:"default=20,description=Shorter lines are dropped"`
	MinParagraphLen int  `yaml:"min_paragraph_length" json:"min_paragraph_length" jsonschema:"default=50,description=Minimum paragraph length for the paragraph fallback"`
	Fallback        bool `yaml:"fallback" json:"fallback" jsonschema:"default=false,description=Use trafilatura when heuristics find nothing"`
}

// Variant is one generated feed: its channel metadata, sources and output file
type Variant struct {
	Title       string `yaml:"title" json:"title" jsonschema:"required,description=Channel title"`
	Link        string `yaml:"link" json:"link" jsonschema:"description=Channel link"`
	Description string `yaml:"description" json:"description" jsonschema:"description=Channel description"`
	Output      string `yaml:"output" json:"output" jsonschema:"description=Output file name, defaults to <variant>.xml"`
	Feeds       []Feed `yaml:"feeds" json:"feeds" jsonschema:"required,description=Source feeds"`
}

// Feed is a source syndication feed
type Feed struct {
	Name string `yaml:"name" json:"name" jsonschema:"description=Feed name, defaults to the URL"`
	URL  string `yaml:"url" json:"url" jsonschema:"required,description=Feed URL"`
}

// Load reads configuration from a YAML file, empty path loads the embedded defaults
func Load(path string) (*Config, error) {
	data := defaultConfig
	if path != "" {
		var err error
		if data, err = os.ReadFile(path); err != nil { //nolint:gosec // file path comes from CLI flag
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	// expand environment variables
	expanded := os.ExpandEnv(string(data))

	// pause is preset so that an explicit "pause: 0s" still disables it
	var cfg Config
	cfg.Assembly.Pause = defaultPause
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if len(cfg.Variants) == 0 {
		var def Config
		if err := yaml.Unmarshal(defaultConfig, &def); err != nil {
			return nil, fmt.Errorf("parse default config: %w", err)
		}
		cfg.Variants = def.Variants
	}

	setDefaults(&cfg)

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &cfg, nil
}

func setDefaults(cfg *Config) {
	if cfg.Fetch.Timeout == 0 {
		cfg.Fetch.Timeout = 15 * time.Second
	}
	if cfg.Fetch.MaxBody == 0 {
		cfg.Fetch.MaxBody = 5 << 20
	}

	if cfg.Extraction.MaxChars == 0 {
		cfg.Extraction.MaxChars = 2300
	}
	if cfg.Extraction.MinLineLength == 0 {
		cfg.Extraction.MinLineLength = 20
	}
	if cfg.Extraction.MinParagraphLen == 0 {
		cfg.Extraction.MinParagraphLen = 50
	}

	if len(cfg.Resolver.Aggregators) == 0 {
		cfg.Resolver.Aggregators = []string{"news.google.com"}
	}

	if cfg.Assembly.Window == 0 {
		cfg.Assembly.Window = 7 * 24 * time.Hour
	}

	for name, v := range cfg.Variants {
		if v.Output == "" {
			v.Output = name + ".xml"
		}
		for i := range v.Feeds {
			if v.Feeds[i].Name == "" {
				v.Feeds[i].Name = v.Feeds[i].URL // name defaults to URL
			}
		}
		cfg.Variants[name] = v
	}
}

// validate checks configuration for correctness
func validate(cfg *Config) error {
	if cfg.Fetch.Timeout < time.Second {
		return fmt.Errorf("fetch timeout must be at least 1 second")
	}
	if cfg.Fetch.MaxBody < 0 {
		return fmt.Errorf("fetch max_body must be non-negative")
	}
	if cfg.Extraction.MaxChars <= 3 {
		return fmt.Errorf("extraction max_chars must be greater than 3")
	}
	if cfg.Extraction.MinLineLength < 0 || cfg.Extraction.MinParagraphLen < 0 {
		return fmt.Errorf("extraction length thresholds must be non-negative")
	}
	if cfg.Assembly.Window < 0 {
		return fmt.Errorf("assembly window must be non-negative")
	}
	if cfg.Assembly.Pause < 0 {
		return fmt.Errorf("assembly pause must be non-negative")
	}

	for name, v := range cfg.Variants {
		if v.Title == "" {
			return fmt.Errorf("variant %q: title is required", name)
		}
		if len(v.Feeds) == 0 {
			return fmt.Errorf("variant %q: at least one feed is required", name)
		}
		for i, f := range v.Feeds {
			if f.URL == "" {
				return fmt.Errorf("variant %q: feed %d has no url", name, i)
			}
		}
		if v.Output != filepath.Base(v.Output) {
			return fmt.Errorf("variant %q: output must be a file name, got %q", name, v.Output)
		}
	}

	return nil
}

// Variant returns the named variant
func (c *Config) Variant(name string) (Variant, error) {
	v, ok := c.Variants[name]
	if !ok {
		return Variant{}, fmt.Errorf("unsupported variant %q, available: %s", name, strings.Join(c.VariantNames(), ", "))
	}
	return v, nil
}

// VariantNames returns configured variant names in sorted order
func (c *Config) VariantNames() []string {
	names := make([]string, 0, len(c.Variants))
	for name := range c.Variants {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
