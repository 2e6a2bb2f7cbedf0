package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	EnvHome   = "EBANGLA2EPUB_HOME"
	EnvCookie = "EBANGLA2EPUB_COOKIE"
)

type Config struct {
	OutputDir      string `yaml:"output_dir"`
	Language       string `yaml:"language"`
	SiteHost       string `yaml:"site_host"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
	Retries        int    `yaml:"retries"`
	IncludeCover   bool   `yaml:"include_cover"`
	IncludeIntro   bool   `yaml:"include_intro"`
	Debug          bool   `yaml:"debug"`

	DefaultRange string `yaml:"default_range"`
	DefaultList  string `yaml:"default_list"`

	Cookie           string `yaml:"cookie"`
	CookieFile       string `yaml:"cookie_file"`
	UserAgent        string `yaml:"user_agent"`
	CloudflareBypass bool   `yaml:"cloudflare_bypass"`
}

// Options carries CLI overrides. Zero values leave the loaded config alone.
type Options struct {
	IgnoreConfig bool
	Debug        bool

	OutputDir      string
	Language       string
	SiteHost       string
	TimeoutSeconds int
	Retries        int
	NoCover        bool
	NoIntro        bool

	DefaultRange string
	DefaultList  string

	Cookie           string
	CookieFile       string
	UserAgent        string
	CloudflareBypass bool
}

func DefaultConfig() *Config {
	return &Config{
		OutputDir:      ".",
		Language:       "bn",
		SiteHost:       "ebanglalibrary.com",
		TimeoutSeconds: 30,
		Retries:        3,
		IncludeCover:   true,
		IncludeIntro:   true,
	}
}

// LoadEnvFiles reads .env.local and .env from the working directory.
// Variables already set in the environment win, and .env.local wins over .env.
func LoadEnvFiles() {
	for _, f := range []string{".env.local", ".env"} {
		if _, err := os.Stat(f); err == nil {
			_ = godotenv.Load(f)
		}
	}
}

func SaveYAML(cfg *Config, path string) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0o644)
}

// loadYAML reads path over the defaults, so keys missing from the file keep
// their default values.
func loadYAML(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	c := DefaultConfig()
	if err := yaml.Unmarshal(b, c); err != nil {
		return nil, err
	}

	return c, nil
}

// LoadMerged returns the active profile with opts applied on top, and a
// description of where it came from.
func LoadMerged(opts Options) (*Config, string, error) {
	if opts.IgnoreConfig {
		return finish(DefaultConfig(), opts), "(ignored config)", nil
	}

	activePath, err := ActiveConfigPath()
	if errors.Is(err, ErrNoConfig) || activePath == "" {
		return finish(DefaultConfig(), opts),
			"(default config in memory)\nRun `ebangla2epub config init` to create an actual config\n", nil
	}
	if err != nil {
		return nil, "", err
	}

	cfg, err := loadYAML(activePath)
	if err != nil {
		return nil, "", fmt.Errorf("failed to load config %s: %w", activePath, err)
	}

	return finish(cfg, opts), activePath, nil
}

func finish(c *Config, o Options) *Config {
	mergeConfig(c, o)
	applyEnv(c)
	normalizeDefaults(c)
	return c
}

func mergeConfig(c *Config, o Options) {
	if o.OutputDir != "" {
		c.OutputDir = o.OutputDir
	}
	if o.Language != "" {
		c.Language = o.Language
	}
	if o.SiteHost != "" {
		c.SiteHost = o.SiteHost
	}
	if o.TimeoutSeconds != 0 {
		c.TimeoutSeconds = o.TimeoutSeconds
	}
	if o.Retries != 0 {
		c.Retries = o.Retries
	}
	if o.NoCover {
		c.IncludeCover = false
	}
	if o.NoIntro {
		c.IncludeIntro = false
	}
	if o.Debug {
		c.Debug = true
	}
	// A selection given on the command line replaces the profile's selection
	// as a whole; range and list only conflict when both come from flags.
	if o.DefaultRange != "" || o.DefaultList != "" {
		c.DefaultRange = o.DefaultRange
		c.DefaultList = o.DefaultList
	}
	if o.Cookie != "" {
		c.Cookie = o.Cookie
	}
	if o.CookieFile != "" {
		c.CookieFile = o.CookieFile
	}
	if o.UserAgent != "" {
		c.UserAgent = o.UserAgent
	}
	if o.CloudflareBypass {
		c.CloudflareBypass = true
	}
}

// applyEnv fills the cookie from the environment when neither the profile
// nor the flags supplied one.
func applyEnv(c *Config) {
	if c.Cookie == "" && c.CookieFile == "" {
		c.Cookie = strings.TrimSpace(os.Getenv(EnvCookie))
	}
}

func normalizeDefaults(c *Config) {
	def := DefaultConfig()

	if c.OutputDir == "" {
		c.OutputDir = def.OutputDir
	}
	if strings.TrimSpace(c.Language) == "" {
		c.Language = def.Language
	}
	if c.TimeoutSeconds <= 0 {
		c.TimeoutSeconds = def.TimeoutSeconds
	}
	if c.Retries <= 0 {
		c.Retries = def.Retries
	}
	c.SiteHost = strings.ToLower(strings.TrimSpace(c.SiteHost))
}

func (c *Config) Print() {
	c.Fprint(os.Stdout)
}

// Fprint lists the settings on w. The cookie value
// itself is never printed.
func (c *Config) Fprint(w io.Writer) {
	_, _ = fmt.Fprintf(w, " -output_dir: %s\n", c.OutputDir)
	_, _ = fmt.Fprintf(w, " -language: %s\n", c.Language)
	if c.SiteHost != "" {
		_, _ = fmt.Fprintf(w, " -site_host: %s\n", c.SiteHost)
	}
	_, _ = fmt.Fprintf(w, " -timeout_seconds: %d\n", c.TimeoutSeconds)
	_, _ = fmt.Fprintf(w, " -retries: %d\n", c.Retries)
	_, _ = fmt.Fprintf(w, " -include_cover: %t\n", c.IncludeCover)
	_, _ = fmt.Fprintf(w, " -include_intro: %t\n", c.IncludeIntro)
	if c.Debug {
		_, _ = fmt.Fprintf(w, " -debug: %t\n", c.Debug)
	}
	if c.DefaultRange != "" {
		_, _ = fmt.Fprintf(w, " -range: %s\n", c.DefaultRange)
	}
	if c.DefaultList != "" {
		_, _ = fmt.Fprintf(w, " -list: %s\n", c.DefaultList)
	}
	if c.Cookie != "" {
		_, _ = fmt.Fprintf(w, " -cookie: (set)\n")
	}
	if c.CookieFile != "" {
		_, _ = fmt.Fprintf(w, " -cookie_file: %s\n", c.CookieFile)
	}
	if c.UserAgent != "" {
		_, _ = fmt.Fprintf(w, " -user_agent: %s\n", c.UserAgent)
	}
	if c.CloudflareBypass {
		_, _ = fmt.Fprintf(w, " -cloudflare_bypass: %t\n", c.CloudflareBypass)
	}
}
