package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"time"
	"unicode/utf8"

	"github.com/invopop/jsonschema"
	"gopkg.in/yaml.v3"

	"github.com/MacroPower/csvdash/pkg/dataset"
	"github.com/MacroPower/csvdash/pkg/session"
)

// EnvFile names an environment variable holding a config file path, used
// when no path is given explicitly.
const EnvFile = "CSVDASH_CONFIG"

const (
	DefaultDataDir      = "data"
	DefaultAddr         = ":8501"
	DefaultTopN         = 10
	MinTopN             = 3
	MaxTopN             = 30
	DefaultLoadWorkers  = 4
	DefaultReadTimeout  = 30 * time.Second
	DefaultWriteTimeout = 60 * time.Second
)

var (
	// ErrInvalidConfig indicates the configuration failed validation.
	ErrInvalidConfig = errors.New("invalid config")

	// ErrReadConfig indicates the configuration file could not be read or
	// decoded.
	ErrReadConfig = errors.New("read config")
)

// Config is the csvdash configuration.
type Config struct {
	// Directory searched for CSV files.
	DataDir string `json:"data_dir" yaml:"data_dir" jsonschema:"default=data"`
	// Address the web UI listens on.
	Addr string `json:"addr" yaml:"addr" jsonschema:"default=:8501"`
	// Single character separating CSV fields.
	Delimiter string `json:"delimiter" yaml:"delimiter" jsonschema:"minLength=1,maxLength=4"`
	// Largest CSV file accepted, in bytes. Zero disables the limit.
	MaxFileSize int64 `json:"max_file_size" yaml:"max_file_size" jsonschema:"minimum=0"`
	// How long an idle web session is kept.
	SessionTTL time.Duration `json:"session_ttl" yaml:"session_ttl" jsonschema:"type=string,default=30m"`
	// Number of groups shown in the top groups chart by default.
	DefaultTopN int `json:"default_top_n" yaml:"default_top_n" jsonschema:"minimum=3,maximum=30,default=10"`
	// Number of files loaded concurrently when selecting groups.
	LoadWorkers int `json:"load_workers" yaml:"load_workers" jsonschema:"minimum=1,default=4"`
	// HTTP server read timeout.
	ReadTimeout time.Duration `json:"read_timeout" yaml:"read_timeout" jsonschema:"type=string,default=30s"`
	// HTTP server write timeout.
	WriteTimeout time.Duration `json:"write_timeout" yaml:"write_timeout" jsonschema:"type=string,default=1m"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		DataDir:      DefaultDataDir,
		Addr:         DefaultAddr,
		Delimiter:    ",",
		MaxFileSize:  dataset.DefaultMaxSize,
		SessionTTL:   session.DefaultTTL,
		DefaultTopN:  DefaultTopN,
		LoadWorkers:  DefaultLoadWorkers,
		ReadTimeout:  DefaultReadTimeout,
		WriteTimeout: DefaultWriteTimeout,
	}
}

// Load reads the config file at path on top of [Default]. An empty path falls
// back to [EnvFile], and then to the defaults alone.
func Load(path string) (*Config, error) {
	if path == "" {
		path = os.Getenv(EnvFile)
	}

	if path == "" {
		return Default(), nil
	}

	f, err := os.Open(path) //nolint:gosec // User-provided config path.
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrReadConfig, err)
	}
	defer f.Close() //nolint:errcheck // Read-only.

	c, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return c, nil
}

// Decode reads YAML from r on top of [Default] and validates the result.
// Unknown fields are rejected.
func Decode(r io.Reader) (*Config, error) {
	c := Default()

	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	if err := dec.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: %w", ErrReadConfig, err)
	}

	if err := c.Validate(); err != nil {
		return nil, err
	}

	return c, nil
}

// Validate checks that every field holds a usable value.
func (c *Config) Validate() error {
	if c.DataDir == "" {
		return fmt.Errorf("%w: data_dir is empty", ErrInvalidConfig)
	}

	if c.Addr == "" {
		return fmt.Errorf("%w: addr is empty", ErrInvalidConfig)
	}

	if utf8.RuneCountInString(c.Delimiter) != 1 {
		return fmt.Errorf("%w: delimiter must be a single character, got %q", ErrInvalidConfig, c.Delimiter)
	}

	if err := c.Options().Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	if c.SessionTTL <= 0 {
		return fmt.Errorf("%w: session_ttl must be positive", ErrInvalidConfig)
	}

	if c.DefaultTopN < MinTopN || c.DefaultTopN > MaxTopN {
		return fmt.Errorf("%w: default_top_n must be between %d and %d", ErrInvalidConfig, MinTopN, MaxTopN)
	}

	if c.LoadWorkers < 1 {
		return fmt.Errorf("%w: load_workers must be at least 1", ErrInvalidConfig)
	}

	if c.ReadTimeout < 0 || c.WriteTimeout < 0 {
		return fmt.Errorf("%w: timeouts must not be negative", ErrInvalidConfig)
	}

	return nil
}

// Options returns the CSV parsing options described by c.
func (c *Config) Options() dataset.Options {
	opts := dataset.DefaultOptions()
	opts.MaxSize = c.MaxFileSize

	if r, _ := utf8.DecodeRuneInString(c.Delimiter); c.Delimiter != "" {
		opts.Comma = r
	}

	return opts
}

// Loader returns a [dataset.Loader] over DataDir.
func (c *Config) Loader() *dataset.Loader {
	return dataset.NewLoader(c.DataDir,
		dataset.WithOptions(c.Options()),
		dataset.WithWorkers(c.LoadWorkers),
	)
}

// Encode writes c as YAML.
func (c *Config) Encode(w io.Writer) error {
	buf := &bytes.Buffer{}

	enc := yaml.NewEncoder(buf)
	enc.SetIndent(2)

	if err := enc.Encode(c); err != nil {
		return fmt.Errorf("encode config: %w", err)
	}

	if err := enc.Close(); err != nil {
		return fmt.Errorf("encode config: %w", err)
	}

	if _, err := w.Write(buf.Bytes()); err != nil {
		return fmt.Errorf("write config: %w", err)
	}

	return nil
}

// Schema returns the JSON schema of the config file.
func Schema() *jsonschema.Schema {
	r := &jsonschema.Reflector{
		DoNotReference:             true,
		ExpandedStruct:             true,
		AllowAdditionalProperties:  false,
		RequiredFromJSONSchemaTags: true,
	}

	s := r.Reflect(&Config{})
	s.Title = "csvdash config"

	return s
}
