package bildvagg

import (
	"fmt"
	"maps"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds configuration for a gallery build.
type Config struct {
	InDir       string `yaml:"in"`
	OutDir      string `yaml:"out"`
	Collection  string `yaml:"title"`
	Description string `yaml:"description"`

	// Root is the URL path the output tree is served from.
	Root string `yaml:"root"`
	// WasmDir holds wall.wasm and wasm_exec.js to ship with the site.
	WasmDir string `yaml:"wasm_dir"`

	Thumbnails      map[string]ThumbOpts `yaml:"thumbnails"`
	ProcessSidecars bool                 `yaml:"sidecars"`
	// Backlink adds home and sibling navigation to every gallery below the root.
	Backlink bool `yaml:"backlink"`

	Publish PublishConfig `yaml:"publish"`
}

// PublishConfig is where a built site is uploaded.
type PublishConfig struct {
	Bucket         string `yaml:"bucket"`
	Prefix         string `yaml:"prefix"`
	Region         string `yaml:"region"`
	Endpoint       string `yaml:"endpoint"`
	ForcePathStyle bool   `yaml:"force_path_style"`
	AccessKey      string `yaml:"access_key"`
	SecretKey      string `yaml:"secret_key"`
}

// TakeoutSidecar is a JSON file for EXIF overrides that is compatible with Google Takeout.
type TakeoutSidecar struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	// Not compatible
	Tags []string `json:"tags"`
}

// DefaultConfig returns the configuration used when no file is given.
func DefaultConfig() *Config {
	return &Config{
		Collection: "bildvagg",
		Root:       "/",
		Backlink:   true,
		Thumbnails: maps.Clone(defaultThumbOpts),
	}
}

// LoadConfig reads a YAML configuration file on top of the defaults.
func LoadConfig(path string) (*Config, error) {
	c := DefaultConfig()
	// yaml merges into existing maps; sizes from the file replace the defaults.
	c.Thumbnails = nil
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	c.Normalize()
	return c, nil
}

// Normalize fills in defaults and canonicalizes paths.
func (c *Config) Normalize() {
	if c.Root == "" {
		c.Root = "/"
	}
	if !strings.HasPrefix(c.Root, "/") {
		c.Root = "/" + c.Root
	}
	if !strings.HasSuffix(c.Root, "/") {
		c.Root += "/"
	}
	if len(c.Thumbnails) == 0 {
		c.Thumbnails = maps.Clone(defaultThumbOpts)
	}
	c.Publish.Prefix = strings.Trim(c.Publish.Prefix, "/")
}
