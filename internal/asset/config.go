package asset

import (
	"fmt"
	"io"
	"os"

	"github.com/pixil98/go-errors"
	"gopkg.in/yaml.v3"
)

// Config declares the containers to load in one pass.
type Config struct {
	Name       string            `yaml:"name" json:"name"`
	Vars       map[string]string `yaml:"vars,omitempty" json:"vars,omitempty"`
	Containers []Container       `yaml:"containers" json:"containers"`
}

// Container is one batch of sources sharing a format loader, a source loader
// and a category.
type Container struct {
	Type         string   `yaml:"type" json:"type"`
	Loader       string   `yaml:"loader" json:"loader"`
	SourceLoader string   `yaml:"sourceLoader" json:"sourceLoader"`
	Settings     Settings `yaml:"settings,omitempty" json:"settings,omitempty"`
	Sources      []string `yaml:"sources" json:"sources"`
}

func (c *Config) Validate() error {
	el := errors.NewErrorList()

	if c.Name == "" {
		el.Add(fmt.Errorf("name is required"))
	}

	for i := range c.Containers {
		err := c.Containers[i].validate()
		if err != nil {
			el.Add(fmt.Errorf("container %d: %w", i, err))
		}
	}

	return el.Err()
}

func (c *Container) validate() error {
	el := errors.NewErrorList()

	if c.Type == "" {
		el.Add(fmt.Errorf("type is required"))
	}
	if c.Loader == "" {
		el.Add(fmt.Errorf("loader is required"))
	}
	if c.SourceLoader == "" {
		el.Add(fmt.Errorf("sourceLoader is required"))
	}
	if _, err := c.Settings.ReadOnly(); err != nil {
		el.Add(err)
	}

	return el.Err()
}

// expand returns a copy of the config with every source template expanded.
func (c *Config) expand() (Config, error) {
	out := Config{
		Name:       c.Name,
		Vars:       c.Vars,
		Containers: make([]Container, len(c.Containers)),
	}

	el := errors.NewErrorList()
	for i, ct := range c.Containers {
		ct.Sources = make([]string, len(c.Containers[i].Sources))
		for j, src := range c.Containers[i].Sources {
			s, err := expandTemplate(src, c.Vars)
			if err != nil {
				el.Add(fmt.Errorf("container %d source %d: %w", i, j, err))
				continue
			}
			ct.Sources[j] = s
		}
		out.Containers[i] = ct
	}

	return out, el.Err()
}

// DecodeConfig reads a manifest. YAML and JSON are both accepted.
func DecodeConfig(r io.Reader) (*Config, error) {
	var c Config
	if err := yaml.NewDecoder(r).Decode(&c); err != nil {
		return nil, fmt.Errorf("decoding manifest: %w", err)
	}
	return &c, nil
}

// LoadConfigFile reads the manifest at path.
func LoadConfigFile(path string) (*Config, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening manifest: %w", err)
	}

	// Ignoring close error - file is read-only, error is not actionable
	defer func() { _ = file.Close() }()

	return DecodeConfig(file)
}
