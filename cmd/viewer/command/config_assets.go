package command

import (
	"fmt"
	"os"
	"time"

	"github.com/pixil98/go-errors"
	"github.com/pixil98/go-rotmg/internal/asset"
	"github.com/pixil98/go-rotmg/internal/rotmg"
	"github.com/pixil98/go-rotmg/internal/source"
)

// Source loader names available to manifests.
const (
	SourceURLToText = "url-to-text"
	SourceFile      = "file"
)

type AssetsConfig struct {
	Manifests    []string `json:"manifests"`
	FetchTimeout string   `json:"fetch_timeout"`
	FileRoot     string   `json:"file_root"`

	// MaxFetchBytes caps one fetched body. Zero keeps the loader default.
	MaxFetchBytes int64 `json:"max_fetch_bytes"`
}

func (c *AssetsConfig) Validate() error {
	el := errors.NewErrorList()

	if len(c.Manifests) == 0 {
		el.Add(fmt.Errorf("assets: at least one manifest is required"))
	}
	for _, path := range c.Manifests {
		if _, err := os.Stat(path); err != nil {
			el.Add(fmt.Errorf("assets: invalid manifest %q: %w", path, err))
		}
	}

	if c.FetchTimeout != "" {
		_, err := time.ParseDuration(c.FetchTimeout)
		if err != nil {
			el.Add(fmt.Errorf("assets: parsing fetch_timeout: %w", err))
		}
	}

	if c.MaxFetchBytes < 0 {
		el.Add(fmt.Errorf("assets: max_fetch_bytes must not be negative"))
	}

	return el.Err()
}

// BuildManager creates an asset manager with every format and source loader
// registered.
func (c *AssetsConfig) BuildManager(n asset.Notifier) (*asset.Manager, error) {
	var httpOpts []source.HTTPLoaderOpt
	if c.FetchTimeout != "" {
		d, err := time.ParseDuration(c.FetchTimeout)
		if err != nil {
			return nil, fmt.Errorf("parsing fetch_timeout: %w", err)
		}
		httpOpts = append(httpOpts, source.WithTimeout(d))
	}
	if c.MaxFetchBytes > 0 {
		httpOpts = append(httpOpts, source.WithMaxBytes(c.MaxFetchBytes))
	}

	var opts []asset.ManagerOpt
	if n != nil {
		opts = append(opts, asset.WithNotifier(n))
	}
	m := asset.NewManager(opts...)

	if err := rotmg.RegisterLoaders(m); err != nil {
		return nil, fmt.Errorf("registering format loaders: %w", err)
	}
	if err := m.RegisterSource(SourceURLToText, source.NewHTTPLoader(httpOpts...)); err != nil {
		return nil, fmt.Errorf("registering source loader: %w", err)
	}
	if err := m.RegisterSource(SourceFile, source.NewFileLoader(c.FileRoot)); err != nil {
		return nil, fmt.Errorf("registering source loader: %w", err)
	}

	return m, nil
}

// LoadManifests reads every configured manifest in order.
func (c *AssetsConfig) LoadManifests() ([]asset.Config, error) {
	configs := make([]asset.Config, 0, len(c.Manifests))
	for _, path := range c.Manifests {
		cfg, err := asset.LoadConfigFile(path)
		if err != nil {
			return nil, fmt.Errorf("manifest %q: %w", path, err)
		}
		configs = append(configs, *cfg)
	}
	return configs, nil
}
