package asset

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pixil98/go-testutil"
)

const testManifest = `
name: rotmg/base
vars:
  cdn: https://www.haizor.net/rotmg/assets/production
containers:
  - type: rotmg
    loader: rotmg-loader
    sourceLoader: url-to-text
    settings:
      readOnly: true
    sources:
      - "{{ .cdn }}/xml/equip.xml"
      - "{{ .cdn }}/xml/players.xml"
  - type: sprites
    loader: sprite-loader
    sourceLoader: url-to-text
    sources:
      - "{{ .cdn }}/atlases/spritesheet.json"
`

func TestDecodeConfig(t *testing.T) {
	cfg, err := DecodeConfig(strings.NewReader(testManifest))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	testutil.AssertEqual(t, "name", cfg.Name, "rotmg/base")
	testutil.AssertEqual(t, "containers", len(cfg.Containers), 2)
	testutil.AssertEqual(t, "source loader", cfg.Containers[0].SourceLoader, "url-to-text")
	testutil.AssertEqual(t, "sources", len(cfg.Containers[0].Sources), 2)

	ro, err := cfg.Containers[0].Settings.ReadOnly()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	testutil.AssertEqual(t, "readOnly", ro, true)

	ro, err = cfg.Containers[1].Settings.ReadOnly()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	testutil.AssertEqual(t, "default readOnly", ro, false)

	expanded, err := cfg.expand()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	testutil.AssertEqual(t, "expanded", expanded.Containers[1].Sources[0],
		"https://www.haizor.net/rotmg/assets/production/atlases/spritesheet.json")
	testutil.AssertEqual(t, "original untouched", cfg.Containers[1].Sources[0], "{{ .cdn }}/atlases/spritesheet.json")
}

func TestDecodeConfig_JSON(t *testing.T) {
	cfg, err := DecodeConfig(strings.NewReader(`{"name":"custom","containers":[{"type":"sprites","loader":"custom-sprite-loader","sourceLoader":"file","sources":["custom.json"]}]}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	testutil.AssertEqual(t, "loader", cfg.Containers[0].Loader, "custom-sprite-loader")
	if err := cfg.Validate(); err != nil {
		t.Errorf("unexpected validation error: %v", err)
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := map[string]struct {
		cfg     Config
		expErrs []string
	}{
		"valid": {
			cfg: Config{Name: "base", Containers: []Container{
				{Type: "rotmg", Loader: "rotmg-loader", SourceLoader: "url-to-text"},
			}},
		},
		"missing everything": {
			cfg: Config{Containers: []Container{{}}},
			expErrs: []string{
				"name is required",
				"type is required",
				"loader is required",
				"sourceLoader is required",
			},
		},
		"bad readOnly": {
			cfg: Config{Name: "base", Containers: []Container{
				{Type: "rotmg", Loader: "l", SourceLoader: "s", Settings: Settings{"readOnly": []byte(`1`)}},
			}},
			expErrs: []string{"unmarshal setting"},
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if len(tt.expErrs) == 0 {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			for _, exp := range tt.expErrs {
				testutil.AssertErrorContains(t, err, exp)
			}
		})
	}
}

func TestLoadConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "assets.yaml")
	if err := os.WriteFile(path, []byte(testManifest), 0644); err != nil {
		t.Fatalf("failed to write test file: %v", err)
	}

	cfg, err := LoadConfigFile(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	testutil.AssertEqual(t, "name", cfg.Name, "rotmg/base")

	_, err = LoadConfigFile(filepath.Join(t.TempDir(), "missing.yaml"))
	testutil.AssertErrorContains(t, err, "opening manifest")
}
