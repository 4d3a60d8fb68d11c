package rotmg

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"image"
	_ "image/png"
	"log/slog"
	"net/url"
	"path"
	"strings"

	"github.com/pixil98/go-errors"
	"github.com/pixil98/go-rotmg/internal/asset"
	"gopkg.in/yaml.v3"
)

// Loader names used in asset manifests.
const (
	ObjectLoaderName       = "rotmg-loader"
	SpritesheetLoaderName  = "sprite-loader"
	CustomSpriteLoaderName = "custom-sprite-loader"
	ProgramLoaderName      = "program-loader"
)

// RegisterLoaders registers every format loader of this package on m.
func RegisterLoaders(m *asset.Manager) error {
	loaders := map[string]asset.FormatLoader{
		ObjectLoaderName:       &ObjectLoader{},
		SpritesheetLoaderName:  &SpritesheetLoader{},
		CustomSpriteLoaderName: &CustomSpriteLoader{},
		ProgramLoaderName:      &ProgramLoader{},
	}
	for name, l := range loaders {
		if err := m.RegisterLoader(name, l); err != nil {
			return err
		}
	}
	return nil
}

// ObjectLoader parses <Objects> XML documents into object definitions keyed
// by id.
type ObjectLoader struct{}

func (l *ObjectLoader) Load(ctx context.Context, req asset.Request) ([]asset.Record, error) {
	return asset.FetchAll(ctx, req, func(_ int, src string, data []byte) ([]asset.Record, error) {
		objs, skipped, err := decodeObjects(data)
		if err != nil {
			return nil, err
		}
		for _, s := range skipped {
			slog.WarnContext(ctx, "skipping object", "source", src, "error", s)
		}

		recs := make([]asset.Record, 0, len(objs))
		for _, o := range objs {
			recs = append(recs, asset.Record{Category: req.Category, Key: o.Base().ID, Value: o})
		}
		return recs, nil
	})
}

type atlasSheet struct {
	Sheet    string   `json:"spriteSheetName"`
	AtlasID  int      `json:"atlasId"`
	Elements []Sprite `json:"elements"`
}

type atlasAnimated struct {
	Index     int    `json:"index"`
	Sheet     string `json:"spriteSheetName"`
	Set       int    `json:"set"`
	Direction int    `json:"direction"`
	Action    int    `json:"action"`
	Data      Sprite `json:"spriteData"`
}

type atlasDocument struct {
	Sprites         []atlasSheet    `json:"sprites"`
	AnimatedSprites []atlasAnimated `json:"animatedSprites"`
}

// SpritesheetLoader parses the atlas description into Sprite and
// AnimatedSprite records.
type SpritesheetLoader struct{}

func (l *SpritesheetLoader) Load(ctx context.Context, req asset.Request) ([]asset.Record, error) {
	return asset.FetchAll(ctx, req, func(_ int, src string, data []byte) ([]asset.Record, error) {
		var doc atlasDocument
		if err := json.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("decoding spritesheet: %w", err)
		}

		var recs []asset.Record
		for _, sheet := range doc.Sprites {
			for _, s := range sheet.Elements {
				if s.Sheet == "" {
					s.Sheet = sheet.Sheet
				}
				if s.AtlasID == 0 {
					s.AtlasID = sheet.AtlasID
				}
				if err := s.Validate(); err != nil {
					slog.WarnContext(ctx, "skipping sprite", "source", src, "error", err)
					continue
				}
				recs = append(recs, asset.Record{Category: req.Category, Key: SpriteKey(s.Sheet, s.Index), Value: &s})
			}
		}

		frames := map[string]int{}
		for _, a := range doc.AnimatedSprites {
			s := a.Data
			if s.Sheet == "" {
				s.Sheet = a.Sheet
			}
			s.Index = a.Index
			if err := s.Validate(); err != nil {
				slog.WarnContext(ctx, "skipping animated sprite", "source", src, "error", err)
				continue
			}

			base := AnimatedSpriteKey(s.Sheet, a.Index, a.Set, a.Direction, a.Action, 0)
			frame := frames[base]
			frames[base]++

			as := &AnimatedSprite{Sprite: s, Set: a.Set, Direction: a.Direction, Action: a.Action, Frame: frame}
			key := AnimatedSpriteKey(s.Sheet, a.Index, a.Set, a.Direction, a.Action, frame)
			recs = append(recs, asset.Record{Category: req.Category, Key: key, Value: as})
		}

		return recs, nil
	})
}

type customSprite struct {
	File     string `json:"file"`
	Index    int    `json:"index"`
	AtlasID  *int   `json:"atlasId"`
	Position Rect   `json:"position"`
	Image    string `json:"image"`
}

type customDocument struct {
	Sprites []customSprite `json:"sprites"`
}

// CustomSpriteLoader layers sprite overrides on top of the atlas. Overrides
// share the atlas key space so a later container replaces atlas entries.
// An override may name its own image, which is fetched as a binary source.
type CustomSpriteLoader struct{}

func (l *CustomSpriteLoader) Load(ctx context.Context, req asset.Request) ([]asset.Record, error) {
	return asset.FetchAll(ctx, req, func(_ int, src string, data []byte) ([]asset.Record, error) {
		var doc customDocument
		if err := json.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("decoding custom sprites: %w", err)
		}

		var recs []asset.Record
		for _, c := range doc.Sprites {
			s := &Sprite{
				Sheet:    c.File,
				Index:    c.Index,
				AtlasID:  CustomAtlas,
				Position: c.Position,
			}
			if c.AtlasID != nil {
				s.AtlasID = *c.AtlasID
			}

			if c.Image != "" {
				s.Image = resolveRelative(src, c.Image)
				if err := l.measure(ctx, req, s); err != nil {
					slog.WarnContext(ctx, "skipping custom sprite", "source", src, "image", s.Image, "error", err)
					continue
				}
			}

			if err := s.Validate(); err != nil {
				slog.WarnContext(ctx, "skipping custom sprite", "source", src, "error", err)
				continue
			}
			recs = append(recs, asset.Record{Category: req.Category, Key: SpriteKey(s.Sheet, s.Index), Value: s})
		}
		return recs, nil
	})
}

// measure fills in the sprite size from its image when none was given.
func (l *CustomSpriteLoader) measure(ctx context.Context, req asset.Request, s *Sprite) error {
	data, err := req.Fetcher.Fetch(ctx, s.Image)
	if err != nil {
		return err
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("decoding image: %w", err)
	}

	if s.Position.W == 0 && s.Position.H == 0 {
		s.Position.W = float32(cfg.Width)
		s.Position.H = float32(cfg.Height)
	}
	return nil
}

type programEntry struct {
	Name     string `yaml:"name"`
	Vertex   string `yaml:"vertex"`
	Fragment string `yaml:"fragment"`
}

type programManifest struct {
	Programs []programEntry `yaml:"programs"`
}

// ProgramLoader reads a manifest of shader programs and fetches their
// sources. Shader paths are relative to the manifest.
type ProgramLoader struct{}

func (l *ProgramLoader) Load(ctx context.Context, req asset.Request) ([]asset.Record, error) {
	return asset.FetchAll(ctx, req, func(_ int, src string, data []byte) ([]asset.Record, error) {
		var doc programManifest
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("decoding program manifest: %w", err)
		}

		var recs []asset.Record
		el := errors.NewErrorList()
		for _, p := range doc.Programs {
			ps, err := l.fetchProgram(ctx, req, src, p)
			if err != nil {
				slog.WarnContext(ctx, "skipping program", "source", src, "program", p.Name, "error", err)
				el.Add(fmt.Errorf("program %q: %w", p.Name, err))
				continue
			}
			recs = append(recs, asset.Record{Category: req.Category, Key: p.Name, Value: ps})
		}
		return recs, el.Err()
	})
}

func (l *ProgramLoader) fetchProgram(ctx context.Context, req asset.Request, manifest string, p programEntry) (*ProgramSource, error) {
	vert, err := req.Fetcher.Fetch(ctx, resolveRelative(manifest, p.Vertex))
	if err != nil {
		return nil, fmt.Errorf("vertex shader: %w", err)
	}
	frag, err := req.Fetcher.Fetch(ctx, resolveRelative(manifest, p.Fragment))
	if err != nil {
		return nil, fmt.Errorf("fragment shader: %w", err)
	}

	ps := &ProgramSource{Name: p.Name, Vertex: string(vert), Fragment: string(frag)}
	if err := ps.Validate(); err != nil {
		return nil, err
	}
	return ps, nil
}

// resolveRelative resolves ref against the source it was found in.
func resolveRelative(base, ref string) string {
	if ref == "" || strings.HasPrefix(ref, "/") || strings.Contains(ref, "://") {
		return ref
	}

	if strings.Contains(base, "://") && !strings.HasPrefix(base, "file://") {
		b, err := url.Parse(base)
		if err == nil {
			r, err := url.Parse(ref)
			if err == nil {
				return b.ResolveReference(r).String()
			}
		}
	}

	dir := path.Dir(strings.TrimPrefix(base, "file://"))
	if dir == "." {
		return ref
	}
	return path.Join(dir, ref)
}
