package game

import (
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/pixil98/go-rotmg/internal/render"
	"github.com/pixil98/go-rotmg/internal/rotmg"
)

type mapRegistry map[string]map[string]any

func (r mapRegistry) Get(category, key string) (any, bool) {
	v, ok := r[category][key]
	return v, ok
}

func testRegistry() mapRegistry {
	return mapRegistry{
		render.ProgramCategory: {
			ParticleProgram:  &rotmg.ProgramSource{Name: ParticleProgram, Vertex: "v", Fragment: "f"},
			CharacterProgram: &rotmg.ProgramSource{Name: CharacterProgram, Vertex: "v", Fragment: "f"},
		},
		render.SpriteCategory: {
			"players:0:0:0:0:0": &rotmg.AnimatedSprite{
				Sprite: rotmg.Sprite{Sheet: "players", AtlasID: 1, Position: rotmg.Rect{X: 8, Y: 0, W: 8, H: 16}},
			},
		},
	}
}

type mockObject struct {
	Base

	updates  int
	onUpdate func()
}

func newMockObject(z float32) *mockObject {
	m := &mockObject{Base: NewBase(mgl32.Vec2{})}
	m.Z = z
	return m
}

func (m *mockObject) Update(elapsed time.Duration) {
	m.Base.Update(elapsed)
	m.updates++
	if m.onUpdate != nil {
		m.onUpdate()
	}
}

func (m *mockObject) Render(*render.Context) error { return nil }
