package rotmg

import "fmt"

// CustomAtlas is the atlas id of sprites that carry their own image.
const CustomAtlas = -1

// Rect is a region of an atlas image in pixels.
type Rect struct {
	X float32 `json:"x"`
	Y float32 `json:"y"`
	W float32 `json:"w"`
	H float32 `json:"h"`
}

// Color is the average color the atlas stores for a sprite.
type Color struct {
	R float32 `json:"r"`
	G float32 `json:"g"`
	B float32 `json:"b"`
	A float32 `json:"a"`
}

// Sprite is a named region inside an atlas.
type Sprite struct {
	Sheet    string `json:"spriteSheetName"`
	Index    int    `json:"index"`
	AtlasID  int    `json:"atlasId"`
	Padding  int    `json:"padding"`
	Position Rect   `json:"position"`
	Mask     Rect   `json:"maskPosition"`
	Color    Color  `json:"color"`

	// Image is the source of a standalone texture when AtlasID is CustomAtlas.
	Image string `json:"image,omitempty"`
}

func (s *Sprite) Validate() error {
	if s.Sheet == "" {
		return fmt.Errorf("sprite sheet name is required")
	}
	if s.Position.W < 0 || s.Position.H < 0 {
		return fmt.Errorf("sprite %s has a negative size", SpriteKey(s.Sheet, s.Index))
	}
	return nil
}

// AnimatedSprite is one frame of an animated character sprite.
type AnimatedSprite struct {
	Sprite

	Set       int `json:"set"`
	Direction int `json:"direction"`
	Action    int `json:"action"`
	Frame     int `json:"frame"`
}

// SpriteKey is the registry key of a static sprite.
func SpriteKey(sheet string, index int) string {
	return fmt.Sprintf("%s:%d", sheet, index)
}

// AnimatedSpriteKey is the registry key of one animation frame.
func AnimatedSpriteKey(sheet string, index, set, direction, action, frame int) string {
	return fmt.Sprintf("%s:%d:%d:%d:%d:%d", sheet, index, set, direction, action, frame)
}

// ProgramSource is the shader source of a draw program.
type ProgramSource struct {
	Name     string `json:"name"`
	Vertex   string `json:"vertex"`
	Fragment string `json:"fragment"`
}

func (p *ProgramSource) Validate() error {
	if p.Vertex == "" || p.Fragment == "" {
		return fmt.Errorf("program %q needs vertex and fragment source", p.Name)
	}
	return nil
}
