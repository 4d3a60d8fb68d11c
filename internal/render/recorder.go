package render

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
)

// Command is one recorded draw call with its geometry copied out.
type Command struct {
	Program   string     `json:"program"`
	Primitive string     `json:"primitive"`
	Stride    int        `json:"stride"`
	Vertices  []float32  `json:"vertices"`
	ModelView mgl32.Mat4 `json:"modelView"`
	Color     mgl32.Vec4 `json:"color"`
	Texture   *Texture   `json:"texture,omitempty"`
}

// Frame is what the browser replays with WebGL.
type Frame struct {
	Seq      uint64     `json:"seq"`
	View     mgl32.Mat4 `json:"view"`
	Commands []Command  `json:"commands"`
	Stats    FrameStats `json:"stats"`
}

// Recorder is a Device that records draws instead of issuing them.
type Recorder struct {
	next     int
	buffers  map[BufferID][]float32
	programs map[ProgramID]string
	commands []Command
}

func NewRecorder() *Recorder {
	return &Recorder{
		buffers:  map[BufferID][]float32{},
		programs: map[ProgramID]string{},
	}
}

func (r *Recorder) NewBuffer() (BufferID, error) {
	r.next++
	id := BufferID(r.next)
	r.buffers[id] = nil
	return id, nil
}

func (r *Recorder) Upload(buf BufferID, data []float32) error {
	if _, ok := r.buffers[buf]; !ok {
		return fmt.Errorf("unknown buffer %d", buf)
	}
	r.buffers[buf] = append(r.buffers[buf][:0], data...)
	return nil
}

func (r *Recorder) CompileProgram(name, vertex, fragment string) (ProgramID, error) {
	if vertex == "" || fragment == "" {
		return 0, fmt.Errorf("program %q is missing a shader stage", name)
	}
	r.next++
	id := ProgramID(r.next)
	r.programs[id] = name
	return id, nil
}

func (r *Recorder) Draw(call DrawCall) error {
	data, ok := r.buffers[call.Buffer]
	if !ok {
		return fmt.Errorf("unknown buffer %d", call.Buffer)
	}
	name, ok := r.programs[call.Program]
	if !ok {
		return fmt.Errorf("unknown program %d", call.Program)
	}

	r.commands = append(r.commands, Command{
		Program:   name,
		Primitive: call.Primitive.String(),
		Stride:    call.Stride,
		Vertices:  append([]float32(nil), data[:call.Count*call.Stride]...),
		ModelView: call.ModelView,
		Color:     call.Color,
		Texture:   call.Texture,
	})
	return nil
}

func (r *Recorder) Release(buf BufferID) {
	delete(r.buffers, buf)
}

// Mark returns the position of the next recorded command.
func (r *Recorder) Mark() int {
	return len(r.commands)
}

// Rewind drops the commands recorded after mark.
func (r *Recorder) Rewind(mark int) {
	if mark >= 0 && mark < len(r.commands) {
		r.commands = r.commands[:mark]
	}
}

// Flush returns the commands recorded since the last flush.
func (r *Recorder) Flush() []Command {
	cmds := r.commands
	r.commands = nil
	return cmds
}
