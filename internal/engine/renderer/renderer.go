// Package renderer draws an engine scene into an offscreen framebuffer:
// meshes flat-shaded in their current pose, then the ground grid and the
// skeleton overlays as lines.
package renderer

import (
	"fmt"
	"unsafe"

	"github.com/go-gl/gl/v4.1-core/gl"
	"go.uber.org/zap"

	"github.com/Faultbox/rigview/internal/engine"
	"github.com/Faultbox/rigview/internal/engine/camera"
	"github.com/Faultbox/rigview/internal/engine/debug"
	"github.com/Faultbox/rigview/internal/engine/framebuffer"
	"github.com/Faultbox/rigview/internal/engine/shader"
	"github.com/Faultbox/rigview/pkg/math"
)

// Config holds renderer configuration.
type Config struct {
	Width      int32
	Height     int32
	ClearColor [4]float32
	GridCells  int
	GridStep   float32
}

const meshVertexShader = `#version 410 core
layout (location = 0) in vec3 aPosition;
layout (location = 1) in vec3 aNormal;

uniform mat4 uViewProj;

out vec3 vNormal;

void main() {
    vNormal = aNormal;
    gl_Position = uViewProj * vec4(aPosition, 1.0);
}
`

const meshFragmentShader = `#version 410 core
in vec3 vNormal;

uniform vec3 uColor;
uniform vec3 uLightDir;

out vec4 FragColor;

void main() {
    float diff = abs(dot(normalize(vNormal), normalize(uLightDir)));
    FragColor = vec4(uColor * (0.35 + 0.65 * diff), 1.0);
}
`

const lineVertexShader = `#version 410 core
layout (location = 0) in vec3 aPosition;

uniform mat4 uViewProj;

void main() {
    gl_Position = uViewProj * vec4(aPosition, 1.0);
}
`

const lineFragmentShader = `#version 410 core
uniform vec3 uColor;

out vec4 FragColor;

void main() {
    FragColor = vec4(uColor, 1.0);
}
`

var (
	meshColor     = [3]float32{0.72, 0.72, 0.75}
	gridColor     = [3]float32{0.35, 0.37, 0.42}
	skeletonColor = [3]float32{1.0, 0.6, 0.1}
)

// Renderer owns the GL objects of the viewport.
type Renderer struct {
	config Config
	fb     *framebuffer.Framebuffer
	log    *zap.Logger

	meshProgram  uint32
	meshViewProj int32
	meshColor    int32
	meshLightDir int32

	lineProgram  uint32
	lineViewProj int32
	lineColor    int32

	meshVAO, meshVBO uint32
	lineVAO, lineVBO uint32

	grid []float32
}

// New creates a renderer. The GL context must be current and gl.Init done.
func New(cfg Config, log *zap.Logger) (*Renderer, error) {
	if log == nil {
		log = zap.NewNop()
	}
	r := &Renderer{
		config: cfg,
		log:    log,
		grid:   debug.GroundGrid(cfg.GridCells, cfg.GridStep),
	}

	var err error
	if r.fb, err = framebuffer.New(cfg.Width, cfg.Height); err != nil {
		return nil, fmt.Errorf("framebuffer: %w", err)
	}
	if r.meshProgram, err = shader.CompileProgram(meshVertexShader, meshFragmentShader); err != nil {
		r.Close()
		return nil, fmt.Errorf("mesh program: %w", err)
	}
	if r.lineProgram, err = shader.CompileProgram(lineVertexShader, lineFragmentShader); err != nil {
		r.Close()
		return nil, fmt.Errorf("line program: %w", err)
	}

	r.meshViewProj = shader.Uniform(r.meshProgram, "uViewProj")
	r.meshColor = shader.Uniform(r.meshProgram, "uColor")
	r.meshLightDir = shader.Uniform(r.meshProgram, "uLightDir")
	r.lineViewProj = shader.Uniform(r.lineProgram, "uViewProj")
	r.lineColor = shader.Uniform(r.lineProgram, "uColor")

	r.meshVAO, r.meshVBO = newStream(floatsPerVertex, true)
	r.lineVAO, r.lineVBO = newStream(3, false)

	log.Info("renderer initialized",
		zap.String("gl_version", gl.GoStr(gl.GetString(gl.VERSION))),
		zap.Int32("width", cfg.Width),
		zap.Int32("height", cfg.Height),
	)
	return r, nil
}

// newStream creates a VAO over a dynamic VBO with position (and optionally
// normal) attributes.
func newStream(stride int32, normals bool) (vao, vbo uint32) {
	gl.GenVertexArrays(1, &vao)
	gl.GenBuffers(1, &vbo)
	gl.BindVertexArray(vao)
	gl.BindBuffer(gl.ARRAY_BUFFER, vbo)

	gl.VertexAttribPointer(0, 3, gl.FLOAT, false, stride*4, nil)
	gl.EnableVertexAttribArray(0)
	if normals {
		//nolint:govet // Valid OpenGL offset pointer usage
		gl.VertexAttribPointer(1, 3, gl.FLOAT, false, stride*4, unsafe.Pointer(uintptr(3*4)))
		gl.EnableVertexAttribArray(1)
	}
	gl.BindVertexArray(0)
	return vao, vbo
}

// Resize changes the framebuffer size.
func (r *Renderer) Resize(width, height int32) {
	r.fb.Resize(width, height)
}

// Size returns the framebuffer size.
func (r *Renderer) Size() (width, height int32) {
	return r.fb.Size()
}

// Render draws the scene and returns the color texture.
func (r *Renderer) Render(s *engine.Scene, cam *camera.OrbitCamera) uint32 {
	restore := r.fb.Bind()
	defer restore()

	r.fb.Clear(r.config.ClearColor)
	gl.Enable(gl.DEPTH_TEST)
	gl.DepthFunc(gl.LESS)

	w, h := r.fb.Size()
	viewProj := cam.ProjectionMatrix(float32(w) / float32(h)).Mul(cam.ViewMatrix())

	gl.UseProgram(r.meshProgram)
	gl.UniformMatrix4fv(r.meshViewProj, 1, false, viewProj.Ptr())
	gl.Uniform3f(r.meshColor, meshColor[0], meshColor[1], meshColor[2])
	eye := cam.Position().Sub(cam.Target)
	gl.Uniform3f(r.meshLightDir, eye.X, eye.Y+1, eye.Z)
	for _, m := range s.Meshes() {
		r.drawStream(r.meshVAO, r.meshVBO, gl.TRIANGLES, MeshTriangles(m), floatsPerVertex)
	}

	gl.UseProgram(r.lineProgram)
	gl.UniformMatrix4fv(r.lineViewProj, 1, false, viewProj.Ptr())
	gl.Uniform3f(r.lineColor, gridColor[0], gridColor[1], gridColor[2])
	r.drawStream(r.lineVAO, r.lineVBO, gl.LINES, r.grid, 3)

	// Bones draw over the body.
	gl.Disable(gl.DEPTH_TEST)
	gl.Uniform3f(r.lineColor, skeletonColor[0], skeletonColor[1], skeletonColor[2])
	for _, v := range s.SkeletonViewers() {
		r.drawStream(r.lineVAO, r.lineVBO, gl.LINES, debug.SkeletonLines(v), 3)
	}

	gl.BindVertexArray(0)
	gl.UseProgram(0)
	return r.fb.ColorTexture()
}

func (r *Renderer) drawStream(vao, vbo uint32, mode uint32, data []float32, stride int) {
	if len(data) == 0 {
		return
	}
	gl.BindVertexArray(vao)
	gl.BindBuffer(gl.ARRAY_BUFFER, vbo)
	gl.BufferData(gl.ARRAY_BUFFER, len(data)*4, unsafe.Pointer(&data[0]), gl.STREAM_DRAW)
	gl.DrawArrays(mode, 0, int32(len(data)/stride))
}

// Frame fits the camera to the scene's current bounds. It reports false
// when there is nothing to frame.
func Frame(s *engine.Scene, cam *camera.OrbitCamera) bool {
	min, max, ok := debug.SceneBounds(s)
	if !ok {
		return false
	}
	if max.Sub(min).Length() == 0 {
		max = max.Add(math.Vec3{X: 0.5, Y: 0.5, Z: 0.5})
	}
	cam.FitToBounds(min, max)
	return true
}

// Close releases all GL objects.
func (r *Renderer) Close() {
	r.log.Info("closing renderer")
	for _, vao := range []*uint32{&r.meshVAO, &r.lineVAO} {
		if *vao != 0 {
			gl.DeleteVertexArrays(1, vao)
			*vao = 0
		}
	}
	for _, vbo := range []*uint32{&r.meshVBO, &r.lineVBO} {
		if *vbo != 0 {
			gl.DeleteBuffers(1, vbo)
			*vbo = 0
		}
	}
	for _, p := range []*uint32{&r.meshProgram, &r.lineProgram} {
		if *p != 0 {
			gl.DeleteProgram(*p)
			*p = 0
		}
	}
	if r.fb != nil {
		r.fb.Destroy()
	}
}
