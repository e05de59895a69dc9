// Package opengl implements the device backend on OpenGL 4.1 core.
// It must only be used after a GL context has been created on the render
// thread.
package opengl

import (
	"fmt"
	"unsafe"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"

	"github.com/Faultbox/lumen2d/internal/engine/device"
	"github.com/Faultbox/lumen2d/internal/engine/framebuffer"
	"github.com/Faultbox/lumen2d/internal/engine/shader"
	"github.com/Faultbox/lumen2d/internal/logger"
)

// vertexStride is the byte size of device.Vertex: vec2 position + RGBA color.
const vertexStride = 6 * 4

// Target wraps a framebuffer as a device render target.
type Target struct {
	fb *framebuffer.Framebuffer
}

// Size returns the target dimensions.
func (t *Target) Size() (int32, int32) {
	return t.fb.Size()
}

// Framebuffer exposes the underlying framebuffer, for presenting and
// screenshots.
func (t *Target) Framebuffer() *framebuffer.Framebuffer {
	return t.fb
}

// Texture is a GL texture usable as a normal map.
type Texture struct {
	id            uint32
	width, height int32
}

// Size returns the texture dimensions.
func (t *Texture) Size() (int32, int32) {
	return t.width, t.height
}

// NewTextureRGBA uploads RGBA pixel data as a texture.
func NewTextureRGBA(pixels []byte, width, height int32) (*Texture, error) {
	if int(width*height*4) != len(pixels) {
		return nil, fmt.Errorf("texture data size mismatch: expected %d, got %d", width*height*4, len(pixels))
	}
	t := &Texture{width: width, height: height}
	gl.GenTextures(1, &t.id)
	gl.BindTexture(gl.TEXTURE_2D, t.id)
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA8, width, height, 0, gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(pixels))
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.LINEAR)
	gl.BindTexture(gl.TEXTURE_2D, 0)
	return t, nil
}

// lightUniforms caches the light program's uniform locations.
type lightUniforms struct {
	proj             int32
	lightPos         int32
	rng              int32
	intensity        int32
	depth            int32
	innerAngle       int32
	outerAngle       int32
	lightDir         int32
	useSpotLight     int32
	shadowEnabled    int32
	normalmapEnabled int32
	invTexSize       int32
	shadowMask       int32
	normalMap        int32
}

// Backend is the OpenGL device implementation. One dynamic vertex/index
// buffer pair serves every draw; geometry is streamed per call.
type Backend struct {
	flatProgram  uint32
	flatProj     int32
	lightProgram uint32
	light        lightUniforms

	vao, vbo, ebo uint32

	target *Target

	proj           mgl32.Mat4
	invTexW        float32
	invTexH        float32
	shadowsEnabled bool
	shadowMask     *Target
	normalMap      *Texture
}

// New initializes OpenGL, creates the backend and compiles its shader
// programs. Must be called after a GL context exists.
func New() (*Backend, error) {
	if err := gl.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize OpenGL: %w", err)
	}

	version := gl.GoStr(gl.GetString(gl.VERSION))
	rendererName := gl.GoStr(gl.GetString(gl.RENDERER))
	logger.Info("OpenGL initialized",
		zap.String("version", version),
		zap.String("renderer", rendererName),
	)

	b := &Backend{}

	flat, err := shader.CompileProgram(vertexShaderSource, flatFragmentSource)
	if err != nil {
		return nil, fmt.Errorf("flat shader: %w", err)
	}
	b.flatProgram = flat
	b.flatProj = shader.GetUniform(flat, "uProj")

	lightProg, err := shader.CompileProgram(vertexShaderSource, lightFragmentSource)
	if err != nil {
		return nil, fmt.Errorf("light shader: %w", err)
	}
	b.lightProgram = lightProg
	b.light = lightUniforms{
		proj:             shader.GetUniform(lightProg, "uProj"),
		lightPos:         shader.GetUniform(lightProg, "uLightPos"),
		rng:              shader.GetUniform(lightProg, "uRange"),
		intensity:        shader.GetUniform(lightProg, "uIntensity"),
		depth:            shader.GetUniform(lightProg, "uDepth"),
		innerAngle:       shader.GetUniform(lightProg, "uInnerAngle"),
		outerAngle:       shader.GetUniform(lightProg, "uOuterAngle"),
		lightDir:         shader.GetUniform(lightProg, "uLightDir"),
		useSpotLight:     shader.GetUniform(lightProg, "uUseSpotLight"),
		shadowEnabled:    shader.GetUniform(lightProg, "uShadowEnabled"),
		normalmapEnabled: shader.GetUniform(lightProg, "uNormalmapEnabled"),
		invTexSize:       shader.GetUniform(lightProg, "uInvTexSize"),
		shadowMask:       shader.GetUniform(lightProg, "uShadowMask"),
		normalMap:        shader.GetUniform(lightProg, "uNormalMap"),
	}

	gl.GenVertexArrays(1, &b.vao)
	gl.BindVertexArray(b.vao)

	gl.GenBuffers(1, &b.vbo)
	gl.BindBuffer(gl.ARRAY_BUFFER, b.vbo)
	gl.GenBuffers(1, &b.ebo)
	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, b.ebo)

	// Position attribute (location 0)
	gl.VertexAttribPointerWithOffset(0, 2, gl.FLOAT, false, vertexStride, 0)
	gl.EnableVertexAttribArray(0)

	// Color attribute (location 1)
	gl.VertexAttribPointerWithOffset(1, 4, gl.FLOAT, false, vertexStride, 2*4)
	gl.EnableVertexAttribArray(1)

	gl.BindVertexArray(0)

	return b, nil
}

// CreateTarget allocates an offscreen render target. Float storage keeps
// additive accumulation unclamped.
func (b *Backend) CreateTarget(width, height int32) (device.Target, error) {
	fb, err := framebuffer.New(width, height, framebuffer.FormatRGBA16F)
	if err != nil {
		return nil, err
	}
	return &Target{fb: fb}, nil
}

// SetTarget binds a render target.
func (b *Backend) SetTarget(t device.Target) {
	b.target, _ = t.(*Target)
	if b.target != nil {
		b.target.fb.Bind()
	}
}

// Clear fills the bound target.
func (b *Backend) Clear(c device.Color) {
	gl.ClearColor(c.R, c.G, c.B, c.A)
	gl.Clear(gl.COLOR_BUFFER_BIT)
}

// SetProjection sets the world-to-clip projection.
func (b *Backend) SetProjection(proj mgl32.Mat4) {
	b.proj = proj
}

// SetInverseTextureSize informs the light shader of the output texel size.
func (b *Backend) SetInverseTextureSize(w, h float32) {
	b.invTexW, b.invTexH = w, h
}

// SetShadowsEnabled toggles shadow-mask sampling in lit draws.
func (b *Backend) SetShadowsEnabled(enabled bool) {
	b.shadowsEnabled = enabled
}

// SetNormalMap binds a normal map, or disables normal shading when nil.
func (b *Backend) SetNormalMap(tex device.Texture) {
	if tex == nil {
		b.normalMap = nil
		return
	}
	b.normalMap, _ = tex.(*Texture)
}

// SetShadowMask binds the visibility mask sampled by lit draws.
func (b *Backend) SetShadowMask(t device.Target) {
	b.shadowMask, _ = t.(*Target)
}

// DrawTriangles draws an indexed triangle list with flat vertex colors.
func (b *Backend) DrawTriangles(blend device.BlendMode, verts []device.Vertex, indices []uint32) {
	if len(indices) == 0 || len(verts) == 0 {
		return
	}
	gl.UseProgram(b.flatProgram)
	gl.UniformMatrix4fv(b.flatProj, 1, false, &b.proj[0])
	b.drawIndexed(blend, verts, indices)
}

// DrawLight draws an indexed triangle list shaded by the light parameters.
func (b *Backend) DrawLight(params device.LightParams, blend device.BlendMode, verts []device.Vertex, indices []uint32) {
	if len(indices) == 0 || len(verts) == 0 {
		return
	}
	gl.UseProgram(b.lightProgram)
	u := &b.light
	gl.UniformMatrix4fv(u.proj, 1, false, &b.proj[0])
	gl.Uniform2f(u.lightPos, params.Position[0], params.Position[1])
	gl.Uniform1f(u.rng, params.Range)
	gl.Uniform1f(u.intensity, params.Intensity)
	gl.Uniform1f(u.depth, params.Depth)
	gl.Uniform1f(u.innerAngle, params.InnerAngle)
	gl.Uniform1f(u.outerAngle, params.OuterAngle)
	gl.Uniform2f(u.lightDir, params.Direction[0], params.Direction[1])
	gl.Uniform1i(u.useSpotLight, boolInt(params.Spot))
	gl.Uniform1i(u.shadowEnabled, boolInt(b.shadowsEnabled))
	gl.Uniform1i(u.normalmapEnabled, boolInt(b.normalMap != nil))
	gl.Uniform2f(u.invTexSize, b.invTexW, b.invTexH)

	gl.ActiveTexture(gl.TEXTURE0)
	if b.shadowMask != nil {
		gl.BindTexture(gl.TEXTURE_2D, b.shadowMask.fb.ColorTexture())
	}
	gl.Uniform1i(u.shadowMask, 0)

	gl.ActiveTexture(gl.TEXTURE1)
	if b.normalMap != nil {
		gl.BindTexture(gl.TEXTURE_2D, b.normalMap.id)
	}
	gl.Uniform1i(u.normalMap, 1)

	b.drawIndexed(blend, verts, indices)
}

func (b *Backend) drawIndexed(blend device.BlendMode, verts []device.Vertex, indices []uint32) {
	applyBlend(blend)

	gl.BindVertexArray(b.vao)
	gl.BindBuffer(gl.ARRAY_BUFFER, b.vbo)
	gl.BufferData(gl.ARRAY_BUFFER, len(verts)*vertexStride, unsafe.Pointer(&verts[0]), gl.STREAM_DRAW)
	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, b.ebo)
	gl.BufferData(gl.ELEMENT_ARRAY_BUFFER, len(indices)*4, unsafe.Pointer(&indices[0]), gl.STREAM_DRAW)

	gl.DrawElements(gl.TRIANGLES, int32(len(indices)), gl.UNSIGNED_INT, nil)
	gl.BindVertexArray(0)
}

func applyBlend(blend device.BlendMode) {
	switch blend {
	case device.BlendOpaque:
		gl.Disable(gl.BLEND)
	case device.BlendAlpha:
		gl.Enable(gl.BLEND)
		gl.BlendFuncSeparate(gl.SRC_ALPHA, gl.ONE_MINUS_SRC_ALPHA, gl.ONE, gl.ONE_MINUS_SRC_ALPHA)
	case device.BlendAdditive:
		gl.Enable(gl.BLEND)
		gl.BlendFunc(gl.ONE, gl.ONE)
	}
}

func boolInt(v bool) int32 {
	if v {
		return 1
	}
	return 0
}

// Present blits a target to the default framebuffer, scaled to the window.
func (b *Backend) Present(t device.Target, windowWidth, windowHeight int32) {
	glt, ok := t.(*Target)
	if !ok {
		return
	}
	w, h := glt.fb.Size()
	gl.BindFramebuffer(gl.READ_FRAMEBUFFER, glt.fb.FBO())
	gl.BindFramebuffer(gl.DRAW_FRAMEBUFFER, 0)
	gl.BlitFramebuffer(0, 0, w, h, 0, 0, windowWidth, windowHeight, gl.COLOR_BUFFER_BIT, gl.LINEAR)
	gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
}

// Destroy releases GL resources owned by the backend.
func (b *Backend) Destroy() {
	if b.vao != 0 {
		gl.DeleteVertexArrays(1, &b.vao)
		b.vao = 0
	}
	if b.vbo != 0 {
		gl.DeleteBuffers(1, &b.vbo)
		b.vbo = 0
	}
	if b.ebo != 0 {
		gl.DeleteBuffers(1, &b.ebo)
		b.ebo = 0
	}
	if b.flatProgram != 0 {
		gl.DeleteProgram(b.flatProgram)
		b.flatProgram = 0
	}
	if b.lightProgram != 0 {
		gl.DeleteProgram(b.lightProgram)
		b.lightProgram = 0
	}
}
