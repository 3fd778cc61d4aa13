package main

import (
	"fmt"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/mathgl/mgl32"

	"voxcraft/internal/meshing"
	"voxcraft/internal/world"
)

// Renderer owns the GPU side of the seam: the engine hands it
// vertex/index buffers per chunk and forgets about them.
type Renderer struct {
	shader *Shader
	atlas  uint32
	chunks map[world.ChunkCoord]*chunkMesh
}

type chunkMesh struct {
	vao, vbo, ebo uint32
	opaqueCount   int32
	alphaCount    int32
	model         mgl32.Mat4
}

// NewRenderer compiles the chunk shader and loads the atlas.
func NewRenderer(atlasPath string) (*Renderer, error) {
	shader, err := NewChunkShader()
	if err != nil {
		return nil, fmt.Errorf("chunk shader: %w", err)
	}
	atlas, err := loadAtlas(atlasPath)
	if err != nil {
		return nil, fmt.Errorf("atlas: %w", err)
	}
	return &Renderer{
		shader: shader,
		atlas:  atlas,
		chunks: make(map[world.ChunkCoord]*chunkMesh),
	}, nil
}

// Upload installs (or replaces) a chunk's mesh buffers.
func (r *Renderer) Upload(coord world.ChunkCoord, mesh *meshing.Mesh) {
	r.Remove(coord)
	if mesh.IsEmpty() {
		return
	}

	cm := &chunkMesh{
		opaqueCount: int32(mesh.OpaqueIndexCount),
		alphaCount:  int32(len(mesh.Indices)) - int32(mesh.OpaqueIndexCount),
	}
	origin := coord.Origin()
	cm.model = mgl32.Translate3D(float32(origin.X), float32(origin.Y), float32(origin.Z))

	gl.GenVertexArrays(1, &cm.vao)
	gl.BindVertexArray(cm.vao)

	gl.GenBuffers(1, &cm.vbo)
	gl.BindBuffer(gl.ARRAY_BUFFER, cm.vbo)
	gl.BufferData(gl.ARRAY_BUFFER, len(mesh.Vertices)*4, gl.Ptr(mesh.Vertices), gl.STATIC_DRAW)

	gl.GenBuffers(1, &cm.ebo)
	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, cm.ebo)
	gl.BufferData(gl.ELEMENT_ARRAY_BUFFER, len(mesh.Indices)*4, gl.Ptr(mesh.Indices), gl.STATIC_DRAW)

	stride := int32(meshing.VertexStride * 4)
	gl.EnableVertexAttribArray(0)
	gl.VertexAttribPointerWithOffset(0, 3, gl.FLOAT, false, stride, 0)
	gl.EnableVertexAttribArray(1)
	gl.VertexAttribPointerWithOffset(1, 3, gl.FLOAT, false, stride, 3*4)
	gl.EnableVertexAttribArray(2)
	gl.VertexAttribPointerWithOffset(2, 2, gl.FLOAT, false, stride, 6*4)
	gl.EnableVertexAttribArray(3)
	gl.VertexAttribPointerWithOffset(3, 2, gl.FLOAT, false, stride, 8*4)
	gl.EnableVertexAttribArray(4)
	gl.VertexAttribPointerWithOffset(4, 1, gl.FLOAT, false, stride, 10*4)

	gl.BindVertexArray(0)
	r.chunks[coord] = cm
}

// Remove frees a chunk's buffers.
func (r *Renderer) Remove(coord world.ChunkCoord) {
	cm, ok := r.chunks[coord]
	if !ok {
		return
	}
	gl.DeleteBuffers(1, &cm.vbo)
	gl.DeleteBuffers(1, &cm.ebo)
	gl.DeleteVertexArrays(1, &cm.vao)
	delete(r.chunks, coord)
}

// Draw renders the opaque bucket of every chunk, then the alpha bucket
// with blending.
func (r *Renderer) Draw(proj, view mgl32.Mat4) {
	r.shader.Use()
	r.shader.SetMatrix4("uProj", &proj[0])
	r.shader.SetMatrix4("uView", &view[0])
	r.shader.SetInt("uAtlas", 0)
	gl.ActiveTexture(gl.TEXTURE0)
	gl.BindTexture(gl.TEXTURE_2D, r.atlas)

	gl.Enable(gl.DEPTH_TEST)
	gl.Enable(gl.CULL_FACE)
	gl.Disable(gl.BLEND)
	for _, cm := range r.chunks {
		if cm.opaqueCount == 0 {
			continue
		}
		r.shader.SetMatrix4("uModel", &cm.model[0])
		gl.BindVertexArray(cm.vao)
		gl.DrawElementsWithOffset(gl.TRIANGLES, cm.opaqueCount, gl.UNSIGNED_INT, 0)
	}

	gl.Enable(gl.BLEND)
	gl.BlendFunc(gl.SRC_ALPHA, gl.ONE_MINUS_SRC_ALPHA)
	gl.Disable(gl.CULL_FACE)
	for _, cm := range r.chunks {
		if cm.alphaCount == 0 {
			continue
		}
		r.shader.SetMatrix4("uModel", &cm.model[0])
		gl.BindVertexArray(cm.vao)
		gl.DrawElementsWithOffset(gl.TRIANGLES, cm.alphaCount, gl.UNSIGNED_INT, uintptr(cm.opaqueCount)*4)
	}

	gl.BindVertexArray(0)
	gl.Disable(gl.BLEND)
	gl.Enable(gl.CULL_FACE)
}
