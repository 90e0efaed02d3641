// Package display implements the host display for the CHIP-8 framebuffer.
package display

import (
	"github.com/go-gl/gl/v4.2-core/gl"
	"github.com/pkg/errors"

	"github.com/justinawrey/chip8/chip8"
	"github.com/justinawrey/chip8/devices"
)

// Device renders the machine's framebuffer as a single fullscreen quad.
// The lit/unlit grid is uploaded as a one-channel texture; all scaling
// to the window resolution happens on the GPU.
type Device struct {
	frame       [chip8.DisplayWidth * chip8.DisplayHeight]byte
	shader      uint32
	vao         uint32
	vbo         uint32
	frameTex    uint32
	frameDirty  bool
	initialized bool
}

var _ devices.Device = &Device{}

// New creates a new device.
func New() *Device {
	return &Device{}
}

// ID returns the device identifier.
func (d *Device) ID() devices.ID {
	return devices.NewID(0x00c8, 0x0001)
}

// Startup initializes device resources.
// It requires a current GL context.
func (d *Device) Startup() error {
	var err error

	d.shader, err = compileProgram(vertex, fragment)
	if err != nil {
		return errors.Wrapf(err, "failed to compile shaders")
	}

	gl.UseProgram(d.shader)

	gl.GenVertexArrays(1, &d.vao)
	gl.BindVertexArray(d.vao)

	gl.GenBuffers(1, &d.vbo)
	gl.BindBuffer(gl.ARRAY_BUFFER, d.vbo)
	gl.BufferData(gl.ARRAY_BUFFER, len(quadVertices)*4, gl.Ptr(quadVertices), gl.STATIC_DRAW)

	vertAttrib := uint32(gl.GetAttribLocation(d.shader, glStr("vertPos")))
	texCoordAttrib := uint32(gl.GetAttribLocation(d.shader, glStr("vertTexCoord")))

	gl.EnableVertexAttribArray(vertAttrib)
	gl.VertexAttribPointer(vertAttrib, 3, gl.FLOAT, false, 5*4, gl.PtrOffset(0))

	gl.EnableVertexAttribArray(texCoordAttrib)
	gl.VertexAttribPointer(texCoordAttrib, 2, gl.FLOAT, false, 5*4, gl.PtrOffset(3*4))

	d.frameTex = makeTexture()
	d.frameDirty = true
	d.initialized = true
	return nil
}

// Shutdown clears up device resources.
func (d *Device) Shutdown() error {
	d.initialized = false
	gl.DeleteTextures(1, &d.frameTex)
	gl.DeleteBuffers(1, &d.vbo)
	gl.DeleteVertexArrays(1, &d.vao)
	gl.DeleteProgram(d.shader)
	return nil
}

// Refresh copies the framebuffer's lit/unlit grid into the staging
// buffer. The texture is re-uploaded on the next Draw only if a pixel
// actually changed.
func (d *Device) Refresh(fb *chip8.Framebuffer) {
	for y := 0; y < chip8.DisplayHeight; y++ {
		for x := 0; x < chip8.DisplayWidth; x++ {
			var p byte
			if fb.Lit(x, y) {
				p = 0xff
			}

			i := y*chip8.DisplayWidth + x
			if d.frame[i] != p {
				d.frame[i] = p
				d.frameDirty = true
			}
		}
	}
}

// Draw renders the display contents.
func (d *Device) Draw() {
	if !d.initialized {
		return
	}

	if d.frameDirty {
		uploadTexture(d.frameTex, gl.RED, chip8.DisplayWidth, chip8.DisplayHeight, gl.RED, gl.UNSIGNED_BYTE, d.frame[:])
		d.frameDirty = false
	}

	gl.UseProgram(d.shader)
	gl.BindVertexArray(d.vao)

	gl.ActiveTexture(gl.TEXTURE0)
	gl.BindTexture(gl.TEXTURE_2D, d.frameTex)

	gl.DrawArrays(gl.TRIANGLES, 0, 6)
}

var quadVertices = []float32{
	//  X, Y, Z, U, V
	-1.0, -1.0, 0.0, 0.0, 1.0,
	1.0, -1.0, 0.0, 1.0, 1.0,
	-1.0, 1.0, 0.0, 0.0, 0.0,
	1.0, -1.0, 0.0, 1.0, 1.0,
	1.0, 1.0, 0.0, 1.0, 0.0,
	-1.0, 1.0, 0.0, 0.0, 0.0,
}
