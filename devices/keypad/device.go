// Package keypad implements the 16-key hex pad on the host keyboard.
package keypad

import (
	"github.com/go-gl/glfw/v3.3/glfw"

	"github.com/justinawrey/chip8/chip8"
	"github.com/justinawrey/chip8/devices"
)

// EventQueueCapacity is the capacity of the key press event queue.
const EventQueueCapacity = 8

// layout maps host keyboard keys to pad keys, COSMAC VIP style:
//
//	1 2 3 4        1 2 3 C
//	q w e r   ->   4 5 6 D
//	a s d f        7 8 9 E
//	z x c v        A 0 B F
var layout = map[glfw.Key]byte{
	glfw.Key1: 0x1, glfw.Key2: 0x2, glfw.Key3: 0x3, glfw.Key4: 0xc,
	glfw.KeyQ: 0x4, glfw.KeyW: 0x5, glfw.KeyE: 0x6, glfw.KeyR: 0xd,
	glfw.KeyA: 0x7, glfw.KeyS: 0x8, glfw.KeyD: 0x9, glfw.KeyF: 0xe,
	glfw.KeyZ: 0xa, glfw.KeyX: 0x0, glfw.KeyC: 0xb, glfw.KeyV: 0xf,
}

// Device tracks the down/up state of all 16 pad keys and queues press
// events for the machine's wait-for-key instruction.
type Device struct {
	down   [16]bool
	events chan byte
}

var (
	_ devices.Device = &Device{}
	_ chip8.Keypad   = &Device{}
)

// New creates a new device.
func New() *Device {
	return &Device{
		events: make(chan byte, EventQueueCapacity),
	}
}

// ID returns the device identifier.
func (d *Device) ID() devices.ID {
	return devices.NewID(0x00c8, 0x0002)
}

// Startup resets the pad state and discards stale press events.
func (d *Device) Startup() error {
	d.down = [16]bool{}

	for {
		select {
		case <-d.events:
		default:
			return nil
		}
	}
}

// Shutdown clears up device resources.
func (d *Device) Shutdown() error {
	return nil
}

// HandleKey consumes a host key event. It is called from the window's
// key callback; keys outside the pad layout are ignored.
func (d *Device) HandleKey(key glfw.Key, action glfw.Action) {
	pad, ok := layout[key]
	if !ok {
		return
	}

	switch action {
	case glfw.Press:
		d.down[pad] = true
		select {
		case d.events <- pad:
		default: // queue full, drop the press
		}
	case glfw.Release:
		d.down[pad] = false
	}
}

// Down reports whether the given key 0x0-0xF is currently held.
func (d *Device) Down(key byte) bool {
	return d.down[key&0xf]
}

// TakeKey pops the oldest pending key press event, if any.
func (d *Device) TakeKey() (byte, bool) {
	select {
	case k := <-d.events:
		return k, true
	default:
		return 0, false
	}
}
