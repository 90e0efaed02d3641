// Package devices defines the peripheral plumbing shared by the
// concrete CHIP-8 host devices.
package devices

import (
	"github.com/pkg/errors"
	"github.com/retroenv/retrogolib/log"
)

// Device represents a host peripheral such as the display or the keypad.
type Device interface {
	// ID yields the manufacturer and serial number for the device.
	ID() ID

	// Startup initializes internal resources. It is called once the
	// host window and GL context exist.
	Startup() error

	// Shutdown cleans up internal resources.
	Shutdown() error
}

// Map contains a list of registered peripherals.
type Map []Device

// Connect adds the given device to the device map.
// Returns false if the device type is already present in the set.
func (dm *Map) Connect(dev Device) bool {
	if (*dm).Find(dev.ID()) > -1 {
		return false
	}

	*dm = append(*dm, dev)
	return true
}

// Startup initializes internal resources of all connected devices.
func (dm Map) Startup(logger *log.Logger) error {
	var errorset ErrorSet

	for _, dev := range dm {
		logger.Debug("device startup", log.String("device", dev.ID().String()))
		if err := dev.Startup(); err != nil {
			errorset.Append(errors.Wrapf(err, "%s", dev.ID()))
		}
	}

	if errorset.Len() == 0 {
		return nil
	}

	return errorset
}

// Shutdown cleans up internal resources of all connected devices.
func (dm Map) Shutdown(logger *log.Logger) error {
	var errorset ErrorSet

	for _, dev := range dm {
		logger.Debug("device shutdown", log.String("device", dev.ID().String()))
		if err := dev.Shutdown(); err != nil {
			errorset.Append(errors.Wrapf(err, "%s", dev.ID()))
		}
	}

	if errorset.Len() == 0 {
		return nil
	}

	return errorset
}

// Find returns the index for the device with the given id.
// Returns -1 if it can't be found.
func (dm Map) Find(id ID) int {
	for i, dev := range dm {
		if dev.ID() == id {
			return i
		}
	}
	return -1
}
