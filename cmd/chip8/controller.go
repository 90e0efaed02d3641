package main

import (
	"time"

	"github.com/justinawrey/chip8/chip8"
)

// State identifies the run state of the machine controller.
type State int

// Controller states. Halted is terminal and reached only on a fatal
// machine fault or an external close request.
const (
	Running State = iota
	WaitingForKey
	Halted
)

// MachineController paces execution of a machine: each tick it runs the
// configured instruction budget, then decrements the timers exactly once.
type MachineController struct {
	machine       *chip8.Machine
	cyclesPerTick int
	state         State
	start         time.Time
	cycleCount    uint64
}

// NewMachineController creates a new controller for the given machine.
func NewMachineController(machine *chip8.Machine, cyclesPerTick int) *MachineController {
	return &MachineController{
		machine:       machine,
		cyclesPerTick: cyclesPerTick,
		state:         Running,
		start:         time.Now(),
	}
}

// State returns the current run state.
func (c *MachineController) State() State {
	return c.state
}

// Halt transitions the controller to the terminal Halted state.
func (c *MachineController) Halt() {
	c.state = Halted
}

// Reset restarts the loaded program from the beginning.
func (c *MachineController) Reset() {
	c.machine.Reset()
	c.state = Running
	c.start = time.Now()
	c.cycleCount = 0
}

// Frequency returns the effective clock frequency in herz.
func (c *MachineController) Frequency() float64 {
	if c.state == Halted {
		return 0
	}
	return float64(c.cycleCount) / time.Since(c.start).Seconds()
}

// Tick runs one driver tick. A machine blocked on wait-for-key stops
// burning the remaining cycle budget, but the timers still decrement,
// so delay and sound keep progressing while the program waits.
func (c *MachineController) Tick() error {
	if c.state == Halted {
		return nil
	}

	for i := 0; i < c.cyclesPerTick; i++ {
		c.cycleCount++

		if err := c.machine.Step(); err != nil {
			c.state = Halted
			return err
		}

		if c.machine.Waiting() {
			break
		}
	}

	if c.machine.Waiting() {
		c.state = WaitingForKey
	} else {
		c.state = Running
	}

	c.machine.TickTimers()
	return nil
}
