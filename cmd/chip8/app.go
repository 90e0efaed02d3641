package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-gl/gl/v4.2-core/gl"
	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/pkg/errors"
	"github.com/retroenv/retrogolib/log"

	"github.com/justinawrey/chip8/arch"
	"github.com/justinawrey/chip8/chip8"
	"github.com/justinawrey/chip8/devices"
	"github.com/justinawrey/chip8/devices/display"
	"github.com/justinawrey/chip8/devices/keypad"
)

// TickRate paces the driver loop: execution, timers and rendering all
// advance 60 times per second.
const TickRate = time.Second / 60

// App defines application context.
type App struct {
	config       *Config            // Application configuration.
	logger       *log.Logger        // Structured logger.
	window       *glfw.Window       // OpenGL/GLFW context.
	machine      *chip8.Machine     // The virtual machine.
	controller   *MachineController // Run state and tick pacing.
	peripherals  devices.Map        // Connected host peripherals.
	display      *display.Device    // Framebuffer renderer.
	keypad       *keypad.Device     // Hex pad input.
	printTrace   bool               // Print instruction trace data?
	paused       bool               // Is execution paused by the user?
	lastTick     time.Time          // Last driver tick.
	titleUpdated time.Time          // Value used to periodically update window title.
}

// NewApp creates a new application instance using the given configuration.
func NewApp(config *Config, logger *log.Logger) *App {
	var a App
	a.config = config
	a.logger = logger
	a.printTrace = config.Debug
	a.display = display.New()
	a.keypad = keypad.New()
	a.peripherals.Connect(a.display)
	a.peripherals.Connect(a.keypad)
	a.machine = chip8.New(a.keypad, a.trace)
	a.controller = NewMachineController(a.machine, config.CyclesPerTick)
	return &a
}

// Run runs the application and does not return until the window closes
// or an error occurred during initialization.
func (a *App) Run() error {
	if err := a.loadRom(); err != nil {
		return err
	}

	if err := a.initGL(); err != nil {
		return err
	}

	defer a.dispose()

	if err := a.peripherals.Startup(a.logger); err != nil {
		return err
	}

	a.logger.Info(Version())
	printHelp(a.logger)

	a.lastTick = time.Now()

	for !a.window.ShouldClose() {
		a.mainLoop()
	}

	return nil
}

// mainLoop performs all main loop operations.
func (a *App) mainLoop() {
	if time.Since(a.lastTick) >= TickRate {
		a.lastTick = time.Now()

		if !a.paused {
			if err := a.controller.Tick(); err != nil {
				a.logger.Error("machine halted", log.Err(err))
			}
		}

		a.display.Refresh(a.machine.Framebuffer())
		gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)
		a.display.Draw()
		a.window.SwapBuffers()
	}

	// Periodically update the window title to show the effective clock frequency.
	if time.Since(a.titleUpdated) >= time.Second*2 {
		a.titleUpdated = time.Now()
		freq := prettyFrequency(a.controller.Frequency())
		a.window.SetTitle(fmt.Sprintf("%s %s - %s", AppName, AppVersion, freq))
	}

	glfw.PollEvents()
}

// dispose ensures openGL/GLFW and other resources are cleaned up.
func (a *App) dispose() {
	a.controller.Halt()

	if err := a.peripherals.Shutdown(a.logger); err != nil {
		a.logger.Error("peripheral shutdown failed", log.Err(err))
	}

	if a.window != nil {
		a.window.Destroy()
		a.window = nil
	}

	glfw.Terminate()
}

func (a *App) keyCallback(_ *glfw.Window, key glfw.Key, scancode int, action glfw.Action, mods glfw.ModifierKey) {
	// The pad sees every key event; shortcuts below use function keys
	// only, so the two sets cannot collide.
	a.keypad.HandleKey(key, action)

	if action != glfw.Press {
		return
	}

	var err error

	switch key {
	case glfw.KeyEscape:
		a.window.SetShouldClose(true)
	case glfw.KeyF1:
		printHelp(a.logger)
	case glfw.KeyF2:
		a.printTrace = !a.printTrace
	case glfw.KeyF5:
		err = a.loadRom()
	case glfw.KeyF6:
		a.paused = !a.paused
	case glfw.KeyF7:
		if a.paused {
			err = a.controller.Tick()
		}
	}

	if err != nil {
		a.logger.Error("key action failed", log.Err(err))
	}
}

// initGL initializes GLFW and openGL.
func (a *App) initGL() error {
	err := glfw.Init()
	if err != nil {
		return errors.Wrapf(err, "glfw.Init failed")
	}

	glfw.WindowHint(glfw.Resizable, glfw.False)
	glfw.WindowHint(glfw.Visible, glfw.True)
	glfw.WindowHint(glfw.Focused, glfw.True)
	glfw.WindowHint(glfw.ContextVersionMajor, 4)
	glfw.WindowHint(glfw.ContextVersionMinor, 2)
	glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCoreProfile)
	glfw.WindowHint(glfw.OpenGLForwardCompatible, glfw.True)

	var monitor *glfw.Monitor

	width := chip8.DisplayWidth * a.config.ScaleFactor
	height := chip8.DisplayHeight * a.config.ScaleFactor

	if a.config.Fullscreen {
		monitor = glfw.GetPrimaryMonitor()
		mode := monitor.GetVideoMode()

		width = mode.Width
		height = mode.Height

		glfw.WindowHint(glfw.Decorated, glfw.False)
		glfw.WindowHint(glfw.Maximized, glfw.True)
	} else {
		glfw.WindowHint(glfw.Decorated, glfw.True)
		glfw.WindowHint(glfw.Maximized, glfw.False)
	}

	a.window, err = glfw.CreateWindow(width, height, "", monitor, nil)
	if err != nil {
		a.dispose()
		return errors.Wrapf(err, "glfw.CreateWindow failed")
	}

	a.window.MakeContextCurrent()
	a.window.SetKeyCallback(a.keyCallback)

	glfw.SwapInterval(0)

	err = gl.Init()
	if err != nil {
		a.dispose()
		return errors.Wrapf(err, "gl.Init failed")
	}

	gl.ClearColor(0, 0, 0, 1.0)
	return nil
}

// loadRom loads the configured ROM image from disk and restarts the machine.
func (a *App) loadRom() error {
	a.logger.Info("loading rom", log.String("path", a.config.Rom))

	rom, err := os.ReadFile(a.config.Rom)
	if err != nil {
		return errors.Wrapf(err, "failed to load rom %s", a.config.Rom)
	}

	if err := a.machine.Load(rom); err != nil {
		return errors.Wrapf(err, "failed to load rom %s", a.config.Rom)
	}

	a.controller.Reset()
	return nil
}

// trace prints instruction trace data. This can be toggled
// on and off through a.printTrace.
func (a *App) trace(pc uint16, i arch.Instruction) {
	if !a.printTrace {
		return
	}

	fmt.Printf("%03x %04x  %s\n", pc, i.Word, i)
}

// printHelp writes a short overview of supported shortcut keys.
func printHelp(logger *log.Logger) {
	var sb strings.Builder
	sb.WriteString("shortcut keys:\n")
	sb.WriteString(" ESC      Exit the emulator.\n")
	sb.WriteString(" F1       Display this help.\n")
	sb.WriteString(" F2       Enable/Disable instruction trace output.\n")
	sb.WriteString(" F5       Reload the rom from disk and reset the machine.\n")
	sb.WriteString(" F6       Pause/Resume execution.\n")
	sb.WriteString(" F7       Run a single tick while paused.")
	logger.Info(sb.String())
}

// prettyFrequency returns a human-readable version of the given clock frequency in herz.
func prettyFrequency(v float64) string {
	switch {
	case v >= 1e6:
		return fmt.Sprintf("%.2f MHz", v/1e6)
	case v >= 1e3:
		return fmt.Sprintf("%.2f KHz", v/1e3)
	default:
		return fmt.Sprintf("%.2f Hz", v)
	}
}
