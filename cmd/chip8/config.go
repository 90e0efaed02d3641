package main

import (
	"flag"
	"fmt"
	"os"
)

// Config defines program configuration.
type Config struct {
	Rom           string // Path to the ROM image to load.
	ScaleFactor   int    // Amount by which each framebuffer pixel is scaled.
	CyclesPerTick int    // Instructions executed per 60 Hz tick.
	Fullscreen    bool   // Run in fullscreen?
	Debug         bool   // Enable debug logging and instruction trace?
}

// parseArgs parses command line arguments as applicable.
//
// If an error occurred, this exits the program with an appropriate message.
// When version information is requested, it is printed to stdout and the program ends cleanly.
func parseArgs() *Config {
	var c Config
	c.ScaleFactor = 10
	c.CyclesPerTick = 10
	c.Fullscreen = false
	c.Debug = false

	flag.Usage = func() {
		fmt.Printf("%s [options] <rom file>\n", os.Args[0])
		flag.PrintDefaults()
	}

	flag.BoolVar(&c.Debug, "debug", c.Debug, "Run in debug mode with instruction trace output.")
	flag.IntVar(&c.ScaleFactor, "scale-factor", c.ScaleFactor, "Pixel scale factor for the display.")
	flag.IntVar(&c.CyclesPerTick, "cycles", c.CyclesPerTick, "Instructions executed per 60 Hz tick.")
	flag.BoolVar(&c.Fullscreen, "fullscreen", c.Fullscreen, "Run the display in fullscreen or windowed mode.")

	version := flag.Bool("version", false, "Display version information.")
	flag.Parse()

	if *version {
		fmt.Println(Version())
		os.Exit(0)
	}

	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(1)
	}

	c.Rom = flag.Arg(0)
	return &c
}
