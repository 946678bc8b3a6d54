package main

import (
	"flag"
	"os"
	"runtime"
	"runtime/pprof"

	"github.com/golang/glog"
	"github.com/sqweek/dialog"

	"github.com/jyane/nescore/nes"
	"github.com/jyane/nescore/ui"
)

var (
	path       = flag.String("path", "", "path to NES ROM file, a file dialog opens when empty")
	width      = flag.Int("width", 256*4, "window width")
	height     = flag.Int("height", 240*4, "window height")
	cpuprofile = flag.String("cpuprofile", "", "write cpu profile to file")
	debug      = flag.Bool("debug", false, "run as debug mode")
	headless   = flag.Bool("headless", false, "run without a window")
	frames     = flag.Int("frames", 0, "headless: number of frames to run, 0 runs until the program halts")
	maxSteps   = flag.Int("max-steps", 50_000_000, "headless: instructions to run before giving up on a halt")
	screenshot = flag.String("screenshot", "", "headless: write the last frame as PNG")
	stats      = flag.Bool("statsview", false, "serve runtime statistics at "+statsviewAddress+statsviewPath)
)

func init() {
	// glfw must run on the main thread.
	runtime.LockOSThread()
}

// romPath returns -path or asks for a file.
func romPath() (string, error) {
	if *path != "" {
		return *path, nil
	}
	return dialog.File().Filter("iNES ROM", "nes").Title("Open a NES ROM").Load()
}

func main() {
	flag.Parse()
	defer glog.Flush()
	if *cpuprofile != "" {
		f, err := os.Create(*cpuprofile)
		if err != nil {
			glog.Fatal("Failed to create CPU profile: ", err)
		}
		defer f.Close()
		if err := pprof.StartCPUProfile(f); err != nil {
			glog.Fatal("Failed to start CPU profile: ", err)
		}
		defer pprof.StopCPUProfile()
	}
	if *stats {
		startStatsview()
	}
	p, err := romPath()
	if err != nil {
		glog.Fatalln("No ROM selected: ", err)
	}
	buf, err := os.ReadFile(p)
	if err != nil {
		glog.Fatalln("Failed to read: " + p)
	}
	console, err := nes.NewConsole(buf)
	if err != nil {
		glog.Fatalln("Failed to initiate Console: ", err)
	}
	switch {
	case *debug:
		if err := nes.NewDebugConsole(console, os.Stdout).Run(os.Stdin); err != nil {
			glog.Fatalln(err)
		}
	case *headless:
		if err := runHeadless(console); err != nil {
			glog.Fatalln(err)
		}
	default:
		ui.Start(console, "nescore", *width, *height)
	}
}
