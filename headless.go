package main

import (
	"fmt"
	"image/png"
	"os"
	"time"

	"github.com/golang/glog"

	"github.com/jyane/nescore/nes"
)

// resultAddress is where the blargg test ROMs leave their status, 0 means passed.
const resultAddress = 0x6000

func runHeadless(console *nes.Console) error {
	start := time.Now()
	if *frames > 0 {
		for i := 0; i < *frames; i++ {
			if _, err := console.RunFrame(); err != nil {
				return err
			}
		}
	} else if err := console.RunUntilStuck(*maxSteps); err != nil {
		return err
	}
	elapsed := time.Since(start)
	glog.Infof("Ran %d frames in %v (%.1f fps), %s", console.Frames(), elapsed,
		float64(console.Frames())/elapsed.Seconds(), console.CPUState())
	fmt.Printf("$%04X = 0x%02x\n", resultAddress, console.Peek(resultAddress))
	if *screenshot != "" {
		return writePNG(*screenshot, console)
	}
	return nil
}

func writePNG(name string, console *nes.Console) error {
	f, err := os.Create(name)
	if err != nil {
		return err
	}
	if err := png.Encode(f, console.Frame()); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
