package integration

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/jyane/nescore/nes"
)

// TestROMs runs every test ROM in testdata/ until it halts and checks the status byte at $6000.
// The ROMs are not distributed with the repository, drop blargg's instr_test-v5 singles there to run them.
func TestROMs(t *testing.T) {
	paths, err := filepath.Glob("../testdata/*.nes")
	if err != nil {
		t.Fatal(err)
	}
	if len(paths) == 0 {
		t.Skip("no test ROMs in testdata/")
	}
	for _, path := range paths {
		path := path
		t.Run(filepath.Base(path), func(t *testing.T) {
			rom, err := os.ReadFile(path)
			if err != nil {
				t.Fatal(err)
			}
			console, err := nes.NewConsole(rom)
			if err != nil {
				t.Skipf("can't load %s: %v", path, err)
			}
			if err := console.RunUntilStuck(50_000_000); err != nil {
				t.Fatalf("%s: %v", path, err)
			}
			if got := console.Peek(0x6000); got != 0 {
				t.Errorf("%s: $6000 = 0x%02x, want 0x00", path, got)
			}
		})
	}
}
