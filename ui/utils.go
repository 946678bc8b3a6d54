package ui

import (
	"github.com/go-gl/glfw/v3.3/glfw"

	"github.com/jyane/nescore/nes"
)

// keymap binds keys to controller 1, WASD for directions, J for A, H for B, G for Start and F for Select.
var keymap = [8]glfw.Key{
	nes.ButtonA:      glfw.KeyJ,
	nes.ButtonB:      glfw.KeyH,
	nes.ButtonSelect: glfw.KeyF,
	nes.ButtonStart:  glfw.KeyG,
	nes.ButtonUp:     glfw.KeyW,
	nes.ButtonDown:   glfw.KeyS,
	nes.ButtonLeft:   glfw.KeyA,
	nes.ButtonRight:  glfw.KeyD,
}

// getKeys gets the state of keyboard.
func getKeys(window *glfw.Window) [8]bool {
	var keys [8]bool
	for b, k := range keymap {
		keys[b] = window.GetKey(k) == glfw.Press
	}
	return keys
}
