package ui

import (
	"image"
	"time"

	"github.com/go-gl/gl/v3.3-core/gl"
	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/golang/glog"
)

// Emulator is what the window drives once per frame.
type Emulator interface {
	RunFrame() (*image.RGBA, error)
	SetButtons(port int, buttons [8]bool)
}

const framesPerSecond = 60

func mainLoop(window *glfw.Window, emulator Emulator, s *screen) error {
	ticker := time.NewTicker(time.Second / framesPerSecond)
	defer ticker.Stop()
	for !window.ShouldClose() {
		glfw.PollEvents()
		emulator.SetButtons(0, getKeys(window))
		picture, err := emulator.RunFrame()
		if err != nil {
			return err
		}
		s.draw(picture)
		window.SwapBuffers()
		<-ticker.C
	}
	return nil
}

// Start is the main entrypoint, it returns when the window is closed.
func Start(emulator Emulator, title string, width int, height int) {
	if err := glfw.Init(); err != nil {
		glog.Fatalln(err)
	}
	defer glfw.Terminate()
	glfw.WindowHint(glfw.ContextVersionMajor, 3)
	glfw.WindowHint(glfw.ContextVersionMinor, 3)
	glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCoreProfile)
	glfw.WindowHint(glfw.OpenGLForwardCompatible, glfw.True)
	window, err := glfw.CreateWindow(width, height, title, nil, nil)
	if err != nil {
		glog.Fatalln(err)
	}
	window.MakeContextCurrent()
	glfw.SwapInterval(0)
	if err := gl.Init(); err != nil {
		glog.Fatalln(err)
	}
	s, err := newScreen()
	if err != nil {
		glog.Fatalln(err)
	}
	defer s.delete()
	window.SetFramebufferSizeCallback(func(_ *glfw.Window, w, h int) {
		gl.Viewport(0, 0, int32(w), int32(h))
	})
	if err := mainLoop(window, emulator, s); err != nil {
		glog.Fatalln("Emulation stopped: ", err)
	}
}
