package nes

// Reference:
//   http://hp.vector.co.jp/authors/VA042397/nes/joypad.html (In Japanese)
//   https://www.nesdev.org/wiki/Standard_controller
//   https://www.nesdev.org/wiki/Controller_reading_code

type button int

// Controller report order, the first read returns A.
const (
	ButtonA button = iota
	ButtonB
	ButtonSelect
	ButtonStart
	ButtonUp
	ButtonDown
	ButtonLeft
	ButtonRight
)

// Controller is a standard joypad, a parallel-in serial-out shift register.
type Controller struct {
	buttons [8]bool
	index   byte
	strobe  bool
}

func NewController() *Controller {
	return &Controller{}
}

// Set sets the button state, true means pressed.
func (c *Controller) Set(buttons [8]bool) {
	c.buttons = buttons
}

// read shifts one button out.
// An official controller reports 1 once all 8 buttons were read.
func (c *Controller) read() byte {
	if c.strobe {
		c.index = 0
	}
	if c.index >= 8 {
		return 1
	}
	var ret byte
	if c.buttons[c.index] {
		ret = 1
	}
	if !c.strobe {
		c.index++
	}
	return ret
}

// write writes strobe.
// - strobe bit on - controller reports only status of the button A on every read
// - strobe bit off - controller cycles through all buttons
func (c *Controller) write(data byte) {
	c.strobe = data&1 == 1
	if c.strobe {
		c.index = 0
	}
}

// InputBus connects the two controller ports to $4016/$4017.
type InputBus struct {
	ports [2]*Controller
}

// NewInputBus creates an input bus, a nil controller is an empty port.
func NewInputBus(port1, port2 *Controller) *InputBus {
	return &InputBus{ports: [2]*Controller{port1, port2}}
}

// write strobes both ports, they share the $4016 output line.
func (b *InputBus) write(data byte) {
	for _, c := range b.ports {
		if c != nil {
			c.write(data)
		}
	}
}

// read reads port 0 ($4016) or 1 ($4017).
func (b *InputBus) read(port int) byte {
	c := b.ports[port&1]
	if c == nil {
		return 0
	}
	return c.read()
}
