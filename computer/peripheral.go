package computer

import (
	"errors"
	"slices"
	"sync"
)

var (
	ErrNoPeripheral = errors.New("No such peripheral")
	ErrInvalidSide  = errors.New("Invalid side")
)

// Sides lists the faces of a computer in the order guests expect.
var Sides = []string{"bottom", "top", "back", "front", "right", "left"}

// Peripheral is the peripheral API of a guest. No peripherals are attached.
type Peripheral struct{}

func (p *Peripheral) IsPresent(side string) bool {
	return false
}

func (p *Peripheral) GetNames() []string {
	return []string{}
}

func (p *Peripheral) GetType(side string) (string, error) {
	return "", ErrNoPeripheral
}

func (p *Peripheral) HasType(side, kind string) (bool, error) {
	return false, ErrNoPeripheral
}

func (p *Peripheral) GetMethods(side string) ([]string, error) {
	return nil, ErrNoPeripheral
}

func (p *Peripheral) Call(side, method string, args ...any) ([]any, error) {
	return nil, ErrNoPeripheral
}

// Redstone is the redstone API of a guest. Outputs are remembered, inputs
// always read as off because nothing is connected.
type Redstone struct {
	mu      sync.Mutex
	outputs map[string]int
	bundled map[string]int
}

func NewRedstone() *Redstone {
	return &Redstone{
		outputs: make(map[string]int),
		bundled: make(map[string]int),
	}
}

func (r *Redstone) GetSides() []string {
	return slices.Clone(Sides)
}

func checkSide(side string) error {
	if !slices.Contains(Sides, side) {
		return ErrInvalidSide
	}
	return nil
}

func (r *Redstone) SetOutput(side string, on bool) error {
	level := 0
	if on {
		level = 15
	}
	return r.SetAnalogOutput(side, level)
}

func (r *Redstone) GetOutput(side string) (bool, error) {
	level, err := r.GetAnalogOutput(side)
	return level > 0, err
}

func (r *Redstone) GetInput(side string) (bool, error) {
	return false, checkSide(side)
}

func (r *Redstone) SetAnalogOutput(side string, level int) error {
	if err := checkSide(side); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.outputs[side] = min(max(level, 0), 15)
	return nil
}

func (r *Redstone) GetAnalogOutput(side string) (int, error) {
	if err := checkSide(side); err != nil {
		return 0, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	return r.outputs[side], nil
}

func (r *Redstone) GetAnalogInput(side string) (int, error) {
	return 0, checkSide(side)
}

func (r *Redstone) SetBundledOutput(side string, colors int) error {
	if err := checkSide(side); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.bundled[side] = colors & 0xFFFF
	return nil
}

func (r *Redstone) GetBundledOutput(side string) (int, error) {
	if err := checkSide(side); err != nil {
		return 0, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	return r.bundled[side], nil
}

func (r *Redstone) GetBundledInput(side string) (int, error) {
	return 0, checkSide(side)
}

// TestBundledInput reports whether every color in mask is on; nothing ever is.
func (r *Redstone) TestBundledInput(side string, mask int) (bool, error) {
	if err := checkSide(side); err != nil {
		return false, err
	}
	return mask == 0, nil
}
