package computer

import (
	"math/rand"
)

// HostString identifies the emulator to guest programs.
const HostString = "CraftOS 3.0 (Go)"

// Environment is the set of APIs a boot program is given. A new one is
// built on every boot, so nothing a guest stores here survives a reboot.
type Environment struct {
	Host     string
	Rand     *rand.Rand
	Settings map[string]string

	FS         *FS
	OS         *OS
	Term       *Term
	Peripheral *Peripheral
	Redstone   *Redstone

	computer *Computer
}

// Computer returns the computer the environment was built for.
func (e *Environment) Computer() *Computer {
	return e.computer
}
