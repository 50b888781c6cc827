//go:build !rp2040

package platform

import (
	"os"

	"ledconfig-go/drivers/flash"
)

// Host geometry mirrors the STM32F0 parts the board was laid out for: one
// 1 KiB page at the top of a 32 KiB flash.
const (
	HostPageSize   = 1024
	HostConfigPage = 0x0800_7C00
)

// Open returns a board backed by a RAM flash image that starts erased.
func Open() *Board {
	b := &Board{
		Flash:      flash.NewSim(HostConfigPage, HostPageSize, 1),
		ConfigPage: HostConfigPage,
		Console:    os.Stdout,
	}
	return b.withTrace()
}
