// Package platform wires the board's hardware to the firmware: the flash
// device holding the configuration page and the diagnostic console.
package platform

import (
	"io"

	"ledconfig-go/drivers/flash"
)

// Board is what main needs from the target.
type Board struct {
	Flash      flash.Driver
	ConfigPage uint32    // first byte of the reserved configuration page
	Console    io.Writer // debug USART
	Trace      io.Writer // flash trace, nil unless built with -tags traceflash
}

func (b *Board) withTrace() *Board {
	if TraceFlash {
		b.Trace = b.Console
	}
	return b
}
