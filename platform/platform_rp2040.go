//go:build rp2040 && !eeprom

package platform

import (
	"machine"

	uartx "github.com/jangala-dev/tinygo-uartx/uartx"

	"ledconfig-go/drivers/flash"
)

// Open uses the last erase block of the onboard flash data area and UART0 at
// 115200 baud for the console.
func Open() *Board {
	f := flash.NewOnboard()
	page := uint32(machine.Flash.Size()) - f.PageSize()

	u := uartx.UART0
	_ = u.Configure(uartx.UARTConfig{
		BaudRate: 115200,
		TX:       machine.UART0_TX_PIN,
		RX:       machine.UART0_RX_PIN,
	})
	b := &Board{Flash: f, ConfigPage: page, Console: u}
	return b.withTrace()
}
