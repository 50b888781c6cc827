//go:build rp2040 && eeprom

package platform

import (
	"machine"

	uartx "github.com/jangala-dev/tinygo-uartx/uartx"

	"ledconfig-go/drivers/eeprom24"
)

const (
	eepromSize   = 32 * 1024 // 24LC256
	eepromPage   = 1024
	eepromConfig = eepromSize - eepromPage
)

// Open keeps the configuration in a 24xx EEPROM on i2c0 instead of the
// program flash. Built with -tags eeprom.
func Open() *Board {
	i2c := machine.I2C0
	_ = i2c.Configure(machine.I2CConfig{
		Frequency: 400 * machine.KHz,
		SDA:       machine.I2C0_SDA_PIN,
		SCL:       machine.I2C0_SCL_PIN,
	})
	dev := eeprom24.New(i2c, eeprom24.Config{Size: eepromSize, EraseSize: eepromPage})

	u := uartx.UART0
	_ = u.Configure(uartx.UARTConfig{
		BaudRate: 115200,
		TX:       machine.UART0_TX_PIN,
		RX:       machine.UART0_RX_PIN,
	})
	b := &Board{Flash: dev, ConfigPage: eepromConfig, Console: u}
	return b.withTrace()
}
