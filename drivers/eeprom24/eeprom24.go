// Package eeprom24 drives a 24xx-series I²C EEPROM (two-byte memory address,
// page writes, ACK polling) and presents it as a flash.Driver, so a board that
// carries a config EEPROM instead of spare onboard flash can host the same
// slot log.
//
// EEPROM cells can be rewritten freely; the driver enforces the NOR
// write-if-erased rule itself and emulates page erase by filling with 0xFF,
// so the store behaves identically on both media.
//
// NOTE: I2C.Tx MUST perform a write followed by a repeated-start read when both
// w and r are provided, without releasing the bus.
package eeprom24

import (
	"errors"
	"time"

	"ledconfig-go/drivers/flash"
	"ledconfig-go/x/mathx"

	"tinygo.org/x/drivers"
)

// Address is the usual 7-bit address with A2..A0 tied low.
const Address = 0x50

const maxWritePage = 64

var ErrTimeout = errors.New("eeprom24: write cycle timeout")

// Config controls geometry and timing. All fields are optional.
type Config struct {
	// Address defaults to 0x50.
	Address uint16
	// Size of the part in bytes. Default 32 KiB (24LC256).
	Size uint32
	// WritePage is the device page-write buffer. Default 64, max 64.
	WritePage uint32
	// EraseSize is the emulated erase page, rounded down to a multiple of
	// WritePage. Default 1024.
	EraseSize uint32
	// WriteProtect drives the WP pin, if wired; true = protected.
	WriteProtect func(protect bool)
	// PollInterval between ACK polls while a write cycle runs. Default 1 ms.
	PollInterval time.Duration
	// WriteTimeout bounds one write cycle. Default 10 ms.
	WriteTimeout time.Duration
}

// Device is a 24xx EEPROM on an I2C bus.
type Device struct {
	bus    drivers.I2C
	cfg    Config
	locked bool

	// Fixed buffers to avoid per-call heap allocations.
	w [2 + maxWritePage]byte
}

// New creates the device. The bus must already be configured; the part is not
// touched.
func New(bus drivers.I2C, cfg Config) *Device {
	if cfg.Address == 0 {
		cfg.Address = Address
	}
	if cfg.Size == 0 {
		cfg.Size = 32 * 1024
	}
	if cfg.WritePage == 0 {
		cfg.WritePage = maxWritePage
	}
	cfg.WritePage = mathx.Clamp(cfg.WritePage, 2, maxWritePage)
	if cfg.EraseSize == 0 {
		cfg.EraseSize = 1024
	}
	// Erase chunks must start on device page boundaries or the part wraps
	// the write inside its page.
	cfg.EraseSize -= cfg.EraseSize % cfg.WritePage
	if cfg.EraseSize == 0 {
		cfg.EraseSize = cfg.WritePage
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = time.Millisecond
	}
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = 10 * time.Millisecond
	}
	d := &Device{bus: bus, cfg: cfg}
	d.Lock()
	return d
}

func (d *Device) PageSize() uint32 { return d.cfg.EraseSize }

func (d *Device) Unlock() {
	d.locked = false
	if d.cfg.WriteProtect != nil {
		d.cfg.WriteProtect(false)
	}
}

func (d *Device) Lock() {
	d.locked = true
	if d.cfg.WriteProtect != nil {
		d.cfg.WriteProtect(true)
	}
}

func (d *Device) ReadAt(p []byte, addr uint32) error {
	if addr+uint32(len(p)) > d.cfg.Size {
		return flash.ErrOutOfRange
	}
	d.w[0] = byte(addr >> 8)
	d.w[1] = byte(addr)
	return d.bus.Tx(d.cfg.Address, d.w[:2], p)
}

func (d *Device) ErasePage(addr uint32) error {
	if d.locked {
		return flash.ErrLocked
	}
	if addr%d.cfg.EraseSize != 0 || addr+d.cfg.EraseSize > d.cfg.Size {
		return flash.ErrOutOfRange
	}
	for off := uint32(0); off < d.cfg.EraseSize; {
		n := mathx.Min(d.cfg.WritePage, d.cfg.EraseSize-off)
		chunk := d.w[2 : 2+n]
		for i := range chunk {
			chunk[i] = 0xFF
		}
		if err := d.program(addr+off, chunk); err != nil {
			return errors.Join(flash.ErrEraseFailed, err)
		}
		off += n
	}
	return nil
}

func (d *Device) WriteHalfWord(addr uint32, v uint16) error {
	if d.locked {
		return flash.ErrLocked
	}
	if addr&1 != 0 {
		return flash.ErrUnaligned
	}
	cur, err := flash.ReadHalfWord(d, addr)
	if err != nil {
		return err
	}
	if cur != flash.Erased && v != 0 {
		return flash.ErrNotErased
	}
	d.w[2] = byte(v)
	d.w[3] = byte(v >> 8)
	if err := d.program(addr, d.w[2:4]); err != nil {
		return errors.Join(flash.ErrWriteFailed, err)
	}
	return nil
}

// program writes data (already placed in d.w[2:]) within one device page and
// waits for the internal write cycle.
func (d *Device) program(addr uint32, data []byte) error {
	d.w[0] = byte(addr >> 8)
	d.w[1] = byte(addr)
	if err := d.bus.Tx(d.cfg.Address, d.w[:2+len(data)], nil); err != nil {
		return err
	}
	return d.waitReady()
}

// waitReady ACK-polls: the part NACKs its address until the cycle completes.
func (d *Device) waitReady() error {
	deadline := time.Now().Add(d.cfg.WriteTimeout)
	for {
		if err := d.bus.Tx(d.cfg.Address, nil, nil); err == nil {
			return nil
		}
		if time.Now().After(deadline) {
			return ErrTimeout
		}
		time.Sleep(d.cfg.PollInterval)
	}
}
