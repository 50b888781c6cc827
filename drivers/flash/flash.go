// Package flash defines the small contract the configuration store needs from
// a NOR-style flash controller, with helpers built on top of it.
//
// Semantics assumed of every backend:
//   - erased memory reads 0xFF;
//   - a halfword may be programmed only while it reads 0xFFFF, except that
//     0x0000 may always be written (it only clears bits);
//   - writes and erases are refused while the controller is locked.
package flash

import "errors"

// Sentinel errors (TinyGo-safe; no fmt).
var (
	ErrWriteFailed = errors.New("flash: write verify failed")
	ErrEraseFailed = errors.New("flash: erase failed")
	ErrNotErased   = errors.New("flash: target not erased")
	ErrLocked      = errors.New("flash: controller locked")
	ErrOutOfRange  = errors.New("flash: address out of range")
	ErrUnaligned   = errors.New("flash: unaligned address")
	ErrPowerLoss   = errors.New("flash: power lost")
)

// Erased is the value of a halfword after page erase.
const Erased uint16 = 0xFFFF

// Driver is implemented by each flash backend.
type Driver interface {
	// PageSize is the erase granularity in bytes.
	PageSize() uint32
	// Unlock enables programming and erasing until Lock.
	Unlock()
	Lock()
	// ErasePage erases the page starting at addr.
	ErasePage(addr uint32) error
	// WriteHalfWord programs one little-endian halfword at an even address.
	WriteHalfWord(addr uint32, v uint16) error
	// ReadAt fills p from addr.
	ReadAt(p []byte, addr uint32) error
}

// ReadHalfWord reads a little-endian halfword.
func ReadHalfWord(d Driver, addr uint32) (uint16, error) {
	var b [2]byte
	if err := d.ReadAt(b[:], addr); err != nil {
		return 0, err
	}
	return uint16(b[0]) | uint16(b[1])<<8, nil
}

// WriteChecked programs v at addr and reads it back. A mismatch is
// ErrWriteFailed; it is never retried.
func WriteChecked(d Driver, addr uint32, v uint16) error {
	if addr&1 != 0 {
		return ErrUnaligned
	}
	if err := d.WriteHalfWord(addr, v); err != nil {
		return err
	}
	got, err := ReadHalfWord(d, addr)
	if err != nil {
		return err
	}
	if got != v {
		return ErrWriteFailed
	}
	return nil
}

// Copy programs src (even length) at addr, one checked halfword at a time.
// Halfwords that already hold the erased value are still written so that the
// whole range is verified.
func Copy(d Driver, addr uint32, src []byte) error {
	if len(src)&1 != 0 || addr&1 != 0 {
		return ErrUnaligned
	}
	for i := 0; i < len(src); i += 2 {
		v := uint16(src[i]) | uint16(src[i+1])<<8
		if err := WriteChecked(d, addr+uint32(i), v); err != nil {
			return err
		}
	}
	return nil
}

// Blank reports whether every byte in p reads erased.
func Blank(p []byte) bool {
	for _, b := range p {
		if b != 0xFF {
			return false
		}
	}
	return true
}

// ErasePageChecked erases the page at addr and verifies it reads blank.
// buf is scratch space for the verify pass; any length > 0 works.
func ErasePageChecked(d Driver, addr uint32, buf []byte) error {
	if err := d.ErasePage(addr); err != nil {
		if errors.Is(err, ErrLocked) {
			return err
		}
		return ErrEraseFailed
	}
	size := d.PageSize()
	for off := uint32(0); off < size; {
		n := uint32(len(buf))
		if off+n > size {
			n = size - off
		}
		if err := d.ReadAt(buf[:n], addr+off); err != nil {
			return err
		}
		if !Blank(buf[:n]) {
			return ErrEraseFailed
		}
		off += n
	}
	return nil
}
