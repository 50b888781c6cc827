//go:build rp2040

package flash

import "machine"

// Onboard drives the rp2040's QSPI flash through TinyGo's machine.Flash block
// device. Addresses are offsets into the block device, i.e. relative to
// machine.FlashDataStart().
type Onboard struct {
	locked bool
	w      [2]byte
}

// NewOnboard returns the onboard flash, locked.
func NewOnboard() *Onboard { return &Onboard{locked: true} }

func (f *Onboard) PageSize() uint32 { return uint32(machine.Flash.EraseBlockSize()) }
func (f *Onboard) Unlock()          { f.locked = false }
func (f *Onboard) Lock()            { f.locked = true }

func (f *Onboard) ErasePage(addr uint32) error {
	if f.locked {
		return ErrLocked
	}
	bs := machine.Flash.EraseBlockSize()
	if int64(addr)%bs != 0 {
		return ErrUnaligned
	}
	if err := machine.Flash.EraseBlocks(int64(addr)/bs, 1); err != nil {
		return ErrEraseFailed
	}
	return nil
}

// WriteHalfWord emulates the write-if-erased rule in software; the QSPI part
// would otherwise silently AND the new value into existing data.
func (f *Onboard) WriteHalfWord(addr uint32, v uint16) error {
	if f.locked {
		return ErrLocked
	}
	if addr&1 != 0 {
		return ErrUnaligned
	}
	cur, err := ReadHalfWord(f, addr)
	if err != nil {
		return err
	}
	if cur != Erased && v != 0 {
		return ErrNotErased
	}
	f.w[0] = byte(v)
	f.w[1] = byte(v >> 8)
	if _, err := machine.Flash.WriteAt(f.w[:], int64(addr)); err != nil {
		return ErrWriteFailed
	}
	return nil
}

func (f *Onboard) ReadAt(p []byte, addr uint32) error {
	if int64(addr)+int64(len(p)) > machine.Flash.Size() {
		return ErrOutOfRange
	}
	_, err := machine.Flash.ReadAt(p, int64(addr))
	return err
}
