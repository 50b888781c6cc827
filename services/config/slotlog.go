package config

import (
	"errors"

	"ledconfig-go/drivers/flash"
	"ledconfig-go/errcode"
	"ledconfig-go/types"
	"ledconfig-go/x/mathx"
)

// Status is the status word kept for each slot at the start of the page.
type Status uint16

const (
	StatusEmpty Status = 0xFFFF // erased
	StatusInUse Status = 0x5555
	StatusOld   Status = 0x0000
)

func (s Status) String() string {
	switch s {
	case StatusEmpty:
		return "empty"
	case StatusInUse:
		return "in_use"
	case StatusOld:
		return "old"
	default:
		return "unknown"
	}
}

// SlotState is one row of a scan.
type SlotState struct {
	Index  int
	Status Status
	// Blank reports whether the entry body still reads erased.
	Blank bool
}

var (
	ErrPageUnaligned = errors.New("config: page address not aligned to erase page")
	ErrPageTooSmall  = errors.New("config: page cannot hold a single slot")
	ErrSlotIndex     = errors.New("config: slot index out of range")
)

// SlotLog is the log-structured array of (status, entry) slots occupying one
// reserved flash page:
//
//	base                      status[0..capacity)  u16 each
//	base + 2*capacity         entry[0..capacity)   EntrySize each
//
// capacity = pageSize / (EntrySize + StatusWordSize).
type SlotLog struct {
	drv      flash.Driver
	base     uint32
	capacity int

	buf [EntrySize]byte
}

// NewSlotLog lays out the slot log on the page at base.
func NewSlotLog(drv flash.Driver, base uint32) (*SlotLog, error) {
	ps := drv.PageSize()
	if ps == 0 || base%ps != 0 {
		return nil, ErrPageUnaligned
	}
	n := int(mathx.FloorDiv(ps, EntrySize+StatusWordSize))
	if n == 0 {
		return nil, ErrPageTooSmall
	}
	return &SlotLog{drv: drv, base: base, capacity: n}, nil
}

func (l *SlotLog) Capacity() int    { return l.capacity }
func (l *SlotLog) Base() uint32     { return l.base }
func (l *SlotLog) PageSize() uint32 { return l.drv.PageSize() }

func (l *SlotLog) statusAddr(i int) uint32 {
	return l.base + uint32(i)*StatusWordSize
}

func (l *SlotLog) entryAddr(i int) uint32 {
	return l.base + uint32(l.capacity)*StatusWordSize + uint32(i)*EntrySize
}

func (l *SlotLog) check(i int) error {
	if i < 0 || i >= l.capacity {
		return ErrSlotIndex
	}
	return nil
}

// ReadStatus returns the raw status word of slot i.
func (l *SlotLog) ReadStatus(i int) (Status, error) {
	if err := l.check(i); err != nil {
		return 0, err
	}
	v, err := flash.ReadHalfWord(l.drv, l.statusAddr(i))
	return Status(v), err
}

// Scan appends the state of every slot, in ascending index order, to dst.
func (l *SlotLog) Scan(dst []SlotState) ([]SlotState, error) {
	for i := 0; i < l.capacity; i++ {
		st, err := l.ReadStatus(i)
		if err != nil {
			return dst, err
		}
		if err := l.drv.ReadAt(l.buf[:], l.entryAddr(i)); err != nil {
			return dst, err
		}
		dst = append(dst, SlotState{Index: i, Status: st, Blank: flash.Blank(l.buf[:])})
	}
	return dst, nil
}

// ReadEntry decodes slot i's body into e.
func (l *SlotLog) ReadEntry(i int, e *types.ConfigEntry) error {
	if err := l.check(i); err != nil {
		return err
	}
	if err := l.drv.ReadAt(l.buf[:], l.entryAddr(i)); err != nil {
		return err
	}
	return DecodeEntry(l.buf[:], e)
}

// WriteEntry programs e into slot i's body. The caller must hold the flash
// unlocked.
func (l *SlotLog) WriteEntry(i int, e *types.ConfigEntry) error {
	if err := l.check(i); err != nil {
		return err
	}
	if err := EncodeEntry(l.buf[:], e); err != nil {
		return err
	}
	return errcode.Wrap("write_entry", flash.Copy(l.drv, l.entryAddr(i), l.buf[:]))
}

// WriteStatus programs slot i's status word.
func (l *SlotLog) WriteStatus(i int, s Status) error {
	if err := l.check(i); err != nil {
		return err
	}
	return errcode.Wrap("write_status", flash.WriteChecked(l.drv, l.statusAddr(i), uint16(s)))
}

// ErasePage returns every slot to Empty.
func (l *SlotLog) ErasePage() error {
	if err := flash.ErasePageChecked(l.drv, l.base, l.buf[:]); err != nil {
		return &errcode.E{C: errcode.FlashEraseFailed, Op: "erase_page", Err: err}
	}
	return nil
}
