package config

import (
	"io"

	"ledconfig-go/drivers/flash"
	"ledconfig-go/errcode"
	"ledconfig-go/types"
	"ledconfig-go/x/console"
)

// Options configures a Store. The zero value is usable except for PageAddr.
type Options struct {
	// PageAddr is the first byte of the reserved configuration page.
	PageAddr uint32
	// Diag receives validator findings and recovery notices.
	Diag io.Writer
	// Trace, when set, receives a step-by-step log of flash operations.
	Trace io.Writer
}

// Store persists ConfigEntry records in a SlotLog and keeps the Cache in step.
//
// Save writes in this order: entry body, retire the previous slot (Old),
// activate the new slot (InUse). A power cut at any point leaves Load able to
// return either the previous or the new configuration.
//
// Not safe for concurrent use.
type Store struct {
	drv   flash.Driver
	log   *SlotLog
	cache *Cache
	diag  *console.Writer
	trace *console.Writer

	slots []SlotState
}

// New binds a store to the page at opt.PageAddr on drv.
func New(drv flash.Driver, cache *Cache, opt Options) (*Store, error) {
	log, err := NewSlotLog(drv, opt.PageAddr)
	if err != nil {
		return nil, err
	}
	if cache == nil {
		cache = NewCache()
	}
	s := &Store{
		drv:   drv,
		log:   log,
		cache: cache,
		diag:  console.New(opt.Diag),
		slots: make([]SlotState, 0, log.Capacity()),
	}
	if opt.Trace != nil {
		s.trace = console.New(opt.Trace)
	}
	return s, nil
}

func (s *Store) Cache() *Cache { return s.cache }
func (s *Store) Log() *SlotLog { return s.log }

func (s *Store) scan() error {
	var err error
	s.slots, err = s.log.Scan(s.slots[:0])
	return errcode.Wrap("scan", err)
}

// Load copies the active configuration into the cache.
//
// The first InUse slot in ascending order wins. When no slot is InUse but
// superseded ones exist (power was cut between retiring the old slot and
// activating the new one), the highest-indexed Old slot, the most recently
// active configuration, is loaded. Otherwise NoConfiguration is returned and
// the cache is left untouched.
func (s *Store) Load() error {
	if err := s.scan(); err != nil {
		return err
	}
	inUse, lastOld := -1, -1
	for _, sl := range s.slots {
		if sl.Status == StatusInUse {
			inUse = sl.Index
			break
		}
		if sl.Status == StatusOld {
			lastOld = sl.Index
		}
	}
	s.traceSlot("load in_use=", inUse)

	idx, src := inUse, SourceFlash
	if idx < 0 {
		if lastOld < 0 {
			return errcode.NoConfiguration
		}
		idx, src = lastOld, SourceRecovered
		s.diag.Line("Warning: no active configuration, using the last superseded one.")
	}

	var e types.ConfigEntry
	if err := s.log.ReadEntry(idx, &e); err != nil {
		return errcode.Wrap("read_entry", err)
	}
	s.cache.set(&e, src)
	return nil
}

// Save validates e, appends it to the log and makes it active.
//
// e must have passed Validate beforehand: an invalid entry is a firmware bug
// and is reported through errcode.Fatal. Should the fatal handler return,
// Save returns InvalidConfiguration without touching flash.
//
// When no Empty slot with a blank body remains, the page is erased once and
// allocation restarts from slot 0. Flash errors are returned as *errcode.E.
func (s *Store) Save(e *types.ConfigEntry) error {
	s.traceLine("save")

	if !Validate(e, s.diag) {
		errcode.Fatal(errcode.SevBug, "Trying to save invalid config", errcode.ActPanic)
		return errcode.InvalidConfiguration
	}

	s.drv.Unlock()
	defer s.drv.Lock()

	lastInUse, free := -1, -1
	for erased := false; ; erased = true {
		if err := s.scan(); err != nil {
			return err
		}
		lastInUse, free = pickSlots(s.slots)
		s.traceSlot("in_use=", lastInUse)
		s.traceSlot("free=", free)
		if free >= 0 {
			break
		}
		if erased {
			return &errcode.E{C: errcode.FlashEraseFailed, Op: "save", Msg: "no free slot after erase"}
		}
		s.traceLine("erase")
		if err := s.log.ErasePage(); err != nil {
			return err
		}
	}

	if err := s.log.WriteEntry(free, e); err != nil {
		return err
	}
	s.traceLine("copy done")

	if lastInUse >= 0 {
		if err := s.log.WriteStatus(lastInUse, StatusOld); err != nil {
			return err
		}
	}
	if err := s.log.WriteStatus(free, StatusInUse); err != nil {
		return err
	}
	s.traceLine("status updated")

	s.cache.set(e, SourceSaved)
	return nil
}

// pickSlots returns the last InUse slot and the first Empty slot whose body
// is still blank, or -1 for either. An Empty slot with a programmed body is
// left over from an interrupted save and cannot be programmed again before
// the next erase.
func pickSlots(slots []SlotState) (lastInUse, free int) {
	lastInUse, free = -1, -1
	for _, sl := range slots {
		if sl.Status == StatusInUse {
			lastInUse = sl.Index
		}
		if sl.Status == StatusEmpty && sl.Blank && free < 0 {
			free = sl.Index
		}
	}
	return lastInUse, free
}

func (s *Store) traceLine(msg string) {
	if s.trace != nil {
		s.trace.Line(msg)
	}
}

func (s *Store) traceSlot(label string, idx int) {
	if s.trace == nil {
		return
	}
	s.trace.WriteString(label)
	if idx < 0 {
		s.trace.Line("none")
		return
	}
	s.trace.Uint(uint64(idx))
	s.trace.WriteString(console.CRLF)
}
