package config

import (
	"errors"
	"testing"

	"ledconfig-go/drivers/flash"
	"ledconfig-go/errcode"
)

func newTestLog(t *testing.T) (*flash.Sim, *SlotLog) {
	t.Helper()
	sim := newSim()
	l, err := NewSlotLog(sim, testPageAddr)
	if err != nil {
		t.Fatalf("NewSlotLog: %v", err)
	}
	return sim, l
}

func TestSlotLog_Layout(t *testing.T) {
	_, l := newTestLog(t)
	if got := l.statusAddr(2); got != testPageAddr+4 {
		t.Fatalf("statusAddr(2) = %#x", got)
	}
	if got, want := l.entryAddr(0), uint32(testPageAddr+2*l.Capacity()); got != want {
		t.Fatalf("entryAddr(0) = %#x, want %#x", got, want)
	}
	end := l.entryAddr(l.Capacity()-1) + EntrySize
	if end > testPageAddr+testPageSize {
		t.Fatalf("last slot ends at %#x, past the page", end)
	}
}

func TestSlotLog_CapacityByPageSize(t *testing.T) {
	cases := []struct {
		pageSize uint32
		want     int
	}{
		{EntrySize + StatusWordSize, 1},
		{1024, 3},
		{2048, 7},
		{4096, 15}, // rp2040 erase block
	}
	for _, c := range cases {
		l, err := NewSlotLog(flash.NewSim(0, c.pageSize, 1), 0)
		if err != nil {
			t.Fatalf("page %d: %v", c.pageSize, err)
		}
		if l.Capacity() != c.want {
			t.Fatalf("page %d: capacity %d, want %d", c.pageSize, l.Capacity(), c.want)
		}
	}
	if _, err := NewSlotLog(flash.NewSim(0, EntrySize+StatusWordSize-2, 1), 0); !errors.Is(err, ErrPageTooSmall) {
		t.Fatalf("one halfword short of a slot: %v", err)
	}
}

func TestSlotLog_ScanBlankPage(t *testing.T) {
	_, l := newTestLog(t)
	slots, err := l.Scan(nil)
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if len(slots) != l.Capacity() {
		t.Fatalf("len = %d", len(slots))
	}
	for i, sl := range slots {
		if sl.Index != i || sl.Status != StatusEmpty || !sl.Blank {
			t.Fatalf("slot %d = %+v", i, sl)
		}
	}
}

func TestSlotLog_Lifecycle(t *testing.T) {
	sim, l := newTestLog(t)
	sim.Unlock()
	e := entryWith(0x09)
	if err := l.WriteEntry(1, &e); err != nil {
		t.Fatalf("WriteEntry: %v", err)
	}
	for _, st := range []Status{StatusInUse, StatusOld} {
		if err := l.WriteStatus(1, st); err != nil {
			t.Fatalf("WriteStatus(%v): %v", st, err)
		}
	}
	// Old -> InUse is impossible without an erase.
	if err := l.WriteStatus(1, StatusInUse); !errors.Is(err, errcode.FlashWriteFailed) {
		t.Fatalf("Old->InUse: %v", err)
	}
	slots, _ := l.Scan(nil)
	if slots[1].Status != StatusOld || slots[1].Blank {
		t.Fatalf("slot 1 = %+v", slots[1])
	}
	if err := l.ErasePage(); err != nil {
		t.Fatalf("ErasePage: %v", err)
	}
	if st, _ := l.ReadStatus(1); st != StatusEmpty {
		t.Fatalf("after erase = %v", st)
	}
}

func TestSlotLog_IndexChecks(t *testing.T) {
	_, l := newTestLog(t)
	e := entryWith(1)
	if _, err := l.ReadStatus(l.Capacity()); !errors.Is(err, ErrSlotIndex) {
		t.Fatalf("ReadStatus: %v", err)
	}
	if err := l.WriteEntry(-1, &e); !errors.Is(err, ErrSlotIndex) {
		t.Fatalf("WriteEntry: %v", err)
	}
	if err := l.WriteStatus(99, StatusOld); !errors.Is(err, ErrSlotIndex) {
		t.Fatalf("WriteStatus: %v", err)
	}
}

func TestSlotLog_LockedWritesFail(t *testing.T) {
	_, l := newTestLog(t)
	e := entryWith(1)
	if err := l.WriteEntry(0, &e); !errors.Is(err, flash.ErrLocked) {
		t.Fatalf("WriteEntry while locked: %v", err)
	}
	if err := l.ErasePage(); !errors.Is(err, errcode.FlashEraseFailed) {
		t.Fatalf("ErasePage while locked: %v", err)
	}
}

func TestStatusString(t *testing.T) {
	for st, want := range map[Status]string{
		StatusEmpty: "empty", StatusInUse: "in_use", StatusOld: "old", 0x1234: "unknown",
	} {
		if st.String() != want {
			t.Fatalf("%#04x.String() = %q", uint16(st), st.String())
		}
	}
}
