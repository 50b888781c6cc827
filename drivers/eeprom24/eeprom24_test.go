package eeprom24

import (
	"errors"
	"testing"
	"time"

	"ledconfig-go/drivers/flash"
)

var errNack = errors.New("nack")

// fakeEEPROM emulates a 24xx part on a drivers.I2C: memory pointer, page
// writes and a write cycle that NACKs a few polls.
type fakeEEPROM struct {
	addr      uint16
	mem       []byte
	page      int
	busyPolls int

	busy    int
	ptr     int
	writes  int
	stuckAt int // -1 none; every write cycle NACKs forever once reached
	wrapped int // page writes that ran past the end of a device page
}

func newFake(size int) *fakeEEPROM {
	f := &fakeEEPROM{addr: Address, mem: make([]byte, size), page: 64, busyPolls: 2, stuckAt: -1}
	for i := range f.mem {
		f.mem[i] = 0xFF
	}
	return f
}

func (f *fakeEEPROM) Tx(addr uint16, w, r []byte) error {
	if addr != f.addr {
		return errNack
	}
	if f.busy != 0 {
		if f.busy > 0 {
			f.busy--
		}
		return errNack
	}
	if len(w) >= 2 {
		f.ptr = int(w[0])<<8 | int(w[1])
		if data := w[2:]; len(data) > 0 {
			base := f.ptr &^ (f.page - 1)
			if f.ptr-base+len(data) > f.page {
				f.wrapped++
			}
			for i, b := range data {
				f.mem[base+(f.ptr-base+i)%f.page] = b
			}
			f.writes++
			f.busy = f.busyPolls
			if f.stuckAt >= 0 && f.writes >= f.stuckAt {
				f.busy = -1
			}
		}
	}
	if len(r) > 0 {
		copy(r, f.mem[f.ptr:])
	}
	return nil
}

func newDevice(f *fakeEEPROM, wp func(bool)) *Device {
	return New(f, Config{
		Size:         uint32(len(f.mem)),
		EraseSize:    256,
		WriteProtect: wp,
		PollInterval: time.Microsecond,
		WriteTimeout: 5 * time.Millisecond,
	})
}

func TestEEPROM_EraseThenProgram(t *testing.T) {
	f := newFake(1024)
	for i := range f.mem {
		f.mem[i] = 0xAA
	}
	d := newDevice(f, nil)

	if err := d.ErasePage(256); !errors.Is(err, flash.ErrLocked) {
		t.Fatalf("erase while locked: %v", err)
	}
	d.Unlock()
	if err := d.ErasePage(256); err != nil {
		t.Fatalf("erase: %v", err)
	}
	for i := 256; i < 512; i++ {
		if f.mem[i] != 0xFF {
			t.Fatalf("mem[%d] = %#x after erase", i, f.mem[i])
		}
	}
	if f.mem[255] != 0xAA || f.mem[512] != 0xAA {
		t.Fatal("erase touched a neighbouring page")
	}

	if err := flash.WriteChecked(d, 300, 0x5555); err != nil {
		t.Fatalf("WriteChecked: %v", err)
	}
	if f.mem[300] != 0x55 || f.mem[301] != 0x55 {
		t.Fatalf("mem = % x", f.mem[300:302])
	}
	if err := d.WriteHalfWord(300, 0x1234); !errors.Is(err, flash.ErrNotErased) {
		t.Fatalf("reprogram: %v, want ErrNotErased", err)
	}
	if err := flash.WriteChecked(d, 300, 0x0000); err != nil {
		t.Fatalf("retire: %v", err)
	}
}

func TestEEPROM_ReadAt(t *testing.T) {
	f := newFake(512)
	copy(f.mem[10:], []byte{1, 2, 3, 4})
	d := newDevice(f, nil)
	var b [4]byte
	if err := d.ReadAt(b[:], 10); err != nil {
		t.Fatalf("ReadAt: %v", err)
	}
	if b != [4]byte{1, 2, 3, 4} {
		t.Fatalf("ReadAt = % x", b)
	}
	if err := d.ReadAt(b[:], 510); !errors.Is(err, flash.ErrOutOfRange) {
		t.Fatalf("ReadAt past end: %v", err)
	}
}

func TestEEPROM_WriteProtectFollowsLock(t *testing.T) {
	var states []bool
	d := newDevice(newFake(512), func(p bool) { states = append(states, p) })
	d.Unlock()
	d.Lock()
	want := []bool{true, false, true}
	if len(states) != len(want) {
		t.Fatalf("WP states = %v, want %v", states, want)
	}
	for i := range want {
		if states[i] != want[i] {
			t.Fatalf("WP states = %v, want %v", states, want)
		}
	}
}

func TestEEPROM_WriteCycleTimeout(t *testing.T) {
	f := newFake(512)
	f.stuckAt = 1
	d := newDevice(f, nil)
	d.Unlock()
	err := d.WriteHalfWord(0, 0x0102)
	if !errors.Is(err, flash.ErrWriteFailed) || !errors.Is(err, ErrTimeout) {
		t.Fatalf("stuck write cycle: %v", err)
	}
}

func TestEEPROM_EraseSizeRoundedToWritePage(t *testing.T) {
	cases := []struct {
		writePage, eraseSize, want uint32
	}{
		{64, 1024, 1024},
		{64, 1000, 960},
		{64, 40, 64},
		{32, 100, 96},
	}
	for _, c := range cases {
		d := New(newFake(2048), Config{Size: 2048, WritePage: c.writePage, EraseSize: c.eraseSize})
		if got := d.PageSize(); got != c.want {
			t.Fatalf("WritePage %d EraseSize %d: page %d, want %d", c.writePage, c.eraseSize, got, c.want)
		}
	}
}

func TestEEPROM_EraseStaysInsideDevicePages(t *testing.T) {
	f := newFake(2048)
	for i := range f.mem {
		f.mem[i] = 0xAA
	}
	d := New(f, Config{
		Size:         2048,
		EraseSize:    1000,
		PollInterval: time.Microsecond,
		WriteTimeout: 5 * time.Millisecond,
	})
	d.Unlock()
	ps := d.PageSize()
	if err := d.ErasePage(ps); err != nil {
		t.Fatalf("erase: %v", err)
	}
	if f.wrapped != 0 {
		t.Fatalf("%d page writes wrapped inside a device page", f.wrapped)
	}
	for i := ps; i < 2*ps; i++ {
		if f.mem[i] != 0xFF {
			t.Fatalf("mem[%d] = %#x after erase", i, f.mem[i])
		}
	}
	if f.mem[ps-1] != 0xAA || f.mem[2*ps] != 0xAA {
		t.Fatal("erase touched a neighbouring page")
	}
}
