// cmd/storeselftest/main.go
//go:build rp2040

// Command storeselftest exercises the configuration store against the real
// configuration page of the board. It erases the page; the board boots on
// defaults afterwards until a configuration is saved again.
package main

import (
	"errors"
	"time"

	"machine"

	"ledconfig-go/drivers/flash"
	"ledconfig-go/errcode"
	"ledconfig-go/platform"
	"ledconfig-go/services/config"
	"ledconfig-go/types"
	"ledconfig-go/x/console"
)

type testFn struct {
	name string
	fn   func(*config.Store) bool
}

var (
	out *console.Writer
	drv flash.Driver
)

func fail(name, why string) bool {
	out.WriteString(name)
	out.WriteString(": ")
	out.Line(why)
	return false
}

func entryWith(addr uint16) types.ConfigEntry {
	e := config.DefaultEntry()
	e.Address = addr
	e.HeatLimit[0] = 700 + addr
	return e
}

func erase(st *config.Store) error {
	drv.Unlock()
	defer drv.Lock()
	return st.Log().ErasePage()
}

// --- individual tests (return bool pass/fail) --------------------------------

func TestBlankPage(st *config.Store) bool {
	if err := erase(st); err != nil {
		return fail("TestBlankPage", err.Error())
	}
	if err := st.Load(); !errors.Is(err, errcode.NoConfiguration) {
		return fail("TestBlankPage", "load on erased page did not report no_configuration")
	}
	return true
}

func TestRoundTrip(st *config.Store) bool {
	e := entryWith(0x11)
	if err := st.Save(&e); err != nil {
		return fail("TestRoundTrip", err.Error())
	}
	st.Cache().Reset()
	if err := st.Load(); err != nil {
		return fail("TestRoundTrip", err.Error())
	}
	if *st.Cache().Entry() != e {
		return fail("TestRoundTrip", "loaded entry differs")
	}
	return true
}

func TestWrapAround(st *config.Store) bool {
	n := st.Log().Capacity() + 2
	for i := 0; i < n; i++ {
		e := entryWith(uint16(i))
		if err := st.Save(&e); err != nil {
			return fail("TestWrapAround", err.Error())
		}
	}
	slots, err := st.Log().Scan(nil)
	if err != nil {
		return fail("TestWrapAround", err.Error())
	}
	active := 0
	for _, sl := range slots {
		if sl.Status == config.StatusInUse {
			active++
		}
	}
	if active != 1 {
		return fail("TestWrapAround", "more than one slot in use")
	}
	if err := st.Load(); err != nil || st.Cache().Entry().Address != uint16(n-1) {
		return fail("TestWrapAround", "last save not loaded")
	}
	return true
}

func TestRestoreDefaults(st *config.Store) bool {
	if err := erase(st); err != nil {
		return fail("TestRestoreDefaults", err.Error())
	}
	e := config.DefaultEntry()
	if err := st.Save(&e); err != nil {
		return fail("TestRestoreDefaults", err.Error())
	}
	return true
}

func main() {
	// Give the USB CDC time to enumerate so logs show up reliably.
	time.Sleep(250 * time.Millisecond)

	led := machine.LED
	led.Configure(machine.PinConfig{Mode: machine.PinOutput})
	led.High() // signal "running"

	board := platform.Open()
	out = console.New(board.Console)
	drv = board.Flash
	st, err := config.New(board.Flash, config.NewCache(), config.Options{
		PageAddr: board.ConfigPage,
		Diag:     board.Console,
		Trace:    board.Trace,
	})
	if err != nil {
		out.Line("== store self-test: bad page layout ==")
		return
	}

	tests := []testFn{
		{"TestBlankPage", TestBlankPage},
		{"TestRoundTrip", TestRoundTrip},
		{"TestWrapAround", TestWrapAround},
		{"TestRestoreDefaults", TestRestoreDefaults},
	}

	passed, failed := 0, 0
	out.Line("== store self-test starting ==")
	for _, tc := range tests {
		if tc.fn(st) {
			out.WriteString("[PASS] ")
			passed++
		} else {
			out.WriteString("[FAIL] ")
			failed++
		}
		out.Line(tc.name)
	}
	out.WriteString("== done: ")
	out.Uint(uint64(passed))
	out.WriteString(" passed, ")
	out.Uint(uint64(failed))
	out.Line(" failed ==")

	// LED: solid ON if all passed, otherwise fast blink forever.
	for {
		led.High()
		if failed == 0 {
			time.Sleep(2 * time.Second)
			continue
		}
		time.Sleep(250 * time.Millisecond)
		led.Low()
		time.Sleep(250 * time.Millisecond)
	}
}
