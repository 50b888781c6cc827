package main

import (
	"context"
	"errors"
	"time"

	"ledconfig-go/bus"
	"ledconfig-go/errcode"
	"ledconfig-go/platform"
	"ledconfig-go/services/config"
	"ledconfig-go/services/heartbeat"
)

func main() {
	// Allow USB CDC to enumerate before we print.
	time.Sleep(2 * time.Second)
	println("[main] boot")

	board := platform.Open()
	cache := config.NewCache()

	store, err := config.New(board.Flash, cache, config.Options{
		PageAddr: board.ConfigPage,
		Diag:     board.Console,
		Trace:    board.Trace,
	})
	if err != nil {
		errcode.Fatal(errcode.SevBug, "config page layout: "+err.Error(), errcode.ActPanic)
		return
	}

	switch err := store.Load(); {
	case err == nil:
		println("[main] configuration loaded from", cache.Source().String())
	case errors.Is(err, errcode.NoConfiguration):
		println("[main] no stored configuration, using defaults")
	default:
		println("[main] load failed, using defaults:", err.Error())
	}

	// A stored entry is only trusted after it validates; this also derives
	// the backup channel.
	if !config.Validate(cache.Entry(), board.Console) {
		println("[main] stored configuration invalid, using defaults")
		cache.Reset()
		config.Validate(cache.Entry(), board.Console)
	}

	ctx := context.Background()
	b := bus.NewBus(8)

	if err := config.NewService(store, board.Console).Start(ctx, b.NewConnection("config")); err != nil {
		println("[main] config service:", err.Error())
	}
	hb := &heartbeat.Service{Out: board.Console}
	if err := hb.Start(ctx, b.NewConnection("heartbeat")); err != nil {
		println("[main] heartbeat service:", err.Error())
	}

	select {}
}
