package heartbeat

import (
	"context"
	"io"
	"time"

	"ledconfig-go/bus"
	"ledconfig-go/types"
	"ledconfig-go/x/console"
)

var (
	topicConfigHeartbeat = bus.T("config", "heartbeat")
	topicConfigLED       = bus.T("config", "led")
)

// Service prints a periodic liveness line carrying the board address and
// backup channel from the retained LED configuration.
type Service struct {
	Interval time.Duration // default 1s
	Out      io.Writer
}

func (s *Service) serviceLoop(ctx context.Context, conn *bus.Connection, hbSub, ledSub *bus.Subscription) {
	defer conn.Unsubscribe(hbSub)
	defer conn.Unsubscribe(ledSub)

	out := console.New(s.Out)
	interval := s.Interval
	if interval <= 0 {
		interval = time.Second
	}
	tick := time.NewTicker(interval)
	defer tick.Stop()

	var cfg types.ConfigEntry
	haveCfg := false

	// loop until context is cancelled, respond to tick and config changes
	for {
		select {
		case <-ctx.Done():
			out.Line("Info: heartbeat service stopping")
			return
		case <-tick.C:
			out.WriteString("Info: Heartbeat")
			if haveCfg {
				out.WriteString(" addr=")
				out.Hex16(cfg.Address)
				out.WriteString(" backup=")
				out.Uint(uint64(cfg.BackupChannel))
			}
			out.WriteString(console.CRLF)
		case msg := <-ledSub.Channel():
			if e, ok := msg.Payload.(types.ConfigEntry); ok {
				cfg, haveCfg = e, true
			}
		case msg := <-hbSub.Channel():
			// Change tick interval if needed
			if m, ok := msg.Payload.(map[string]any); ok {
				if iv, ok := m["interval"]; ok {
					if secs, ok := iv.(float64); ok && secs > 0 {
						tick.Reset(time.Duration(secs * float64(time.Second)))
						out.Line("Info: Heartbeat interval changed")
					}
				}
			}
		}
	}
}

// Start the heartbeat service.
func (s *Service) Start(ctx context.Context, conn *bus.Connection) error {
	hbSub := conn.Subscribe(topicConfigHeartbeat)
	ledSub := conn.Subscribe(topicConfigLED)
	go s.serviceLoop(ctx, conn, hbSub, ledSub)
	return nil
}
