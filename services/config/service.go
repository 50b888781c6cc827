package config

import (
	"context"
	"io"

	"ledconfig-go/bus"
	"ledconfig-go/errcode"
	"ledconfig-go/types"
)

var (
	TopicLED      = bus.T("config", "led")
	TopicSave     = bus.T("config", "led", "save")
	TopicValidate = bus.T("config", "led", "validate")
)

// Service owns the Store and exposes it on the bus. The active entry is kept
// retained on TopicLED; save and validate requests are answered on ReplyTo.
type Service struct {
	store *Store
	diag  io.Writer
}

// NewService wraps st. Validator findings for bus requests go to diag.
func NewService(st *Store, diag io.Writer) *Service {
	return &Service{store: st, diag: diag}
}

// Start subscribes, publishes the current entry and serves requests until
// ctx is done. The store must not be used by anyone else afterwards.
func (s *Service) Start(ctx context.Context, conn *bus.Connection) error {
	saveSub := conn.Subscribe(TopicSave)
	valSub := conn.Subscribe(TopicValidate)
	s.publish(conn)
	go s.serviceLoop(ctx, conn, saveSub, valSub)
	return nil
}

func (s *Service) serviceLoop(ctx context.Context, conn *bus.Connection, saveSub, valSub *bus.Subscription) {
	defer conn.Unsubscribe(saveSub)
	defer conn.Unsubscribe(valSub)

	for {
		select {
		case <-ctx.Done():
			println("Info: config service stopping")
			return
		case msg := <-saveSub.Channel():
			_ = conn.Reply(msg, s.handleSave(conn, msg.Payload), false)
		case msg := <-valSub.Channel():
			_ = conn.Reply(msg, s.handleValidate(msg.Payload), false)
		}
	}
}

func (s *Service) handleSave(conn *bus.Connection, payload any) types.SaveReply {
	e, ok := entryOf(payload)
	if !ok {
		return types.SaveReply{Code: string(errcode.InvalidPayload)}
	}
	// Reject here so a bad request never reaches the store's fatal path.
	if !Validate(&e, s.diag) {
		return types.SaveReply{Code: string(errcode.InvalidConfiguration)}
	}
	if err := s.store.Save(&e); err != nil {
		println("[config] save failed:", err.Error())
		return types.SaveReply{Code: string(errcode.Of(err))}
	}
	s.publish(conn)
	return types.SaveReply{OK: true, Code: string(errcode.OK)}
}

func (s *Service) handleValidate(payload any) types.ValidationReply {
	e, ok := entryOf(payload)
	if !ok {
		return types.ValidationReply{BackupChannel: types.NoBackupChannel}
	}
	ok = Validate(&e, s.diag)
	return types.ValidationReply{OK: ok, BackupChannel: e.BackupChannel}
}

func (s *Service) publish(conn *bus.Connection) {
	conn.Publish(conn.NewMessage(TopicLED, s.store.Cache().Snapshot(), true))
}

// entryOf copies the entry carried by a request so validation never writes
// into the sender's value.
func entryOf(p any) (types.ConfigEntry, bool) {
	switch v := p.(type) {
	case types.ConfigEntry:
		return v, true
	case *types.ConfigEntry:
		if v != nil {
			return *v, true
		}
	}
	return types.ConfigEntry{}, false
}
