package errcode

import (
	"errors"

	"ledconfig-go/drivers/flash"
)

// Code is a stable error identifier shared by the store, the bus replies and
// the console. It is a string newtype, comparable, allocation-free, and
// implements error.
type Code string

func (c Code) Error() string { return string(c) }

// Canonical codes (short, stable).
const (
	OK             Code = "ok"
	InvalidPayload Code = "invalid_payload"

	// Config store
	NoConfiguration      Code = "no_configuration"
	InvalidConfiguration Code = "invalid_configuration"
	FlashWriteFailed     Code = "flash_write_failed"
	FlashEraseFailed     Code = "flash_erase_failed"

	Error Code = "error" // generic fallback
)

// E keeps context and a cause alongside a Code.
type E struct {
	C   Code
	Op  string
	Msg string
	Err error
}

func (e *E) Error() string {
	s := string(e.C)
	if e.Op != "" {
		s = e.Op + ": " + s
	}
	if e.Msg != "" {
		s += ": " + e.Msg
	}
	if e.Err != nil {
		s += " (" + e.Err.Error() + ")"
	}
	return s
}
func (e *E) Unwrap() error { return e.Err }
func (e *E) Code() Code    { return e.C }

// Is lets errors.Is(err, errcode.FlashWriteFailed) match a wrapped *E.
func (e *E) Is(target error) bool {
	c, ok := target.(Code)
	return ok && c == e.C
}

// Wrap builds an *E for op, mapping a driver error to its code.
func Wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	return &E{C: MapDriverErr(err), Op: op, Err: err}
}

// Of extracts a Code from an error, defaulting to Error.
func Of(err error) Code {
	if err == nil {
		return OK
	}
	if c, ok := err.(Code); ok {
		return c
	}
	type coder interface{ Code() Code }
	var x coder
	if errors.As(err, &x) {
		return x.Code()
	}
	return Error
}

// MapDriverErr maps flash driver errors to a Code.
func MapDriverErr(err error) Code {
	switch {
	case err == nil:
		return OK
	case errors.Is(err, flash.ErrEraseFailed):
		return FlashEraseFailed
	case errors.Is(err, flash.ErrWriteFailed),
		errors.Is(err, flash.ErrNotErased),
		errors.Is(err, flash.ErrLocked),
		errors.Is(err, flash.ErrPowerLoss):
		return FlashWriteFailed
	case errors.Is(err, flash.ErrOutOfRange):
		return InvalidPayload
	}
	return Of(err)
}
