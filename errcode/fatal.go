package errcode

// Severity classifies a fatal report.
type Severity uint8

const (
	SevBug      Severity = iota + 1 // firmware logic error
	SevHardware                     // peripheral misbehaving beyond recovery
)

func (s Severity) String() string {
	switch s {
	case SevBug:
		return "bug"
	case SevHardware:
		return "hardware"
	default:
		return "unknown"
	}
}

// Action is what the fatal handler is asked to do after reporting.
type Action uint8

const (
	ActPanic Action = iota + 1 // stop here
	ActReset                   // reboot the board
)

// FatalHandler receives invariant violations that correctly functioning
// firmware never produces. The default prints and panics; boards may install
// a handler that resets through the watchdog. Tests install one that records
// and returns, in which case the caller continues with a typed error.
var FatalHandler = func(sev Severity, msg string, act Action) {
	println("Fatal:", sev.String(), msg)
	panic(msg)
}

// Fatal reports through FatalHandler.
func Fatal(sev Severity, msg string, act Action) {
	FatalHandler(sev, msg, act)
}
