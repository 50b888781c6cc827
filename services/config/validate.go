package config

import (
	"io"

	"ledconfig-go/types"
	"ledconfig-go/x/console"
)

const (
	msgAddressInvalid   = "The board's address is invalid."
	msgAddressBroadcast = "Warning: The board's address is the broadcast address."
	msgChannelInvalid   = "The PWM channel assignment of the LEDs is invalid at channel "
	msgChannelRange     = "The PWM channel index is out of range at LED "
)

// Validate reports whether e is safe to use and sets e.BackupChannel.
//
// Every physical channel must be driven by exactly one LED group colour,
// except one spare: the first channel (ascending) whose use count is not one
// becomes the backup channel, and every further such channel invalidates the
// entry. All checks run; each finding is written to diag.
func Validate(e *types.ConfigEntry, diag io.Writer) bool {
	out := console.New(diag)
	valid := true

	if e.Address > types.AddressMax {
		out.Line(msgAddressInvalid)
		valid = false
	}
	if e.Address == types.AddressBroadcast {
		out.Line(msgAddressBroadcast)
	}

	var seen [types.ModuleLength]uint8
	for l := range e.LEDInfos {
		for c, ch := range e.LEDInfos[l].Channels {
			if int(ch) >= types.ModuleLength {
				out.WriteString(msgChannelRange)
				out.Uint(uint64(l))
				out.WriteString(", colour ")
				out.Uint(uint64(c))
				out.WriteString(console.CRLF)
				valid = false
				continue
			}
			seen[ch]++
		}
	}

	backup := types.NoBackupChannel
	firstReported := false
	for i, n := range seen {
		if n == 1 {
			continue
		}
		if backup == types.NoBackupChannel {
			backup = uint8(i)
			continue
		}
		if !firstReported {
			channelInvalid(out, int(backup))
			firstReported = true
		}
		channelInvalid(out, i)
		valid = false
	}
	e.BackupChannel = backup

	return valid
}

func channelInvalid(out *console.Writer, ch int) {
	out.WriteString(msgChannelInvalid)
	out.Uint(uint64(ch))
	out.WriteString(console.CRLF)
}
