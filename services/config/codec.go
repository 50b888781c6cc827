package config

import (
	"errors"

	"ledconfig-go/types"
)

// Flash record layout of one ConfigEntry, little-endian, no padding:
//
//	0            address          u16
//	2            heat_limit       u16 x HeatSensorLen
//	2+2H         led_infos        RGBLEDCount x {
//	                                color_matrix  i32 x 9
//	                                peak_Y        i32 x 3
//	                                channels      u8  x 3 }
//	EntrySize-1  backup_channel   u8
const (
	StatusWordSize = 2

	ledInfoSize = 9*4 + 3*4 + types.ChannelsPerLED
	EntrySize   = 2 + 2*types.HeatSensorLen + types.RGBLEDCount*ledInfoSize + 1
)

// Entries are programmed as whole status-word-sized units.
var _ [0]struct{} = [EntrySize % StatusWordSize]struct{}{}

var ErrShortBuffer = errors.New("config: short entry buffer")

func put16(b []byte, v uint16) {
	b[0] = byte(v)
	b[1] = byte(v >> 8)
}

func put32(b []byte, v uint32) {
	b[0] = byte(v)
	b[1] = byte(v >> 8)
	b[2] = byte(v >> 16)
	b[3] = byte(v >> 24)
}

func get16(b []byte) uint16 { return uint16(b[0]) | uint16(b[1])<<8 }

func get32(b []byte) uint32 {
	return uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16 | uint32(b[3])<<24
}

// EncodeEntry writes e into dst[:EntrySize].
func EncodeEntry(dst []byte, e *types.ConfigEntry) error {
	if len(dst) < EntrySize {
		return ErrShortBuffer
	}
	put16(dst, e.Address)
	p := 2
	for _, h := range e.HeatLimit {
		put16(dst[p:], h)
		p += 2
	}
	for i := range e.LEDInfos {
		li := &e.LEDInfos[i]
		for _, f := range li.ColorMatrix {
			put32(dst[p:], uint32(f))
			p += 4
		}
		for _, f := range li.PeakY {
			put32(dst[p:], uint32(f))
			p += 4
		}
		p += copy(dst[p:], li.Channels[:])
	}
	dst[p] = e.BackupChannel
	return nil
}

// DecodeEntry fills e from src[:EntrySize].
func DecodeEntry(src []byte, e *types.ConfigEntry) error {
	if len(src) < EntrySize {
		return ErrShortBuffer
	}
	e.Address = get16(src)
	p := 2
	for i := range e.HeatLimit {
		e.HeatLimit[i] = get16(src[p:])
		p += 2
	}
	for i := range e.LEDInfos {
		li := &e.LEDInfos[i]
		for j := range li.ColorMatrix {
			li.ColorMatrix[j] = types.Fixed(get32(src[p:]))
			p += 4
		}
		for j := range li.PeakY {
			li.PeakY[j] = types.Fixed(get32(src[p:]))
			p += 4
		}
		p += copy(li.Channels[:], src[p:p+types.ChannelsPerLED])
	}
	e.BackupChannel = src[p]
	return nil
}
