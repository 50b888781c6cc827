package config

import "ledconfig-go/types"

// sRGB primaries to LED primaries, example calibration for an uncalibrated
// board.
var srgbMatrix = [9]float64{
	2.409638554216868, -0.6693440428380186, -0.321285140562249,
	-1.204819277108434, 2.186523873270861, 0.0495314591700134,
	-1.204819277108434, -1.517179830432843, 1.271753681392236,
}

const defaultPeakY = 1000

// DefaultEntry is the built-in configuration the firmware runs on until a
// stored one is loaded: broadcast address, heat limits disabled, every LED
// group on the example sRGB calibration and channels assigned in order.
func DefaultEntry() types.ConfigEntry {
	e := types.ConfigEntry{
		Address:       types.AddressBroadcast,
		BackupChannel: types.NoBackupChannel,
	}
	for i := range e.HeatLimit {
		e.HeatLimit[i] = 0xffff
	}
	for l := range e.LEDInfos {
		li := &e.LEDInfos[l]
		for j, f := range srgbMatrix {
			li.ColorMatrix[j] = types.FixedFromFloat(f)
		}
		for j := range li.PeakY {
			li.PeakY[j] = types.FixedFromInt(defaultPeakY)
		}
		for c := range li.Channels {
			li.Channels[c] = uint8(l*types.ChannelsPerLED + c)
		}
	}
	return e
}
