package types

// Hardware constants of the LED driver board.
const (
	RGBLEDCount    = 5                            // LED groups
	ChannelsPerLED = 3                            // R, G, B
	ModuleLength   = RGBLEDCount * ChannelsPerLED // physical PWM outputs
	HeatSensorLen  = 5                            // heat sensor inputs
)

// Node address limits.
const (
	AddressMax       uint16 = 0x00fd
	AddressBroadcast uint16 = 0x00fd
)

// NoBackupChannel is stored in BackupChannel when every channel is assigned
// exactly once.
const NoBackupChannel uint8 = ModuleLength

// LEDInfo describes one RGB LED group.
type LEDInfo struct {
	ColorMatrix [9]Fixed // row-major 3x3 colour correction
	PeakY       [3]Fixed // peak luminance per primary
	Channels    [ChannelsPerLED]uint8
}

// ConfigEntry is the persistent configuration of one board.
type ConfigEntry struct {
	Address   uint16
	HeatLimit [HeatSensorLen]uint16
	LEDInfos  [RGBLEDCount]LEDInfo
	// BackupChannel is derived by validation; it is stored but never trusted
	// from input.
	BackupChannel uint8
}

// ValidationReply answers a config/led/validate request.
type ValidationReply struct {
	OK            bool
	BackupChannel uint8
}

// SaveReply answers a config/led/save request. Code is an errcode string.
type SaveReply struct {
	OK   bool
	Code string
}
