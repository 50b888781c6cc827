package config

import "ledconfig-go/types"

// Source tells where the active configuration came from.
type Source uint8

const (
	SourceDefault   Source = iota // built-in defaults
	SourceFlash                   // loaded from the in-use slot
	SourceRecovered               // loaded from the most recent superseded slot
	SourceSaved                   // last successful save
)

func (s Source) String() string {
	switch s {
	case SourceDefault:
		return "default"
	case SourceFlash:
		return "flash"
	case SourceRecovered:
		return "recovered"
	case SourceSaved:
		return "saved"
	default:
		return "unknown"
	}
}

// Cache is the single in-RAM copy of the effective configuration.
//
// It is not safe for concurrent use. In the firmware it is owned by the
// config service goroutine; other services read published snapshots.
type Cache struct {
	entry  types.ConfigEntry
	source Source
}

// NewCache returns a cache holding DefaultEntry.
func NewCache() *Cache {
	c := &Cache{}
	c.Reset()
	return c
}

// Entry gives read access to the live entry. Callers may mutate it and then
// pass it to Store.Save.
func (c *Cache) Entry() *types.ConfigEntry { return &c.entry }

// Snapshot returns a copy, safe to hand to other goroutines.
func (c *Cache) Snapshot() types.ConfigEntry { return c.entry }

func (c *Cache) Source() Source { return c.source }

// Reset reverts to the built-in defaults.
func (c *Cache) Reset() {
	c.entry = DefaultEntry()
	c.source = SourceDefault
}

func (c *Cache) set(e *types.ConfigEntry, src Source) {
	c.entry = *e
	c.source = src
}
