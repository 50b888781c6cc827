package flash

// Sim is an in-memory NOR flash used on host builds and in tests.
//
// Besides the NOR rules it can inject faults: power loss after a budget of
// program operations, bits stuck high on given halfwords (verify failures),
// and failing erases.
type Sim struct {
	base     uint32
	pageSize uint32
	mem      []byte
	locked   bool

	budget int // program ops left before power loss; <0 means unlimited
	dead   bool
	stuck  map[uint32]uint16

	FailErase bool

	// Counters for assertions.
	Writes  int
	Erases  int
	Unlocks int
}

// NewSim returns an erased, locked flash of pages*pageSize bytes mapped at base.
func NewSim(base, pageSize uint32, pages int) *Sim {
	s := &Sim{
		base:     base,
		pageSize: pageSize,
		mem:      make([]byte, int(pageSize)*pages),
		locked:   true,
		budget:   -1,
	}
	for i := range s.mem {
		s.mem[i] = 0xFF
	}
	return s
}

// NewSimFromImage maps a copy of img at base. A trailing partial page is
// padded erased.
func NewSimFromImage(base, pageSize uint32, img []byte) *Sim {
	pages := (len(img) + int(pageSize) - 1) / int(pageSize)
	if pages == 0 {
		pages = 1
	}
	s := NewSim(base, pageSize, pages)
	copy(s.mem, img)
	return s
}

func (s *Sim) PageSize() uint32 { return s.pageSize }
func (s *Sim) Base() uint32     { return s.base }
func (s *Sim) Unlock()          { s.locked = false; s.Unlocks++ }
func (s *Sim) Lock()            { s.locked = true }
func (s *Sim) Locked() bool     { return s.locked }

// CutPowerAfter lets n more program or erase operations succeed; every later
// one fails with ErrPowerLoss and changes nothing.
func (s *Sim) CutPowerAfter(n int) { s.budget = n; s.dead = false }

// PowerCycle restores power and lifts the budget. Memory is kept.
func (s *Sim) PowerCycle() {
	s.budget = -1
	s.dead = false
	s.locked = true
}

// StickBits makes the given bits of the halfword at addr read back as 1
// after programming.
func (s *Sim) StickBits(addr uint32, mask uint16) {
	if s.stuck == nil {
		s.stuck = make(map[uint32]uint16)
	}
	s.stuck[addr] = mask
}

// Bytes exposes the backing memory.
func (s *Sim) Bytes() []byte { return s.mem }

func (s *Sim) offset(addr uint32, n int) (int, error) {
	if addr < s.base {
		return 0, ErrOutOfRange
	}
	off := int(addr - s.base)
	if off+n > len(s.mem) {
		return 0, ErrOutOfRange
	}
	return off, nil
}

func (s *Sim) spend() error {
	if s.dead {
		return ErrPowerLoss
	}
	if s.budget == 0 {
		s.dead = true
		return ErrPowerLoss
	}
	if s.budget > 0 {
		s.budget--
	}
	return nil
}

func (s *Sim) ErasePage(addr uint32) error {
	if s.locked {
		return ErrLocked
	}
	if addr%s.pageSize != 0 {
		return ErrUnaligned
	}
	off, err := s.offset(addr, int(s.pageSize))
	if err != nil {
		return err
	}
	if err := s.spend(); err != nil {
		return err
	}
	if s.FailErase {
		return ErrEraseFailed
	}
	for i := off; i < off+int(s.pageSize); i++ {
		s.mem[i] = 0xFF
	}
	s.Erases++
	return nil
}

func (s *Sim) WriteHalfWord(addr uint32, v uint16) error {
	if s.locked {
		return ErrLocked
	}
	if addr&1 != 0 {
		return ErrUnaligned
	}
	off, err := s.offset(addr, 2)
	if err != nil {
		return err
	}
	if err := s.spend(); err != nil {
		return err
	}
	cur := uint16(s.mem[off]) | uint16(s.mem[off+1])<<8
	if cur != Erased && v != 0 {
		return ErrNotErased
	}
	v |= s.stuck[addr]
	s.mem[off] = byte(v)
	s.mem[off+1] = byte(v >> 8)
	s.Writes++
	return nil
}

func (s *Sim) ReadAt(p []byte, addr uint32) error {
	off, err := s.offset(addr, len(p))
	if err != nil {
		return err
	}
	copy(p, s.mem[off:])
	return nil
}
