package ecs

// EntityId encodes both the entity kind (upper 32 bits) and a spawn serial (lower 32 bits)
type EntityId uint64

// NewEntityId creates an EntityId from a kind and serial
func NewEntityId(kind uint32, serial uint32) EntityId {
	return EntityId(uint64(kind)<<32 | uint64(serial))
}

// Kind extracts the kind from the entity ID
func (e EntityId) Kind() uint32 {
	return uint32(e >> 32)
}

// Serial extracts the spawn serial from the entity ID
func (e EntityId) Serial() uint32 {
	return uint32(e & 0xFFFFFFFF)
}

// Serials hands out per-kind spawn serials. Serial 0 is never issued so that
// the zero EntityId can mean "no entity".
type Serials struct {
	next map[uint32]uint32
}

// Next returns a fresh EntityId for the given kind.
func (s *Serials) Next(kind uint32) EntityId {
	if s.next == nil {
		s.next = make(map[uint32]uint32)
	}
	s.next[kind]++
	return NewEntityId(kind, s.next[kind])
}
