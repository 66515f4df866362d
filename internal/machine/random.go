package machine

// nextRandom advances the xorshift state and returns its low byte.
// The sequence only depends on the configured seed.
func (m *Machine) nextRandom() uint8 {
	x := m.random
	x ^= x << 13
	x ^= x >> 17
	x ^= x << 5
	m.random = x
	return uint8(x)
}
