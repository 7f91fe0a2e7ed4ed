package draw

import (
	"crypto/rand"
	"encoding/binary"
	"fmt"
	"math/bits"
)

const (
	chachaRounds = 12
	blockWords   = 16

	pcgMultiplier = 6364136223846793005
	pcgIncrement  = 11634580456548434143
)

// "expand 32-byte k"
var sigma = [4]uint32{0x61707865, 0x3320646e, 0x79622d32, 0x6b206574}

// ChaCha12 is the reference bit source: the ChaCha keystream with 12 rounds,
// a 64-bit block counter starting at zero and a zero nonce. Output words are
// consumed in keystream order.
type ChaCha12 struct {
	key     [8]uint32
	counter uint64
	block   [blockWords]uint32
	pos     int
	rounds  int
}

// NewSeeded returns a source whose whole output is determined by seed. The
// 256-bit key is filled with eight PCG32 outputs stepped from seed.
func NewSeeded(seed uint64) *ChaCha12 {
	return newChaCha(expandSeed(seed), chachaRounds)
}

// NewEntropy returns a source keyed from the operating system's CSPRNG.
func NewEntropy() (*ChaCha12, error) {
	var raw [32]byte
	if _, err := rand.Read(raw[:]); err != nil {
		return nil, fmt.Errorf("draw: read entropy: %w", err)
	}
	var key [8]uint32
	for i := range key {
		key[i] = binary.LittleEndian.Uint32(raw[i*4:])
	}
	return newChaCha(key, chachaRounds), nil
}

func newChaCha(key [8]uint32, rounds int) *ChaCha12 {
	return &ChaCha12{key: key, pos: blockWords, rounds: rounds}
}

// Uint32 returns the next keystream word.
func (c *ChaCha12) Uint32() uint32 {
	if c.pos == blockWords {
		chachaBlock(&c.block, &c.key, c.counter, c.rounds)
		c.counter++
		c.pos = 0
	}
	w := c.block[c.pos]
	c.pos++
	return w
}

// Uint64 joins two keystream words, the first one as the low half.
func (c *ChaCha12) Uint64() uint64 {
	lo := uint64(c.Uint32())
	hi := uint64(c.Uint32())
	return lo | hi<<32
}

func expandSeed(seed uint64) [8]uint32 {
	var key [8]uint32
	state := seed
	for i := range key {
		// Step before output so low-weight seeds still spread.
		state = state*pcgMultiplier + pcgIncrement
		xorshifted := uint32(((state >> 18) ^ state) >> 27)
		rot := int(state >> 59)
		key[i] = bits.RotateLeft32(xorshifted, -rot)
	}
	return key
}

func chachaBlock(out *[blockWords]uint32, key *[8]uint32, counter uint64, rounds int) {
	var in [blockWords]uint32
	copy(in[0:4], sigma[:])
	copy(in[4:12], key[:])
	in[12] = uint32(counter)
	in[13] = uint32(counter >> 32)

	x := in
	for i := 0; i < rounds; i += 2 {
		// column round
		quarterRound(&x, 0, 4, 8, 12)
		quarterRound(&x, 1, 5, 9, 13)
		quarterRound(&x, 2, 6, 10, 14)
		quarterRound(&x, 3, 7, 11, 15)
		// diagonal round
		quarterRound(&x, 0, 5, 10, 15)
		quarterRound(&x, 1, 6, 11, 12)
		quarterRound(&x, 2, 7, 8, 13)
		quarterRound(&x, 3, 4, 9, 14)
	}
	for i := range out {
		out[i] = x[i] + in[i]
	}
}

func quarterRound(x *[blockWords]uint32, a, b, c, d int) {
	x[a] += x[b]
	x[d] = bits.RotateLeft32(x[d]^x[a], 16)
	x[c] += x[d]
	x[b] = bits.RotateLeft32(x[b]^x[c], 12)
	x[a] += x[b]
	x[d] = bits.RotateLeft32(x[d]^x[a], 8)
	x[c] += x[d]
	x[b] = bits.RotateLeft32(x[b]^x[c], 7)
}
