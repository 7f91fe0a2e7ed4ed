package draw

import (
	"fmt"
	"math/bits"

	"github.com/kingrea/touban/internal/roster"
)

// Source supplies uniformly distributed 64-bit values.
type Source interface {
	Uint64() uint64
}

// NewSource picks the bit source for a run: seeded and reproducible when seed
// is set, entropy-keyed otherwise.
func NewSource(seed *uint64) (Source, error) {
	if seed != nil {
		return NewSeeded(*seed), nil
	}
	return NewEntropy()
}

// Role names a duty a drawn record is assigned to.
type Role string

const (
	RolePrimary Role = "primary"
	RoleBackup  Role = "backup"
)

// Assignment is one drawn record together with its roster position.
type Assignment struct {
	Role   Role
	Index  int
	Record roster.Record
}

// Selection is the ordered (primary, backup) pair.
type Selection struct {
	Primary Assignment
	Backup  Assignment
}

// Select draws the primary and the backup from r. Callers must pass a roster
// with at least two records; roster.Load guarantees that.
func Select(r roster.Roster, src Source) Selection {
	picked := Assign(r, []Role{RolePrimary, RoleBackup}, src)
	return Selection{Primary: picked[0], Backup: picked[1]}
}

// Assign draws len(roles) distinct positions from r and hands them to roles
// in emission order. Records are copied; r is not modified.
func Assign(r roster.Roster, roles []Role, src Source) []Assignment {
	positions := Sample(src, len(r), len(roles))
	out := make([]Assignment, len(roles))
	for i, role := range roles {
		out[i] = Assignment{Role: role, Index: positions[i], Record: r[positions[i]]}
	}
	return out
}

// Sample returns k distinct positions out of [0, n), every ordered k-tuple
// equally likely. It runs a partial Fisher-Yates shuffle from the tail,
// i = n-1 down to n-k, swapping slot i with slot Uniform(src, i+1); the last
// k slots, in slot order, are the result. Panics when k > n.
func Sample(src Source, n, k int) []int {
	if k < 0 || k > n {
		panic(fmt.Sprintf("draw: cannot sample %d of %d", k, n))
	}
	slots := make([]int, n)
	for i := range slots {
		slots[i] = i
	}
	for i := n - 1; i >= n-k; i-- {
		j := int(Uniform(src, uint64(i+1)))
		slots[i], slots[j] = slots[j], slots[i]
	}
	out := make([]int, k)
	copy(out, slots[n-k:])
	return out
}

// Uniform returns a value in [0, n) using Lemire's multiply-shift with the
// exact rejection threshold. Every n takes the same path, powers of two
// included, so the draw sequence does not depend on the platform.
func Uniform(src Source, n uint64) uint64 {
	if n == 0 {
		panic("draw: Uniform with n == 0")
	}
	hi, lo := bits.Mul64(src.Uint64(), n)
	if lo < n {
		thresh := -n % n
		for lo < thresh {
			hi, lo = bits.Mul64(src.Uint64(), n)
		}
	}
	return hi
}
