package zobrist

import (
	"lukechampine.com/frand"

	"github.com/mvidalg/tavla/board"
)

const bignum = 1<<63 - 2

// tableDim covers checker counts 0 through 15; all fifteen checkers of a
// side can stack on a single point.
const tableDim = board.CheckersPerSide + 1

// Hasher generates a zobrist hash for a backgammon position.
// https://en.wikipedia.org/wiki/Zobrist_hashing
type Hasher struct {
	pointTable [board.NumPoints][2][tableDim]uint64
	barTable   [2][tableDim]uint64
	offTable   [2][tableDim]uint64
	viewpoint  [2]uint64
}

func NewHasher() *Hasher {
	h := &Hasher{}
	h.Initialize()
	return h
}

func (h *Hasher) Initialize() {
	// count 0 stays zero everywhere so an empty location never perturbs
	// the key
	for i := 0; i < board.NumPoints; i++ {
		for si := 0; si < 2; si++ {
			for c := 1; c < tableDim; c++ {
				h.pointTable[i][si][c] = frand.Uint64n(bignum) + 1
			}
		}
	}
	for si := 0; si < 2; si++ {
		for c := 1; c < tableDim; c++ {
			h.barTable[si][c] = frand.Uint64n(bignum) + 1
			h.offTable[si][c] = frand.Uint64n(bignum) + 1
		}
		h.viewpoint[si] = frand.Uint64n(bignum) + 1
	}
}

// Hash keys the checker configuration (points, bars, off trays) together
// with the viewing perspective. Dice are deliberately not part of the
// key; the search caches static evaluations, which do not depend on the
// roll in progress.
func (h *Hasher) Hash(bd *board.Board, pov board.Side) uint64 {
	var key uint64
	for i := 0; i < board.NumPoints; i++ {
		n := bd.Point(i)
		switch {
		case n > 0:
			key ^= h.pointTable[i][0][n]
		case n < 0:
			key ^= h.pointTable[i][1][-n]
		}
	}
	key ^= h.barTable[0][bd.Bar(board.White)]
	key ^= h.barTable[1][bd.Bar(board.Black)]
	key ^= h.offTable[0][bd.Off(board.White)]
	key ^= h.offTable[1][bd.Off(board.Black)]
	key ^= h.viewpoint[pov.Index()]
	return key
}
