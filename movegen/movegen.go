// Package movegen contains all the move-generating functions: the legal
// single-checker moves for one die, and the complete legal turns for a
// roll under the play-as-many-dice-as-possible rule.
package movegen

import (
	"github.com/mvidalg/tavla/board"
	"github.com/mvidalg/tavla/move"
)

// Generator generates legal plays. It keeps a free list of boards for
// the turn expansion, so steady-state generation does not allocate a
// board per node; sequences reference only moves, never pooled boards.
//
// A Generator is not safe for concurrent use. Give each worker its own.
type Generator struct {
	free []*board.Board
	buf  []move.Move

	curStates  []*board.Board
	curSeqs    []move.Sequence
	nextStates []*board.Board
	nextSeqs   []move.Sequence
	results    []move.Sequence
	seen       map[uint64]bool
}

const initialPoolSize = 32

func NewGenerator() *Generator {
	g := &Generator{
		free: make([]*board.Board, 0, initialPoolSize),
		buf:  make([]move.Move, 0, initialPoolSize),
		seen: make(map[uint64]bool),
	}
	for i := 0; i < initialPoolSize; i++ {
		g.free = append(g.free, board.NewBoard())
	}
	return g
}

func (g *Generator) getBoard(src *board.Board) *board.Board {
	n := len(g.free)
	if n == 0 {
		return src.Clone()
	}
	b := g.free[n-1]
	g.free = g.free[:n-1]
	b.CopyFrom(src)
	return b
}

func (g *Generator) putBoard(b *board.Board) {
	g.free = append(g.free, b)
}

// SingleMoves returns the legal single-checker moves for one die, before
// any consideration of the other dice. With checkers on the bar the only
// candidates are bar entries. The returned slice is owned by the
// generator and valid until its next call; copy it to keep it.
func (g *Generator) SingleMoves(bd *board.Board, s board.Side, die uint8) []move.Move {
	g.buf = g.buf[:0]
	if bd.Bar(s) > 0 {
		pt := board.EntryPoint(s, die)
		if bd.Open(s, pt) {
			g.buf = append(g.buf, move.Move{From: board.Bar, To: board.PointLoc(pt), Die: die})
		}
		return g.buf
	}
	canOff := bd.CanBearOff(s)
	for i := 0; i < board.NumPoints; i++ {
		if !bd.Occupies(s, i) {
			continue
		}
		dest := i + int(die)*int(s)
		if dest >= 0 && dest < board.NumPoints {
			if bd.Open(s, dest) {
				g.buf = append(g.buf, move.Move{
					From: board.PointLoc(i), To: board.PointLoc(dest), Die: die})
			}
			continue
		}
		if !canOff {
			continue
		}
		// dest ran past the edge. An exact-distance bear-off is always
		// legal; overshooting with a larger die is only allowed from the
		// rearmost checker.
		exact := dest == board.NumPoints || dest == -1
		if exact || rearmost(bd, s, i) {
			g.buf = append(g.buf, move.Move{
				From: board.PointLoc(i), To: board.Off, Die: die})
		}
	}
	return g.buf
}

// rearmost reports whether pt holds s's checker farthest from the exit.
func rearmost(bd *board.Board, s board.Side, pt int) bool {
	if s == board.White {
		for i := 0; i < pt; i++ {
			if bd.Occupies(s, i) {
				return false
			}
		}
		return true
	}
	for i := pt + 1; i < board.NumPoints; i++ {
		if bd.Occupies(s, i) {
			return false
		}
	}
	return true
}

// GenAll returns every distinct legal turn for the roll. Both orders of a
// non-double roll are expanded, a double is expanded to four dice, and
// partials that get stuck are carried so they can still compete; at the
// end only turns using the maximum number of dice survive, per the rule
// that a player must play as many dice as possible. An empty result means
// the side has to pass.
//
// The returned slice (not the sequences in it) is reused by the next
// GenAll call; copy it if it needs to outlive that.
func (g *Generator) GenAll(bd *board.Board, s board.Side, dice board.Dice) []move.Sequence {
	g.results = g.results[:0]
	n := dice.Len()
	if n == 0 {
		return g.results
	}
	clear(g.seen)

	var ords [2][4]uint8
	nOrds := 1
	for i := 0; i < n; i++ {
		ords[0][i] = dice.Get(i)
	}
	if n == 2 && dice.Get(0) != dice.Get(1) {
		ords[1][0], ords[1][1] = dice.Get(1), dice.Get(0)
		nOrds = 2
	}

	maxLen := 0
	for oi := 0; oi < nOrds; oi++ {
		g.curStates = append(g.curStates[:0], g.getBoard(bd))
		g.curSeqs = append(g.curSeqs[:0], nil)
		for di := 0; di < n; di++ {
			die := ords[oi][di]
			g.nextStates = g.nextStates[:0]
			g.nextSeqs = g.nextSeqs[:0]
			for si, st := range g.curStates {
				seq := g.curSeqs[si]
				moves := g.SingleMoves(st, s, die)
				if len(moves) == 0 {
					// stuck for this die; the partial may still turn out
					// to be maximal
					g.nextStates = append(g.nextStates, st)
					g.nextSeqs = append(g.nextSeqs, seq)
					continue
				}
				for _, m := range moves {
					ns := g.getBoard(st)
					// m came out of SingleMoves on st, so this cannot fail
					_ = ns.ApplyMove(s, m.From, m.To, m.Die)
					nseq := make(move.Sequence, len(seq)+1)
					copy(nseq, seq)
					nseq[len(seq)] = m
					g.nextStates = append(g.nextStates, ns)
					g.nextSeqs = append(g.nextSeqs, nseq)
				}
				g.putBoard(st)
			}
			g.curStates, g.nextStates = g.nextStates, g.curStates
			g.curSeqs, g.nextSeqs = g.nextSeqs, g.curSeqs
		}
		for si, st := range g.curStates {
			g.putBoard(st)
			seq := g.curSeqs[si]
			if len(seq) > maxLen {
				maxLen = len(seq)
			}
			g.results = append(g.results, seq)
		}
	}

	if maxLen == 0 {
		g.results = g.results[:0]
		return g.results
	}
	kept := g.results[:0]
	for _, seq := range g.results {
		if len(seq) != maxLen {
			continue
		}
		k := seq.Key()
		if g.seen[k] {
			continue
		}
		g.seen[k] = true
		kept = append(kept, seq)
	}
	g.results = kept
	return g.results
}
