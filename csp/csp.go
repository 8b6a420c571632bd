// Package csp prunes candidate first moves with arc consistency before
// the search ranks whole turns. Each usable die of the roll is a
// variable whose domain is that die's legal first moves on the root
// position; the binary constraint between two dice demands that playing
// a move for one still leaves the other at least one legal move.
// Running AC-3 to the fixed point removes first moves that would strand
// a die.
//
// The propagator narrows candidate ordering only; it never creates or
// destroys legality. Any filtering that would wipe out every legal turn
// is discarded and the full set is kept.
package csp

import (
	"github.com/rs/zerolog/log"
	"github.com/samber/lo"

	"github.com/mvidalg/tavla/board"
	"github.com/mvidalg/tavla/move"
	"github.com/mvidalg/tavla/movegen"
)

// Propagator is the constraint network for one (position, side, roll)
// triple. Build one per decision; it is cheap and holds no global state.
type Propagator struct {
	gen     *movegen.Generator
	bd      *board.Board
	side    board.Side
	dice    board.Dice
	domains [][]move.Move
	scratch board.Board
}

// New seeds one variable per usable die (four for a double, like the
// roll itself) with the die's legal first moves on the root position.
func New(gen *movegen.Generator, bd *board.Board, s board.Side, dice board.Dice) *Propagator {
	p := &Propagator{gen: gen, bd: bd, side: s, dice: dice}
	p.domains = make([][]move.Move, dice.Len())
	for i := range p.domains {
		// SingleMoves reuses its buffer; domains keep their own copy
		p.domains[i] = append([]move.Move(nil), gen.SingleMoves(bd, s, dice.Get(i))...)
	}
	return p
}

// Domains exposes the current domains, mainly for tests and tracing.
func (p *Propagator) Domains() [][]move.Move { return p.domains }

// RunAC3 propagates to the fixed point. It reports false when some die's
// domain is empty, meaning no assignment can play every die.
func (p *Propagator) RunAC3() bool {
	n := len(p.domains)
	for i := 0; i < n; i++ {
		if len(p.domains[i]) == 0 {
			log.Debug().Int("die", int(p.dice.Get(i))).Msg("die has no first moves")
			return false
		}
	}
	if n < 2 {
		return true
	}

	type arc struct{ i, j int }
	queue := make([]arc, 0, n*n)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			if i != j {
				queue = append(queue, arc{i, j})
			}
		}
	}
	for head := 0; head < len(queue); head++ {
		a := queue[head]
		if !p.revise(a.i, a.j) {
			continue
		}
		if len(p.domains[a.i]) == 0 {
			log.Debug().Int("die", int(p.dice.Get(a.i))).Msg("domain wiped out during propagation")
			return false
		}
		for k := 0; k < n; k++ {
			if k != a.i && k != a.j {
				queue = append(queue, arc{k, a.i})
			}
		}
	}
	return true
}

// revise deletes from die i's domain every move that would leave die j
// without a legal follow-up, reporting whether anything was deleted.
func (p *Propagator) revise(i, j int) bool {
	revised := false
	kept := p.domains[i][:0]
	for _, m := range p.domains[i] {
		if p.supports(m, j) {
			kept = append(kept, m)
		} else {
			revised = true
		}
	}
	p.domains[i] = kept
	return revised
}

func (p *Propagator) supports(m move.Move, j int) bool {
	p.scratch.CopyFrom(p.bd)
	if err := m.Apply(&p.scratch, p.side); err != nil {
		return false
	}
	return len(p.gen.SingleMoves(&p.scratch, p.side, p.dice.Get(j))) > 0
}

// FilterSequences keeps the turns whose first move survived propagation
// (the union across domains). If that would throw away every turn, the
// input is returned unchanged: the filter is advisory.
func (p *Propagator) FilterSequences(seqs []move.Sequence) []move.Sequence {
	if len(p.domains) < 2 || len(seqs) == 0 {
		return seqs
	}
	first := make(map[move.Move]bool)
	for _, d := range p.domains {
		for _, m := range d {
			first[m] = true
		}
	}
	filtered := lo.Filter(seqs, func(seq move.Sequence, _ int) bool {
		return len(seq) > 0 && first[seq[0]]
	})
	if len(filtered) == 0 {
		log.Debug().Msg("arc consistency rejected every turn; keeping all")
		return seqs
	}
	return filtered
}

// Filter runs the whole pipeline for one decision: build the network,
// propagate, and narrow seqs to turns opening with a surviving first
// move. On wipeout seqs comes back unchanged; how many dice are actually
// playable was already settled by the maximum-dice rule in the
// generator.
func Filter(gen *movegen.Generator, bd *board.Board, s board.Side, dice board.Dice, seqs []move.Sequence) []move.Sequence {
	if dice.Len() < 2 || len(seqs) == 0 {
		return seqs
	}
	p := New(gen, bd, s, dice)
	if !p.RunAC3() {
		return seqs
	}
	filtered := p.FilterSequences(seqs)
	if len(filtered) < len(seqs) {
		log.Debug().
			Int("before", len(seqs)).
			Int("after", len(filtered)).
			Msg("arc consistency narrowed candidates")
	}
	return filtered
}
