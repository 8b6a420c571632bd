// Package eval scores backgammon positions statically. The evaluator is
// phase aware: contact positions are scored on structure (blots, primes,
// anchors, bar checkers), pure races on pip count and borne-off
// progress. Scores are from a perspective and strictly antisymmetric, so
// one evaluation serves both the maximizing and the minimizing side of
// the search.
package eval

import (
	"github.com/mvidalg/tavla/board"
)

type Evaluator struct {
	w Weights
}

func New(w Weights) *Evaluator { return &Evaluator{w: w} }

func (e *Evaluator) Weights() Weights { return e.w }

// Score rates the position for pov; higher is better for pov.
// Score(bd, White) == -Score(bd, Black) holds exactly.
func (e *Evaluator) Score(bd *board.Board, pov board.Side) float64 {
	opp := pov.Opponent()
	if bd.Off(pov) == board.CheckersPerSide {
		return WinScore
	}
	if bd.Off(opp) == board.CheckersPerSide {
		return -WinScore
	}
	if e.IsRace(bd) {
		return e.w.RacePip*float64(bd.PipCount(opp)-bd.PipCount(pov)) +
			e.w.RaceBorneOff*float64(int(bd.Off(pov))-int(bd.Off(opp)))
	}
	return e.contact(bd, pov) - e.contact(bd, opp)
}

// IsRace reports whether the position is a pure race: both sides far
// enough home (borne-off checkers count toward that), or a pip gap so
// large that structure no longer decides the game.
func (e *Evaluator) IsRace(bd *board.Board) bool {
	if homeBound(bd, board.White) >= e.w.RaceHomeMin &&
		homeBound(bd, board.Black) >= e.w.RaceHomeMin {
		return true
	}
	gap := bd.PipCount(board.White) - bd.PipCount(board.Black)
	if gap < 0 {
		gap = -gap
	}
	return gap > e.w.RacePipGap
}

// QuickScore is a cheap positional preference: pip and borne-off
// differentials only, no structure scan. The two-ply search uses it to
// rank opponent replies before spending full evaluations on the best
// few. Also antisymmetric.
func (e *Evaluator) QuickScore(bd *board.Board, pov board.Side) float64 {
	opp := pov.Opponent()
	return float64(bd.PipCount(opp)-bd.PipCount(pov)) +
		e.w.RaceBorneOff*float64(int(bd.Off(pov))-int(bd.Off(opp)))
}

// homeBound counts s's checkers that are in the home quadrant or already
// borne off.
func homeBound(bd *board.Board, s board.Side) int {
	lo, hi := board.HomeRange(s)
	n := int(bd.Off(s))
	for i := lo; i <= hi; i++ {
		n += bd.CheckerCount(s, i)
	}
	return n
}

// anchorPoints are the two deep anchors in the opponent's home board,
// the opponent's 4 and 5 points.
func anchorPoints(s board.Side) (int, int) {
	if s == board.White {
		return 4, 5
	}
	return 18, 19
}

// contact scores the structural features of one side.
func (e *Evaluator) contact(bd *board.Board, s board.Side) float64 {
	sc := -e.w.ContactPip * float64(bd.PipCount(s))
	sc -= e.w.Bar * float64(bd.Bar(s))
	sc += e.w.BorneOff * float64(bd.Off(s))

	lo, hi := board.HomeRange(s)
	runLen := 0
	for i := 0; i < board.NumPoints; i++ {
		n := bd.CheckerCount(s, i)
		if n == 1 {
			pen := e.w.Blot
			if i >= lo && i <= hi {
				// a blot in our own home gets hit straight off the bar
				pen *= e.w.HomeBlotScale
			}
			sc -= pen
		}
		if n >= 2 {
			runLen++
			continue
		}
		sc += e.primeBonus(runLen)
		runLen = 0
	}
	sc += e.primeBonus(runLen)

	a1, a2 := anchorPoints(s)
	if bd.CheckerCount(s, a1) >= 2 {
		sc += e.w.Anchor
	}
	if bd.CheckerCount(s, a2) >= 2 {
		sc += e.w.Anchor
	}
	return sc
}

// primeBonus escalates quadratically with the length of a wall of made
// points. Anything shorter than three points is not a prime.
func (e *Evaluator) primeBonus(runLen int) float64 {
	if runLen < 3 {
		return 0
	}
	k := float64(runLen - 2)
	return e.w.Prime * k * k
}
