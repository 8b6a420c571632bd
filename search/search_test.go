package search

import (
	"errors"
	"math"
	"os"
	"testing"

	"github.com/matryer/is"
	"github.com/rs/zerolog"

	"github.com/mvidalg/tavla/board"
	"github.com/mvidalg/tavla/eval"
	"github.com/mvidalg/tavla/move"
	"github.com/mvidalg/tavla/movegen"
)

func TestMain(m *testing.M) {
	if os.Getenv("TAVLA_DEBUG") == "" {
		zerolog.SetGlobalLevel(zerolog.Disabled)
	}
	os.Exit(m.Run())
}

func newSolver() (*Solver, *movegen.Generator, *eval.Evaluator) {
	gen := movegen.NewGenerator()
	ev := eval.New(eval.DefaultWeights())
	return NewSolver(gen, ev), gen, ev
}

// closedOutBoard has White's home board fully made and two Black
// checkers on the bar, so Black cannot enter on any roll.
func closedOutBoard() *board.Board {
	bd := board.NewBoard()
	for pt := 18; pt <= 23; pt++ {
		bd.SetPoint(pt, 2)
	}
	bd.SetPoint(12, 2)
	bd.SetPoint(6, 1)
	bd.SetBar(board.Black, 2)
	bd.SetPoint(0, -13)
	return bd
}

func legalKeys(gen *movegen.Generator, bd *board.Board, s board.Side, dice board.Dice) map[uint64]bool {
	keys := make(map[uint64]bool)
	for _, seq := range gen.GenAll(bd, s, dice) {
		keys[seq.Key()] = true
	}
	return keys
}

func TestSolveRequiresRoll(t *testing.T) {
	is := is.New(t)
	s, _, _ := newSolver()
	bd := board.NewBoard()
	bd.SetupStandard()

	_, _, err := s.SolveOnePly(bd, board.White)
	is.True(errors.Is(err, ErrNoRoll))
}

func TestForcedPassStandsPat(t *testing.T) {
	is := is.New(t)
	s, _, ev := newSolver()
	bd := closedOutBoard()
	bd.SetRoll(3, 5)

	seq, val, err := s.SolveOnePly(bd, board.Black)
	is.NoErr(err)
	is.Equal(len(seq), 0) // no entry from the bar means a pass
	is.Equal(val, ev.Score(bd, board.Black))
}

func TestOpeningSolveIsLegal(t *testing.T) {
	is := is.New(t)
	s, gen, _ := newSolver()
	bd := board.NewBoard()
	bd.SetupStandard()
	bd.SetRoll(3, 1)
	snapshot := bd.Clone()

	seq, val, err := s.SolveOnePly(bd, board.White)
	is.NoErr(err)
	is.Equal(len(seq), 2)
	is.True(val < eval.WinScore)
	is.True(bd.Equal(snapshot)) // solving must not disturb the board

	keys := legalKeys(gen, bd, board.White, bd.Roll())
	is.True(keys[seq.Key()])
}

func TestImmediateWinShortCircuits(t *testing.T) {
	is := is.New(t)
	s, _, _ := newSolver()
	bd := board.NewBoard()
	bd.SetPoint(23, 1)
	bd.SetOff(board.White, 14)
	bd.SetPoint(0, -1)
	bd.SetOff(board.Black, 14)
	bd.SetRoll(6, 2)

	seq, val, err := s.SolveOnePly(bd, board.White)
	is.NoErr(err)
	is.Equal(val, eval.WinScore)
	is.Equal(len(seq), 1)
	is.True(seq[0].To.IsOff())
}

// With the opponent closed out, every dice outcome leaves the position
// untouched, so the expectation must collapse to the best candidate's
// static score. Double sixes keep White's home board intact in every
// line, preserving the closeout.
func TestNoReplyCollapsesToStatic(t *testing.T) {
	is := is.New(t)
	s, gen, ev := newSolver()
	bd := closedOutBoard()
	bd.SetRoll(6, 6)

	seq, val, err := s.SolveOnePly(bd, board.White)
	is.NoErr(err)
	is.Equal(len(seq), 4)

	bestStatic := math.Inf(-1)
	var after board.Board
	for _, cand := range gen.GenAll(bd, board.White, bd.Roll()) {
		is.NoErr(applySequence(&after, bd, board.White, cand))
		if v := ev.Score(&after, board.White); v > bestStatic {
			bestStatic = v
		}
	}
	is.True(math.Abs(val-bestStatic) < 1e-9)
}

func TestSolveIsDeterministic(t *testing.T) {
	is := is.New(t)
	s, _, _ := newSolver()
	bd := board.NewBoard()
	bd.SetupStandard()
	bd.SetRoll(6, 5)

	seq1, val1, err := s.SolveTwoPly(bd, board.White)
	is.NoErr(err)
	seq2, val2, err := s.SolveTwoPly(bd, board.White)
	is.NoErr(err)
	is.True(seq1.Equal(seq2))
	is.Equal(val1, val2)
}

func TestTwoPlyReturnsLegalTurn(t *testing.T) {
	is := is.New(t)
	s, gen, _ := newSolver()
	bd := board.NewBoard()
	bd.SetupStandard()
	bd.SetRoll(4, 2)
	snapshot := bd.Clone()

	seq, _, err := s.SolveTwoPly(bd, board.Black)
	is.NoErr(err)
	is.True(bd.Equal(snapshot))

	keys := legalKeys(gen, bd, board.Black, bd.Roll())
	is.True(keys[seq.Key()])

	st := s.Stats()
	is.True(st.Candidates <= DefaultBeam)
	is.True(st.CacheLookups > 0)
}

func TestSolveRejectsUnknownDepth(t *testing.T) {
	is := is.New(t)
	s, _, _ := newSolver()
	bd := board.NewBoard()
	bd.SetupStandard()
	bd.SetRoll(3, 1)

	_, _, err := s.Solve(bd, board.White, 3)
	is.True(err != nil)
}

func TestCacheHitsOnTranspositions(t *testing.T) {
	is := is.New(t)
	s, _, _ := newSolver()
	bd := board.NewBoard()
	bd.SetupStandard()
	bd.SetRoll(3, 1)

	_, _, err := s.SolveOnePly(bd, board.White)
	is.NoErr(err)
	st := s.Stats()
	// Opponent reply lines transpose heavily from the opening.
	is.True(st.CacheHits > 0)
	is.Equal(st.CacheLookups, st.CacheHits+st.Evals)
}

var benchSeq move.Sequence

func BenchmarkSolveOnePlyOpening(b *testing.B) {
	s, _, _ := newSolver()
	bd := board.NewBoard()
	bd.SetupStandard()
	bd.SetRoll(3, 1)
	b.ResetTimer()
	// Around 25ms/op on a Ryzen 3900X. Almost all of it is reply
	// generation across the 21 outcomes.
	for i := 0; i < b.N; i++ {
		seq, _, err := s.SolveOnePly(bd, board.White)
		if err != nil {
			b.Fatal(err)
		}
		benchSeq = seq
	}
}
