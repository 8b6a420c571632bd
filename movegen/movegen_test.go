package movegen

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mvidalg/tavla/board"
	"github.com/mvidalg/tavla/move"
)

func TestSingleMovesOpening(t *testing.T) {
	g := NewGenerator()
	b := board.NewBoard()
	b.SetupStandard()

	ms := g.SingleMoves(b, board.White, 3)
	// from 0 to 3, from 11 to 14, from 16 to 19, from 18 to 21
	assert.Len(t, ms, 4)
	for _, m := range ms {
		assert.Equal(t, uint8(3), m.Die)
		assert.True(t, m.To.OnBoard())
	}

	// die 5 from 0 lands on Black's five checkers at point 5
	ms = g.SingleMoves(b, board.White, 5)
	for _, m := range ms {
		assert.NotEqual(t, board.PointLoc(5), m.To)
	}
}

func TestSingleMovesBarPriority(t *testing.T) {
	g := NewGenerator()
	b := board.NewBoard()
	b.SetupStandard()
	b.SetPoint(0, 1)
	b.SetBar(board.White, 1)

	ms := g.SingleMoves(b, board.White, 3)
	require.Len(t, ms, 1)
	assert.True(t, ms[0].From.IsBar())
	assert.Equal(t, board.PointLoc(2), ms[0].To)

	// entry point blocked: no moves at all for this die, even though
	// checkers elsewhere could use it
	b.SetPoint(2, -2)
	ms = g.SingleMoves(b, board.White, 3)
	assert.Empty(t, ms)
}

func TestSingleMovesBearOff(t *testing.T) {
	g := NewGenerator()
	b := board.NewBoard()
	b.SetPoint(19, 1)
	b.SetPoint(21, 1)
	b.SetOff(board.White, 13)

	// overshoot with a 6 is allowed only from the rearmost checker
	ms := g.SingleMoves(b, board.White, 6)
	require.Len(t, ms, 1)
	assert.Equal(t, move.Move{From: board.PointLoc(19), To: board.Off, Die: 6}, ms[0])

	// a 5 bears off 19 exactly; 21 would overshoot and is not rearmost
	ms = g.SingleMoves(b, board.White, 5)
	offs := 0
	for _, m := range ms {
		if m.To.IsOff() {
			offs++
			assert.Equal(t, board.PointLoc(19), m.From)
		}
	}
	assert.Equal(t, 1, offs)

	// no bear-offs while a checker sits outside home
	b.SetPoint(10, 1)
	b.SetOff(board.White, 12)
	for _, m := range g.SingleMoves(b, board.White, 6) {
		assert.False(t, m.To.IsOff())
	}
}

func TestGenAllOpening31(t *testing.T) {
	g := NewGenerator()
	b := board.NewBoard()
	b.SetupStandard()

	seqs := g.GenAll(b, board.White, board.NewDice(3, 1))
	require.NotEmpty(t, seqs)
	for _, seq := range seqs {
		assert.Len(t, seq, 2)
	}

	// the classic play: 8/5 6/5, making the 5 point (index 19)
	found := false
	for _, seq := range seqs {
		has3, has1 := false, false
		for _, m := range seq {
			if m == (move.Move{From: board.PointLoc(16), To: board.PointLoc(19), Die: 3}) {
				has3 = true
			}
			if m == (move.Move{From: board.PointLoc(18), To: board.PointLoc(19), Die: 1}) {
				has1 = true
			}
		}
		if has3 && has1 {
			found = true
		}
	}
	assert.True(t, found, "expected a sequence making the 5 point")

	// every sequence must be playable and conserve checkers
	for _, seq := range seqs {
		c := b.Clone()
		for _, m := range seq {
			require.NoError(t, m.Apply(c, board.White))
		}
		require.NoError(t, c.VerifyCounts())
	}
}

func TestGenAllDoubles(t *testing.T) {
	g := NewGenerator()
	b := board.NewBoard()
	b.SetupStandard()

	seqs := g.GenAll(b, board.Black, board.NewDice(3, 3))
	require.NotEmpty(t, seqs)
	seen := make(map[uint64]bool)
	for _, seq := range seqs {
		assert.Len(t, seq, 4)
		assert.False(t, seen[seq.Key()], "duplicate sequence %v", seq)
		seen[seq.Key()] = true
	}
}

func TestGenAllMustUseBothDice(t *testing.T) {
	g := NewGenerator()
	b := board.NewBoard()
	// White on the bar; the 3-entry is blocked, the 5-entry is open.
	// Playing the dice as (3,5) gets one checker in and nothing more,
	// playing (5,3) enters and then moves. Only the two-move turns are
	// legal.
	b.SetBar(board.White, 1)
	b.SetPoint(18, 14)
	b.SetPoint(2, -2)

	seqs := g.GenAll(b, board.White, board.NewDice(3, 5))
	require.NotEmpty(t, seqs)
	for _, seq := range seqs {
		require.Len(t, seq, 2)
		assert.True(t, seq[0].From.IsBar())
		assert.Equal(t, uint8(5), seq[0].Die)
	}
}

func TestGenAllOnlyOneDiePlayable(t *testing.T) {
	g := NewGenerator()
	b := board.NewBoard()
	// lone White checker on 22; 23 is blocked so the 1 can never be
	// played, and the 3 bears off
	b.SetPoint(22, 1)
	b.SetOff(board.White, 14)
	b.SetPoint(23, -2)

	seqs := g.GenAll(b, board.White, board.NewDice(1, 3))
	require.Len(t, seqs, 1)
	require.Len(t, seqs[0], 1)
	assert.Equal(t, move.Move{From: board.PointLoc(22), To: board.Off, Die: 3}, seqs[0][0])
}

func TestGenAllClosedOut(t *testing.T) {
	g := NewGenerator()
	b := board.NewBoard()
	b.SetBar(board.White, 2)
	b.SetPoint(13, 13)
	for i := 0; i < 6; i++ {
		b.SetPoint(i, -2)
	}

	seqs := g.GenAll(b, board.White, board.NewDice(6, 2))
	assert.Empty(t, seqs, "a closed board forces a pass")
}

func TestGenAllDoesNotMutateInput(t *testing.T) {
	g := NewGenerator()
	b := board.NewBoard()
	b.SetupStandard()
	b.SetRoll(6, 4)
	before := b.Clone()

	_ = g.GenAll(b, board.White, b.Roll())
	assert.True(t, b.Equal(before))
}

func BenchmarkGenAllOpening(b *testing.B) {
	// the expansion reuses pooled boards; on the opening position with a
	// non-double roll this runs in the low microseconds
	g := NewGenerator()
	bd := board.NewBoard()
	bd.SetupStandard()
	dice := board.NewDice(3, 1)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		g.GenAll(bd, board.White, dice)
	}
}
