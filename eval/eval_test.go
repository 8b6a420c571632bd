package eval

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mvidalg/tavla/board"
)

func samplePositions() []*board.Board {
	opening := board.NewBoard()
	opening.SetupStandard()

	hitMess := board.NewBoard()
	hitMess.SetupStandard()
	hitMess.SetPoint(10, 1)
	hitMess.SetPoint(11, 4)
	hitMess.SetBar(board.Black, 1)
	hitMess.SetPoint(23, -1)

	race := board.NewBoard()
	race.SetPoint(19, 5)
	race.SetPoint(20, 5)
	race.SetOff(board.White, 5)
	race.SetPoint(2, -7)
	race.SetPoint(4, -4)
	race.SetOff(board.Black, 4)

	wall := board.NewBoard()
	wall.SetPoint(6, 2)
	wall.SetPoint(7, 2)
	wall.SetPoint(8, 2)
	wall.SetPoint(9, 2)
	wall.SetPoint(0, 7)
	wall.SetBar(board.White, 0)
	wall.SetPoint(18, -5)
	wall.SetPoint(12, -5)
	wall.SetPoint(19, -4)
	wall.SetBar(board.Black, 1)

	return []*board.Board{opening, hitMess, race, wall}
}

func TestScoreAntisymmetry(t *testing.T) {
	e := New(DefaultWeights())
	for i, b := range samplePositions() {
		w := e.Score(b, board.White)
		bl := e.Score(b, board.Black)
		assert.Equal(t, w, -bl, "position %d", i)

		qw := e.QuickScore(b, board.White)
		qb := e.QuickScore(b, board.Black)
		assert.Equal(t, qw, -qb, "position %d", i)
	}
}

func TestTerminalDominates(t *testing.T) {
	e := New(DefaultWeights())
	b := board.NewBoard()
	b.SetOff(board.White, 15)
	b.SetPoint(0, -10)
	b.SetPoint(4, -5)

	assert.Equal(t, WinScore, e.Score(b, board.White))
	assert.Equal(t, -WinScore, e.Score(b, board.Black))
}

func TestIsRace(t *testing.T) {
	e := New(DefaultWeights())

	opening := board.NewBoard()
	opening.SetupStandard()
	assert.False(t, e.IsRace(opening))

	// everyone home or off
	home := board.NewBoard()
	home.SetPoint(19, 10)
	home.SetOff(board.White, 5)
	home.SetPoint(3, -12)
	home.SetOff(board.Black, 3)
	assert.True(t, e.IsRace(home))

	// contact structure still on the board, but White is miles ahead
	runaway := board.NewBoard()
	runaway.SetPoint(20, 15)
	runaway.SetPoint(10, -5)
	runaway.SetPoint(12, -10)
	assert.True(t, e.IsRace(runaway))
}

func TestRaceScoringIgnoresStructure(t *testing.T) {
	e := New(DefaultWeights())
	// both racing; White one lone checker per point, which would be a
	// heavy blot penalty in a contact position
	b := board.NewBoard()
	b.SetPoint(18, 1)
	b.SetPoint(19, 1)
	b.SetPoint(20, 1)
	b.SetOff(board.White, 12)
	b.SetPoint(1, -6)
	b.SetPoint(2, -9)
	require.True(t, e.IsRace(b))

	pipDiff := float64(b.PipCount(board.Black) - b.PipCount(board.White))
	offDiff := float64(int(b.Off(board.White)) - int(b.Off(board.Black)))
	w := e.Weights()
	assert.Equal(t, w.RacePip*pipDiff+w.RaceBorneOff*offDiff, e.Score(b, board.White))
}

func TestBarHurts(t *testing.T) {
	e := New(DefaultWeights())
	b := board.NewBoard()
	b.SetupStandard()

	hit := b.Clone()
	hit.SetPoint(0, 1)
	hit.SetBar(board.White, 1)

	assert.Less(t, e.Score(hit, board.White), e.Score(b, board.White))
	assert.Greater(t, e.Score(hit, board.Black), e.Score(b, board.Black))
}

func TestHomeBlotPenalizedMore(t *testing.T) {
	e := New(DefaultWeights())

	homeBlot := board.NewBoard()
	homeBlot.SetPoint(19, 1)

	outsideBlot := board.NewBoard()
	outsideBlot.SetPoint(10, 1)

	// the home blot is closer to the exit so it wins a little on pips,
	// but the amplified blot penalty outweighs that with stock weights
	assert.Less(t, e.Score(homeBlot, board.White), e.Score(outsideBlot, board.White))
}

func TestPrimeBonus(t *testing.T) {
	e := New(DefaultWeights())

	// the Black formation is identical on both boards so it cancels,
	// and it keeps the pip gap small enough to stay a contact position
	prime := board.NewBoard()
	split := board.NewBoard()
	for _, b := range []*board.Board{prime, split} {
		for _, pt := range []int{14, 15, 16, 17} {
			b.SetPoint(pt, -2)
		}
	}
	for _, pt := range []int{8, 9, 10, 11} {
		prime.SetPoint(pt, 2)
	}
	for _, pt := range []int{7, 9, 11, 13} {
		split.SetPoint(pt, 2)
	}

	// same checker count; the contiguous wall is worth more even though
	// the split points are a few pips further along
	assert.Greater(t, e.Score(prime, board.White), e.Score(split, board.White))

	// a longer wall escalates faster than linearly
	assert.Greater(t,
		e.primeBonus(5)-e.primeBonus(4),
		e.primeBonus(4)-e.primeBonus(3))
}

func TestAnchorBonus(t *testing.T) {
	e := New(DefaultWeights())

	anchored := board.NewBoard()
	anchored.SetPoint(4, 2)
	anchored.SetPoint(20, -2)

	deep := board.NewBoard()
	deep.SetPoint(1, 2)
	deep.SetPoint(20, -2)

	// holding the opponent's 5 point beats the deeper point 2, pip edge
	// included
	assert.Greater(t, e.Score(anchored, board.White), e.Score(deep, board.White))
}

func TestWeightsRoundTrip(t *testing.T) {
	w := DefaultWeights()
	w.RacePip = 1.5
	w.Prime = 7.25

	path := filepath.Join(t.TempDir(), "weights.yml")
	require.NoError(t, w.Save(path))

	got, err := LoadWeights(path)
	require.NoError(t, err)
	assert.Equal(t, w, got)
}

func TestLoadWeightsPartialFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "partial.yml")
	require.NoError(t, os.WriteFile(path, []byte("race_pip: 2.5\n"), 0644))

	got, err := LoadWeights(path)
	require.NoError(t, err)
	assert.Equal(t, 2.5, got.RacePip)
	assert.Equal(t, DefaultWeights().Bar, got.Bar)
}
