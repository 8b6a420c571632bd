// Package game coordinates a single backgammon game: the authoritative
// board, whose turn it is, what was rolled, which turns are legal, and
// when and how the game ended.
package game

import (
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"lukechampine.com/frand"

	"github.com/mvidalg/tavla/board"
	"github.com/mvidalg/tavla/move"
	"github.com/mvidalg/tavla/movegen"
)

var (
	// ErrGameOver is returned by mutating calls once the game has ended.
	ErrGameOver = errors.New("the game is over")
	// ErrNotRolled is returned when a turn is committed before the dice
	// were rolled.
	ErrNotRolled = errors.New("no dice rolled yet")
	// ErrNotLegal is returned for a sequence the current roll does not
	// allow.
	ErrNotLegal = errors.New("not a legal turn")
	// ErrPassWithMoves is returned for a pass while legal turns exist.
	ErrPassWithMoves = errors.New("cannot pass while legal turns exist")
)

// EndReason says how a game ended, if it has.
type EndReason int

const (
	NotOver EndReason = iota
	Win
	Stalemate
	TurnLimit
)

func (r EndReason) String() string {
	switch r {
	case NotOver:
		return "playing"
	case Win:
		return "win"
	case Stalemate:
		return "stalemate"
	case TurnLimit:
		return "turn limit"
	}
	return fmt.Sprintf("EndReason(%d)", int(r))
}

// stalePassLimit calls the game once this many consecutive passes pile
// up. Mutual closeouts would otherwise roll dice forever.
const stalePassLimit = 6

// DefaultMaxTurns caps harness games that neither side manages to win.
const DefaultMaxTurns = 200

// TurnRecord is one completed turn. Elapsed measures from the roll to
// the commit.
type TurnRecord struct {
	Number  int
	Side    board.Side
	Roll    board.Dice
	Seq     move.Sequence
	Pass    bool
	Elapsed time.Duration
}

// Game holds one game in progress. Not safe for concurrent use.
type Game struct {
	bd         *board.Board
	gen        *movegen.Generator
	turn       board.Side
	turnNo     int
	history    []TurnRecord
	passStreak int
	maxTurns   int
	rolledAt   time.Time
	reason     EndReason
	winner     board.Side
}

// NewGame sets up the standard starting position with White to move.
// Pass nil to let the game create its own generator.
func NewGame(gen *movegen.Generator) *Game {
	if gen == nil {
		gen = movegen.NewGenerator()
	}
	bd := board.NewBoard()
	bd.SetupStandard()
	return &Game{
		bd:       bd,
		gen:      gen,
		turn:     board.White,
		maxTurns: DefaultMaxTurns,
	}
}

// Board returns the live board. Commit turns through the game rather
// than mutating it, unless you are setting up a position.
func (g *Game) Board() *board.Board { return g.bd }

// Turn returns the side to move.
func (g *Game) Turn() board.Side { return g.turn }

// SetTurn hands the move to s. Meant for scripted positions.
func (g *Game) SetTurn(s board.Side) { g.turn = s }

// TurnNumber returns how many turns have been committed.
func (g *Game) TurnNumber() int { return g.turnNo }

// History returns the committed turns, oldest first.
func (g *Game) History() []TurnRecord { return g.history }

// SetMaxTurns changes the turn cap. Zero disables it.
func (g *Game) SetMaxTurns(n int) { g.maxTurns = n }

// Over reports whether the game has ended.
func (g *Game) Over() bool { return g.reason != NotOver }

// Result returns how the game ended, or NotOver.
func (g *Game) Result() EndReason { return g.reason }

// Winner returns the winning side if the game ended in a win.
func (g *Game) Winner() (board.Side, bool) {
	return g.winner, g.reason == Win
}

func rollDie() uint8 { return uint8(frand.Intn(6)) + 1 }

// StartGame performs the opening roll: each side rolls one die, doubles
// are rerolled, and the higher die's owner moves first playing exactly
// those two dice.
func (g *Game) StartGame() (board.Side, board.Dice) {
	var d1, d2 uint8
	for {
		d1, d2 = rollDie(), rollDie()
		if d1 != d2 {
			break
		}
	}
	if d1 > d2 {
		g.turn = board.White
	} else {
		g.turn = board.Black
	}
	g.bd.SetRoll(d1, d2)
	g.rolledAt = time.Now()
	roll := g.bd.Roll()
	log.Debug().Str("side", g.turn.String()).Str("roll", roll.String()).
		Msg("opening roll")
	return g.turn, roll
}

// RollDice rolls for the side to move.
func (g *Game) RollDice() (board.Dice, error) {
	if g.Over() {
		return board.Dice{}, ErrGameOver
	}
	g.bd.SetRoll(rollDie(), rollDie())
	g.rolledAt = time.Now()
	return g.bd.Roll(), nil
}

// SetRoll forces the dice for the side to move. Meant for scripted
// positions and tests.
func (g *Game) SetRoll(d1, d2 uint8) error {
	if g.Over() {
		return ErrGameOver
	}
	if d1 < 1 || d1 > 6 || d2 < 1 || d2 > 6 {
		return fmt.Errorf("dice out of range: %d-%d", d1, d2)
	}
	g.bd.SetRoll(d1, d2)
	g.rolledAt = time.Now()
	return nil
}

// LegalSequences generates the legal turns for the current roll. The
// returned slice is the caller's to keep.
func (g *Game) LegalSequences() ([]move.Sequence, error) {
	if g.Over() {
		return nil, ErrGameOver
	}
	if !g.bd.HasRoll() {
		return nil, ErrNotRolled
	}
	seqs := g.gen.GenAll(g.bd, g.turn, g.bd.Roll())
	out := make([]move.Sequence, len(seqs))
	copy(out, seqs)
	return out, nil
}

// CommitSequence plays seq for the side to move and flips the turn. An
// empty sequence is a pass, legal only when no turn is playable. The
// sequence must match one of the generated legal turns, which also
// enforces the maximum-dice rule.
func (g *Game) CommitSequence(seq move.Sequence) error {
	if g.Over() {
		return ErrGameOver
	}
	if !g.bd.HasRoll() {
		return ErrNotRolled
	}
	legal := g.gen.GenAll(g.bd, g.turn, g.bd.Roll())
	if len(seq) == 0 {
		if len(legal) > 0 {
			return ErrPassWithMoves
		}
		g.passStreak++
		g.record(nil, true)
		g.finishTurn()
		return nil
	}
	key := seq.Key()
	found := false
	for _, l := range legal {
		if l.Key() == key {
			found = true
			break
		}
	}
	if !found {
		return fmt.Errorf("%w: %s with roll %s", ErrNotLegal, seq, g.bd.Roll())
	}
	for _, m := range seq {
		if err := m.Apply(g.bd, g.turn); err != nil {
			return fmt.Errorf("applying %s: %w", seq, err)
		}
	}
	g.passStreak = 0
	g.record(seq, false)
	g.finishTurn()
	return nil
}

// Pass commits an empty turn.
func (g *Game) Pass() error { return g.CommitSequence(nil) }

func (g *Game) record(seq move.Sequence, pass bool) {
	g.turnNo++
	rec := TurnRecord{
		Number: g.turnNo,
		Side:   g.turn,
		Roll:   g.bd.Roll(),
		Seq:    seq.Copy(),
		Pass:   pass,
	}
	if !g.rolledAt.IsZero() {
		rec.Elapsed = time.Since(g.rolledAt)
	}
	g.history = append(g.history, rec)
}

func (g *Game) finishTurn() {
	g.bd.ClearRoll()
	g.rolledAt = time.Time{}
	switch {
	case g.bd.Off(g.turn) == board.CheckersPerSide:
		g.winner = g.turn
		g.reason = Win
		log.Debug().Str("winner", g.turn.String()).Int("turns", g.turnNo).
			Msg("game over")
	case g.passStreak >= stalePassLimit:
		g.reason = Stalemate
		log.Debug().Int("turns", g.turnNo).Msg("stalemate, both sides locked")
	case g.maxTurns > 0 && g.turnNo >= g.maxTurns:
		g.reason = TurnLimit
		log.Debug().Int("turns", g.turnNo).Msg("turn limit reached")
	default:
		g.turn = g.turn.Opponent()
	}
}
