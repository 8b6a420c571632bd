package board

import (
	"errors"
	"fmt"
	"strconv"
)

const (
	// NumPoints is the number of points on the board.
	NumPoints = 24
	// CheckersPerSide is the number of checkers each side starts with, and
	// must account for at all times across points, bar and off tray.
	CheckersPerSide = 15
	// barPips is the pip distance of a checker sitting on the bar.
	barPips = 25
)

// Side is a checker color. Its numeric value doubles as the direction of
// travel: White ascends toward point 23 (+1) and bears off past it, Black
// descends toward point 0 (-1). This makes dest = from + die*int(side)
// work for both colors, and makes points[i]*int(side) > 0 the occupancy
// test for the signed point encoding below.
type Side int8

const (
	White Side = 1
	Black Side = -1
)

func (s Side) Opponent() Side { return -s }

// Index maps a side to 0 (White) or 1 (Black) for per-side arrays.
func (s Side) Index() int {
	if s == White {
		return 0
	}
	return 1
}

func (s Side) String() string {
	if s == White {
		return "White"
	}
	return "Black"
}

// Loc is where a checker is or goes: a point index, the bar, or off the
// board. It is a single byte so move values stay comparable and tiny.
type Loc uint8

const (
	Bar Loc = NumPoints
	Off Loc = NumPoints + 1
)

func PointLoc(pt int) Loc { return Loc(pt) }

func (l Loc) IsBar() bool   { return l == Bar }
func (l Loc) IsOff() bool   { return l == Off }
func (l Loc) OnBoard() bool { return l < NumPoints }

// Point returns the point index; only meaningful when OnBoard reports true.
func (l Loc) Point() int { return int(l) }

func (l Loc) String() string {
	switch {
	case l.IsBar():
		return "bar"
	case l.IsOff():
		return "off"
	}
	return strconv.Itoa(int(l))
}

var (
	ErrOriginEmpty        = errors.New("origin has no checker to move")
	ErrDestinationBlocked = errors.New("destination point is blocked")
)

// Board is a complete backgammon position plus the dice of the turn in
// progress. points[i] holds a signed checker count: positive for White,
// negative for Black. The struct is flat (no pointers), so assignment is
// a deep copy; CopyFrom is what the move generator's board pool relies on.
type Board struct {
	points [NumPoints]int8
	bar    [2]uint8
	off    [2]uint8
	roll   Dice // the dice as rolled, empty between turns
	unused Dice // dice of the roll not consumed yet
}

// NewBoard returns an empty board. Call SetupStandard for the opening
// position, or place checkers directly with SetPoint/SetBar/SetOff.
func NewBoard() *Board {
	return &Board{}
}

// SetupStandard resets the board to the standard opening position and
// clears any roll.
func (b *Board) SetupStandard() {
	*b = Board{}
	b.points[0] = 2
	b.points[11] = 5
	b.points[16] = 3
	b.points[18] = 5
	b.points[23] = -2
	b.points[12] = -5
	b.points[7] = -3
	b.points[5] = -5
}

func (b *Board) Point(i int) int8 { return b.points[i] }

// SetPoint overwrites the occupancy of a point; positive counts are White.
// Meant for setting up test and problem positions, it does no validation.
func (b *Board) SetPoint(i int, count int8) { b.points[i] = count }

func (b *Board) Bar(s Side) uint8       { return b.bar[s.Index()] }
func (b *Board) SetBar(s Side, n uint8) { b.bar[s.Index()] = n }
func (b *Board) Off(s Side) uint8       { return b.off[s.Index()] }
func (b *Board) SetOff(s Side, n uint8) { b.off[s.Index()] = n }

// Occupies reports whether side s has at least one checker on point pt.
func (b *Board) Occupies(s Side, pt int) bool {
	return int(b.points[pt])*int(s) > 0
}

// CheckerCount returns how many of s's checkers sit on pt.
func (b *Board) CheckerCount(s Side, pt int) int {
	n := int(b.points[pt]) * int(s)
	if n < 0 {
		return 0
	}
	return n
}

// Open reports whether s may land on pt, i.e. the opponent holds at most
// one checker there. A lone opposing checker is a blot and gets hit.
func (b *Board) Open(s Side, pt int) bool {
	if s == White {
		return b.points[pt] >= -1
	}
	return b.points[pt] <= 1
}

// EntryPoint is the point a checker of s re-enters on from the bar with
// the given die.
func EntryPoint(s Side, die uint8) int {
	if s == White {
		return int(die) - 1
	}
	return NumPoints - int(die)
}

// HomeRange returns the inclusive point bounds of s's home quadrant.
func HomeRange(s Side) (lo, hi int) {
	if s == White {
		return 18, 23
	}
	return 0, 5
}

// CanBearOff reports whether s is allowed to bear checkers off: nothing on
// the bar and nothing outside the home quadrant.
func (b *Board) CanBearOff(s Side) bool {
	if b.bar[s.Index()] > 0 {
		return false
	}
	lo, hi := HomeRange(s)
	for i := 0; i < NumPoints; i++ {
		if i >= lo && i <= hi {
			continue
		}
		if b.Occupies(s, i) {
			return false
		}
	}
	return true
}

// PipCount is the total distance s's checkers still have to travel to bear
// off. A checker on the bar counts 25 pips.
func (b *Board) PipCount(s Side) int {
	pips := int(b.bar[s.Index()]) * barPips
	for i := 0; i < NumPoints; i++ {
		n := b.CheckerCount(s, i)
		if n == 0 {
			continue
		}
		if s == White {
			pips += n * (NumPoints - i)
		} else {
			pips += n * (i + 1)
		}
	}
	return pips
}

// SetRoll sets the dice for the turn. A double yields four usable dice.
func (b *Board) SetRoll(d1, d2 uint8) {
	b.roll = NewDice(d1, d2)
	b.unused = b.roll
}

// ClearRoll ends the turn's dice; typically called when the turn passes to
// the other side.
func (b *Board) ClearRoll() {
	b.roll = Dice{}
	b.unused = Dice{}
}

func (b *Board) Roll() Dice    { return b.roll }
func (b *Board) Unused() Dice  { return b.unused }
func (b *Board) HasRoll() bool { return !b.roll.Empty() }

// ApplyMove moves one checker of side s from from to to, consuming die
// from the unused dice if it is there. All validation happens before any
// mutation, so on error the board is untouched. A lone opposing checker on
// the destination is hit to the opponent's bar.
//
// ApplyMove checks the origin and the destination only. Whether the move
// is actually playable under the dice rules (bear-off rights, the
// maximum-dice law) is the move generator's business; full legality of a
// user-supplied play is established by membership in its output.
func (b *Board) ApplyMove(s Side, from, to Loc, die uint8) error {
	si := s.Index()
	switch {
	case from.IsBar():
		if b.bar[si] == 0 {
			return fmt.Errorf("%w: %v bar", ErrOriginEmpty, s)
		}
	case from.IsOff():
		return fmt.Errorf("cannot move a borne-off checker")
	default:
		if !b.Occupies(s, from.Point()) {
			return fmt.Errorf("%w: %v point %v", ErrOriginEmpty, s, from)
		}
	}
	if to.IsBar() {
		return fmt.Errorf("cannot move a checker to the bar")
	}
	if to.OnBoard() && !b.Open(s, to.Point()) {
		return fmt.Errorf("%w: point %v", ErrDestinationBlocked, to)
	}

	if from.IsBar() {
		b.bar[si]--
	} else {
		b.points[from.Point()] -= int8(s)
	}
	if to.IsOff() {
		b.off[si]++
	} else {
		pt := to.Point()
		opp := s.Opponent()
		if b.Occupies(opp, pt) {
			// exactly one opposing checker, or Open would have failed
			b.points[pt] = 0
			b.bar[opp.Index()]++
		}
		b.points[pt] += int8(s)
	}
	b.unused.Remove(die)
	return nil
}

// Clone returns a copy of the board on the heap.
func (b *Board) Clone() *Board {
	c := *b
	return &c
}

// CopyFrom overwrites b with o without allocating.
func (b *Board) CopyFrom(o *Board) { *b = *o }

// Equal reports positional equality, dice included.
func (b *Board) Equal(o *Board) bool { return *b == *o }

// VerifyCounts checks that checkers are conserved: each side has exactly
// fifteen across the points, the bar and the off tray.
func (b *Board) VerifyCounts() error {
	for _, s := range []Side{White, Black} {
		total := int(b.bar[s.Index()]) + int(b.off[s.Index()])
		for i := 0; i < NumPoints; i++ {
			total += b.CheckerCount(s, i)
		}
		if total != CheckersPerSide {
			return fmt.Errorf("%v has %d checkers in play, want %d", s, total, CheckersPerSide)
		}
	}
	return nil
}
