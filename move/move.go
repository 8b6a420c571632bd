package move

import (
	"strconv"
	"strings"

	"github.com/cespare/xxhash"

	"github.com/mvidalg/tavla/board"
)

// Move is a single checker movement: one die applied to one checker.
// A full turn is a Sequence of these. Move is a tiny comparable value so
// it can key maps and sets directly; the constraint propagator keeps
// domains of Moves, and tests build sets of them.
type Move struct {
	From board.Loc
	To   board.Loc
	Die  uint8
}

// Apply plays the move for side s on bd.
func (m Move) Apply(bd *board.Board, s board.Side) error {
	return bd.ApplyMove(s, m.From, m.To, m.Die)
}

// String is a side-agnostic debug rendering using absolute point indexes.
func (m Move) String() string {
	return m.From.String() + ">" + m.To.String()
}

// Notation renders the move in conventional player-relative numbering,
// where the mover's points count down from 24 toward their own exit:
// "24/18", "bar/20", "3/off".
func (m Move) Notation(s board.Side) string {
	return locName(m.From, s) + "/" + locName(m.To, s)
}

func locName(l board.Loc, s board.Side) string {
	switch {
	case l.IsBar():
		return "bar"
	case l.IsOff():
		return "off"
	}
	return strconv.Itoa(PointNumber(s, l.Point()))
}

// PointNumber converts a point index to side s's own 24..1 numbering.
// White's 24-point is index 0; Black's 24-point is index 23.
func PointNumber(s board.Side, pt int) int {
	if s == board.White {
		return board.NumPoints - pt
	}
	return pt + 1
}

// PointIndex is the inverse of PointNumber.
func PointIndex(s board.Side, num int) int {
	if s == board.White {
		return board.NumPoints - num
	}
	return num - 1
}

// Sequence is the ordered list of movements making up one turn. An empty
// sequence is a pass.
type Sequence []Move

func (seq Sequence) Equal(o Sequence) bool {
	if len(seq) != len(o) {
		return false
	}
	for i := range seq {
		if seq[i] != o[i] {
			return false
		}
	}
	return true
}

// Copy returns an independent copy of the sequence.
func (seq Sequence) Copy() Sequence {
	if seq == nil {
		return nil
	}
	return append(Sequence{}, seq...)
}

// Key is a 64-bit fingerprint of the exact ordered movement list. The
// generator uses it to deduplicate its output.
func (seq Sequence) Key() uint64 {
	buf := make([]byte, 0, 12)
	for _, m := range seq {
		buf = append(buf, byte(m.From), byte(m.To), m.Die)
	}
	return xxhash.Sum64(buf)
}

func (seq Sequence) String() string {
	if len(seq) == 0 {
		return "PASS"
	}
	parts := make([]string, len(seq))
	for i, m := range seq {
		parts[i] = m.String()
	}
	return strings.Join(parts, " ")
}

// Notation renders the whole turn in player-relative numbering, or "PASS"
// for the empty sequence.
func (seq Sequence) Notation(s board.Side) string {
	if len(seq) == 0 {
		return "PASS"
	}
	parts := make([]string, len(seq))
	for i, m := range seq {
		parts[i] = m.Notation(s)
	}
	return strings.Join(parts, " ")
}
