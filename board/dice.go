package board

import "strings"

// Dice is the multiset of usable dice for a turn. A double provides four
// copies of the rolled value. The zero value is an empty set, which is
// also what a board carries between turns.
type Dice struct {
	vals  [4]uint8
	count uint8
}

// NewDice builds the usable dice for a rolled pair, expanding doubles.
func NewDice(d1, d2 uint8) Dice {
	var d Dice
	if d1 == 0 || d2 == 0 {
		return d
	}
	if d1 == d2 {
		d.vals = [4]uint8{d1, d1, d1, d1}
		d.count = 4
	} else {
		d.vals[0], d.vals[1] = d1, d2
		d.count = 2
	}
	return d
}

func (d Dice) Len() int    { return int(d.count) }
func (d Dice) Empty() bool { return d.count == 0 }

// Get returns the i'th die. Callers index through Len.
func (d Dice) Get(i int) uint8 { return d.vals[i] }

func (d Dice) Contains(die uint8) bool {
	for i := uint8(0); i < d.count; i++ {
		if d.vals[i] == die {
			return true
		}
	}
	return false
}

// Remove deletes one instance of die, reporting whether it was present.
// Order of the remaining dice is not preserved.
func (d *Dice) Remove(die uint8) bool {
	for i := uint8(0); i < d.count; i++ {
		if d.vals[i] == die {
			d.count--
			d.vals[i] = d.vals[d.count]
			d.vals[d.count] = 0
			return true
		}
	}
	return false
}

// Pair returns the dice as originally rolled. Only meaningful on a fresh
// roll (nothing consumed yet).
func (d Dice) Pair() (uint8, uint8) {
	switch d.count {
	case 0:
		return 0, 0
	case 2:
		return d.vals[0], d.vals[1]
	}
	return d.vals[0], d.vals[0]
}

func (d Dice) String() string {
	if d.count == 0 {
		return "-"
	}
	var sb strings.Builder
	for i := uint8(0); i < d.count; i++ {
		if i > 0 {
			sb.WriteByte('-')
		}
		sb.WriteByte('0' + d.vals[i])
	}
	return sb.String()
}
