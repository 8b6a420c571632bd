package board

import (
	"fmt"
	"strings"
)

// ToDisplayText renders the position as text for the console. Points run
// 13 to 24 across the top and 12 down to 1 across the bottom in absolute
// numbering (point 1 is index 0, White's start). White checkers show as
// W, Black as B.
func (b *Board) ToDisplayText() string {
	cell := func(i int) string {
		n := b.points[i]
		switch {
		case n > 0:
			return fmt.Sprintf("%2dW", n)
		case n < 0:
			return fmt.Sprintf("%2dB", -n)
		}
		return "  ·"
	}

	var sb strings.Builder
	sb.WriteString("  13  14  15  16  17  18 |  19  20  21  22  23  24\n ")
	for i := 12; i < 18; i++ {
		sb.WriteString(cell(i))
		sb.WriteByte(' ')
	}
	sb.WriteString("| ")
	for i := 18; i < 24; i++ {
		sb.WriteByte(' ')
		sb.WriteString(cell(i))
	}
	sb.WriteString("\n\n ")
	for i := 11; i > 5; i-- {
		sb.WriteString(cell(i))
		sb.WriteByte(' ')
	}
	sb.WriteString("| ")
	for i := 5; i >= 0; i-- {
		sb.WriteByte(' ')
		sb.WriteString(cell(i))
	}
	sb.WriteString("\n  12  11  10   9   8   7 |   6   5   4   3   2   1\n\n")

	fmt.Fprintf(&sb, "Bar  W %d / B %d    Off  W %d / B %d    Pips  W %d / B %d\n",
		b.bar[0], b.bar[1], b.off[0], b.off[1],
		b.PipCount(White), b.PipCount(Black))
	if b.HasRoll() {
		fmt.Fprintf(&sb, "Roll %v (unused %v)\n", b.roll, b.unused)
	}
	return sb.String()
}
