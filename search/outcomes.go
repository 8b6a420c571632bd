package search

// outcome is one distinct unordered dice roll. A double occurs once in
// the 36 ordered rolls, a mixed pair twice.
type outcome struct {
	d1, d2 uint8
	weight float64
}

const totalWeight = 36.0

var outcomes = allOutcomes()

func allOutcomes() []outcome {
	os := make([]outcome, 0, 21)
	for a := uint8(1); a <= 6; a++ {
		for b := a; b <= 6; b++ {
			w := 2.0
			if a == b {
				w = 1.0
			}
			os = append(os, outcome{d1: a, d2: b, weight: w})
		}
	}
	return os
}
