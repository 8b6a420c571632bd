package automatic

import (
	"fmt"
	"io"
	"math"
	"strings"
	"sync"

	"github.com/aybabtme/uniplot/histogram"

	"github.com/mvidalg/tavla/game"
	"github.com/mvidalg/tavla/stats"
)

// Summary accumulates results across an experiment. Safe for
// concurrent Add from the worker pool.
type Summary struct {
	mu      sync.Mutex
	players [2]string
	wins    [2]int
	reasons map[game.EndReason]int
	games   int
	turns   stats.Statistic
	solveMS []float64
}

func NewSummary(specs [2]PlayerSpec) *Summary {
	return &Summary{
		players: [2]string{specs[0].String(), specs[1].String()},
		reasons: map[game.EndReason]int{},
	}
}

func (s *Summary) Add(res GameResult) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.games++
	s.reasons[res.Reason]++
	if res.Winner >= 0 {
		s.wins[res.Winner]++
	}
	s.turns.Push(float64(res.Turns))
}

// AddSolveTimes merges a runner's per-turn solve times, in
// milliseconds.
func (s *Summary) AddSolveTimes(ms []float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.solveMS = append(s.solveMS, ms...)
}

func (s *Summary) Games() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.games
}

func (s *Summary) Wins() [2]int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.wins
}

// WinRate returns player p's share of decided games together with a
// 95% confidence margin (normal approximation).
func (s *Summary) WinRate(p int) (rate, margin float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.winRate(p)
}

func (s *Summary) winRate(p int) (rate, margin float64) {
	decided := s.wins[0] + s.wins[1]
	if decided == 0 {
		return 0, 0
	}
	rate = float64(s.wins[p]) / float64(decided)
	margin = stats.ZVal(95) * math.Sqrt(rate*(1-rate)/float64(decided))
	return rate, margin
}

func (s *Summary) String() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	var sb strings.Builder
	fmt.Fprintf(&sb, "games: %d  avg turns: %.1f\n", s.games, s.turns.Mean())
	for p := 0; p < 2; p++ {
		rate, margin := s.winRate(p)
		fmt.Fprintf(&sb, "%-16s %4d wins   %5.1f%% ± %.1f%%\n",
			s.players[p], s.wins[p], rate*100, margin*100)
	}
	for _, r := range []game.EndReason{game.Stalemate, game.TurnLimit} {
		if n := s.reasons[r]; n > 0 {
			fmt.Fprintf(&sb, "%-16s %4d\n", r.String(), n)
		}
	}
	return sb.String()
}

// FprintSolveTimes renders a terminal histogram of the per-turn solve
// times in milliseconds.
func (s *Summary) FprintSolveTimes(w io.Writer) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.solveMS) == 0 {
		return nil
	}
	hist := histogram.Hist(15, s.solveMS)
	return histogram.Fprint(w, hist, histogram.Linear(40))
}
