// Package search picks turns by expectiminimax. The side to move plays
// each of its candidate turns, nature rolls the 21 distinct dice
// outcomes for the opponent, the opponent replies with the turn that is
// worst for us, and the candidate with the best weighted average wins.
//
// Depth is one or two plies. At one ply the opponent's replies are
// scored statically; at two plies each reply is itself expanded, with a
// beam at the root and a cap on how many replies are evaluated in full.
// Static evaluations are cached per solve under a Zobrist key so that
// transposing reply lines are scored once.
package search

import (
	"errors"
	"fmt"
	"io"
	"math"
	"sort"

	"github.com/rs/zerolog/log"

	"github.com/mvidalg/tavla/board"
	"github.com/mvidalg/tavla/csp"
	"github.com/mvidalg/tavla/eval"
	"github.com/mvidalg/tavla/move"
	"github.com/mvidalg/tavla/movegen"
	"github.com/mvidalg/tavla/zobrist"
)

// ErrNoRoll is returned when Solve is called on a board with no dice
// set. Rolling is the caller's job.
var ErrNoRoll = errors.New("no roll on the board to solve for")

const (
	// DefaultTopK bounds the candidate turns examined at one ply.
	DefaultTopK = 14
	// DefaultBeam bounds the candidate turns examined at two plies.
	DefaultBeam = 5
	// DefaultReplyCap bounds how many opponent replies per outcome get a
	// full evaluation at two plies. The rest are discarded after the
	// quick ranking pass.
	DefaultReplyCap = 5
)

// Stats describes the work done by the last Solve call.
type Stats struct {
	Candidates   int `yaml:"candidates"`
	Pruned       int `yaml:"pruned"`
	Evals        int `yaml:"evals"`
	CacheLookups int `yaml:"cacheLookups"`
	CacheHits    int `yaml:"cacheHits"`
}

// Solver runs expectiminimax searches. It is not safe for concurrent
// use; give each goroutine its own Solver (and Generator).
type Solver struct {
	gen    *movegen.Generator
	ev     *eval.Evaluator
	hasher *zobrist.Hasher

	topK      int
	beam      int
	replyCap  int
	cspFilter bool
	logStream io.Writer

	// cache maps Zobrist keys to static scores from the point of view of
	// the side we are solving for. It lives for exactly one Solve call;
	// dice are not part of the key, so entries would go stale across
	// turns.
	cache map[uint64]float64
	stats Stats

	scratch  board.Board
	replies  []board.Board
	replyVal []float64
}

// replyValueFn scores the position reached by cand for pov after the
// opponent rolls o and picks their best reply.
type replyValueFn func(after *board.Board, opp, pov board.Side, o outcome) (float64, error)

// NewSolver creates a solver with the default cutoffs and the CSP
// filter enabled.
func NewSolver(gen *movegen.Generator, ev *eval.Evaluator) *Solver {
	return &Solver{
		gen:       gen,
		ev:        ev,
		hasher:    zobrist.NewHasher(),
		topK:      DefaultTopK,
		beam:      DefaultBeam,
		replyCap:  DefaultReplyCap,
		cspFilter: true,
	}
}

// SetTopK sets how many candidate turns a one-ply solve examines.
func (s *Solver) SetTopK(k int) {
	if k > 0 {
		s.topK = k
	}
}

// SetBeam sets how many candidate turns a two-ply solve examines.
func (s *Solver) SetBeam(b int) {
	if b > 0 {
		s.beam = b
	}
}

// SetReplyCap sets how many opponent replies per outcome a two-ply
// solve fully evaluates.
func (s *Solver) SetReplyCap(c int) {
	if c > 0 {
		s.replyCap = c
	}
}

// SetCSPFilter toggles constraint propagation over the candidate turns.
func (s *Solver) SetCSPFilter(on bool) {
	s.cspFilter = on
}

// SetLogStream directs a YAML trace of the search to w. Pass nil to
// turn tracing off.
func (s *Solver) SetLogStream(w io.Writer) {
	s.logStream = w
}

// Stats returns counters from the last Solve call.
func (s *Solver) Stats() Stats {
	return s.stats
}

// Solve picks the best turn for pov on bd, searching one or two plies.
// The board's roll must already be set. An empty sequence with a nil
// error means pov has no legal turn and passes; the value is then the
// static score of standing pat.
func (s *Solver) Solve(bd *board.Board, pov board.Side, plies int) (move.Sequence, float64, error) {
	switch plies {
	case 1:
		return s.SolveOnePly(bd, pov)
	case 2:
		return s.SolveTwoPly(bd, pov)
	}
	return nil, 0, fmt.Errorf("cannot search %d plies, only 1 and 2 are supported", plies)
}

// SolveOnePly searches one ply: our turn, the opponent's roll, their
// statically best reply.
func (s *Solver) SolveOnePly(bd *board.Board, pov board.Side) (move.Sequence, float64, error) {
	roll, err := s.begin(bd)
	if err != nil {
		return nil, 0, err
	}
	return s.run(bd, pov, roll, s.topK, s.worstReplyValue)
}

// SolveTwoPly searches two plies: the opponent's replies are expanded
// rather than scored where they stand. The beam and reply cap keep the
// tree tractable.
func (s *Solver) SolveTwoPly(bd *board.Board, pov board.Side) (move.Sequence, float64, error) {
	roll, err := s.begin(bd)
	if err != nil {
		return nil, 0, err
	}
	return s.run(bd, pov, roll, s.beam, s.cappedReplyValue)
}

func (s *Solver) begin(bd *board.Board) (board.Dice, error) {
	roll := bd.Roll()
	if roll.Empty() {
		return roll, ErrNoRoll
	}
	s.cache = make(map[uint64]float64, 256)
	s.stats = Stats{}
	return roll, nil
}

// candidate is a turn under consideration at the root, with the
// position it leads to and that position's static score.
type candidate struct {
	seq    move.Sequence
	after  board.Board
	static float64
}

// rootCandidates generates pov's turns, optionally narrows them with
// constraint propagation, and keeps the limit statically best of them.
func (s *Solver) rootCandidates(bd *board.Board, pov board.Side, roll board.Dice, limit int) ([]candidate, error) {
	seqs := s.gen.GenAll(bd, pov, roll)
	if len(seqs) == 0 {
		return nil, nil
	}
	if s.cspFilter {
		seqs = csp.Filter(s.gen, bd, pov, roll, seqs)
	}
	cands := make([]candidate, len(seqs))
	for i, seq := range seqs {
		cands[i].seq = seq
		if err := applySequence(&cands[i].after, bd, pov, seq); err != nil {
			return nil, err
		}
		cands[i].static = s.ev.Score(&cands[i].after, pov)
	}
	// Stable sort so that equal scores keep generation order and the
	// search stays deterministic.
	sort.SliceStable(cands, func(i, j int) bool { return cands[i].static > cands[j].static })
	if len(cands) > limit {
		cands = cands[:limit]
	}
	return cands, nil
}

func (s *Solver) run(bd *board.Board, pov board.Side, roll board.Dice, limit int, rv replyValueFn) (move.Sequence, float64, error) {
	cands, err := s.rootCandidates(bd, pov, roll, limit)
	if err != nil {
		return nil, 0, err
	}
	if len(cands) == 0 {
		v := s.ev.Score(bd, pov)
		log.Debug().Str("side", pov.String()).Float64("value", v).
			Msg("no legal turns, passing")
		return nil, v, nil
	}
	s.stats.Candidates = len(cands)
	opp := pov.Opponent()

	best := math.Inf(-1)
	bestIdx := 0
	for ci := range cands {
		cand := &cands[ci]
		if s.logStream != nil {
			fmt.Fprintf(s.logStream, "- candidate: %v\n  static: %.3f\n", cand.seq, cand.static)
		}
		if cand.after.Off(pov) == board.CheckersPerSide {
			// Bearing off the last checker ends the game. Nothing the
			// dice do afterwards matters.
			if s.logStream != nil {
				fmt.Fprintf(s.logStream, "  result: win\n")
			}
			return cand.seq, eval.WinScore, nil
		}
		expected, processed, pruned, err := s.expectation(&cand.after, opp, pov, best, rv)
		if err != nil {
			return nil, 0, err
		}
		if pruned {
			s.stats.Pruned++
			if s.logStream != nil {
				fmt.Fprintf(s.logStream, "  pruned: true\n  processedWeight: %v\n", processed)
			}
			continue
		}
		if s.logStream != nil {
			fmt.Fprintf(s.logStream, "  expected: %.4f\n", expected)
		}
		if expected > best {
			best = expected
			bestIdx = ci
		}
	}
	log.Debug().Int("candidates", s.stats.Candidates).Int("pruned", s.stats.Pruned).
		Int("evals", s.stats.Evals).Int("cacheLookups", s.stats.CacheLookups).
		Int("cacheHits", s.stats.CacheHits).Float64("best", best).
		Msg("solve complete")
	return cands[bestIdx].seq, best, nil
}

// expectation averages the reply values over the dice outcomes. Once
// part of the average is in, the rest of the weight going perfectly
// cannot always save the candidate; when even that optimistic bound
// fails to beat best, the candidate is abandoned.
func (s *Solver) expectation(after *board.Board, opp, pov board.Side, best float64, rv replyValueFn) (expected, processed float64, pruned bool, err error) {
	partial := 0.0
	for _, o := range outcomes {
		if best > math.Inf(-1) {
			optimistic := (partial + (totalWeight-processed)*eval.WinScore) / totalWeight
			if optimistic <= best {
				return 0, processed, true, nil
			}
		}
		v, err := rv(after, opp, pov, o)
		if err != nil {
			return 0, processed, false, err
		}
		partial += o.weight * v
		processed += o.weight
	}
	return partial / totalWeight, processed, false, nil
}

// worstReplyValue scores an outcome at one ply: the opponent plays each
// legal reply and the statically worst result for pov counts. With no
// legal reply the position stands as it is.
func (s *Solver) worstReplyValue(after *board.Board, opp, pov board.Side, o outcome) (float64, error) {
	replies := s.gen.GenAll(after, opp, board.NewDice(o.d1, o.d2))
	if len(replies) == 0 {
		return s.cachedScore(after, pov), nil
	}
	worst := math.Inf(1)
	for _, r := range replies {
		if err := applySequence(&s.scratch, after, opp, r); err != nil {
			return 0, err
		}
		if v := s.cachedScore(&s.scratch, pov); v < worst {
			worst = v
		}
	}
	return worst, nil
}

// cappedReplyValue scores an outcome at two plies. Every reply gets a
// quick race-count score; only the replyCap most promising for the
// opponent are evaluated in full, and the worst of those for pov
// counts.
func (s *Solver) cappedReplyValue(after *board.Board, opp, pov board.Side, o outcome) (float64, error) {
	replies := s.gen.GenAll(after, opp, board.NewDice(o.d1, o.d2))
	if len(replies) == 0 {
		return s.cachedScore(after, pov), nil
	}
	n := len(replies)
	if cap(s.replies) < n {
		s.replies = make([]board.Board, n)
		s.replyVal = make([]float64, n)
	}
	rb := s.replies[:n]
	qv := s.replyVal[:n]
	for i, r := range replies {
		if err := applySequence(&rb[i], after, opp, r); err != nil {
			return 0, err
		}
		qv[i] = s.ev.QuickScore(&rb[i], pov)
	}
	k := s.replyCap
	if k > n {
		k = n
	}
	// Partial selection sort: pull the k replies the opponent likes best
	// (lowest quick score for pov) to the front.
	worst := math.Inf(1)
	for sel := 0; sel < k; sel++ {
		mi := sel
		for j := sel + 1; j < n; j++ {
			if qv[j] < qv[mi] {
				mi = j
			}
		}
		qv[sel], qv[mi] = qv[mi], qv[sel]
		rb[sel], rb[mi] = rb[mi], rb[sel]
		if v := s.cachedScore(&rb[sel], pov); v < worst {
			worst = v
		}
	}
	return worst, nil
}

// cachedScore evaluates bd for pov, memoizing under the Zobrist key.
func (s *Solver) cachedScore(bd *board.Board, pov board.Side) float64 {
	key := s.hasher.Hash(bd, pov)
	s.stats.CacheLookups++
	if v, ok := s.cache[key]; ok {
		s.stats.CacheHits++
		return v
	}
	v := s.ev.Score(bd, pov)
	s.stats.Evals++
	s.cache[key] = v
	return v
}

// applySequence rebuilds src with seq played by side, into dst.
func applySequence(dst, src *board.Board, side board.Side, seq move.Sequence) error {
	dst.CopyFrom(src)
	for _, m := range seq {
		if err := m.Apply(dst, side); err != nil {
			return fmt.Errorf("replaying %v for %v: %w", seq, side, err)
		}
	}
	return nil
}
