// Package automatic plays computer-vs-computer games and collects the
// results: a per-turn CSV log, summary statistics with confidence
// intervals, and optionally a sqlite database of finished games.
package automatic

import (
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/mvidalg/tavla/board"
	"github.com/mvidalg/tavla/config"
	"github.com/mvidalg/tavla/eval"
	"github.com/mvidalg/tavla/game"
	"github.com/mvidalg/tavla/movegen"
	"github.com/mvidalg/tavla/search"
)

// PlayerSpec configures one of the two automatic players.
type PlayerSpec struct {
	Name   string
	Plies  int
	UseCSP bool
}

func (p PlayerSpec) String() string {
	if p.UseCSP {
		return fmt.Sprintf("%s-%dply-csp", p.Name, p.Plies)
	}
	return fmt.Sprintf("%s-%dply", p.Name, p.Plies)
}

// DefaultSpecs pits the full two-ply searcher with constraint
// propagation against a plain one-ply searcher.
func DefaultSpecs() [2]PlayerSpec {
	return [2]PlayerSpec{
		{Name: "deep", Plies: 2, UseCSP: true},
		{Name: "fast", Plies: 1, UseCSP: false},
	}
}

// GameResult summarizes one finished game.
type GameResult struct {
	Index   int
	Winner  int // player index, or -1 when nobody bore off fifteen
	Reason  game.EndReason
	Turns   int
	Elapsed time.Duration
	Players [2]string
}

// GameRunner plays games one at a time between two configured solvers.
// Each runner owns its generators and solvers; use one runner per
// goroutine.
type GameRunner struct {
	cfg     *config.Config
	specs   [2]PlayerSpec
	gen     *movegen.Generator
	solvers [2]*search.Solver
	game    *game.Game
	logchan chan string
	solveMS []float64
}

// NewGameRunner builds a runner for the given pairing. Weights come
// from the configured weights file, or the defaults.
func NewGameRunner(cfg *config.Config, specs [2]PlayerSpec, logchan chan string) (*GameRunner, error) {
	w := eval.DefaultWeights()
	if path := cfg.String(config.KeyEvalWeights); path != "" {
		var err error
		if w, err = eval.LoadWeights(path); err != nil {
			return nil, fmt.Errorf("loading weights: %w", err)
		}
	}
	r := &GameRunner{
		cfg:     cfg,
		specs:   specs,
		logchan: logchan,
		gen:     movegen.NewGenerator(),
	}
	for i := range r.solvers {
		s := search.NewSolver(movegen.NewGenerator(), eval.New(w))
		s.SetTopK(cfg.Int(config.KeySearchTopK))
		s.SetBeam(cfg.Int(config.KeySearchBeam))
		s.SetReplyCap(cfg.Int(config.KeySearchReplyCap))
		s.SetCSPFilter(specs[i].UseCSP)
		r.solvers[i] = s
	}
	return r, nil
}

// Player 0 always sits White, player 1 Black.
func playerIndex(s board.Side) int {
	if s == board.White {
		return 0
	}
	return 1
}

// PlayGame plays one full game and reports the result. Per-turn solve
// times accumulate on the runner across games; see SolveTimes.
func (r *GameRunner) PlayGame(idx int) (GameResult, error) {
	r.game = game.NewGame(r.gen)
	r.game.SetMaxTurns(r.cfg.Int(config.KeyAutoplayMaxTurns))
	r.game.StartGame()
	start := time.Now()

	for !r.game.Over() {
		side := r.game.Turn()
		if !r.game.Board().HasRoll() {
			if _, err := r.game.RollDice(); err != nil {
				return GameResult{}, err
			}
		}
		roll := r.game.Board().Roll()
		p := playerIndex(side)

		t0 := time.Now()
		seq, _, err := r.solvers[p].Solve(r.game.Board(), side, r.specs[p].Plies)
		if err != nil {
			return GameResult{}, fmt.Errorf("game %d turn %d: %w", idx, r.game.TurnNumber()+1, err)
		}
		solveTime := time.Since(t0)
		r.solveMS = append(r.solveMS, float64(solveTime.Microseconds())/1000.0)

		if err := r.game.CommitSequence(seq); err != nil {
			return GameResult{}, fmt.Errorf("game %d turn %d: %w", idx, r.game.TurnNumber()+1, err)
		}
		if r.logchan != nil {
			r.logchan <- fmt.Sprintf("%d,%d,%s,%s,%d,%s\n",
				idx, r.game.TurnNumber(), side, roll,
				solveTime.Milliseconds(), seq.Notation(side))
		}
	}

	res := GameResult{
		Index:   idx,
		Winner:  -1,
		Reason:  r.game.Result(),
		Turns:   r.game.TurnNumber(),
		Elapsed: time.Since(start),
		Players: [2]string{r.specs[0].String(), r.specs[1].String()},
	}
	if side, won := r.game.Winner(); won {
		res.Winner = playerIndex(side)
	}
	log.Debug().Int("game", idx).Int("winner", res.Winner).
		Str("reason", res.Reason.String()).Int("turns", res.Turns).
		Msg("game finished")
	return res, nil
}

// SolveTimes returns every per-turn solve duration recorded by this
// runner, in milliseconds.
func (r *GameRunner) SolveTimes() []float64 { return r.solveMS }
