package shell

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/mvidalg/tavla/automatic"
	"github.com/mvidalg/tavla/board"
	"github.com/mvidalg/tavla/config"
	"github.com/mvidalg/tavla/eval"
	"github.com/mvidalg/tavla/game"
	"github.com/mvidalg/tavla/move"
	"github.com/mvidalg/tavla/movegen"
	"github.com/mvidalg/tavla/search"
)

func (sc *ShellController) ensureGame() error {
	if sc.game == nil {
		return errors.New("no game in progress; start one with `new`")
	}
	return nil
}

// gameState renders the current position. The board text already
// carries the bar/off/pip summary and the roll, so only the turn or
// result line gets appended here.
func (sc *ShellController) gameState() string {
	var sb strings.Builder
	sb.WriteString(sc.game.Board().ToDisplayText())
	if sc.game.Over() {
		if winner, ok := sc.game.Winner(); ok {
			fmt.Fprintf(&sb, "%s wins\n", winner)
		} else {
			fmt.Fprintf(&sb, "game over (%s)\n", sc.game.Result())
		}
	} else {
		fmt.Fprintf(&sb, "%s to move\n", sc.game.Turn())
	}
	return sb.String()
}

func (sc *ShellController) newGame(cmd *shellcmd) (*Response, error) {
	sc.game = game.NewGame(sc.gen)
	sc.game.SetMaxTurns(sc.config.Int(config.KeyAutoplayMaxTurns))
	side, roll := sc.game.StartGame()
	sc.curGenSeqs = nil
	return msg(fmt.Sprintf("%s goes first with %s\n%s", side, roll, sc.gameState())), nil
}

func (sc *ShellController) roll(cmd *shellcmd) (*Response, error) {
	if err := sc.ensureGame(); err != nil {
		return nil, err
	}
	switch len(cmd.args) {
	case 0:
		if _, err := sc.game.RollDice(); err != nil {
			return nil, err
		}
	case 2:
		d1, err1 := strconv.Atoi(cmd.args[0])
		d2, err2 := strconv.Atoi(cmd.args[1])
		if err1 != nil || err2 != nil {
			return nil, errors.New("usage: roll [d1 d2]")
		}
		if err := sc.game.SetRoll(uint8(d1), uint8(d2)); err != nil {
			return nil, err
		}
	default:
		return nil, errors.New("usage: roll [d1 d2]")
	}
	sc.curGenSeqs = nil
	return msg(fmt.Sprintf("%s rolled %s", sc.game.Turn(), sc.game.Board().Roll())), nil
}

func (sc *ShellController) generate(cmd *shellcmd) (*Response, error) {
	if err := sc.ensureGame(); err != nil {
		return nil, err
	}
	numSeqs := 15
	if len(cmd.args) > 0 {
		var err error
		if numSeqs, err = strconv.Atoi(cmd.args[0]); err != nil {
			return nil, err
		}
	}
	seqs, err := sc.game.LegalSequences()
	if err != nil {
		return nil, err
	}
	sc.curGenSeqs = seqs
	if len(seqs) == 0 {
		return msg("no legal turns; you must pass"), nil
	}
	side := sc.game.Turn()
	var sb strings.Builder
	fmt.Fprintf(&sb, "%d legal turn(s)\n", len(seqs))
	for i, seq := range seqs {
		if i == numSeqs {
			fmt.Fprintf(&sb, "... and %d more (gen %d to see them)\n",
				len(seqs)-numSeqs, len(seqs))
			break
		}
		fmt.Fprintf(&sb, "%3d: %s\n", i+1, seq.Notation(side))
	}
	return msg(sb.String()), nil
}

func (sc *ShellController) solve(cmd *shellcmd) (*Response, error) {
	if err := sc.ensureGame(); err != nil {
		return nil, err
	}
	plies := sc.config.Int(config.KeySearchPlies)
	if len(cmd.args) > 0 {
		var err error
		if plies, err = strconv.Atoi(cmd.args[0]); err != nil {
			return nil, err
		}
	}
	if path, ok := cmd.options["log"]; ok {
		f, err := os.Create(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		sc.solver.SetLogStream(f)
		defer sc.solver.SetLogStream(nil)
	}
	side := sc.game.Turn()
	seq, val, err := sc.solver.Solve(sc.game.Board(), side, plies)
	if err != nil {
		return nil, err
	}
	st := sc.solver.Stats()
	if len(seq) == 0 {
		return msg(fmt.Sprintf("no legal turns; value %.3f standing pat", val)), nil
	}
	return msg(fmt.Sprintf("best %s  value %.3f  (candidates %d, pruned %d, cache %d/%d)",
		seq.Notation(side), val, st.Candidates, st.Pruned, st.CacheHits, st.CacheLookups)), nil
}

func (sc *ShellController) play(cmd *shellcmd) (*Response, error) {
	if err := sc.ensureGame(); err != nil {
		return nil, err
	}
	if len(cmd.args) == 0 {
		return nil, errors.New("usage: play #N  |  play 24/18 13/11  |  play bar/20 6/off")
	}
	var seq move.Sequence
	if strings.HasPrefix(cmd.args[0], "#") {
		idx, err := strconv.Atoi(strings.TrimPrefix(cmd.args[0], "#"))
		if err != nil {
			return nil, err
		}
		if idx < 1 || idx > len(sc.curGenSeqs) {
			return nil, errors.New("play number out of range; run `gen` first")
		}
		seq = sc.curGenSeqs[idx-1]
	} else {
		legal, err := sc.game.LegalSequences()
		if err != nil {
			return nil, err
		}
		pairs, err := parsePlayPairs(sc.game.Turn(), cmd.args)
		if err != nil {
			return nil, err
		}
		if seq, err = matchSequence(legal, pairs); err != nil {
			return nil, err
		}
	}
	side := sc.game.Turn()
	if err := sc.game.CommitSequence(seq); err != nil {
		return nil, err
	}
	sc.curGenSeqs = nil
	return msg(fmt.Sprintf("%s played %s\n%s", side, seq.Notation(side), sc.gameState())), nil
}

func (sc *ShellController) aiplay(cmd *shellcmd) (*Response, error) {
	if err := sc.ensureGame(); err != nil {
		return nil, err
	}
	plies := sc.config.Int(config.KeySearchPlies)
	if len(cmd.args) > 0 {
		var err error
		if plies, err = strconv.Atoi(cmd.args[0]); err != nil {
			return nil, err
		}
	}
	side := sc.game.Turn()
	seq, val, err := sc.solver.Solve(sc.game.Board(), side, plies)
	if err != nil {
		return nil, err
	}
	if err := sc.game.CommitSequence(seq); err != nil {
		return nil, err
	}
	sc.curGenSeqs = nil
	return msg(fmt.Sprintf("%s played %s (%.3f)\n%s",
		side, seq.Notation(side), val, sc.gameState())), nil
}

func (sc *ShellController) pass(cmd *shellcmd) (*Response, error) {
	if err := sc.ensureGame(); err != nil {
		return nil, err
	}
	side := sc.game.Turn()
	if err := sc.game.Pass(); err != nil {
		return nil, err
	}
	sc.curGenSeqs = nil
	return msg(fmt.Sprintf("%s passes\n%s", side, sc.gameState())), nil
}

func (sc *ShellController) show(cmd *shellcmd) (*Response, error) {
	if err := sc.ensureGame(); err != nil {
		return nil, err
	}
	return msg(sc.gameState()), nil
}

func (sc *ShellController) pips(cmd *shellcmd) (*Response, error) {
	if err := sc.ensureGame(); err != nil {
		return nil, err
	}
	bd := sc.game.Board()
	w := bd.PipCount(board.White)
	b := bd.PipCount(board.Black)
	lead := "even"
	switch {
	case w < b:
		lead = fmt.Sprintf("White leads by %d", b-w)
	case b < w:
		lead = fmt.Sprintf("Black leads by %d", w-b)
	}
	return msg(fmt.Sprintf("White %d, Black %d (%s)", w, b, lead)), nil
}

func (sc *ShellController) history(cmd *shellcmd) (*Response, error) {
	if err := sc.ensureGame(); err != nil {
		return nil, err
	}
	hist := sc.game.History()
	if len(hist) == 0 {
		return msg("no turns played yet"), nil
	}
	var sb strings.Builder
	for _, rec := range hist {
		fmt.Fprintf(&sb, "%3d. %-5s %s: %s\n",
			rec.Number, rec.Side, rec.Roll, rec.Seq.Notation(rec.Side))
	}
	return msg(sb.String()), nil
}

func (sc *ShellController) autoplay(cmd *shellcmd) (*Response, error) {
	numGames := 100
	if len(cmd.args) > 0 {
		var err error
		if numGames, err = strconv.Atoi(cmd.args[0]); err != nil {
			return nil, err
		}
	}
	threads := sc.config.Int(config.KeyAutoplayThreads)
	if t, ok := cmd.options["threads"]; ok {
		var err error
		if threads, err = strconv.Atoi(t); err != nil {
			return nil, err
		}
	}
	outfile := cmd.options["file"]
	summary, err := automatic.StartCompVCompGames(
		context.Background(), sc.config, automatic.DefaultSpecs(), numGames, threads, outfile)
	if err != nil {
		return nil, err
	}
	var sb strings.Builder
	sb.WriteString(summary.String())
	sb.WriteString("\nsolve times (ms):\n")
	if err := summary.FprintSolveTimes(&sb); err != nil {
		return nil, err
	}
	return msg(sb.String()), nil
}

func (sc *ShellController) tally(cmd *shellcmd) (*Response, error) {
	path := sc.config.String(config.KeyAutoplayDB)
	if len(cmd.args) > 0 {
		path = cmd.args[0]
	}
	if path == "" {
		return nil, errors.New("no results database; `set autoplay.db <path>` or `tally <path>`")
	}
	store, err := automatic.NewStore(path)
	if err != nil {
		return nil, err
	}
	defer store.Close()
	rows, total, err := store.Tally()
	if err != nil {
		return nil, err
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "%d game(s) on record\n", total)
	for _, r := range rows {
		fmt.Fprintf(&sb, "%-24s %5d\n", r.Player, r.Wins)
	}
	return msg(sb.String()), nil
}

func (sc *ShellController) weights(cmd *shellcmd) (*Response, error) {
	if len(cmd.args) == 0 {
		out, err := yaml.Marshal(sc.ev.Weights())
		if err != nil {
			return nil, err
		}
		return msg(string(out)), nil
	}
	w, err := eval.LoadWeights(cmd.args[0])
	if err != nil {
		return nil, err
	}
	sc.ev = eval.New(w)
	sc.solver = search.NewSolver(movegen.NewGenerator(), sc.ev)
	sc.applySearchConfig()
	return msg("weights loaded from " + cmd.args[0]), nil
}

func (sc *ShellController) set(cmd *shellcmd) (*Response, error) {
	if len(cmd.args) == 0 {
		out, err := yaml.Marshal(sc.config.AllSettings())
		if err != nil {
			return nil, err
		}
		return msg(string(out)), nil
	}
	if len(cmd.args) < 2 {
		return nil, errors.New("usage: set <key> <value>")
	}
	sc.config.Set(cmd.args[0], cmd.args[1])
	sc.applySearchConfig()
	return msg(fmt.Sprintf("%s is now %s", cmd.args[0], cmd.args[1])), nil
}

// parsePlayPairs turns player-relative tokens like 24/18, bar/20 or
// 6/off into board locations for the side on roll.
func parsePlayPairs(side board.Side, args []string) ([][2]board.Loc, error) {
	pairs := make([][2]board.Loc, 0, len(args))
	for _, tok := range args {
		parts := strings.Split(tok, "/")
		if len(parts) != 2 {
			return nil, fmt.Errorf("cannot parse move %q, expected from/to", tok)
		}
		from, err := parseLoc(side, parts[0], true)
		if err != nil {
			return nil, err
		}
		to, err := parseLoc(side, parts[1], false)
		if err != nil {
			return nil, err
		}
		pairs = append(pairs, [2]board.Loc{from, to})
	}
	return pairs, nil
}

func parseLoc(side board.Side, tok string, isFrom bool) (board.Loc, error) {
	switch strings.ToLower(tok) {
	case "bar":
		if !isFrom {
			return 0, errors.New("bar is not a destination")
		}
		return board.Bar, nil
	case "off":
		if isFrom {
			return 0, errors.New("off is not an origin")
		}
		return board.Off, nil
	}
	n, err := strconv.Atoi(tok)
	if err != nil || n < 1 || n > 24 {
		return 0, fmt.Errorf("bad point %q, want 1-24, bar or off", tok)
	}
	return board.PointLoc(move.PointIndex(side, n)), nil
}

// matchSequence finds the legal turn whose from/to pairs equal the
// parsed ones, in any order. Die assignment is left to the generator
// so the user never has to spell out which die covers which hop.
func matchSequence(legal []move.Sequence, pairs [][2]board.Loc) (move.Sequence, error) {
	want := pairKey(pairs)
	for _, seq := range legal {
		sp := make([][2]board.Loc, len(seq))
		for i, m := range seq {
			sp[i] = [2]board.Loc{m.From, m.To}
		}
		if pairKey(sp) == want {
			return seq, nil
		}
	}
	return nil, errors.New("that is not a legal turn; see `gen`")
}

func pairKey(pairs [][2]board.Loc) string {
	ss := make([]string, len(pairs))
	for i, p := range pairs {
		ss[i] = fmt.Sprintf("%d>%d", p[0], p[1])
	}
	sort.Strings(ss)
	return strings.Join(ss, ",")
}
