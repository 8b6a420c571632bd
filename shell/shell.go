// Package shell is the interactive console: set up positions, roll,
// inspect legal turns, ask the solver, and drive experiments.
package shell

import (
	"errors"
	"io"
	"os"
	"strings"
	"syscall"

	"github.com/chzyer/readline"
	"github.com/kballard/go-shellquote"
	"github.com/rs/zerolog/log"

	"github.com/mvidalg/tavla/config"
	"github.com/mvidalg/tavla/eval"
	"github.com/mvidalg/tavla/game"
	"github.com/mvidalg/tavla/move"
	"github.com/mvidalg/tavla/movegen"
	"github.com/mvidalg/tavla/search"
)

var (
	errNoData            = errors.New("no data in this line")
	errWrongOptionSyntax = errors.New("options need to be in the style of -option value")
)

type Response struct {
	message string
}

func msg(message string) *Response {
	return &Response{message: message}
}

type shellcmd struct {
	cmd     string
	args    []string
	options map[string]string
}

func extractFields(line string) (*shellcmd, error) {
	fields, err := shellquote.Split(line)
	if err != nil {
		return nil, err
	}
	if len(fields) == 0 {
		return nil, errNoData
	}
	cmd := fields[0]
	var args []string
	options := map[string]string{}
	lastWasOption := false
	lastOption := ""
	for _, token := range fields[1:] {
		if lastWasOption {
			options[lastOption] = token
			lastWasOption = false
			continue
		}
		if strings.HasPrefix(token, "-") {
			lastWasOption = true
			lastOption = token[1:]
			continue
		}
		args = append(args, token)
	}
	if lastWasOption {
		return nil, errWrongOptionSyntax
	}
	return &shellcmd{cmd: cmd, args: args, options: options}, nil
}

// ShellController ties the console to one game, one solver and the
// config.
type ShellController struct {
	l      *readline.Instance
	config *config.Config

	game   *game.Game
	gen    *movegen.Generator
	ev     *eval.Evaluator
	solver *search.Solver

	// last `gen` output, for `play #N`
	curGenSeqs []move.Sequence
}

func filterInput(r rune) (rune, bool) {
	switch r {
	// block CtrlZ feature
	case readline.CharCtrlZ:
		return r, false
	}
	return r, true
}

func showMessage(msg string, w io.Writer) {
	io.WriteString(w, msg)
	io.WriteString(w, "\n")
}

func NewShellController(cfg *config.Config) *ShellController {
	w := eval.DefaultWeights()
	if path := cfg.String(config.KeyEvalWeights); path != "" {
		var err error
		if w, err = eval.LoadWeights(path); err != nil {
			log.Err(err).Str("path", path).Msg("could not load weights, using defaults")
			w = eval.DefaultWeights()
		}
	}
	ev := eval.New(w)
	sc := &ShellController{
		config: cfg,
		gen:    movegen.NewGenerator(),
		ev:     ev,
		solver: search.NewSolver(movegen.NewGenerator(), ev),
	}
	sc.applySearchConfig()

	l, err := readline.NewEx(&readline.Config{
		Prompt:          "\033[31mtavla>\033[0m ",
		HistoryFile:     "/tmp/tavla_readline.tmp",
		EOFPrompt:       "exit",
		InterruptPrompt: "^C",
		AutoComplete:    NewShellCompleter(sc),

		HistorySearchFold:   true,
		FuncFilterInputRune: filterInput,
	})
	if err != nil {
		panic(err)
	}
	sc.l = l
	return sc
}

func (sc *ShellController) applySearchConfig() {
	sc.solver.SetTopK(sc.config.Int(config.KeySearchTopK))
	sc.solver.SetBeam(sc.config.Int(config.KeySearchBeam))
	sc.solver.SetReplyCap(sc.config.Int(config.KeySearchReplyCap))
	sc.solver.SetCSPFilter(sc.config.Bool(config.KeySearchCSP))
}

func (sc *ShellController) showMessage(msg string) {
	showMessage(msg, sc.l.Stderr())
}

func (sc *ShellController) showError(err error) {
	sc.showMessage("Error: " + err.Error())
}

func (sc *ShellController) executeCommand(line string) (*Response, error) {
	cmd, err := extractFields(line)
	if err != nil {
		return nil, err
	}
	switch cmd.cmd {
	case "new":
		return sc.newGame(cmd)
	case "roll":
		return sc.roll(cmd)
	case "gen":
		return sc.generate(cmd)
	case "solve":
		return sc.solve(cmd)
	case "play":
		return sc.play(cmd)
	case "aiplay":
		return sc.aiplay(cmd)
	case "pass":
		return sc.pass(cmd)
	case "show", "s":
		return sc.show(cmd)
	case "pips":
		return sc.pips(cmd)
	case "history":
		return sc.history(cmd)
	case "autoplay":
		return sc.autoplay(cmd)
	case "tally":
		return sc.tally(cmd)
	case "weights":
		return sc.weights(cmd)
	case "set":
		return sc.set(cmd)
	case "help":
		return usage()
	}
	return nil, errors.New("command " + cmd.cmd + " not found")
}

func (sc *ShellController) Loop(sig chan os.Signal) {
	defer sc.l.Close()

	for {
		line, err := sc.l.Readline()
		if err == readline.ErrInterrupt {
			if len(line) == 0 {
				sig <- syscall.SIGINT
				break
			}
			continue
		} else if err == io.EOF {
			sig <- syscall.SIGINT
			break
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if line == "exit" || line == "bye" {
			sig <- syscall.SIGINT
			break
		}
		resp, err := sc.executeCommand(line)
		if err != nil {
			sc.showError(err)
			continue
		}
		if resp != nil {
			sc.showMessage(resp.message)
		}
	}
	log.Debug().Msg("exiting shell loop")
}

// Execute runs a single command line and returns, for scripted use.
func (sc *ShellController) Execute(line string) {
	defer sc.l.Close()
	resp, err := sc.executeCommand(line)
	if err != nil {
		sc.showError(err)
		return
	}
	if resp != nil {
		sc.showMessage(resp.message)
	}
}
