package shell

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"syscall"

	"github.com/chzyer/readline"
	"github.com/kballard/go-shellquote"
	"github.com/rs/zerolog/log"

	"github.com/domino14/cifras/automatic"
	"github.com/domino14/cifras/cache"
	"github.com/domino14/cifras/config"
	"github.com/domino14/cifras/puzzles"
	"github.com/domino14/cifras/store"
)

var (
	errNoData            = errors.New("no data in this line")
	errWrongOptionSyntax = errors.New("wrong format; all options need arguments")
	errExit              = errors.New("exit requested")
)

type ShellController struct {
	l *readline.Instance

	config     *config.Config
	gitVersion string

	gen     *puzzles.Generator
	cache   *cache.SolutionCache
	history *store.Store
	runner  *automatic.Runner
}

type shellcmd struct {
	cmd     string
	args    []string
	options map[string]string
}

func filterInput(r rune) (rune, bool) {
	switch r {
	// block CtrlZ feature
	case readline.CharCtrlZ:
		return r, false
	}
	return r, true
}

func writeln(msg string, w io.Writer) {
	io.WriteString(w, msg)
	io.WriteString(w, "\n")
}

func (sc *ShellController) stdout() io.Writer {
	if sc.l != nil {
		return sc.l.Stdout()
	}
	return os.Stdout
}

func (sc *ShellController) stderr() io.Writer {
	if sc.l != nil {
		return sc.l.Stderr()
	}
	return os.Stderr
}

func (sc *ShellController) showMessage(msg string) {
	writeln(msg, sc.stdout())
}

func (sc *ShellController) showError(err error) {
	writeln("Error: "+err.Error(), sc.stderr())
}

// newController sets up everything but the terminal.
func newController(cfg *config.Config, gitVersion string) (*ShellController, error) {
	sc := &ShellController{
		config:     cfg,
		gitVersion: gitVersion,
		cache:      cache.New(cfg.GetInt(config.ConfigCacheSize)),
		runner:     automatic.NewRunner(cfg),
	}
	if err := sc.resetGenerator(); err != nil {
		return nil, err
	}
	if path := cfg.GetString(config.ConfigHistoryDB); path != "" {
		history, err := store.Open(context.Background(), path)
		if err != nil {
			return nil, err
		}
		sc.history = history
	}
	return sc, nil
}

func NewShellController(cfg *config.Config, gitVersion string) *ShellController {
	sc, err := newController(cfg, gitVersion)
	if err != nil {
		panic(err)
	}
	prompt := "\033[31mcifras>\033[0m "
	l, err := readline.NewEx(&readline.Config{
		Prompt:          prompt,
		HistoryFile:     "/tmp/cifras_readline.tmp",
		AutoComplete:    NewShellCompleter(sc),
		EOFPrompt:       "exit",
		InterruptPrompt: "^C",

		HistorySearchFold:   true,
		FuncFilterInputRune: filterInput,
	})
	if err != nil {
		panic(err)
	}
	sc.l = l
	return sc
}

func (sc *ShellController) resetGenerator() error {
	gen, err := puzzles.NewGenerator(sc.config.GeneratorSettings())
	if err != nil {
		return err
	}
	sc.gen = gen
	return nil
}

// extractFields splits a line into a command, its positional arguments and
// its -option value pairs.
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

	for i := 1; i < len(fields); i++ {
		if strings.HasPrefix(fields[i], "-") {
			if i == len(fields)-1 {
				return nil, errWrongOptionSyntax
			}
			options[fields[i][1:]] = fields[i+1]
			i++
			continue
		}
		args = append(args, fields[i])
	}
	return &shellcmd{
		cmd:     cmd,
		args:    args,
		options: options,
	}, nil
}

func (sc *ShellController) standardModeSwitch(line string) (*Response, error) {
	cmd, err := extractFields(line)
	if err != nil {
		return nil, err
	}
	switch cmd.cmd {
	case "exit", "quit":
		return nil, errExit
	case "help":
		return sc.help(cmd)
	case "solve":
		return sc.solve(cmd)
	case "random":
		return sc.random(cmd)
	case "set":
		return sc.set(cmd)
	case "history":
		return sc.showHistory(cmd)
	case "batch":
		return sc.batch(cmd)
	case "analyze":
		return sc.analyze(cmd)
	case "script":
		return sc.script(cmd)
	default:
		log.Debug().Msgf("you said: %q", line)
		return nil, fmt.Errorf("unrecognized command %q; try help", cmd.cmd)
	}
}

// Execute runs a single command line, for non-interactive use.
func (sc *ShellController) Execute(sig chan os.Signal, line string) {
	resp, err := sc.standardModeSwitch(line)
	if errors.Is(err, errExit) {
		sig <- syscall.SIGINT
		return
	}
	if err != nil {
		sc.showError(err)
		return
	}
	if resp != nil {
		sc.showMessage(resp.message)
	}
}

func (sc *ShellController) Loop(sig chan os.Signal) {
	defer sc.l.Close()
	for {
		line, err := sc.l.Readline()
		if err == readline.ErrInterrupt {
			if len(line) == 0 {
				sig <- syscall.SIGINT
				break
			} else {
				continue
			}
		} else if err == io.EOF {
			sig <- syscall.SIGINT
			break
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		resp, err := sc.standardModeSwitch(line)
		if errors.Is(err, errExit) {
			sig <- syscall.SIGINT
			break
		}
		if err != nil {
			sc.showError(err)
			continue
		}
		if resp != nil {
			sc.showMessage(resp.message)
		}
	}
	log.Debug().Msgf("Exiting readline loop...")
}

// Cleanup releases what the controller holds open.
func (sc *ShellController) Cleanup() {
	if sc.history != nil {
		if err := sc.history.Close(); err != nil {
			log.Err(err).Msg("closing-history")
		}
	}
}
