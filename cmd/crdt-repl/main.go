// crdt-repl is an interactive playground for the replicated data types.
// Each "replica" is an in-process pair of stores (counters and sets); the
// sync command runs an anti-entropy round between two of them, which makes
// convergence easy to poke at by hand.
package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/ergochat/readline"

	"github.com/danburkert/crdt/utils"
)

type REPL struct {
	replicas map[string]*replica
	current  *replica
	tid      uint64
	log      utils.Logger
	rl       *readline.Instance
}

var completer = readline.NewPrefixCompleter(
	readline.PcItem("help"),

	readline.PcItem("new"),
	readline.PcItem("use"),
	readline.PcItem("replicas"),

	readline.PcItem("inc"),
	readline.PcItem("dec"),
	readline.PcItem("count"),

	readline.PcItem("add"),
	readline.PcItem("del"),
	readline.PcItem("has"),
	readline.PcItem("ls"),

	readline.PcItem("sync"),
	readline.PcItem("cmp"),

	readline.PcItem("exit"),
	readline.PcItem("quit"),
)

func filterInput(r rune) (rune, bool) {
	switch r {
	// block CtrlZ feature
	case readline.CharCtrlZ:
		return r, false
	}
	return r, true
}

func (repl *REPL) Open() (err error) {
	repl.rl, err = readline.NewEx(&readline.Config{
		Prompt:          "◌ ",
		HistoryFile:     ".crdt_cmd_log.txt",
		AutoComplete:    completer,
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",

		HistorySearchFold:   true,
		FuncFilterInputRune: filterInput,
	})
	if err != nil {
		return
	}
	repl.rl.CaptureExitSignal()
	return
}

func (repl *REPL) Close() error {
	if repl.rl != nil {
		_ = repl.rl.Close()
		repl.rl = nil
	}
	return nil
}

func (repl *REPL) REPL() (out string, err error) {
	var line string
	line, err = repl.rl.Readline()
	if err == readline.ErrInterrupt && len(line) != 0 {
		return "", nil
	}
	if err != nil {
		return "", err
	}

	line = strings.TrimSpace(line)
	if len(line) == 0 {
		return "", nil
	}
	args := strings.Fields(line)
	cmd, args := args[0], args[1:]

	switch cmd {
	// replica handling
	case "new":
		out, err = repl.CommandNew(args)
	case "use":
		out, err = repl.CommandUse(args)
	case "replicas":
		out, err = repl.CommandReplicas(args)
	// counters
	case "inc":
		out, err = repl.CommandInc(args, 1)
	case "dec":
		out, err = repl.CommandInc(args, -1)
	case "count":
		out, err = repl.CommandCount(args)
	// sets
	case "add":
		out, err = repl.CommandAdd(args)
	case "del":
		out, err = repl.CommandDel(args)
	case "has":
		out, err = repl.CommandHas(args)
	case "ls", "show", "list":
		out, err = repl.CommandList(args)
	// convergence
	case "sync":
		out, err = repl.CommandSync(args)
	case "cmp":
		out, err = repl.CommandCompare(args)
	case "help":
		out = usage
	case "exit", "quit":
		err = io.EOF
	default:
		_, _ = fmt.Fprintf(os.Stderr, "command unknown: %s\n", cmd)
	}
	return
}

func main() {
	repl := REPL{
		replicas: make(map[string]*replica),
		log:      utils.NewDefaultLogger(slog.LevelWarn),
	}

	err := repl.Open()
	var out string

	for err != io.EOF {
		if err != nil {
			_, _ = fmt.Fprintf(os.Stdout, "%s\n", err.Error())
			err = nil
		} else if out != "" {
			_, _ = fmt.Fprintf(os.Stdout, "%s\n", out)
		}
		out, err = repl.REPL()
	}

	_ = repl.Close()
}
