package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/peterh/liner"
	"golang.org/x/term"

	"rill/engine-go/pkg/engine"
	"rill/engine-go/pkg/runtime"
	"rill/engine-go/pkg/store"
)

func runRepl(args []string) int {
	example := "counter"
	storePath := ""
	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "--example":
			if i+1 >= len(args) {
				fmt.Fprintln(os.Stderr, "--example requires a name")
				return 1
			}
			i++
			example = args[i]
		case "--store":
			if i+1 >= len(args) {
				fmt.Fprintln(os.Stderr, "--store requires a path")
				return 1
			}
			i++
			storePath = args[i]
		default:
			fmt.Fprintf(os.Stderr, "unknown repl flag %q\n", args[i])
			return 1
		}
	}

	session, db, err := openSession(example, storePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		return 1
	}
	if db != nil {
		defer db.Close()
	}

	fmt.Fprintf(os.Stdout, "%s, program %q, session %s\n", cliToolVersion, example, session.Id())
	fmt.Fprintln(os.Stdout, `type "help" for commands`)

	readLine := lineReader()
	defer readLine.close()

	for {
		line, err := readLine.next("rill> ")
		if err == io.EOF {
			fmt.Fprintln(os.Stdout)
			return 0
		}
		if err != nil {
			fmt.Fprintf(os.Stderr, "read error: %v\n", err)
			return 1
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		readLine.remember(line)

		fields := strings.Fields(line)
		switch fields[0] {
		case "exit", "quit":
			return 0
		case "help":
			printReplHelp()
		case "inject":
			if len(fields) < 2 {
				fmt.Fprintln(os.Stderr, "usage: inject <path> [value]")
				continue
			}
			payload := runtime.Value(runtime.Unit())
			if len(fields) >= 3 {
				payload = parseLiteral(strings.Join(fields[2:], " "))
			}
			if err := session.Inject(fields[1], payload); err != nil {
				fmt.Fprintf(os.Stderr, "%v\n", err)
			}
		case "round":
			if err := session.EvaluateRound(); err != nil {
				fmt.Fprintf(os.Stderr, "round aborted: %v\n", err)
				continue
			}
			fmt.Fprintf(os.Stdout, "round %d done\n", session.Round())
		case "read":
			if len(fields) != 2 {
				fmt.Fprintln(os.Stderr, "usage: read <path>")
				continue
			}
			fmt.Fprintln(os.Stdout, runtime.ToString(session.Read(fields[1])))
		case "holds":
			for _, snap := range session.SnapshotHolds() {
				fmt.Fprintf(os.Stdout, "%s#%d = %s\n", snap.Scope, snap.Node, runtime.ToString(snap.Value))
			}
		case "save":
			if db == nil {
				fmt.Fprintln(os.Stderr, "no store configured (use --store)")
				continue
			}
			if err := saveSession(db, example, session); err != nil {
				fmt.Fprintf(os.Stderr, "save failed: %v\n", err)
				continue
			}
			fmt.Fprintln(os.Stdout, "saved")
		case "reset":
			session.Reset()
			fmt.Fprintln(os.Stdout, "session reset")
		default:
			fmt.Fprintf(os.Stderr, "unknown command %q (try \"help\")\n", fields[0])
		}
	}
}

func saveSession(db store.Store, example string, session *engine.Session) error {
	return db.Save(example, session.Id(), session.SnapshotHolds())
}

func printReplHelp() {
	fmt.Fprintln(os.Stdout, "commands:")
	fmt.Fprintln(os.Stdout, "  inject <path> [value]   queue an event for the next round")
	fmt.Fprintln(os.Stdout, "  round                   evaluate one round")
	fmt.Fprintln(os.Stdout, "  read <path>             read a value by path")
	fmt.Fprintln(os.Stdout, "  holds                   list hold cells")
	fmt.Fprintln(os.Stdout, "  save                    persist holds to the store")
	fmt.Fprintln(os.Stdout, "  reset                   discard all session state")
	fmt.Fprintln(os.Stdout, "  exit                    leave the repl")
}

// replReader abstracts over liner (interactive) and bufio (piped input).
type replReader struct {
	line    *liner.State
	scanner *bufio.Scanner
}

func lineReader() *replReader {
	if term.IsTerminal(int(os.Stdin.Fd())) {
		state := liner.NewLiner()
		state.SetCtrlCAborts(true)
		return &replReader{line: state}
	}
	return &replReader{scanner: bufio.NewScanner(os.Stdin)}
}

func (r *replReader) next(prompt string) (string, error) {
	if r.line != nil {
		text, err := r.line.Prompt(prompt)
		if err == liner.ErrPromptAborted {
			return "", io.EOF
		}
		return text, err
	}
	if !r.scanner.Scan() {
		if err := r.scanner.Err(); err != nil {
			return "", err
		}
		return "", io.EOF
	}
	return r.scanner.Text(), nil
}

func (r *replReader) remember(line string) {
	if r.line != nil {
		r.line.AppendHistory(line)
	}
}

func (r *replReader) close() {
	if r.line != nil {
		r.line.Close()
	}
}
