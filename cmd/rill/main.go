package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"rill/engine-go/pkg/driver"
	"rill/engine-go/pkg/engine"
	"rill/engine-go/pkg/runtime"
	"rill/engine-go/pkg/store"
)

const cliToolVersion = "rill-cli 0.0.0-dev"

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	if len(args) == 0 {
		printUsage()
		return 1
	}

	switch args[0] {
	case "--help", "-h", "help":
		printUsage()
		return 0
	case "--version", "-V", "version":
		fmt.Fprintln(os.Stdout, cliToolVersion)
		return 0
	case "run":
		return runScenarios(args[1:])
	case "repl":
		return runRepl(args[1:])
	case "examples":
		return runExamples()
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n", args[0])
		printUsage()
		return 1
	}
}

func runScenarios(args []string) int {
	if len(args) == 0 {
		fmt.Fprintln(os.Stderr, "rill run requires at least one scenario file")
		return 1
	}
	failed := 0
	for _, path := range args {
		scenario, err := driver.LoadScenario(path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%v\n", err)
			failed++
			continue
		}
		report, err := driver.RunScenario(scenario)
		if err != nil {
			fmt.Fprintf(os.Stderr, "scenario %s: %v\n", scenario.Name, err)
			failed++
			continue
		}
		if report.Ok() {
			fmt.Fprintf(os.Stdout, "ok   %s (%d rounds)\n", report.Scenario, report.Rounds)
			continue
		}
		failed++
		fmt.Fprintf(os.Stderr, "FAIL %s (%d rounds)\n", report.Scenario, report.Rounds)
		for _, mismatch := range report.Mismatches {
			fmt.Fprintf(os.Stderr, "  %s\n", mismatch)
		}
	}
	if failed > 0 {
		return 1
	}
	return 0
}

func runExamples() int {
	for _, name := range driver.ExampleNames() {
		fmt.Fprintln(os.Stdout, name)
	}
	return 0
}

// openSession builds a session for the named example, resuming persisted
// holds when a store path is given.
func openSession(example, storePath string) (*engine.Session, store.Store, error) {
	program, err := driver.LookupExample(example)
	if err != nil {
		return nil, nil, err
	}

	if storePath == "" {
		return engine.NewSession(program), nil, nil
	}

	db, err := store.NewSQLiteStore(storePath)
	if err != nil {
		return nil, nil, err
	}
	sessionId, holds, err := db.Load(example)
	if err != nil {
		db.Close()
		return nil, nil, err
	}
	var opts []engine.Option
	if sessionId != "" {
		opts = append(opts, engine.WithSessionId(sessionId))
	}
	session := engine.NewSession(program, opts...)
	if len(holds) > 0 {
		session.RestoreHolds(holds)
	}
	return session, db, nil
}

func parseLiteral(text string) runtime.Value {
	switch text {
	case "true", "True":
		return runtime.Bool(true)
	case "false", "False":
		return runtime.Bool(false)
	case "unit":
		return runtime.Unit()
	}
	if i, err := strconv.ParseInt(text, 10, 64); err == nil {
		return runtime.Int(i)
	}
	if f, err := strconv.ParseFloat(text, 64); err == nil {
		return runtime.Float(f)
	}
	if len(text) >= 2 && strings.HasPrefix(text, `"`) && strings.HasSuffix(text, `"`) {
		return runtime.Text(text[1 : len(text)-1])
	}
	return runtime.Text(text)
}

func printUsage() {
	fmt.Fprintln(os.Stderr, "Usage:")
	fmt.Fprintln(os.Stderr, "  rill run <scenario.yml> [...]")
	fmt.Fprintln(os.Stderr, "  rill repl [--example name] [--store path]")
	fmt.Fprintln(os.Stderr, "  rill examples")
	fmt.Fprintln(os.Stderr, "  rill version")
}
