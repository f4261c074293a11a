package main

import (
	"os"
	"path/filepath"
	"testing"

	"rill/engine-go/pkg/runtime"
)

func TestRunExitCodes(t *testing.T) {
	cases := []struct {
		args []string
		want int
	}{
		{nil, 1},
		{[]string{"--help"}, 0},
		{[]string{"version"}, 0},
		{[]string{"examples"}, 0},
		{[]string{"frobnicate"}, 1},
		{[]string{"run"}, 1},
	}
	for _, tc := range cases {
		if got := run(tc.args); got != tc.want {
			t.Fatalf("run(%v) = %d, want %d", tc.args, got, tc.want)
		}
	}
}

func TestRunScenarioFile(t *testing.T) {
	scenario := []byte(`
name: counter-smoke
program: counter
rounds:
  - expect:
      count: 0
  - inject:
      button.click: 1
    expect:
      count: 1
`)
	path := filepath.Join(t.TempDir(), "counter.yml")
	if err := os.WriteFile(path, scenario, 0o644); err != nil {
		t.Fatal(err)
	}
	if got := run([]string{"run", path}); got != 0 {
		t.Fatalf("run = %d, want 0", got)
	}

	failing := []byte(`
name: counter-broken
program: counter
rounds:
  - expect:
      count: 99
`)
	badPath := filepath.Join(t.TempDir(), "broken.yml")
	if err := os.WriteFile(badPath, failing, 0o644); err != nil {
		t.Fatal(err)
	}
	if got := run([]string{"run", badPath}); got != 1 {
		t.Fatalf("run = %d, want 1 for failing scenario", got)
	}
}

func TestOpenSessionWithStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rill.db")

	session, db, err := openSession("counter", path)
	if err != nil {
		t.Fatal(err)
	}
	if err := session.Inject("button.click", runtime.Unit()); err != nil {
		t.Fatal(err)
	}
	if err := session.EvaluateRound(); err != nil {
		t.Fatal(err)
	}
	if err := saveSession(db, "counter", session); err != nil {
		t.Fatal(err)
	}
	firstId := session.Id()
	db.Close()

	resumed, db, err := openSession("counter", path)
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()
	if resumed.Id() != firstId {
		t.Fatalf("resumed session id %q, want %q", resumed.Id(), firstId)
	}
	if err := resumed.EvaluateRound(); err != nil {
		t.Fatal(err)
	}
	got := resumed.Read("count")
	if !runtime.Equal(runtime.Int(1), got) {
		t.Fatalf("resumed count = %s, want 1", runtime.ToString(got))
	}

	if _, _, err := openSession("no-such-example", ""); err == nil {
		t.Fatal("expected error for unknown example")
	}
}

func TestParseLiteral(t *testing.T) {
	cases := []struct {
		text string
		want runtime.Value
	}{
		{"true", runtime.Bool(true)},
		{"false", runtime.Bool(false)},
		{"unit", runtime.Unit()},
		{"42", runtime.Int(42)},
		{"-3", runtime.Int(-3)},
		{"2.5", runtime.Float(2.5)},
		{`"quoted text"`, runtime.Text("quoted text")},
		{"bare", runtime.Text("bare")},
	}
	for _, tc := range cases {
		got := parseLiteral(tc.text)
		if !runtime.Equal(tc.want, got) {
			t.Fatalf("parseLiteral(%q) = %s, want %s", tc.text, runtime.ToString(got), runtime.ToString(tc.want))
		}
	}
}
