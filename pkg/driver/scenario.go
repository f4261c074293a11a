package driver

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"rill/engine-go/pkg/engine"
	"rill/engine-go/pkg/runtime"
)

// Scenario drives a session through scripted rounds: inject events, run the
// round, compare reads against expectations.
type Scenario struct {
	Name    string          `yaml:"name"`
	Program string          `yaml:"program"`
	Rounds  []ScenarioRound `yaml:"rounds"`
}

// ScenarioRound is one round's worth of injections and expected reads. Keys
// of Inject are injection paths; keys of Expect are read paths.
type ScenarioRound struct {
	Inject map[string]any `yaml:"inject"`
	Expect map[string]any `yaml:"expect"`
}

// ValidationError aggregates scenario validation failures.
type ValidationError struct {
	Issues []string
}

func (e *ValidationError) Error() string {
	if len(e.Issues) == 0 {
		return "scenario: invalid configuration"
	}
	var b strings.Builder
	b.WriteString("scenario validation failed:")
	for _, issue := range e.Issues {
		b.WriteString("\n- ")
		b.WriteString(issue)
	}
	return b.String()
}

// LoadScenario parses and validates a scenario file.
func LoadScenario(path string) (*Scenario, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("scenario: open %s: %w", path, err)
	}
	defer file.Close()
	return ParseScenario(file)
}

// ParseScenario decodes a scenario from YAML.
func ParseScenario(r io.Reader) (*Scenario, error) {
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)

	var sc Scenario
	if err := decoder.Decode(&sc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("scenario: document is empty")
		}
		return nil, fmt.Errorf("scenario: parse: %w", err)
	}
	if err := sc.Validate(); err != nil {
		return nil, err
	}
	return &sc, nil
}

// Validate checks the scenario shape before any session is touched.
func (sc *Scenario) Validate() error {
	var errs ValidationError
	if sc.Name == "" {
		errs.Issues = append(errs.Issues, "name must be provided")
	}
	if sc.Program == "" {
		errs.Issues = append(errs.Issues, "program must name an example")
	} else if _, err := LookupExample(sc.Program); err != nil {
		errs.Issues = append(errs.Issues, err.Error())
	}
	if len(sc.Rounds) == 0 {
		errs.Issues = append(errs.Issues, "at least one round must be given")
	}
	for i, round := range sc.Rounds {
		for path := range round.Inject {
			if path == "" {
				errs.Issues = append(errs.Issues, fmt.Sprintf("rounds[%d]: empty injection path", i))
			}
		}
		for path := range round.Expect {
			if path == "" {
				errs.Issues = append(errs.Issues, fmt.Sprintf("rounds[%d]: empty read path", i))
			}
		}
	}
	if len(errs.Issues) > 0 {
		return &errs
	}
	return nil
}

// Mismatch records one expectation that did not hold.
type Mismatch struct {
	Round int
	Path  string
	Want  runtime.Value
	Got   runtime.Value
}

func (m Mismatch) String() string {
	return fmt.Sprintf("round %d: %s = %s, want %s",
		m.Round, m.Path, runtime.ToString(m.Got), runtime.ToString(m.Want))
}

// Report summarizes a scenario run.
type Report struct {
	Scenario   string
	Rounds     int
	Mismatches []Mismatch
}

// Ok reports whether every expectation held.
func (r *Report) Ok() bool { return len(r.Mismatches) == 0 }

// RunScenario executes the scenario against a fresh session for its program.
func RunScenario(sc *Scenario) (*Report, error) {
	program, err := LookupExample(sc.Program)
	if err != nil {
		return nil, err
	}
	session := engine.NewSession(program)
	report := &Report{Scenario: sc.Name}

	for i, round := range sc.Rounds {
		for _, path := range sortedKeys(round.Inject) {
			if err := session.Inject(path, decodeValue(round.Inject[path])); err != nil {
				return nil, fmt.Errorf("scenario %s round %d: %w", sc.Name, i, err)
			}
		}
		if err := session.EvaluateRound(); err != nil {
			return nil, fmt.Errorf("scenario %s round %d: %w", sc.Name, i, err)
		}
		report.Rounds++

		for _, path := range sortedKeys(round.Expect) {
			want := decodeValue(round.Expect[path])
			got := session.Read(path)
			if !runtime.Equal(want, got) {
				report.Mismatches = append(report.Mismatches, Mismatch{
					Round: i, Path: path, Want: want, Got: got,
				})
			}
		}
	}
	return report, nil
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// decodeValue maps plain YAML values into runtime values. Object fields are
// ordered by name so equality is stable.
func decodeValue(raw any) runtime.Value {
	switch v := raw.(type) {
	case nil:
		return runtime.Unit()
	case bool:
		return runtime.Bool(v)
	case int:
		return runtime.Int(int64(v))
	case int64:
		return runtime.Int(v)
	case uint64:
		return runtime.Int(int64(v))
	case float64:
		return runtime.Float(v)
	case string:
		return runtime.Text(v)
	case []any:
		items := make([]runtime.Value, 0, len(v))
		for _, item := range v {
			items = append(items, decodeValue(item))
		}
		return runtime.ListOf(items...)
	case map[string]any:
		fields := make([]runtime.ObjectField, 0, len(v))
		for _, name := range sortedKeys(v) {
			fields = append(fields, runtime.Field(name, decodeValue(v[name])))
		}
		return runtime.ObjectOf(fields...)
	default:
		return runtime.Skip()
	}
}
