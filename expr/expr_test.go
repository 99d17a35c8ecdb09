package expr

import (
	"testing"

	"github.com/facet-lang/facet/diagnostic"
)

type mapScope map[string]interface{}

func (m mapScope) Lookup(path string) (interface{}, bool) {
	v, ok := m[path]
	return v, ok
}

func TestEvalComparisons(t *testing.T) {
	scope := mapScope{"count": float64(5), "name": "alice", "active": true}
	tests := []struct {
		cond string
		want bool
	}{
		{`count == 5`, true},
		{`count != 5`, false},
		{`count > 3`, true},
		{`count < 3`, false},
		{`name == "alice"`, true},
		{`active`, true},
		{`not active`, false},
		{`count > 3 and name == "alice"`, true},
		{`count > 10 or active`, true},
		{`count > 10 or not active`, false},
		{`(count > 3 and count < 10)`, true},
	}
	for _, tt := range tests {
		t.Run(tt.cond, func(t *testing.T) {
			reporter := diagnostic.NewReporter("")
			got := Eval(tt.cond, scope, 1, 1, reporter)
			if reporter.HasAny() {
				t.Fatalf("unexpected diagnostics for %q: %v", tt.cond, reporter.Diagnostics())
			}
			if got != tt.want {
				t.Errorf("Eval(%q) = %v, want %v", tt.cond, got, tt.want)
			}
		})
	}
}

func TestEvalMembership(t *testing.T) {
	scope := mapScope{"tags": []interface{}{"a", "b", "c"}, "x": "b"}
	reporter := diagnostic.NewReporter("")
	if !Eval(`x in tags`, scope, 1, 1, reporter) {
		t.Error(`expected "x in tags" to be true`)
	}
}

func TestEvalUndefinedPathIsFalsy(t *testing.T) {
	scope := mapScope{}
	reporter := diagnostic.NewReporter("")
	if Eval(`missing`, scope, 1, 1, reporter) {
		t.Error("expected an undefined path to evaluate falsy")
	}
}

func TestEvalMixedTypeComparisonReportsF703(t *testing.T) {
	scope := mapScope{"n": float64(1), "s": "one"}
	reporter := diagnostic.NewReporter("")
	Eval(`n < s`, scope, 1, 1, reporter)
	found := false
	for _, d := range reporter.Diagnostics() {
		if d.Code == diagnostic.CodeMixedComparison {
			found = true
		}
	}
	if !found {
		t.Errorf("expected F703, got %v", reporter.Diagnostics())
	}
}
