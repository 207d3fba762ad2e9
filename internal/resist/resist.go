// Package resist defines the S/I/R resistance label domain and the
// score→level→label interpretation used to turn HIVdb numeric resistance
// scores into categorical calls.
//
// Rule: scores are for the algorithm, levels are for HIVdb, labels are for
// classifiers. Everything downstream compares labels only.
package resist

import "fmt"

// Label is a three-way resistance category.
type Label string

const (
	Susceptible  Label = "S"
	Intermediate Label = "I"
	Resistant    Label = "R"
)

// Labels is the fixed label order used everywhere an order matters:
// confusion-matrix axes, per-class arrays, probability vectors.
var Labels = [3]Label{Susceptible, Intermediate, Resistant}

// Index returns the position of l in the fixed label order (S=0, I=1, R=2)
// and false if l is outside the domain.
func Index(l Label) (int, bool) {
	for i, v := range Labels {
		if v == l {
			return i, true
		}
	}
	return 0, false
}

// Valid reports whether l is inside the {S, I, R} domain.
func Valid(l Label) bool {
	_, ok := Index(l)
	return ok
}

// ScoreToLevel converts an HIVdb resistance score to a resistance level
// (1-5) via the fixed threshold ladder. Boundaries are inclusive on the
// lower side of each band; there is no clamping.
func ScoreToLevel(score int) int {
	switch {
	case score <= 9:
		return 1
	case score <= 14:
		return 2
	case score <= 29:
		return 3
	case score <= 59:
		return 4
	default:
		return 5
	}
}

// Policy selects one of the fixed level→label mapping tables.
type Policy string

const (
	// PolicyDefault matches the Stanford HIVdb website interpretation:
	// levels 2 and 3 (potential low-level and low-level resistance) both
	// count as Intermediate.
	PolicyDefault Policy = "default"
	// PolicyConservative treats level 2 as still Susceptible.
	PolicyConservative Policy = "conservative"
	// PolicyStrict promotes level 3 to Resistant.
	PolicyStrict Policy = "strict"
)

var policyTables = map[Policy][5]Label{
	PolicyDefault:      {Susceptible, Intermediate, Intermediate, Resistant, Resistant},
	PolicyConservative: {Susceptible, Susceptible, Intermediate, Resistant, Resistant},
	PolicyStrict:       {Susceptible, Intermediate, Resistant, Resistant, Resistant},
}

// ParsePolicy resolves a policy name. Unknown names are an error; the
// policy set is a closed enumeration, not free-form configuration.
func ParsePolicy(name string) (Policy, error) {
	p := Policy(name)
	if _, ok := policyTables[p]; !ok {
		return "", fmt.Errorf("unknown mapping policy %q (want default, conservative or strict)", name)
	}
	return p, nil
}

// Table returns the five-entry level→label table for p, indexed by level-1.
func (p Policy) Table() [5]Label {
	return policyTables[p]
}

// LevelToLabel maps a resistance level to a label under policy p.
// Levels outside 1-5 map to Susceptible rather than failing: malformed
// upstream levels must not abort a whole evaluation run, and a new HIVdb
// level would otherwise break every caller at once.
func LevelToLabel(level int, p Policy) Label {
	if level < 1 || level > 5 {
		return Susceptible
	}
	return policyTables[p][level-1]
}
