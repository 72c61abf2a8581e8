package harness

import (
	"fmt"
	"slices"
	"strings"
)

// AssertionError is returned when an assertion fails.
type AssertionError struct {
	Type     string
	Expected string
	Actual   string
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder
	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s", e.Actual)
	return buf.String()
}

// EvaluateAssertions checks every assertion against the result and returns
// the failure messages.
func EvaluateAssertions(result *Result, assertions []Assertion) []string {
	var failures []string
	for i, a := range assertions {
		if err := evaluate(result, a); err != nil {
			failures = append(failures, fmt.Sprintf("assertions[%d]: %v", i, err))
		}
	}
	return failures
}

func evaluate(result *Result, a Assertion) error {
	switch a.Type {
	case AssertJournalCount:
		if len(result.Entries) != a.Count {
			return &AssertionError{
				Type:     a.Type,
				Expected: fmt.Sprintf("%d journal entries", a.Count),
				Actual:   fmt.Sprintf("%d journal entries", len(result.Entries)),
			}
		}

	case AssertPendingCount:
		if result.Pending != a.Count {
			return &AssertionError{
				Type:     a.Type,
				Expected: fmt.Sprintf("%d pending entries", a.Count),
				Actual:   fmt.Sprintf("%d pending entries", result.Pending),
			}
		}

	case AssertPosition:
		if a.Placement >= len(result.Positions) {
			return &AssertionError{
				Type:     a.Type,
				Expected: fmt.Sprintf("placement %d", a.Placement),
				Actual:   fmt.Sprintf("%d placements", len(result.Positions)),
			}
		}
		got := result.Positions[a.Placement]
		if got.X != a.X || got.Y != a.Y {
			return &AssertionError{
				Type:     a.Type,
				Expected: fmt.Sprintf("placement %d at (%g, %g)", a.Placement, a.X, a.Y),
				Actual:   fmt.Sprintf("(%g, %g)", got.X, got.Y),
			}
		}

	case AssertLayerOrder:
		want := make([]string, len(a.Placements))
		for i, idx := range a.Placements {
			if idx < 0 || idx >= len(result.Placements) {
				return &AssertionError{
					Type:     a.Type,
					Expected: fmt.Sprintf("placement %d", idx),
					Actual:   fmt.Sprintf("%d placements", len(result.Placements)),
				}
			}
			want[i] = result.Placements[idx]
		}
		if !slices.Equal(want, result.Layers) {
			return &AssertionError{
				Type:     a.Type,
				Expected: strings.Join(want, ", "),
				Actual:   strings.Join(result.Layers, ", "),
			}
		}

	default:
		return fmt.Errorf("unknown assertion type %q", a.Type)
	}
	return nil
}
