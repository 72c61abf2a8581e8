package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"gopkg.in/yaml.v3"

	"github.com/Arterning/style-mirror/internal/drag"
	"github.com/Arterning/style-mirror/internal/model"
)

// Scenario defines one composition scenario.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Kind selects the surface: outfit or occasion.
	Kind model.SceneKind `yaml:"kind"`

	// Background is the occasion photo. Required for occasion scenarios.
	Background string `yaml:"background,omitempty"`

	// Wardrobe is captured in order before the surface is opened.
	Wardrobe []WardrobeItem `yaml:"wardrobe"`

	// Steps are applied to the surface in order.
	Steps []Step `yaml:"steps"`

	// Assertions validate the final state.
	Assertions []Assertion `yaml:"assertions"`
}

// WardrobeItem seeds one catalog item.
type WardrobeItem struct {
	Name     string `yaml:"name"`
	Image    string `yaml:"image"`
	Category string `yaml:"category,omitempty"`
}

// Step is one operation on the surface. Exactly one operation field is set.
type Step struct {
	Add       string       `yaml:"add,omitempty"`
	Touch     *TouchStep   `yaml:"touch,omitempty"`
	Pointer   *PointerStep `yaml:"pointer,omitempty"`
	Preview   string       `yaml:"preview,omitempty"`
	Commit    bool         `yaml:"commit,omitempty"`
	Retry     bool         `yaml:"retry,omitempty"`
	SaveDraft bool         `yaml:"save_draft,omitempty"`
	Store     string       `yaml:"store,omitempty"`

	// ExpectError is the error code the step must fail with.
	// Empty means the step must succeed.
	ExpectError string `yaml:"expect_error,omitempty"`
}

// TouchStep is a touch event. Target is read for start only.
type TouchStep struct {
	Phase  string       `yaml:"phase"`
	Target int          `yaml:"target,omitempty"`
	Points []drag.Point `yaml:"points,omitempty"`
}

// PointerStep is a pointer event. Target is read for down only.
type PointerStep struct {
	Phase  string  `yaml:"phase"`
	Target int     `yaml:"target,omitempty"`
	Button int     `yaml:"button,omitempty"`
	X      float64 `yaml:"x"`
	Y      float64 `yaml:"y"`
}

// Assertion validates the final state.
type Assertion struct {
	// Type is one of the Assert* constants.
	Type string `yaml:"type"`

	// Count is used by journal_count and pending_count.
	Count int `yaml:"count,omitempty"`

	// Placement, X and Y are used by position.
	Placement int     `yaml:"placement,omitempty"`
	X         float64 `yaml:"x,omitempty"`
	Y         float64 `yaml:"y,omitempty"`

	// Placements is the expected back-to-front order, used by layer_order.
	Placements []int `yaml:"placements,omitempty"`
}

// Assertion type constants.
const (
	AssertJournalCount = "journal_count"
	AssertPendingCount = "pending_count"
	AssertPosition     = "position"
	AssertLayerOrder   = "layer_order"
)

// Store fault constants for Step.Store.
const (
	StoreFailWrites = "fail_writes"
	StoreHeal       = "heal"
)

var (
	touchPhases = map[string]drag.TouchPhase{
		"start":  drag.TouchStart,
		"move":   drag.TouchMove,
		"end":    drag.TouchEnd,
		"cancel": drag.TouchCancel,
	}
	pointerPhases = map[string]drag.PointerPhase{
		"down":   drag.PointerDown,
		"move":   drag.PointerMove,
		"up":     drag.PointerUp,
		"cancel": drag.PointerCancel,
	}
)

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or fails validation.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	return ParseScenario(data)
}

// ParseScenario parses and validates scenario YAML.
func ParseScenario(data []byte) (*Scenario, error) {
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true) // Reject unknown fields
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

// LoadDir loads every *.yaml scenario in dir, sorted by file name.
func LoadDir(dir string) ([]*Scenario, error) {
	paths, err := filepath.Glob(filepath.Join(dir, "*.yaml"))
	if err != nil {
		return nil, err
	}
	slices.Sort(paths)

	scenarios := make([]*Scenario, 0, len(paths))
	for _, p := range paths {
		s, err := LoadScenario(p)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", filepath.Base(p), err)
		}
		scenarios = append(scenarios, s)
	}
	return scenarios, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	if !s.Kind.Valid() {
		return fmt.Errorf("kind must be %q or %q, got %q", model.KindOutfit, model.KindOccasion, s.Kind)
	}
	if s.Kind == model.KindOccasion && s.Background == "" {
		return fmt.Errorf("background is required for occasion scenarios")
	}
	if len(s.Steps) == 0 {
		return fmt.Errorf("steps list is required and must be non-empty")
	}
	if len(s.Assertions) == 0 {
		return fmt.Errorf("assertions list is required and must be non-empty")
	}

	names := make(map[string]bool, len(s.Wardrobe))
	for i, w := range s.Wardrobe {
		if w.Name == "" || w.Image == "" {
			return fmt.Errorf("wardrobe[%d]: name and image are required", i)
		}
		if names[w.Name] {
			return fmt.Errorf("wardrobe[%d]: duplicate name %q", i, w.Name)
		}
		names[w.Name] = true
	}

	for i, step := range s.Steps {
		if err := validateStep(i, step, names); err != nil {
			return err
		}
	}

	for i, a := range s.Assertions {
		if err := validateAssertion(i, a); err != nil {
			return err
		}
	}
	return nil
}

func validateStep(index int, step Step, names map[string]bool) error {
	ops := 0
	for _, set := range []bool{
		step.Add != "",
		step.Touch != nil,
		step.Pointer != nil,
		step.Preview != "",
		step.Commit,
		step.Retry,
		step.SaveDraft,
		step.Store != "",
	} {
		if set {
			ops++
		}
	}
	if ops != 1 {
		return fmt.Errorf("steps[%d]: exactly one operation is required, got %d", index, ops)
	}

	switch {
	case step.Add != "":
		if !names[step.Add] {
			return fmt.Errorf("steps[%d]: unknown wardrobe item %q", index, step.Add)
		}
	case step.Touch != nil:
		if _, ok := touchPhases[step.Touch.Phase]; !ok {
			return fmt.Errorf("steps[%d]: unknown touch phase %q", index, step.Touch.Phase)
		}
	case step.Pointer != nil:
		if _, ok := pointerPhases[step.Pointer.Phase]; !ok {
			return fmt.Errorf("steps[%d]: unknown pointer phase %q", index, step.Pointer.Phase)
		}
	case step.Store != "":
		if step.Store != StoreFailWrites && step.Store != StoreHeal {
			return fmt.Errorf("steps[%d]: unknown store fault %q", index, step.Store)
		}
	}
	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a Assertion) error {
	switch a.Type {
	case "":
		return fmt.Errorf("assertions[%d]: type is required", index)
	case AssertJournalCount, AssertPendingCount:
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for %s", index, a.Type)
		}
	case AssertPosition:
		if a.Placement < 0 {
			return fmt.Errorf("assertions[%d]: placement must be non-negative", index)
		}
	case AssertLayerOrder:
		if len(a.Placements) == 0 {
			return fmt.Errorf("assertions[%d]: placements list is required for layer_order", index)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}
	return nil
}
