package harness

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Scenario defines a conformance test scenario.
// Scenarios drive a network sync session through a scripted sequence
// of variable changes, flush ticks, and inbound payloads.
type Scenario struct {
	// Name uniquely identifies this scenario. It doubles as the
	// session id and the golden file name.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Variables is the tracked variable set, in declaration order.
	Variables []string `yaml:"variables"`

	// Steps is the scripted sequence to execute against the handler.
	Steps []Step `yaml:"steps"`
}

// Step is one scripted action. Exactly one of the step kinds must be
// set: a change (with optional value), a tick, an inbound payload, or
// a pause.
type Step struct {
	// Change names a variable to update; Value is the new value.
	Change string `yaml:"change,omitempty"`
	Value  string `yaml:"value,omitempty"`

	// Tick fires one flush tick.
	Tick bool `yaml:"tick,omitempty"`

	// Inbound delivers one payload from the connection. Multi-message
	// payloads separate messages with newlines.
	Inbound string `yaml:"inbound,omitempty"`

	// Pause stops the flush timer.
	Pause bool `yaml:"pause,omitempty"`
}

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	// Strict field validation catches typos like "step:" vs "steps:"
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	if len(s.Variables) == 0 {
		return fmt.Errorf("variables list is required and must be non-empty")
	}

	if len(s.Steps) == 0 {
		return fmt.Errorf("steps list is required and must be non-empty")
	}

	paused := false
	for i, step := range s.Steps {
		if err := validateStep(i, &step); err != nil {
			return err
		}
		// The flush timer never restarts once stopped, so a tick after
		// a pause would wait forever.
		if step.Tick && paused {
			return fmt.Errorf("steps[%d]: tick after pause can never fire", i)
		}
		if step.Pause {
			paused = true
		}
	}

	return nil
}

// validateStep checks that exactly one step kind is set.
func validateStep(index int, step *Step) error {
	kinds := 0
	if step.Change != "" {
		kinds++
	}
	if step.Tick {
		kinds++
	}
	if step.Inbound != "" {
		kinds++
	}
	if step.Pause {
		kinds++
	}

	switch kinds {
	case 0:
		return fmt.Errorf("steps[%d]: one of change, tick, inbound, or pause is required", index)
	case 1:
		// ok
	default:
		return fmt.Errorf("steps[%d]: only one of change, tick, inbound, or pause may be set", index)
	}

	if step.Change == "" && step.Value != "" {
		return fmt.Errorf("steps[%d]: value requires change", index)
	}

	return nil
}
