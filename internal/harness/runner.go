package harness

import (
	"fmt"
	"strings"
	"time"

	"github.com/roach88/driftsync/internal/engine"
	"github.com/roach88/driftsync/internal/testutil"
	"github.com/roach88/driftsync/internal/varstore"
)

// stepTimeout bounds how long the runner waits for the handler's run
// loop to acknowledge a step before declaring the scenario stuck.
const stepTimeout = 5 * time.Second

// Result captures everything observable after a scenario execution.
type Result struct {
	// Sent holds each outbound frame in send order, newline trimmed.
	Sent []string
	// Final is the adapter's variable state after the last step.
	Final map[string]string
	// Pending is the number of changes still queued at the end.
	Pending int
}

// Run executes a scenario against a real network sync handler wired to
// a fake connection and a manual flush timer. The scenario name is
// used as the session id and "tester" as the fixed username, so the
// trace is fully deterministic.
func Run(scenario *Scenario) (*Result, error) {
	// Scenarios built in code bypass LoadScenario, so validate here too;
	// an invalid script (a tick after a pause) would otherwise hang.
	if err := validateScenario(scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	adapter := varstore.NewMemory(scenario.Variables)
	conn := testutil.NewScriptConn()
	dialer := &testutil.ScriptDialer{Conn: conn}
	ticker := testutil.NewManualTicker()
	steps := make(chan engine.Step, 64)

	h := engine.NewNetworkHandler(adapter, dialer, "ws://harness.invalid/sync", scenario.Name,
		engine.WithTickerFactory(func(d time.Duration) engine.Ticker { return ticker }),
		engine.WithUsernameGenerator(engine.NewFixedUsernameGenerator("tester")),
		engine.WithStepHook(func(s engine.Step) { steps <- s }),
	)
	defer h.Destroy()

	h.OnStart()
	if err := waitStep(steps, engine.StepOpen); err != nil {
		return nil, err
	}

	for i, step := range scenario.Steps {
		var err error
		switch {
		case step.Change != "":
			adapter.Set(step.Change, step.Value)
			h.VariableChanged(step.Change)
		case step.Tick:
			ticker.Tick()
			err = waitStep(steps, engine.StepTick)
		case step.Inbound != "":
			conn.Deliver([]byte(step.Inbound))
			err = waitStep(steps, engine.StepPayload)
		case step.Pause:
			h.OnPause()
			err = waitStep(steps, engine.StepPause)
		}
		if err != nil {
			return nil, fmt.Errorf("steps[%d]: %w", i, err)
		}
	}

	pending := h.QueueLen()
	h.Destroy()

	result := &Result{
		Final:   adapter.Snapshot(),
		Pending: pending,
	}
	for _, frame := range conn.Sent() {
		result.Sent = append(result.Sent, strings.TrimSuffix(string(frame), "\n"))
	}
	return result, nil
}

// waitStep blocks until the run loop reports the wanted step.
func waitStep(steps <-chan engine.Step, want engine.Step) error {
	select {
	case got := <-steps:
		if got != want {
			return fmt.Errorf("expected step %q, got %q", want, got)
		}
		return nil
	case <-time.After(stepTimeout):
		return fmt.Errorf("timed out waiting for step %q", want)
	}
}
