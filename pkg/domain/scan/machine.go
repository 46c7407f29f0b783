package scan

import (
	"errors"
	"fmt"

	"github.com/felixgeelhaar/statekit"
)

// State constants for statekit integration.
const (
	StateIdle     = "idle"
	StateScanning = "scanning"
	StateComplete = "complete"
	StateError    = "error"
)

// Events accepted by the machine.
const (
	EventStart   = "start"
	EventSucceed = "succeed"
	EventFail    = "fail"
	EventSettle  = "settle"
)

// ErrScanInProgress is returned when a scan is requested while another one
// is still running.
var ErrScanInProgress = errors.New("a scan is already in progress")

// machineContext carries the kind of the running or last scan.
type machineContext struct {
	Kind Kind
}

const actionRecordKind = "recordKind"

// Machine tracks one scan flow: idle, scanning, then complete or error until
// the progress is settled.
type Machine struct {
	interpreter *statekit.Interpreter[machineContext]
}

// NewMachine builds a machine in the idle state.
func NewMachine() (*Machine, error) {
	builder := statekit.NewMachine[machineContext]("scan-machine").
		WithInitial(statekit.StateID(StateIdle)).
		WithContext(machineContext{}).
		WithAction(actionRecordKind, func(ctx *machineContext, e statekit.Event) {
			if kind, ok := e.Payload.(Kind); ok {
				ctx.Kind = kind
			}
		})

	builder.State(StateIdle).
		On(EventStart).Target(StateScanning).Do(actionRecordKind).
		Done()

	builder.State(StateScanning).
		On(EventSucceed).Target(StateComplete).
		On(EventFail).Target(StateError).
		Done()

	// A finished scan may be restarted before its progress is cleared.
	builder.State(StateComplete).
		On(EventSettle).Target(StateIdle).
		On(EventStart).Target(StateScanning).Do(actionRecordKind).
		Done()

	builder.State(StateError).
		On(EventSettle).Target(StateIdle).
		On(EventStart).Target(StateScanning).Do(actionRecordKind).
		Done()

	machine, err := builder.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build scan machine: %w", err)
	}

	interpreter := statekit.NewInterpreter(machine)
	interpreter.Start()
	return &Machine{interpreter: interpreter}, nil
}

// Current returns the current state.
func (m *Machine) Current() string {
	return string(m.interpreter.State().Value)
}

// Kind returns the kind of the running scan, or of the last one once it
// has finished. It is empty before the first scan.
func (m *Machine) Kind() Kind {
	return m.interpreter.State().Context.Kind
}

// IsBusy reports whether a scan is running.
func (m *Machine) IsBusy() bool {
	return m.Current() == StateScanning
}

// Start enters the scanning state for a scan of the given kind.
func (m *Machine) Start(kind Kind) error {
	if m.IsBusy() {
		return fmt.Errorf("%w: %s scan running", ErrScanInProgress, m.Kind())
	}
	return m.sendWith(EventStart, kind)
}

// Succeed marks the running scan complete.
func (m *Machine) Succeed() error { return m.send(EventSucceed) }

// Fail marks the running scan failed.
func (m *Machine) Fail() error { return m.send(EventFail) }

// Settle returns a finished scan to idle.
func (m *Machine) Settle() error { return m.send(EventSettle) }

func (m *Machine) send(event string) error {
	return m.sendWith(event, nil)
}

func (m *Machine) sendWith(event string, payload any) error {
	before := m.Current()
	m.interpreter.Send(statekit.Event{Type: statekit.EventType(event), Payload: payload})
	if m.Current() != before {
		return nil
	}
	return fmt.Errorf("the action '%s' is not allowed while the scan is in the '%s' state", event, before)
}
