package checkout

// State implements the state pattern for the checkout lifecycle. Failure
// exits lead back to Idle only before committing begins; once committing,
// the transaction runs to Settled.
type State interface {
	Status() Status
	OnValidationStarted(t *Transaction) (State, error)
	OnValidationFailed(t *Transaction, reason string) (State, error)
	OnConfirmed(t *Transaction) (State, error)
	OnSettled(t *Transaction) (State, error)
}

type Status string

const (
	StatusIdle       Status = "idle"
	StatusValidating Status = "validating"
	StatusCommitting Status = "committing"
	StatusSettled    Status = "settled"
)

func (s Status) String() string { return string(s) }

// Transaction tracks a single checkout through its lifecycle.
type Transaction struct {
	state         State
	FailureReason string
}

func NewTransaction() *Transaction {
	return &Transaction{state: idleState{}}
}

func (t *Transaction) Status() Status { return t.state.Status() }

func (t *Transaction) BeginValidation() error {
	return t.apply(t.state.OnValidationStarted(t))
}

func (t *Transaction) FailValidation(reason string) error {
	return t.apply(t.state.OnValidationFailed(t, reason))
}

func (t *Transaction) Confirm() error {
	return t.apply(t.state.OnConfirmed(t))
}

func (t *Transaction) Settle() error {
	return t.apply(t.state.OnSettled(t))
}

func (t *Transaction) apply(next State, err error) error {
	if err != nil {
		return err
	}
	t.state = next
	return nil
}

type idleState struct{}

func (idleState) Status() Status { return StatusIdle }

func (idleState) OnValidationStarted(t *Transaction) (State, error) {
	t.FailureReason = ""
	return validatingState{}, nil
}

func (idleState) OnValidationFailed(*Transaction, string) (State, error) {
	return nil, ErrInvalidStateTransition
}

func (idleState) OnConfirmed(*Transaction) (State, error) {
	return nil, ErrInvalidStateTransition
}

func (idleState) OnSettled(*Transaction) (State, error) {
	return nil, ErrInvalidStateTransition
}

type validatingState struct{}

func (validatingState) Status() Status { return StatusValidating }

func (validatingState) OnValidationStarted(t *Transaction) (State, error) {
	t.FailureReason = ""
	return validatingState{}, nil
}

func (validatingState) OnValidationFailed(t *Transaction, reason string) (State, error) {
	t.FailureReason = reason
	return idleState{}, nil
}

func (validatingState) OnConfirmed(t *Transaction) (State, error) {
	t.FailureReason = ""
	return committingState{}, nil
}

func (validatingState) OnSettled(*Transaction) (State, error) {
	return nil, ErrInvalidStateTransition
}

type committingState struct{}

func (committingState) Status() Status { return StatusCommitting }

func (committingState) OnValidationStarted(*Transaction) (State, error) {
	return nil, ErrInvalidStateTransition
}

func (committingState) OnValidationFailed(*Transaction, string) (State, error) {
	return nil, ErrInvalidStateTransition
}

func (committingState) OnConfirmed(*Transaction) (State, error) {
	return nil, ErrInvalidStateTransition
}

func (committingState) OnSettled(t *Transaction) (State, error) {
	t.FailureReason = ""
	return settledState{}, nil
}

type settledState struct{}

func (settledState) Status() Status { return StatusSettled }

func (settledState) OnValidationStarted(*Transaction) (State, error) {
	return nil, ErrInvalidStateTransition
}

func (settledState) OnValidationFailed(*Transaction, string) (State, error) {
	return nil, ErrInvalidStateTransition
}

func (settledState) OnConfirmed(*Transaction) (State, error) {
	return nil, ErrInvalidStateTransition
}

func (settledState) OnSettled(*Transaction) (State, error) {
	return settledState{}, nil
}
