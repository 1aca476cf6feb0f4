package analysis

// Decision is the answer to "analyze this file?".
type Decision int

const (
	DecisionNo Decision = iota
	DecisionYes
	// DecisionAll answers yes for this file and every remaining one.
	DecisionAll
)

// Confirmer is asked before each file that needs a new analysis.
type Confirmer interface {
	Confirm(rel string) (Decision, error)
}

// ConfirmFunc adapts a function to Confirmer.
type ConfirmFunc func(rel string) (Decision, error)

func (f ConfirmFunc) Confirm(rel string) (Decision, error) { return f(rel) }

// AlwaysConfirm analyzes every file without asking.
var AlwaysConfirm Confirmer = ConfirmFunc(func(string) (Decision, error) { return DecisionAll, nil })
