package core

// OperationKind is used to identify what kind of operation a reconciliation recorded.
type OperationKind string

const (
	OperationSQL         OperationKind = "SQL"
	OperationNote        OperationKind = "NOTE"
	OperationUnsupported OperationKind = "UNSUPPORTED"
)

// OperationRisk is used to identify the risk level of an operation.
type OperationRisk string

const (
	RiskInfo     OperationRisk = "INFO"
	RiskCritical OperationRisk = "CRITICAL"
)

// Operation struct contains all information about a single step of a
// migration plan: a statement to execute (with its positional parameters),
// an informational note, or the reason a change cannot be applied.
type Operation struct {
	Kind OperationKind `json:"kind"`

	SQL    string `json:"sql,omitempty"`
	Params []any  `json:"params,omitempty"`

	Risk   OperationRisk `json:"risk,omitempty"`
	Reason string        `json:"reason,omitempty"`
}
