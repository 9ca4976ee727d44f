package domain

import "fmt"

// DiagnosticKind classifies a recoverable structural defect in a referral payload.
type DiagnosticKind string

const (
	// KindMalformedNode marks a node kept with a substituted default value.
	KindMalformedNode DiagnosticKind = "MalformedNode"
	// KindDuplicateIdentifier marks a repeated identifier whose subtree was dropped.
	KindDuplicateIdentifier DiagnosticKind = "DuplicateIdentifier"
	// KindDepthLimitExceeded marks a branch truncated at the configured depth.
	KindDepthLimitExceeded DiagnosticKind = "DepthLimitExceeded"
)

// Diagnostic is a single non-fatal warning produced while building a forest.
type Diagnostic struct {
	Kind    DiagnosticKind `json:"kind"`
	NodeID  string         `json:"nodeId,omitempty"`
	Field   string         `json:"field,omitempty"`
	Depth   int            `json:"depth"`
	Message string         `json:"message"`
}

func (d Diagnostic) String() string {
	if d.NodeID == "" {
		return fmt.Sprintf("%s: %s", d.Kind, d.Message)
	}
	return fmt.Sprintf("%s [%s]: %s", d.Kind, d.NodeID, d.Message)
}

// Diagnostics is the ordered list of warnings accompanying a build.
type Diagnostics []Diagnostic

// Count returns how many diagnostics of the given kind were recorded.
func (ds Diagnostics) Count(kind DiagnosticKind) int {
	n := 0
	for _, d := range ds {
		if d.Kind == kind {
			n++
		}
	}
	return n
}

// Empty reports whether the build was clean.
func (ds Diagnostics) Empty() bool {
	return len(ds) == 0
}
