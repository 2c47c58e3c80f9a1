// apps/go-server/internal/diag/diag.go
//
// Structured rejection reasons shared by every gate in the pipeline.
// A Diagnostic is produced by a validator or by the collaborator boundary
// and is always surfaced to the caller with the failed run.

package diag

import (
	"fmt"
	"strings"
)

// Kind names the failure class of a Diagnostic.
type Kind string

const (
	KindValidation   Kind = "ValidationError"   // single word fails shape rules
	KindVariety      Kind = "VarietyError"      // collection-level diversity/duplication failure
	KindCompleteness Kind = "CompletenessError" // missing required record field
	KindQuality      Kind = "QualityError"      // composite score below threshold
	KindConsistency  Kind = "ConsistencyError"  // theme/word mismatch
	KindExternalCall Kind = "ExternalCallError" // collaborator timeout, transport failure or bad response
)

// Diagnostic is one named reason for a rejection.
type Diagnostic struct {
	Kind    Kind   `json:"kind"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

// New builds a Diagnostic without a field reference.
func New(kind Kind, format string, args ...any) Diagnostic {
	return Diagnostic{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// OnField builds a Diagnostic bound to a record field.
func OnField(kind Kind, field, format string, args ...any) Diagnostic {
	return Diagnostic{Kind: kind, Field: field, Message: fmt.Sprintf(format, args...)}
}

func (d Diagnostic) String() string {
	if d.Field != "" {
		return fmt.Sprintf("%s [%s]: %s", d.Kind, d.Field, d.Message)
	}
	return fmt.Sprintf("%s: %s", d.Kind, d.Message)
}

// Diagnostics is a list of rejections that can travel as an error value.
type Diagnostics []Diagnostic

func (ds Diagnostics) Error() string {
	parts := make([]string, len(ds))
	for i, d := range ds {
		parts[i] = d.String()
	}
	return strings.Join(parts, "; ")
}

// Has reports whether any diagnostic is of the given kind.
func (ds Diagnostics) Has(kind Kind) bool {
	for _, d := range ds {
		if d.Kind == kind {
			return true
		}
	}
	return false
}

// OfKind returns the subset of diagnostics with the given kind.
func (ds Diagnostics) OfKind(kind Kind) Diagnostics {
	var out Diagnostics
	for _, d := range ds {
		if d.Kind == kind {
			out = append(out, d)
		}
	}
	return out
}
