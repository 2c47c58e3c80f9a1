package diag

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiagnostic_String(t *testing.T) {
	assert.Equal(t, "VarietyError [words]: duplicate word \"CRAB\"",
		OnField(KindVariety, "words", "duplicate word %q", "CRAB").String())
	assert.Equal(t, "ExternalCallError: pick call cancelled",
		New(KindExternalCall, "%s call cancelled", "pick").String())
}

func TestDiagnostics_AsError(t *testing.T) {
	ds := Diagnostics{
		OnField(KindCompleteness, "instructions", "missing required field %q", "instructions"),
		New(KindQuality, "quality score 0.60 below 0.85"),
	}
	err := fmt.Errorf("build rejected: %w", ds)

	var got Diagnostics
	require.True(t, errors.As(err, &got))
	assert.Len(t, got, 2)
	assert.Contains(t, err.Error(), "CompletenessError [instructions]")
	assert.Contains(t, err.Error(), "; QualityError: quality score")
}

func TestDiagnostics_Filter(t *testing.T) {
	ds := Diagnostics{
		New(KindValidation, "a"),
		New(KindVariety, "b"),
		New(KindValidation, "c"),
	}
	assert.True(t, ds.Has(KindVariety))
	assert.False(t, ds.Has(KindQuality))
	assert.Len(t, ds.OfKind(KindValidation), 2)
	assert.Empty(t, ds.OfKind(KindConsistency))
}
