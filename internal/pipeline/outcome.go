// apps/go-server/internal/pipeline/outcome.go
//
// Run outcome: exactly one of Completed(GameRecord) or Failed(Diagnostics).
// No partial results are exposed on failure.

package pipeline

import (
	"github.com/robalobadob/puzzlenet/apps/go-server/internal/diag"
	"github.com/robalobadob/puzzlenet/apps/go-server/internal/game"
)

// Status is the terminal status of a run.
type Status string

const (
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

// Outcome is what a run returns.
type Outcome struct {
	RunID       string           `json:"run_id"`
	Status      Status           `json:"status"`
	Game        *game.Record     `json:"game,omitempty"`
	FailedStage Stage            `json:"failed_stage,omitempty"`
	Diagnostics diag.Diagnostics `json:"diagnostics,omitempty"`
}

// Succeeded reports whether the run completed with a game.
func (o Outcome) Succeeded() bool { return o.Status == StatusCompleted && o.Game != nil }

func completed(runID string, rec game.Record) Outcome {
	c := rec.Clone()
	return Outcome{RunID: runID, Status: StatusCompleted, Game: &c}
}

func failed(runID string, stage Stage, ds diag.Diagnostics) Outcome {
	return Outcome{RunID: runID, Status: StatusFailed, FailedStage: stage, Diagnostics: ds}
}
