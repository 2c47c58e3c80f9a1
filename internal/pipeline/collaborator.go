// apps/go-server/internal/pipeline/collaborator.go
//
// The generative collaborator boundary: a stage prompt goes in, structured
// text comes out. Everything behind it is opaque to the pipeline.

package pipeline

import "context"

// Prompt is one stage-specific request to the collaborator.
type Prompt struct {
	Stage  Stage
	System string
	User   string
}

// Collaborator produces candidate content for a stage.
// Implementations must honor ctx cancellation and deadlines.
type Collaborator interface {
	Generate(ctx context.Context, p Prompt) (string, error)
}

// CollaboratorFunc adapts a plain function to Collaborator.
type CollaboratorFunc func(ctx context.Context, p Prompt) (string, error)

func (f CollaboratorFunc) Generate(ctx context.Context, p Prompt) (string, error) { return f(ctx, p) }
