// apps/go-server/internal/pipeline/prompts.go
//
// Stage prompt construction. Each prompt is built from the request and the
// read-only view of earlier stage outputs, and ends with the exact JSON shape
// the stage parser expects.

package pipeline

import (
	"fmt"
	"strings"

	"github.com/robalobadob/puzzlenet/apps/go-server/internal/diag"
	"github.com/robalobadob/puzzlenet/apps/go-server/internal/game"
	"github.com/robalobadob/puzzlenet/apps/go-server/internal/words"
)

const systemPreamble = "You create short word-puzzle content for The Puzzle Network. " +
	"Reply with a single JSON object and nothing else."

func brainstormPrompt(req Request, _ View) (Prompt, error) {
	var b strings.Builder
	fmt.Fprintf(&b, "Request: %s\n\n", req.Text())
	b.WriteString("Propose a specific, engaging theme, a game type and a draft word list that fits it.\n")
	if t := req.GameType(); t != "" {
		fmt.Fprintf(&b, "Game type requested: %s\n", t)
	}
	if d := req.Difficulty(); d != "" {
		fmt.Fprintf(&b, "Target difficulty: %s\n", d)
	}
	if hints := req.ThemeHints(); len(hints) > 0 {
		fmt.Fprintf(&b, "Theme keywords: %s\n", strings.Join(hints, ", "))
	}
	rng := req.WordRange()
	fmt.Fprintf(&b, "Draft between %d and %d words, mixing easy, medium and hard words.\n", rng.Min, rng.Max+3)
	fmt.Fprintf(&b, "Game types: %s\n\n", joinTypes(game.Types))
	b.WriteString(`Respond as {"theme": string, "game_type": string, "words": [string], "reasoning": string}`)
	return Prompt{Stage: StageBrainstorm, System: systemPreamble, User: b.String()}, nil
}

func pickPrompt(req Request, v View) (Prompt, error) {
	var bs BrainstormResult
	if err := v.Get(KeyBrainstorm, &bs); err != nil {
		return Prompt{}, err
	}
	rng := req.WordRange()

	var b strings.Builder
	fmt.Fprintf(&b, "Theme: %s\nGame type: %s\nDraft words: %s\n\n", bs.Theme, bs.GameType, strings.Join(bs.Words, ", "))
	b.WriteString("Select the final word list. Rules:\n")
	if rng.Min == rng.Max {
		fmt.Fprintf(&b, "- exactly %d words\n", rng.Min)
	} else {
		fmt.Fprintf(&b, "- between %d and %d words\n", rng.Min, rng.Max)
	}
	fmt.Fprintf(&b, "- each word %d to %d letters, letters only\n", words.MinLength, words.MaxLength)
	b.WriteString("- no duplicates\n- a mix of short common words and longer or unusual ones\n")
	b.WriteString("- every word must fit the theme; give each a one-word category (animal, place, object, action, ...)\n\n")
	b.WriteString(`Respond as {"words": [{"text": string, "category": string}]}`)
	return Prompt{Stage: StagePick, System: systemPreamble, User: b.String()}, nil
}

func buildPrompt(req Request, v View) (Prompt, error) {
	var bs BrainstormResult
	if err := v.Get(KeyBrainstorm, &bs); err != nil {
		return Prompt{}, err
	}
	var ws WordSet
	if err := v.Get(KeyPickedWords, &ws); err != nil {
		return Prompt{}, err
	}
	list := make([]string, len(ws.Words))
	for i, w := range ws.Words {
		list[i] = strings.ToUpper(w.Text)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Theme: %s\nGame type: %s\nWords: %s\n", bs.Theme, bs.GameType, strings.Join(list, ", "))
	if d := req.Difficulty(); d != "" {
		fmt.Fprintf(&b, "Audience difficulty: %s\n", d)
	}
	b.WriteString("\nWrite the player-facing text for this game:\n")
	b.WriteString("- title: 3 to 50 characters\n")
	b.WriteString("- instructions: one or two clear sentences explaining how to play\n")
	b.WriteString("- description: one sentence that names the theme\n\n")
	b.WriteString(`Respond as {"title": string, "instructions": string, "description": string}`)
	return Prompt{Stage: StageBuild, System: systemPreamble, User: b.String()}, nil
}

// withFeedback appends a previous rejection so the collaborator can correct it.
func withFeedback(p Prompt, feedback diag.Diagnostics) Prompt {
	if len(feedback) == 0 {
		return p
	}
	var b strings.Builder
	b.WriteString(p.User)
	b.WriteString("\n\nYour previous answer was rejected:\n")
	for _, d := range feedback {
		fmt.Fprintf(&b, "- %s\n", d.String())
	}
	b.WriteString("Fix these problems in your new answer.")
	p.User = b.String()
	return p
}

func joinTypes(ts []game.Type) string {
	out := make([]string, len(ts))
	for i, t := range ts {
		out[i] = string(t)
	}
	return strings.Join(out, ", ")
}
