// apps/go-server/internal/validate/validate.go
//
// Gates a built game record before it is finalized.
//
// Three checks run on every record:
//   - ValidateCompletion: every required field is present, reported by name.
//   - CheckContentQuality: composite 0..1 score over title, instructions and word count.
//   - ValidateThemeConsistency: lexical overlap between the theme and the content.
//
// A record is accepted only when all three pass; Gate returns the union of
// their diagnostics otherwise.

package validate

import (
	"fmt"
	"math"
	"strings"
	"unicode"

	"github.com/robalobadob/puzzlenet/apps/go-server/internal/diag"
	"github.com/robalobadob/puzzlenet/apps/go-server/internal/game"
)

// Quality bounds. Each component scores 1.0 inside its bounds.
const (
	TitleMin         = 3
	TitleMax         = 50
	InstructionsMin  = 20
	InstructionsMax  = 500
	InstructionWords = 4
	WordCountMin     = 3
	WordCountMax     = 50

	titleWeight        = 0.3
	instructionsWeight = 0.4
	wordCountWeight    = 0.3

	// QualityThreshold is the minimum composite score for a record to pass.
	QualityThreshold = 0.85

	// ConsistencyThreshold is the minimum share of theme tokens found in the content.
	ConsistencyThreshold = 0.5
)

// RequiredFields lists the record fields checked by ValidateCompletion, in schema order.
var RequiredFields = []string{
	"theme", "game_type", "title", "instructions", "words", "clues", "answer_key", "difficulty_distribution",
}

// Completion is the outcome of ValidateCompletion.
type Completion struct {
	Valid         bool     `json:"valid"`
	MissingFields []string `json:"missingFields"`
}

// Quality is the outcome of CheckContentQuality.
type Quality struct {
	Score  float64  `json:"score"`
	Issues []string `json:"issues"`
}

// Passed reports whether the composite score reaches QualityThreshold.
func (q Quality) Passed() bool { return q.Score >= QualityThreshold }

// Consistency is the outcome of ValidateThemeConsistency.
type Consistency struct {
	Valid bool    `json:"valid"`
	Score float64 `json:"score"`
}

// ValidateCompletion reports every required field that is absent or empty.
func ValidateCompletion(r game.Record) Completion {
	present := map[string]bool{
		"theme":                   strings.TrimSpace(r.Theme) != "",
		"game_type":               r.GameType != "",
		"title":                   strings.TrimSpace(r.Title) != "",
		"instructions":            strings.TrimSpace(r.Instructions) != "",
		"words":                   len(r.Words) > 0,
		"clues":                   len(r.Clues) > 0,
		"answer_key":              strings.TrimSpace(r.AnswerKey) != "",
		"difficulty_distribution": r.Distribution.Total() > 0,
	}
	missing := []string{}
	for _, f := range RequiredFields {
		if !present[f] {
			missing = append(missing, f)
		}
	}
	return Completion{Valid: len(missing) == 0, MissingFields: missing}
}

// CheckContentQuality scores title length, instruction substance and word count.
// Any component outside its bounds is listed as an issue, even when the
// composite still passes.
func CheckContentQuality(title string, wordList []string, instructions string) Quality {
	var issues []string

	title = strings.TrimSpace(title)
	titleScore := within(len([]rune(title)), TitleMin, TitleMax)
	switch {
	case len([]rune(title)) < TitleMin:
		issues = append(issues, fmt.Sprintf("title must be at least %d characters", TitleMin))
	case len([]rune(title)) > TitleMax:
		issues = append(issues, fmt.Sprintf("title must be %d characters or less", TitleMax))
	}

	instructions = strings.TrimSpace(instructions)
	instrScore := within(len([]rune(instructions)), InstructionsMin, InstructionsMax)
	switch {
	case len([]rune(instructions)) < InstructionsMin:
		issues = append(issues, fmt.Sprintf("instructions must be at least %d characters", InstructionsMin))
	case len([]rune(instructions)) > InstructionsMax:
		issues = append(issues, fmt.Sprintf("instructions should not exceed %d characters", InstructionsMax))
	}
	if n := len(strings.Fields(instructions)); n < InstructionWords {
		instrScore *= float64(n) / InstructionWords
		issues = append(issues, fmt.Sprintf("instructions must contain at least %d words", InstructionWords))
	}

	countScore := within(len(wordList), WordCountMin, WordCountMax)
	switch {
	case len(wordList) < WordCountMin:
		issues = append(issues, fmt.Sprintf("game must contain at least %d words", WordCountMin))
	case len(wordList) > WordCountMax:
		issues = append(issues, fmt.Sprintf("game should not exceed %d words", WordCountMax))
	}

	score := titleWeight*titleScore + instructionsWeight*instrScore + wordCountWeight*countScore
	if issues == nil {
		issues = []string{}
	}
	return Quality{Score: math.Round(score*100) / 100, Issues: issues}
}

// within scores n against [lo, hi]: 1 inside, proportionally less outside.
func within(n, lo, hi int) float64 {
	switch {
	case n < lo:
		return float64(n) / float64(lo)
	case n > hi:
		return float64(hi) / float64(n)
	}
	return 1
}

// ValidateThemeConsistency measures how much of the theme is reflected in the
// words and description. Matching ignores case and simple plural endings.
func ValidateThemeConsistency(theme string, wordList []string, description string) Consistency {
	themeTokens := tokens(theme)
	if len(themeTokens) == 0 || len(wordList) == 0 {
		return Consistency{}
	}

	content := make(map[string]struct{})
	add := func(s string) {
		for _, t := range tokens(s) {
			for _, f := range forms(t) {
				content[f] = struct{}{}
			}
		}
	}
	add(description)
	for _, w := range wordList {
		add(w)
	}

	hits := 0
	for _, t := range themeTokens {
		for _, f := range forms(t) {
			if _, ok := content[f]; ok {
				hits++
				break
			}
		}
	}
	score := math.Round(float64(hits)/float64(len(themeTokens))*100) / 100
	return Consistency{Valid: score >= ConsistencyThreshold, Score: score}
}

var stopwords = map[string]struct{}{
	"a": {}, "an": {}, "the": {}, "and": {}, "or": {}, "of": {}, "in": {}, "on": {}, "at": {},
	"to": {}, "for": {}, "with": {}, "by": {}, "from": {}, "is": {}, "are": {},
}

// tokens splits s into distinct lowercase content words.
func tokens(s string) []string {
	fields := strings.FieldsFunc(strings.ToLower(s), func(r rune) bool { return !unicode.IsLetter(r) })
	var out []string
	seen := make(map[string]struct{}, len(fields))
	for _, f := range fields {
		if _, stop := stopwords[f]; stop {
			continue
		}
		if _, dup := seen[f]; dup {
			continue
		}
		seen[f] = struct{}{}
		out = append(out, f)
	}
	return out
}

// forms returns w and the stems it may be a plural of. Two words match when
// their forms intersect, so "horses" meets "horse" and "buses" meets "bus".
func forms(w string) []string {
	out := []string{w}
	if len(w) > 4 && strings.HasSuffix(w, "ies") {
		out = append(out, w[:len(w)-3]+"y")
	}
	if len(w) > 4 && strings.HasSuffix(w, "es") {
		out = append(out, w[:len(w)-2])
	}
	if len(w) > 3 && strings.HasSuffix(w, "s") && !strings.HasSuffix(w, "ss") {
		out = append(out, w[:len(w)-1])
	}
	return out
}

// Strict-mode rules, applied only when the standard score is below StrictCeiling.
const (
	StrictCeiling  = 0.90
	StrictTitleMin = 5
	StrictPenalty  = 0.10
)

// CheckContentQualityStrict is CheckContentQuality plus a minimum title
// length and word uniqueness. Each broken rule is an issue and costs
// StrictPenalty from the score.
func CheckContentQualityStrict(title string, wordList []string, instructions string) Quality {
	q := CheckContentQuality(title, wordList, instructions)
	if q.Score >= StrictCeiling {
		return q
	}

	var extra []string
	if len([]rune(strings.TrimSpace(title))) < StrictTitleMin {
		extra = append(extra, fmt.Sprintf("title should be at least %d characters in strict mode", StrictTitleMin))
	}
	seen := make(map[string]struct{}, len(wordList))
	for _, w := range wordList {
		k := strings.ToLower(strings.TrimSpace(w))
		if _, dup := seen[k]; dup {
			extra = append(extra, "all words must be unique in strict mode")
			break
		}
		seen[k] = struct{}{}
	}
	if len(extra) == 0 {
		return q
	}
	q.Issues = append(q.Issues, extra...)
	q.Score = math.Max(0, math.Round((q.Score-StrictPenalty*float64(len(extra)))*100)/100)
	return q
}

// Options tunes Gate. The zero value runs the standard checks.
type Options struct {
	Strict bool
}

// Report is the combined outcome of the three record checks.
type Report struct {
	Completion  Completion       `json:"completion"`
	Quality     Quality          `json:"quality"`
	Consistency Consistency      `json:"consistency"`
	Diagnostics diag.Diagnostics `json:"diagnostics,omitempty"`
}

// Valid reports whether every check passed.
func (r Report) Valid() bool { return len(r.Diagnostics) == 0 }

// Gate runs all three checks on rec. description is free text describing the
// game (the generator's blurb, or title and instructions when absent).
func Gate(rec game.Record, description string) Report {
	return Options{}.Gate(rec, description)
}

// Gate runs the record checks with o applied.
func (o Options) Gate(rec game.Record, description string) Report {
	quality := CheckContentQuality
	if o.Strict {
		quality = CheckContentQualityStrict
	}
	rep := Report{
		Completion:  ValidateCompletion(rec),
		Quality:     quality(rec.Title, rec.WordTexts(), rec.Instructions),
		Consistency: ValidateThemeConsistency(rec.Theme, rec.WordTexts(), description),
	}

	for _, f := range rep.Completion.MissingFields {
		rep.Diagnostics = append(rep.Diagnostics, diag.OnField(diag.KindCompleteness, f, "missing required field %q", f))
	}
	if !rep.Quality.Passed() {
		rep.Diagnostics = append(rep.Diagnostics, diag.OnField(diag.KindQuality, "quality_report",
			"quality score %.2f below %.2f", rep.Quality.Score, QualityThreshold))
		for _, issue := range rep.Quality.Issues {
			rep.Diagnostics = append(rep.Diagnostics, diag.OnField(diag.KindQuality, "quality_report", "%s", issue))
		}
	}
	if !rep.Consistency.Valid {
		rep.Diagnostics = append(rep.Diagnostics, diag.OnField(diag.KindConsistency, "theme",
			"theme %q weakly reflected in content (score %.2f, need %.2f)", rec.Theme, rep.Consistency.Score, ConsistencyThreshold))
	}
	return rep
}
