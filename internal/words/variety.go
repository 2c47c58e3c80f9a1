// apps/go-server/internal/words/variety.go
//
// Collection-level checks for a picked word set.
//   - No duplicate text (case-insensitive).
//   - Total count within the requested range.
//   - Not degenerate: a set of at least SpreadMinimum words must span
//     more than one difficulty bucket.
//
// The distribution summary is filled in on every path, accepted or not.

package words

import (
	"strings"

	"github.com/robalobadob/puzzlenet/apps/go-server/internal/diag"
)

// SpreadMinimum is the set size from which all-one-bucket sets are rejected.
const SpreadMinimum = 4

// Distribution counts words per difficulty bucket.
type Distribution struct {
	Easy   int `json:"easy"`
	Medium int `json:"medium"`
	Hard   int `json:"hard"`
}

// Total is the number of words counted.
func (d Distribution) Total() int { return d.Easy + d.Medium + d.Hard }

// Add returns d with one more word in bucket b.
func (d Distribution) Add(b Difficulty) Distribution {
	switch b {
	case Easy:
		d.Easy++
	case Medium:
		d.Medium++
	case Hard:
		d.Hard++
	}
	return d
}

// Count returns the number of words in bucket b.
func (d Distribution) Count(b Difficulty) int {
	switch b {
	case Easy:
		return d.Easy
	case Medium:
		return d.Medium
	case Hard:
		return d.Hard
	}
	return 0
}

// occupied returns how many buckets hold at least one word.
func (d Distribution) occupied() int {
	n := 0
	for _, b := range Buckets {
		if d.Count(b) > 0 {
			n++
		}
	}
	return n
}

// Range bounds the accepted word count, inclusive on both ends.
type Range struct {
	Min int `json:"min"`
	Max int `json:"max"`
}

// Contains reports whether n falls within r.
func (r Range) Contains(n int) bool { return n >= r.Min && n <= r.Max }

// Variety is the outcome of CheckVariety.
type Variety struct {
	Valid        bool             `json:"valid"`
	Distribution Distribution     `json:"distribution"`
	Issues       diag.Diagnostics `json:"issues,omitempty"`
}

// Distribute summarizes the bucket counts of a candidate list.
func Distribute(cands []Candidate) Distribution {
	var d Distribution
	for _, c := range cands {
		d = d.Add(c.Difficulty)
	}
	return d
}

// CheckVariety evaluates a candidate set against the requested count range.
func CheckVariety(cands []Candidate, want Range) Variety {
	out := Variety{Distribution: Distribute(cands)}

	if len(cands) == 0 {
		out.Issues = append(out.Issues, diag.OnField(diag.KindVariety, "words", "word list is empty"))
		return out
	}

	seen := make(map[string]struct{}, len(cands))
	reported := make(map[string]struct{})
	for _, c := range cands {
		key := strings.ToLower(c.Text)
		if _, dup := seen[key]; dup {
			if _, done := reported[key]; !done {
				out.Issues = append(out.Issues, diag.OnField(diag.KindVariety, "words",
					"duplicate word %q", strings.ToUpper(key)))
				reported[key] = struct{}{}
			}
			continue
		}
		seen[key] = struct{}{}
	}

	if !want.Contains(len(cands)) {
		out.Issues = append(out.Issues, diag.OnField(diag.KindVariety, "words",
			"word count %d outside requested range [%d, %d]", len(cands), want.Min, want.Max))
	}

	if len(cands) >= SpreadMinimum && out.Distribution.occupied() == 1 {
		out.Issues = append(out.Issues, diag.OnField(diag.KindVariety, "difficulty_distribution",
			"all %d words fall in a single difficulty bucket", len(cands)))
	}

	out.Valid = len(out.Issues) == 0
	return out
}
