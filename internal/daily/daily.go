// apps/go-server/internal/daily/daily.go
//
// Deterministic theme-of-the-day selection. Every server with the same salt
// and theme pool picks the same theme for a date, without coordination.

package daily

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/binary"
	"time"

	"github.com/robalobadob/puzzlenet/apps/go-server/internal/words"
)

// Levels are the daily variants, generated in this order.
var Levels = append([]words.Difficulty(nil), words.Buckets...)

// DateKey returns YYYY-MM-DD in UTC.
func DateKey(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}

// ParseDateKey parses a YYYY-MM-DD key.
func ParseDateKey(s string) (time.Time, error) {
	return time.Parse("2006-01-02", s)
}

// ThemeIndex returns a deterministic index for a date using HMAC(salt, YYYY-MM-DD) % n.
func ThemeIndex(date time.Time, salt string, n int) int {
	if n <= 0 {
		return 0
	}
	h := hmac.New(sha256.New, []byte(salt))
	h.Write([]byte(DateKey(date)))
	sum := h.Sum(nil)
	// first 8 bytes as uint64 for the modulus
	v := binary.BigEndian.Uint64(sum[:8])
	return int(v % uint64(n))
}

// ThemeFor picks the theme for date from themes.
func ThemeFor(date time.Time, salt string, themes []string) string {
	if len(themes) == 0 {
		return ""
	}
	return themes[ThemeIndex(date, salt, len(themes))]
}
