// apps/go-server/assets/embed.go
//
// Embedded content lists shipped with the binary.

package assets

import (
	"bufio"
	"embed"
	"strings"
)

//go:embed themes.txt
var FS embed.FS

func readLines(name string) ([]string, error) {
	f, err := FS.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var out []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		s := strings.TrimSpace(sc.Text())
		if s == "" || strings.HasPrefix(s, "#") {
			continue
		}
		out = append(out, s)
	}
	return out, sc.Err()
}

// ThemeList returns the theme-of-the-day pool in file order.
func ThemeList() ([]string, error) {
	return readLines("themes.txt")
}
