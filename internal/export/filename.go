package export

import (
	"strings"
	"time"
	"unicode"
)

// Filename builds "<title>_<YYYY-MM-DD>.pdf" with filesystem-unsafe
// characters replaced.
func Filename(title string, now time.Time, fallback string) string {
	name := sanitizeTitle(title)
	if name == "" {
		name = sanitizeTitle(fallback)
	}
	return name + "_" + now.Format("2006-01-02") + ".pdf"
}

func sanitizeTitle(title string) string {
	var b strings.Builder
	lastUnderscore := false
	for _, r := range strings.TrimSpace(title) {
		replace := unicode.IsSpace(r) || unicode.IsControl(r) || strings.ContainsRune(`\/:*?"<>|`, r)
		if replace {
			if !lastUnderscore {
				b.WriteRune('_')
			}
			lastUnderscore = true
			continue
		}
		b.WriteRune(r)
		lastUnderscore = false
	}
	return strings.Trim(b.String(), "_.")
}
