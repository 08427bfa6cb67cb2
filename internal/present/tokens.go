package present

import (
	"fmt"
	"sort"
	"strings"
)

// Tone is one foreground/background pair
type Tone struct {
	Color      string
	Background string
	Border     string
}

// TokenSet is the style table both renderers read from
type TokenSet struct {
	Tier     map[string]Tone
	Band     map[string]Tone
	Severity map[string]Tone

	Primary    string
	Text       string
	Muted      string
	Surface    string
	Page       string
	Line       string
	Found      Tone
	Missing    Tone
	FontFamily string
	FontSize   string
	Radius     string
	Gap        string
}

// Tokens is the single source of colours and spacing.
var Tokens = TokenSet{
	Tier: map[string]Tone{
		TierExcellent: {Color: "#047857", Background: "#ecfdf5", Border: "#10b981"},
		TierGood:      {Color: "#1d4ed8", Background: "#eff6ff", Border: "#3b82f6"},
		TierAverage:   {Color: "#b45309", Background: "#fffbeb", Border: "#f59e0b"},
		TierPoor:      {Color: "#b91c1c", Background: "#fef2f2", Border: "#ef4444"},
	},
	Band: map[string]Tone{
		BandHigh: {Color: "#047857", Background: "#d1fae5", Border: "#10b981"},
		BandMid:  {Color: "#b45309", Background: "#fef3c7", Border: "#f59e0b"},
		BandLow:  {Color: "#b91c1c", Background: "#fee2e2", Border: "#ef4444"},
	},
	Severity: map[string]Tone{
		"severity-high":   {Color: "#991b1b", Background: "#fef2f2", Border: "#dc2626"},
		"severity-medium": {Color: "#92400e", Background: "#fffbeb", Border: "#d97706"},
		"severity-low":    {Color: "#1e40af", Background: "#eff6ff", Border: "#2563eb"},
	},
	Primary:    "#4f46e5",
	Text:       "#1f2937",
	Muted:      "#6b7280",
	Surface:    "#ffffff",
	Page:       "#f3f4f6",
	Line:       "#e5e7eb",
	Found:      Tone{Color: "#065f46", Background: "#d1fae5", Border: "#6ee7b7"},
	Missing:    Tone{Color: "#991b1b", Background: "#fee2e2", Border: "#fca5a5"},
	FontFamily: "'Pretendard', 'Noto Sans KR', 'Malgun Gothic', sans-serif",
	FontSize:   "14px",
	Radius:     "8px",
	Gap:        "12px",
}

// TierTone returns the tone of an overall score.
func TierTone(score int) Tone {
	return Tokens.Tier[ScoreTier(score)]
}

// BandTone returns the tone of a 0-10 item score.
func BandTone(score int) Tone {
	return Tokens.Band[ScoreBand(score)]
}

// SeverityTone returns the tone of a warning severity.
func SeverityTone(severity string) Tone {
	return Tokens.Severity[SeverityClass(severity)]
}

// Stylesheet renders the class-based stylesheet used by the interactive page.
func Stylesheet() string {
	var b strings.Builder
	t := Tokens

	fmt.Fprintf(&b, "body{margin:0;background:%s;color:%s;font-family:%s;font-size:%s;line-height:1.6;}\n",
		t.Page, t.Text, t.FontFamily, t.FontSize)
	fmt.Fprintf(&b, "#report-root{max-width:960px;margin:0 auto;padding:24px;display:flex;flex-direction:column;gap:%s;}\n", t.Gap)
	fmt.Fprintf(&b, ".section{background:%s;border:1px solid %s;border-radius:%s;padding:20px;}\n", t.Surface, t.Line, t.Radius)
	fmt.Fprintf(&b, ".section h2{margin:0 0 %s;font-size:18px;display:flex;align-items:center;gap:8px;}\n", t.Gap)
	fmt.Fprintf(&b, ".card{border:1px solid %s;border-radius:%s;padding:12px 16px;margin-top:%s;}\n", t.Line, t.Radius, t.Gap)
	fmt.Fprintf(&b, ".badge{display:inline-block;padding:0 8px;border-radius:999px;font-size:12px;background:%s;color:#fff;}\n", t.Primary)
	fmt.Fprintf(&b, ".muted{color:%s;}\n", t.Muted)
	fmt.Fprintf(&b, ".chip{display:inline-block;margin:2px 4px 2px 0;padding:2px 10px;border-radius:999px;font-size:13px;}\n")
	fmt.Fprintf(&b, ".chip.found{color:%s;background:%s;border:1px solid %s;}\n", t.Found.Color, t.Found.Background, t.Found.Border)
	fmt.Fprintf(&b, ".chip.missing{color:%s;background:%s;border:1px solid %s;}\n", t.Missing.Color, t.Missing.Background, t.Missing.Border)
	fmt.Fprintf(&b, ".quote{border-left:3px solid %s;padding-left:10px;color:%s;}\n", t.Line, t.Muted)
	fmt.Fprintf(&b, ".answer{white-space:pre-wrap;background:%s;border-radius:%s;padding:16px;}\n", t.Page, t.Radius)
	fmt.Fprintf(&b, ".floating{position:fixed;right:24px;border:none;border-radius:999px;padding:12px 16px;background:%s;color:#fff;cursor:pointer;box-shadow:0 4px 12px rgba(0,0,0,.15);}\n", t.Primary)
	fmt.Fprintf(&b, "#scroll-top{bottom:88px;display:none;}\n#scroll-top.visible{display:block;}\n#export-button{bottom:24px;}\n")
	fmt.Fprintf(&b, "button[disabled]{opacity:.6;cursor:progress;}\n")

	writeTones(&b, "tier-", t.Tier, true)
	writeTones(&b, "score-", t.Band, false)
	writeTones(&b, "", t.Severity, true)

	return b.String()
}

func writeTones(b *strings.Builder, prefix string, tones map[string]Tone, border bool) {
	keys := make([]string, 0, len(tones))
	for k := range tones {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		tone := tones[k]
		if border {
			fmt.Fprintf(b, ".%s%s{color:%s;background:%s;border-left:4px solid %s;}\n", prefix, k, tone.Color, tone.Background, tone.Border)
			continue
		}
		fmt.Fprintf(b, ".%s%s{color:%s;background:%s;}\n", prefix, k, tone.Color, tone.Background)
	}
}
