// Package present maps analysis values onto presentation attributes shared by
// the interactive report and the print document.
package present

// Score tiers for the 0-100 overall score
const (
	TierExcellent = "excellent"
	TierGood      = "good"
	TierAverage   = "average"
	TierPoor      = "poor"
)

// Score bands for 0-10 item scores
const (
	BandHigh = "high"
	BandMid  = "mid"
	BandLow  = "low"
)

// ScoreTier maps an overall score onto its tier. Lower bounds are inclusive.
func ScoreTier(score int) string {
	switch {
	case score >= 80:
		return TierExcellent
	case score >= 60:
		return TierGood
	case score >= 40:
		return TierAverage
	default:
		return TierPoor
	}
}

var gradeIcons = map[string]string{
	"우수": "🏆",
	"양호": "👍",
	"보통": "📝",
	"미흡": "💪",
}

// GradeIcon returns the icon shown next to the overall grade.
func GradeIcon(grade string) string {
	if icon, ok := gradeIcons[grade]; ok {
		return icon
	}
	return "📋"
}

// SeverityClass maps a warning severity onto its style class.
// Anything unrecognised is treated as medium.
func SeverityClass(severity string) string {
	switch severity {
	case "high":
		return "severity-high"
	case "low":
		return "severity-low"
	default:
		return "severity-medium"
	}
}

var warningIcons = map[string]string{
	"blind_violation":     "🚫",
	"abstract_expression": "💭",
	"missing_result":      "📊",
	"wrong_organization":  "🏢",
}

// WarningIcon returns the icon for a warning type.
func WarningIcon(warningType string) string {
	if icon, ok := warningIcons[warningType]; ok {
		return icon
	}
	return "⚠️"
}

// ScoreBand maps a 0-10 item score onto high, mid or low.
func ScoreBand(score int) string {
	switch {
	case score >= 7:
		return BandHigh
	case score >= 5:
		return BandMid
	default:
		return BandLow
	}
}

// ScoreClass is the style class of a 0-10 item score.
func ScoreClass(score int) string {
	return "score-" + ScoreBand(score)
}

// TierClass is the style class of an overall score.
func TierClass(score int) string {
	return "tier-" + ScoreTier(score)
}
