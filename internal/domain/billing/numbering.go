package billing

import (
	"strconv"
	"strings"
	"time"

	"github.com/kellertobias/servobill-sub000/internal/domain/shared"
)

// NumberSequence turns a template plus the last issued number into the next
// sequential document number.
//
// Template grammar: the template contains exactly one run of '#' characters
// (the increment portion, mirrored by IncrementTemplate) surrounded by
// literal text which may include the date tokens YYYY, YY and MM. The digits
// occupying the increment position in LastNumber are incremented and
// zero-padded to the run length. When the rendered literal portion no longer
// matches LastNumber (a year or month rolled over, or the template changed)
// the counter restarts at 1.
//
// Next is a pure function of (Template, IncrementTemplate, LastNumber, now);
// callers must serialize access per settings object, two concurrent callers
// would otherwise issue the same number.
type NumberSequence struct {
	Template          string `json:"template"`
	IncrementTemplate string `json:"increment_template"`
	LastNumber        string `json:"last_number"`
}

// Next computes the next number in the sequence without mutating it
func (s NumberSequence) Next(now time.Time) (string, error) {
	run := s.IncrementTemplate
	if run == "" {
		run = incrementRun(s.Template)
	}
	if run == "" || strings.Trim(run, "#") != "" {
		return "", shared.NewDomainError("INVALID_NUMBER_TEMPLATE", "Number template has no increment portion")
	}

	idx := strings.Index(s.Template, run)
	if idx < 0 {
		return "", shared.NewDomainError("INVALID_NUMBER_TEMPLATE", "Increment portion not found in template")
	}

	prefix := renderDateTokens(s.Template[:idx], now)
	suffix := renderDateTokens(s.Template[idx+len(run):], now)
	width := len(run)

	counter := int64(1)
	if middle, ok := strings.CutPrefix(s.LastNumber, prefix); ok {
		if middle, ok = strings.CutSuffix(middle, suffix); ok {
			if parsed, err := strconv.ParseInt(middle, 10, 64); err == nil {
				counter = parsed + 1
			}
		}
	}

	digits := strconv.FormatInt(counter, 10)
	if pad := width - len(digits); pad > 0 {
		digits = strings.Repeat("0", pad) + digits
	}
	return prefix + digits + suffix, nil
}

// incrementRun returns the longest run of '#' in the template
func incrementRun(template string) string {
	best := 0
	current := 0
	for _, r := range template {
		if r == '#' {
			current++
			if current > best {
				best = current
			}
		} else {
			current = 0
		}
	}
	return strings.Repeat("#", best)
}

// renderDateTokens substitutes YYYY, YY and MM with values from now
func renderDateTokens(s string, now time.Time) string {
	s = strings.ReplaceAll(s, "YYYY", now.Format("2006"))
	s = strings.ReplaceAll(s, "YY", now.Format("06"))
	s = strings.ReplaceAll(s, "MM", now.Format("01"))
	return s
}
