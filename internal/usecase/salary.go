package usecase

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

var (
	salaryRangeRe  = regexp.MustCompile(`(\d+(?:\.\d+)?)k?\s*-\s*(\d+(?:\.\d+)?)k?`)
	salaryUpToRe   = regexp.MustCompile(`up\s*to\s*(\d+(?:\.\d+)?)k?`)
	salaryPlusRe   = regexp.MustCompile(`(\d+(?:\.\d+)?)k?\s*\+`)
	salarySingleRe = regexp.MustCompile(`^\s*(\d+(?:\.\d+)?)k?\s*$`)
)

// ParseSalary converts a human salary string to (min, max) in whole currency
// units. Rules apply in order: range, "up to N", "N+", single number. A "k"
// anywhere in the text multiplies amounts by 1000. Unparseable input yields
// (nil, nil).
func ParseSalary(text string) (*int64, *int64) {
	if strings.TrimSpace(text) == "" {
		return nil, nil
	}
	cleaned := strings.ToLower(text)
	for _, sigil := range []string{"$", "£", "€", ","} {
		cleaned = strings.ReplaceAll(cleaned, sigil, "")
	}
	cleaned = strings.TrimSpace(cleaned)

	multiplier := 1.0
	if strings.Contains(cleaned, "k") {
		multiplier = 1000
	}
	amount := func(s string) *int64 {
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil
		}
		v := int64(math.Round(f * multiplier))
		return &v
	}

	if m := salaryRangeRe.FindStringSubmatch(cleaned); m != nil {
		return amount(m[1]), amount(m[2])
	}
	if m := salaryUpToRe.FindStringSubmatch(cleaned); m != nil {
		return nil, amount(m[1])
	}
	if m := salaryPlusRe.FindStringSubmatch(cleaned); m != nil {
		return amount(m[1]), nil
	}
	if m := salarySingleRe.FindStringSubmatch(cleaned); m != nil {
		v := amount(m[1])
		return v, v
	}
	return nil, nil
}

// FormatSalary renders parsed bounds back to a canonical string.
func FormatSalary(min, max *int64) string {
	switch {
	case min != nil && max != nil && *min == *max:
		return strconv.FormatInt(*min, 10)
	case min != nil && max != nil:
		return strconv.FormatInt(*min, 10) + "-" + strconv.FormatInt(*max, 10)
	case min != nil:
		return strconv.FormatInt(*min, 10) + "+"
	case max != nil:
		return "up to " + strconv.FormatInt(*max, 10)
	}
	return ""
}
