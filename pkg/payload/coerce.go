package payload

import (
	"errors"
	"regexp"
	"strconv"
	"strings"
)

var vinPattern = regexp.MustCompile(`^[A-HJ-NPR-Z0-9]{17}$`)

// NormalizeVIN upper-cases raw, strips whitespace and validates the 17
// character identifier alphabet, which excludes I, O and Q.
func NormalizeVIN(raw string) (string, bool) {
	vin := strings.ToUpper(strings.Join(strings.Fields(raw), ""))
	if !vinPattern.MatchString(vin) {
		return "", false
	}
	return vin, true
}

// NormalizePhone reduces raw to digits and prefixes countryCode. Accepted
// inputs are an 8 digit local number, a 9 digit number with a leading zero
// and a number already carrying the country code.
func NormalizePhone(raw, countryCode string) (string, bool) {
	var b strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	digits := strings.TrimPrefix(b.String(), "00")
	local := 8

	switch {
	case len(digits) == local:
		return countryCode + digits, true
	case len(digits) == local+1 && digits[0] == '0':
		return countryCode + digits[1:], true
	case countryCode != "" && strings.HasPrefix(digits, countryCode) && len(digits) == len(countryCode)+local:
		return digits, true
	}
	return "", false
}

var (
	errNotNumeric = errors.New("not an integer")

	plainInt   = regexp.MustCompile(`^[+-]?\d+(?:\.0+)?$`)
	groupedInt = regexp.MustCompile(`^[+-]?\d{1,3}(?:[ \x{00a0}\x{202f}',_]\d{3})+(?:\.0+)?$`)
)

// ParseInt coerces a numeric label to an integer. Thousands separators
// (spaces, non-breaking spaces, apostrophes, underscores and commas) are
// accepted only between groups of three digits; a zero fraction such as
// "2018.0" is accepted. Anything else, including values outside the int64
// range, fails.
func ParseInt(raw string) (int64, error) {
	s := strings.TrimSpace(raw)
	switch {
	case plainInt.MatchString(s):
	case groupedInt.MatchString(s):
		s = strings.Map(func(r rune) rune {
			if r >= '0' && r <= '9' || r == '+' || r == '-' || r == '.' {
				return r
			}
			return -1
		}, s)
	default:
		return 0, errNotNumeric
	}
	whole, _, _ := strings.Cut(s, ".")
	n, err := strconv.ParseInt(whole, 10, 64)
	if err != nil {
		return 0, errNotNumeric
	}
	return n, nil
}

var truthy = map[string]struct{}{
	"true": {}, "1": {}, "yes": {}, "y": {}, "on": {}, "да": {}, "da": {},
}

// ParseBool treats common truthy tokens as true and anything else as false.
func ParseBool(raw string) bool {
	_, ok := truthy[strings.ToLower(strings.TrimSpace(raw))]
	return ok
}

// PickUnit returns unit when it is accepted, the first accepted unit
// otherwise, and "" when the field declares no units.
func PickUnit(unit string, accepted []string) string {
	if len(accepted) == 0 {
		return ""
	}
	unit = strings.TrimSpace(unit)
	for _, candidate := range accepted {
		if strings.EqualFold(candidate, unit) {
			return candidate
		}
	}
	return accepted[0]
}
