// Package water extracts fluid-ounce quantities from free-text entries like
// "2 cups and a 16 oz bottle".
package water

import (
	"errors"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// ErrNoAmount is returned when the text contains no number at all.
var ErrNoAmount = errors.New("no water amount found")

// OzPerCup is also the multiplier for a bare number with no unit.
const OzPerCup = 8.0

type unit struct {
	re    *regexp.Regexp
	ozPer float64
}

// Each vocabulary is scanned independently over the whole input and every
// match contributes, so "2 cups 8 oz" sums both.
var units = []unit{
	{regexp.MustCompile(`(\d+(?:\.\d+)?)\s*(?:cups?|c|glass|glasses)`), OzPerCup},
	{regexp.MustCompile(`(\d+(?:\.\d+)?)\s*(?:oz|ounce|ounces)`), 1},
	{regexp.MustCompile(`(\d+(?:\.\d+)?)\s*(?:ml|milliliter|milliliters)`), 0.033814},
	{regexp.MustCompile(`(\d+(?:\.\d+)?)\s*(?:bottle|bottles|btl)`), 16},
}

var bareNumber = regexp.MustCompile(`\d+(?:\.\d+)?`)

// ParseOunces returns the total ounces described by text, rounded to the
// nearest whole ounce. Text with numbers but no recognised unit is read as
// cups. Callers should treat a non-positive result as "no amount".
func ParseOunces(text string) (int, error) {
	lower := strings.ToLower(text)

	var total float64
	matched := false
	for _, u := range units {
		for _, m := range u.re.FindAllStringSubmatch(lower, -1) {
			total += number(m[1]) * u.ozPer
			matched = true
		}
	}

	if !matched {
		first := bareNumber.FindString(lower)
		if first == "" {
			return 0, ErrNoAmount
		}
		total = number(first) * OzPerCup
	}

	return int(math.Round(total)), nil
}

func number(s string) float64 {
	v, err := strconv.ParseFloat(strings.Replace(s, ",", ".", 1), 64)
	if err != nil {
		return 0
	}
	return v
}
