// Package parser turns the raw Bank of Taiwan CSV feed into rates.
//
// Every line produces a LineResult: either a rate or the reason the line was
// skipped. Header rows and malformed lines are feed noise and never fail the
// whole parse.
package parser

import (
	"math"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	currency "github.com/malusev998/currency-crawler"
	"github.com/malusev998/currency-crawler/filter"
)

const (
	CurrencyField = 0
	RateField     = 12
	MinFields     = RateField + 1
)

type SkipReason int

const (
	SkipNone SkipReason = iota
	SkipTooFewFields
	SkipNotAccepted
	SkipInvalidRate
)

func (s SkipReason) String() string {
	switch s {
	case SkipNone:
		return "none"
	case SkipTooFewFields:
		return "too few fields"
	case SkipNotAccepted:
		return "currency not accepted"
	case SkipInvalidRate:
		return "invalid rate"
	}

	return "unknown"
}

type LineResult struct {
	Number int
	Rate   currency.Rate
	Skip   SkipReason
}

func (r LineResult) Skipped() bool {
	return r.Skip != SkipNone
}

// parseRate accepts decimal notation only and never returns a non-finite value.
func parseRate(field string) (float64, bool) {
	if _, err := decimal.NewFromString(field); err != nil {
		return 0, false
	}

	value, err := strconv.ParseFloat(field, 64)

	if err != nil || math.IsInf(value, 0) || math.IsNaN(value) {
		return 0, false
	}

	return value, true
}

func ParseLine(number int, line string, accepted filter.Set) LineResult {
	fields := strings.Split(line, ",")

	if len(fields) < MinFields {
		return LineResult{Number: number, Skip: SkipTooFewFields}
	}

	code := strings.TrimSpace(fields[CurrencyField])

	if !accepted.Contains(code) {
		return LineResult{Number: number, Skip: SkipNotAccepted}
	}

	value, ok := parseRate(strings.TrimSpace(fields[RateField]))

	if !ok {
		return LineResult{Number: number, Skip: SkipInvalidRate}
	}

	return LineResult{
		Number: number,
		Rate: currency.Rate{
			Currency: code,
			Rate:     value,
		},
	}
}

func ParseLines(text string, accepted filter.Set) []LineResult {
	lines := strings.Split(text, "\n")
	results := make([]LineResult, 0, len(lines))

	for i, line := range lines {
		results = append(results, ParseLine(i+1, line, accepted))
	}

	return results
}

func Parse(text string, accepted filter.Set) []currency.Rate {
	rates := make([]currency.Rate, 0)

	for _, result := range ParseLines(text, accepted) {
		if !result.Skipped() {
			rates = append(rates, result.Rate)
		}
	}

	return rates
}
