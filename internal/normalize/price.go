package normalize

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

// priceRe matches the first dollar-amount-like substring in free text,
// e.g. "$19.99", "$1,299" or "USD 24.50".
var priceRe = regexp.MustCompile(`\$?\s*([0-9][0-9,]*(?:\.[0-9]{1,2})?)`)

// PriceCents extracts the first dollar amount from free price text and
// returns it in integer minor units. Text without a parseable amount
// ("Free", "", "See price in cart") yields nil rather than an error.
func PriceCents(text string) *int64 {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	// Require a digit somewhere; words like "Free" never parse.
	if !strings.ContainsAny(text, "0123456789") {
		return nil
	}

	match := priceRe.FindStringSubmatch(text)
	if match == nil {
		return nil
	}

	amount, err := strconv.ParseFloat(strings.ReplaceAll(match[1], ",", ""), 64)
	if err != nil {
		return nil
	}

	cents := int64(math.Round(amount * 100))
	return &cents
}
