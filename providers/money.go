package providers

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"pricescout/models"
)

// priceRegex matches a price-shaped digit run: grouped thousands with an
// optional 1-2 digit decimal tail, or a plain digit run.
var priceRegex = regexp.MustCompile(`\d{1,3}(?:[.,]\d{3})+(?:[.,]\d{1,2})?|\d+(?:[.,]\d{1,2})?`)

// ParseMoney turns a raw price string plus an optional currency hint into a
// normalized Money. Returns nil when the string carries no price-shaped
// digits. When the hint is blank the raw amount string itself is inspected
// for currency markers before falling back to the provider default.
func ParseMoney(rawAmount, rawHint, defaultCurrency string) *models.Money {
	if strings.TrimSpace(rawAmount) == "" {
		return nil
	}
	match := priceRegex.FindString(rawAmount)
	if match == "" {
		return nil
	}
	amount, err := normalizeNumber(match)
	if err != nil {
		return nil
	}
	hint := rawHint
	if strings.TrimSpace(hint) == "" {
		hint = rawAmount
	}
	return &models.Money{
		Currency: NormalizeCurrency(hint, defaultCurrency),
		Amount:   amount,
	}
}

// NormalizeCurrency maps a free-form currency hint to a code. Anything
// carrying a US marker becomes USD; a bare symbol or an empty hint falls
// back to the provider default; other tokens pass through upper-cased.
func NormalizeCurrency(hint, fallback string) string {
	h := strings.ToUpper(strings.TrimSpace(hint))
	if strings.Contains(h, "US") || strings.Contains(h, "U$") {
		return "USD"
	}
	h = strings.Trim(h, "0123456789.,$  ")
	if h == "" {
		return fallback
	}
	return h
}

// normalizeNumber resolves the '.' vs ',' ambiguity. When both separators
// appear, the rightmost one is the decimal point. When only one appears it
// is a decimal point only if it occurs once with exactly two digits after
// it; otherwise it groups thousands ("1.234" is 1234, "12.34" is 12.34).
func normalizeNumber(s string) (float64, error) {
	lastDot := strings.LastIndexByte(s, '.')
	lastComma := strings.LastIndexByte(s, ',')

	decimalAt := -1
	switch {
	case lastDot >= 0 && lastComma >= 0:
		if lastDot > lastComma {
			decimalAt = lastDot
		} else {
			decimalAt = lastComma
		}
	case lastDot >= 0:
		if strings.Count(s, ".") == 1 && len(s)-lastDot-1 == 2 {
			decimalAt = lastDot
		}
	case lastComma >= 0:
		if strings.Count(s, ",") == 1 && len(s)-lastComma-1 == 2 {
			decimalAt = lastComma
		}
	}

	var b strings.Builder
	for i := 0; i < len(s); i++ {
		switch {
		case s[i] >= '0' && s[i] <= '9':
			b.WriteByte(s[i])
		case i == decimalAt:
			b.WriteByte('.')
		}
	}
	return strconv.ParseFloat(b.String(), 64)
}

// DiscountPercent computes the rounded percentage saved going from the
// original price to the current one. Returns nil unless both prices are
// present, the original is positive, and the current is strictly lower;
// a rounded result of zero or less also yields nil.
func DiscountPercent(original, current *models.Money) *int {
	if original == nil || current == nil {
		return nil
	}
	if original.Amount <= 0 || current.Amount >= original.Amount {
		return nil
	}
	pct := int(math.Round((1 - current.Amount/original.Amount) * 100))
	if pct <= 0 {
		return nil
	}
	return &pct
}
