package utils

import (
	"strconv"
)

// FormatRupees renders whole rupees with thousands separators: 12500 -> "Rs 12,500"
func FormatRupees(amount int64) string {
	sign := ""
	if amount < 0 {
		sign = "-"
		amount = -amount
	}
	digits := strconv.FormatInt(amount, 10)

	var out []byte
	for i := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			out = append(out, ',')
		}
		out = append(out, digits[i])
	}
	return "Rs " + sign + string(out)
}
