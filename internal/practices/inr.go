package practices

import (
	"math"
	"strconv"
	"strings"
)

// FormatINR renders amount in rupees with Indian digit grouping and no
// fraction digits: 150000 -> "₹1,50,000".
func FormatINR(amount float64) string {
	rounded := math.Round(amount)
	neg := rounded < 0
	if neg {
		rounded = -rounded
	}

	digits := strconv.FormatFloat(rounded, 'f', 0, 64)

	var b strings.Builder
	if neg {
		b.WriteByte('-')
	}
	b.WriteString("₹")

	if len(digits) <= 3 {
		b.WriteString(digits)
		return b.String()
	}

	// last three digits form one group, the rest group in pairs
	head, tail := digits[:len(digits)-3], digits[len(digits)-3:]
	groups := []string{tail}
	for len(head) > 2 {
		groups = append([]string{head[len(head)-2:]}, groups...)
		head = head[:len(head)-2]
	}
	if head != "" {
		groups = append([]string{head}, groups...)
	}
	b.WriteString(strings.Join(groups, ","))
	return b.String()
}
