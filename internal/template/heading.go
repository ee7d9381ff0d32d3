package template

import (
	"fmt"
	"strconv"
	"strings"
)

// HeadingNumbers assigns outline numbers to headings in document order.
// Re-entering a shallower level clears every deeper counter and restarts
// the shallower one at 1; level 1 only ever counts up.
type HeadingNumbers struct {
	counters [7]int
	last     int
}

// Next advances the counters for a heading of the given level (clamped to
// 1-6) and returns its number label.
func (h *HeadingNumbers) Next(level int) string {
	level = min(max(level, 1), 6)
	switch {
	case level == h.last:
		h.counters[level]++
	case level > h.last:
		h.clearBelow(level)
		h.counters[level] = 1
	default:
		h.clearBelow(level)
		if level == 1 {
			h.counters[1]++
		} else {
			h.counters[level] = 1
		}
	}
	h.last = level
	return h.label(level)
}

func (h *HeadingNumbers) clearBelow(level int) {
	for l := level + 1; l < len(h.counters); l++ {
		h.counters[l] = 0
	}
}

func (h *HeadingNumbers) label(level int) string {
	c := h.counters
	switch level {
	case 1:
		return ChineseNumber(c[1]) + "、"
	case 2:
		return fmt.Sprintf("%d、", c[2])
	case 4:
		return fmt.Sprintf("%d.%d.%d.%d、", c[1], c[2], c[3], c[4])
	default:
		return fmt.Sprintf("%d）", c[level])
	}
}

var (
	cnDigits = []string{"零", "一", "二", "三", "四", "五", "六", "七", "八", "九"}
	cnUnits  = []string{"", "十", "百", "千"}
)

// ChineseNumber renders 1-9999 as Chinese numerals (十一, 二十, 一百零五).
// Other values fall back to Arabic digits.
func ChineseNumber(n int) string {
	if n <= 0 || n >= 10000 {
		return strconv.Itoa(n)
	}
	if n < 20 && n >= 10 {
		if n == 10 {
			return "十"
		}
		return "十" + cnDigits[n%10]
	}

	digits := []int{n / 1000 % 10, n / 100 % 10, n / 10 % 10, n % 10}
	var sb strings.Builder
	started, zero := false, false
	for i, d := range digits {
		unit := cnUnits[3-i]
		if d == 0 {
			if started {
				zero = true
			}
			continue
		}
		if zero {
			sb.WriteString(cnDigits[0])
			zero = false
		}
		sb.WriteString(cnDigits[d])
		sb.WriteString(unit)
		started = true
	}
	return sb.String()
}
