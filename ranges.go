package serve

import (
	"fmt"
	"strconv"
	"strings"
)

const rangeUnit = "bytes="

// ParseRange parses a Range header value of the form "bytes=start-[end]" or
// "bytes=-suffix". It reports false for anything it cannot parse, which callers
// treat as if no Range header had been sent. Only the first range of a
// multi-range request is returned.
func ParseRange(header string) (*ByteRange, bool) {
	header = strings.TrimSpace(header)
	if len(header) < len(rangeUnit) || !strings.EqualFold(header[:len(rangeUnit)], rangeUnit) {
		return nil, false
	}

	rangeSpec, _, _ := strings.Cut(header[len(rangeUnit):], ",")
	rangeSpec = strings.TrimSpace(rangeSpec)

	startStr, endStr, ok := strings.Cut(rangeSpec, "-")
	if !ok {
		return nil, false
	}
	startStr = strings.TrimSpace(startStr)
	endStr = strings.TrimSpace(endStr)

	if startStr == "" {
		suffix, err := parseRangeInt(endStr)
		if err != nil {
			return nil, false
		}
		return &ByteRange{Suffix: &suffix}, true
	}

	start, err := parseRangeInt(startStr)
	if err != nil {
		return nil, false
	}

	r := &ByteRange{Start: start}
	if endStr != "" {
		end, err := parseRangeInt(endStr)
		if err != nil || end < start {
			return nil, false
		}
		r.End = &end
	}

	return r, true
}

func parseRangeInt(s string) (int64, error) {
	if s == "" || s[0] == '+' || s[0] == '-' {
		return 0, fmt.Errorf("invalid range value %q", s)
	}
	return strconv.ParseInt(s, 10, 64)
}

// Negotiate computes which bytes of a file of the given size to serve. A nil
// range yields the full-content plan. A range starting at or past the end of
// the file fails with ErrRangeNotSatisfiable; an end past the last byte is
// clamped.
func Negotiate(r *ByteRange, size int64) (ServingPlan, error) {
	if r == nil {
		return ServingPlan{Start: 0, End: size - 1, Total: size}, nil
	}

	if r.Suffix != nil {
		n := *r.Suffix
		if n <= 0 || size == 0 {
			return ServingPlan{}, fmt.Errorf("negotiate suffix %d of %d: %w", n, size, ErrRangeNotSatisfiable)
		}
		return ServingPlan{Partial: true, Start: max(size-n, 0), End: size - 1, Total: size}, nil
	}

	if r.Start >= size {
		return ServingPlan{}, fmt.Errorf("negotiate %d- of %d: %w", r.Start, size, ErrRangeNotSatisfiable)
	}

	end := size - 1
	if r.End != nil && *r.End < end {
		end = *r.End
	}
	if end < r.Start {
		return ServingPlan{Start: 0, End: size - 1, Total: size}, nil
	}

	return ServingPlan{Partial: true, Start: r.Start, End: end, Total: size}, nil
}
