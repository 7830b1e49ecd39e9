package utils

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// MaxSeatColumns is the largest column number a seat code may carry.
const MaxSeatColumns = 100

var (
	// ErrSeatCode is returned for codes that are not a row letter
	// followed by a column number between 1 and MaxSeatColumns.
	ErrSeatCode = errors.New("invalid seat code")
	// ErrRowRange is returned for row ranges that are not "X-Y" with X <= Y.
	ErrRowRange = errors.New("invalid row range")
)

// NormalizeSeatCode upper-cases and trims a seat code and validates it.
// "a7" becomes "A7"; "A07", "A0", "AA1", "A+1" and "A101" are rejected.
func NormalizeSeatCode(raw string) (string, error) {
	s := strings.ToUpper(strings.TrimSpace(raw))
	if len(s) < 2 || s[0] < 'A' || s[0] > 'Z' {
		return "", fmt.Errorf("%w: %q", ErrSeatCode, raw)
	}
	digits := s[1:]
	if digits[0] == '0' {
		return "", fmt.Errorf("%w: %q", ErrSeatCode, raw)
	}
	for i := 0; i < len(digits); i++ {
		if digits[i] < '0' || digits[i] > '9' {
			return "", fmt.Errorf("%w: %q", ErrSeatCode, raw)
		}
	}
	n, err := strconv.Atoi(digits)
	if err != nil || n < 1 || n > MaxSeatColumns {
		return "", fmt.Errorf("%w: %q", ErrSeatCode, raw)
	}
	return s, nil
}

// SeatCode builds the code of the seat in row (a letter) and column col.
func SeatCode(row byte, col int) string {
	return string(row) + strconv.Itoa(col)
}

// ExpandRowRange turns "A-E" into the row letters A through E.  Both ends
// are inclusive and case-insensitive.
func ExpandRowRange(raw string) ([]byte, error) {
	s := strings.ToUpper(strings.TrimSpace(raw))
	if len(s) != 3 || s[1] != '-' {
		return nil, fmt.Errorf("%w: %q", ErrRowRange, raw)
	}
	start, end := s[0], s[2]
	if start < 'A' || start > 'Z' || end < 'A' || end > 'Z' || start > end {
		return nil, fmt.Errorf("%w: %q", ErrRowRange, raw)
	}
	rows := make([]byte, 0, end-start+1)
	for r := start; r <= end; r++ {
		rows = append(rows, r)
	}
	return rows, nil
}

// SplitSeatCodes parses a comma separated seat list such as "A1,A2".
// Empty entries are skipped.
func SplitSeatCodes(csv string) []string {
	parts := strings.Split(csv, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// JoinSeatCodes is the inverse of SplitSeatCodes.
func JoinSeatCodes(codes []string) string { return strings.Join(codes, ",") }
