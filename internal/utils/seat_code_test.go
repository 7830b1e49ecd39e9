package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeSeatCode(t *testing.T) {
	tests := []struct {
		raw     string
		want    string
		wantErr bool
	}{
		{raw: "A1", want: "A1"},
		{raw: " b12 ", want: "B12"},
		{raw: "Z100", want: "Z100"},
		{raw: "A0", wantErr: true},
		{raw: "A07", wantErr: true},
		{raw: "A101", wantErr: true},
		{raw: "AA1", wantErr: true},
		{raw: "1A", wantErr: true},
		{raw: "A+1", wantErr: true},
		{raw: "A-1", wantErr: true},
		{raw: "A1 2", wantErr: true},
		{raw: "A", wantErr: true},
		{raw: "", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, err := NormalizeSeatCode(tt.raw)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrSeatCode)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestExpandRowRange(t *testing.T) {
	rows, err := ExpandRowRange("a-e")
	require.NoError(t, err)
	assert.Equal(t, []byte("ABCDE"), rows)

	rows, err = ExpandRowRange("C-C")
	require.NoError(t, err)
	assert.Equal(t, []byte("C"), rows)

	for _, bad := range []string{"E-A", "A-", "AE", "A-1", "AA-B"} {
		_, err := ExpandRowRange(bad)
		assert.ErrorIs(t, err, ErrRowRange, bad)
	}
}

func TestSplitAndJoinSeatCodes(t *testing.T) {
	codes := SplitSeatCodes(" A1, A2,,B3 ")
	assert.Equal(t, []string{"A1", "A2", "B3"}, codes)
	assert.Equal(t, "A1,A2,B3", JoinSeatCodes(codes))
	assert.Equal(t, "C10", SeatCode('C', 10))
}
