package request

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBusinessDays(t *testing.T) {
	tests := []struct {
		name       string
		start, end string
		want       int
	}{
		{"leap february", "01/02/2024", "29/02/2024", 21},
		{"one week", "01/01/2024", "07/01/2024", 5},
		{"single weekday", "03/01/2024", "03/01/2024", 1},
		{"weekend only", "06/01/2024", "07/01/2024", 0},
		{"reversed", "10/01/2024", "01/01/2024", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := BusinessDays(tt.start, tt.end)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestBusinessDays_InvalidDates(t *testing.T) {
	_, err := BusinessDays("2024-01-01", "07/01/2024")
	assert.ErrorContains(t, err, "start")

	_, err = BusinessDays("01/01/2024", "31/02/2024")
	assert.ErrorContains(t, err, "end")
}

func TestDescriptionLines(t *testing.T) {
	assert.Equal(t, 0, DescriptionLines(""))
	assert.Equal(t, 1, DescriptionLines("one"))
	assert.Equal(t, 2, DescriptionLines("one\n\n  \ntwo\n"))
}

func TestPreview(t *testing.T) {
	req := Request{Periods: []Entry{
		{Start: "01/01/2024", End: "05/01/2024", Morning: "a\nb\nc\nd\ne", Afternoon: "x\ny"},
		{Start: "bad", End: "05/01/2024"},
	}}

	previews := Preview(req)
	require.Len(t, previews, 2)

	first := previews[0]
	assert.Equal(t, 5, first.BusinessDays)
	assert.Equal(t, 5, first.MorningLines)
	assert.Equal(t, 2, first.AfternoonLines)
	assert.True(t, first.ShortDescriptions())
	assert.Empty(t, first.DateError)

	second := previews[1]
	assert.NotEmpty(t, second.DateError)
	assert.False(t, second.ShortDescriptions())
}
