package capture

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResultWire(t *testing.T) {
	cases := []struct {
		result Result
		wire   string
	}{
		{result: Incomplete(), wire: ""},
		{result: Escaped(), wire: "#escape"},
		{result: Sequence("kkk"), wire: "kkk"},
		{result: Result{Outcome: OutcomeEscaped, Text: "ignored"}, wire: "#escape"},
	}
	for _, tc := range cases {
		t.Run(tc.result.Outcome.String(), func(t *testing.T) {
			assert.Equal(t, tc.wire, tc.result.Wire())
		})
	}
}

func TestParseWire(t *testing.T) {
	assert.Equal(t, Incomplete(), ParseWire(""))
	assert.Equal(t, Escaped(), ParseWire("#escape"))
	assert.Equal(t, Sequence("zz"), ParseWire("zz"))
}

func TestValidationErrorMessage(t *testing.T) {
	err := ValidateMillis(100, 3)
	assert.EqualError(t, err, "duration_ms 100 not in [500, 10000]: window duration out of range")

	err = ValidateMillis(1000, 300)
	assert.EqualError(t, err, "target_count 300 not in [1, 255]: target count out of range")

	assert.NoError(t, ValidateMillis(500, 255))
	assert.NoError(t, ValidateMillis(10000, 1))
}
