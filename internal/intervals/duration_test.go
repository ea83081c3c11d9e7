package intervals

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseDuration(t *testing.T) {
	cases := map[string]int{
		"45":        45,
		"1:30":      90,
		"1:00:05":   3605,
		"0:0":       0,
		"":          0,
		"abc":       0,
		"12abc":     12,
		"1:xx":      60,
		" 2 : 05 ":  125,
		"-5":        0,
		"90":        90,
		"100:00":    6000,
		"::7":       7,
		"3:":        180,
		"0007":      7,
		"1:2:3:4":   ((1*60+2)*60+3)*60 + 4,
	}
	for input, want := range cases {
		assert.Equal(t, want, ParseDuration(input), "input %q", input)
	}
}

func TestParseDuration_SaturatesHugeValues(t *testing.T) {
	for _, input := range []string{
		"99999999999999999999",
		"200000000000000000:0",
		"10000000000",
		"9999:59:59",
		"1:0:0:0:0:0:0:0:0:0:0:0",
		"360000",
	} {
		assert.Equal(t, MaxSeconds, ParseDuration(input), "input %q", input)
	}
	assert.Equal(t, MaxSeconds-1, ParseDuration("99:59:58"))
	assert.Equal(t, "99:59:59", FormatSeconds(ParseDuration("99999999999999999999")))
}

func TestParseSets(t *testing.T) {
	assert.Equal(t, 8, ParseSets("8"))
	assert.Equal(t, 0, ParseSets(""))
	assert.Equal(t, MaxSets, ParseSets("100000000"))
	assert.Equal(t, MaxSets, ParseSets("200000000000000000:0"))
}

func TestFormatSeconds(t *testing.T) {
	assert.Equal(t, "0", FormatSeconds(0))
	assert.Equal(t, "45", FormatSeconds(45))
	assert.Equal(t, "1:30", FormatSeconds(90))
	assert.Equal(t, "10:00", FormatSeconds(600))
	assert.Equal(t, "1:00:05", FormatSeconds(3605))
	assert.Equal(t, "0", FormatSeconds(-3))
}

func TestFormatSeconds_RoundTripsThroughParse(t *testing.T) {
	for _, seconds := range []int{0, 1, 59, 60, 61, 3599, 3600, 7322} {
		assert.Equal(t, seconds, ParseDuration(FormatSeconds(seconds)))
	}
}
