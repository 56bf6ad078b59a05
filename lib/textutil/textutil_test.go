package textutil

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestClean(t *testing.T) {
	testCases := []struct {
		in   string
		want string
	}{
		{"Widget", "Widget"},
		{"<p>Widget</p>", "Widget"},
		{"<div><span>Acme</span> Widget</div>", "Acme Widget"},
		{"Ben &amp; Jerry&#8217;s", "Ben & Jerry’s"},
		{"  Widget\n\t Deluxe  ", "Widget Deluxe"},
		{"Crème glacée", "Crème glacée"},
		{"1 049,99 $", "1 049,99 $"},
		{"", ""},
	}

	for _, test := range testCases {
		require.Equal(t, test.want, Clean(test.in), "input: %q", test.in)
	}
}

func TestCleanIsIdempotent(t *testing.T) {
	inputs := []string{
		"<p>Ben &amp; Jerry&#8217;s  Chocolate</p>",
		"plain text",
		"  spaced   out  ",
	}
	for _, in := range inputs {
		once := Clean(in)
		require.Equal(t, once, Clean(once), "input: %q", in)
	}
}

func TestParseAmount(t *testing.T) {
	testCases := []struct {
		in   string
		want float64
	}{
		{"9.99", 9.99},
		{"$9.99", 9.99},
		{"1,049.99", 1049.99},
		{"9,99 $", 9.99},
		{"1 049,99 $", 1049.99},
		{"1 049,99 $", 1049.99},
	}
	for _, test := range testCases {
		got, err := ParseAmount(test.in)
		require.NoError(t, err, "input: %q", test.in)
		require.Equal(t, test.want, got, "input: %q", test.in)
	}
}

func TestParseAmountRejectsGarbage(t *testing.T) {
	for _, in := range []string{"", "free", "call for price"} {
		_, err := ParseAmount(in)
		require.Error(t, err, "input: %q", in)
	}
}
