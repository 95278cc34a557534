package timestats

import "testing"

func TestFormatDuration(t *testing.T) {
	cases := []struct {
		ms   int64
		want string
	}{
		{0, "0 seconds"},
		{999, "0 seconds"},
		{1000, "1 second"},
		{61000, "1 minute, 1 second"},
		{120000, "2 minutes"},
		{3600000, "1 hour"},
		{3661000, "1 hour, 1 minute, 1 second"},
		{7505000, "2 hours, 5 minutes, 5 seconds"},
		{-5, "0 seconds"},
	}
	for _, c := range cases {
		if got := FormatDuration(c.ms); got != c.want {
			t.Errorf("FormatDuration(%d) = %q, want %q", c.ms, got, c.want)
		}
	}
}
