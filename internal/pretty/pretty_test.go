package pretty

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestDuration(t *testing.T) {
	cases := []struct {
		d    time.Duration
		want string
	}{
		{0, "0ns"},
		{999 * time.Nanosecond, "999ns"},
		{time.Microsecond, "1us"},
		{1500 * time.Nanosecond, "1us"},
		{999_999 * time.Nanosecond, "999us"},
		{time.Millisecond, "1ms"},
		{42 * time.Millisecond, "42ms"},
		{9_999 * time.Millisecond, "9999ms"},
		{10 * time.Second, "10s"},
		{90 * time.Second, "90s"},
	}
	for _, c := range cases {
		require.Equal(t, c.want, Duration(c.d), "input %v", c.d)
	}
}

func TestBytes(t *testing.T) {
	cases := []struct {
		n    uint64
		want string
	}{
		{0, "0bytes"},
		{1, "1bytes"},
		{1023, "1023bytes"},
		{KiB, "1KiB"},
		{MiB - 1, "1023KiB"},
		{MiB, "1MiB"},
		{10 * MiB, "10MiB"},
		{GiB - 1, "1023MiB"},
		{GiB, "1GiB"},
		{128 * GiB, "128GiB"},
		{TiB, "1TiB"},
		{4*TiB + GiB, "4TiB"},
	}
	for _, c := range cases {
		require.Equal(t, c.want, Bytes(c.n), "input %d", c.n)
	}
}
