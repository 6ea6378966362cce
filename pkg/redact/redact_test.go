package redact

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEmail(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"foobar@example.com":  "fo***@example.com",
		"ab@ex.com":           "***@ex.com",
		"user@":               "us***@",
		"no-at":               "***",
		"a@b@c":               "***",
		"abc.def+tag@EXAMPLE": "ab***@EXAMPLE",
	}
	for in, want := range cases {
		require.Equal(t, want, Email(in), in)
	}
}

func TestLiterals(t *testing.T) {
	t.Parallel()

	require.Equal(t, "[REDACTED_TOKEN]", Token())
	require.Equal(t, "[REDACTED_PASSWORD]", Password())
	require.Equal(t, "empty", Presence(""))
	require.Equal(t, "set", Presence("tok"))
}

func TestArgs(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   []string
		want []string
	}{
		{"separate value", []string{"--email", "a@b.c", "--password", "Secret123"}, []string{"--email", "a@b.c", "--password", "[REDACTED_PASSWORD]"}},
		{"single dash", []string{"-password", "Secret123"}, []string{"-password", "[REDACTED_PASSWORD]"}},
		{"inline value", []string{"--new-password=Secret123", "--x=1"}, []string{"--new-password=[REDACTED_PASSWORD]", "--x=1"}},
		{"trailing flag", []string{"--password"}, []string{"--password"}},
		{"no secrets", []string{"skills", "--status", "active"}, []string{"skills", "--status", "active"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := append([]string(nil), tt.in...)
			require.Equal(t, tt.want, Args(tt.in))
			require.Equal(t, in, tt.in, "input must not change")
		})
	}
}
