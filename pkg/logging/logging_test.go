package logging

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want slog.Level
	}{
		{name: "empty", in: "", want: slog.LevelInfo},
		{name: "debug", in: "DEBUG", want: slog.LevelDebug},
		{name: "warning", in: " warning ", want: slog.LevelWarn},
		{name: "error", in: "error", want: slog.LevelError},
		{name: "unknown", in: "verbose", want: slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, parseLevel(tt.in))
		})
	}
}

func TestCommonLogger(t *testing.T) {
	l, err := CommonLogger(NewConfig("tests"))
	require.NoError(t, err)
	require.NotNil(t, l)

	_, err = CommonLogger(nil)
	require.Error(t, err)
}
