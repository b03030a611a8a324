package prompt

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestRegistry_Outcomes(t *testing.T) {
	tests := []struct {
		name  string
		act   func(r *Registry[[]string], id string) bool
		want  Outcome
		value []string
	}{
		{
			name:  "confirmed",
			act:   func(r *Registry[[]string], id string) bool { return r.Resolve(id, []string{"support"}) },
			want:  Confirmed,
			value: []string{"support"},
		},
		{
			name: "cancelled",
			act:  func(r *Registry[[]string], id string) bool { return r.Cancel(id) },
			want: Cancelled,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewRegistry[[]string](time.Minute)
			id, ch := r.Open()
			require.Equal(t, 1, r.Len())

			require.True(t, tt.act(r, id))

			res := <-ch
			require.Equal(t, tt.want, res.Outcome)
			require.Equal(t, tt.value, res.Value)
			require.Equal(t, 0, r.Len())

			// The prompt finishes once.
			require.False(t, r.Resolve(id, nil))
			require.False(t, r.Cancel(id))
			_, open := <-ch
			require.False(t, open)
		})
	}
}

func TestRegistry_TimesOut(t *testing.T) {
	r := NewRegistry[string](20 * time.Millisecond)
	id, ch := r.Open()

	select {
	case res := <-ch:
		require.Equal(t, TimedOut, res.Outcome)
		require.Empty(t, res.Value)
	case <-time.After(2 * time.Second):
		t.Fatal("prompt did not time out")
	}

	require.False(t, r.Resolve(id, "late"))
	require.Equal(t, 0, r.Len())
}

func TestRegistry_UnknownID(t *testing.T) {
	r := NewRegistry[bool](0)
	require.Equal(t, DefaultTimeout, r.timeout)
	require.False(t, r.Resolve("nope", true))
}

func TestOutcome_String(t *testing.T) {
	require.Equal(t, "confirmed", Confirmed.String())
	require.Equal(t, "cancelled", Cancelled.String())
	require.Equal(t, "timed_out", TimedOut.String())
}
