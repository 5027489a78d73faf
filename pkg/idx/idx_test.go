package idx

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestNewIsUniqueAndOrdered(t *testing.T) {
	a := New()
	b := New()

	require.False(t, a.IsZero())
	require.False(t, b.IsZero())
	require.NotEqual(t, a, b)

	// Monotonic entropy keeps same-millisecond IDs ordered.
	require.True(t, a.String() < b.String())
}

func TestParse(t *testing.T) {
	id := New()

	parsed, err := Parse(id.String())
	require.NoError(t, err)
	require.Equal(t, id, parsed)

	_, err = Parse("")
	require.ErrorIs(t, err, ErrInvalid)

	_, err = Parse("not-a-ulid")
	require.ErrorIs(t, err, ErrInvalid)
}

func TestNewAtEmbedsTime(t *testing.T) {
	at := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	id := NewAt(at)

	require.WithinDuration(t, at, id.Time(), time.Millisecond)
}

func TestEncodeBase32Lower(t *testing.T) {
	out := EncodeBase32Lower([]byte{0xde, 0xad, 0xbe, 0xef, 0x00, 0x01})
	require.Equal(t, "vtpvxvr004", out)
}

func TestEncodeBase32LowerAlphabet(t *testing.T) {
	// All 256 byte values, so every alphabet position is hit. The ambiguous
	// i, l, o, u must never appear.
	var all [256]byte
	for i := range all {
		all[i] = byte(i)
	}

	out := EncodeBase32Lower(all[:])
	require.NotEmpty(t, out)
	for _, c := range "ilou" {
		require.NotContains(t, out, string(c))
	}
	for _, c := range out {
		require.True(t, (c >= '0' && c <= '9') || (c >= 'a' && c <= 'z'), "unexpected character %q", c)
	}
}
