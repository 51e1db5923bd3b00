package version

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in   string
		want Version
	}{
		{"1.2.3", New(1, 2, 3)},
		{"v0.4.0", New(0, 4, 0)},
		{"2", New(2, 0, 0)},
		{" 3.1 ", New(3, 1, 0)},
	}
	for _, tc := range cases {
		got, err := Parse(tc.in)
		require.NoError(t, err, tc.in)
		assert.Equal(t, tc.want, got, tc.in)
	}
}

func TestParse_Invalid(t *testing.T) {
	t.Parallel()

	for _, in := range []string{"", "1.2.3.4", "a.b.c", "1.-2.0"} {
		_, err := Parse(in)
		assert.Error(t, err, in)
	}
}

func TestUnpack(t *testing.T) {
	t.Parallel()
	assert.Equal(t, New(1, 2, 3), Unpack(1<<16|2<<8|3))
	assert.Equal(t, "0.0.0", Unpack(0).String())
}

func TestLess(t *testing.T) {
	t.Parallel()
	assert.True(t, New(1, 2, 3).Less(New(1, 3, 0)))
	assert.True(t, New(0, 9, 9).Less(New(1, 0, 0)))
	assert.False(t, New(1, 0, 0).Less(New(1, 0, 0)))
}
