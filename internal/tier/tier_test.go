package tier

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccessible(t *testing.T) {
	cases := []struct {
		in   Tier
		want []string
	}{
		{Platinum, []string{"platinum", "gold", "silver"}},
		{Gold, []string{"gold", "silver"}},
		{Silver, []string{"silver"}},
	}
	for _, tc := range cases {
		got, err := Accessible(tc.in)
		require.NoError(t, err, tc.in)
		assert.Equal(t, tc.want, got)
	}
}

func TestAccessibleRejectsUnknown(t *testing.T) {
	for _, in := range []Tier{"", "bronze", "GOLD"} {
		_, err := Accessible(in)
		assert.ErrorIs(t, err, ErrInvalidTier, "tier %q", in)
	}
}

func TestAccessibleIsNested(t *testing.T) {
	p, _ := Accessible(Platinum)
	g, _ := Accessible(Gold)
	s, _ := Accessible(Silver)
	assert.Subset(t, p, g)
	assert.Subset(t, g, s)
}

func TestParse(t *testing.T) {
	got, err := Parse("  Gold ")
	require.NoError(t, err)
	assert.Equal(t, Gold, got)

	_, err = Parse("diamond")
	assert.ErrorIs(t, err, ErrInvalidTier)
}

func TestSplitList(t *testing.T) {
	assert.Equal(t, []string{"Leo", "Joseph"}, SplitList("Leo, Joseph"))
	assert.Equal(t, []string{"gold", "silver"}, SplitList(" gold ,silver,"))
	assert.Empty(t, SplitList(""))
}

func TestParseTags(t *testing.T) {
	got, err := ParseTags([]string{"platinum", "silver", "silver"})
	require.NoError(t, err)
	assert.Equal(t, []string{"platinum", "silver"}, got)

	_, err = ParseTags(nil)
	assert.ErrorIs(t, err, ErrInvalidTier)

	_, err = ParseTags([]string{"gold", "copper"})
	assert.ErrorIs(t, err, ErrInvalidTier)
}

func TestIntersects(t *testing.T) {
	acc, _ := Accessible(Silver)
	assert.False(t, Intersects([]string{"gold"}, acc))
	assert.True(t, Intersects([]string{"platinum", "silver"}, acc))
}
