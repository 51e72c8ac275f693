package match

import (
	"testing"

	"github.com/samber/lo"
	"github.com/stretchr/testify/require"
	tagDomain "github.com/tgpulse/tgpulse/internal/modules/tag/domain"
)

func tags(names ...string) []tagDomain.Tag {
	return lo.Map(names, func(n string, _ int) tagDomain.Tag { return tagDomain.Tag{Name: n} })
}

func names(matched []tagDomain.Tag) []string {
	return lo.Map(matched, func(t tagDomain.Tag, _ int) string { return t.Name })
}

func TestMatchCaseInsensitive(t *testing.T) {
	matched := Match("TON Airdrop launching soon", tags("ton", "airdrop"))
	require.Equal(t, []string{"ton", "airdrop"}, names(matched))
}

func TestMatchSubstring(t *testing.T) {
	// Hashtags and compound words still hit.
	matched := Match("big #airdrops incoming", tags("airdrop"))
	require.Equal(t, []string{"airdrop"}, names(matched))
}

func TestMatchNoHit(t *testing.T) {
	require.Empty(t, Match("nothing relevant here", tags("ton", "airdrop")))
}

func TestMatchEmptyInputs(t *testing.T) {
	require.Empty(t, Match("", tags("ton")))
	require.Empty(t, Match("some text", nil))
}

func TestMatchPreservesTagOrder(t *testing.T) {
	matched := Match("airdrop before ton", tags("ton", "airdrop"))
	require.Equal(t, []string{"ton", "airdrop"}, names(matched))
}

func TestMatchGrowsWithTagSet(t *testing.T) {
	text := "TON dev update with airdrop news"

	small := Match(text, tags("ton"))
	large := Match(text, tags("ton", "airdrop", "defi"))

	// Adding tags never removes existing hits.
	require.Subset(t, names(large), names(small))
	require.Len(t, small, 1)
	require.Len(t, large, 2)
}

func TestMatchNormalizesTagNames(t *testing.T) {
	matched := Match("ton news", tags(" TON "))
	require.Len(t, matched, 1)
}
