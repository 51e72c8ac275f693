// Package match decides which tags a message text hits.
package match

import (
	"strings"

	"github.com/samber/lo"
	tagDomain "github.com/tgpulse/tgpulse/internal/modules/tag/domain"
)

// Match returns every tag whose name appears as a case-insensitive
// substring of text. Substring semantics are intentional: hashtags and
// compound words should still hit. Tags are matched independently, so a
// message may match zero, one, or many tags. The result preserves the
// order of the input tag set.
func Match(text string, tags []tagDomain.Tag) []tagDomain.Tag {
	if text == "" || len(tags) == 0 {
		return nil
	}
	lowered := strings.ToLower(text)
	return lo.Filter(tags, func(t tagDomain.Tag, _ int) bool {
		name := tagDomain.Normalize(t.Name)
		return name != "" && strings.Contains(lowered, name)
	})
}
