// Package analytics computes windowed hit statistics over stored messages.
package analytics

import (
	"context"
	"sort"
	"time"

	"github.com/samber/lo"
	"github.com/samber/oops"
	channelDomain "github.com/tgpulse/tgpulse/internal/modules/channel/domain"
	"github.com/tgpulse/tgpulse/internal/modules/match"
	messageDomain "github.com/tgpulse/tgpulse/internal/modules/message/domain"
	tagDomain "github.com/tgpulse/tgpulse/internal/modules/tag/domain"
	"github.com/tgpulse/tgpulse/internal/storage"
)

// TagStat holds hit count and reach for one tag.
type TagStat struct {
	Tag   string `json:"tag"`
	Count int    `json:"count"`
	Reach int64  `json:"reach"`
}

// ChannelStat holds hit count and reach for one channel.
type ChannelStat struct {
	ChannelID int64  `json:"channel_id"`
	Name      string `json:"name"`
	Count     int    `json:"count"`
	Reach     int64  `json:"reach"`
}

// MatchedPost is one message with a non-empty match set.
type MatchedPost struct {
	Message     messageDomain.Message `json:"message"`
	ChannelName string                `json:"channel_name"`
	Tags        []string              `json:"tags"`
	Link        string                `json:"link"`
}

// Result is the ephemeral outcome of one aggregation. It is never
// persisted; repeated aggregation over unchanged store state yields an
// identical Result.
type Result struct {
	From             time.Time     `json:"from"`
	To               time.Time     `json:"to"`
	TotalHits        int           `json:"total_hits"`
	ChannelsWithHits int           `json:"channels_with_hits"`
	TagsMatched      int           `json:"tags_matched"`
	PerChannel       []ChannelStat `json:"per_channel"`
	PerTag           []TagStat     `json:"per_tag"`
	Posts            []MatchedPost `json:"posts"`
}

// Service aggregates stored messages. It holds no state beyond the
// injected store; the tag set is an explicit input on every call.
type Service struct {
	store storage.Store
}

func New(store storage.Store) *Service {
	return &Service{store: store}
}

// Aggregate computes per-channel and per-tag statistics over messages of
// active channels in [from, to). Messages matching no tag are not hits
// and contribute nothing. A message matching several tags increments
// each of them but counts once toward the totals.
func (s *Service) Aggregate(ctx context.Context, from, to time.Time, tags []tagDomain.Tag) (*Result, error) {
	channels, err := s.store.ListChannels(ctx, true)
	if err != nil {
		return nil, oops.Wrapf(err, "failed to list channels")
	}
	byID := lo.KeyBy(channels, func(ch *channelDomain.Channel) int64 { return ch.ID })

	messages, err := s.store.QueryMessages(ctx, from, to, 0)
	if err != nil {
		return nil, oops.Wrapf(err, "failed to query messages")
	}

	result := &Result{From: from.UTC(), To: to.UTC()}
	perTag := map[string]*TagStat{}
	perChannel := map[int64]*ChannelStat{}

	for _, msg := range messages {
		channel, ok := byID[msg.ChannelID]
		if !ok {
			// message owned by an inactive channel
			continue
		}
		matched := match.Match(msg.Text, tags)
		if len(matched) == 0 {
			continue
		}

		for _, tag := range matched {
			stat, ok := perTag[tag.Name]
			if !ok {
				stat = &TagStat{Tag: tag.Name}
				perTag[tag.Name] = stat
			}
			stat.Count++
			stat.Reach += msg.Views
		}

		stat, ok := perChannel[msg.ChannelID]
		if !ok {
			stat = &ChannelStat{ChannelID: msg.ChannelID, Name: channel.DisplayName()}
			perChannel[msg.ChannelID] = stat
		}
		stat.Count++
		stat.Reach += msg.Views

		result.Posts = append(result.Posts, MatchedPost{
			Message:     msg,
			ChannelName: channel.DisplayName(),
			Tags:        lo.Map(matched, func(t tagDomain.Tag, _ int) string { return t.Name }),
			Link:        messageDomain.BuildLink(msg.ChannelID, channel.Link, msg.MessageID),
		})
	}

	result.TotalHits = len(result.Posts)
	result.ChannelsWithHits = len(perChannel)
	result.TagsMatched = len(perTag)
	result.PerTag = rankTags(perTag)
	result.PerChannel = rankChannels(perChannel)
	return result, nil
}

// rankTags orders summaries by hit count descending, then reach
// descending, then name ascending. The order is total, so rendering is
// deterministic.
func rankTags(stats map[string]*TagStat) []TagStat {
	ranked := lo.Map(lo.Values(stats), func(s *TagStat, _ int) TagStat { return *s })
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Count != ranked[j].Count {
			return ranked[i].Count > ranked[j].Count
		}
		if ranked[i].Reach != ranked[j].Reach {
			return ranked[i].Reach > ranked[j].Reach
		}
		return ranked[i].Tag < ranked[j].Tag
	})
	return ranked
}

func rankChannels(stats map[int64]*ChannelStat) []ChannelStat {
	ranked := lo.Map(lo.Values(stats), func(s *ChannelStat, _ int) ChannelStat { return *s })
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Count != ranked[j].Count {
			return ranked[i].Count > ranked[j].Count
		}
		if ranked[i].Reach != ranked[j].Reach {
			return ranked[i].Reach > ranked[j].Reach
		}
		if ranked[i].Name != ranked[j].Name {
			return ranked[i].Name < ranked[j].Name
		}
		return ranked[i].ChannelID < ranked[j].ChannelID
	})
	return ranked
}
