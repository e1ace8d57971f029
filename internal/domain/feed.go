package domain

import "time"

type FeedKind string

const (
	FeedKindMemberJoined       FeedKind = "MEMBER_JOINED"
	FeedKindAnnouncementPosted FeedKind = "ANNOUNCEMENT_POSTED"
)

// FeedItem is one notification entry. The interface is sealed: MemberJoined and
// AnnouncementPosted are the only implementations.
type FeedItem interface {
	Kind() FeedKind
	ItemID() string
	OccurredAt() time.Time
	feedItem()
}

type MemberJoined struct {
	ID         string
	MemberName string
	ClubName   string
	JoinedAt   time.Time
}

func (MemberJoined) Kind() FeedKind          { return FeedKindMemberJoined }
func (m MemberJoined) ItemID() string        { return m.ID }
func (m MemberJoined) OccurredAt() time.Time { return m.JoinedAt }
func (MemberJoined) feedItem()               {}

type AnnouncementPosted struct {
	ID        string
	Title     string
	ClubName  string
	CreatedAt time.Time
}

func (AnnouncementPosted) Kind() FeedKind          { return FeedKindAnnouncementPosted }
func (a AnnouncementPosted) ItemID() string        { return a.ID }
func (a AnnouncementPosted) OccurredAt() time.Time { return a.CreatedAt }
func (AnnouncementPosted) feedItem()               {}

// Feed is a homogeneous, most-recent-first list of feed items.
type Feed struct {
	Kind  FeedKind
	Items []FeedItem
}

// FeedKindForRole selects the feed branch for a viewer role.
func FeedKindForRole(r Role) FeedKind {
	if r == RoleOrganizer {
		return FeedKindMemberJoined
	}
	return FeedKindAnnouncementPosted
}

// NewMemberFeed builds a membership-events feed.
func NewMemberFeed(items []MemberJoined) Feed {
	out := make([]FeedItem, 0, len(items))
	for _, it := range items {
		out = append(out, it)
	}
	return Feed{Kind: FeedKindMemberJoined, Items: out}
}

// NewAnnouncementFeed builds an announcement-events feed.
func NewAnnouncementFeed(items []AnnouncementPosted) Feed {
	out := make([]FeedItem, 0, len(items))
	for _, it := range items {
		out = append(out, it)
	}
	return Feed{Kind: FeedKindAnnouncementPosted, Items: out}
}

func (f Feed) Len() int { return len(f.Items) }
