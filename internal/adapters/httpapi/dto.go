package httpapi

import (
	"time"

	"github.com/oapi-codegen/nullable"
	openapi_types "github.com/oapi-codegen/runtime/types"

	"github.com/Overland-East-Bay/club-portal-api/internal/app/clubs"
	"github.com/Overland-East-Bay/club-portal-api/internal/app/mutation"
	"github.com/Overland-East-Bay/club-portal-api/internal/app/notifications"
	"github.com/Overland-East-Bay/club-portal-api/internal/domain"
	"github.com/Overland-East-Bay/club-portal-api/internal/ports/out/activityrepo"
	"github.com/Overland-East-Bay/club-portal-api/internal/ports/out/noticesink"
)

type clubDTO struct {
	ID          string                    `json:"id"`
	Name        string                    `json:"name"`
	OrganizerID string                    `json:"organizerId"`
	LeadIDs     []string                  `json:"leadIds"`
	MemberCount int                       `json:"memberCount"`
	EventCount  int                       `json:"eventCount"`
	Description string                    `json:"description"`
	Vision      nullable.Nullable[string] `json:"vision"`
}

type statusDTO struct {
	IsMember    bool `json:"isMember"`
	IsFollowing bool `json:"isFollowing"`
}

// viewerDTO carries what the viewer may do on the club page. Actions lists the
// mutations on offer, e.g. ["join", "follow"].
type viewerDTO struct {
	IsLead      bool       `json:"isLead"`
	ShowActions bool       `json:"showActions"`
	Status      *statusDTO `json:"status,omitempty"`
	Actions     []string   `json:"actions"`
}

type clubDetailsResponse struct {
	Club   clubDTO   `json:"club"`
	Viewer viewerDTO `json:"viewer"`
}

type noticeDTO struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Variant     string `json:"variant"`
}

type mutationResponse struct {
	Kind   string                    `json:"kind"`
	ClubID string                    `json:"clubId"`
	Result string                    `json:"result"`
	Code   nullable.Nullable[string] `json:"code,omitempty"`
	Status statusDTO                 `json:"status"`
	Notice *noticeDTO                `json:"notice,omitempty"`
}

type feedItemDTO struct {
	Kind       string                    `json:"kind"`
	ID         string                    `json:"id"`
	ClubName   string                    `json:"clubName"`
	OccurredAt time.Time                 `json:"occurredAt"`
	MemberName nullable.Nullable[string] `json:"memberName,omitempty"`
	Title      nullable.Nullable[string] `json:"title,omitempty"`
}

type notificationsResponse struct {
	State     string        `json:"state"`
	Kind      string        `json:"kind"`
	Heading   string        `json:"heading"`
	Count     int           `json:"count"`
	Badge     bool          `json:"badge"`
	EmptyText string        `json:"emptyText,omitempty"`
	Items     []feedItemDTO `json:"items"`
}

type registrationDTO struct {
	ID           string              `json:"id"`
	EventID      string              `json:"eventId"`
	EventTitle   string              `json:"eventTitle"`
	UserID       string              `json:"userId"`
	Name         string              `json:"name"`
	Email        openapi_types.Email `json:"email"`
	RegisteredAt time.Time           `json:"registeredAt"`
}

type registrationsResponse struct {
	Registrations []registrationDTO `json:"registrations"`
}

func toClubDTO(c domain.Club) clubDTO {
	out := clubDTO{
		ID:          string(c.ID),
		Name:        c.Name,
		OrganizerID: string(c.OrganizerID),
		LeadIDs:     make([]string, 0, len(c.LeadIDs)),
		MemberCount: c.MemberCount,
		EventCount:  c.EventCount,
		Description: c.Description,
		Vision:      nullable.NewNullNullable[string](),
	}
	for _, id := range c.LeadIDs {
		out.LeadIDs = append(out.LeadIDs, string(id))
	}
	if c.Vision != nil {
		out.Vision = nullable.NewNullableWithValue(*c.Vision)
	}
	return out
}

func toStatusDTO(s domain.Status) statusDTO {
	return statusDTO{IsMember: s.IsMember, IsFollowing: s.IsFollowing}
}

func toViewerDTO(d clubs.Details, st *domain.Status) viewerDTO {
	out := viewerDTO{IsLead: d.ViewerLeads, ShowActions: d.ShowActions, Actions: []string{}}
	if st == nil {
		return out
	}
	sd := toStatusDTO(*st)
	out.Status = &sd
	if !d.ShowActions {
		return out
	}
	if st.IsMember {
		out.Actions = append(out.Actions, string(mutation.KindLeave))
	} else {
		out.Actions = append(out.Actions, string(mutation.KindJoin))
	}
	if st.IsFollowing {
		out.Actions = append(out.Actions, string(mutation.KindUnfollow))
	} else {
		out.Actions = append(out.Actions, string(mutation.KindFollow))
	}
	return out
}

func toNoticeDTO(n *noticesink.Notice) *noticeDTO {
	if n == nil {
		return nil
	}
	return &noticeDTO{Title: n.Title, Description: n.Description, Variant: string(n.Variant)}
}

func toMutationResponse(o mutation.Outcome) mutationResponse {
	out := mutationResponse{
		Kind:   string(o.Kind),
		ClubID: string(o.ClubID),
		Result: string(o.Result),
		Status: toStatusDTO(o.Status),
		Notice: toNoticeDTO(o.Notice),
	}
	if o.Code != mutation.CodeNone {
		out.Code = nullable.NewNullableWithValue(string(o.Code))
	}
	return out
}

func toFeedItemDTO(it domain.FeedItem) feedItemDTO {
	out := feedItemDTO{
		Kind:       string(it.Kind()),
		ID:         it.ItemID(),
		OccurredAt: it.OccurredAt(),
	}
	switch v := it.(type) {
	case domain.MemberJoined:
		out.ClubName = v.ClubName
		out.MemberName = nullable.NewNullableWithValue(v.MemberName)
	case domain.AnnouncementPosted:
		out.ClubName = v.ClubName
		out.Title = nullable.NewNullableWithValue(v.Title)
	}
	return out
}

func toNotificationsResponse(s notifications.Snapshot) notificationsResponse {
	out := notificationsResponse{
		State:   string(s.State),
		Kind:    string(s.Feed.Kind),
		Heading: s.Heading,
		Count:   s.Count,
		Badge:   s.Badge,
		Items:   make([]feedItemDTO, 0, s.Feed.Len()),
	}
	if s.State == notifications.StateEmpty {
		out.EmptyText = notifications.EmptyText
	}
	for _, it := range s.Feed.Items {
		out.Items = append(out.Items, toFeedItemDTO(it))
	}
	return out
}

func toRegistrationsResponse(regs []activityrepo.Registration) registrationsResponse {
	out := registrationsResponse{Registrations: make([]registrationDTO, 0, len(regs))}
	for _, r := range regs {
		out.Registrations = append(out.Registrations, registrationDTO{
			ID:           r.ID,
			EventID:      r.EventID,
			EventTitle:   r.EventTitle,
			UserID:       string(r.UserID),
			Name:         r.Name,
			Email:        openapi_types.Email(r.Email),
			RegisteredAt: r.RegisteredAt,
		})
	}
	return out
}
