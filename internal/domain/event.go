package domain

import (
	"context"
	"time"
)

// EventStatus is the display status of a scheduled event relative to now.
type EventStatus string

const (
	EventUpcoming EventStatus = "upcoming"
	EventToday    EventStatus = "today"
	EventFinished EventStatus = "finished"
)

// Label returns the site's display text for s.
func (s EventStatus) Label() string {
	switch s {
	case EventToday:
		return "Hari Ini"
	case EventFinished:
		return "Selesai"
	default:
		return "Akan Datang"
	}
}

// DeriveStatus compares UTC calendar days of event and now. On the same day the event is
// Finished once its start instant is at or before now, otherwise Today.
func DeriveStatus(event, now time.Time) EventStatus {
	ey, em, ed := event.UTC().Date()
	ny, nm, nd := now.UTC().Date()
	eventDay := time.Date(ey, em, ed, 0, 0, 0, 0, time.UTC)
	nowDay := time.Date(ny, nm, nd, 0, 0, 0, 0, time.UTC)
	switch {
	case eventDay.Before(nowDay):
		return EventFinished
	case eventDay.After(nowDay):
		return EventUpcoming
	case !event.After(now):
		return EventFinished
	default:
		return EventToday
	}
}

// Event sources on the landing page.
const (
	SourceSubmission = "submission"
	SourceCommunity  = "community"
)

// PublicEvent is one entry of the landing page's upcoming events list.
// swagger:model PublicEvent
type PublicEvent struct {
	ID            string      `json:"id"`
	Source        string      `json:"source"`
	TopicTitle    string      `json:"topic_title"`
	TopicCategory string      `json:"topic_category"`
	Description   string      `json:"description"`
	StartsAt      time.Time   `json:"starts_at"`
	TimeLabel     string      `json:"time_label"`
	FullName      string      `json:"full_name"`
	Institution   string      `json:"institution"`
	RoleTitle     string      `json:"role_title"`
	Photo         string      `json:"photo,omitempty"`
	URL           string      `json:"url,omitempty"`
	Status        EventStatus `json:"status"`
	StatusLabel   string      `json:"status_label"`
}

// CalendarEntry is an approved talk placed on the calendar. Talks last one hour.
// swagger:model CalendarEntry
type CalendarEntry struct {
	ID          string    `json:"id"`
	Date        string    `json:"date"`
	StartsAt    time.Time `json:"starts_at"`
	EndsAt      time.Time `json:"ends_at"`
	StartHour   int       `json:"start_hour"`
	EndHour     int       `json:"end_hour"`
	TimeLabel   string    `json:"time_label"`
	Title       string    `json:"title"`
	Topic       string    `json:"topic"`
	Type        string    `json:"type"`
	Description string    `json:"description"`
	FullName    string    `json:"full_name"`
	Institution string    `json:"institution"`
	RoleTitle   string    `json:"role_title"`
	Photo       string    `json:"photo,omitempty"`
}

// HomePage is the landing page payload.
// swagger:model HomePage
type HomePage struct {
	Events        []*PublicEvent `json:"events"`
	DonationTotal float64        `json:"donation_total"`
}

// CommunityEvent is an externally hosted event from the community feed.
type CommunityEvent struct {
	Title             string    `json:"title"`
	StartDate         time.Time `json:"start_date"`
	EventTypeTitle    string    `json:"event_type_title"`
	CroppedPictureURL string    `json:"cropped_picture_url"`
	CroppedBannerURL  string    `json:"cropped_banner_url"`
	URL               string    `json:"url"`
	Description       string    `json:"description"`
	DescriptionShort  string    `json:"description_short"`
}

// CommunityEventFetcher reads the external community events feed.
type CommunityEventFetcher interface {
	Fetch(ctx context.Context) ([]CommunityEvent, error)
}

// DonationFetcher reads the aggregated donation total.
type DonationFetcher interface {
	Total(ctx context.Context) (float64, error)
}

// HomeService assembles the public pages. External failures degrade to empty or zero values.
type HomeService interface {
	GetHomePage(ctx context.Context) (*HomePage, error)
	GetCalendar(ctx context.Context) ([]*CalendarEntry, error)
	GetDonationTotal(ctx context.Context) float64
}
