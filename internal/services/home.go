package services

import (
	"cmp"
	"context"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"golang.org/x/sync/errgroup"
	"techtalks/internal/domain"
)

const (
	talkDuration       = time.Hour
	calendarEntryType  = "webinar"
	defaultSpeakerRole = "Speaker"
	defaultTopic       = "General"
	communityOrganizer = "GDG Indonesia"
	communityRole      = "Organizer"
	communityCategory  = "Komunitas"
)

type homeService struct {
	submissions     domain.SubmissionService
	community       domain.CommunityEventFetcher
	donations       domain.DonationFetcher
	loc             *time.Location
	upstreamTimeout time.Duration
	logger          *slog.Logger
	now             func() time.Time
}

// NewHomeService builds the public page service. loc is the wall-clock zone of requested slots.
// community and donations may be nil, which yields an empty feed and a zero total.
func NewHomeService(
	submissions domain.SubmissionService,
	community domain.CommunityEventFetcher,
	donations domain.DonationFetcher,
	loc *time.Location,
	upstreamTimeout time.Duration,
	logger *slog.Logger,
) domain.HomeService {
	if loc == nil {
		loc = time.UTC
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &homeService{
		submissions:     submissions,
		community:       community,
		donations:       donations,
		loc:             loc,
		upstreamTimeout: upstreamTimeout,
		logger:          logger,
		now:             time.Now,
	}
}

// GetHomePage loads approved talks, the community feed and the donation total concurrently.
// Each source degrades on its own; the page itself never fails.
func (s *homeService) GetHomePage(ctx context.Context) (*domain.HomePage, error) {
	var (
		approved  []*domain.Submission
		community []domain.CommunityEvent
		total     float64
		g         errgroup.Group
	)

	g.Go(func() error {
		subs, err := s.submissions.GetApprovedSubmissions(ctx)
		if err != nil {
			s.logger.WarnContext(ctx, "approved submissions unavailable", "err", err)
			return nil
		}
		approved = subs
		return nil
	})
	g.Go(func() error {
		community = s.fetchCommunity(ctx)
		return nil
	})
	g.Go(func() error {
		total = s.GetDonationTotal(ctx)
		return nil
	})
	_ = g.Wait()

	now := s.now()
	events := make([]*domain.PublicEvent, 0, len(approved)+len(community))
	for _, sub := range approved {
		ev, err := s.submissionEvent(sub, now)
		if err != nil {
			s.logger.WarnContext(ctx, "skipping submission with bad schedule", "submission_id", sub.ID, "err", err)
			continue
		}
		events = append(events, ev)
	}
	for _, ce := range community {
		events = append(events, s.communityEvent(ce, now))
	}
	slices.SortStableFunc(events, func(a, b *domain.PublicEvent) int {
		return a.StartsAt.Compare(b.StartsAt)
	})

	return &domain.HomePage{Events: events, DonationTotal: total}, nil
}

// GetCalendar returns approved talks as one-hour calendar entries in start order.
func (s *homeService) GetCalendar(ctx context.Context) ([]*domain.CalendarEntry, error) {
	subs, err := s.submissions.GetApprovedSubmissions(ctx)
	if err != nil {
		return nil, err
	}
	entries := make([]*domain.CalendarEntry, 0, len(subs))
	for _, sub := range subs {
		start, err := sub.StartsAt(s.loc)
		if err != nil {
			s.logger.WarnContext(ctx, "skipping submission with bad schedule", "submission_id", sub.ID, "err", err)
			continue
		}
		local := start.In(s.loc)
		entries = append(entries, &domain.CalendarEntry{
			ID:          sub.ID,
			Date:        sub.EventDate,
			StartsAt:    start,
			EndsAt:      start.Add(talkDuration),
			StartHour:   local.Hour(),
			EndHour:     local.Add(talkDuration).Hour(),
			TimeLabel:   s.rangeLabel(start),
			Title:       sub.TopicTitle,
			Topic:       cmp.Or(sub.TopicCategory, defaultTopic),
			Type:        calendarEntryType,
			Description: sub.Description,
			FullName:    sub.FullName,
			Institution: sub.Institution,
			RoleTitle:   cmp.Or(sub.RoleTitle, defaultSpeakerRole),
			Photo:       sub.Photo,
		})
	}
	slices.SortStableFunc(entries, func(a, b *domain.CalendarEntry) int {
		return a.StartsAt.Compare(b.StartsAt)
	})
	return entries, nil
}

// GetDonationTotal returns the aggregated donation total, or 0 when the aggregator is unavailable.
func (s *homeService) GetDonationTotal(ctx context.Context) float64 {
	if s.donations == nil {
		return 0
	}
	ctx, cancel := s.upstreamContext(ctx)
	defer cancel()
	total, err := s.donations.Total(ctx)
	if err != nil {
		s.logger.WarnContext(ctx, "donation total unavailable", "err", err)
		return 0
	}
	return total
}

func (s *homeService) fetchCommunity(ctx context.Context) []domain.CommunityEvent {
	if s.community == nil {
		return nil
	}
	ctx, cancel := s.upstreamContext(ctx)
	defer cancel()
	events, err := s.community.Fetch(ctx)
	if err != nil {
		s.logger.WarnContext(ctx, "community events unavailable", "err", err)
		return nil
	}
	return events
}

func (s *homeService) upstreamContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.upstreamTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.upstreamTimeout)
}

func (s *homeService) submissionEvent(sub *domain.Submission, now time.Time) (*domain.PublicEvent, error) {
	start, err := sub.StartsAt(s.loc)
	if err != nil {
		return nil, err
	}
	status := domain.DeriveStatus(start, now)
	return &domain.PublicEvent{
		ID:            sub.ID,
		Source:        domain.SourceSubmission,
		TopicTitle:    sub.TopicTitle,
		TopicCategory: sub.TopicCategory,
		Description:   sub.Description,
		StartsAt:      start,
		TimeLabel:     s.rangeLabel(start),
		FullName:      sub.FullName,
		Institution:   sub.Institution,
		RoleTitle:     cmp.Or(sub.RoleTitle, defaultSpeakerRole),
		Photo:         sub.Photo,
		Status:        status,
		StatusLabel:   status.Label(),
	}, nil
}

func (s *homeService) communityEvent(ce domain.CommunityEvent, now time.Time) *domain.PublicEvent {
	start := ce.StartDate.UTC()
	status := domain.DeriveStatus(start, now)
	local := start.In(s.loc)
	return &domain.PublicEvent{
		ID:            ce.URL,
		Source:        domain.SourceCommunity,
		TopicTitle:    ce.Title,
		TopicCategory: cmp.Or(ce.EventTypeTitle, communityCategory),
		Description:   cmp.Or(ce.DescriptionShort, ce.Description),
		StartsAt:      start,
		TimeLabel:     fmt.Sprintf("%s %s", local.Format(domain.TimeLayout), local.Format("MST")),
		FullName:      communityOrganizer,
		Institution:   communityOrganizer,
		RoleTitle:     communityRole,
		Photo:         cmp.Or(ce.CroppedPictureURL, ce.CroppedBannerURL),
		URL:           ce.URL,
		Status:        status,
		StatusLabel:   status.Label(),
	}
}

// rangeLabel formats a talk slot as "10:00 - 11:00 WIB" in the event zone.
func (s *homeService) rangeLabel(start time.Time) string {
	local := start.In(s.loc)
	end := local.Add(talkDuration)
	return fmt.Sprintf("%s - %s %s", local.Format(domain.TimeLayout), end.Format(domain.TimeLayout), local.Format("MST"))
}
