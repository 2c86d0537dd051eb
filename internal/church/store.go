package church

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"slices"
	"sort"
	"strings"
	"sync/atomic"
	"time"
)

// Store errors.
var (
	ErrNotFound    = errors.New("record not found")
	ErrUnavailable = errors.New("data store temporarily unavailable")
)

// Collection names served by Store.Record.
const (
	CollectionMembers       = "members"
	CollectionEvents        = "events"
	CollectionGiving        = "giving"
	CollectionClasses       = "classes"
	CollectionAnnouncements = "announcements"
)

// DefaultPageSize is the member directory page size.
const DefaultPageSize = 12

const seed = 1887

//nolint:gochecknoglobals // Seed vocabulary.
var (
	firstNames = []string{
		"Jane", "John", "Mary", "David", "Ruth", "Samuel", "Grace", "Elijah", "Hannah", "Isaac",
		"Lydia", "Caleb", "Naomi", "Micah", "Esther", "Jonah", "Priscilla", "Silas", "Martha", "Aaron",
	}
	lastNames = []string{
		"Doe", "Smith", "Johnson", "Okafor", "Nguyen", "Garcia", "Brown", "Kim", "Mensah", "Rossi",
		"Patel", "Walker", "Lopez", "Osei", "Clark", "Haddad",
	}
	ministries = []string{"Worship", "Hospitality", "Youth", "Outreach", "Children", "Prayer", "Media"}
	funds      = []string{"General", "Missions", "Building", "Benevolence"}
)

// Store is the in-memory dataset. Every read waits Latency to simulate a
// network round trip and honors context cancellation.
type Store struct {
	Latency time.Duration
	// FailEvery makes every n-th read fail with ErrUnavailable. Zero disables it.
	FailEvery int

	members       []Member
	events        []Event
	gifts         []Gift
	classes       []Class
	announcements []Announcement

	reads atomic.Int64
}

// NewStore returns a deterministically seeded dataset.
func NewStore(latency time.Duration) *Store {
	rng := rand.New(rand.NewPCG(seed, seed)) //nolint:gosec // Mock data, not security sensitive.
	base := time.Date(2026, time.January, 4, 10, 0, 0, 0, time.UTC)
	s := &Store{Latency: latency}

	s.members = append(s.members, Member{
		ID: 42, FirstName: "Jane", LastName: "Doe", Email: "jane.doe@example.org",
		Ministry: "Worship", PhotoURL: "/api/photos/42.png",
	})
	for id := 1; len(s.members) < 48; id++ {
		if id == 42 {
			continue
		}
		first := firstNames[rng.IntN(len(firstNames))]
		last := lastNames[rng.IntN(len(lastNames))]
		s.members = append(s.members, Member{
			ID:        id,
			FirstName: first,
			LastName:  last,
			Email:     fmt.Sprintf("%s.%s%d@example.org", strings.ToLower(first), strings.ToLower(last), id),
			Ministry:  ministries[rng.IntN(len(ministries))],
			PhotoURL:  fmt.Sprintf("/api/photos/%d.png", id),
		})
	}
	sort.Slice(s.members, func(i, j int) bool { return s.members[i].ID < s.members[j].ID })

	eventTitles := []string{
		"Easter Service", "Youth Retreat", "Community Picnic", "Choir Concert",
		"Volunteer Training", "Harvest Festival", "Prayer Breakfast", "Christmas Eve Service",
	}
	locations := []string{"Sanctuary", "Fellowship Hall", "Riverside Park", "Chapel"}
	for i, title := range eventTitles {
		s.events = append(s.events, Event{
			ID:       i + 1,
			Title:    title,
			Date:     base.AddDate(0, 0, 7*(i+1)*3), //nolint:mnd // Spread events across the year.
			Location: locations[i%len(locations)],
		})
	}

	for i := range 60 {
		m := s.members[rng.IntN(len(s.members))]
		fund := funds[rng.IntN(len(funds))]
		amount := int64(rng.IntN(500)+10) * 100 //nolint:mnd // Whole dollars in cents.
		s.gifts = append(s.gifts, Gift{
			ID:          i + 1,
			MemberID:    m.ID,
			Fund:        fund,
			Amount:      amount,
			Date:        base.AddDate(0, 0, i*3), //nolint:mnd // Every few days.
			Description: fmt.Sprintf("%s gift from %s", fund, m.FullName()),
		})
	}

	classNames := []string{"Preschool Bible Stories", "Elementary Explorers", "Middle School Faith",
		"High School Foundations", "Young Adults", "Adult Bible Study"}
	for i, name := range classNames {
		teacher := s.members[(i*7)%len(s.members)] //nolint:mnd // Spread teachers through the directory.
		s.classes = append(s.classes, Class{
			ID:       i + 1,
			Name:     name,
			Teacher:  teacher.FullName(),
			Room:     fmt.Sprintf("Room %d", 101+i),
			Enrolled: 6 + rng.IntN(20), //nolint:mnd // Plausible class sizes.
		})
	}

	subjects := []string{"Building Fund Update", "Summer Camp Registration", "New Members Lunch",
		"Food Pantry Drive", "Office Hours Change"}
	for i, subject := range subjects {
		s.announcements = append(s.announcements, Announcement{
			ID:      i + 1,
			Subject: subject,
			Body:    "Details are available at the welcome desk and in this week's bulletin.",
			Posted:  base.AddDate(0, 0, i*5), //nolint:mnd // Weekly-ish cadence.
		})
	}
	return s
}

// wait simulates latency and injected failures.
func (s *Store) wait(ctx context.Context) error {
	n := s.reads.Add(1)
	if s.Latency > 0 {
		t := time.NewTimer(s.Latency)
		defer t.Stop()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C:
		}
	} else if err := ctx.Err(); err != nil {
		return err
	}
	if s.FailEvery > 0 && n%int64(s.FailEvery) == 0 {
		return ErrUnavailable
	}
	return nil
}

// Members returns one page of the directory, counting from 1.
func (s *Store) Members(ctx context.Context, page, size int) (MemberPage, error) {
	if err := s.wait(ctx); err != nil {
		return MemberPage{}, err
	}
	if size <= 0 {
		size = DefaultPageSize
	}
	page = max(page, 1)
	start := min((page-1)*size, len(s.members))
	end := min(start+size, len(s.members))
	return MemberPage{
		Members: slices.Clone(s.members[start:end]),
		Page:    page,
		HasMore: end < len(s.members),
		Total:   len(s.members),
	}, nil
}

// Member returns the member with id.
func (s *Store) Member(ctx context.Context, id int) (Member, error) {
	if err := s.wait(ctx); err != nil {
		return Member{}, err
	}
	return find(s.members, id, func(m Member) int { return m.ID })
}

// Events returns upcoming events by date.
func (s *Store) Events(ctx context.Context) ([]Event, error) {
	if err := s.wait(ctx); err != nil {
		return nil, err
	}
	return slices.Clone(s.events), nil
}

// Event returns the event with id.
func (s *Store) Event(ctx context.Context, id int) (Event, error) {
	if err := s.wait(ctx); err != nil {
		return Event{}, err
	}
	return find(s.events, id, func(e Event) int { return e.ID })
}

// Gifts returns every recorded gift, most recent first.
func (s *Store) Gifts(ctx context.Context) ([]Gift, error) {
	if err := s.wait(ctx); err != nil {
		return nil, err
	}
	out := slices.Clone(s.gifts)
	slices.Reverse(out)
	return out, nil
}

// Gift returns the gift with id.
func (s *Store) Gift(ctx context.Context, id int) (Gift, error) {
	if err := s.wait(ctx); err != nil {
		return Gift{}, err
	}
	return find(s.gifts, id, func(g Gift) int { return g.ID })
}

// FundTotals sums gifts per fund, largest first.
func (s *Store) FundTotals(ctx context.Context) ([]FundTotal, error) {
	if err := s.wait(ctx); err != nil {
		return nil, err
	}
	byFund := map[string]*FundTotal{}
	for _, g := range s.gifts {
		ft, ok := byFund[g.Fund]
		if !ok {
			ft = &FundTotal{Fund: g.Fund}
			byFund[g.Fund] = ft
		}
		ft.Total += g.Amount
		ft.Count++
	}
	out := make([]FundTotal, 0, len(byFund))
	for _, ft := range byFund {
		out = append(out, *ft)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Total != out[j].Total {
			return out[i].Total > out[j].Total
		}
		return out[i].Fund < out[j].Fund
	})
	return out, nil
}

// Classes returns the Sunday school classes.
func (s *Store) Classes(ctx context.Context) ([]Class, error) {
	if err := s.wait(ctx); err != nil {
		return nil, err
	}
	return slices.Clone(s.classes), nil
}

// Class returns the class with id.
func (s *Store) Class(ctx context.Context, id int) (Class, error) {
	if err := s.wait(ctx); err != nil {
		return Class{}, err
	}
	return find(s.classes, id, func(c Class) int { return c.ID })
}

// Announcements returns all announcements, newest first.
func (s *Store) Announcements(ctx context.Context) ([]Announcement, error) {
	if err := s.wait(ctx); err != nil {
		return nil, err
	}
	out := slices.Clone(s.announcements)
	slices.Reverse(out)
	return out, nil
}

// Announcement returns the announcement with id.
func (s *Store) Announcement(ctx context.Context, id int) (Announcement, error) {
	if err := s.wait(ctx); err != nil {
		return Announcement{}, err
	}
	return find(s.announcements, id, func(a Announcement) int { return a.ID })
}

// Record returns one record from collection, for the lookup API.
func (s *Store) Record(ctx context.Context, collection string, id int) (any, error) {
	switch collection {
	case CollectionMembers:
		return s.Member(ctx, id)
	case CollectionEvents:
		return s.Event(ctx, id)
	case CollectionGiving:
		return s.Gift(ctx, id)
	case CollectionClasses:
		return s.Class(ctx, id)
	case CollectionAnnouncements:
		return s.Announcement(ctx, id)
	default:
		return nil, fmt.Errorf("%w: unknown collection %q", ErrNotFound, collection)
	}
}

func find[T any](items []T, id int, key func(T) int) (T, error) {
	for _, it := range items {
		if key(it) == id {
			return it, nil
		}
	}
	var zero T
	return zero, fmt.Errorf("%w: id %d", ErrNotFound, id)
}
