package tui

import (
	"context"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"

	"github.com/rshade/shepherd/internal/church"
	"github.com/rshade/shepherd/internal/format"
	"github.com/rshade/shepherd/internal/lazy"
	"github.com/rshade/shepherd/internal/section"
	"github.com/rshade/shepherd/internal/session"
	"github.com/rshade/shepherd/internal/skeleton"
)

const (
	overviewEvents = 4
	recentGifts    = 10
	dateLayout     = "Mon Jan 2"
)

func overviewPage(b *builder) []block {
	s := b.opts.Session
	blocks := []block{
		add(b, section.Config[*session.Session]{
			ID:       "welcome",
			Title:    "Welcome",
			Strategy: section.StrategyImmediate,
			Load:     func(context.Context) (*session.Session, error) { return s, nil },
			Render:   renderWelcome,
			Skeleton: b.skeleton(skeleton.VariantCard),
		}),
		add(b, section.Config[struct{}]{
			ID:       "this-week",
			Title:    "This Week",
			Strategy: section.StrategyProgressive,
			Steps: []section.Step{
				{Title: "Worship", Render: staticText("Sunday services at 9:00 and 11:00 in the sanctuary.")},
				section.NewStep("Fellowship", staticText("Wednesday supper at 6:00, all ministries welcome.")),
				section.NewStep("Serve", staticText("Hospitality and children's ministry need volunteers this month.")),
			},
			Skeleton: b.skeleton(skeleton.VariantList),
		}),
	}

	if s.Can(session.ViewEvents) {
		blocks = append(blocks, add(b, section.Config[[]church.Event]{
			ID:       "events",
			Title:    "Upcoming Events",
			Strategy: section.StrategyLazy,
			Load:     b.opts.Source.Events,
			Render: func(events []church.Event, width int) string {
				return renderEvents(events[:min(len(events), overviewEvents)], width)
			},
			Skeleton: b.skeleton(skeleton.VariantList),
		}))
	}
	if s.Can(session.ViewFinance) {
		blocks = append(blocks, add(b, section.Config[[]church.FundTotal]{
			ID:       "giving",
			Title:    "Giving by Fund",
			Strategy: section.StrategyLazy,
			Load:     b.opts.Source.FundTotals,
			Render: func(totals []church.FundTotal, width int) string {
				return renderFundTotals(totals, s.Currency, width)
			},
			Skeleton: skeleton.Options{Variant: skeleton.VariantTable, Columns: 3, Rows: 4, Animate: b.opts.Animate},
		}))
	}
	if s.Can(session.ViewSundaySchool) {
		blocks = append(blocks, add(b, section.Config[[]church.Class]{
			ID:       "classes",
			Title:    "Sunday School",
			Strategy: section.StrategyOnDemand,
			Load:     b.opts.Source.Classes,
			Render:   renderClasses,
			Skeleton: b.skeleton(skeleton.VariantList),
		}))
	}
	if s.Can(session.ManageCommunications) {
		blocks = append(blocks, add(b, section.Config[[]church.Announcement]{
			ID:       "announcements",
			Title:    "Announcements",
			Strategy: section.StrategyLazy,
			Load:     b.opts.Source.Announcements,
			Render:   renderAnnouncements,
			Skeleton: b.skeleton(skeleton.VariantCard),
		}))
	}
	return blocks
}

func membersPage(b *builder) []block {
	return []block{newMembersBlock(b.ctx, b, b.target("directory"))}
}

func memberDetailPage(b *builder, id int) []block {
	blocks := []block{
		add(b, section.Config[church.Member]{
			ID:       "profile",
			Title:    "Profile",
			Strategy: section.StrategyImmediate,
			Load:     func(ctx context.Context) (church.Member, error) { return b.opts.Source.Member(ctx, id) },
			Render:   renderProfile,
			Skeleton: b.skeleton(skeleton.VariantForm),
		}),
	}
	if b.opts.Session.Can(session.ViewFinance) {
		currency := b.opts.Session.Currency
		blocks = append(blocks, add(b, section.Config[[]church.Gift]{
			ID:       "member-giving",
			Title:    "Giving History",
			Strategy: section.StrategyLazy,
			Load: func(ctx context.Context) ([]church.Gift, error) {
				gifts, err := b.opts.Source.Gifts(ctx)
				if err != nil {
					return nil, err
				}
				return slices.DeleteFunc(gifts, func(g church.Gift) bool { return g.MemberID != id }), nil
			},
			Render: func(gifts []church.Gift, width int) string {
				return renderGifts(gifts, currency, width)
			},
			Skeleton: skeleton.Options{Variant: skeleton.VariantTable, Columns: 3, Rows: 3, Animate: b.opts.Animate},
		}))
	}
	src := b.opts.PhotoURL(fmt.Sprintf("/api/photos/%d.png", id))
	img := lazy.NewImage(b.ctx, b.svc, src, b.opts.Images, b.opts.observerOptions(), b.lazyOptions()...)
	return append(blocks,
		&photoBlock{img: img, target: b.target("photo")},
		newServingBlock(b, id, b.target("serving")),
	)
}

func givingPage(b *builder) []block {
	currency := b.opts.Session.Currency
	return []block{
		add(b, section.Config[[]church.FundTotal]{
			ID:       "funds",
			Title:    "Funds",
			Strategy: section.StrategyImmediate,
			Load:     b.opts.Source.FundTotals,
			Render: func(totals []church.FundTotal, width int) string {
				return renderFundTotals(totals, currency, width)
			},
			Skeleton: skeleton.Options{Variant: skeleton.VariantTable, Columns: 3, Rows: 4, Animate: b.opts.Animate},
		}),
		add(b, section.Config[[]church.Gift]{
			ID:       "recent",
			Title:    "Recent Gifts",
			Strategy: section.StrategyLazy,
			Load:     b.opts.Source.Gifts,
			Render: func(gifts []church.Gift, width int) string {
				return renderGifts(gifts[:min(len(gifts), recentGifts)], currency, width)
			},
			Skeleton: b.skeleton(skeleton.VariantTable),
		}),
	}
}

func classesPage(b *builder) []block {
	return []block{add(b, section.Config[[]church.Class]{
		ID:       "classes",
		Title:    "Classes",
		Strategy: section.StrategyLazy,
		Load:     b.opts.Source.Classes,
		Render:   renderClasses,
		Skeleton: b.skeleton(skeleton.VariantTable),
	})}
}

func classDetailPage(b *builder, id int) []block {
	return []block{add(b, section.Config[church.Class]{
		ID:       "class",
		Title:    "Class",
		Strategy: section.StrategyImmediate,
		Load: func(ctx context.Context) (church.Class, error) {
			return findByID(ctx, b.opts.Source.Classes, id, func(c church.Class) int { return c.ID })
		},
		Render: func(c church.Class, _ int) string {
			return fields(
				"Name", c.Name,
				"Teacher", c.Teacher,
				"Room", c.Room,
				"Enrolled", strconv.Itoa(c.Enrolled),
			)
		},
		Skeleton: b.skeleton(skeleton.VariantForm),
	})}
}

func eventsPage(b *builder) []block {
	return []block{add(b, section.Config[[]church.Event]{
		ID:       "events",
		Title:    "Events",
		Strategy: section.StrategyLazy,
		Load:     b.opts.Source.Events,
		Render:   renderEvents,
		Skeleton: b.skeleton(skeleton.VariantList),
	})}
}

func eventDetailPage(b *builder, id int) []block {
	return []block{add(b, section.Config[church.Event]{
		ID:       "event",
		Title:    "Event",
		Strategy: section.StrategyImmediate,
		Load: func(ctx context.Context) (church.Event, error) {
			return findByID(ctx, b.opts.Source.Events, id, func(e church.Event) int { return e.ID })
		},
		Render: func(e church.Event, _ int) string {
			return fields("Title", e.Title, "Date", e.Date.Format(dateLayout), "Location", e.Location)
		},
		Skeleton: b.skeleton(skeleton.VariantForm),
	})}
}

func announcementsPage(b *builder) []block {
	return []block{add(b, section.Config[[]church.Announcement]{
		ID:       "announcements",
		Title:    "Announcements",
		Strategy: section.StrategyLazy,
		Load:     b.opts.Source.Announcements,
		Render:   renderAnnouncements,
		Skeleton: b.skeleton(skeleton.VariantCard),
	})}
}

func announcementDetailPage(b *builder, id int) []block {
	return []block{add(b, section.Config[church.Announcement]{
		ID:       "announcement",
		Title:    "Announcement",
		Strategy: section.StrategyImmediate,
		Load: func(ctx context.Context) (church.Announcement, error) {
			return findByID(ctx, b.opts.Source.Announcements, id, func(a church.Announcement) int { return a.ID })
		},
		Render: func(a church.Announcement, width int) string {
			body := lipgloss.NewStyle().Width(max(width, 1)).Render(a.Body)
			return ValueStyle.Render(a.Subject) + "\n" + SubtleStyle.Render(a.Posted.Format(dateLayout)) + "\n" + body
		},
		Skeleton: b.skeleton(skeleton.VariantCard),
	})}
}

func findByID[T any](ctx context.Context, list func(context.Context) ([]T, error), id int, key func(T) int) (T, error) {
	var zero T
	items, err := list(ctx)
	if err != nil {
		return zero, err
	}
	for _, it := range items {
		if key(it) == id {
			return it, nil
		}
	}
	return zero, fmt.Errorf("%w: id %d", church.ErrNotFound, id)
}

func staticText(s string) func(int) string {
	return func(width int) string {
		return lipgloss.NewStyle().Width(max(width, 1)).Render(s)
	}
}

// fields renders label/value pairs, one per line.
func fields(pairs ...string) string {
	var sb strings.Builder
	for i := 0; i+1 < len(pairs); i += 2 {
		if i > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString(LabelStyle.Render(fmt.Sprintf("%-10s", pairs[i])))
		sb.WriteString(ValueStyle.Render(pairs[i+1]))
	}
	return sb.String()
}

func renderWelcome(s *session.Session, _ int) string {
	caps := make([]string, 0, len(session.AllCapabilities()))
	for _, c := range session.AllCapabilities() {
		if s.Can(c) {
			caps = append(caps, c.String())
		}
	}
	return fields(
		"User", s.User,
		"Roles", strings.Join(s.Roles, ", "),
		"Access", strings.Join(caps, ", "),
	)
}

func renderProfile(m church.Member, _ int) string {
	return fields(
		"Name", m.FullName(),
		"Email", m.Email,
		"Ministry", m.Ministry,
	)
}

func renderEvents(events []church.Event, _ int) string {
	lines := make([]string, 0, len(events))
	for _, e := range events {
		lines = append(lines, fmt.Sprintf("%s  %s  %s",
			LabelStyle.Render(e.Date.Format(dateLayout)), ValueStyle.Render(e.Title), SubtleStyle.Render(e.Location)))
	}
	if len(lines) == 0 {
		return SubtleStyle.Render("No upcoming events.")
	}
	return strings.Join(lines, "\n")
}

func renderAnnouncements(anns []church.Announcement, _ int) string {
	lines := make([]string, 0, len(anns))
	for _, a := range anns {
		lines = append(lines, fmt.Sprintf("• %s %s", ValueStyle.Render(a.Subject), SubtleStyle.Render(a.Posted.Format(dateLayout))))
	}
	return strings.Join(lines, "\n")
}

func renderClasses(classes []church.Class, _ int) string {
	rows := make([]table.Row, 0, len(classes))
	for _, c := range classes {
		rows = append(rows, table.Row{c.Name, c.Teacher, c.Room, strconv.Itoa(c.Enrolled)})
	}
	return renderTable([]table.Column{
		{Title: "Class", Width: 22},   //nolint:mnd // Column width.
		{Title: "Teacher", Width: 18}, //nolint:mnd // Column width.
		{Title: "Room", Width: 10},    //nolint:mnd // Column width.
		{Title: "Enrolled", Width: 8}, //nolint:mnd // Column width.
	}, rows)
}

func renderFundTotals(totals []church.FundTotal, currency string, _ int) string {
	rows := make([]table.Row, 0, len(totals))
	for _, t := range totals {
		rows = append(rows, table.Row{t.Fund, format.Currency(t.Total, currency), strconv.Itoa(t.Count)})
	}
	return renderTable([]table.Column{
		{Title: "Fund", Width: 14},  //nolint:mnd // Column width.
		{Title: "Total", Width: 14}, //nolint:mnd // Column width.
		{Title: "Gifts", Width: 6},  //nolint:mnd // Column width.
	}, rows)
}

func renderGifts(gifts []church.Gift, currency string, _ int) string {
	if len(gifts) == 0 {
		return SubtleStyle.Render("No gifts recorded.")
	}
	rows := make([]table.Row, 0, len(gifts))
	for _, g := range gifts {
		rows = append(rows, table.Row{g.Date.Format(dateLayout), g.Fund, format.Currency(g.Amount, currency), g.Description})
	}
	return renderTable([]table.Column{
		{Title: "Date", Width: 11},   //nolint:mnd // Column width.
		{Title: "Fund", Width: 12},   //nolint:mnd // Column width.
		{Title: "Amount", Width: 12}, //nolint:mnd // Column width.
		{Title: "Note", Width: 24},   //nolint:mnd // Column width.
	}, rows)
}

// renderTable draws a static, unfocused table sized to its rows.
func renderTable(cols []table.Column, rows []table.Row) string {
	styles := table.DefaultStyles()
	styles.Header = TableHeaderStyle.
		BorderStyle(lipgloss.NormalBorder()).
		BorderBottom(true).
		BorderForeground(ColorBorder)
	// Unfocused tables still mark the cursor row.
	styles.Selected = styles.Cell
	t := table.New(
		table.WithColumns(cols),
		table.WithRows(rows),
		table.WithFocused(false),
		table.WithStyles(styles),
		table.WithHeight(len(rows)+2), //nolint:mnd // Header line plus its border.
	)
	return t.View()
}
