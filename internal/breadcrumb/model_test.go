package breadcrumb_test

import (
	"context"
	"testing"

	"github.com/charmbracelet/x/ansi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rshade/shepherd/internal/breadcrumb"
)

func TestModel_SetPathResolves(t *testing.T) {
	f := &mockFetcher{records: map[string]map[string]any{
		"/api/members/42": {"firstName": "Jane", "lastName": "Doe"},
	}}
	m := breadcrumb.NewModel(context.Background(), newResolver(f))

	m, cmd := m.SetPath("/dashboard/members/42")
	require.NotNil(t, cmd)
	assert.True(t, m.Pending())
	assert.Contains(t, ansi.Strip(m.View()), "Item 42…")

	m, _ = m.Update(cmd())
	assert.False(t, m.Pending())
	assert.Equal(t, "Dashboard › Members › Jane Doe", ansi.Strip(m.View()))

	m2, cmd := m.SetPath("/dashboard/members/42")
	assert.Nil(t, cmd, "unchanged path is not re-resolved")
	assert.Equal(t, m.Trail(), m2.Trail())
}

func TestModel_StaleResultDiscarded(t *testing.T) {
	f := &mockFetcher{records: map[string]map[string]any{
		"/api/members/1": {"name": "Old"},
		"/api/members/2": {"name": "New"},
	}}
	m := breadcrumb.NewModel(context.Background(), newResolver(f))

	m, first := m.SetPath("/dashboard/members/1")
	m, second := m.SetPath("/dashboard/members/2")
	require.NotNil(t, first)
	require.NotNil(t, second)

	stale := first()
	m, _ = m.Update(second())
	m, _ = m.Update(stale)

	assert.Equal(t, []string{"Members", "New"}, m.Trail().Labels())
	assert.Equal(t, "/dashboard/members/2", m.Path())
}

func TestModel_StaticPathNeedsNoCommand(t *testing.T) {
	m := breadcrumb.NewModel(context.Background(), newResolver(nil))
	m, cmd := m.SetPath("/dashboard/giving")
	assert.Nil(t, cmd)
	assert.Equal(t, "Dashboard › Giving", m.Trail().Text())
}

func TestModel_SetItemsBypassesResolver(t *testing.T) {
	f := &mockFetcher{}
	m := breadcrumb.NewModel(context.Background(), newResolver(f))
	m, cmd := m.SetPath("/dashboard/members/3")

	items := []breadcrumb.Item{
		{Label: "Reports", Href: "/reports"},
		{Label: "Quarterly", IsCurrentPage: true},
	}
	m = m.SetItems(items)
	m, _ = m.Update(cmd())

	assert.Equal(t, items, m.Trail().Items)
	assert.Nil(t, m.Trail().Home)
	assert.Equal(t, "Reports › Quarterly", ansi.Strip(m.View()))

	// Setting a path afterwards resolves again, even the same one.
	m, cmd = m.SetPath("/dashboard/members/3")
	require.NotNil(t, cmd)
	m, _ = m.Update(cmd())
	assert.Equal(t, []string{"Members", "Item 3"}, m.Trail().Labels())
}
