// Package session holds the signed-in user's application context: who they
// are, which capabilities they hold and which currency amounts are shown in.
// A Session is loaded explicitly at startup and passed down to the views that
// need it; Logout removes the persisted copy.
package session

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"
)

// Capability is a permission the dashboard checks before showing a page.
type Capability int

// Known capabilities.
const (
	ViewMembers Capability = iota
	ViewFinance
	ViewSundaySchool
	ViewEvents
	ManageCommunications

	capabilityCount
)

// ErrUnknownCapability is returned when a capability name cannot be parsed.
var ErrUnknownCapability = errors.New("unknown capability")

// ErrNoSession is returned by Load when no session has been saved.
var ErrNoSession = errors.New("no saved session")

//nolint:gochecknoglobals // Name table indexed by Capability.
var capabilityNames = [capabilityCount]string{
	ViewMembers:          "members:view",
	ViewFinance:          "finance:view",
	ViewSundaySchool:     "sunday-school:view",
	ViewEvents:           "events:view",
	ManageCommunications: "communications:manage",
}

// String returns the capability's wire name.
func (c Capability) String() string {
	if c < 0 || c >= capabilityCount {
		return fmt.Sprintf("Capability(%d)", int(c))
	}
	return capabilityNames[c]
}

// ParseCapability converts a wire name into a Capability.
func ParseCapability(s string) (Capability, error) {
	for i, name := range capabilityNames {
		if strings.EqualFold(strings.TrimSpace(s), name) {
			return Capability(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownCapability, s)
}

// AllCapabilities lists every capability in declaration order.
func AllCapabilities() []Capability {
	out := make([]Capability, capabilityCount)
	for i := range out {
		out[i] = Capability(i)
	}
	return out
}

// CapabilitySet is a set of capabilities stored as a bit mask.
type CapabilitySet uint32

// NewCapabilitySet returns a set holding caps.
func NewCapabilitySet(caps ...Capability) CapabilitySet {
	var s CapabilitySet
	for _, c := range caps {
		s = s.With(c)
	}
	return s
}

// Has reports membership.
func (s CapabilitySet) Has(c Capability) bool {
	return c >= 0 && c < capabilityCount && s&(1<<c) != 0
}

// With returns s plus c.
func (s CapabilitySet) With(c Capability) CapabilitySet {
	if c < 0 || c >= capabilityCount {
		return s
	}
	return s | 1<<c
}

// List returns the members in declaration order.
func (s CapabilitySet) List() []Capability {
	var out []Capability
	for _, c := range AllCapabilities() {
		if s.Has(c) {
			out = append(out, c)
		}
	}
	return out
}

// MarshalYAML writes the set as a list of names.
func (s CapabilitySet) MarshalYAML() (interface{}, error) {
	names := make([]string, 0, len(s.List()))
	for _, c := range s.List() {
		names = append(names, c.String())
	}
	return names, nil
}

// UnmarshalYAML reads a list of names.
func (s *CapabilitySet) UnmarshalYAML(node *yaml.Node) error {
	var names []string
	if err := node.Decode(&names); err != nil {
		return err
	}
	var set CapabilitySet
	for _, n := range names {
		c, err := ParseCapability(n)
		if err != nil {
			return err
		}
		set = set.With(c)
	}
	*s = set
	return nil
}

// Role names in the default role table.
const (
	RoleAdmin     = "admin"
	RolePastor    = "pastor"
	RoleTreasurer = "treasurer"
	RoleTeacher   = "teacher"
	RoleVolunteer = "volunteer"
)

// RoleCapabilities returns the capabilities granted by a role.
func RoleCapabilities(role string) CapabilitySet {
	switch role {
	case RoleAdmin:
		return NewCapabilitySet(AllCapabilities()...)
	case RolePastor:
		return NewCapabilitySet(ViewMembers, ViewSundaySchool, ViewEvents, ManageCommunications)
	case RoleTreasurer:
		return NewCapabilitySet(ViewMembers, ViewFinance)
	case RoleTeacher:
		return NewCapabilitySet(ViewSundaySchool, ViewEvents)
	case RoleVolunteer:
		return NewCapabilitySet(ViewEvents)
	default:
		return 0
	}
}

// Session is the signed-in user's context.
type Session struct {
	User         string        `yaml:"user"`
	Roles        []string      `yaml:"roles"`
	Capabilities CapabilitySet `yaml:"capabilities"`
	Currency     string        `yaml:"currency"`
}

// DefaultCurrency is used when a session does not name one.
const DefaultCurrency = "USD"

// Guest returns the session used when nothing has been saved: an
// administrator so the demo dashboard shows every page.
func Guest() *Session {
	return &Session{
		User:         "guest",
		Roles:        []string{RoleAdmin},
		Capabilities: RoleCapabilities(RoleAdmin),
		Currency:     DefaultCurrency,
	}
}

// Can reports whether the session holds c directly or through a role.
func (s *Session) Can(c Capability) bool {
	if s == nil {
		return false
	}
	if s.Capabilities.Has(c) {
		return true
	}
	return slices.ContainsFunc(s.Roles, func(r string) bool { return RoleCapabilities(r).Has(c) })
}

// Load reads a saved session from path.
func Load(path string) (*Session, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNoSession
		}
		return nil, fmt.Errorf("reading session %s: %w", path, err)
	}
	var s Session
	if err = yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parsing session %s: %w", path, err)
	}
	if s.Currency == "" {
		s.Currency = DefaultCurrency
	}
	return &s, nil
}

// LoadOrGuest returns the saved session, or Guest when none exists.
func LoadOrGuest(path string) (*Session, error) {
	s, err := Load(path)
	if errors.Is(err, ErrNoSession) {
		return Guest(), nil
	}
	return s, err
}

// Save persists the session to path.
func (s *Session) Save(path string) error {
	data, err := yaml.Marshal(s)
	if err != nil {
		return fmt.Errorf("encoding session: %w", err)
	}
	if err = os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return fmt.Errorf("creating session directory: %w", err)
	}
	if err = os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("writing session %s: %w", path, err)
	}
	return nil
}

// Logout removes the saved session. A missing file is not an error.
func Logout(path string) error {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing session %s: %w", path, err)
	}
	return nil
}
