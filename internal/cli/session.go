package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rshade/shepherd/internal/format"
	"github.com/rshade/shepherd/internal/session"
)

// ErrUnknownRole is returned by session login for a role that grants nothing.
var ErrUnknownRole = errors.New("unknown role")

func newSessionCmd(st *state) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "session",
		Short: "Manage the signed-in dashboard session",
		Long: `The session decides which dashboard pages and sections are shown. Without a
saved session the dashboard runs as an administrator guest.`,
	}
	cmd.AddCommand(newSessionLoginCmd(st), newSessionLogoutCmd(st), newSessionShowCmd(st))
	return cmd
}

type loginFlags struct {
	user         string
	roles        []string
	capabilities []string
	currency     string
}

func newSessionLoginCmd(st *state) *cobra.Command {
	var f loginFlags

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Save a session with roles and capabilities",
		Example: `  shepherd session login --user pat --role treasurer
  shepherd session login --user sam --role volunteer --capability communications:manage --currency EUR`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := f.session()
			if err != nil {
				return err
			}
			path, err := st.cfg.SessionFile()
			if err != nil {
				return err
			}
			if err = s.Save(path); err != nil {
				return err
			}
			st.log.Info().Ctx(cmd.Context()).Str("user", s.User).Strs("roles", s.Roles).Msg("session saved")
			cmd.Printf("Signed in as %s\n", s.User)
			return nil
		},
	}
	cmd.Flags().StringVar(&f.user, "user", "", "user name")
	cmd.Flags().StringSliceVar(&f.roles, "role", nil,
		"role: admin, pastor, treasurer, teacher or volunteer (repeatable)")
	cmd.Flags().StringSliceVar(&f.capabilities, "capability", nil, "extra capability, e.g. finance:view (repeatable)")
	cmd.Flags().StringVar(&f.currency, "currency", session.DefaultCurrency, "ISO 4217 currency for amounts")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}

func (f loginFlags) session() (*session.Session, error) {
	s := &session.Session{User: f.user, Currency: strings.ToUpper(f.currency)}
	for _, r := range f.roles {
		r = strings.ToLower(strings.TrimSpace(r))
		if session.RoleCapabilities(r) == 0 {
			return nil, fmt.Errorf("%w: %q", ErrUnknownRole, r)
		}
		s.Roles = append(s.Roles, r)
	}
	for _, name := range f.capabilities {
		c, err := session.ParseCapability(name)
		if err != nil {
			return nil, err
		}
		s.Capabilities = s.Capabilities.With(c)
	}
	if _, err := format.ParseCurrency(0, s.Currency); err != nil {
		return nil, err
	}
	return s, nil
}

func newSessionLogoutCmd(st *state) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Remove the saved session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			path, err := st.cfg.SessionFile()
			if err != nil {
				return err
			}
			if err = session.Logout(path); err != nil {
				return err
			}
			cmd.Println("Signed out")
			return nil
		},
	}
}

func newSessionShowCmd(st *state) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the active session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			path, err := st.cfg.SessionFile()
			if err != nil {
				return err
			}
			s, err := session.LoadOrGuest(path)
			if err != nil {
				return err
			}
			var caps []string
			for _, c := range session.AllCapabilities() {
				if s.Can(c) {
					caps = append(caps, c.String())
				}
			}
			cmd.Printf("User:         %s\n", s.User)
			cmd.Printf("Roles:        %s\n", strings.Join(s.Roles, ", "))
			cmd.Printf("Capabilities: %s\n", strings.Join(caps, ", "))
			cmd.Printf("Currency:     %s\n", s.Currency)
			return nil
		},
	}
}
