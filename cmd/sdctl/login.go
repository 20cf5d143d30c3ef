package main

import (
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"git.gensokyo.uk/security/systemd/login"
)

// processInfo holds the login records of a process. Absent values are empty.
type processInfo struct {
	PID         int           `json:"pid"`
	Unit        string        `json:"unit,omitempty"`
	UserUnit    string        `json:"user_unit,omitempty"`
	Slice       string        `json:"slice,omitempty"`
	UserSlice   string        `json:"user_slice,omitempty"`
	MachineName string        `json:"machine_name,omitempty"`
	Cgroup      string        `json:"cgroup,omitempty"`
	Session     login.Session `json:"session,omitempty"`
	OwnerUID    *uint32       `json:"owner_uid,omitempty"`
}

func lookupProcess(pid int) (*processInfo, error) {
	p := &processInfo{PID: pid}
	for _, q := range []struct {
		f func(pid int) (string, bool, error)
		v *string
	}{
		{login.PidUnit, &p.Unit},
		{login.PidUserUnit, &p.UserUnit},
		{login.PidSlice, &p.Slice},
		{login.PidUserSlice, &p.UserSlice},
		{login.PidMachineName, &p.MachineName},
		{login.PidCgroup, &p.Cgroup},
	} {
		s, _, err := q.f(pid)
		if err != nil {
			return nil, err
		}
		*q.v = s
	}

	var err error
	if p.Session, _, err = login.PidSession(pid); err != nil {
		return nil, err
	}
	if uid, ok, err := login.PidOwnerUID(pid); err != nil {
		return nil, err
	} else if ok {
		p.OwnerUID = &uid
	}
	return p, nil
}

func (p *processInfo) writeText(w io.Writer) error {
	_, err := fmt.Fprintf(w, "PID:\t\t%d\nUnit:\t\t%s\nUser unit:\t%s\nSlice:\t\t%s\nUser slice:\t%s\nMachine:\t%s\nCgroup:\t\t%s\nSession:\t%s\n",
		p.PID, p.Unit, p.UserUnit, p.Slice, p.UserSlice, p.MachineName, p.Cgroup, p.Session)
	if err == nil && p.OwnerUID != nil {
		_, err = fmt.Fprintf(w, "Owner UID:\t%d\n", *p.OwnerUID)
	}
	return err
}

// sessionInfo holds the records of a login session.
type sessionInfo struct {
	ID     login.Session `json:"id"`
	UID    uint32        `json:"uid"`
	Seat   string        `json:"seat,omitempty"`
	TTY    string        `json:"tty,omitempty"`
	Type   string        `json:"type,omitempty"`
	Class  string        `json:"class,omitempty"`
	State  string        `json:"state,omitempty"`
	Active bool          `json:"active"`
}

func lookupSession(s login.Session) (*sessionInfo, error) {
	v := &sessionInfo{ID: s}
	var err error
	if v.UID, err = s.UID(); err != nil {
		return nil, err
	}
	for _, q := range []struct {
		f func() (string, bool, error)
		v *string
	}{
		{s.Seat, &v.Seat},
		{s.TTY, &v.TTY},
		{s.Type, &v.Type},
		{s.Class, &v.Class},
		{s.State, &v.State},
	} {
		if *q.v, _, err = q.f(); err != nil {
			return nil, err
		}
	}
	if v.Active, err = s.IsActive(); err != nil {
		return nil, err
	}
	return v, nil
}

func newLoginCommand(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Query processes, sessions and seats tracked by systemd-logind",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "pid [PID]",
			Short: "Show the unit, slice and session of a process",
			Args:  cobra.MaximumNArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				pid := os.Getpid()
				if len(args) == 1 {
					var err error
					if pid, err = strconv.Atoi(args[0]); err != nil || pid < 0 {
						return usageError(fmt.Sprintf("invalid process ID %q", args[0]))
					}
				}
				p, err := lookupProcess(pid)
				if err != nil {
					return err
				}
				return opts.print(cmd.OutOrStdout(), p, p.writeText)
			},
		},

		&cobra.Command{
			Use:   "sessions",
			Short: "List login sessions",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				sessions, err := login.Sessions()
				if err != nil {
					return err
				}
				v := make([]*sessionInfo, 0, len(sessions))
				for _, s := range sessions {
					info, err := lookupSession(s)
					if err != nil {
						opts.msg.Verbosef("cannot look up session %s: %v", s, err)
						continue
					}
					v = append(v, info)
				}
				return opts.print(cmd.OutOrStdout(), v, func(w io.Writer) error {
					for _, s := range v {
						if _, err := fmt.Fprintf(w, "%s\t%d\t%s\t%s\t%s\t%t\n",
							s.ID, s.UID, s.Seat, s.TTY, s.State, s.Active); err != nil {
							return err
						}
					}
					return nil
				})
			},
		},

		&cobra.Command{
			Use:   "seats",
			Short: "List seats",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				seats, err := login.Seats()
				if err != nil {
					return err
				}
				return opts.print(cmd.OutOrStdout(), seats, func(w io.Writer) error {
					for _, seat := range seats {
						if _, err := fmt.Fprintln(w, seat); err != nil {
							return err
						}
					}
					return nil
				})
			},
		},
	)
	return cmd
}
