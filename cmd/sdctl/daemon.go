package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"git.gensokyo.uk/security/systemd/daemon"
)

// usageError is returned for malformed command arguments.
type usageError string

func (e usageError) Error() string   { return string(e) }
func (e usageError) Message() string { return string(e) }

// errNotSupervised is returned by notify when no service manager listens.
const errNotSupervised = usageError("not running under a service manager")

// parseVars parses KEY=VALUE arguments into state variables.
func parseVars(args []string) ([]daemon.Var, error) {
	vars := make([]daemon.Var, 0, len(args))
	for _, arg := range args {
		key, value, ok := strings.Cut(arg, "=")
		if !ok || key == "" {
			return nil, usageError(fmt.Sprintf("invalid state variable %q", arg))
		}
		vars = append(vars, daemon.Var{Key: key, Value: value})
	}
	return vars, nil
}

func newNotifyCommand(opts *options) *cobra.Command {
	var (
		ready, stopping, reloading bool
		status                     string
		pid                        int
		fds                        []int
		fdName                     string
		unset                      bool
	)

	cmd := &cobra.Command{
		Use:   "notify [KEY=VALUE...]",
		Short: "Notify the service manager about state changes",
		RunE: func(cmd *cobra.Command, args []string) error {
			vars, err := parseVars(args)
			if err != nil {
				return err
			}
			if ready {
				vars = append(vars, daemon.Ready())
			}
			if reloading {
				vars = append(vars, daemon.Reloading())
			}
			if stopping {
				vars = append(vars, daemon.Stopping())
			}
			if status != "" {
				vars = append(vars, daemon.Status(status))
			}
			if len(fds) > 0 {
				vars = append(vars, daemon.FDStore())
				if fdName != "" {
					vars = append(vars, daemon.FDName(fdName))
				}
			}
			if len(vars) == 0 {
				return usageError("no state variables to send")
			}

			var sent bool
			switch {
			case len(fds) > 0:
				sent, err = daemon.PidNotifyWithFds(pid, unset, fds, vars...)
			case pid != 0:
				sent, err = daemon.PidNotify(pid, unset, vars...)
			default:
				sent, err = daemon.Notify(unset, vars...)
			}
			if err != nil {
				return err
			}
			if !sent {
				return errNotSupervised
			}
			opts.msg.Verbosef("sent %d state variables", len(vars))
			return nil
		},
	}
	cmd.Flags().BoolVar(&ready, "ready", false, "report that startup is finished")
	cmd.Flags().BoolVar(&reloading, "reloading", false, "report that the service is reloading")
	cmd.Flags().BoolVar(&stopping, "stopping", false, "report that the service is stopping")
	cmd.Flags().StringVar(&status, "status", "", "free-form status text")
	cmd.Flags().IntVar(&pid, "pid", 0, "send on behalf of this process")
	cmd.Flags().IntSliceVar(&fds, "fd", nil, "store this file descriptor in the service manager")
	cmd.Flags().StringVar(&fdName, "fdname", "", "name of stored file descriptors")
	cmd.Flags().BoolVar(&unset, "unset", false, "unset "+daemon.EnvNotifySocket)
	return cmd
}

// listenFd is the JSON representation of a passed file descriptor.
type listenFd struct {
	Fd   int    `json:"fd"`
	Name string `json:"name,omitempty"`
}

func newListenCommand(opts *options) *cobra.Command {
	var unset bool

	cmd := &cobra.Command{
		Use:   "listen",
		Short: "List file descriptors passed by the service manager",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			fds, err := daemon.ListenFdsWithNames(unset)
			if err != nil {
				return err
			}
			v := make([]listenFd, fds.Len())
			for i, fd := range fds.Fds() {
				v[i].Fd = fd
				if names := fds.Names(); i < len(names) {
					v[i].Name = names[i]
				}
			}
			return opts.print(cmd.OutOrStdout(), v, func(w io.Writer) error {
				for _, fd := range v {
					if _, err := fmt.Fprintf(w, "%d\t%s\n", fd.Fd, fd.Name); err != nil {
						return err
					}
				}
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&unset, "unset", false, "unset "+daemon.EnvListenPID+", "+daemon.EnvListenFds+" and "+daemon.EnvListenFdNames)
	return cmd
}

func newBootedCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "booted",
		Short: "Report whether the system was booted with systemd",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			booted, err := daemon.Booted()
			if err != nil {
				return err
			}
			return opts.print(cmd.OutOrStdout(), booted, textln(booted))
		},
	}
}

func newWatchdogCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "watchdog",
		Short: "Print the watchdog interval expected by the service manager",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			d, err := daemon.WatchdogEnabled(false)
			if err != nil {
				return err
			}
			if d == 0 {
				opts.msg.Verbose("watchdog disabled")
			}
			return opts.print(cmd.OutOrStdout(), d.Microseconds(), textln(d))
		},
	}
}
