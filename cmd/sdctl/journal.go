//go:build !systemd_nojournal

package main

import (
	"errors"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"git.gensokyo.uk/security/systemd/journal"
)

func init() { commands = append(commands, newJournalCommand) }

// formatEntry returns a single line describing e, in the style of the
// short output of journalctl.
func formatEntry(t time.Time, e journal.Entry) string {
	ident := e["SYSLOG_IDENTIFIER"]
	if ident == "" {
		ident = e["_COMM"]
	}
	if pid := e["_PID"]; pid != "" {
		ident += "[" + pid + "]"
	}
	return t.Format(time.StampMicro) + " " + ident + ": " + e["MESSAGE"]
}

func newJournalCommand(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "journal",
		Short: "Submit and read journal entries",
	}

	var priority string
	printCmd := &cobra.Command{
		Use:   "print MESSAGE...",
		Short: "Submit a message",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := journal.ParsePriority(priority)
			if err != nil {
				return err
			}
			return journal.Print(p, "%s", strings.Join(args, " "))
		},
	}
	printCmd.Flags().StringVarP(&priority, "priority", "p", journal.PriInfo.String(), "syslog priority name or number")

	var (
		lines     uint64
		matches   []string
		directory string
		system    bool
		user      bool
		local     bool
		follow    bool
	)
	readCmd := &cobra.Command{
		Use:   "read",
		Short: "Print journal entries",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) (err error) {
			var flags journal.OpenFlag
			if system {
				flags |= journal.System
			}
			if user {
				flags |= journal.CurrentUser
			}
			if local {
				flags |= journal.LocalOnly
			}

			var r *journal.Reader
			if directory != "" {
				r, err = journal.OpenDirectory(directory, flags)
			} else {
				r, err = journal.Open(flags)
			}
			if err != nil {
				return err
			}
			defer func() { err = errors.Join(err, r.Close()) }()

			for _, m := range matches {
				if err = r.AddMatch(m); err != nil {
					return err
				}
			}
			return readEntries(cmd, opts, r, lines, follow)
		},
	}
	readCmd.Flags().Uint64VarP(&lines, "lines", "n", 10, "number of most recent entries to print, 0 prints every entry")
	readCmd.Flags().StringArrayVarP(&matches, "match", "m", nil, "only print entries with this FIELD=VALUE")
	readCmd.Flags().StringVarP(&directory, "directory", "D", "", "read journal files from this directory")
	readCmd.Flags().BoolVar(&system, "system", false, "read journal files of system services and the kernel")
	readCmd.Flags().BoolVar(&user, "user", false, "read journal files of the current user")
	readCmd.Flags().BoolVar(&local, "local", false, "only read journal files of the local machine")
	readCmd.Flags().BoolVarP(&follow, "follow", "f", false, "wait for and print new entries")

	cmd.AddCommand(
		&cobra.Command{
			Use:   "send FIELD=VALUE...",
			Short: "Submit an entry made of the given fields",
			Args:  cobra.MinimumNArgs(1),
			RunE:  func(_ *cobra.Command, args []string) error { return journal.Send(args...) },
		},
		printCmd,
		readCmd,
	)
	return cmd
}

// readEntries prints the last n entries of r, or every entry if n is zero.
func readEntries(cmd *cobra.Command, opts *options, r *journal.Reader, n uint64, follow bool) error {
	w := cmd.OutOrStdout()
	write := func(e journal.Entry) error {
		t, err := r.Realtime()
		if err != nil {
			return err
		}
		return opts.print(w, e, textln(formatEntry(t, e)))
	}

	if n > 0 {
		if err := r.SeekTail(); err != nil {
			return err
		}
		if skipped, err := r.PreviousSkip(n); err != nil {
			return err
		} else if skipped > 0 {
			e, err := r.Entry()
			if err != nil {
				return err
			}
			if err = write(e); err != nil {
				return err
			}
		}
	}

	for {
		e, err := r.ReadEntry()
		if errors.Is(err, io.EOF) {
			if !follow {
				return nil
			}
			if err = cmd.Context().Err(); err != nil {
				return err
			}
			var ev journal.WakeEvent
			if ev, err = r.Wait(time.Second); err != nil {
				return err
			}
			opts.msg.Verbosef("journal wake event %s", ev)
			continue
		}
		if err != nil {
			return err
		}
		if err = write(e); err != nil {
			return err
		}
	}
}
