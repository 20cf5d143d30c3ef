package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"git.gensokyo.uk/security/systemd/internal/sd"
	"git.gensokyo.uk/security/systemd/locate"
)

// features describes the parts of libsystemd compiled into sdctl and, if
// it is linked dynamically, the parts provided by the loaded library.
type features struct {
	Compiled locate.Capabilities  `json:"compiled"`
	Library  string               `json:"library,omitempty"`
	Runtime  *locate.Capabilities `json:"runtime,omitempty"`
}

func (f *features) writeText(w io.Writer) error {
	_, err := fmt.Fprintf(w, "Compiled:\t%s\n", capabilitiesText(f.Compiled))
	if err == nil && f.Library != "" {
		_, err = fmt.Fprintf(w, "Library:\t%s\n", f.Library)
	}
	if err == nil && f.Runtime != nil {
		_, err = fmt.Fprintf(w, "Runtime:\t%s\n", capabilitiesText(*f.Runtime))
	}
	return err
}

func capabilitiesText(c locate.Capabilities) string {
	return fmt.Sprintf("journal=%t bus=%t v245=%t", c.Journal, c.Bus, c.V245)
}

func newFeaturesCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "features",
		Short: "Show the parts of libsystemd available to this program",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			f := &features{Compiled: locate.Capabilities{
				Journal: sd.HaveJournal,
				Bus:     sd.HaveBus,
				V245:    sd.HaveV245,
			}}

			exe, err := os.Executable()
			if err != nil {
				return err
			}
			if d, err := locate.Linked(cmd.Context(), exe, locate.DefaultLib); err != nil {
				if !errors.Is(err, locate.ErrNotLinked) {
					return err
				}
				opts.msg.Verbose("libsystemd is linked statically")
			} else if f.Library = d.Pathname(); f.Library != "" {
				c, err := locate.Symbols(f.Library)
				if err != nil {
					return err
				}
				f.Runtime = &c
			}
			return opts.print(cmd.OutOrStdout(), f, f.writeText)
		},
	}
}
