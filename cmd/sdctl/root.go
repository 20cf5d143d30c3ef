package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"git.gensokyo.uk/security/systemd/message"
)

// options holds persistent flags shared by every command.
type options struct {
	msg     message.Msg
	verbose bool
	json    bool
}

// commands are constructors of optional commands, appended by files
// depending on parts of libsystemd that may be compiled out.
var commands []func(opts *options) *cobra.Command

func newRootCommand(msg message.Msg) *cobra.Command {
	opts := &options{msg: msg}

	cmd := &cobra.Command{
		Use:           "sdctl",
		Short:         "Exercise libsystemd from the command line",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(*cobra.Command, []string) {
			opts.msg.SwapVerbose(opts.verbose)
		},
	}
	cmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "increase log verbosity")
	cmd.PersistentFlags().BoolVar(&opts.json, "json", false, "serialise output in JSON when applicable")

	cmd.AddCommand(
		newID128Command(opts),
		newNotifyCommand(opts),
		newListenCommand(opts),
		newBootedCommand(opts),
		newWatchdogCommand(opts),
		newLoginCommand(opts),
		newUnitCommand(opts),
		newFeaturesCommand(opts),
	)
	for _, f := range commands {
		cmd.AddCommand(f(opts))
	}
	return cmd
}

// print writes v as JSON if requested, or calls text otherwise.
func (opts *options) print(w io.Writer, v any, text func(w io.Writer) error) error {
	if !opts.json {
		return text(w)
	}
	e := json.NewEncoder(w)
	e.SetIndent("", "  ")
	return e.Encode(v)
}

// textln is a text function writing a single value.
func textln(v any) func(w io.Writer) error {
	return func(w io.Writer) error {
		_, err := fmt.Fprintln(w, v)
		return err
	}
}
