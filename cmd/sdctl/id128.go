package main

import (
	"github.com/spf13/cobra"

	"git.gensokyo.uk/security/systemd/id128"
)

func newID128Command(opts *options) *cobra.Command {
	var (
		uuid bool
		app  string
	)

	show := func(cmd *cobra.Command, get func() (id128.ID, error)) error {
		id, err := get()
		if err != nil {
			return err
		}
		if uuid {
			return opts.print(cmd.OutOrStdout(), id.UUID(), textln(id.UUID()))
		}
		return opts.print(cmd.OutOrStdout(), id, textln(id))
	}
	// appSpecific returns get, or derive applied to the ID passed to --app.
	appSpecific := func(get func() (id128.ID, error), derive func(app id128.ID) (id128.ID, error)) func() (id128.ID, error) {
		if app == "" {
			return get
		}
		return func() (id128.ID, error) {
			a, err := id128.Parse(app)
			if err != nil {
				return id128.ID{}, err
			}
			return derive(a)
		}
	}

	cmd := &cobra.Command{
		Use:   "id128",
		Short: "Generate and query 128-bit identifiers",
	}
	cmd.PersistentFlags().BoolVar(&uuid, "uuid", false, "format identifiers as UUID")

	machine := &cobra.Command{
		Use:   "machine",
		Short: "Print the machine ID",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return show(cmd, appSpecific(id128.Machine, id128.MachineAppSpecific))
		},
	}
	machine.Flags().StringVar(&app, "app", "", "derive an application specific ID")

	boot := &cobra.Command{
		Use:   "boot",
		Short: "Print the boot ID",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return show(cmd, appSpecific(id128.Boot, id128.BootAppSpecific))
		},
	}
	boot.Flags().StringVar(&app, "app", "", "derive an application specific ID")

	cmd.AddCommand(machine, boot,
		&cobra.Command{
			Use:   "random",
			Short: "Print a random ID",
			Args:  cobra.NoArgs,
			RunE:  func(cmd *cobra.Command, _ []string) error { return show(cmd, id128.Random) },
		},
		&cobra.Command{
			Use:   "parse ID",
			Short: "Parse and normalise an ID",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return show(cmd, func() (id128.ID, error) { return id128.Parse(args[0]) })
			},
		},
	)
	return cmd
}
