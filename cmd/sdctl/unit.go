package main

import (
	"github.com/spf13/cobra"

	"git.gensokyo.uk/security/systemd/unit"
)

func newUnitCommand(opts *options) *cobra.Command {
	var (
		isPath   bool
		template string
		suffix   string
	)

	cmd := &cobra.Command{
		Use:   "unit",
		Short: "Escape and unescape strings for use in unit names",
	}

	escape := &cobra.Command{
		Use:   "escape STRING",
		Short: "Escape a string for use in a unit name",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			escapeFunc, instanceFunc := unit.Escape, unit.Instance
			if isPath {
				escapeFunc, instanceFunc = unit.EscapePath, unit.PathInstance
			}
			s := escapeFunc(args[0])
			if template != "" {
				var ok bool
				if s, ok = instanceFunc(template, args[0]); !ok {
					return usageError("invalid template " + template)
				}
			} else if suffix != "" {
				s += "." + suffix
			}
			return opts.print(cmd.OutOrStdout(), s, textln(s))
		},
	}
	escape.Flags().BoolVarP(&isPath, "path", "p", false, "treat the string as a path")
	escape.Flags().StringVar(&template, "template", "", "instantiate this template unit")
	escape.Flags().StringVar(&suffix, "suffix", "", "append this unit type suffix")

	unescape := &cobra.Command{
		Use:   "unescape STRING",
		Short: "Reverse escaping of a unit name",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f := unit.Unescape
			if isPath {
				f = unit.UnescapePath
			}
			s, err := f(args[0])
			if err != nil {
				return err
			}
			return opts.print(cmd.OutOrStdout(), s, textln(s))
		},
	}
	unescape.Flags().BoolVarP(&isPath, "path", "p", false, "treat the string as a path")

	cmd.AddCommand(escape, unescape)
	return cmd
}
