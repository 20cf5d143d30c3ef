//go:build !systemd_nobus

package main

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/godbus/dbus/v5"
	"github.com/spf13/cobra"

	"git.gensokyo.uk/security/systemd/bus"
)

func init() { commands = append(commands, newBusCommand) }

// parseArg parses a method argument of the form TYPE:VALUE, where TYPE is
// a basic D-Bus type code. An argument without a type code is a string.
func parseArg(s string) (any, error) {
	typ, value, ok := strings.Cut(s, ":")
	if !ok || len(typ) != 1 {
		return s, nil
	}

	var (
		v   any
		err error
	)
	switch typ[0] {
	case 's':
		v = value
	case 'o':
		v, err = bus.NewObjectPath(value)
	case 'g':
		v, err = dbus.ParseSignature(value)
	case 'b':
		v, err = strconv.ParseBool(value)
	case 'y':
		var n uint64
		n, err = strconv.ParseUint(value, 0, 8)
		v = byte(n)
	case 'n':
		var n int64
		n, err = strconv.ParseInt(value, 0, 16)
		v = int16(n)
	case 'q':
		var n uint64
		n, err = strconv.ParseUint(value, 0, 16)
		v = uint16(n)
	case 'i':
		var n int64
		n, err = strconv.ParseInt(value, 0, 32)
		v = int32(n)
	case 'u':
		var n uint64
		n, err = strconv.ParseUint(value, 0, 32)
		v = uint32(n)
	case 'x':
		v, err = strconv.ParseInt(value, 0, 64)
	case 't':
		v, err = strconv.ParseUint(value, 0, 64)
	case 'd':
		v, err = strconv.ParseFloat(value, 64)
	default:
		return s, nil
	}
	if err != nil {
		return nil, usageError(fmt.Sprintf("invalid argument %q: %v", s, err))
	}
	return v, nil
}

// errUnsupportedReply is returned by readReply for values of a type it cannot read.
var errUnsupportedReply = errors.New("reply contains unsupported types")

// readReply reads every value of m.
func readReply(m *bus.Message) ([]any, error) {
	var values []any
	for {
		typ, contents, err := m.PeekType()
		if errors.Is(err, io.EOF) {
			return values, nil
		}
		if err != nil {
			return values, err
		}

		var p any
		switch typ {
		case 'y':
			p = new(byte)
		case 'b':
			p = new(bool)
		case 'n':
			p = new(int16)
		case 'q':
			p = new(uint16)
		case 'i':
			p = new(int32)
		case 'u':
			p = new(uint32)
		case 'x':
			p = new(int64)
		case 't':
			p = new(uint64)
		case 'd':
			p = new(float64)
		case 'h':
			p = new(bus.UnixFD)
		case 's':
			p = new(string)
		case 'o':
			p = new(bus.ObjectPath)
		case 'g':
			p = new(dbus.Signature)
		case 'a':
			if contents != "s" {
				return values, fmt.Errorf("%w: a%s", errUnsupportedReply, contents)
			}
			p = new([]string)
		default:
			return values, fmt.Errorf("%w: %c%s", errUnsupportedReply, typ, contents)
		}
		if err = m.Read(p); err != nil {
			return values, err
		}
		// dereference
		switch v := p.(type) {
		case *byte:
			values = append(values, *v)
		case *bool:
			values = append(values, *v)
		case *int16:
			values = append(values, *v)
		case *uint16:
			values = append(values, *v)
		case *int32:
			values = append(values, *v)
		case *uint32:
			values = append(values, *v)
		case *int64:
			values = append(values, *v)
		case *uint64:
			values = append(values, *v)
		case *float64:
			values = append(values, *v)
		case *bus.UnixFD:
			values = append(values, *v)
		case *string:
			values = append(values, *v)
		case *bus.ObjectPath:
			values = append(values, *v)
		case *dbus.Signature:
			values = append(values, v.String())
		case *[]string:
			values = append(values, *v)
		}
	}
}

func newBusCommand(opts *options) *cobra.Command {
	var (
		system  bool
		machine string
		host    string
	)
	open := func() (*bus.Bus, error) {
		switch {
		case machine != "":
			return bus.OpenSystemMachine(machine)
		case host != "":
			return bus.OpenSystemRemote(host)
		case system:
			return bus.OpenSystem()
		default:
			return bus.OpenUser()
		}
	}

	cmd := &cobra.Command{
		Use:   "bus",
		Short: "Call methods on the session or system bus",
	}
	cmd.PersistentFlags().BoolVar(&system, "system", false, "connect to the system bus instead of the session bus")
	cmd.PersistentFlags().StringVarP(&machine, "machine", "M", "", "connect to the system bus of a local container")
	cmd.PersistentFlags().StringVarP(&host, "host", "H", "", "connect to the system bus of a remote host over SSH")

	var timeout time.Duration
	call := &cobra.Command{
		Use:   "call DESTINATION PATH INTERFACE MEMBER [TYPE:VALUE...]",
		Short: "Call a method and print its reply",
		Args:  cobra.MinimumNArgs(4),
		RunE: func(cmd *cobra.Command, args []string) error {
			destination, err := bus.NewBusName(args[0])
			if err != nil {
				return err
			}
			path, err := bus.NewObjectPath(args[1])
			if err != nil {
				return err
			}
			iface, err := bus.NewInterfaceName(args[2])
			if err != nil {
				return err
			}
			member, err := bus.NewMemberName(args[3])
			if err != nil {
				return err
			}
			values := make([]any, 0, len(args)-4)
			for _, arg := range args[4:] {
				v, err := parseArg(arg)
				if err != nil {
					return err
				}
				values = append(values, v)
			}

			return bus.Use(open, func(b *bus.Bus) (err error) {
				var m *bus.Message
				if m, err = b.NewMethodCall(destination, path, iface, member); err != nil {
					return
				}
				defer func() { err = errors.Join(err, m.Close()) }()
				if err = m.Append(values...); err != nil {
					return
				}

				opts.msg.Verbosef("calling %s.%s on %s", iface, member, destination)
				var reply *bus.Message
				if reply, err = m.Call(timeout); err != nil {
					return
				}
				defer func() { err = errors.Join(err, reply.Close()) }()

				var v []any
				if v, err = readReply(reply); err != nil {
					return
				}
				return opts.print(cmd.OutOrStdout(), v, func(w io.Writer) error {
					for _, value := range v {
						if _, err := fmt.Fprintln(w, value); err != nil {
							return err
						}
					}
					return nil
				})
			})
		},
	}
	call.Flags().DurationVar(&timeout, "timeout", 0, "method call timeout, zero selects the default")

	cmd.AddCommand(call, &cobra.Command{
		Use:   "id",
		Short: "Print the unique name and ID of the connection",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return bus.Use(open, func(b *bus.Bus) error {
				name, err := b.UniqueName()
				if err != nil {
					return err
				}
				id, err := b.ID()
				if err != nil {
					return err
				}
				v := struct {
					Name bus.BusName `json:"name"`
					ID   string      `json:"id"`
				}{name, id.String()}
				return opts.print(cmd.OutOrStdout(), v, func(w io.Writer) error {
					_, err := fmt.Fprintf(w, "%s\t%s\n", v.Name, v.ID)
					return err
				})
			})
		},
	})
	return cmd
}
