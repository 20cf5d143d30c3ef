// sdlocate locates libsystemd and writes the cgo directives linking against it.
//
// The library is selected by the SYSTEMD_PKG_NAME, SYSTEMD_LIB_DIR and
// SYSTEMD_LIBS environment variables, overriding an optional YAML
// configuration file. Without SYSTEMD_LIB_DIR, pkg-config is consulted.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"

	"git.gensokyo.uk/security/systemd/locate"
	"git.gensokyo.uk/security/systemd/message"
)

// errHelp is returned by run after printing the help message.
var errHelp = errors.New("help requested")

// errUsage is returned by run for invalid command lines.
type errUsage string

func (e errUsage) Error() string   { return string(e) }
func (e errUsage) Message() string { return string(e) }

func main() {
	log.SetPrefix("sdlocate: ")
	log.SetFlags(0)
	msg := message.New(log.Default())

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	err := run(ctx, msg, os.Args[1:], os.Getenv, os.Stdout, os.Stderr)
	stop()
	if err == nil || errors.Is(err, errHelp) {
		return
	}
	if m, ok := message.GetMessage(err); ok {
		log.Fatal(m)
	}
	log.Fatalf("cannot locate libsystemd: %v", err)
}

// options holds the values of every flag.
type options struct {
	config  string
	output  string
	pkg     string
	format  string
	verbose bool
}

func newFlagSet(opts *options, stderr io.Writer) *pflag.FlagSet {
	flagSet := pflag.NewFlagSet("sdlocate", pflag.ContinueOnError)
	flagSet.SetOutput(stderr)
	flagSet.StringVarP(&opts.config, "config", "c", "", "YAML configuration file, overridden by the environment")
	flagSet.StringVarP(&opts.output, "output", "o", "", "write generated source to this file instead of standard output")
	flagSet.StringVarP(&opts.pkg, "package", "p", "sd", "package name of generated source")
	flagSet.StringVarP(&opts.format, "format", "f", "text", "output format of show (text|yaml|json)")
	flagSet.BoolVarP(&opts.verbose, "verbose", "v", false, "increase log verbosity")
	flagSet.BoolP("help", "h", false, "show help")
	return flagSet
}

func printHelp(w io.Writer, flagSet *pflag.FlagSet) {
	_, _ = fmt.Fprint(w, `Usage:
  sdlocate [flags] COMMAND

Commands:
  generate    write cgo directives linking against libsystemd
  tags        print build tags matching the capabilities of libsystemd
  show        describe the located library

Environment:
  SYSTEMD_PKG_NAME    pkg-config package name (default "libsystemd")
  SYSTEMD_LIB_DIR     link from this directory without pkg-config
  SYSTEMD_LIBS        libraries linked from SYSTEMD_LIB_DIR, like "static=systemd:cap"

Flags:
`)
	flagSet.SetOutput(w)
	flagSet.PrintDefaults()
}

func run(ctx context.Context, msg message.Msg, args []string, getenv func(string) string, stdout, stderr io.Writer) error {
	var opts options
	flagSet := newFlagSet(&opts, stderr)
	if err := flagSet.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			printHelp(stderr, flagSet)
			return errHelp
		}
		return errUsage(err.Error())
	}
	if help, _ := flagSet.GetBool("help"); help || flagSet.NArg() == 0 {
		printHelp(stderr, flagSet)
		return errHelp
	}
	if flagSet.NArg() > 1 {
		return errUsage(fmt.Sprintf("unexpected argument %q", flagSet.Arg(1)))
	}
	msg.SwapVerbose(opts.verbose)

	var write func(r *locate.Result) error
	switch command := flagSet.Arg(0); command {
	case "generate":
		write = func(r *locate.Result) error {
			var buf bytes.Buffer
			if err := r.WriteGo(&buf, opts.pkg); err != nil {
				return err
			}
			if opts.output == "" {
				_, err := stdout.Write(buf.Bytes())
				return err
			}
			msg.Verbosef("writing %s", opts.output)
			return os.WriteFile(opts.output, buf.Bytes(), 0644)
		}

	case "tags":
		write = func(r *locate.Result) error {
			_, err := fmt.Fprintln(stdout, strings.Join(r.Tags(), ","))
			return err
		}

	case "show":
		write = func(r *locate.Result) error { return show(stdout, opts.format, r) }
		if !validFormat(opts.format) {
			return errUsage(fmt.Sprintf("invalid format %q", opts.format))
		}

	default:
		return errUsage(fmt.Sprintf("%q is not a valid command", command))
	}

	c := new(locate.Config)
	if opts.config != "" {
		var err error
		if c, err = locate.ReadConfig(opts.config); err != nil {
			return err
		}
		msg.Verbosef("loaded configuration from %s", opts.config)
	}
	if err := c.Env(getenv); err != nil {
		return err
	}

	r, err := locate.Locate(ctx, c)
	if err != nil {
		return err
	}
	if msg.IsVerbose() {
		msg.Verbosef("located libsystemd via %s", r.Source)
		if r.Object != "" {
			msg.Verbosef("read capabilities from %s", r.Object)
		}
	}
	return write(r)
}

func validFormat(format string) bool {
	switch format {
	case "text", "yaml", "json":
		return true
	default:
		return false
	}
}

func show(w io.Writer, format string, r *locate.Result) error {
	switch format {
	case "yaml":
		e := yaml.NewEncoder(w)
		e.SetIndent(2)
		if err := e.Encode(r); err != nil {
			return err
		}
		return e.Close()

	case "json":
		e := json.NewEncoder(w)
		e.SetIndent("", "  ")
		return e.Encode(r)

	default:
		var buf bytes.Buffer
		buf.WriteString("Source:\t\t" + string(r.Source) + "\n")
		if r.Package != "" {
			buf.WriteString("Package:\t" + r.Package + "\n")
		}
		if r.Version != "" {
			buf.WriteString("Version:\t" + r.Version + "\n")
		}
		buf.WriteString("Libraries:\t" + locate.FormatLibs(r.Libs) + "\n")
		buf.WriteString("LDFLAGS:\t" + strings.Join(r.LDFLAGS(), " ") + "\n")
		if r.Object != "" {
			buf.WriteString("Object:\t\t" + r.Object + "\n")
		}
		fmt.Fprintf(&buf, "Journal:\t%t\nBus:\t\t%t\nv245:\t\t%t\n", r.Journal, r.Bus, r.V245)
		_, err := w.Write(buf.Bytes())
		return err
	}
}
