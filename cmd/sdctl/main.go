// sdctl exercises libsystemd from the command line: it submits and reads
// journal entries, notifies the service manager, queries logind, escapes
// unit names and calls D-Bus methods.
package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"

	"git.gensokyo.uk/security/systemd/message"
)

func main() {
	log.SetPrefix("sdctl: ")
	log.SetFlags(0)
	msg := message.New(log.Default())

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	err := newRootCommand(msg).ExecuteContext(ctx)
	stop()
	if err == nil || errors.Is(err, context.Canceled) {
		return
	}
	if m, ok := message.GetMessage(err); ok {
		log.Fatal(m)
	}
	log.Fatal(err)
}
