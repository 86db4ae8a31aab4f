// Command soukhyamctl talks to a running Soukhyam realtime server: it can
// follow the event stream, publish events, raise and work alerts, and send a
// chat turn.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
)

const defaultServer = "http://localhost:3000"

type rootOptions struct {
	server  string
	timeout time.Duration
	logEnv  string
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:           "soukhyamctl",
		Short:         "Operator and student client for the Soukhyam realtime server",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	server := os.Getenv("SOUKHYAM_URL")
	if server == "" {
		server = defaultServer
	}
	cmd.PersistentFlags().StringVar(&opts.server, "server", server, "server base URL (env SOUKHYAM_URL)")
	cmd.PersistentFlags().DurationVar(&opts.timeout, "timeout", 15*time.Second, "timeout for one request")
	cmd.PersistentFlags().StringVar(&opts.logEnv, "log-env", "production", "logger flavour: development or production")

	cmd.AddCommand(
		newListenCmd(opts),
		newPublishCmd(opts),
		newSOSCmd(opts),
		newAlertsCmd(opts),
		newChatCmd(opts),
	)

	return cmd
}
