package main

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/saturnino-fabrica-de-software/soukhyam/internal/config"
	"github.com/saturnino-fabrica-de-software/soukhyam/internal/connection"
	"github.com/saturnino-fabrica-de-software/soukhyam/internal/realtime"
)

func newListenCmd(opts *rootOptions) *cobra.Command {
	var (
		attempts  int
		baseDelay time.Duration
		maxDelay  time.Duration
	)

	cmd := &cobra.Command{
		Use:   "listen",
		Short: "Follow the event stream, one JSON object per line",
		Long: "Follows the realtime stream and prints every event to stdout. " +
			"Connection state changes go to stderr. Exits non-zero once the " +
			"reconnect budget is spent.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			errOut := cmd.ErrOrStderr()
			enc := json.NewEncoder(out)

			cfg := connection.DefaultConfig(opts.server)
			cfg.MaxAttempts = attempts
			cfg.BaseDelay = baseDelay
			cfg.MaxDelay = maxDelay
			cfg.Logger = config.NewLoggerTo(errOut, opts.logEnv)
			cfg.OnEvent = func(e realtime.Event) {
				_ = enc.Encode(e)
			}
			cfg.OnStateChange = func(s connection.Status) {
				line := fmt.Sprintf("state=%s attempt=%d", s.State, s.Attempt)
				if s.LastError != nil {
					line += fmt.Sprintf(" error=%q", s.LastError.Error())
				}
				fmt.Fprintln(errOut, line)
			}

			m := connection.New(cfg)

			ctx := cmd.Context()
			m.Start(ctx)
			defer m.Close()

			select {
			case <-ctx.Done():
				return nil
			case <-m.Done():
			}

			if st := m.Status(); st.Offline {
				return fmt.Errorf("offline after %d reconnect attempts: %v", attempts, st.LastError)
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&attempts, "attempts", 5, "reconnect attempts before giving up")
	cmd.Flags().DurationVar(&baseDelay, "base-delay", time.Second, "first reconnect delay, doubled per attempt")
	cmd.Flags().DurationVar(&maxDelay, "max-delay", 30*time.Second, "reconnect delay cap")

	return cmd
}
