package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/saturnino-fabrica-de-software/soukhyam/internal/chat"
	"github.com/saturnino-fabrica-de-software/soukhyam/internal/provider"
)

func newChatCmd(opts *rootOptions) *cobra.Command {
	var session, language string

	cmd := &cobra.Command{
		Use:   "chat <message...>",
		Short: "Send one message to the companion chat",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := newAPIClient(opts)

			ctx, cancel := context.WithTimeout(cmd.Context(), opts.timeout)
			defer cancel()

			var reply chat.Reply
			err := client.do(ctx, "POST", "/v1/chat", chat.Request{
				SessionID: session,
				Messages: []provider.Message{
					{Role: provider.RoleUser, Content: strings.Join(args, " ")},
				},
				Language: language,
			}, &reply)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, reply.Message)
			if reply.Emergency && reply.AlertID != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "emergency: alert %s raised\n", reply.AlertID)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&session, "session", "", "chat session identifier")
	cmd.Flags().StringVar(&language, "language", "en", "reply language: en, hi or ur")

	return cmd
}
