package main

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/saturnino-fabrica-de-software/soukhyam/internal/api/handler"
	"github.com/saturnino-fabrica-de-software/soukhyam/internal/escalation"
)

func newSOSCmd(opts *rootOptions) *cobra.Command {
	var subject, message string

	cmd := &cobra.Command{
		Use:   "sos",
		Short: "Raise an explicit SOS alert",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client := newAPIClient(opts)

			ctx, cancel := context.WithTimeout(cmd.Context(), opts.timeout)
			defer cancel()

			var resp handler.SOSResponse
			err := client.do(ctx, "POST", "/v1/alerts", handler.SOSRequest{
				SubjectID: subject,
				Message:   message,
			}, &resp)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "alert %s %s\n", resp.Alert.ID, resp.Alert.Status)
			if !resp.Broadcast {
				fmt.Fprintln(cmd.ErrOrStderr(), "warning: alert recorded but not broadcast to dashboards")
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&subject, "subject", "", "student or session identifier")
	cmd.Flags().StringVar(&message, "message", "", "context for responders")
	_ = cmd.MarkFlagRequired("subject")

	return cmd
}

func newAlertsCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "alerts",
		Short: "List and work crisis alerts",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List alerts, newest first",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				client := newAPIClient(opts)

				ctx, cancel := context.WithTimeout(cmd.Context(), opts.timeout)
				defer cancel()

				var resp handler.AlertListResponse
				if err := client.do(ctx, "GET", "/v1/alerts", nil, &resp); err != nil {
					return err
				}
				return printAlerts(cmd.OutOrStdout(), resp.Alerts)
			},
		},
		newTransitionCmd(opts, "ack", "acknowledge", "Acknowledge an alert"),
		newTransitionCmd(opts, "resolve", "resolve", "Resolve an alert"),
	)

	return cmd
}

func newTransitionCmd(opts *rootOptions, use, action, short string) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <alert-id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := newAPIClient(opts)

			ctx, cancel := context.WithTimeout(cmd.Context(), opts.timeout)
			defer cancel()

			var alert escalation.Alert
			if err := client.do(ctx, "POST", "/v1/alerts/"+args[0]+"/"+action, nil, &alert); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "alert %s %s\n", alert.ID, alert.Status)
			return nil
		},
	}
}

func printAlerts(out io.Writer, alerts []escalation.Alert) error {
	if len(alerts) == 0 {
		fmt.Fprintln(out, "No alerts.")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSTATUS\tSUBJECT\tCREATED\tMESSAGE")
	for _, a := range alerts {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			a.ID,
			a.Status,
			a.SubjectID,
			a.CreatedAt.Local().Format("2006-01-02 15:04:05"),
			a.Message,
		)
	}
	return w.Flush()
}
