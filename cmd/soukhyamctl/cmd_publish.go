package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/saturnino-fabrica-de-software/soukhyam/internal/connection"
	"github.com/saturnino-fabrica-de-software/soukhyam/internal/realtime"
)

func newPublishCmd(opts *rootOptions) *cobra.Command {
	var (
		kind   string
		data   map[string]string
		origin string
	)

	cmd := &cobra.Command{
		Use:   "publish",
		Short: "Broadcast one event to every open stream",
		Example: "  soukhyamctl publish --kind wellness_update --data mood=calm --data score=7 --origin student-42\n" +
			"  soukhyamctl publish --kind system_notification --data message='Counselling desk opens at 10'",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			publisher := connection.NewPublisher(opts.server, nil)

			ctx, cancel := context.WithTimeout(cmd.Context(), opts.timeout)
			defer cancel()

			event := realtime.Event{
				Kind:     realtime.Kind(kind),
				Payload:  parsePayload(data),
				OriginID: origin,
			}
			if err := publisher.Publish(ctx, event); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "published %s\n", kind)
			return nil
		},
	}

	cmd.Flags().StringVar(&kind, "kind", "", "event type, e.g. wellness_update")
	cmd.Flags().StringToStringVar(&data, "data", nil, "payload field as key=value, repeatable")
	cmd.Flags().StringVar(&origin, "origin", "", "producer identifier")
	_ = cmd.MarkFlagRequired("kind")

	return cmd
}

// parsePayload keeps numbers and booleans typed so dashboards can chart
// them; everything else stays a string.
func parsePayload(data map[string]string) map[string]any {
	payload := make(map[string]any, len(data))
	for k, v := range data {
		if b, err := strconv.ParseBool(v); err == nil {
			payload[k] = b
			continue
		}
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			payload[k] = f
			continue
		}
		payload[k] = v
	}
	return payload
}
