package cli

import (
	"fmt"

	"garageadmin/internal/console"
	"garageadmin/internal/expiry"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

func expiryCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "expiry",
		Short: "Track subscriptions that end within 30 days",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List garages expiring soon, soonest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := a.authed()
			if err != nil {
				return err
			}
			entries, err := client.Expiring(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if done, err := render(out, a.format, expiry.ListResponse{Garages: entries}); done {
				return err
			}
			if len(entries) == 0 {
				fmt.Fprintln(out, "No subscriptions expire in the next 30 days")
				return nil
			}
			t := newTable(out, "ID", "NAME", "EMAIL", "ENDS", "DAYS", "BAND")
			for _, e := range entries {
				t.row(e.Garage.ID.String(), e.Garage.Name, e.Garage.Email,
					date(e.Garage.SubscriptionEnd), days(e.DaysLeft), string(e.Band))
			}
			return t.flush()
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "remind <garage-id>",
		Short: "Email the renewal reminder to an expiring garage",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("invalid garage id %q", args[0])
			}
			client, err := a.authed()
			if err != nil {
				return err
			}
			entries, err := client.Expiring(cmd.Context())
			if err != nil {
				return err
			}

			var target *expiry.Entry
			for i := range entries {
				if entries[i].Garage.ID == id {
					target = &entries[i]
					break
				}
			}
			if target == nil {
				return fmt.Errorf("garage %s is not in the expiring list", id)
			}

			board := console.NewReminderBoard(client, 0)
			defer board.Close()

			sendErr := board.Send(cmd.Context(), target.Garage)
			state, _ := board.State(id)
			fmt.Fprintf(cmd.OutOrStdout(), "%s <%s>: %s\n", target.Garage.Name, target.Garage.Email, state)
			return sendErr
		},
	})

	return cmd
}
