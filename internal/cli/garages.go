package cli

import (
	"fmt"
	"strings"

	"garageadmin/internal/console"
	"garageadmin/internal/garage"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

func garagesCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "garages",
		Short: "Browse all garages",
	}

	var filter string
	list := &cobra.Command{
		Use:   "list",
		Short: "List garages with their status",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := garage.ParseFilter(filter)
			if err != nil {
				return err
			}
			client, err := a.authed()
			if err != nil {
				return err
			}

			dir := console.NewDirectory(client)
			if err := dir.Refresh(cmd.Context()); err != nil {
				return err
			}
			garages, sum := dir.View(f)

			out := cmd.OutOrStdout()
			if done, err := render(out, a.format, map[string]any{"garages": garages, "summary": sum}); done {
				return err
			}
			if err := printGarages(cmd, garages); err != nil {
				return err
			}
			fmt.Fprintf(out, "\nTotal: %d  Active: %d  Pending: %d  Inactive: %d\n",
				sum.Total, sum.Active, sum.Pending, sum.Inactive)
			return nil
		},
	}
	list.Flags().StringVarP(&filter, "filter", "f", "all", "all, active, pending or inactive")

	cmd.AddCommand(list)
	return cmd
}

func printGarages(cmd *cobra.Command, garages []garage.Garage) error {
	out := cmd.OutOrStdout()
	if len(garages) == 0 {
		fmt.Fprintln(out, "No garages found")
		return nil
	}

	t := newTable(out, "ID", "NAME", "EMAIL", "STATUS", "PLAN", "ENDS")
	for _, g := range garages {
		t.row(g.ID.String(), g.Name, g.Email, g.Status.Label(), orDash(g.SubscriptionType), date(g.SubscriptionEnd))
	}
	return t.flush()
}

func pendingCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pending",
		Short: "Review garages awaiting approval",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List pending garages",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			q, err := a.reviewQueue(cmd)
			if err != nil {
				return err
			}
			pending := q.Pending()
			if done, err := render(cmd.OutOrStdout(), a.format, garage.ListResponse{Garages: pending}); done {
				return err
			}
			return printGarages(cmd, pending)
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "approve <garage-id>",
		Short: "Approve a pending garage",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("invalid garage id %q", args[0])
			}
			q, err := a.reviewQueue(cmd)
			if err != nil {
				return err
			}
			if err := q.Approve(cmd.Context(), id); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Approved %s (%d still pending)\n", id, len(q.Pending()))
			return nil
		},
	})

	var reason string
	reject := &cobra.Command{
		Use:   "reject <garage-id>",
		Short: "Reject a pending garage with a reason",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("invalid garage id %q", args[0])
			}
			if reason == "" {
				if reason, err = a.prompt(cmd, "Rejection reason: "); err != nil {
					return err
				}
			}
			if strings.TrimSpace(reason) == "" {
				return console.ErrReasonRequired
			}
			q, err := a.reviewQueue(cmd)
			if err != nil {
				return err
			}
			if err := q.Reject(cmd.Context(), id, reason); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Rejected %s (%d still pending)\n", id, len(q.Pending()))
			return nil
		},
	}
	reject.Flags().StringVarP(&reason, "reason", "r", "", "reason shown to the garage")
	cmd.AddCommand(reject)

	return cmd
}

func (a *app) reviewQueue(cmd *cobra.Command) (*console.ReviewQueue, error) {
	client, err := a.authed()
	if err != nil {
		return nil, err
	}
	q := console.NewReviewQueue(client)
	if err := q.Refresh(cmd.Context()); err != nil {
		return nil, err
	}
	return q, nil
}
