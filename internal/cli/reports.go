package cli

import (
	"fmt"

	"garageadmin/internal/expiry"
	"garageadmin/internal/payment"

	"github.com/spf13/cobra"
)

func paymentsCmd(a *app) *cobra.Command {
	var status string
	cmd := &cobra.Command{
		Use:   "payments",
		Short: "Show payment history and total revenue",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := payment.ParseStatus(status)
			if err != nil {
				return err
			}
			client, err := a.authed()
			if err != nil {
				return err
			}
			hist, err := client.Payments(cmd.Context(), string(st))
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if done, err := render(out, a.format, hist); done {
				return err
			}
			t := newTable(out, "ID", "GARAGE", "AMOUNT", "DATE", "METHOD", "STATUS", "TRANSACTION")
			for _, p := range hist.Payments {
				t.row(fmt.Sprint(p.ID), p.Garage, money(p.Amount), date(&p.Date), p.Method, string(p.Status), p.TransactionID)
			}
			if err := t.flush(); err != nil {
				return err
			}
			fmt.Fprintf(out, "\nTotal revenue: %s\n", money(hist.TotalRevenue))
			return nil
		},
	}
	cmd.Flags().StringVarP(&status, "status", "s", "all", "all, Completed, Pending or Failed")
	return cmd
}

func dashboardCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "dashboard",
		Short: "Summarise garages, expiring subscriptions and revenue",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := a.authed()
			if err != nil {
				return err
			}
			d, err := client.Dashboard(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if done, err := render(out, a.format, d); done {
				return err
			}
			fmt.Fprintln(out, "Garages")
			t := newTable(out, "  TOTAL", "ACTIVE", "PENDING", "INACTIVE")
			t.row("  "+fmt.Sprint(d.Garages.Total), fmt.Sprint(d.Garages.Active), fmt.Sprint(d.Garages.Pending), fmt.Sprint(d.Garages.Inactive))
			if err := t.flush(); err != nil {
				return err
			}

			fmt.Fprintln(out, "\nSubscriptions")
			t = newTable(out, "  BAND", "GARAGES")
			for _, b := range expiry.Bands {
				t.row("  "+string(b), fmt.Sprint(d.Expiry[b]))
			}
			if err := t.flush(); err != nil {
				return err
			}

			fmt.Fprintf(out, "\nRevenue: %s (%d pending payments)\n", money(d.TotalRevenue), d.PendingPayments)
			return nil
		},
	}
}
