package cli

import (
	"fmt"
	"strings"

	"garageadmin/internal/console"
	"garageadmin/internal/plan"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

// planFlags holds the raw form fields shared by create and update.
type planFlags struct {
	name     string
	price    string
	amount   string
	duration string
	subType  string
	features []string
	popular  bool
}

func (f *planFlags) register(cmd *cobra.Command) {
	fs := cmd.Flags()
	fs.StringVar(&f.name, "name", "", "plan name")
	fs.StringVar(&f.price, "price", "", "display price, e.g. ₹999")
	fs.StringVar(&f.amount, "amount", "", "numeric amount; non-numeric input saves as 0")
	fs.StringVar(&f.duration, "duration", "", "duration in months; non-numeric input saves as 1")
	fs.StringVar(&f.subType, "type", "", "subscription type, e.g. monthly")
	fs.StringSliceVar(&f.features, "feature", nil, "feature line (repeatable)")
	fs.BoolVar(&f.popular, "popular", false, "mark the plan as popular")
}

func (f *planFlags) draft() plan.Draft {
	return plan.Draft{
		Name:             f.name,
		Price:            f.price,
		Amount:           plan.Loose(f.amount),
		SubscriptionType: f.subType,
		DurationInMonths: plan.Loose(f.duration),
		Features:         f.features,
		Popular:          f.popular,
	}
}

// apply copies only the flags the user set onto the editor's draft.
func (f *planFlags) apply(cmd *cobra.Command, e *console.PlanEditor) error {
	changed := cmd.Flags().Changed
	steps := []struct {
		flag string
		set  func() error
	}{
		{"name", func() error { return e.SetName(f.name) }},
		{"price", func() error { return e.SetPrice(f.price) }},
		{"amount", func() error { return e.SetAmount(f.amount) }},
		{"duration", func() error { return e.SetDuration(f.duration) }},
		{"type", func() error { return e.SetSubscriptionType(f.subType) }},
		{"feature", func() error { return e.SetFeatures(f.features) }},
		{"popular", func() error { return e.SetPopular(f.popular) }},
	}
	for _, s := range steps {
		if !changed(s.flag) {
			continue
		}
		if err := s.set(); err != nil {
			return err
		}
	}
	return nil
}

func plansCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "plans",
		Short: "Manage subscription plans",
	}
	cmd.AddCommand(planListCmd(a), planShowCmd(a), planCreateCmd(a), planUpdateCmd(a), planDeleteCmd(a))
	return cmd
}

func planListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List plans",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := a.authed()
			if err != nil {
				return err
			}
			plans, err := client.ListPlans(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if done, err := render(out, a.format, plans); done {
				return err
			}
			if len(plans) == 0 {
				fmt.Fprintln(out, "No plans found")
				return nil
			}
			t := newTable(out, "ID", "NAME", "PRICE", "AMOUNT", "TYPE", "MONTHS", "POPULAR")
			for _, p := range plans {
				popular := ""
				if p.Popular {
					popular = "yes"
				}
				t.row(p.ID.String(), p.Name, orDash(p.Price), money(p.Amount), orDash(p.SubscriptionType),
					fmt.Sprint(p.DurationInMonths), popular)
			}
			return t.flush()
		},
	}
}

func planShowCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show <plan-id>",
		Short: "Show one plan with its features",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parsePlanID(args[0])
			if err != nil {
				return err
			}
			client, err := a.authed()
			if err != nil {
				return err
			}
			p, err := client.GetPlan(cmd.Context(), id)
			if err != nil {
				return err
			}
			if done, err := render(cmd.OutOrStdout(), a.format, p); done {
				return err
			}
			printPlan(cmd, p)
			return nil
		},
	}
}

func planCreateCmd(a *app) *cobra.Command {
	var f planFlags
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a plan",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(f.name) == "" {
				return fmt.Errorf("--name is required")
			}
			client, err := a.authed()
			if err != nil {
				return err
			}
			p, err := client.CreatePlan(cmd.Context(), f.draft())
			if err != nil {
				return err
			}
			if done, err := render(cmd.OutOrStdout(), a.format, p); done {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created plan %s\n", p.ID)
			return nil
		},
	}
	f.register(cmd)
	return cmd
}

func planUpdateCmd(a *app) *cobra.Command {
	var f planFlags
	cmd := &cobra.Command{
		Use:   "update <plan-id>",
		Short: "Change fields of a plan",
		Long: `Loads the plan, applies only the flags given on the command line and saves
the whole record back.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parsePlanID(args[0])
			if err != nil {
				return err
			}
			client, err := a.authed()
			if err != nil {
				return err
			}
			current, err := client.GetPlan(cmd.Context(), id)
			if err != nil {
				return err
			}

			editor := console.NewPlanEditor(client)
			editor.Begin(*current)
			if err := f.apply(cmd, editor); err != nil {
				return err
			}
			saved, err := editor.Save(cmd.Context())
			if err != nil {
				return err
			}
			if done, err := render(cmd.OutOrStdout(), a.format, saved); done {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated plan %s\n", saved.ID)
			return nil
		},
	}
	f.register(cmd)
	return cmd
}

func planDeleteCmd(a *app) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "delete <plan-id>",
		Short: "Delete a plan after confirmation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parsePlanID(args[0])
			if err != nil {
				return err
			}
			client, err := a.authed()
			if err != nil {
				return err
			}

			editor := console.NewPlanEditor(client)
			err = editor.Delete(cmd.Context(), id, func() bool {
				return yes || a.confirm(cmd, fmt.Sprintf("Delete plan %s?", id))
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted plan %s\n", id)
			return nil
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip the confirmation prompt")
	return cmd
}

func parsePlanID(s string) (uuid.UUID, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid plan id %q", s)
	}
	return id, nil
}

func printPlan(cmd *cobra.Command, p *plan.Plan) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s (%s)\n", p.Name, p.ID)
	fmt.Fprintf(out, "  price:    %s\n", orDash(p.Price))
	fmt.Fprintf(out, "  amount:   %s\n", money(p.Amount))
	fmt.Fprintf(out, "  type:     %s\n", orDash(p.SubscriptionType))
	fmt.Fprintf(out, "  months:   %d\n", p.DurationInMonths)
	fmt.Fprintf(out, "  popular:  %t\n", p.Popular)
	if len(p.Features) > 0 {
		fmt.Fprintln(out, "  features:")
		for _, feat := range p.Features {
			fmt.Fprintf(out, "    - %s\n", feat)
		}
	}
}
