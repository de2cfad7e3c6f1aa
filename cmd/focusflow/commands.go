package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/dmitrymomot/focusflow/pkg/config"
	"github.com/dmitrymomot/focusflow/pkg/entitlement"
	"github.com/dmitrymomot/focusflow/pkg/pg"
	"github.com/dmitrymomot/focusflow/svc/store"
)

func newMigrateCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var pgCfg pg.Config
			if err := config.Load(&pgCfg); err != nil {
				return err
			}
			pool, err := pg.Connect(cmd.Context(), pgCfg)
			if err != nil {
				return err
			}
			defer pool.Close()
			return store.Migrate(cmd.Context(), pool, pgCfg, c.log)
		},
	}
}

func newPlansCmd() *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "plans",
		Short: "Print the plan catalog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return printPlans(cmd.OutOrStdout(), asJSON)
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print as JSON")
	return cmd
}

func printPlans(out io.Writer, asJSON bool) error {
	type plan struct {
		entitlement.PlanDescription
		Limits entitlement.FeatureSet `json:"limits"`
	}
	tiers := entitlement.Tiers()
	plans := make([]plan, 0, len(tiers))
	for _, t := range tiers {
		plans = append(plans, plan{PlanDescription: entitlement.Describe(t), Limits: entitlement.FeaturesFor(t)})
	}

	if asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(plans)
	}

	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "TIER\tPRICE\tSESSIONS/DAY\tSUPPORT\tCAPABILITIES")
	for _, p := range plans {
		sessions := "unlimited"
		if p.Limits.MaxFocusSessionsPerDay != entitlement.Unlimited {
			sessions = fmt.Sprint(p.Limits.MaxFocusSessionsPerDay)
		}
		caps := make([]string, 0, len(entitlement.Capabilities()))
		for _, c := range p.Limits.Granted() {
			caps = append(caps, string(c))
		}
		fmt.Fprintf(tw, "%s\t%d.%02d %s\t%s\t%s\t%s\n",
			p.Tier, p.Price.Amount/100, p.Price.Amount%100, p.Price.Currency,
			sessions, p.Limits.Support, strings.Join(caps, ","))
	}
	return tw.Flush()
}

func newAdminCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "admin",
		Short: "Manage administrators on behalf of the root admin",
	}

	promote := &cobra.Command{
		Use:   "promote <email>",
		Short: "Grant admin rights to a registered user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withApp(cmd.Context(), func(ctx context.Context, a *app) error {
				op, err := a.operator(ctx)
				if err != nil {
					return err
				}
				if err := a.svc.PromoteToAdmin(ctx, op, args[0]); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s is now an admin\n", args[0])
				return nil
			})
		},
	}

	demote := &cobra.Command{
		Use:   "demote <email|user-id>",
		Short: "Revoke admin rights",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withApp(cmd.Context(), func(ctx context.Context, a *app) error {
				op, err := a.operator(ctx)
				if err != nil {
					return err
				}
				target, err := a.lookupUser(ctx, args[0])
				if err != nil {
					return err
				}
				if err := a.svc.DemoteAdmin(ctx, op, target); err != nil {
					if errors.Is(err, entitlement.ErrProtectedAdmin) {
						return fmt.Errorf("%s is the root admin and cannot be demoted", args[0])
					}
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s is no longer an admin\n", args[0])
				return nil
			})
		},
	}

	bootstrap := &cobra.Command{
		Use:   "bootstrap",
		Short: "Flag ROOT_ADMIN_EMAIL as admin",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.withApp(cmd.Context(), func(ctx context.Context, a *app) error {
				return a.svc.BootstrapRootAdmin(ctx)
			})
		},
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List every subscription",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.withApp(cmd.Context(), func(ctx context.Context, a *app) error {
				op, err := a.operator(ctx)
				if err != nil {
					return err
				}
				subs, err := a.svc.ListSubscriptions(ctx, op)
				if err != nil {
					return err
				}
				return printSubscriptions(cmd.OutOrStdout(), subs)
			})
		},
	}

	cmd.AddCommand(promote, demote, bootstrap, list)
	return cmd
}

func printSubscriptions(out io.Writer, subs []entitlement.Subscription) error {
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "USER\tEMAIL\tTIER\tEFFECTIVE\tSTATUS\tADMIN")
	for _, s := range subs {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%t\n",
			s.UserID, s.Email, s.Tier, s.EffectiveTier(), s.Status, s.IsAdmin)
	}
	return tw.Flush()
}

func newTrialCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "trial",
		Short: "Manage trials",
	}

	var days int
	start := &cobra.Command{
		Use:   "start <email|user-id>",
		Short: "Start or restart a Pro trial",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withApp(cmd.Context(), func(ctx context.Context, a *app) error {
				id, err := a.lookupUser(ctx, args[0])
				if err != nil {
					return err
				}
				var sub entitlement.Subscription
				if days == 0 {
					sub, err = a.svc.StartDefaultTrial(ctx, id)
				} else {
					sub, err = a.svc.StartTrial(ctx, id, days)
				}
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "trial for %s ends %s\n", args[0], sub.TrialEndsAt.In(a.loc).Format("2006-01-02 15:04 MST"))
				return nil
			})
		},
	}
	start.Flags().IntVar(&days, "days", 0, "trial length in days (default DEFAULT_TRIAL_DAYS)")

	cmd.AddCommand(start)
	return cmd
}
