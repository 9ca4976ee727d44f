package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/vanshika/referralnet/internal/domain"
)

func treeCmd() *cobra.Command {
	var (
		collapse bool
		toggles  []string
		all      bool
		watch    time.Duration
	)
	cmd := &cobra.Command{
		Use:   "tree",
		Short: "Print your referral network as an indented tree",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			printTree := func() error {
				view, err := loadView(ctx)
				if err != nil {
					return err
				}
				if collapse {
					view.CollapseAll()
				}
				for _, id := range toggles {
					if _, ok := view.Forest.Find(id); !ok {
						fmt.Fprintf(cmd.ErrOrStderr(), "unknown referral %q ignored\n", id)
					}
					view.Toggle(id)
				}

				rows := view.VisibleRows()
				if all {
					rows = view.Rows()
				}
				renderTree(cmd.OutOrStdout(), rows)
				if len(view.Diagnostics) > 0 {
					fmt.Fprintf(cmd.ErrOrStderr(), "%d malformed entries were repaired or skipped\n", len(view.Diagnostics))
				}
				return nil
			}
			if watch <= 0 {
				return printTree()
			}
			return repeat(ctx, watch, cmd.OutOrStdout(), printTree)
		},
	}
	cmd.Flags().BoolVar(&collapse, "collapse", false, "start with every referral collapsed")
	cmd.Flags().StringSliceVar(&toggles, "toggle", nil, "referral IDs whose expansion to flip (repeatable)")
	cmd.Flags().BoolVar(&all, "all", false, "also print rows hidden under collapsed referrals")
	cmd.Flags().DurationVar(&watch, "watch", 0, "refetch and reprint at this interval until interrupted")
	return cmd
}

// repeat runs fn every interval until ctx is done. Each run rebuilds the view
// from a fresh fetch.
func repeat(ctx context.Context, interval time.Duration, w io.Writer, fn func() error) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		if err := fn(); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			fmt.Fprintf(w, "--- %s\n", time.Now().Format(time.TimeOnly))
		}
	}
}

func statsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Summarise each direct referral's team",
		RunE: func(cmd *cobra.Command, args []string) error {
			view, err := loadView(cmd.Context())
			if err != nil {
				return err
			}
			renderTeams(cmd.OutOrStdout(), view.Teams())
			return nil
		},
	}
}

func whoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the account behind the saved session",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, profile, err := authenticate(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s <%s>  %s  referral code %s\n",
				profile.User.Name, profile.User.Email, profile.User.ID, profile.ReferralCode)
			return nil
		},
	}
}

func dashboardCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "dashboard",
		Short: "Show your incomes, referral code and team totals",
		RunE: func(cmd *cobra.Command, args []string) error {
			token, _, err := authenticate(cmd.Context())
			if err != nil {
				return err
			}
			dash, err := client.Dashboard(cmd.Context(), token)
			if errors.Is(err, domain.ErrUnauthenticated) {
				return errLoginRequired
			}
			if err != nil {
				return err
			}
			renderDashboard(cmd.OutOrStdout(), dash)
			return nil
		},
	}
}
