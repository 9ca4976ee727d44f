package commands

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/shopspring/decimal"

	"github.com/vanshika/referralnet/internal/domain"
	"github.com/vanshika/referralnet/internal/expansion"
)

const emptyNetworkMessage = "No referrals yet."

func renderTree(w io.Writer, rows []expansion.Row) {
	if len(rows) == 0 {
		fmt.Fprintln(w, emptyNetworkMessage)
		return
	}
	for _, row := range rows {
		marker := "•"
		if row.HasChildren {
			marker = "▸"
			if row.Expanded {
				marker = "▾"
			}
		}
		line := fmt.Sprintf("%s%s %s <%s>  income %s",
			strings.Repeat("  ", row.Depth), marker, row.User.Name, row.User.Email, money(row.User.TotalIncome))
		if row.HasChildren {
			line += fmt.Sprintf("  team %d / %s", row.SubtreeSize, money(row.SubtreeIncome))
		}
		if !row.Visible {
			line += "  (hidden)"
		}
		fmt.Fprintln(w, line)
	}
}

func renderTeams(w io.Writer, teams []domain.TeamSummary) {
	if len(teams) == 0 {
		fmt.Fprintln(w, emptyNetworkMessage)
		return
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "REFERRAL\tID\tDIRECT\tTEAM\tDEPTH\tINCOME")
	size := 0
	income := decimal.Zero
	for _, t := range teams {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%d\t%s\n", t.RootName, t.RootID, t.DirectRecruit, t.TeamSize, t.MaxDepth, money(t.TeamIncome))
		size += t.TeamSize
		income = income.Add(decimal.NewFromFloat(t.TeamIncome))
	}
	fmt.Fprintf(tw, "TOTAL\t\t%d\t%d\t\t%s\n", len(teams), size, income.StringFixed(2))
	_ = tw.Flush()
}

func money(v float64) string {
	return decimal.NewFromFloat(v).StringFixed(2)
}

func renderDashboard(w io.Writer, dash domain.Dashboard) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Account\t%s <%s>\n", dash.User.Name, dash.User.Email)
	fmt.Fprintf(tw, "Referral code\t%s\n", dash.ReferralCode)
	fmt.Fprintf(tw, "ROI income\t%s\n", money(dash.User.ROIIncome))
	fmt.Fprintf(tw, "Level income\t%s\n", money(dash.User.LevelIncome))
	fmt.Fprintf(tw, "Total income\t%s\n", money(dash.User.TotalIncome))
	fmt.Fprintf(tw, "Team\t%d members, %s\n", dash.TeamSize, money(dash.TeamIncome))
	_ = tw.Flush()
	fmt.Fprintln(w)
	renderTeams(w, dash.Teams)
}
