package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Mohsinsiddi/w3pool/internal/pool"
	"github.com/Mohsinsiddi/w3pool/internal/ui"
)

var (
	eventsLimit int
	eventsType  string
)

var eventsCmd = &cobra.Command{
	Use:   "events",
	Short: "Show the pool's event journal",
	Long: `List committed pool events in order: donations received, claims paid
out, and approval changes. Every successful mutation appends exactly one
entry to the journal; failed operations leave no trace.

Examples:
  w3pool events
  w3pool events --limit 50
  w3pool events --type claim`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		s, err := openSession(ctx, nil)
		if err != nil {
			return err
		}

		all, err := s.journal.All()
		if err != nil {
			return err
		}
		list := all
		if eventsType != "" {
			want, err := eventTypeFilter(eventsType)
			if err != nil {
				return err
			}
			list = nil
			for _, ev := range all {
				if ev.Type == want {
					list = append(list, ev)
				}
			}
		}
		if eventsLimit > 0 && len(list) > eventsLimit {
			list = list[len(list)-eventsLimit:]
		}

		if len(list) == 0 {
			fmt.Println(ui.Info("No events recorded yet — donations, claims and approvals will appear here."))
			return nil
		}

		t := ui.NewTable([]ui.Column{
			{Title: "When", Width: 16},
			{Title: "Type", Width: 10},
			{Title: "Asset", Width: 10},
			{Title: "Amount", Width: 18},
			{Title: "Party", Width: 14},
		})
		for _, ev := range list {
			t.AddRow(eventRow(ctx, s, ev))
		}
		fmt.Println(t.Render())
		fmt.Println(ui.Meta(fmt.Sprintf("%d shown · %d recorded", len(list), len(all))))
		return nil
	},
}

// eventRow renders one journal entry for the table.
func eventRow(ctx context.Context, s *poolSession, ev pool.Event) ui.Row {
	sym := ui.TruncateAddr(ev.Asset.Hex())
	decimals := uint8(nativeDecimals)
	if m, err := s.assetMeta(ctx, ev.Asset); err == nil {
		sym = m.Symbol
		decimals = m.Decimals
	}

	var kind, amount, party string
	switch ev.Type {
	case pool.EventDonationReceived:
		kind = "donation"
		amount = formatUnits(ev.Amount, decimals)
		party = ui.TruncateAddr(ev.Donor.Hex())
	case pool.EventDonationClaimed:
		kind = "claim"
		amount = formatUnits(ev.Amount, decimals)
		party = ui.TruncateAddr(ev.Recipient.Hex())
	case pool.EventApprovalChanged:
		kind = "approval"
		amount = "revoked"
		if ev.Approved != nil && *ev.Approved {
			amount = "granted"
		}
		party = "—"
	default:
		kind = ev.Type
		party = "—"
	}
	return ui.Row{ev.Time.Local().Format("2006-01-02 15:04"), kind, sym, amount, party}
}

// eventTypeFilter maps the --type flag to a journal event type.
func eventTypeFilter(s string) (string, error) {
	switch s {
	case "donation", "donations":
		return pool.EventDonationReceived, nil
	case "claim", "claims":
		return pool.EventDonationClaimed, nil
	case "approval", "approvals":
		return pool.EventApprovalChanged, nil
	}
	return "", fmt.Errorf("unknown event type %q (want donation, claim or approval)", s)
}

func init() {
	eventsCmd.Flags().IntVar(&eventsLimit, "limit", 20, "max events to display (0 = all)")
	eventsCmd.Flags().StringVar(&eventsType, "type", "", "filter: donation, claim or approval")
}
