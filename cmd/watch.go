package cmd

import (
	"context"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/Mohsinsiddi/w3pool/internal/events"
	"github.com/Mohsinsiddi/w3pool/internal/pool"
	"github.com/Mohsinsiddi/w3pool/internal/ui"
)

var watchReplay int

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Stream pool events live",
	Long: `Follow the pool's event journal in a live TUI feed.

Donations, claims and approval changes committed by any process sharing
this pool — the CLI, the serve daemon, another terminal — appear as they
land in the journal. The feed opens with the most recent entries and then
tails new ones.

Keyboard controls:
  ↑↓ / j k   navigate rows
  c          copy selected asset address
  q          quit

Examples:
  w3pool watch
  w3pool watch --replay 50`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		s, err := openSession(ctx, nil)
		if err != nil {
			return err
		}

		broker := events.NewBroker()
		follower, err := events.NewFollower(s.journal, broker, time.Second)
		if err != nil {
			return err
		}
		sub, unsub := broker.Subscribe()
		defer unsub()

		m := ui.FeedModel{
			Account: s.pool.Account().Hex(),
			Backend: cfg.Backend,
			Status:  ui.FeedStatusMsg{Fetching: true},
		}
		// Seed with the newest journal entries; the follower only replays
		// entries appended after this point, so nothing shows up twice.
		if watchReplay > 0 {
			recent, err := s.journal.Tail(watchReplay)
			if err != nil {
				return err
			}
			for _, ev := range recent {
				m.Rows = append([]ui.FeedEventMsg{feedMsg(ctx, s, ev)}, m.Rows...)
			}
		}

		prog := tea.NewProgram(m, tea.WithInput(os.Stdin), tea.WithOutput(os.Stdout))

		go func() { _ = follower.Run(ctx) }()
		go func() {
			for ev := range sub {
				prog.Send(feedMsg(ctx, s, ev))
			}
		}()

		_, err = prog.Run()
		return err
	},
}

// feedMsg converts a journal entry into a feed row.
func feedMsg(ctx context.Context, s *poolSession, ev pool.Event) ui.FeedEventMsg {
	sym := ui.TruncateAddr(ev.Asset.Hex())
	decimals := uint8(nativeDecimals)
	if m, err := s.assetMeta(ctx, ev.Asset); err == nil {
		sym = m.Symbol
		decimals = m.Decimals
	}

	msg := ui.FeedEventMsg{
		Asset:  ev.Asset.Hex(),
		Symbol: sym,
		When:   ev.Time,
	}
	switch ev.Type {
	case pool.EventDonationReceived:
		msg.Kind = "donation"
		msg.AmountStr = formatUnits(ev.Amount, decimals)
		msg.Party = ui.TruncateAddr(ev.Donor.Hex())
	case pool.EventDonationClaimed:
		msg.Kind = "claim"
		msg.AmountStr = formatUnits(ev.Amount, decimals)
		msg.Party = ui.TruncateAddr(ev.Recipient.Hex())
	case pool.EventApprovalChanged:
		msg.Kind = "approval"
		msg.Approved = "revoked"
		if ev.Approved != nil && *ev.Approved {
			msg.Approved = "granted"
		}
	}
	return msg
}

func init() {
	watchCmd.Flags().IntVar(&watchReplay, "replay", 20, "journal entries to show at start (0 = none)")
}
