// pool-report: one-shot snapshot of a running w3pool daemon. Fetches status,
// per-asset balances and the latest journal entries in parallel and prints a
// summary table — cron-friendly, no TUI.
//
// Run from the module root with the daemon up (`w3pool serve`):
//
//	go run ./scripts/pool-report
//	go run ./scripts/pool-report http://pool-host:8546
package main

import (
	"encoding/json"
	"fmt"
	"math/big"
	"net/http"
	"os"
	"strings"
	"sync"
	"text/tabwriter"
	"time"

	"github.com/Mohsinsiddi/w3pool/internal/chain"
	"github.com/Mohsinsiddi/w3pool/internal/pool"
	"github.com/Mohsinsiddi/w3pool/internal/server"
)

// ── config ────────────────────────────────────────────────────────────────────

const (
	defaultBase = "http://127.0.0.1:8546"
	httpTimeout = 10 * time.Second
	eventCount  = 5
)

// ── API shapes ────────────────────────────────────────────────────────────────

// poolStatus mirrors the daemon's /api/v1/status payload.
type poolStatus struct {
	Service   string `json:"service"`
	Backend   string `json:"backend"`
	Owner     string `json:"owner"`
	Account   string `json:"account"`
	Wrapped   string `json:"wrapped"`
	Approved  int    `json:"approved_assets"`
	Events    int    `json:"events"`
	UptimeSec int64  `json:"uptime_seconds"`
}

// ── main ──────────────────────────────────────────────────────────────────────

func main() {
	base := defaultBase
	if addr := os.Getenv("W3POOL_SERVE_ADDR"); addr != "" {
		base = normalizeBase(addr)
	}
	if len(os.Args) > 1 {
		base = normalizeBase(os.Args[1])
	}

	client := &http.Client{Timeout: httpTimeout}

	var (
		status poolStatus
		assets []server.AssetInfo
		events []pool.Event
	)
	var statusErr, assetsErr, eventsErr error

	var wg sync.WaitGroup

	wg.Add(3)
	go func() {
		defer wg.Done()
		statusErr = fetchJSON(client, base+"/api/v1/status", &status)
	}()
	go func() {
		defer wg.Done()
		assetsErr = fetchJSON(client, base+"/api/v1/balances", &assets)
	}()
	go func() {
		defer wg.Done()
		eventsErr = fetchJSON(client, fmt.Sprintf("%s/api/v1/events?limit=%d", base, eventCount), &events)
	}()
	wg.Wait()

	if statusErr != nil {
		fmt.Fprintf(os.Stderr, "cannot reach the pool daemon at %s: %v\n", base, statusErr)
		fmt.Fprintln(os.Stderr, "start it with: w3pool serve")
		os.Exit(1)
	}

	fmt.Printf("\n  %s pool · %s backend · up %s\n\n",
		status.Service, status.Backend, (time.Duration(status.UptimeSec) * time.Second).String())

	w := tabwriter.NewWriter(os.Stdout, 2, 4, 2, ' ', 0)
	fmt.Fprintf(w, "  owner\t%s\n", status.Owner)
	fmt.Fprintf(w, "  account\t%s\n", status.Account)
	fmt.Fprintf(w, "  wrapped\t%s\n", status.Wrapped)
	fmt.Fprintf(w, "  approved assets\t%d\n", status.Approved)
	fmt.Fprintf(w, "  journal entries\t%d\n", status.Events)
	w.Flush()

	if assetsErr != nil {
		fmt.Fprintf(os.Stderr, "\nbalances unavailable: %v\n", assetsErr)
	} else {
		printAssets(assets, status.Wrapped)
	}

	if eventsErr != nil {
		fmt.Fprintf(os.Stderr, "\nevents unavailable: %v\n", eventsErr)
	} else {
		printEvents(events, assets)
	}
	fmt.Println()
}

// ── rendering ─────────────────────────────────────────────────────────────────

func printAssets(assets []server.AssetInfo, wrapped string) {
	fmt.Printf("\n  holdings (%d assets)\n\n", len(assets))

	w := tabwriter.NewWriter(os.Stdout, 2, 4, 2, ' ', 0)
	fmt.Fprintln(w, "  SYMBOL\tASSET\tBALANCE\tREGISTRY")
	for _, a := range assets {
		raw, ok := new(big.Int).SetString(a.Balance, 10)
		bal := a.Balance
		if ok {
			bal = chain.FormatUnits(raw, int(a.Decimals))
		}
		reg := "revoked"
		if a.Approved {
			reg = "approved"
		}
		sym := a.Symbol
		if strings.EqualFold(a.Asset, wrapped) {
			sym += " *"
		}
		fmt.Fprintf(w, "  %s\t%s\t%s\t%s\n", sym, a.Asset, bal, reg)
	}
	w.Flush()
	fmt.Println("\n  * wrapped native")
}

func printEvents(events []pool.Event, assets []server.AssetInfo) {
	if len(events) == 0 {
		fmt.Println("\n  no journal entries yet")
		return
	}
	decimals := make(map[string]uint8, len(assets))
	symbols := make(map[string]string, len(assets))
	for _, a := range assets {
		decimals[strings.ToLower(a.Asset)] = a.Decimals
		symbols[strings.ToLower(a.Asset)] = a.Symbol
	}

	fmt.Printf("\n  last %d events\n\n", len(events))
	w := tabwriter.NewWriter(os.Stdout, 2, 4, 2, ' ', 0)
	fmt.Fprintln(w, "  WHEN\tTYPE\tASSET\tDETAIL")
	for _, ev := range events {
		key := strings.ToLower(ev.Asset.Hex())
		sym, okSym := symbols[key]
		if !okSym {
			sym = shortAddr(ev.Asset.Hex())
		}

		var detail string
		switch ev.Type {
		case pool.EventDonationReceived:
			detail = fmt.Sprintf("%s from %s", formatAmount(ev.Amount, decimals[key], okSym), shortAddr(ev.Donor.Hex()))
		case pool.EventDonationClaimed:
			detail = fmt.Sprintf("%s to %s", formatAmount(ev.Amount, decimals[key], okSym), shortAddr(ev.Recipient.Hex()))
		case pool.EventApprovalChanged:
			detail = "revoked"
			if ev.Approved != nil && *ev.Approved {
				detail = "granted"
			}
		}
		fmt.Fprintf(w, "  %s\t%s\t%s\t%s\n",
			ev.Time.Local().Format("2006-01-02 15:04"), ev.Type, sym, detail)
	}
	w.Flush()
}

// ── helpers ───────────────────────────────────────────────────────────────────

func fetchJSON(client *http.Client, url string, out interface{}) error {
	resp, err := client.Get(url)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%s returned %s", url, resp.Status)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func normalizeBase(addr string) string {
	if strings.HasPrefix(addr, "http://") || strings.HasPrefix(addr, "https://") {
		return strings.TrimSuffix(addr, "/")
	}
	// Bare ":8546" or "host:8546" listen addresses work too.
	if strings.HasPrefix(addr, ":") {
		addr = "127.0.0.1" + addr
	}
	return "http://" + addr
}

func shortAddr(hex string) string {
	if len(hex) <= 12 {
		return hex
	}
	return hex[:6] + "…" + hex[len(hex)-4:]
}

// formatAmount renders base units using the asset's decimals when known,
// defaulting to 18 for assets the balance list doesn't cover.
func formatAmount(amount *big.Int, dec uint8, known bool) string {
	if amount == nil {
		return "0"
	}
	if !known {
		dec = 18
	}
	return chain.FormatUnits(amount, int(dec))
}
