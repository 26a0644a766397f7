package e2e_test

import (
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// keyringPassword unlocks the file-backend keyring in every spawned process,
// so wallet generation during init never prompts.
const keyringPassword = "e2e-keyring-pw"

var binaryPath string

func TestMain(m *testing.M) {
	// Build the binary before all E2E tests.
	tmp, err := os.MkdirTemp("", "w3pool-e2e-test")
	if err != nil {
		panic(err)
	}
	defer os.RemoveAll(tmp)

	binaryPath = filepath.Join(tmp, "w3pool")
	// Build from the module root (two levels up from test/e2e/).
	moduleRoot, err := filepath.Abs(filepath.Join("..", ".."))
	if err != nil {
		panic(err)
	}
	cmd := exec.Command("go", "build", "-o", binaryPath, ".")
	cmd.Dir = moduleRoot
	if out, err := cmd.CombinedOutput(); err != nil {
		panic("build failed: " + string(out))
	}

	os.Exit(m.Run())
}

func runCLI(t *testing.T, configDir string, args ...string) (string, error) {
	t.Helper()
	return runCLIStdin(t, configDir, "", args...)
}

func runCLIStdin(t *testing.T, configDir, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := exec.Command(binaryPath, args...)
	cmd.Env = append(os.Environ(),
		"W3POOL_CONFIG_DIR="+configDir,
		"W3POOL_KEYRING_PASSWORD="+keyringPassword,
	)
	if stdin != "" {
		cmd.Stdin = strings.NewReader(stdin)
	}
	out, err := cmd.CombinedOutput()
	return string(out), err
}

// initDevnetPool sets up a fresh devnet pool in its own config dir: owner
// wallet "owner" (seeded with native), pool wallet "pool", wrapped WDEV.
func initDevnetPool(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	out, err := runCLI(t, dir, "init", "--backend", "devnet")
	require.NoError(t, err, "init failed: %s", out)
	return dir
}

// ---------------------------------------------------------------------------
// Root command
// ---------------------------------------------------------------------------

func TestVersionFlag(t *testing.T) {
	dir := t.TempDir()
	out, err := runCLI(t, dir, "--version")
	require.NoError(t, err)
	assert.Contains(t, out, "w3pool")
	assert.Contains(t, out, "1.0.0")
}

func TestHelpListsCoreCommands(t *testing.T) {
	dir := t.TempDir()
	out, err := runCLI(t, dir, "--help")
	require.NoError(t, err)
	for _, sub := range []string{"init", "donate", "claim", "approve", "wallet", "balance", "events", "serve", "devnet"} {
		assert.Contains(t, strings.ToLower(out), sub, "help should list %s", sub)
	}
}

func TestUnknownCommandShowsError(t *testing.T) {
	dir := t.TempDir()
	out, _ := runCLI(t, dir, "unknowncommand")
	assert.Contains(t, strings.ToLower(out), "unknown command")
}

func TestCommandsRequirePool(t *testing.T) {
	dir := t.TempDir()
	out, err := runCLI(t, dir, "status")
	assert.Error(t, err)
	assert.Contains(t, out, "no pool configured")
	assert.Contains(t, out, "w3pool init")
}

// ---------------------------------------------------------------------------
// Init
// ---------------------------------------------------------------------------

func TestInitDevnet(t *testing.T) {
	dir := t.TempDir()
	out, err := runCLI(t, dir, "init", "--backend", "devnet")
	require.NoError(t, err, out)
	assert.Contains(t, out, "Pool Initialized")
	assert.Contains(t, out, "devnet")
	assert.Contains(t, out, "WDEV")
	assert.Contains(t, out, "Owner seeded with 100.000000000000000000 native")
}

func TestInitRefusesSecondPool(t *testing.T) {
	dir := initDevnetPool(t)
	out, err := runCLI(t, dir, "init", "--backend", "devnet")
	assert.Error(t, err)
	assert.Contains(t, out, "already exists")
	assert.Contains(t, out, "--force")
}

func TestInitForceReplacesPool(t *testing.T) {
	dir := initDevnetPool(t)
	out, err := runCLI(t, dir, "init", "--backend", "devnet", "--force")
	require.NoError(t, err, out)
	assert.Contains(t, out, "Pool Initialized")
	assert.Contains(t, out, "Reusing existing wallet")
}

func TestInitChainNeedsRPC(t *testing.T) {
	dir := t.TempDir()
	out, err := runCLI(t, dir, "init", "--backend", "chain")
	assert.Error(t, err)
	assert.Contains(t, out, "--rpc")
}

func TestInitUnknownBackend(t *testing.T) {
	dir := t.TempDir()
	out, err := runCLI(t, dir, "init", "--backend", "moonnet")
	assert.Error(t, err)
	assert.Contains(t, out, "unknown backend")
}

// ---------------------------------------------------------------------------
// Wallets
// ---------------------------------------------------------------------------

func TestWalletListAfterInit(t *testing.T) {
	dir := initDevnetPool(t)
	out, err := runCLI(t, dir, "wallet", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "owner")
	assert.Contains(t, out, "pool")
	assert.Contains(t, out, "read-write")
	assert.Contains(t, out, "2 wallet(s) configured")
}

func TestWalletAddWatchOnly(t *testing.T) {
	dir := initDevnetPool(t)
	out, err := runCLI(t, dir, "wallet", "add", "viewer", "0x1234567890abcdef1234567890abcdef12345678")
	require.NoError(t, err, out)
	assert.Contains(t, out, "Watch-only wallet")

	out, err = runCLI(t, dir, "wallet", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "viewer")
	assert.Contains(t, out, "watch-only")
}

func TestWalletAddSigningWithKey(t *testing.T) {
	dir := initDevnetPool(t)
	// Well-known devnet account #0: the address must be derived from the key.
	out, err := runCLI(t, dir, "wallet", "add", "donor",
		"--key", "ac0974bec39a17e36ba4a6b4d238ff944bacb478cbed5efcae784d7bf4f2ff80")
	require.NoError(t, err, out)
	assert.Contains(t, out, "Signing wallet")
	assert.Contains(t, out, "0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266")
}

func TestWalletRemove(t *testing.T) {
	dir := initDevnetPool(t)
	_, err := runCLI(t, dir, "wallet", "add", "w1", "0x1234567890abcdef1234567890abcdef12345678")
	require.NoError(t, err)

	// Auto-confirm the removal prompt via stdin.
	out, err := runCLIStdin(t, dir, "y\n", "wallet", "remove", "w1")
	require.NoError(t, err, out)

	out, err = runCLI(t, dir, "wallet", "list")
	require.NoError(t, err)
	assert.NotContains(t, out, "w1")
}

func TestWalletUse(t *testing.T) {
	dir := initDevnetPool(t)
	out, err := runCLI(t, dir, "wallet", "use", "pool")
	require.NoError(t, err, out)
	assert.Contains(t, out, `Default wallet set to "pool"`)
}

// ---------------------------------------------------------------------------
// Approval registry
// ---------------------------------------------------------------------------

func TestApprovalsShowWrappedFromStart(t *testing.T) {
	dir := initDevnetPool(t)
	out, err := runCLI(t, dir, "approvals")
	require.NoError(t, err)
	assert.Contains(t, out, "WDEV")
	assert.Contains(t, out, "approved")
	assert.Contains(t, out, "1 approved · 0 revoked")
}

func TestApproveAndRevoke(t *testing.T) {
	dir := initDevnetPool(t)
	_, err := runCLI(t, dir, "devnet", "deploy-token", "USDP", "6")
	require.NoError(t, err)

	out, err := runCLI(t, dir, "approve", "USDP")
	require.NoError(t, err, out)
	assert.Contains(t, out, "Approved USDP")

	out, err = runCLI(t, dir, "approvals")
	require.NoError(t, err)
	assert.Contains(t, out, "2 approved · 0 revoked")

	out, err = runCLI(t, dir, "approve", "USDP", "--revoke")
	require.NoError(t, err, out)
	assert.Contains(t, out, "Revoked USDP")

	out, err = runCLI(t, dir, "approvals")
	require.NoError(t, err)
	assert.Contains(t, out, "1 approved · 1 revoked")
}

func TestApproveRequiresOwner(t *testing.T) {
	dir := initDevnetPool(t)
	_, err := runCLI(t, dir, "devnet", "deploy-token", "USDP", "6")
	require.NoError(t, err)

	out, err := runCLI(t, dir, "approve", "USDP", "--wallet", "pool")
	assert.Error(t, err)
	assert.Contains(t, out, "not the pool owner")
}

// ---------------------------------------------------------------------------
// Devnet helpers
// ---------------------------------------------------------------------------

func TestDevnetDeployMintAndListTokens(t *testing.T) {
	dir := initDevnetPool(t)

	out, err := runCLI(t, dir, "devnet", "deploy-token", "USDP", "6")
	require.NoError(t, err, out)
	assert.Contains(t, out, "Deployed USDP")
	assert.Contains(t, out, "w3pool approve USDP")

	out, err = runCLI(t, dir, "devnet", "mint", "USDP", "owner", "1000")
	require.NoError(t, err, out)
	assert.Contains(t, out, "Minted 1000 USDP")

	out, err = runCLI(t, dir, "devnet", "tokens")
	require.NoError(t, err)
	assert.Contains(t, out, "USDP")
	assert.Contains(t, out, "WDEV ◈")
	assert.Contains(t, out, "◈ wrapped native")
}

func TestDevnetFund(t *testing.T) {
	dir := initDevnetPool(t)
	out, err := runCLI(t, dir, "devnet", "fund", "owner", "50")
	require.NoError(t, err, out)
	// 100 seeded at init + 50 here.
	assert.Contains(t, out, "balance now 150.000000000000000000")
}

func TestDevnetDeployRejectsBadDecimals(t *testing.T) {
	dir := initDevnetPool(t)
	out, err := runCLI(t, dir, "devnet", "deploy-token", "BAD", "99")
	assert.Error(t, err)
	assert.Contains(t, out, "decimals must be an integer between 0 and 36")
}

func TestDevnetRefusesChainBackend(t *testing.T) {
	dir := t.TempDir()
	_, err := runCLI(t, dir, "init", "--backend", "chain",
		"--rpc", "http://127.0.0.1:1",
		"--wrapped", "0xC02aaA39b223FE8D0A0e5C4F27eAD9083C756Cc2")
	require.NoError(t, err)

	out, err := runCLI(t, dir, "devnet", "fund", "owner", "1")
	assert.Error(t, err)
	assert.Contains(t, out, "only works on the devnet backend")
}

// ---------------------------------------------------------------------------
// Donations
// ---------------------------------------------------------------------------

func TestDonateNative(t *testing.T) {
	dir := initDevnetPool(t)

	out, err := runCLI(t, dir, "donate", "--native", "1", "--yes")
	require.NoError(t, err, out)
	assert.Contains(t, out, "Donated 1.000000000000000000 WDEV")

	// Native wraps on arrival, so the pool holds wrapped tokens.
	out, err = runCLI(t, dir, "balance")
	require.NoError(t, err)
	assert.Contains(t, out, "Pool Balance")
	assert.Contains(t, out, "1.000000000000000000")
}

func TestDonateNativeInsufficientFunds(t *testing.T) {
	dir := initDevnetPool(t)
	out, err := runCLI(t, dir, "donate", "--native", "500", "--yes")
	assert.Error(t, err)
	assert.Contains(t, out, "w3pool devnet fund")
}

func TestDonateTokenNeedsAllowance(t *testing.T) {
	dir := initDevnetPool(t)
	_, err := runCLI(t, dir, "devnet", "deploy-token", "USDP", "6")
	require.NoError(t, err)
	_, err = runCLI(t, dir, "devnet", "mint", "USDP", "owner", "1000")
	require.NoError(t, err)
	_, err = runCLI(t, dir, "approve", "USDP")
	require.NoError(t, err)

	// No allowance granted yet: the preflight names the fix.
	out, err := runCLI(t, dir, "donate", "--token", "USDP", "--amount", "250", "--yes")
	assert.Error(t, err)
	assert.Contains(t, out, "w3pool token approve")

	out, err = runCLI(t, dir, "token", "approve", "USDP", "500")
	require.NoError(t, err, out)
	assert.Contains(t, out, "Pool may now draw up to 500.000000 USDP")

	out, err = runCLI(t, dir, "donate", "--token", "USDP", "--amount", "250", "--yes")
	require.NoError(t, err, out)
	assert.Contains(t, out, "Donated 250.000000 USDP")
}

func TestDonateUnapprovedTokenRejected(t *testing.T) {
	dir := initDevnetPool(t)
	_, err := runCLI(t, dir, "devnet", "deploy-token", "FOO", "18")
	require.NoError(t, err)
	_, err = runCLI(t, dir, "devnet", "mint", "FOO", "owner", "10")
	require.NoError(t, err)
	_, err = runCLI(t, dir, "token", "approve", "FOO", "10")
	require.NoError(t, err)

	out, err := runCLI(t, dir, "donate", "--token", "FOO", "--amount", "5", "--yes")
	assert.Error(t, err)
	assert.Contains(t, out, "not approved")
	assert.Contains(t, out, "w3pool approve")
}

func TestDonateNothingGiven(t *testing.T) {
	dir := initDevnetPool(t)
	out, err := runCLI(t, dir, "donate", "--yes")
	assert.Error(t, err)
	assert.Contains(t, out, "nothing to donate")
}

// ---------------------------------------------------------------------------
// Claims
// ---------------------------------------------------------------------------

func TestClaimFullWrappedPaysNative(t *testing.T) {
	dir := initDevnetPool(t)
	_, err := runCLI(t, dir, "donate", "--native", "2", "--yes")
	require.NoError(t, err)

	out, err := runCLI(t, dir, "claim", "wrapped", "--yes")
	require.NoError(t, err, out)
	assert.Contains(t, out, "Claimed 2.000000000000000000 WDEV")
	assert.Contains(t, out, "paid out as native currency")
}

func TestClaimPartialToken(t *testing.T) {
	dir := initDevnetPool(t)
	_, err := runCLI(t, dir, "devnet", "deploy-token", "USDP", "6")
	require.NoError(t, err)
	_, err = runCLI(t, dir, "devnet", "mint", "USDP", "owner", "1000")
	require.NoError(t, err)
	_, err = runCLI(t, dir, "approve", "USDP")
	require.NoError(t, err)
	_, err = runCLI(t, dir, "token", "approve", "USDP", "1000")
	require.NoError(t, err)
	_, err = runCLI(t, dir, "donate", "--token", "USDP", "--amount", "400", "--yes")
	require.NoError(t, err)

	out, err := runCLI(t, dir, "claim", "USDP", "--amount", "150", "--yes")
	require.NoError(t, err, out)
	assert.Contains(t, out, "Claimed 150.000000 USDP")

	out, err = runCLI(t, dir, "balance", "USDP")
	require.NoError(t, err)
	assert.Contains(t, out, "250.000000")
}

func TestClaimRequiresOwner(t *testing.T) {
	dir := initDevnetPool(t)
	_, err := runCLI(t, dir, "donate", "--native", "1", "--yes")
	require.NoError(t, err)

	out, err := runCLI(t, dir, "claim", "wrapped", "--yes", "--wallet", "pool")
	assert.Error(t, err)
	assert.Contains(t, out, "claims require the owner wallet")
}

func TestClaimEmptyPool(t *testing.T) {
	dir := initDevnetPool(t)
	out, err := runCLI(t, dir, "claim", "wrapped", "--yes")
	assert.Error(t, err)
	assert.Contains(t, out, "pool holds no WDEV")
}

// ---------------------------------------------------------------------------
// Journal and status
// ---------------------------------------------------------------------------

func TestEventsJournal(t *testing.T) {
	dir := initDevnetPool(t)
	_, err := runCLI(t, dir, "devnet", "deploy-token", "USDP", "6")
	require.NoError(t, err)
	_, err = runCLI(t, dir, "donate", "--native", "1", "--yes")
	require.NoError(t, err)
	_, err = runCLI(t, dir, "approve", "USDP")
	require.NoError(t, err)
	_, err = runCLI(t, dir, "claim", "wrapped", "--yes")
	require.NoError(t, err)

	out, err := runCLI(t, dir, "events")
	require.NoError(t, err)
	assert.Contains(t, out, "donation")
	assert.Contains(t, out, "approval")
	assert.Contains(t, out, "claim")
	assert.Contains(t, out, "3 shown · 3 recorded")

	out, err = runCLI(t, dir, "events", "--type", "claim")
	require.NoError(t, err)
	assert.Contains(t, out, "1 shown · 3 recorded")
	assert.NotContains(t, out, "donation")
}

func TestEventsEmptyJournal(t *testing.T) {
	dir := initDevnetPool(t)
	out, err := runCLI(t, dir, "events")
	require.NoError(t, err)
	assert.Contains(t, out, "No events recorded yet")
}

func TestEventsUnknownTypeFilter(t *testing.T) {
	dir := initDevnetPool(t)
	out, err := runCLI(t, dir, "events", "--type", "refund")
	assert.Error(t, err)
	assert.Contains(t, out, "unknown event type")
}

func TestStatusOverview(t *testing.T) {
	dir := initDevnetPool(t)
	_, err := runCLI(t, dir, "donate", "--native", "1", "--yes")
	require.NoError(t, err)

	out, err := runCLI(t, dir, "status")
	require.NoError(t, err)
	assert.Contains(t, out, "Pool Status")
	assert.Contains(t, out, "devnet")
	assert.Contains(t, out, "WDEV")
	assert.Contains(t, out, "1 approved, 0 revoked")
	assert.Contains(t, out, "1 recorded")
}

// ---------------------------------------------------------------------------
// Utilities
// ---------------------------------------------------------------------------

func TestChecksumCommand(t *testing.T) {
	dir := t.TempDir()
	out, err := runCLI(t, dir, "checksum", "0xd8da6bf26964af9d7eed9e03e53415d37aa96045")
	require.NoError(t, err)
	assert.Contains(t, out, "0xd8dA6BF26964aF9D7eEd9e03E53415D37aA96045")
}

func TestChecksumRejectsBadLength(t *testing.T) {
	dir := t.TempDir()
	out, err := runCLI(t, dir, "checksum", "0x1234")
	assert.Error(t, err)
	assert.Contains(t, out, "invalid address length")
}
