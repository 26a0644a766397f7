package config

import "time"

// Fixed gas limits for the known-shape pool transactions. Conservative upper
// bounds; actual gas used will be lower. Payouts to arbitrary recipients
// estimate instead, since a contract recipient runs its receive code.
const (
	GasLimitNativeTransfer  = uint64(21_000)  // plain value transfer
	GasLimitTokenTransfer   = uint64(60_000)  // ERC-20 transfer / transferFrom
	GasLimitTokenApprove    = uint64(50_000)  // ERC-20 approve
	GasLimitWrappedDeposit  = uint64(50_000)  // wrapped-native deposit
	GasLimitWrappedWithdraw = uint64(60_000)  // wrapped-native withdraw
	GasLimitContractCall    = uint64(200_000) // generic contract state-change call
)

// Timeout constants used across cmd and server packages.
const (
	TxConfirmTimeout = 3 * time.Minute // standard transaction confirmation wait
	ServeStopTimeout = 5 * time.Second // daemon graceful shutdown window
)
