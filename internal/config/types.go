package config

// Backends.
const (
	BackendDevnet = "devnet"
	BackendChain  = "chain"
)

// Config holds all w3pool configuration.
type Config struct {
	Backend       string `json:"backend"`           // "devnet" | "chain"
	RPCURL        string `json:"rpc_url,omitempty"` // chain backend JSON-RPC endpoint
	ChainID       uint64 `json:"chain_id,omitempty"`
	DefaultWallet string `json:"default_wallet,omitempty"`
	WatchInterval int    `json:"watch_interval"` // seconds

	// internal: config dir path used for Save()
	configDir string
}

// PoolFile is the structure of pool.json: the pool's identity and its
// approval registry between runs. Revoked assets keep an explicit false so
// a restored registry can override the construction-time default.
type PoolFile struct {
	Owner     string          `json:"owner"`
	Account   string          `json:"account"`
	Wrapped   string          `json:"wrapped"`
	Approvals map[string]bool `json:"approvals,omitempty"`
	CreatedAt string          `json:"created_at"`
}

// Initialized reports whether pool.json describes a live pool.
func (p *PoolFile) Initialized() bool {
	return p != nil && p.Owner != "" && p.Account != ""
}
