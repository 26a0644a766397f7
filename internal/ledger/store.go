package ledger

import (
	"encoding/json"
	"fmt"
	"math/big"
	"os"
	"sort"

	"github.com/ethereum/go-ethereum/common"
)

// State is the serialized form of a ledger. Amounts are decimal strings so
// the JSON survives tools that parse numbers as floats.
type State struct {
	Native  map[string]string `json:"native,omitempty"`
	Wrapped string            `json:"wrapped,omitempty"`
	Deploys uint64            `json:"deploys,omitempty"`
	Tokens  []TokenState      `json:"tokens,omitempty"`
}

// TokenState is the serialized form of one deployed token.
type TokenState struct {
	Address    string                       `json:"address"`
	Symbol     string                       `json:"symbol"`
	Decimals   uint8                        `json:"decimals"`
	Balances   map[string]string            `json:"balances,omitempty"`
	Allowances map[string]map[string]string `json:"allowances,omitempty"`
}

// Store is an interface for persisting ledger state.
type Store interface {
	Load() (*State, error)
	Save(*State) error
}

// Snapshot captures the current state for persistence.
func (l *Ledger) Snapshot() *State {
	l.mu.Lock()
	defer l.mu.Unlock()

	st := &State{
		Native:  make(map[string]string, len(l.native)),
		Deploys: l.deploys,
	}
	if l.wrapped != (common.Address{}) {
		st.Wrapped = l.wrapped.Hex()
	}
	for addr, bal := range l.native {
		if bal.Sign() != 0 {
			st.Native[addr.Hex()] = bal.String()
		}
	}
	for addr, tok := range l.tokens {
		ts := TokenState{
			Address:    addr.Hex(),
			Symbol:     tok.symbol,
			Decimals:   tok.decimals,
			Balances:   make(map[string]string),
			Allowances: make(map[string]map[string]string),
		}
		for holder, bal := range tok.balances {
			if bal.Sign() != 0 {
				ts.Balances[holder.Hex()] = bal.String()
			}
		}
		for owner, grants := range tok.allowances {
			for spender, granted := range grants {
				if granted.Sign() == 0 {
					continue
				}
				if ts.Allowances[owner.Hex()] == nil {
					ts.Allowances[owner.Hex()] = make(map[string]string)
				}
				ts.Allowances[owner.Hex()][spender.Hex()] = granted.String()
			}
		}
		st.Tokens = append(st.Tokens, ts)
	}
	sort.Slice(st.Tokens, func(i, j int) bool {
		return st.Tokens[i].Address < st.Tokens[j].Address
	})
	return st
}

// restore replaces the ledger contents with a saved state.
func (l *Ledger) restore(st *State) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.native = make(map[common.Address]*big.Int, len(st.Native))
	for addr, s := range st.Native {
		bal, err := parseAmount(s)
		if err != nil {
			return fmt.Errorf("native balance of %s: %w", addr, err)
		}
		l.native[common.HexToAddress(addr)] = bal
	}

	l.tokens = make(map[common.Address]*token, len(st.Tokens))
	for _, ts := range st.Tokens {
		tok := newToken(ts.Symbol, ts.Decimals)
		for holder, s := range ts.Balances {
			bal, err := parseAmount(s)
			if err != nil {
				return fmt.Errorf("%s balance of %s: %w", ts.Symbol, holder, err)
			}
			tok.balances[common.HexToAddress(holder)] = bal
		}
		for owner, grants := range ts.Allowances {
			for spender, s := range grants {
				granted, err := parseAmount(s)
				if err != nil {
					return fmt.Errorf("%s allowance %s -> %s: %w", ts.Symbol, owner, spender, err)
				}
				tok.allowance(common.HexToAddress(owner), common.HexToAddress(spender)).Set(granted)
			}
		}
		l.tokens[common.HexToAddress(ts.Address)] = tok
	}

	l.wrapped = common.Address{}
	if st.Wrapped != "" {
		l.wrapped = common.HexToAddress(st.Wrapped)
		if _, ok := l.tokens[l.wrapped]; !ok {
			return fmt.Errorf("%w: state names wrapped token %s", ErrUnknownToken, st.Wrapped)
		}
	}
	l.deploys = st.Deploys
	return nil
}

func parseAmount(s string) (*big.Int, error) {
	v, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return nil, fmt.Errorf("invalid amount %q", s)
	}
	return v, nil
}

// --- in-memory store ---

type memStore struct {
	state *State
}

func (s *memStore) Load() (*State, error) {
	return s.state, nil
}

func (s *memStore) Save(st *State) error {
	s.state = st
	return nil
}

// --- JSON file store ---

// JSONStore persists ledger state to a JSON file.
type JSONStore struct {
	path string
}

// NewJSONStore creates a JSON-backed ledger store.
func NewJSONStore(path string) *JSONStore {
	return &JSONStore{path: path}
}

func (s *JSONStore) Load() (*State, error) {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var st State
	if err := json.Unmarshal(data, &st); err != nil {
		return nil, err
	}
	return &st, nil
}

func (s *JSONStore) Save(st *State) error {
	data, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(s.path, data, 0o600)
}
