package pool

import (
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
)

// Event types.
const (
	EventApprovalChanged  = "approval_changed"
	EventDonationReceived = "donation_received"
	EventDonationClaimed  = "donation_claimed"
)

// Event is a committed pool state change. Exactly one event is recorded per
// successful mutating operation; failed operations record nothing.
type Event struct {
	Type      string         `json:"type"`
	Asset     common.Address `json:"asset"`
	Amount    *big.Int       `json:"amount,omitempty"`
	Donor     common.Address `json:"donor,omitempty"`
	Recipient common.Address `json:"recipient,omitempty"`
	Approved  *bool          `json:"approved,omitempty"`
	Time      time.Time      `json:"time"`
}

// Recorder receives events after the operation that produced them has
// fully committed.
type Recorder interface {
	Record(Event)
}

// RecorderFunc adapts a function to the Recorder interface.
type RecorderFunc func(Event)

func (f RecorderFunc) Record(ev Event) { f(ev) }

type nopRecorder struct{}

func (nopRecorder) Record(Event) {}

func boolPtr(b bool) *bool { return &b }
