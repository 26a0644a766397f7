package events

import (
	"context"
	"time"
)

// Follower tails a journal and replays new entries into a broker. It lets a
// read-only process (the serve daemon, the watch screen) see events written
// by other processes.
type Follower struct {
	log      *Log
	broker   *Broker
	interval time.Duration
	offset   int
}

// NewFollower creates a follower that starts at the current end of the
// journal.
func NewFollower(log *Log, broker *Broker, interval time.Duration) (*Follower, error) {
	if interval <= 0 {
		interval = time.Second
	}
	existing, err := log.All()
	if err != nil {
		return nil, err
	}
	return &Follower{
		log:      log,
		broker:   broker,
		interval: interval,
		offset:   len(existing),
	}, nil
}

// Run polls the journal until the context is done. Read failures are
// retried on the next tick.
func (f *Follower) Run(ctx context.Context) error {
	ticker := time.NewTicker(f.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			f.poll()
		}
	}
}

func (f *Follower) poll() {
	all, err := f.log.All()
	if err != nil {
		return
	}
	if len(all) < f.offset {
		// Journal was truncated or replaced; start over from its head.
		f.offset = 0
	}
	for _, ev := range all[f.offset:] {
		f.broker.Record(ev)
	}
	f.offset = len(all)
}
