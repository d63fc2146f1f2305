package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"time"

	"github.com/iudanet/zonesync/internal/models"
)

// RunWatch follows every zone until ctx is cancelled (or --for elapses),
// printing transitions and conflicts and persisting each snapshot.
func (c *Cli) RunWatch(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("watch", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	duration := fs.Duration("for", 0, "stop after this long")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %v", ErrUsage, err)
	}
	if fs.NArg() > 0 {
		return fmt.Errorf("%w: watch takes no arguments", ErrUsage)
	}

	if *duration > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, *duration)
		defer cancel()
	}

	s, err := c.newSession(ctx)
	if err != nil {
		return err
	}

	unsubscribeState := s.engine.OnStateChange(func(zoneID string, state models.ZoneSyncState) {
		c.io.Println(formatState(state))
		c.persist(state)
	})
	defer unsubscribeState()

	unsubscribeConflict := s.engine.OnConflict(func(conflict models.ZoneConflict) {
		c.io.Println(formatConflict(conflict))
	})
	defer unsubscribeConflict()

	c.io.Println("=== Watching zones ===")
	if c.io.Interactive() {
		c.io.Println("Press Ctrl+C to stop.")
	}
	c.io.Println()

	s.start()
	<-ctx.Done()

	defer s.engine.Close()
	if err := s.stopTransport(); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("transport failed: %w", err)
	}

	c.io.Println()
	c.io.Printf("Stopped. %d zone(s), %d conflict(s) in this session, latency compensation %s\n",
		len(s.engine.ZoneIDs()),
		len(s.engine.Conflicts()),
		s.engine.LatencyCompensation().Round(time.Millisecond))

	return nil
}

// persist stores the snapshot; failures only cost the offline status view.
func (c *Cli) persist(state models.ZoneSyncState) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := c.store.SaveZoneSnapshot(ctx, state); err != nil {
		c.logger.Warn("Failed to persist zone snapshot", "zone_id", state.ZoneID, "error", err)
	}
}
