package cli

import (
	"context"
	"fmt"
	"time"
)

// RunStatus prints the last persisted state of every zone. It never touches
// the network.
func (c *Cli) RunStatus(ctx context.Context) error {
	c.io.Println("=== Zone Status ===")
	c.io.Println()

	states, err := c.store.ListZoneSnapshots(ctx)
	if err != nil {
		return fmt.Errorf("failed to read zone snapshots: %w", err)
	}

	if len(states) == 0 {
		c.io.Println("No zones recorded yet.")
		c.io.Println()
		c.io.Println("Run 'zonesync watch' to fetch zones from the server.")
		return nil
	}

	pending := 0
	for _, state := range states {
		c.io.Println(formatState(state))
		pending += len(state.PendingChanges)
	}

	c.io.Println()
	last, err := c.store.GetLastSyncTimestamp(ctx)
	if err != nil {
		// Не прерываем выполнение, просто предупреждаем
		c.io.Printf("Warning: failed to get last sync time: %v\n", err)
	} else if last > 0 {
		c.io.Printf("Last sync: %s\n", time.UnixMilli(last).Format(time.RFC3339))
	}

	if pending > 0 {
		c.io.Printf("⚠️  %d change(s) were unconfirmed when last seen\n", pending)
	} else {
		c.io.Println("✓ All recorded changes were confirmed")
	}

	return nil
}
