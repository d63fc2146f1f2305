package cli

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/iudanet/zonesync/internal/models"
)

var statusIcons = map[models.SyncStatus]string{
	models.SyncStatusSynced:       "✓",
	models.SyncStatusSyncing:      "…",
	models.SyncStatusConflict:     "⚠️ ",
	models.SyncStatusDisconnected: "✗",
}

// formatState renders one line per zone transition.
func formatState(s models.ZoneSyncState) string {
	synced := "never"
	if !s.LastSyncTime.IsZero() {
		synced = s.LastSyncTime.Format(time.TimeOnly)
	}

	return fmt.Sprintf("%s %s: %s  pending=%d conflicts=%d version=%d synced=%s",
		statusIcons[s.Status],
		zoneLabel(s.Zone),
		s.Status,
		len(s.PendingChanges),
		s.ConflictCount,
		s.LastServerUpdate,
		synced)
}

func formatConflict(c models.ZoneConflict) string {
	return fmt.Sprintf("⚠️  conflict in %s: local %s vs server v%d, resolved %s",
		c.ZoneID,
		c.LocalChange.ChangeID,
		c.ServerChange.Timestamp,
		c.Resolution)
}

// formatZone prints the zone attributes in key order followed by its cells.
func formatZone(z models.Zone) string {
	var b strings.Builder

	keys := make([]string, 0, len(z.Attributes))
	for k := range z.Attributes {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	for _, k := range keys {
		fmt.Fprintf(&b, "   %-11s %v\n", k+":", z.Attributes[k])
	}
	fmt.Fprintf(&b, "   %-11s %s", "cells:", strings.Join(z.Cells, " "))
	if len(z.Cells) == 0 {
		b.WriteString("-")
	}

	return b.String()
}
