package cli

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/iudanet/zonesync/internal/client/zonesync"
	"github.com/iudanet/zonesync/internal/models"
)

const connectTimeout = 10 * time.Second

// stringList собирает повторяющийся флаг
type stringList []string

func (l *stringList) String() string { return strings.Join(*l, ",") }

func (l *stringList) Set(v string) error {
	if v == "" {
		return errors.New("empty value")
	}
	*l = append(*l, v)
	return nil
}

// parseEdit turns `<zone> [flags]` into a zone id and a change set.
func parseEdit(args []string) (string, models.ChangeSet, error) {
	var cs models.ChangeSet

	if len(args) == 0 || strings.HasPrefix(args[0], "-") {
		return "", cs, fmt.Errorf("%w: missing zone id. Usage: zonesync edit <zone> [flags]", ErrUsage)
	}
	zoneID := args[0]

	fs := flag.NewFlagSet("edit", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	name := fs.String("name", "", "zone name")
	points := fs.Int("points", 0, "point value")
	zoneType := fs.String("type", "", "safe or danger")
	var sets, added, removed stringList
	fs.Var(&sets, "set", "KEY=VALUE attribute")
	fs.Var(&added, "add-cell", "cell to add")
	fs.Var(&removed, "remove-cell", "cell to remove")

	if err := fs.Parse(args[1:]); err != nil {
		return "", cs, fmt.Errorf("%w: %v", ErrUsage, err)
	}
	if fs.NArg() > 0 {
		return "", cs, fmt.Errorf("%w: unexpected argument %q", ErrUsage, fs.Arg(0))
	}

	modified := make(map[string]any)
	for _, kv := range sets {
		key, raw, ok := strings.Cut(kv, "=")
		if !ok || key == "" {
			return "", cs, fmt.Errorf("%w: --set expects KEY=VALUE, got %q", ErrUsage, kv)
		}
		modified[key] = parseValue(raw)
	}

	var typeErr error
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "name":
			modified[models.AttrName] = *name
		case "points":
			modified[models.AttrPointValue] = *points
		case "type":
			switch models.ZoneType(*zoneType) {
			case models.ZoneTypeSafe, models.ZoneTypeDanger:
				modified[models.AttrType] = *zoneType
			default:
				typeErr = fmt.Errorf("%w: unknown zone type %q (use safe or danger)", ErrUsage, *zoneType)
			}
		}
	})
	if typeErr != nil {
		return "", cs, typeErr
	}

	if len(modified) > 0 {
		cs.Modified = modified
	}
	cs.Added = added
	cs.Removed = removed

	if len(cs.Modified) == 0 && len(cs.Added) == 0 && len(cs.Removed) == 0 {
		return "", cs, fmt.Errorf("%w: nothing to change", ErrUsage)
	}

	return zoneID, cs, nil
}

// parseValue reads VALUE as JSON when it parses, as a plain string otherwise.
func parseValue(raw string) any {
	var v any
	if err := json.Unmarshal([]byte(raw), &v); err == nil {
		return v
	}
	return raw
}

// RunEdit applies one change and waits until the server acknowledges it or
// the acknowledgement deadline (including retries) passes.
func (c *Cli) RunEdit(ctx context.Context, args []string) error {
	zoneID, cs, err := parseEdit(args)
	if err != nil {
		return err
	}

	s, err := c.newSession(ctx)
	if err != nil {
		return err
	}

	conflicts := make(chan models.ZoneConflict, 16)
	unsubscribe := s.engine.OnConflict(func(conflict models.ZoneConflict) {
		select {
		case conflicts <- conflict:
		default:
		}
	})
	defer unsubscribe()

	s.start()
	defer func() { _ = s.close() }()

	connectCtx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()
	if err := s.waitConnected(connectCtx); err != nil {
		return err
	}

	if _, ok := s.engine.SyncState(zoneID); !ok {
		return fmt.Errorf("zone %q: %w", zoneID, zonesync.ErrUnknownZone)
	}

	rec, err := s.engine.ApplyZoneChanges(ctx, zoneID, cs)
	if err != nil {
		return fmt.Errorf("failed to apply change: %w", err)
	}
	c.io.Printf("Change %s sent to zone %s\n", rec.ChangeID, zoneID)

	cfg := s.engine.Config()
	wait := cfg.AckTimeout*time.Duration(cfg.MaxRetries+1) + time.Second
	timer := time.NewTimer(wait)
	defer timer.Stop()

	var raced []models.ZoneConflict
	confirmed := false
	for !confirmed {
		select {
		case id := <-s.handler.acks:
			confirmed = id == rec.ChangeID
		case conflict := <-conflicts:
			if conflict.ZoneID == zoneID {
				raced = append(raced, conflict)
			}
		case <-timer.C:
			c.reportEdit(s, zoneID, raced)
			return fmt.Errorf("change %s not confirmed within %s; it is not resent, the server may or may not have applied it", rec.ChangeID, wait)
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	// Конфликты, пойманные до ack, уже в канале
	for len(conflicts) > 0 {
		if conflict := <-conflicts; conflict.ZoneID == zoneID {
			raced = append(raced, conflict)
		}
	}

	c.io.Println("✓ Change confirmed by server")
	c.reportEdit(s, zoneID, raced)
	return nil
}

func (c *Cli) reportEdit(s *session, zoneID string, raced []models.ZoneConflict) {
	for _, conflict := range raced {
		c.io.Println(formatConflict(conflict))
	}

	state, ok := s.engine.SyncState(zoneID)
	if !ok {
		return
	}
	c.io.Println(formatState(state))
	c.io.Println(formatZone(state.Zone))
	c.persist(state)
}
