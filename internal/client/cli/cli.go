package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/iudanet/zonesync/internal/client/api"
	"github.com/iudanet/zonesync/internal/client/iocli"
	"github.com/iudanet/zonesync/internal/client/storage"
	"github.com/iudanet/zonesync/internal/config"
)

// ErrUsage indicates a malformed command line
var ErrUsage = errors.New("usage error")

type Cli struct {
	io        iocli.IO
	logger    *slog.Logger
	apiClient *api.Client
	store     storage.MetadataStorage
	clientID  string
	engineCfg config.Update
}

func New(io iocli.IO, logger *slog.Logger, apiClient *api.Client, store storage.MetadataStorage, engineCfg config.Update, clientID string) *Cli {
	return &Cli{
		io:        io,
		logger:    logger,
		apiClient: apiClient,
		store:     store,
		engineCfg: engineCfg,
		clientID:  clientID,
	}
}

// Run выполняет команду. args не включают имя команды.
func (c *Cli) Run(ctx context.Context, command string, args []string) error {
	switch command {
	case "watch":
		return c.RunWatch(ctx, args)
	case "edit":
		return c.RunEdit(ctx, args)
	case "status":
		return c.RunStatus(ctx)
	case "health":
		return c.RunHealth(ctx)
	default:
		return fmt.Errorf("%w: unknown command %q", ErrUsage, command)
	}
}

func PrintUsage(io iocli.IO) {
	io.Println("Zonesync Client")
	io.Println()
	io.Println("Usage:")
	io.Println("  zonesync [OPTIONS] COMMAND")
	io.Println()
	io.Println("Options:")
	io.Println("  --version                Show version information")
	io.Println("  --config PATH            YAML file with engine settings")
	io.Println("  --server URL             Server URL (default: http://localhost:8080)")
	io.Println("  --db PATH                Path to local database (default: zonesync-client.db)")
	io.Println("  --client-id ID           Client id sent in hello (default: random)")
	io.Println("  --conflict-mode MODE     server-wins, client-wins or merge")
	io.Println("  --ack-timeout DURATION   Acknowledgement deadline (default: 5s)")
	io.Println("  --max-retries N          Retransmissions before a zone is marked disconnected")
	io.Println("  --no-optimistic          Show edits only after the server confirms them")
	io.Println("  --debug                  Verbose engine tracing")
	io.Println()
	io.Println("Commands:")
	io.Println("  watch [--for DURATION]   Follow zone state and conflicts, persist snapshots")
	io.Println("  edit <zone> [FLAGS]      Apply one change to a zone and wait for the result")
	io.Println("  status                   Show last persisted state of every zone (offline)")
	io.Println("  health                   Query server health")
	io.Println()
	io.Println("Edit flags:")
	io.Println("  --name NAME              Rename the zone")
	io.Println("  --points N               Set point value")
	io.Println("  --type safe|danger       Set zone type")
	io.Println("  --set KEY=VALUE          Set any attribute (repeatable, VALUE may be JSON)")
	io.Println("  --add-cell CELL          Add a grid cell (repeatable)")
	io.Println("  --remove-cell CELL       Remove a grid cell (repeatable)")
	io.Println()
	io.Println("Examples:")
	io.Println("  zonesync watch")
	io.Println("  zonesync --conflict-mode merge edit zone-1 --name Harbor --add-cell 12:7")
	io.Println("  zonesync status")
}
