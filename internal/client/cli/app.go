package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/dmitrijs2005/vinscanner/internal/client/acquisition"
	"github.com/dmitrijs2005/vinscanner/internal/client/client"
	"github.com/dmitrijs2005/vinscanner/internal/client/config"
	"github.com/dmitrijs2005/vinscanner/internal/client/repositories/vins"
	"github.com/dmitrijs2005/vinscanner/internal/client/services"
	"github.com/dmitrijs2005/vinscanner/internal/logging"
)

// SyncService is the part of services.SyncEngine the REPL drives.
type SyncService interface {
	State() services.SyncState
	SyncNow(ctx context.Context) (services.SyncResult, error)
	Trigger(ctx context.Context)
	RefreshPending(ctx context.Context) error
	Running() bool
}

type Deps struct {
	Config     *config.Config
	Identity   services.IdentityService
	Sync       SyncService
	Controller *acquisition.Controller
	Queue      vins.Repository
	Remote     client.Client
	Logger     logging.Logger

	In  io.Reader
	Out io.Writer
}

type App struct {
	config     *config.Config
	identity   services.IdentityService
	sync       SyncService
	controller *acquisition.Controller
	queue      vins.Repository
	remote     client.Client
	logger     logging.Logger

	reader *bufio.Reader
	out    io.Writer
	now    func() time.Time
}

func NewApp(d Deps) *App {
	in := d.In
	if in == nil {
		in = os.Stdin
	}
	out := d.Out
	if out == nil {
		out = os.Stdout
	}
	return &App{
		config:     d.Config,
		identity:   d.Identity,
		sync:       d.Sync,
		controller: d.Controller,
		queue:      d.Queue,
		remote:     d.Remote,
		logger:     d.Logger.With("module", "cli"),
		reader:     bufio.NewReader(in),
		out:        out,
		now:        time.Now,
	}
}

// Run blocks in the REPL until the user exits or input ends.
func (a *App) Run(ctx context.Context) {
	fmt.Fprintln(a.out, "vinscanner field client (type 'help' for commands)")
	runREPL(ctx, a, a.getStatus, bufio.NewScanner(a.reader))
}

func (a *App) printf(format string, args ...any) {
	fmt.Fprintf(a.out, format, args...)
}

// getStatus renders the prompt status: owner, connectivity, queue depth.
func (a *App) getStatus() string {
	var parts []string
	if id, err := a.identity.Resolve(context.Background()); err == nil {
		parts = append(parts, id.OwnerID)
	}
	st := a.sync.State()
	parts = append(parts, st.Connectivity.String())
	if st.PendingCount > 0 {
		parts = append(parts, fmt.Sprintf("%d pending", st.PendingCount))
	}
	return "(" + strings.Join(parts, " ") + ")"
}
