package cli

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/dmitrijs2005/vinscanner/internal/common"
)

// purgeAge is how long synced records are kept in the local audit trail.
const purgeAge = 30 * 24 * time.Hour

const timeLayout = "2006-01-02 15:04:05"

func (a *App) Status(ctx context.Context) error {
	st := a.sync.State()

	a.printf("Connection: %s\n", st.Connectivity)
	a.printf("Sync:       %s\n", st.Phase)
	if a.sync.Running() {
		a.printf("Run:        in flight\n")
	}
	a.printf("Pending:    %d\n", st.PendingCount)
	if st.LastError != "" {
		a.printf("Last error: %s\n", st.LastError)
	}

	if id, err := a.identity.Resolve(ctx); err == nil {
		a.printf("Owner:      %s\n", id.OwnerID)
	} else {
		a.printf("Owner:      not logged in\n")
	}

	cs := a.controller.Status()
	if cs.LastVIN != "" {
		a.printf("Last VIN:   %s\n", cs.LastVIN)
	}
	return nil
}

func (a *App) Sync(ctx context.Context) error {
	res, err := a.sync.SyncNow(ctx)
	if errors.Is(err, common.ErrUnavailable) {
		a.printf("Server unavailable, %d VINs stay queued\n", a.sync.State().PendingCount)
		return nil
	}
	if err != nil {
		return err
	}

	switch {
	case res.Coalesced:
		a.printf("A sync is already running\n")
	case res.Skipped:
		a.printf("Not logged in, %d VINs stay queued\n", res.Pending)
	default:
		a.printf("Synced %d, failed %d, pending %d\n", res.Synced, res.Failed, res.Pending)
	}
	return nil
}

// Queue prints the local audit trail, newest first.
func (a *App) Queue(ctx context.Context) error {
	list, err := a.queue.ListAll(ctx)
	if err != nil {
		return err
	}
	if len(list) == 0 {
		a.printf("Local queue is empty\n")
		return nil
	}

	tw := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tVIN\tCAPTURED\tSTATUS")
	for _, r := range list {
		status := "pending"
		if r.Synced {
			status = "synced"
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", r.LocalID, r.VIN, r.CapturedAt.Local().Format(timeLayout), status)
	}
	return tw.Flush()
}

func (a *App) Purge(ctx context.Context) error {
	n, err := a.queue.PurgeSynced(ctx, a.now().Add(-purgeAge))
	if err != nil {
		return err
	}
	a.printf("Removed %d synced records\n", n)
	return nil
}

// Delete removes one local record by id, synced or not.
func (a *App) Delete(ctx context.Context, arg string) error {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil {
		return fmt.Errorf("bad record id %q", arg)
	}

	if err := a.queue.Delete(ctx, id); err != nil {
		if errors.Is(err, common.ErrNotFound) {
			a.printf("No local record %d\n", id)
			return nil
		}
		return err
	}

	if err := a.sync.RefreshPending(ctx); err != nil {
		a.logger.Warn(ctx, "refresh pending count failed", "error", err)
	}

	a.printf("Deleted record %d\n", id)
	return nil
}
