package cli

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/dmitrijs2005/vinscanner/internal/client/models"
	"github.com/dmitrijs2005/vinscanner/internal/filex"
)

const recentLimit = 5

// inventoryPageSize stays at or under the server's per-call cap.
var inventoryPageSize = 500

func (a *App) listPage(ctx context.Context, owner string, limit, offset int) ([]*models.RemoteVehicle, error) {
	ctx, cancel := context.WithTimeout(ctx, a.config.RemoteTimeout)
	defer cancel()
	return a.remote.ListVehicles(ctx, owner, limit, offset)
}

func (a *App) listRecent(ctx context.Context) ([]*models.RemoteVehicle, error) {
	owner, err := a.ownerID(ctx)
	if err != nil {
		return nil, err
	}
	return a.listPage(ctx, owner, recentLimit, 0)
}

// listAll pages through the owner's whole remote inventory until a short
// page comes back.
func (a *App) listAll(ctx context.Context) ([]*models.RemoteVehicle, error) {
	owner, err := a.ownerID(ctx)
	if err != nil {
		return nil, err
	}

	var all []*models.RemoteVehicle
	for {
		page, err := a.listPage(ctx, owner, inventoryPageSize, len(all))
		if err != nil {
			return nil, err
		}
		all = append(all, page...)
		if len(page) < inventoryPageSize {
			return all, nil
		}
	}
}

func (a *App) printVehicles(list []*models.RemoteVehicle) {
	if len(list) == 0 {
		a.printf("No vehicles\n")
		return
	}
	for _, v := range list {
		a.printf("%s  %s\n", v.VIN, v.CreatedAt.Local().Format(timeLayout))
	}
}

func (a *App) Recent(ctx context.Context) error {
	list, err := a.listRecent(ctx)
	if err != nil {
		return err
	}
	a.printVehicles(list)
	return nil
}

// Inventory lists the whole remote inventory, newest first, keeping VINs
// that contain filter (case-insensitive).
func (a *App) Inventory(ctx context.Context, filter string) error {
	list, err := a.listAll(ctx)
	if err != nil {
		return err
	}

	filter = strings.ToUpper(strings.TrimSpace(filter))
	if filter != "" {
		kept := list[:0]
		for _, v := range list {
			if strings.Contains(v.VIN, filter) {
				kept = append(kept, v)
			}
		}
		list = kept
	}

	a.printVehicles(list)
	a.printf("%d vehicles\n", len(list))
	return nil
}

// Export writes the remote inventory to path as "VIN,Date Added" CSV.
// Without a path the file is named after today's date.
func (a *App) Export(ctx context.Context, path string) error {
	list, err := a.listAll(ctx)
	if err != nil {
		return err
	}

	if path == "" {
		path = fmt.Sprintf("inventory_%s.csv", a.now().Format("2006-01-02"))
	}

	f, err := filex.CreateFile(path)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := writeCSV(f, list); err != nil {
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}

	a.printf("Exported %d vehicles to %s\n", len(list), path)
	return nil
}

func writeCSV(out io.Writer, list []*models.RemoteVehicle) error {
	w := csv.NewWriter(out)
	if err := w.Write([]string{"VIN", "Date Added"}); err != nil {
		return err
	}
	for _, v := range list {
		if err := w.Write([]string{v.VIN, v.CreatedAt.Local().Format("02/01/2006")}); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}
