package services

import (
	"context"
	"database/sql"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/vinscanner/internal/client/models"
	"github.com/dmitrijs2005/vinscanner/internal/client/repositories/vins"
	"github.com/dmitrijs2005/vinscanner/internal/client/storage"
	"github.com/dmitrijs2005/vinscanner/internal/common"
	"github.com/dmitrijs2005/vinscanner/internal/logging"
)

const (
	vinA = "1HGCM82633A004352"
	vinB = "11111111111111111"
	vinC = "1FTFW1ET0DFC10317"
)

func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := storage.InitDatabase(context.Background(), filepath.Join(t.TempDir(), "client.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

// fakeRemote records every append. Behaviour per call is controlled by
// insertHook, which sees the 1-based call number.
type fakeRemote struct {
	mu         sync.Mutex
	pingErr    error
	inserted   []string
	calls      int
	insertHook func(call int, vin string) error
}

func (f *fakeRemote) Close() error { return nil }

func (f *fakeRemote) Ping(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.pingErr
}

func (f *fakeRemote) InsertVehicle(_ context.Context, vin, ownerID string, createdAt time.Time) (*models.RemoteVehicle, error) {
	f.mu.Lock()
	f.calls++
	call := f.calls
	hook := f.insertHook
	f.mu.Unlock()

	if hook != nil {
		if err := hook(call, vin); err != nil {
			return nil, err
		}
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.inserted = append(f.inserted, vin)
	return &models.RemoteVehicle{RemoteID: "r-" + vin, VIN: vin, OwnerID: ownerID, CreatedAt: createdAt}, nil
}

func (f *fakeRemote) ListVehicles(context.Context, string, int, int) ([]*models.RemoteVehicle, error) {
	return nil, nil
}

func (f *fakeRemote) appended() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.inserted...)
}

type fakeIdentity struct {
	id  Identity
	err error
}

func (f fakeIdentity) Resolve(context.Context) (Identity, error) {
	return f.id, f.err
}

var (
	owner      = fakeIdentity{id: Identity{OwnerID: "owner-1", AccessToken: "t"}}
	noIdentity = fakeIdentity{err: common.ErrNoIdentity}
)

// flakyQueue fails MarkSynced for the listed ids, once each.
type flakyQueue struct {
	vins.Repository
	mu       sync.Mutex
	failMark map[int64]error
}

func (q *flakyQueue) MarkSynced(ctx context.Context, id int64) error {
	q.mu.Lock()
	err, ok := q.failMark[id]
	delete(q.failMark, id)
	q.mu.Unlock()
	if ok {
		return err
	}
	return q.Repository.MarkSynced(ctx, id)
}

func newEngine(t *testing.T, queue vins.Repository, remote *fakeRemote, id IdentityResolver) *SyncEngine {
	t.Helper()
	return NewSyncEngine(queue, remote, id, logging.NewNop(), EngineConfig{RemoteTimeout: time.Second})
}

func enqueueAll(t *testing.T, q vins.Repository, vs ...string) []int64 {
	t.Helper()
	ids := make([]int64, 0, len(vs))
	for _, v := range vs {
		id, err := q.Enqueue(context.Background(), v)
		require.NoError(t, err)
		ids = append(ids, id)
	}
	return ids
}
