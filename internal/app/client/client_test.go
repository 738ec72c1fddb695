package client

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lunasync/internal/app/client/config"
	"lunasync/internal/domain/record"
)

func newTestApp(t *testing.T) (*App, *fakeTransport) {
	t.Helper()

	cfg := &config.Config{
		ServerAddress: "localhost:0",
		Probe:         config.ProbeConfig{Interval: time.Hour, Timeout: time.Second},
	}
	transport := newFakeTransport()
	app := newApp(cfg, discardLogger(), NewMemoryStorage(), transport, &recordingNotifier{})

	now := int64(1_000)
	app.clock = func() time.Time {
		now++
		return time.UnixMilli(now)
	}
	app.syncService.clock = func() time.Time { return cycleTime }

	return app, transport
}

func TestApp_AddUser(t *testing.T) {
	app, _ := newTestApp(t)
	ctx := context.Background()

	created, err := app.AddUser(ctx, record.User{Name: "Alice", Header: record.Header{ID: "ignored", Synced: true}})
	require.NoError(t, err)

	assert.True(t, record.IsPlaceholder(created.ID))
	assert.False(t, created.Synced)
	assert.NotZero(t, created.UpdatedAt)
	assert.Equal(t, created.UpdatedAt, created.CreatedAt)
	assert.NotEmpty(t, created.DeviceID)

	users, err := app.ListUsers(ctx)
	require.NoError(t, err)
	assert.Equal(t, []record.User{created}, users)

	_, err = app.AddUser(ctx, record.User{})
	assert.ErrorIs(t, err, record.ErrInvalidRecord)
}

func TestApp_UpdateAppointment(t *testing.T) {
	app, _ := newTestApp(t)
	ctx := context.Background()

	created, err := app.AddAppointment(ctx, record.Appointment{Title: "Coupe", StartsAt: 1700000000000})
	require.NoError(t, err)
	assert.Equal(t, record.StatusScheduled, created.Status)

	updated, err := app.UpdateAppointment(ctx, created.ID, func(a *record.Appointment) {
		a.Status = record.StatusDone
		a.ID = "hijacked"
	})
	require.NoError(t, err)

	assert.Equal(t, created.ID, updated.ID)
	assert.Equal(t, record.StatusDone, updated.Status)
	assert.Greater(t, updated.UpdatedAt, created.UpdatedAt)
	assert.False(t, updated.Synced)

	_, err = app.UpdateAppointment(ctx, created.ID, func(a *record.Appointment) { a.Status = "lost" })
	assert.ErrorIs(t, err, record.ErrInvalidRecord)

	_, err = app.UpdateAppointment(ctx, "missing", func(*record.Appointment) {})
	assert.ErrorIs(t, err, ErrRecordNotFound)

	apts, err := app.ListAppointments(ctx)
	require.NoError(t, err)
	require.Len(t, apts, 1)
	assert.Equal(t, record.StatusDone, apts[0].Status)
}

func TestApp_EditAfterSyncIsPushedAgain(t *testing.T) {
	app, transport := newTestApp(t)
	ctx := context.Background()

	created, err := app.AddUser(ctx, record.User{Name: "Alice"})
	require.NoError(t, err)

	_, err = app.Sync(ctx)
	require.NoError(t, err)

	users, err := app.ListUsers(ctx)
	require.NoError(t, err)
	require.Len(t, users, 1)
	remoteID := users[0].ID
	assert.NotEqual(t, created.ID, remoteID)
	assert.True(t, users[0].Synced)

	_, err = app.UpdateUser(ctx, remoteID, func(u *record.User) { u.Phone = "+33 6 00 00 00 00" })
	require.NoError(t, err)

	status, err := app.SyncStatus(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, status.Pending[record.Users])
	assert.True(t, status.Online)

	_, err = app.Sync(ctx)
	require.NoError(t, err)

	pushes := transport.pushLog()
	require.Len(t, pushes, 2)
	assert.Equal(t, remoteID, pushes[1].Doc.ID)

	doc, ok := transport.doc(record.Users, remoteID)
	require.True(t, ok)
	assert.Equal(t, "+33 6 00 00 00 00", doc.Fields["phone"])
	assert.Equal(t, "Alice", doc.Fields["name"])
}

func TestApp_SyncOffline(t *testing.T) {
	app, transport := newTestApp(t)
	ctx := context.Background()

	transport.mu.Lock()
	transport.healthErr = &RemoteError{Op: OpHealth, Err: context.DeadlineExceeded}
	transport.mu.Unlock()

	_, err := app.Sync(ctx)
	assert.ErrorIs(t, err, ErrNoConnectivity)
	assert.False(t, app.QuickSync(ctx))
}
