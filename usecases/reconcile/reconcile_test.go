package reconcile

import (
	"bytes"
	"context"
	"errors"
	"os"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/samber/mo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"ecessbot/clients/discord"
	"ecessbot/core"
	"ecessbot/core/log"
	"ecessbot/models"
	"ecessbot/services/jsonstore"
	"ecessbot/services/threadpins"
)

const (
	testGuildID         = "1000"
	testThreadID1       = "2001"
	testThreadID2       = "2002"
	testAutoArchiveMins = 1440
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type reconcileTestFixture struct {
	reconciler    *Reconciler
	discordClient *discord.MockDiscordClient
	pins          *threadpins.ThreadPinsService
	ctx           context.Context
}

func setupReconcileTest(t *testing.T, pinned ...string) *reconcileTestFixture {
	store, err := jsonstore.New(t.TempDir(), threadpins.Filename, models.NewThreadPinSet)
	require.NoError(t, err)
	pins := threadpins.NewThreadPinsService(store)
	for _, threadID := range pinned {
		require.NoError(t, pins.Pin(context.Background(), testGuildID, threadID))
	}

	discordClient := new(discord.MockDiscordClient)
	return &reconcileTestFixture{
		reconciler:    NewReconciler(DomainPins, discordClient, pins, testAutoArchiveMins),
		discordClient: discordClient,
		pins:          pins,
		ctx:           context.Background(),
	}
}

func unarchiveEdit() models.ThreadEdit {
	archived := false
	return models.ThreadEdit{Archived: &archived, AutoArchiveDuration: testAutoArchiveMins}
}

func notFound() error {
	return errors.Join(core.ErrNotFound, errors.New("404 Unknown Channel"))
}

func TestReconciler_Tick_PrunesVanishedAndUnarchives(t *testing.T) {
	f := setupReconcileTest(t, testThreadID1, testThreadID2)

	f.discordClient.On("IsReady").Return(true)
	f.discordClient.On("GetCachedThread", testThreadID1).Return(mo.None[*models.Thread]())
	f.discordClient.On("FetchThread", f.ctx, testThreadID1).Return(nil, notFound())
	f.discordClient.On("GetCachedThread", testThreadID2).Return(mo.None[*models.Thread]())
	f.discordClient.On("FetchThread", f.ctx, testThreadID2).
		Return(&models.Thread{ID: testThreadID2, GuildID: testGuildID, Archived: true}, nil)
	f.discordClient.On("EditThread", f.ctx, testThreadID2, unarchiveEdit()).Return(nil).Once()

	require.NoError(t, f.reconciler.Tick(f.ctx))

	tracked, err := f.pins.TrackedThreads(f.ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{testThreadID2}, tracked)
	f.discordClient.AssertNotCalled(t, "EditThread", f.ctx, testThreadID1, mock.Anything)
	f.discordClient.AssertExpectations(t)
}

func TestReconciler_Tick_UsesCacheFirst(t *testing.T) {
	f := setupReconcileTest(t, testThreadID1)

	f.discordClient.On("IsReady").Return(true)
	f.discordClient.On("GetCachedThread", testThreadID1).
		Return(mo.Some(&models.Thread{ID: testThreadID1, Archived: false}))

	require.NoError(t, f.reconciler.Tick(f.ctx))

	f.discordClient.AssertNotCalled(t, "FetchThread", mock.Anything, mock.Anything)
	f.discordClient.AssertNotCalled(t, "EditThread", mock.Anything, mock.Anything, mock.Anything)
	f.discordClient.AssertExpectations(t)
}

func TestReconciler_Tick_SkipsWhenNotReady(t *testing.T) {
	f := setupReconcileTest(t, testThreadID1)
	f.discordClient.On("IsReady").Return(false)

	require.NoError(t, f.reconciler.Tick(f.ctx))
	f.discordClient.AssertExpectations(t)
}

func TestReconciler_Tick_IsolatesFailures(t *testing.T) {
	f := setupReconcileTest(t, testThreadID1, testThreadID2)

	f.discordClient.On("IsReady").Return(true)
	f.discordClient.On("GetCachedThread", testThreadID1).Return(mo.None[*models.Thread]())
	f.discordClient.On("FetchThread", f.ctx, testThreadID1).Return(nil, errors.New("connection reset"))
	f.discordClient.On("GetCachedThread", testThreadID2).
		Return(mo.Some(&models.Thread{ID: testThreadID2, Archived: true}))
	f.discordClient.On("EditThread", f.ctx, testThreadID2, unarchiveEdit()).Return(nil)

	require.NoError(t, f.reconciler.Tick(f.ctx))

	tracked, err := f.pins.TrackedThreads(f.ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{testThreadID1, testThreadID2}, tracked, "transient failures never prune")
	f.discordClient.AssertExpectations(t)
}

func TestReconciler_ReconcileThread_EditNotFoundPrunes(t *testing.T) {
	f := setupReconcileTest(t, testThreadID1)

	f.discordClient.On("GetCachedThread", testThreadID1).
		Return(mo.Some(&models.Thread{ID: testThreadID1, Archived: true}))
	f.discordClient.On("EditThread", f.ctx, testThreadID1, unarchiveEdit()).Return(notFound())

	require.NoError(t, f.reconciler.ReconcileThread(f.ctx, testThreadID1))

	tracked, err := f.pins.TrackedThreads(f.ctx)
	require.NoError(t, err)
	assert.Empty(t, tracked)
	f.discordClient.AssertExpectations(t)
}

func TestReconciler_ReconcileThread_LeavesUntrackedThreadArchived(t *testing.T) {
	f := setupReconcileTest(t, testThreadID1)
	f.discordClient.On("GetCachedThread", testThreadID2).
		Return(mo.Some(&models.Thread{ID: testThreadID2, Archived: true}))

	require.NoError(t, f.reconciler.ReconcileThread(f.ctx, testThreadID2))

	f.discordClient.AssertNotCalled(t, "EditThread", mock.Anything, mock.Anything, mock.Anything)
	f.discordClient.AssertExpectations(t)
}

type lockedBuffer struct {
	mutex sync.Mutex
	buf   bytes.Buffer
}

func (b *lockedBuffer) Write(p []byte) (int, error) {
	b.mutex.Lock()
	defer b.mutex.Unlock()
	return b.buf.Write(p)
}

func (b *lockedBuffer) String() string {
	b.mutex.Lock()
	defer b.mutex.Unlock()
	return b.buf.String()
}

func TestReconciler_Run_LogsTickErrorsWithoutWrap(t *testing.T) {
	var output lockedBuffer
	log.SetOutput(&output)
	t.Cleanup(func() { log.SetOutput(os.Stdout) })

	discordClient := new(discord.MockDiscordClient)
	discordClient.On("IsReady").Return(true)
	source := new(threadpins.MockThreadPinsService)
	var ticks atomic.Int32
	source.On("TrackedThreads", mock.Anything).
		Run(func(mock.Arguments) { ticks.Add(1) }).
		Return(nil, errors.New("disk unplugged"))
	reconciler := NewReconciler(DomainPins, discordClient, source, testAutoArchiveMins)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		reconciler.Run(ctx, 5*time.Millisecond, nil)
	}()

	assert.Eventually(t, func() bool { return ticks.Load() >= 2 }, time.Second, 5*time.Millisecond,
		"loop keeps ticking after a failed tick")
	cancel()
	<-done

	assert.Contains(t, output.String(), "Reconciliation tick failed")
	assert.Contains(t, output.String(), "disk unplugged")
}

func TestReconciler_Run_StopsOnCancel(t *testing.T) {
	f := setupReconcileTest(t)
	f.discordClient.On("IsReady").Return(false)

	var ticks atomic.Int32
	wrap := func(taskName string, task func(ctx context.Context) error) func(ctx context.Context) error {
		assert.Equal(t, "reconcile pins", taskName)
		return func(ctx context.Context) error {
			ticks.Add(1)
			return task(ctx)
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		f.reconciler.Run(ctx, 5*time.Millisecond, wrap)
	}()

	assert.Eventually(t, func() bool { return ticks.Load() >= 2 }, time.Second, 5*time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("reconciliation loop did not stop")
	}
}

func TestReconciler_Tracks(t *testing.T) {
	f := setupReconcileTest(t, testThreadID1)

	tracked, err := f.reconciler.Tracks(f.ctx, testThreadID1)
	require.NoError(t, err)
	assert.True(t, tracked)

	tracked, err = f.reconciler.Tracks(f.ctx, testThreadID2)
	require.NoError(t, err)
	assert.False(t, tracked)
}
