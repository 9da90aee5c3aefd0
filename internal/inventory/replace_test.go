package inventory_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"stok-backend/internal/inventory"
	"stok-backend/internal/inventory/inventorytest"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

type stateRecorder struct {
	mu     sync.Mutex
	states []inventory.ReplaceState
}

func (r *stateRecorder) observe(s inventory.ReplaceState) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.states = append(r.states, s)
}

func (r *stateRecorder) all() []inventory.ReplaceState {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]inventory.ReplaceState(nil), r.states...)
}

type fakeMetrics struct {
	mu       sync.Mutex
	replaces []string
	rows     int
	exports  int
}

func (m *fakeMetrics) ObserveBulkReplace(state string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.replaces = append(m.replaces, state)
}

func (m *fakeMetrics) AddImportedRows(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rows += n
}

func (m *fakeMetrics) IncExports() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.exports++
}

func payload(name string, qty int64) inventory.StockFields {
	return inventory.StockFields{Name: name, Quantity: decimal.NewFromInt(qty)}
}

func seeded(t *testing.T, repo inventory.Repository, names ...string) {
	t.Helper()
	for _, n := range names {
		_, err := repo.Create(context.Background(), payload(n, 10).Normalize())
		require.NoError(t, err)
	}
}

func TestReplaceCompletes(t *testing.T) {
	repo := inventorytest.NewRepository()
	seeded(t, repo, "Eski 1", "Eski 2")

	rec := &stateRecorder{}
	metrics := &fakeMetrics{}
	replacer := inventory.NewBulkReplacer(repo, inventory.WithObserver(rec.observe), inventory.WithMetrics(metrics))

	res, err := replacer.Replace(context.Background(), []inventory.StockFields{
		payload("Üre", 8550), payload("MAP", 2300), payload("MKP", 1200),
	})
	require.NoError(t, err)

	require.Equal(t, inventory.ReplaceCompleted, res.State)
	require.EqualValues(t, 2, res.Deleted)
	require.Equal(t, 3, res.Inserted)
	require.Len(t, res.Stocks, 3)
	require.Equal(t, 3, repo.ActiveCount())
	require.Equal(t, []inventory.ReplaceState{
		inventory.ReplaceDeletingExisting, inventory.ReplaceInsertingNew, inventory.ReplaceCompleted,
	}, rec.all())
	require.Equal(t, []string{"completed"}, metrics.replaces)
	require.Equal(t, 3, metrics.rows)

	for _, s := range res.Stocks {
		require.Equal(t, "kg", s.Unit)
	}
}

func TestReplaceAbortsWhenDeleteFails(t *testing.T) {
	repo := inventorytest.NewRepository()
	seeded(t, repo, "Eski 1", "Eski 2")
	repo.FailSoftDeleteAll = errors.New("bağlantı koptu")

	rec := &stateRecorder{}
	replacer := inventory.NewBulkReplacer(repo, inventory.WithObserver(rec.observe))

	res, err := replacer.Replace(context.Background(), []inventory.StockFields{payload("Üre", 1)})
	require.Error(t, err)

	var rerr *inventory.RepositoryError
	require.True(t, errors.As(err, &rerr))
	require.Equal(t, inventory.ReplaceErrorAborted, res.State)
	require.Equal(t, []inventory.ReplaceState{inventory.ReplaceDeletingExisting, inventory.ReplaceErrorAborted}, rec.all())
	require.Equal(t, 2, repo.ActiveCount())
	require.Len(t, repo.All(), 2)
}

func TestReplacePartialFailureLeavesNoActiveRecords(t *testing.T) {
	repo := inventorytest.NewRepository()
	seeded(t, repo, "Eski 1", "Eski 2")
	repo.FailCreateMany = errors.New("unique ihlali")

	rec := &stateRecorder{}
	metrics := &fakeMetrics{}
	replacer := inventory.NewBulkReplacer(repo, inventory.WithObserver(rec.observe), inventory.WithMetrics(metrics))

	res, err := replacer.Replace(context.Background(), []inventory.StockFields{payload("Üre", 1)})

	var partial *inventory.PartialReplaceError
	require.True(t, errors.As(err, &partial))
	require.EqualValues(t, 2, partial.Deleted)
	require.Equal(t, inventory.ReplaceErrorPartial, res.State)
	require.EqualValues(t, 2, res.Deleted)
	require.Equal(t, 0, res.Inserted)
	require.Equal(t, 0, repo.ActiveCount())
	require.Equal(t, []inventory.ReplaceState{
		inventory.ReplaceDeletingExisting, inventory.ReplaceInsertingNew, inventory.ReplaceErrorPartial,
	}, rec.all())
	require.Equal(t, []string{"error_partial"}, metrics.replaces)
	require.Zero(t, metrics.rows)
}

func TestReplaceValidatesBeforeDeleting(t *testing.T) {
	repo := inventorytest.NewRepository()
	seeded(t, repo, "Eski 1", "Eski 2")

	rec := &stateRecorder{}
	replacer := inventory.NewBulkReplacer(repo, inventory.WithObserver(rec.observe))

	for _, batch := range [][]inventory.StockFields{
		nil,
		{payload("Üre", 1), payload("", 1)},
		{payload("Üre", -1)},
		{payload("Üre", 1), {Name: "MAP", Price: decimal.New(1, 15)}},
		{{Name: "MKP", Quantity: decimal.RequireFromString("1e300000000")}},
	} {
		res, err := replacer.Replace(context.Background(), batch)

		var verr *inventory.ValidationError
		require.True(t, errors.As(err, &verr))
		require.Equal(t, inventory.ReplaceIdle, res.State)
	}
	require.Empty(t, rec.all())
	require.Equal(t, 2, repo.ActiveCount())
}

func TestReplaceAtomicRollsBack(t *testing.T) {
	repo := inventorytest.NewAtomicRepository()
	seeded(t, repo, "Eski 1", "Eski 2")
	repo.FailCreateMany = errors.New("unique ihlali")

	rec := &stateRecorder{}
	replacer := inventory.NewBulkReplacer(repo, inventory.WithAtomic(true), inventory.WithObserver(rec.observe))
	require.True(t, replacer.Atomic())

	res, err := replacer.Replace(context.Background(), []inventory.StockFields{payload("Üre", 1)})
	require.Error(t, err)

	var partial *inventory.PartialReplaceError
	require.False(t, errors.As(err, &partial))
	require.Equal(t, inventory.ReplaceErrorAborted, res.State)
	require.Equal(t, 2, repo.ActiveCount())
	require.Equal(t, []inventory.ReplaceState{inventory.ReplaceDeletingExisting, inventory.ReplaceErrorAborted}, rec.all())
}

func TestReplaceAtomicCompletes(t *testing.T) {
	repo := inventorytest.NewAtomicRepository()
	seeded(t, repo, "Eski 1")

	rec := &stateRecorder{}
	metrics := &fakeMetrics{}
	replacer := inventory.NewBulkReplacer(repo,
		inventory.WithAtomic(true), inventory.WithObserver(rec.observe), inventory.WithMetrics(metrics))
	res, err := replacer.Replace(context.Background(), []inventory.StockFields{payload("Üre", 1), payload("MAP", 2)})
	require.NoError(t, err)

	require.Equal(t, inventory.ReplaceCompleted, res.State)
	require.EqualValues(t, 1, res.Deleted)
	require.Equal(t, 2, res.Inserted)
	require.Equal(t, 2, repo.ActiveCount())
	require.Equal(t, []inventory.ReplaceState{inventory.ReplaceDeletingExisting, inventory.ReplaceCompleted}, rec.all())
	require.Equal(t, 2, metrics.rows)
}

func TestReplaceAtomicNeedsRepositorySupport(t *testing.T) {
	replacer := inventory.NewBulkReplacer(inventorytest.NewRepository(), inventory.WithAtomic(true))
	require.False(t, replacer.Atomic())

	replacer = inventory.NewBulkReplacer(inventorytest.NewAtomicRepository(), inventory.WithAtomic(false))
	require.False(t, replacer.Atomic())
}

// blockingRepo holds SoftDeleteAllActive until release is closed.
type blockingRepo struct {
	*inventorytest.Repository
	started chan struct{}
	release chan struct{}
}

func (r *blockingRepo) SoftDeleteAllActive(ctx context.Context) (int64, error) {
	close(r.started)
	<-r.release
	return r.Repository.SoftDeleteAllActive(ctx)
}

func TestReplaceRejectsConcurrentRun(t *testing.T) {
	repo := &blockingRepo{
		Repository: inventorytest.NewRepository(),
		started:    make(chan struct{}),
		release:    make(chan struct{}),
	}
	replacer := inventory.NewBulkReplacer(repo)

	type outcome struct {
		res inventory.ReplaceResult
		err error
	}
	done := make(chan outcome, 1)
	go func() {
		res, err := replacer.Replace(context.Background(), []inventory.StockFields{payload("Üre", 1)})
		done <- outcome{res, err}
	}()

	<-repo.started
	res, err := replacer.Replace(context.Background(), []inventory.StockFields{payload("MAP", 1)})
	require.ErrorIs(t, err, inventory.ErrReplaceInProgress)
	require.Equal(t, inventory.ReplaceIdle, res.State)

	close(repo.release)
	first := <-done
	require.NoError(t, first.err)
	require.Equal(t, inventory.ReplaceCompleted, first.res.State)
	require.Equal(t, 1, repo.ActiveCount())
}
