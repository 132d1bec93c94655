package inventory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/LifeIsPranav/InventoryMS-BE/internal/shared"
)

func newTestService(t *testing.T) (*Service, *memoryRepo, *recordingAudit) {
	t.Helper()
	repo := newMemoryRepo()
	audit := &recordingAudit{}
	return NewService(repo, ServiceConfig{Audit: audit}), repo, audit
}

func validInput() CreateInput {
	return CreateInput{Name: "Bengaluru DC", Location: NewPoint(77.59, 12.97), TotalCapacity: 100, TotalVolume: 10}
}

func TestServiceCreateAndGet(t *testing.T) {
	svc, _, audit := newTestService(t)
	ctx := shared.ContextWithCaller(context.Background(), shared.Caller{UserID: "admin-1", Role: "admin"})

	snap, err := svc.Create(ctx, validInput())
	require.NoError(t, err)
	require.NotEmpty(t, snap.ID)
	require.Equal(t, 0.0, snap.CapacityOccupied)
	require.Empty(t, snap.Holdings)
	require.Empty(t, snap.StorageUnitIDs)

	got, err := svc.Get(ctx, snap.ID)
	require.NoError(t, err)
	require.Equal(t, "Bengaluru DC", got.Name)
	require.Equal(t, 77.59, got.Location.Longitude())

	list, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)

	require.Len(t, audit.logs, 1)
	require.Equal(t, "inventory.create", audit.logs[0].Action)
	require.Equal(t, "admin-1", audit.logs[0].ActorID)
}

func TestServiceCreateValidation(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	in := validInput()
	in.Name = "  "
	_, err := svc.Create(ctx, in)
	require.ErrorIs(t, err, shared.ErrValidation)

	in = validInput()
	in.Location = Point{Type: "Polygon"}
	_, err = svc.Create(ctx, in)
	require.ErrorIs(t, err, shared.ErrValidation)

	in = validInput()
	in.Location = NewPoint(200, 0)
	_, err = svc.Create(ctx, in)
	require.ErrorIs(t, err, shared.ErrValidation)

	in = validInput()
	in.TotalVolume = -1
	_, err = svc.Create(ctx, in)
	require.ErrorIs(t, err, shared.ErrValidation)
}

func TestServiceUpdateRejectsCeilingBelowOccupied(t *testing.T) {
	svc, repo, _ := newTestService(t)
	ctx := context.Background()
	snap, err := svc.Create(ctx, validInput())
	require.NoError(t, err)
	p := repo.addProduct("A", 20, 1, "5")
	_, err = svc.AddProduct(ctx, snap.ID, p, 4)
	require.NoError(t, err)

	in := validInput()
	in.TotalCapacity = 50
	_, err = svc.Update(ctx, snap.ID, in)
	require.ErrorIs(t, err, shared.ErrCapacityExceeded)
	require.Equal(t, 100.0, repo.inventory(snap.ID).TotalCapacity)

	in.TotalCapacity = 80 - 1e-6
	_, err = svc.Update(ctx, snap.ID, in)
	require.ErrorIs(t, err, shared.ErrCapacityExceeded)

	in.TotalCapacity = 80
	in.Name = "Renamed"
	updated, err := svc.Update(ctx, snap.ID, in)
	require.NoError(t, err)
	require.Equal(t, "Renamed", updated.Name)
	require.Equal(t, 80.0, updated.CapacityOccupied)
	require.Equal(t, 1, updated.ProductCount)
}

func TestServiceDeleteRequiresEmptyInventory(t *testing.T) {
	svc, repo, _ := newTestService(t)
	ctx := context.Background()
	snap, err := svc.Create(ctx, validInput())
	require.NoError(t, err)
	unit := repo.addStorage()
	p := repo.addProduct("A", 1, 1, "1")

	_, err = svc.AddStorage(ctx, snap.ID, unit)
	require.NoError(t, err)
	require.ErrorIs(t, svc.Delete(ctx, snap.ID), shared.ErrInventoryNotEmpty)

	_, err = svc.RemoveStorage(ctx, snap.ID, unit)
	require.NoError(t, err)
	_, err = svc.AddProduct(ctx, snap.ID, p, 1)
	require.NoError(t, err)
	require.ErrorIs(t, svc.Delete(ctx, snap.ID), shared.ErrInventoryNotEmpty)

	_, err = svc.RemoveProduct(ctx, snap.ID, p, nil)
	require.NoError(t, err)
	require.NoError(t, svc.Delete(ctx, snap.ID))

	_, err = svc.Get(ctx, snap.ID)
	require.ErrorIs(t, err, shared.ErrNotFound)
	require.ErrorIs(t, svc.Delete(ctx, snap.ID), shared.ErrNotFound)
}

func TestServiceAuditsLedgerMutations(t *testing.T) {
	svc, repo, audit := newTestService(t)
	ctx := context.Background()
	snap, err := svc.Create(ctx, validInput())
	require.NoError(t, err)
	p := repo.addProduct("A", 20, 1, "5")

	_, err = svc.AddProduct(ctx, snap.ID, p, 2)
	require.NoError(t, err)
	_, err = svc.AddProduct(ctx, snap.ID, p, 10)
	require.ErrorIs(t, err, shared.ErrCapacityExceeded)

	require.Len(t, audit.logs, 2)
	entry := audit.logs[1]
	require.Equal(t, "inventory:"+OpAddProduct, entry.Action)
	require.Equal(t, "inventory", entry.Entity)
	require.Equal(t, snap.ID, entry.EntityID)
	require.Equal(t, p, entry.Meta["product_id"])
}

func TestServiceProductsJoinsAttributes(t *testing.T) {
	svc, repo, _ := newTestService(t)
	ctx := context.Background()
	snap, err := svc.Create(ctx, validInput())
	require.NoError(t, err)
	p := repo.addProduct("Widget", 2, 0.5, "3.25")
	_, err = svc.AddProduct(ctx, snap.ID, p, 3)
	require.NoError(t, err)

	details, err := svc.Products(ctx, snap.ID)
	require.NoError(t, err)
	require.Len(t, details, 1)
	require.Equal(t, "Widget", details[0].Product.Name)
	require.Equal(t, int64(3), details[0].Quantity)
	require.InDelta(t, 6, details[0].Weight, 1e-12)
}

func TestServiceCheckIntegrity(t *testing.T) {
	svc, repo, _ := newTestService(t)
	ctx := context.Background()
	healthy, err := svc.Create(ctx, validInput())
	require.NoError(t, err)
	drifting, err := svc.Create(ctx, validInput())
	require.NoError(t, err)
	p := repo.addProduct("A", 10, 1, "1")
	_, err = svc.AddProduct(ctx, healthy.ID, p, 2)
	require.NoError(t, err)
	_, err = svc.AddProduct(ctx, drifting.ID, p, 2)
	require.NoError(t, err)

	drifts, err := svc.CheckIntegrity(ctx)
	require.NoError(t, err)
	require.Empty(t, drifts)

	repo.mu.Lock()
	inv := repo.inventories[drifting.ID]
	inv.CapacityOccupied = 35
	repo.inventories[drifting.ID] = inv
	repo.mu.Unlock()

	drifts, err = svc.CheckIntegrity(ctx)
	require.NoError(t, err)
	require.Len(t, drifts, 1)
	require.Equal(t, drifting.ID, drifts[0].InventoryID)
	require.InDelta(t, 20, drifts[0].HoldingsWeight, 1e-12)
	require.False(t, drifts[0].OverCeiling)
}
