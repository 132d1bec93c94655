package inventory

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/LifeIsPranav/InventoryMS-BE/internal/shared"
)

// memoryRepo is a RepositoryPort whose transactions work on a private copy
// of the state and publish only the rows they touched on commit. It provides
// no row locks, so serialisation in tests comes from the Ledger alone.
type memoryRepo struct {
	mu          sync.Mutex
	inventories map[string]Inventory
	products    map[string]ProductRef
	holdings    map[string]map[string]Holding
	storages    map[string]StorageRef
	failOn      string
	beforeTx    func()
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{
		inventories: map[string]Inventory{},
		products:    map[string]ProductRef{},
		holdings:    map[string]map[string]Holding{},
		storages:    map[string]StorageRef{},
	}
}

func (r *memoryRepo) addInventory(capacity, volume float64) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	id := uuid.NewString()
	r.inventories[id] = Inventory{ID: id, Name: "inv-" + id[:8], Location: NewPoint(77.59, 12.97), TotalCapacity: capacity, TotalVolume: volume}
	return id
}

func (r *memoryRepo) addProduct(name string, weight, volume float64, price string) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	id := uuid.NewString()
	r.products[id] = ProductRef{ID: id, Name: name, Price: mustDecimal(price), UnitWeight: weight, UnitVolume: volume}
	return id
}

func (r *memoryRepo) addStorage() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	id := uuid.NewString()
	r.storages[id] = StorageRef{ID: id}
	return id
}

func (r *memoryRepo) inventory(id string) Inventory {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.inventories[id]
}

func (r *memoryRepo) holdingsOf(id string) map[string]Holding {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := map[string]Holding{}
	for k, v := range r.holdings[id] {
		out[k] = v
	}
	return out
}

func (r *memoryRepo) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	if r.beforeTx != nil {
		r.beforeTx()
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	tx := &memoryTx{
		repo:        r,
		inventories: make(map[string]Inventory, len(r.inventories)),
		holdings:    make(map[string]map[string]Holding, len(r.holdings)),
		storages:    make(map[string]StorageRef, len(r.storages)),
		dirtyInv:    map[string]bool{},
		dirtyHold:   map[string]bool{},
		dirtyStore:  map[string]bool{},
	}
	for k, v := range r.inventories {
		tx.inventories[k] = v
	}
	for k, v := range r.holdings {
		inner := make(map[string]Holding, len(v))
		for pk, pv := range v {
			inner[pk] = pv
		}
		tx.holdings[k] = inner
	}
	for k, v := range r.storages {
		tx.storages[k] = v
	}
	r.mu.Unlock()

	if err := fn(ctx, tx); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	for id := range tx.dirtyInv {
		if inv, ok := tx.inventories[id]; ok {
			r.inventories[id] = inv
		} else {
			delete(r.inventories, id)
		}
	}
	for id := range tx.dirtyHold {
		r.holdings[id] = tx.holdings[id]
	}
	for id := range tx.dirtyStore {
		r.storages[id] = tx.storages[id]
	}
	return nil
}

type memoryTx struct {
	repo        *memoryRepo
	inventories map[string]Inventory
	holdings    map[string]map[string]Holding
	storages    map[string]StorageRef
	dirtyInv    map[string]bool
	dirtyHold   map[string]bool
	dirtyStore  map[string]bool
}

var errInjected = errors.New("injected failure")

func (tx *memoryTx) fail(op string) error {
	if tx.repo.failOn == op {
		return errInjected
	}
	return nil
}

func (tx *memoryTx) InsertInventory(ctx context.Context, inv Inventory) (Inventory, error) {
	inv.ID = uuid.NewString()
	inv.CreatedAt = time.Now()
	inv.UpdatedAt = inv.CreatedAt
	tx.inventories[inv.ID] = inv
	tx.dirtyInv[inv.ID] = true
	return inv, nil
}

func (tx *memoryTx) GetInventory(ctx context.Context, id string) (Inventory, error) {
	inv, ok := tx.inventories[id]
	if !ok {
		return Inventory{}, shared.ErrNotFound
	}
	return inv, nil
}

func (tx *memoryTx) GetInventoryForUpdate(ctx context.Context, id string) (Inventory, error) {
	return tx.GetInventory(ctx, id)
}

func (tx *memoryTx) ListInventories(ctx context.Context) ([]Inventory, error) {
	out := make([]Inventory, 0, len(tx.inventories))
	for _, inv := range tx.inventories {
		out = append(out, inv)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (tx *memoryTx) UpdateInventory(ctx context.Context, inv Inventory) (Inventory, error) {
	if err := tx.fail("UpdateInventory"); err != nil {
		return Inventory{}, err
	}
	if _, ok := tx.inventories[inv.ID]; !ok {
		return Inventory{}, shared.ErrNotFound
	}
	inv.UpdatedAt = time.Now()
	tx.inventories[inv.ID] = inv
	tx.dirtyInv[inv.ID] = true
	return inv, nil
}

func (tx *memoryTx) DeleteInventory(ctx context.Context, id string) error {
	if _, ok := tx.inventories[id]; !ok {
		return shared.ErrNotFound
	}
	delete(tx.inventories, id)
	tx.dirtyInv[id] = true
	return nil
}

func (tx *memoryTx) GetProductForShare(ctx context.Context, id string) (ProductRef, error) {
	tx.repo.mu.Lock()
	defer tx.repo.mu.Unlock()
	p, ok := tx.repo.products[id]
	if !ok {
		return ProductRef{}, shared.ErrNotFound
	}
	return p, nil
}

func (tx *memoryTx) GetHolding(ctx context.Context, inventoryID, productID string) (Holding, error) {
	h, ok := tx.holdings[inventoryID][productID]
	if !ok {
		return Holding{ProductID: productID}, ErrHoldingNotFound
	}
	return h, nil
}

func (tx *memoryTx) ListHoldings(ctx context.Context, inventoryID string) ([]Holding, error) {
	out := []Holding{}
	for _, h := range tx.holdings[inventoryID] {
		out = append(out, h)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ProductID < out[j].ProductID })
	return out, nil
}

func (tx *memoryTx) ListHoldingDetails(ctx context.Context, inventoryID string) ([]HoldingDetail, error) {
	holdings, _ := tx.ListHoldings(ctx, inventoryID)
	out := make([]HoldingDetail, 0, len(holdings))
	for _, h := range holdings {
		p, err := tx.GetProductForShare(ctx, h.ProductID)
		if err != nil {
			return nil, err
		}
		out = append(out, HoldingDetail{Product: p, Quantity: h.Quantity, Weight: h.Weight, Volume: h.Volume})
	}
	return out, nil
}

func (tx *memoryTx) SaveHolding(ctx context.Context, inventoryID string, h Holding) error {
	if err := tx.fail("SaveHolding"); err != nil {
		return err
	}
	if tx.holdings[inventoryID] == nil {
		tx.holdings[inventoryID] = map[string]Holding{}
	}
	tx.holdings[inventoryID][h.ProductID] = h
	tx.dirtyHold[inventoryID] = true
	return nil
}

func (tx *memoryTx) DeleteHolding(ctx context.Context, inventoryID, productID string) error {
	delete(tx.holdings[inventoryID], productID)
	tx.dirtyHold[inventoryID] = true
	return nil
}

func (tx *memoryTx) GetStorageForUpdate(ctx context.Context, id string) (StorageRef, error) {
	s, ok := tx.storages[id]
	if !ok {
		return StorageRef{}, shared.ErrNotFound
	}
	return s, nil
}

func (tx *memoryTx) SetStorageInventory(ctx context.Context, storageID, inventoryID string) error {
	s := tx.storages[storageID]
	s.InventoryID = inventoryID
	tx.storages[storageID] = s
	tx.dirtyStore[storageID] = true
	return nil
}

func (tx *memoryTx) ListStorageIDs(ctx context.Context, inventoryID string) ([]string, error) {
	out := []string{}
	for id, s := range tx.storages {
		if s.InventoryID == inventoryID {
			out = append(out, id)
		}
	}
	sort.Strings(out)
	return out, nil
}

func (tx *memoryTx) ListTotals(ctx context.Context) ([]LedgerTotals, error) {
	out := []LedgerTotals{}
	for id, inv := range tx.inventories {
		t := LedgerTotals{
			InventoryID:      id,
			TotalCapacity:    inv.TotalCapacity,
			TotalVolume:      inv.TotalVolume,
			CapacityOccupied: inv.CapacityOccupied,
			VolumeOccupied:   inv.VolumeOccupied,
		}
		for _, h := range tx.holdings[id] {
			t.HoldingsWeight += h.Weight
			t.HoldingsVolume += h.Volume
		}
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].InventoryID < out[j].InventoryID })
	return out, nil
}

type countingRecorder struct {
	mu         sync.Mutex
	ops        map[string]int
	violations map[string]int
}

func newCountingRecorder() *countingRecorder {
	return &countingRecorder{ops: map[string]int{}, violations: map[string]int{}}
}

func (c *countingRecorder) LedgerOp(op, outcome string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ops[op+":"+outcome]++
}

func (c *countingRecorder) InvariantViolation(field string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.violations[field]++
}

type recordingAudit struct {
	mu   sync.Mutex
	logs []shared.AuditLog
}

func (a *recordingAudit) Record(ctx context.Context, log shared.AuditLog) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.logs = append(a.logs, log)
	return nil
}

var (
	_ RepositoryPort = (*memoryRepo)(nil)
	_ TxRepository   = (*memoryTx)(nil)
)
