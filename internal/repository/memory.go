package repository

import (
	"context"
	"maps"
	"slices"
	"sort"
	"sync"

	"github.com/ryanwdavies/final-project-ThamesBoats/internal/model"
)

// MemoryStore keeps the marketplace in process memory. Update transactions
// work on a private copy of the state which replaces the live state only on
// success, so a failed transaction leaves nothing behind.
type MemoryStore struct {
	mu    sync.RWMutex
	state *memState
}

type memState struct {
	bootstrapped bool
	owner        model.Account
	suspended    bool

	// role membership, valued by insertion sequence for stable listing
	seq         uint64
	admins      map[model.Account]uint64
	clubOwners  map[model.Account]uint64
	ownerToClub map[model.Account]model.ClubID

	// id N lives at index N-1
	clubs []model.Club
	boats []model.Boat

	// Append-only logs, shared between the live state and a transaction's
	// copy. Rows past the live length belong to an uncommitted or
	// rolled-back transaction and are overwritten by the next append.
	purchases   []model.Purchase
	withdrawals []model.Withdrawal
	failures    []model.TransferFailure

	balances map[model.Account]model.Amount
}

// NewMemoryStore returns an empty, un-bootstrapped store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{state: &memState{
		admins:      make(map[model.Account]uint64),
		clubOwners:  make(map[model.Account]uint64),
		ownerToClub: make(map[model.Account]model.ClubID),
		balances:    make(map[model.Account]model.Amount),
	}}
}

// Records are value types, so copying the containers is a deep copy. The logs
// are never modified in place and keep their backing arrays, so a rollback
// only has to discard the longer slice headers.
func (s *memState) clone() *memState {
	c := *s
	c.admins = maps.Clone(s.admins)
	c.clubOwners = maps.Clone(s.clubOwners)
	c.ownerToClub = maps.Clone(s.ownerToClub)
	c.balances = maps.Clone(s.balances)
	c.clubs = slices.Clone(s.clubs)
	c.boats = slices.Clone(s.boats)
	return &c
}

// Bootstrap implements Store.
func (m *MemoryStore) Bootstrap(ctx context.Context, owner model.Account) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return err
	}

	if m.state.bootstrapped {
		if m.state.owner != owner {
			return ErrOwnerMismatch
		}
		return nil
	}
	m.state.bootstrapped = true
	m.state.owner = owner
	m.state.seq++
	m.state.admins[owner] = m.state.seq
	return nil
}

// Update implements Store.
func (m *MemoryStore) Update(ctx context.Context, fn func(tx Tx) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return err
	}

	work := m.state.clone()
	if err := fn(&memTx{s: work}); err != nil {
		return err
	}
	m.state = work
	return nil
}

// View implements Store.
func (m *MemoryStore) View(ctx context.Context, fn func(tx Tx) error) error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if err := ctx.Err(); err != nil {
		return err
	}
	return fn(&memTx{s: m.state, readOnly: true})
}

// Close implements Store.
func (m *MemoryStore) Close() {}

type memTx struct {
	s        *memState
	readOnly bool
}

func (t *memTx) write() error {
	if t.readOnly {
		return ErrReadOnly
	}
	return nil
}

func (t *memTx) Market(context.Context) (model.MarketInfo, error) {
	if !t.s.bootstrapped {
		return model.MarketInfo{}, ErrNotBootstrapped
	}
	return model.MarketInfo{Owner: t.s.owner, Suspended: t.s.suspended}, nil
}

func (t *memTx) SetSuspended(_ context.Context, suspended bool) error {
	if err := t.write(); err != nil {
		return err
	}
	t.s.suspended = suspended
	return nil
}

func (t *memTx) IsMarketAdmin(_ context.Context, a model.Account) (bool, error) {
	_, ok := t.s.admins[a]
	return ok, nil
}

func (t *memTx) InsertMarketAdmin(_ context.Context, a model.Account) error {
	if err := t.write(); err != nil {
		return err
	}
	t.s.seq++
	t.s.admins[a] = t.s.seq
	return nil
}

func (t *memTx) DeleteMarketAdmin(_ context.Context, a model.Account) error {
	if err := t.write(); err != nil {
		return err
	}
	delete(t.s.admins, a)
	return nil
}

func (t *memTx) ListMarketAdmins(context.Context) ([]model.Account, error) {
	return sortedMembers(t.s.admins), nil
}

func (t *memTx) IsClubOwner(_ context.Context, a model.Account) (bool, error) {
	_, ok := t.s.clubOwners[a]
	return ok, nil
}

func (t *memTx) InsertClubOwner(_ context.Context, a model.Account) error {
	if err := t.write(); err != nil {
		return err
	}
	t.s.seq++
	t.s.clubOwners[a] = t.s.seq
	return nil
}

func (t *memTx) DeleteClubOwner(_ context.Context, a model.Account) error {
	if err := t.write(); err != nil {
		return err
	}
	delete(t.s.clubOwners, a)
	return nil
}

func (t *memTx) ListClubOwners(context.Context) ([]model.Account, error) {
	return sortedMembers(t.s.clubOwners), nil
}

func sortedMembers(set map[model.Account]uint64) []model.Account {
	out := make([]model.Account, 0, len(set))
	for a := range set {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return set[out[i]] < set[out[j]] })
	return out
}

func (t *memTx) OwnedClub(_ context.Context, a model.Account) (model.ClubID, error) {
	return t.s.ownerToClub[a], nil
}

func (t *memTx) SetOwnedClub(_ context.Context, a model.Account, id model.ClubID) error {
	if err := t.write(); err != nil {
		return err
	}
	t.s.ownerToClub[a] = id
	return nil
}

func (t *memTx) InsertClub(_ context.Context, c *model.Club) error {
	if err := t.write(); err != nil {
		return err
	}
	c.ID = model.ClubID(len(t.s.clubs) + 1)
	t.s.clubs = append(t.s.clubs, *c)
	return nil
}

func (t *memTx) club(id model.ClubID) (*model.Club, error) {
	if id < 1 || int(id) > len(t.s.clubs) {
		return nil, ErrNotFound
	}
	return &t.s.clubs[id-1], nil
}

func (t *memTx) GetClub(_ context.Context, id model.ClubID) (model.Club, error) {
	c, err := t.club(id)
	if err != nil {
		return model.Club{}, err
	}
	return *c, nil
}

func (t *memTx) SetClubStatus(_ context.Context, id model.ClubID, status model.ClubStatus) error {
	if err := t.write(); err != nil {
		return err
	}
	c, err := t.club(id)
	if err != nil {
		return err
	}
	c.Status = status
	return nil
}

func (t *memTx) ListClubIDs(context.Context) ([]model.ClubID, error) {
	ids := make([]model.ClubID, len(t.s.clubs))
	for i, c := range t.s.clubs {
		ids[i] = c.ID
	}
	return ids, nil
}

func (t *memTx) InsertBoat(_ context.Context, b *model.Boat) error {
	if err := t.write(); err != nil {
		return err
	}
	b.ID = model.BoatID(len(t.s.boats) + 1)
	t.s.boats = append(t.s.boats, *b)
	return nil
}

func (t *memTx) boat(id model.BoatID) (*model.Boat, error) {
	if id < 1 || int(id) > len(t.s.boats) {
		return nil, ErrNotFound
	}
	return &t.s.boats[id-1], nil
}

func (t *memTx) GetBoat(_ context.Context, id model.BoatID) (model.Boat, error) {
	b, err := t.boat(id)
	if err != nil {
		return model.Boat{}, err
	}
	return *b, nil
}

func (t *memTx) SetBoatStatus(_ context.Context, id model.BoatID, status model.BoatStatus) error {
	if err := t.write(); err != nil {
		return err
	}
	b, err := t.boat(id)
	if err != nil {
		return err
	}
	b.Status = status
	return nil
}

func (t *memTx) SetBoatQuantity(_ context.Context, id model.BoatID, quantity int64) error {
	if err := t.write(); err != nil {
		return err
	}
	b, err := t.boat(id)
	if err != nil {
		return err
	}
	b.Quantity = quantity
	return nil
}

func (t *memTx) ListBoatIDsByClub(_ context.Context, club model.ClubID) ([]model.BoatID, error) {
	var ids []model.BoatID
	for _, b := range t.s.boats {
		if b.ClubID == club {
			ids = append(ids, b.ID)
		}
	}
	return ids, nil
}

func (t *memTx) Balance(_ context.Context, a model.Account) (model.Amount, error) {
	return t.s.balances[a], nil
}

func (t *memTx) SetBalance(_ context.Context, a model.Account, amount model.Amount) error {
	if err := t.write(); err != nil {
		return err
	}
	if amount == 0 {
		delete(t.s.balances, a)
		return nil
	}
	t.s.balances[a] = amount
	return nil
}

func (t *memTx) InsertPurchase(_ context.Context, p *model.Purchase) error {
	if err := t.write(); err != nil {
		return err
	}
	p.ID = model.PurchaseID(len(t.s.purchases) + 1)
	t.s.purchases = append(t.s.purchases, *p)
	return nil
}

func (t *memTx) GetPurchase(_ context.Context, id model.PurchaseID) (model.Purchase, error) {
	if id < 1 || int(id) > len(t.s.purchases) {
		return model.Purchase{}, ErrNotFound
	}
	return t.s.purchases[id-1], nil
}

func (t *memTx) ListPurchasesByBuyer(_ context.Context, buyer model.Account) ([]model.Purchase, error) {
	var out []model.Purchase
	for _, p := range t.s.purchases {
		if p.Buyer == buyer {
			out = append(out, p)
		}
	}
	return out, nil
}

func (t *memTx) InsertWithdrawal(_ context.Context, w *model.Withdrawal) error {
	if err := t.write(); err != nil {
		return err
	}
	w.ID = int64(len(t.s.withdrawals) + 1)
	t.s.withdrawals = append(t.s.withdrawals, *w)
	return nil
}

func (t *memTx) ListWithdrawals(_ context.Context, a model.Account) ([]model.Withdrawal, error) {
	var out []model.Withdrawal
	for _, w := range t.s.withdrawals {
		if w.Account == a {
			out = append(out, w)
		}
	}
	return out, nil
}

func (t *memTx) InsertTransferFailure(_ context.Context, f *model.TransferFailure) error {
	if err := t.write(); err != nil {
		return err
	}
	f.ID = int64(len(t.s.failures) + 1)
	t.s.failures = append(t.s.failures, *f)
	return nil
}

func (t *memTx) ListTransferFailures(context.Context) ([]model.TransferFailure, error) {
	return slices.Clone(t.s.failures), nil
}
