package ledger_test

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/pocketly/internal/ledger"
	"github.com/MrJamesThe3rd/pocketly/internal/notification"
	"github.com/MrJamesThe3rd/pocketly/internal/pocket"
)

var errInjected = errors.New("injected failure")

// memStore is an in-memory ledger.Repository with row locks on pockets and
// buffered writes that only become visible on Commit.
type memStore struct {
	mu      sync.Mutex
	pockets map[uuid.UUID]pocket.Pocket
	entries map[uuid.UUID]ledger.Entry
	locks   map[uuid.UUID]*sync.Mutex

	// failOn makes the named Tx method return errInjected.
	failOn string
}

func newMemStore() *memStore {
	return &memStore{
		pockets: make(map[uuid.UUID]pocket.Pocket),
		entries: make(map[uuid.UUID]ledger.Entry),
		locks:   make(map[uuid.UUID]*sync.Mutex),
	}
}

func (s *memStore) addPocket(ownerID uuid.UUID, name string, balance int64) uuid.UUID {
	s.mu.Lock()
	defer s.mu.Unlock()

	p := pocket.Pocket{
		ID:             uuid.New(),
		OwnerID:        ownerID,
		Name:           name,
		Balance:        decimal.NewFromInt(balance),
		InitialBalance: decimal.NewFromInt(balance),
		BalanceSource:  pocket.BalanceComputed,
	}
	s.pockets[p.ID] = p
	s.locks[p.ID] = &sync.Mutex{}

	return p.ID
}

func (s *memStore) pocket(id uuid.UUID) (pocket.Pocket, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.pockets[id]

	return p, ok
}

// ledgerSum is InitialBalance + Σincome − Σexpense over the committed entries.
func (s *memStore) ledgerSum(pocketID uuid.UUID) decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()

	sum := s.pockets[pocketID].InitialBalance
	for _, e := range s.entries {
		if e.PocketID == pocketID {
			sum = sum.Add(e.Kind.Effect(e.Amount))
		}
	}

	return sum
}

func (s *memStore) entryCount(pocketID uuid.UUID) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	for _, e := range s.entries {
		if e.PocketID == pocketID {
			n++
		}
	}

	return n
}

func (s *memStore) BeginTx(context.Context) (ledger.Tx, error) {
	if s.failOn == "BeginTx" {
		return nil, errInjected
	}

	return &memTx{
		s:        s,
		held:     make(map[uuid.UUID]bool),
		balances: make(map[uuid.UUID]decimal.Decimal),
		upserts:  make(map[uuid.UUID]ledger.Entry),
		deleted:  make(map[uuid.UUID]bool),
		dropped:  make(map[uuid.UUID]bool),
	}, nil
}

func (s *memStore) GetEntry(_ context.Context, kind ledger.Kind, ownerID, id uuid.UUID) (*ledger.Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[id]
	if !ok || e.Kind != kind || e.OwnerID != ownerID {
		return nil, ledger.ErrNotFound
	}

	return &e, nil
}

func (s *memStore) ListEntries(_ context.Context, filter ledger.ListFilter) ([]*ledger.Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []*ledger.Entry

	for _, e := range s.entries {
		if e.OwnerID != filter.OwnerID {
			continue
		}

		if filter.PocketID != nil && e.PocketID != *filter.PocketID {
			continue
		}

		for _, k := range filter.Kinds {
			if e.Kind == k {
				out = append(out, &e)
				break
			}
		}
	}

	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })

	return out, nil
}

type memTx struct {
	s    *memStore
	held map[uuid.UUID]bool
	done bool

	balances map[uuid.UUID]decimal.Decimal
	upserts  map[uuid.UUID]ledger.Entry
	deleted  map[uuid.UUID]bool
	dropped  map[uuid.UUID]bool
}

func (t *memTx) fail(method string) error {
	if t.s.failOn == method {
		return errInjected
	}

	return nil
}

func (t *memTx) LockPocket(_ context.Context, ownerID, pocketID uuid.UUID) (*pocket.Pocket, error) {
	if err := t.fail("LockPocket"); err != nil {
		return nil, err
	}

	t.s.mu.Lock()
	lock, ok := t.s.locks[pocketID]
	t.s.mu.Unlock()

	if !ok {
		return nil, pocket.ErrNotFound
	}

	if !t.held[pocketID] {
		lock.Lock()
		t.held[pocketID] = true
	}

	t.s.mu.Lock()
	p, ok := t.s.pockets[pocketID]
	t.s.mu.Unlock()

	if !ok || p.OwnerID != ownerID {
		return nil, pocket.ErrNotFound
	}

	return &p, nil
}

func (t *memTx) LockEntry(ctx context.Context, kind ledger.Kind, ownerID, id uuid.UUID) (*ledger.Entry, *pocket.Pocket, error) {
	t.s.mu.Lock()
	e, ok := t.s.entries[id]
	t.s.mu.Unlock()

	if !ok || e.Kind != kind || e.OwnerID != ownerID {
		return nil, nil, ledger.ErrNotFound
	}

	p, err := t.LockPocket(ctx, ownerID, e.PocketID)
	if err != nil {
		return nil, nil, err
	}

	// re-read under the pocket lock: a concurrent delete may have won
	t.s.mu.Lock()
	e, ok = t.s.entries[id]
	t.s.mu.Unlock()

	if !ok {
		return nil, nil, ledger.ErrNotFound
	}

	return &e, p, nil
}

func (t *memTx) InsertEntry(_ context.Context, e *ledger.Entry) error {
	if err := t.fail("InsertEntry"); err != nil {
		return err
	}

	e.ID = uuid.New()
	e.UpdatedAt = time.Now()
	if e.CreatedAt.IsZero() {
		e.CreatedAt = e.UpdatedAt
	}
	t.upserts[e.ID] = *e

	return nil
}

func (t *memTx) UpdateEntry(_ context.Context, e *ledger.Entry) error {
	if err := t.fail("UpdateEntry"); err != nil {
		return err
	}

	e.UpdatedAt = time.Now()
	t.upserts[e.ID] = *e

	return nil
}

func (t *memTx) DeleteEntry(_ context.Context, _ ledger.Kind, id uuid.UUID) error {
	if err := t.fail("DeleteEntry"); err != nil {
		return err
	}

	t.deleted[id] = true

	return nil
}

func (t *memTx) SetBalance(_ context.Context, pocketID uuid.UUID, balance decimal.Decimal) error {
	if err := t.fail("SetBalance"); err != nil {
		return err
	}

	t.balances[pocketID] = balance

	return nil
}

func (t *memTx) DeletePocketEntries(_ context.Context, pocketID uuid.UUID) (int64, error) {
	if err := t.fail("DeletePocketEntries"); err != nil {
		return 0, err
	}

	t.s.mu.Lock()
	defer t.s.mu.Unlock()

	var n int64

	for id, e := range t.s.entries {
		if e.PocketID == pocketID {
			t.deleted[id] = true
			n++
		}
	}

	return n, nil
}

func (t *memTx) DeletePocket(_ context.Context, pocketID uuid.UUID) error {
	if err := t.fail("DeletePocket"); err != nil {
		return err
	}

	t.dropped[pocketID] = true

	return nil
}

func (t *memTx) Commit() error {
	if err := t.fail("Commit"); err != nil {
		return err
	}

	t.s.mu.Lock()
	for id, b := range t.balances {
		p := t.s.pockets[id]
		p.Balance = b
		t.s.pockets[id] = p
	}

	for id, e := range t.upserts {
		t.s.entries[id] = e
	}

	for id := range t.deleted {
		delete(t.s.entries, id)
	}

	for id := range t.dropped {
		delete(t.s.pockets, id)
	}
	t.s.mu.Unlock()

	t.release()

	return nil
}

func (t *memTx) Rollback() error {
	t.release()
	return nil
}

func (t *memTx) release() {
	if t.done {
		return
	}

	t.done = true

	t.s.mu.Lock()
	defer t.s.mu.Unlock()

	for id := range t.held {
		t.s.locks[id].Unlock()
	}
}

// recorder collects emitted events; Emit may be called from many goroutines.
type recorder struct {
	mu     sync.Mutex
	events []notification.Event
}

func (r *recorder) Emit(ev notification.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.events = append(r.events, ev)
}

func (r *recorder) types() []notification.Type {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]notification.Type, 0, len(r.events))
	for _, ev := range r.events {
		out = append(out, ev.Type)
	}

	return out
}

func (r *recorder) reset() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.events = nil
}
