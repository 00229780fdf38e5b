// Package memory is an in-process storage.Store. Units of work lock the rows
// they read for update and stage their writes, so a failed unit leaves no
// trace and units touching different rows run side by side.
package memory

import (
	"context"
	"github.com/rajankumarrkr/tradeIndia/internal/domain"
	"github.com/rajankumarrkr/tradeIndia/internal/storage"
	"github.com/rajankumarrkr/tradeIndia/pkg/keylock"
	"sort"
	"sync"
	"time"
)

type sequences struct {
	transaction int64
	investment  int64
	user        int64
	bank        int64
	plan        int64
}

// rowLocks mirror SELECT ... FOR UPDATE: a row stays locked until the unit
// that locked it ends.
type rowLocks struct {
	wallets      *keylock.KeyLock
	transactions *keylock.KeyLock
	investments  *keylock.KeyLock
}

type Store struct {
	rows rowLocks
	mu   sync.RWMutex
	now  func() time.Time

	seq          sequences
	wallets      map[int64]domain.Wallet
	transactions map[int64]domain.Transaction
	investments  map[int64]domain.Investment
	plans        map[int64]domain.Plan
	users        map[int64]domain.User
	banks        map[int64]domain.BankAccount
}

var _ storage.Store = (*Store)(nil)

func New() *Store {
	return &Store{
		rows: rowLocks{
			wallets:      keylock.New(),
			transactions: keylock.New(),
			investments:  keylock.New(),
		},
		now:          time.Now,
		wallets:      make(map[int64]domain.Wallet),
		transactions: make(map[int64]domain.Transaction),
		investments:  make(map[int64]domain.Investment),
		plans:        make(map[int64]domain.Plan),
		users:        make(map[int64]domain.User),
		banks:        make(map[int64]domain.BankAccount),
	}
}

// WithClock replaces the clock used for generated timestamps.
func (s *Store) WithClock(now func() time.Time) *Store {
	s.now = now
	return s
}

func (s *Store) InTx(ctx context.Context, fn func(ctx context.Context, tx storage.Tx) error) error {
	t := &unit{
		store:        s,
		held:         make(map[rowKey]func()),
		wallets:      make(map[int64]domain.Wallet),
		transactions: make(map[int64]domain.Transaction),
		investments:  make(map[int64]domain.Investment),
	}
	defer t.release()

	if err := fn(ctx, t); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for id, w := range t.wallets {
		s.wallets[id] = w
	}
	for id, tr := range t.transactions {
		s.transactions[id] = tr
	}
	for id, inv := range t.investments {
		s.investments[id] = inv
	}

	return nil
}

// nextID hands out ids the way a database sequence does: a rolled back unit
// leaves a gap.
func (s *Store) nextID(counter *int64) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	*counter++
	return *counter
}

type rowKey struct {
	table string
	id    int64
}

type unit struct {
	store        *Store
	held         map[rowKey]func()
	wallets      map[int64]domain.Wallet
	transactions map[int64]domain.Transaction
	investments  map[int64]domain.Investment
}

func (u *unit) lock(locks *keylock.KeyLock, table string, id int64) {
	key := rowKey{table: table, id: id}
	if _, ok := u.held[key]; ok {
		return
	}
	u.held[key] = locks.Lock(id)
}

func (u *unit) release() {
	for key, unlock := range u.held {
		unlock()
		delete(u.held, key)
	}
}

func (u *unit) WalletForUpdate(_ context.Context, userID int64) (*domain.Wallet, error) {
	u.lock(u.store.rows.wallets, "wallets", userID)
	if w, ok := u.wallets[userID]; ok {
		return &w, nil
	}

	u.store.mu.RLock()
	w, ok := u.store.wallets[userID]
	u.store.mu.RUnlock()
	if !ok {
		w = domain.Wallet{UserID: userID, UpdatedAt: u.store.now()}
		u.wallets[userID] = w
	}

	return &w, nil
}

func (u *unit) SaveWallet(_ context.Context, w *domain.Wallet) error {
	u.lock(u.store.rows.wallets, "wallets", w.UserID)
	saved := *w
	saved.UpdatedAt = u.store.now()
	u.wallets[w.UserID] = saved
	*w = saved
	return nil
}

func (u *unit) InsertTransaction(_ context.Context, t *domain.Transaction) error {
	t.ID = u.store.nextID(&u.store.seq.transaction)
	if t.CreatedAt.IsZero() {
		t.CreatedAt = u.store.now()
	}
	u.transactions[t.ID] = *t
	return nil
}

func (u *unit) TransactionForUpdate(_ context.Context, id int64) (*domain.Transaction, error) {
	u.lock(u.store.rows.transactions, "transactions", id)
	if t, ok := u.transactions[id]; ok {
		return &t, nil
	}

	u.store.mu.RLock()
	t, ok := u.store.transactions[id]
	u.store.mu.RUnlock()
	if !ok {
		return nil, domain.ErrTransactionNotFound
	}

	return &t, nil
}

func (u *unit) SaveTransactionStatus(ctx context.Context, t *domain.Transaction) error {
	current, err := u.TransactionForUpdate(ctx, t.ID)
	if err != nil {
		return err
	}

	current.Status = t.Status
	current.ResolvedAt = t.ResolvedAt
	u.transactions[t.ID] = *current
	return nil
}

func (u *unit) InsertInvestment(_ context.Context, inv *domain.Investment) error {
	inv.ID = u.store.nextID(&u.store.seq.investment)
	if inv.CreatedAt.IsZero() {
		inv.CreatedAt = u.store.now()
	}
	u.investments[inv.ID] = *inv
	return nil
}

func (u *unit) InvestmentForUpdate(_ context.Context, id int64) (*domain.Investment, error) {
	u.lock(u.store.rows.investments, "investments", id)
	if inv, ok := u.investments[id]; ok {
		return &inv, nil
	}

	u.store.mu.RLock()
	inv, ok := u.store.investments[id]
	u.store.mu.RUnlock()
	if !ok {
		return nil, domain.ErrInvestmentNotFound
	}

	return &inv, nil
}

func (u *unit) SaveInvestment(_ context.Context, inv *domain.Investment) error {
	u.investments[inv.ID] = *inv
	return nil
}

func (s *Store) Wallet(_ context.Context, userID int64) (*domain.Wallet, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	w, ok := s.wallets[userID]
	if !ok {
		return &domain.Wallet{UserID: userID}, nil
	}
	return &w, nil
}

func (s *Store) Transaction(_ context.Context, id int64) (*domain.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, ok := s.transactions[id]
	if !ok {
		return nil, domain.ErrTransactionNotFound
	}
	return &t, nil
}

func (s *Store) Transactions(_ context.Context, userID int64, kind domain.TransactionType) ([]domain.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []domain.Transaction
	for _, t := range s.transactions {
		if t.UserID == userID && (kind == "" || t.Type == kind) {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

func (s *Store) PendingTransactions(_ context.Context, kind domain.TransactionType) ([]domain.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []domain.Transaction
	for _, t := range s.transactions {
		if t.Status == domain.StatusPending && (kind == "" || t.Type == kind) {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *Store) ActiveInvestments(_ context.Context) ([]domain.Investment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []domain.Investment
	for _, inv := range s.investments {
		if inv.IsActive {
			out = append(out, inv)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *Store) Investments(_ context.Context, userID int64) ([]domain.Investment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []domain.Investment
	for _, inv := range s.investments {
		if inv.UserID == userID {
			out = append(out, inv)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

// AddPlan seeds the plan catalog.
func (s *Store) AddPlan(p domain.Plan) domain.Plan {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.seq.plan++
	p.ID = s.seq.plan
	s.plans[p.ID] = p
	return p
}

func (s *Store) Plans(_ context.Context) ([]domain.Plan, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []domain.Plan
	for _, p := range s.plans {
		if p.IsActive {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].InvestAmount.LessThan(out[j].InvestAmount) })
	return out, nil
}

func (s *Store) Plan(_ context.Context, id int64) (*domain.Plan, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.plans[id]
	if !ok {
		return nil, domain.ErrPlanNotFound
	}
	return &p, nil
}

func (s *Store) CreateUser(_ context.Context, u *domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.users {
		if existing.Login == u.Login || (u.ReferralCode != "" && existing.ReferralCode == u.ReferralCode) {
			return domain.ErrUserExists
		}
	}
	if u.ReferredBy != nil {
		if _, ok := s.users[*u.ReferredBy]; !ok {
			return domain.ErrInvalidReference
		}
	}

	s.seq.user++
	u.ID = s.seq.user
	if u.RegisteredAt.IsZero() {
		u.RegisteredAt = s.now()
	}
	s.users[u.ID] = *u
	return nil
}

func (s *Store) UserByID(_ context.Context, id int64) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return &u, nil
}

func (s *Store) UserByLogin(_ context.Context, login string) (*domain.User, error) {
	return s.findUser(func(u domain.User) bool { return u.Login == login })
}

func (s *Store) UserByReferralCode(_ context.Context, code string) (*domain.User, error) {
	return s.findUser(func(u domain.User) bool { return u.ReferralCode == code })
}

func (s *Store) findUser(match func(domain.User) bool) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, u := range s.users {
		if match(u) {
			return &u, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (s *Store) Users(_ context.Context) ([]domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.User, 0, len(s.users))
	for _, u := range s.users {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *Store) SetUserBlocked(_ context.Context, id int64, blocked bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return domain.ErrUserNotFound
	}
	u.IsBlocked = blocked
	s.users[id] = u
	return nil
}

func (s *Store) CreateBankAccount(_ context.Context, b *domain.BankAccount) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.seq.bank++
	b.ID = s.seq.bank
	if b.CreatedAt.IsZero() {
		b.CreatedAt = s.now()
	}
	s.banks[b.ID] = *b
	return nil
}

func (s *Store) BankAccount(_ context.Context, id, userID int64) (*domain.BankAccount, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	b, ok := s.banks[id]
	if !ok || b.UserID != userID {
		return nil, domain.ErrBankAccountNotFound
	}
	return &b, nil
}

func (s *Store) BankAccounts(_ context.Context, userID int64) ([]domain.BankAccount, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []domain.BankAccount
	for _, b := range s.banks {
		if b.UserID == userID {
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *Store) Upline(_ context.Context, userID int64, depth int) ([]int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[userID]
	if !ok {
		return nil, domain.ErrUserNotFound
	}

	var out []int64
	seen := map[int64]bool{userID: true}
	for len(out) < depth && u.ReferredBy != nil {
		parent, ok := s.users[*u.ReferredBy]
		if !ok || seen[parent.ID] {
			break
		}
		seen[parent.ID] = true
		out = append(out, parent.ID)
		u = parent
	}
	return out, nil
}
