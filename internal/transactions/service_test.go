package transactions

import (
	"context"
	"sort"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Shavkat07/Moneta/internal/domain"
)

// memStore is an in-memory Store with transactional semantics: every
// WithinTx call runs against a scratch copy that only replaces the committed
// state when the callback succeeds.
type memStore struct {
	wallets map[uuid.UUID]*domain.Wallet
	txs     map[uuid.UUID]*domain.Transaction

	// lockCalls records the id batches passed to LockWallets, in call order.
	lockCalls [][]uuid.UUID
	// txLockCalls records the id batches passed to LockTransactions.
	txLockCalls [][]uuid.UUID
	// failOnInsert aborts the Nth InsertTransaction call (1-based) when set.
	failOnInsert int
	insertCalls  int
}

func newMemStore() *memStore {
	return &memStore{
		wallets: make(map[uuid.UUID]*domain.Wallet),
		txs:     make(map[uuid.UUID]*domain.Transaction),
	}
}

func cloneWallet(w *domain.Wallet) *domain.Wallet {
	c := *w
	return &c
}

func cloneTx(t *domain.Transaction) *domain.Transaction {
	c := *t
	if t.RelatedTransactionID != nil {
		id := *t.RelatedTransactionID
		c.RelatedTransactionID = &id
	}
	return &c
}

func (m *memStore) WithinTx(_ context.Context, fn func(uow UnitOfWork) error) error {
	scratch := &memUnitOfWork{
		store:   m,
		wallets: make(map[uuid.UUID]*domain.Wallet, len(m.wallets)),
		txs:     make(map[uuid.UUID]*domain.Transaction, len(m.txs)),
	}
	for id, w := range m.wallets {
		scratch.wallets[id] = cloneWallet(w)
	}
	for id, t := range m.txs {
		scratch.txs[id] = cloneTx(t)
	}

	if err := fn(scratch); err != nil {
		return err
	}

	m.wallets = scratch.wallets
	m.txs = scratch.txs
	return nil
}

type memUnitOfWork struct {
	store   *memStore
	wallets map[uuid.UUID]*domain.Wallet
	txs     map[uuid.UUID]*domain.Transaction
}

func (u *memUnitOfWork) LockWallets(_ context.Context, ownerID uuid.UUID, ids []uuid.UUID) (map[uuid.UUID]*domain.Wallet, error) {
	u.store.lockCalls = append(u.store.lockCalls, append([]uuid.UUID(nil), ids...))

	out := make(map[uuid.UUID]*domain.Wallet, len(ids))
	for _, id := range ids {
		w, ok := u.wallets[id]
		if !ok {
			return nil, domain.ErrWalletNotFound
		}
		if w.UserID != ownerID {
			return nil, domain.ErrForbidden
		}
		out[id] = w
	}
	return out, nil
}

func (u *memUnitOfWork) LockTransactions(_ context.Context, ids []uuid.UUID) (map[uuid.UUID]*domain.Transaction, error) {
	u.store.txLockCalls = append(u.store.txLockCalls, append([]uuid.UUID(nil), ids...))

	out := make(map[uuid.UUID]*domain.Transaction, len(ids))
	for _, id := range ids {
		if t, ok := u.txs[id]; ok {
			out[id] = cloneTx(t)
		}
	}
	return out, nil
}

func (u *memUnitOfWork) GetWallet(_ context.Context, id uuid.UUID) (*domain.Wallet, error) {
	w, ok := u.wallets[id]
	if !ok {
		return nil, domain.ErrWalletNotFound
	}
	return cloneWallet(w), nil
}

func (u *memUnitOfWork) SaveWalletBalance(_ context.Context, w *domain.Wallet) error {
	stored, ok := u.wallets[w.ID]
	if !ok {
		return domain.ErrWalletNotFound
	}
	stored.Balance = w.Balance
	return nil
}

func (u *memUnitOfWork) GetTransaction(_ context.Context, id uuid.UUID) (*domain.Transaction, error) {
	t, ok := u.txs[id]
	if !ok {
		return nil, domain.ErrTransactionNotFound
	}
	return cloneTx(t), nil
}

func (u *memUnitOfWork) InsertTransaction(_ context.Context, t *domain.Transaction) error {
	u.store.insertCalls++
	if u.store.failOnInsert > 0 && u.store.insertCalls == u.store.failOnInsert {
		return errors.New("storage write failed")
	}
	u.txs[t.ID] = cloneTx(t)
	return nil
}

func (u *memUnitOfWork) UpdateTransaction(_ context.Context, t *domain.Transaction) error {
	if _, ok := u.txs[t.ID]; !ok {
		return domain.ErrTransactionNotFound
	}
	u.txs[t.ID] = cloneTx(t)
	return nil
}

func (u *memUnitOfWork) DeleteTransaction(_ context.Context, id uuid.UUID) error {
	if _, ok := u.txs[id]; !ok {
		return domain.ErrTransactionNotFound
	}
	delete(u.txs, id)
	return nil
}

// fakeConverter converts through fixed per-currency base rates.
type fakeConverter struct {
	rates map[int64]decimal.Decimal
	calls int
}

func (f *fakeConverter) Convert(_ context.Context, amount decimal.Decimal, fromID, toID int64, _ *time.Time) (decimal.Decimal, error) {
	if fromID == toID {
		return amount, nil
	}
	f.calls++
	return amount.Mul(f.rates[fromID]).Div(f.rates[toID]).Round(2), nil
}

const (
	uzsCurrency int64 = 1
	usdCurrency int64 = 2
	eurCurrency int64 = 3
)

type fixture struct {
	store   *memStore
	conv    *fakeConverter
	svc     *Service
	owner   uuid.UUID
	cash    *domain.Wallet // USD, 1000.00
	savings *domain.Wallet // USD, 0.00
	euro    *domain.Wallet // EUR, 50.00
	card    *domain.Wallet // USD card, 0.00
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	f := &fixture{
		store: newMemStore(),
		conv: &fakeConverter{rates: map[int64]decimal.Decimal{
			uzsCurrency: decimal.NewFromInt(1),
			usdCurrency: decimal.RequireFromString("12800.00"),
			eurCurrency: decimal.RequireFromString("14000.00"),
		}},
		owner: uuid.New(),
	}
	f.svc = NewService(f.store, f.conv, zap.NewNop())

	f.cash = f.addWallet("Wallet 1", usdCurrency, "1000.00", domain.WalletCash)
	f.savings = f.addWallet("Wallet 2", usdCurrency, "0.00", domain.WalletBankAccount)
	f.euro = f.addWallet("Euro Stash", eurCurrency, "50.00", domain.WalletCash)
	f.card = f.addWallet("Credit Card", usdCurrency, "0.00", domain.WalletCard)
	return f
}

func (f *fixture) addWallet(name string, currencyID int64, balance string, wt domain.WalletType) *domain.Wallet {
	w := &domain.Wallet{
		ID:         uuid.New(),
		UserID:     f.owner,
		Name:       name,
		CurrencyID: currencyID,
		Balance:    decimal.RequireFromString(balance),
		Type:       wt,
		CreatedAt:  time.Now().UTC(),
	}
	f.store.wallets[w.ID] = w
	return w
}

func (f *fixture) balance(id uuid.UUID) decimal.Decimal {
	return f.store.wallets[id].Balance
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func int64Ptr(v int64) *int64 { return &v }

func strPtr(s string) *string { return &s }

func TestCreateIncome(t *testing.T) {
	f := newFixture(t)

	tx, err := f.svc.Create(context.Background(), f.owner, CreateRequest{
		WalletID:   f.cash.ID,
		Amount:     dec("250.00"),
		Type:       domain.TransactionIncome,
		CategoryID: int64Ptr(7),
	})
	require.NoError(t, err)

	assert.True(t, f.balance(f.cash.ID).Equal(dec("1250.00")))
	stored := f.store.txs[tx.ID]
	require.NotNil(t, stored)
	assert.Equal(t, domain.TransactionIncome, stored.Type)
	assert.Equal(t, int64(7), *stored.CategoryID)
	assert.Nil(t, stored.RelatedTransactionID)
}

func TestCreateExpense(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Create(context.Background(), f.owner, CreateRequest{
		WalletID:   f.cash.ID,
		Amount:     dec("300.00"),
		Type:       domain.TransactionExpense,
		CategoryID: int64Ptr(1),
	})
	require.NoError(t, err)
	assert.True(t, f.balance(f.cash.ID).Equal(dec("700.00")))
}

func TestCreateExpenseInsufficientFunds(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Create(context.Background(), f.owner, CreateRequest{
		WalletID:   f.cash.ID,
		Amount:     dec("1000.01"),
		Type:       domain.TransactionExpense,
		CategoryID: int64Ptr(1),
	})

	var insufficient *domain.InsufficientFundsError
	require.ErrorAs(t, err, &insufficient)
	assert.True(t, f.balance(f.cash.ID).Equal(dec("1000.00")), "no partial mutation")
	assert.Empty(t, f.store.txs, "no row persisted")
}

func TestCreateExpenseOnCardGoesNegative(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Create(context.Background(), f.owner, CreateRequest{
		WalletID:   f.card.ID,
		Amount:     dec("75.00"),
		Type:       domain.TransactionExpense,
		CategoryID: int64Ptr(1),
	})
	require.NoError(t, err)
	assert.True(t, f.balance(f.card.ID).Equal(dec("-75.00")))
}

func TestCreateValidationRejectedBeforeLocking(t *testing.T) {
	f := newFixture(t)

	cases := []struct {
		name string
		req  CreateRequest
		want error
	}{
		{
			"zero amount",
			CreateRequest{WalletID: f.cash.ID, Amount: dec("0"), Type: domain.TransactionIncome, CategoryID: int64Ptr(1)},
			domain.ErrInvalidAmount,
		},
		{
			"negative amount",
			CreateRequest{WalletID: f.cash.ID, Amount: dec("-5"), Type: domain.TransactionExpense, CategoryID: int64Ptr(1)},
			domain.ErrInvalidAmount,
		},
		{
			"transfer without target",
			CreateRequest{WalletID: f.cash.ID, Amount: dec("10"), Type: domain.TransactionTransfer},
			domain.ErrMissingTarget,
		},
		{
			"transfer to itself",
			CreateRequest{WalletID: f.cash.ID, Amount: dec("10"), Type: domain.TransactionTransfer, TargetWalletID: &f.cash.ID},
			domain.ErrSameWallet,
		},
		{
			"expense without category",
			CreateRequest{WalletID: f.cash.ID, Amount: dec("10"), Type: domain.TransactionExpense},
			domain.ErrCategoryRequired,
		},
		{
			"unknown type",
			CreateRequest{WalletID: f.cash.ID, Amount: dec("10"), Type: "refund", CategoryID: int64Ptr(1)},
			domain.ErrInvalidType,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.svc.Create(context.Background(), f.owner, tc.req)
			assert.ErrorIs(t, err, tc.want)
		})
	}
	assert.Empty(t, f.store.lockCalls, "validation failures must not take locks")
}

func TestCreateWalletAccessErrors(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Create(context.Background(), f.owner, CreateRequest{
		WalletID:   uuid.New(),
		Amount:     dec("10"),
		Type:       domain.TransactionIncome,
		CategoryID: int64Ptr(1),
	})
	assert.ErrorIs(t, err, domain.ErrWalletNotFound)

	stranger := f.addWallet("Not Mine", usdCurrency, "500.00", domain.WalletCash)
	stranger.UserID = uuid.New()

	_, err = f.svc.Create(context.Background(), f.owner, CreateRequest{
		WalletID:   stranger.ID,
		Amount:     dec("10"),
		Type:       domain.TransactionIncome,
		CategoryID: int64Ptr(1),
	})
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestTransferSameCurrency(t *testing.T) {
	f := newFixture(t)

	tx, err := f.svc.Create(context.Background(), f.owner, CreateRequest{
		WalletID:       f.cash.ID,
		Amount:         dec("100.00"),
		Type:           domain.TransactionTransfer,
		TargetWalletID: &f.savings.ID,
	})
	require.NoError(t, err)

	assert.True(t, f.balance(f.cash.ID).Equal(dec("900.00")))
	assert.True(t, f.balance(f.savings.ID).Equal(dec("100.00")))
	assert.Zero(t, f.conv.calls, "same-currency transfer needs no rate lookup")

	// conservation when both wallets share a currency
	total := f.balance(f.cash.ID).Add(f.balance(f.savings.ID))
	assert.True(t, total.Equal(dec("1000.00")))

	source := f.store.txs[tx.ID]
	require.NotNil(t, source)
	require.NotNil(t, source.RelatedTransactionID)
	mirror := f.store.txs[*source.RelatedTransactionID]
	require.NotNil(t, mirror)

	assert.Equal(t, domain.TransactionExpense, source.Type)
	assert.Equal(t, domain.TransactionIncome, mirror.Type)
	assert.Equal(t, f.savings.ID, mirror.WalletID)
	assert.True(t, mirror.Amount.Equal(dec("100.00")))
	assert.Nil(t, mirror.CategoryID)
	require.NotNil(t, mirror.RelatedTransactionID)
	assert.Equal(t, source.ID, *mirror.RelatedTransactionID, "link is symmetric")
	assert.Equal(t, "Transfer to Wallet 2", *source.Description)
	assert.Equal(t, "Transfer from Wallet 1", *mirror.Description)
}

func TestTransferCrossCurrency(t *testing.T) {
	f := newFixture(t)

	// 100 USD -> EUR at 12800/14000: 91.43
	tx, err := f.svc.Create(context.Background(), f.owner, CreateRequest{
		WalletID:       f.cash.ID,
		Amount:         dec("100.00"),
		Type:           domain.TransactionTransfer,
		TargetWalletID: &f.euro.ID,
	})
	require.NoError(t, err)

	assert.True(t, f.balance(f.cash.ID).Equal(dec("900.00")))
	assert.True(t, f.balance(f.euro.ID).Equal(dec("141.43")))

	mirror := f.store.txs[*f.store.txs[tx.ID].RelatedTransactionID]
	assert.True(t, mirror.Amount.Equal(dec("91.43")), "mirror stores the converted amount")

	// deleting the transfer restores both wallets exactly
	require.NoError(t, f.svc.Delete(context.Background(), f.owner, tx.ID))
	assert.True(t, f.balance(f.cash.ID).Equal(dec("1000.00")))
	assert.True(t, f.balance(f.euro.ID).Equal(dec("50.00")))
	assert.Empty(t, f.store.txs)
}

func TestTransferInsufficientFundsLeavesNothing(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Create(context.Background(), f.owner, CreateRequest{
		WalletID:       f.savings.ID, // empty wallet
		Amount:         dec("10.00"),
		Type:           domain.TransactionTransfer,
		TargetWalletID: &f.cash.ID,
	})

	var insufficient *domain.InsufficientFundsError
	require.ErrorAs(t, err, &insufficient)
	assert.True(t, f.balance(f.savings.ID).Equal(dec("0.00")))
	assert.True(t, f.balance(f.cash.ID).Equal(dec("1000.00")))
	assert.Empty(t, f.store.txs)
}

func TestTransferRollsBackOnPersistFailure(t *testing.T) {
	f := newFixture(t)
	f.store.failOnInsert = 2 // mirror leg write fails

	_, err := f.svc.Create(context.Background(), f.owner, CreateRequest{
		WalletID:       f.cash.ID,
		Amount:         dec("100.00"),
		Type:           domain.TransactionTransfer,
		TargetWalletID: &f.savings.ID,
	})
	require.Error(t, err)

	assert.True(t, f.balance(f.cash.ID).Equal(dec("1000.00")), "debit rolled back")
	assert.True(t, f.balance(f.savings.ID).Equal(dec("0.00")), "credit rolled back")
	assert.Empty(t, f.store.txs, "no orphan leg survives")
}

func TestLockOrderDeterministic(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Create(context.Background(), f.owner, CreateRequest{
		WalletID:       f.cash.ID,
		Amount:         dec("10.00"),
		Type:           domain.TransactionTransfer,
		TargetWalletID: &f.savings.ID,
	})
	require.NoError(t, err)

	_, err = f.svc.Create(context.Background(), f.owner, CreateRequest{
		WalletID:       f.savings.ID,
		Amount:         dec("5.00"),
		Type:           domain.TransactionTransfer,
		TargetWalletID: &f.cash.ID,
	})
	require.NoError(t, err)

	require.Len(t, f.store.lockCalls, 2)
	for _, ids := range f.store.lockCalls {
		require.Len(t, ids, 2)
		assert.True(t, sort.SliceIsSorted(ids, func(i, j int) bool {
			return ids[i].String() < ids[j].String()
		}), "wallets must be locked in ascending id order")
	}
	// both directions produce the identical lock sequence
	assert.Equal(t, f.store.lockCalls[0], f.store.lockCalls[1])
}

func TestUpdateMetadataOnly(t *testing.T) {
	f := newFixture(t)

	tx, err := f.svc.Create(context.Background(), f.owner, CreateRequest{
		WalletID:   f.cash.ID,
		Amount:     dec("50.00"),
		Type:       domain.TransactionExpense,
		CategoryID: int64Ptr(1),
	})
	require.NoError(t, err)
	locksBefore := len(f.store.lockCalls)

	updated, err := f.svc.Update(context.Background(), f.owner, tx.ID, domain.TransactionPatch{
		Description: strPtr("groceries"),
		CategoryID:  int64Ptr(4),
	})
	require.NoError(t, err)

	assert.Equal(t, "groceries", *updated.Description)
	assert.Equal(t, int64(4), *updated.CategoryID)
	assert.True(t, f.balance(f.cash.ID).Equal(dec("950.00")), "balance untouched")
	assert.Len(t, f.store.lockCalls, locksBefore, "metadata update takes no wallet lock")
}

func TestUpdateAmountRevertsAndReapplies(t *testing.T) {
	f := newFixture(t)

	tx, err := f.svc.Create(context.Background(), f.owner, CreateRequest{
		WalletID:   f.cash.ID,
		Amount:     dec("50.00"),
		Type:       domain.TransactionExpense,
		CategoryID: int64Ptr(1),
	})
	require.NoError(t, err)
	require.True(t, f.balance(f.cash.ID).Equal(dec("950.00")))

	updated, err := f.svc.Update(context.Background(), f.owner, tx.ID, domain.TransactionPatch{
		Amount: decPtr("80.00"),
	})
	require.NoError(t, err)

	assert.True(t, updated.Amount.Equal(dec("80.00")))
	assert.True(t, f.balance(f.cash.ID).Equal(dec("920.00")), "old effect reverted, new applied")
}

func TestUpdateTypeFlipsDirection(t *testing.T) {
	f := newFixture(t)

	tx, err := f.svc.Create(context.Background(), f.owner, CreateRequest{
		WalletID:   f.cash.ID,
		Amount:     dec("100.00"),
		Type:       domain.TransactionIncome,
		CategoryID: int64Ptr(1),
	})
	require.NoError(t, err)
	require.True(t, f.balance(f.cash.ID).Equal(dec("1100.00")))

	expense := domain.TransactionExpense
	_, err = f.svc.Update(context.Background(), f.owner, tx.ID, domain.TransactionPatch{Type: &expense})
	require.NoError(t, err)

	// +100 becomes -100
	assert.True(t, f.balance(f.cash.ID).Equal(dec("900.00")))
}

func TestUpdateMovesToAnotherWallet(t *testing.T) {
	f := newFixture(t)

	tx, err := f.svc.Create(context.Background(), f.owner, CreateRequest{
		WalletID:   f.cash.ID,
		Amount:     dec("200.00"),
		Type:       domain.TransactionIncome,
		CategoryID: int64Ptr(1),
	})
	require.NoError(t, err)

	_, err = f.svc.Update(context.Background(), f.owner, tx.ID, domain.TransactionPatch{
		WalletID: &f.savings.ID,
	})
	require.NoError(t, err)

	assert.True(t, f.balance(f.cash.ID).Equal(dec("1000.00")), "income removed from old wallet")
	assert.True(t, f.balance(f.savings.ID).Equal(dec("200.00")), "income applied to new wallet")
	assert.Equal(t, f.savings.ID, f.store.txs[tx.ID].WalletID)
}

func TestUpdateInsufficientFundsAbortsWhole(t *testing.T) {
	f := newFixture(t)

	tx, err := f.svc.Create(context.Background(), f.owner, CreateRequest{
		WalletID:   f.cash.ID,
		Amount:     dec("50.00"),
		Type:       domain.TransactionExpense,
		CategoryID: int64Ptr(1),
	})
	require.NoError(t, err)
	require.True(t, f.balance(f.cash.ID).Equal(dec("950.00")))

	// reapply would need 2000.00 but reverting only frees 50.00
	_, err = f.svc.Update(context.Background(), f.owner, tx.ID, domain.TransactionPatch{
		Amount: decPtr("2000.00"),
	})
	var insufficient *domain.InsufficientFundsError
	require.ErrorAs(t, err, &insufficient)

	// the reversal must not be durably committed without the reapply
	assert.True(t, f.balance(f.cash.ID).Equal(dec("950.00")))
	assert.True(t, f.store.txs[tx.ID].Amount.Equal(dec("50.00")))
}

func TestUpdateTransferLegRejected(t *testing.T) {
	f := newFixture(t)

	tx, err := f.svc.Create(context.Background(), f.owner, CreateRequest{
		WalletID:       f.cash.ID,
		Amount:         dec("100.00"),
		Type:           domain.TransactionTransfer,
		TargetWalletID: &f.savings.ID,
	})
	require.NoError(t, err)

	income := domain.TransactionIncome
	cases := []domain.TransactionPatch{
		{Type: &income},
		{Amount: decPtr("500.00")},
		{WalletID: &f.euro.ID},
	}
	for _, patch := range cases {
		_, err = f.svc.Update(context.Background(), f.owner, tx.ID, patch)
		assert.ErrorIs(t, err, domain.ErrUnsupportedOperation)
	}

	// metadata edits on a transfer leg stay allowed
	_, err = f.svc.Update(context.Background(), f.owner, tx.ID, domain.TransactionPatch{
		Description: strPtr("rent split"),
	})
	assert.NoError(t, err)
}

func TestUpdateRetypeToTransferRejected(t *testing.T) {
	f := newFixture(t)

	tx, err := f.svc.Create(context.Background(), f.owner, CreateRequest{
		WalletID:   f.cash.ID,
		Amount:     dec("50.00"),
		Type:       domain.TransactionExpense,
		CategoryID: int64Ptr(1),
	})
	require.NoError(t, err)

	transfer := domain.TransactionTransfer
	_, err = f.svc.Update(context.Background(), f.owner, tx.ID, domain.TransactionPatch{
		Type: &transfer,
	})
	assert.ErrorIs(t, err, domain.ErrInvalidType)

	stored := f.store.txs[tx.ID]
	assert.Equal(t, domain.TransactionExpense, stored.Type, "row keeps its leg type")
	assert.Nil(t, stored.RelatedTransactionID)
	assert.Len(t, f.store.txs, 1, "no lone transfer row, no mirror")
	assert.True(t, f.balance(f.cash.ID).Equal(dec("950.00")), "balance untouched")
}

func TestUpdateTransferLegCategoryRejected(t *testing.T) {
	f := newFixture(t)

	tx, err := f.svc.Create(context.Background(), f.owner, CreateRequest{
		WalletID:       f.cash.ID,
		Amount:         dec("100.00"),
		Type:           domain.TransactionTransfer,
		TargetWalletID: &f.savings.ID,
	})
	require.NoError(t, err)
	mirrorID := *f.store.txs[tx.ID].RelatedTransactionID

	for _, leg := range []uuid.UUID{tx.ID, mirrorID} {
		_, err = f.svc.Update(context.Background(), f.owner, leg, domain.TransactionPatch{
			CategoryID: int64Ptr(4),
		})
		assert.ErrorIs(t, err, domain.ErrUnsupportedOperation)
	}

	assert.Nil(t, f.store.txs[tx.ID].CategoryID, "transfer legs never carry a category")
	assert.Nil(t, f.store.txs[mirrorID].CategoryID)
}

func TestUpdateAndDeleteLockTheirRows(t *testing.T) {
	f := newFixture(t)

	tx, err := f.svc.Create(context.Background(), f.owner, CreateRequest{
		WalletID:   f.cash.ID,
		Amount:     dec("50.00"),
		Type:       domain.TransactionExpense,
		CategoryID: int64Ptr(1),
	})
	require.NoError(t, err)

	f.store.txLockCalls = nil
	_, err = f.svc.Update(context.Background(), f.owner, tx.ID, domain.TransactionPatch{
		Amount: decPtr("80.00"),
	})
	require.NoError(t, err)
	require.Len(t, f.store.txLockCalls, 1)
	assert.Equal(t, []uuid.UUID{tx.ID}, f.store.txLockCalls[0],
		"the row is re-read under lock before its effect is reverted")

	xfer, err := f.svc.Create(context.Background(), f.owner, CreateRequest{
		WalletID:       f.cash.ID,
		Amount:         dec("100.00"),
		Type:           domain.TransactionTransfer,
		TargetWalletID: &f.savings.ID,
	})
	require.NoError(t, err)
	mirrorID := *f.store.txs[xfer.ID].RelatedTransactionID

	f.store.txLockCalls = nil
	require.NoError(t, f.svc.Delete(context.Background(), f.owner, xfer.ID))
	require.Len(t, f.store.txLockCalls, 1)
	got := f.store.txLockCalls[0]
	assert.ElementsMatch(t, []uuid.UUID{xfer.ID, mirrorID}, got)
	assert.True(t, sort.SliceIsSorted(got, func(i, j int) bool {
		return got[i].String() < got[j].String()
	}), "leg pair locked in ascending id order")
}

func TestUpdateForbiddenAndNotFound(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Update(context.Background(), f.owner, uuid.New(), domain.TransactionPatch{
		Description: strPtr("x"),
	})
	assert.ErrorIs(t, err, domain.ErrTransactionNotFound)

	tx, err := f.svc.Create(context.Background(), f.owner, CreateRequest{
		WalletID:   f.cash.ID,
		Amount:     dec("10.00"),
		Type:       domain.TransactionIncome,
		CategoryID: int64Ptr(1),
	})
	require.NoError(t, err)

	_, err = f.svc.Update(context.Background(), uuid.New(), tx.ID, domain.TransactionPatch{
		Description: strPtr("x"),
	})
	assert.ErrorIs(t, err, domain.ErrForbidden)

	err = f.svc.Delete(context.Background(), uuid.New(), tx.ID)
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestDeleteIncomeRestoresBalance(t *testing.T) {
	f := newFixture(t)

	tx, err := f.svc.Create(context.Background(), f.owner, CreateRequest{
		WalletID:   f.cash.ID,
		Amount:     dec("300.00"),
		Type:       domain.TransactionIncome,
		CategoryID: int64Ptr(1),
	})
	require.NoError(t, err)

	require.NoError(t, f.svc.Delete(context.Background(), f.owner, tx.ID))
	assert.True(t, f.balance(f.cash.ID).Equal(dec("1000.00")))
	assert.Empty(t, f.store.txs)
}

func TestDeleteTransferFromEitherLeg(t *testing.T) {
	for _, deleteMirror := range []bool{false, true} {
		name := "via source leg"
		if deleteMirror {
			name = "via mirror leg"
		}
		t.Run(name, func(t *testing.T) {
			f := newFixture(t)

			tx, err := f.svc.Create(context.Background(), f.owner, CreateRequest{
				WalletID:       f.cash.ID,
				Amount:         dec("100.00"),
				Type:           domain.TransactionTransfer,
				TargetWalletID: &f.savings.ID,
			})
			require.NoError(t, err)

			target := tx.ID
			if deleteMirror {
				target = *f.store.txs[tx.ID].RelatedTransactionID
			}

			require.NoError(t, f.svc.Delete(context.Background(), f.owner, target))
			assert.True(t, f.balance(f.cash.ID).Equal(dec("1000.00")))
			assert.True(t, f.balance(f.savings.ID).Equal(dec("0.00")))
			assert.Empty(t, f.store.txs, "both legs removed")
		})
	}
}

func TestUpdateEmptyPatchIsNoOp(t *testing.T) {
	f := newFixture(t)

	tx, err := f.svc.Create(context.Background(), f.owner, CreateRequest{
		WalletID:   f.cash.ID,
		Amount:     dec("10.00"),
		Type:       domain.TransactionIncome,
		CategoryID: int64Ptr(1),
	})
	require.NoError(t, err)

	got, err := f.svc.Update(context.Background(), f.owner, tx.ID, domain.TransactionPatch{})
	require.NoError(t, err)
	assert.Equal(t, tx.ID, got.ID)
	assert.True(t, got.Amount.Equal(dec("10.00")))
}

func decPtr(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}
