package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ignatzorin/marketplace-backend/internal/currency"
	domainrepo "github.com/ignatzorin/marketplace-backend/internal/domain/repository"
	"github.com/ignatzorin/marketplace-backend/internal/domain/valueobject"
	"github.com/ignatzorin/marketplace-backend/internal/models"
	"github.com/ignatzorin/marketplace-backend/internal/pkg/apperror"
	"github.com/ignatzorin/marketplace-backend/internal/repository"
)

// fakeStore - хранилище в памяти, повторяющее семантику SQL-репозиториев:
// атомарная проверка максимума ставки, расчёт и продвижение как единые шаги.
type fakeStore struct {
	mu       sync.Mutex
	listings map[uuid.UUID]*models.Listing
	claims   map[valueobject.ClaimKind][]*models.Claim
	clock    time.Time
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		listings: make(map[uuid.UUID]*models.Listing),
		claims:   make(map[valueobject.ClaimKind][]*models.Claim),
		clock:    time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
	}
}

func (f *fakeStore) tick() time.Time {
	f.clock = f.clock.Add(time.Second)
	return f.clock
}

func (f *fakeStore) addListing(l *models.Listing) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	f.listings[l.ID] = l
}

func (f *fakeStore) Create(ctx context.Context, l *models.Listing) error {
	f.addListing(l)
	return nil
}

func (f *fakeStore) GetByID(ctx context.Context, id uuid.UUID) (*models.Listing, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	l, ok := f.listings[id]
	if !ok {
		return nil, repository.ErrListingNotFound
	}
	cp := *l
	return &cp, nil
}

func (f *fakeStore) Update(ctx context.Context, l *models.Listing) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listings[l.ID] = l
	return nil
}

func (f *fakeStore) Delete(ctx context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.listings, id)
	return nil
}

func (f *fakeStore) List(ctx context.Context, filter domainrepo.ListingFilter) ([]models.Listing, error) {
	return nil, nil
}

func (f *fakeStore) SetStatus(ctx context.Context, id uuid.UUID, status valueobject.ListingStatus) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	l, ok := f.listings[id]
	if !ok {
		return repository.ErrListingNotFound
	}
	l.Status = status
	return nil
}

func (f *fakeStore) GetClaimByID(kind valueobject.ClaimKind, id uuid.UUID) *models.Claim {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range f.claims[kind] {
		if c.ID == id {
			cp := *c
			return &cp
		}
	}
	return nil
}

func (f *fakeStore) GetByIDClaim(ctx context.Context, kind valueobject.ClaimKind, id uuid.UUID) (*models.Claim, error) {
	if c := f.GetClaimByID(kind, id); c != nil {
		return c, nil
	}
	return nil, repository.ErrClaimNotFound
}

func (f *fakeStore) Insert(ctx context.Context, kind valueobject.ClaimKind, claim *models.Claim) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	claim.ID = uuid.New()
	claim.CreatedAt = f.tick()
	claim.UpdatedAt = claim.CreatedAt
	cp := *claim
	f.claims[kind] = append(f.claims[kind], &cp)
	return nil
}

func (f *fakeStore) ListByListing(ctx context.Context, kind valueobject.ClaimKind, listingID uuid.UUID) ([]models.Claim, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Claim
	for _, c := range f.claims[kind] {
		if c.ListingID == listingID {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (f *fakeStore) ListActiveByListing(ctx context.Context, kind valueobject.ClaimKind, listingID uuid.UUID) ([]models.Claim, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Claim
	for _, c := range f.claims[kind] {
		if c.ListingID == listingID && c.IsActive() {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (f *fakeStore) ListByUser(ctx context.Context, kind valueobject.ClaimKind, userID uuid.UUID) ([]models.Claim, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Claim
	for _, c := range f.claims[kind] {
		if c.UserID == userID {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (f *fakeStore) UpsertBidAbove(ctx context.Context, claim *models.Claim) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.listings[claim.ListingID]; !ok {
		return repository.ErrListingNotFound
	}
	var highest float64
	var own *models.Claim
	for _, c := range f.claims[valueobject.ClaimKindBid] {
		if c.ListingID != claim.ListingID || !c.IsActive() {
			continue
		}
		if c.Amount > highest {
			highest = c.Amount
		}
		if c.UserID == claim.UserID {
			own = c
		}
	}
	if claim.Amount <= highest {
		return repository.ErrBidTooLow
	}
	if own != nil {
		own.Amount = claim.Amount
		own.Message = claim.Message
		own.UpdatedAt = f.tick()
		*claim = *own
		return nil
	}
	claim.ID = uuid.New()
	claim.CreatedAt = f.tick()
	claim.UpdatedAt = claim.CreatedAt
	cp := *claim
	f.claims[valueobject.ClaimKindBid] = append(f.claims[valueobject.ClaimKindBid], &cp)
	return nil
}

func (f *fakeStore) ApplySettlement(ctx context.Context, kind valueobject.ClaimKind, listingID uuid.UUID, winnerID uuid.UUID, winnerStatus, loserStatus valueobject.ClaimStatus) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range f.claims[kind] {
		if c.ListingID != listingID || !c.IsActive() {
			continue
		}
		if c.ID == winnerID {
			c.Status = winnerStatus
		} else {
			c.Status = loserStatus
		}
		c.UpdatedAt = f.tick()
	}
	f.listings[listingID].Status = valueobject.ListingStatusSold
	return nil
}

func (f *fakeStore) CompleteClaim(ctx context.Context, kind valueobject.ClaimKind, claimID, listingID uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range f.claims[kind] {
		if c.ID == claimID {
			c.Status = valueobject.ClaimStatusCompleted
			c.UpdatedAt = f.tick()
		}
	}
	f.listings[listingID].Status = valueobject.ListingStatusSold
	return nil
}

func (f *fakeStore) FailAndPromote(ctx context.Context, kind valueobject.ClaimKind, claimID, listingID uuid.UUID, winnerStatus valueobject.ClaimStatus) (*models.Claim, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range f.claims[kind] {
		if c.ID == claimID {
			c.Status = valueobject.ClaimStatusFailed
			c.UpdatedAt = f.tick()
		}
	}
	var next *models.Claim
	for _, c := range f.claims[kind] {
		if c.ListingID != listingID || !c.IsActive() {
			continue
		}
		if next == nil || c.Amount > next.Amount ||
			(c.Amount == next.Amount && c.CreatedAt.Before(next.CreatedAt)) {
			next = c
		}
	}
	if next == nil {
		return nil, nil
	}
	next.Status = winnerStatus
	next.UpdatedAt = f.tick()
	cp := *next
	return &cp, nil
}

// claimStore адаптирует fakeStore к интерфейсу ClaimRepository
// (GetByID конфликтует по имени с методом хранилища объявлений).
type claimStore struct{ *fakeStore }

func (s claimStore) GetByID(ctx context.Context, kind valueobject.ClaimKind, id uuid.UUID) (*models.Claim, error) {
	return s.GetByIDClaim(ctx, kind, id)
}

type recordedEvent struct {
	userID uuid.UUID
	event  string
}

type fakeHub struct {
	mu     sync.Mutex
	events []recordedEvent
}

func (h *fakeHub) BroadcastToUser(userID uuid.UUID, event string, data interface{}) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.events = append(h.events, recordedEvent{userID: userID, event: event})
	return nil
}

func (h *fakeHub) received(userID uuid.UUID, event string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, e := range h.events {
		if e.userID == userID && e.event == event {
			return true
		}
	}
	return false
}

func newTestEngine(t *testing.T) (*SettlementService, *fakeStore, *fakeHub) {
	t.Helper()
	store := newFakeStore()
	conv := currency.NewConverter()
	svc := NewSettlementService(store, claimStore{store}, conv)
	hub := &fakeHub{}
	svc.SetHub(hub)
	return svc, store, hub
}

func newAuction(store *fakeStore, ownerID uuid.UUID) *models.Listing {
	l := &models.Listing{
		ID:       uuid.New(),
		OwnerID:  ownerID,
		Category: valueobject.CategoryItem,
		Title:    "Горный велосипед",
		SaleType: valueobject.SaleTypeAuction,
		Status:   valueobject.ListingStatusActive,
	}
	store.addListing(l)
	return l
}

func newOfferListing(store *fakeStore, ownerID uuid.UUID) *models.Listing {
	l := &models.Listing{
		ID:       uuid.New(),
		OwnerID:  ownerID,
		Category: valueobject.CategoryService,
		Title:    "Ремонт квартиры",
		SaleType: valueobject.SaleTypeOffer,
		Status:   valueobject.ListingStatusActive,
	}
	store.addListing(l)
	return l
}

func TestSettlementService_PlaceBid_MustExceedHighest(t *testing.T) {
	svc, store, _ := newTestEngine(t)
	ctx := context.Background()
	listing := newAuction(store, uuid.New())

	_, err := svc.PlaceBid(ctx, PlaceBidInput{ListingID: listing.ID, UserID: uuid.New(), Amount: 100})
	require.NoError(t, err)

	// Равная сумма не перебивает максимум.
	_, err = svc.PlaceBid(ctx, PlaceBidInput{ListingID: listing.ID, UserID: uuid.New(), Amount: 100})
	require.Error(t, err)
	assert.True(t, apperror.IsValidation(err))

	_, err = svc.PlaceBid(ctx, PlaceBidInput{ListingID: listing.ID, UserID: uuid.New(), Amount: 99})
	require.Error(t, err)
	assert.True(t, apperror.IsValidation(err))

	_, err = svc.PlaceBid(ctx, PlaceBidInput{ListingID: listing.ID, UserID: uuid.New(), Amount: 101})
	assert.NoError(t, err)
}

func TestSettlementService_PlaceBid_UpdatesOwnBid(t *testing.T) {
	svc, store, _ := newTestEngine(t)
	ctx := context.Background()
	listing := newAuction(store, uuid.New())
	bidder := uuid.New()

	first, err := svc.PlaceBid(ctx, PlaceBidInput{ListingID: listing.ID, UserID: bidder, Amount: 100})
	require.NoError(t, err)

	second, err := svc.PlaceBid(ctx, PlaceBidInput{ListingID: listing.ID, UserID: bidder, Amount: 150})
	require.NoError(t, err)

	// У пользователя одна активная ставка, она повышается на месте.
	assert.Equal(t, first.ID, second.ID)
	bids, err := svc.ListingClaims(ctx, listing.ID)
	require.NoError(t, err)
	require.Len(t, bids, 1)
	assert.Equal(t, float64(150), bids[0].Amount)
}

func TestSettlementService_PlaceBid_NormalizesCurrency(t *testing.T) {
	svc, store, _ := newTestEngine(t)
	ctx := context.Background()
	listing := newAuction(store, uuid.New())

	claim, err := svc.PlaceBid(ctx, PlaceBidInput{ListingID: listing.ID, UserID: uuid.New(), Amount: 92, Currency: "EUR"})
	require.NoError(t, err)

	// 92 EUR при курсе 0.92 EUR за USD - ровно 100 USD.
	assert.InDelta(t, 100, claim.Amount, 0.01)
}

func TestSettlementService_PlaceBid_RejectsBadInput(t *testing.T) {
	svc, store, _ := newTestEngine(t)
	ctx := context.Background()
	owner := uuid.New()
	auction := newAuction(store, owner)
	fixed := &models.Listing{ID: uuid.New(), OwnerID: owner, SaleType: valueobject.SaleTypeFixed, Status: valueobject.ListingStatusActive}
	store.addListing(fixed)

	_, err := svc.PlaceBid(ctx, PlaceBidInput{ListingID: auction.ID, UserID: uuid.New(), Amount: 0})
	assert.True(t, apperror.IsValidation(err))

	_, err = svc.PlaceBid(ctx, PlaceBidInput{ListingID: auction.ID, UserID: uuid.New(), Amount: -5})
	assert.True(t, apperror.IsValidation(err))

	// Верхний предел суммы действует и на уровне движка
	_, err = svc.PlaceBid(ctx, PlaceBidInput{ListingID: auction.ID, UserID: uuid.New(), Amount: 2e8})
	assert.True(t, apperror.IsValidation(err))

	_, err = svc.MakeOffer(ctx, MakeOfferInput{ListingID: auction.ID, UserID: uuid.New(), Amount: 2e8})
	assert.True(t, apperror.IsValidation(err))

	_, err = svc.PlaceBid(ctx, PlaceBidInput{ListingID: fixed.ID, UserID: uuid.New(), Amount: 100})
	assert.True(t, apperror.IsValidation(err))

	_, err = svc.PlaceBid(ctx, PlaceBidInput{ListingID: uuid.New(), UserID: uuid.New(), Amount: 100})
	assert.True(t, apperror.IsNotFound(err))

	require.NoError(t, store.SetStatus(ctx, auction.ID, valueobject.ListingStatusSold))
	_, err = svc.PlaceBid(ctx, PlaceBidInput{ListingID: auction.ID, UserID: uuid.New(), Amount: 100})
	assert.Error(t, err)
}

func TestSettlementService_PlaceBid_NotifiesOutbidLeader(t *testing.T) {
	svc, store, hub := newTestEngine(t)
	ctx := context.Background()
	owner := uuid.New()
	listing := newAuction(store, owner)
	first := uuid.New()
	second := uuid.New()

	_, err := svc.PlaceBid(ctx, PlaceBidInput{ListingID: listing.ID, UserID: first, Amount: 100})
	require.NoError(t, err)
	_, err = svc.PlaceBid(ctx, PlaceBidInput{ListingID: listing.ID, UserID: second, Amount: 200})
	require.NoError(t, err)

	assert.True(t, hub.received(owner, models.EventBidPlaced))
	assert.True(t, hub.received(first, models.EventOutbid))
	assert.False(t, hub.received(second, models.EventOutbid))
}

func TestSettlementService_MakeOffer_AppendsEachOffer(t *testing.T) {
	svc, store, hub := newTestEngine(t)
	ctx := context.Background()
	owner := uuid.New()
	listing := newOfferListing(store, owner)
	buyer := uuid.New()

	// Предложения не перебивают друг друга: допускается любая сумма,
	// в том числе ниже уже сделанных.
	_, err := svc.MakeOffer(ctx, MakeOfferInput{ListingID: listing.ID, UserID: buyer, Amount: 500})
	require.NoError(t, err)
	_, err = svc.MakeOffer(ctx, MakeOfferInput{ListingID: listing.ID, UserID: buyer, Amount: 300})
	require.NoError(t, err)
	_, err = svc.MakeOffer(ctx, MakeOfferInput{ListingID: listing.ID, UserID: uuid.New(), Amount: 100})
	require.NoError(t, err)

	offers, err := svc.ListingClaims(ctx, listing.ID)
	require.NoError(t, err)
	assert.Len(t, offers, 3)
	assert.True(t, hub.received(owner, models.EventOfferReceived))
}

func TestSettlementService_Settle_HighestBidWins(t *testing.T) {
	svc, store, hub := newTestEngine(t)
	ctx := context.Background()
	owner := uuid.New()
	listing := newAuction(store, owner)
	low := uuid.New()
	high := uuid.New()

	lowClaim, err := svc.PlaceBid(ctx, PlaceBidInput{ListingID: listing.ID, UserID: low, Amount: 100})
	require.NoError(t, err)
	highClaim, err := svc.PlaceBid(ctx, PlaceBidInput{ListingID: listing.ID, UserID: high, Amount: 200})
	require.NoError(t, err)

	require.NoError(t, svc.Settle(ctx, listing.ID, owner))

	got, err := store.GetByID(ctx, listing.ID)
	require.NoError(t, err)
	assert.Equal(t, valueobject.ListingStatusSold, got.Status)

	winner := store.GetClaimByID(valueobject.ClaimKindBid, highClaim.ID)
	loser := store.GetClaimByID(valueobject.ClaimKindBid, lowClaim.ID)
	assert.Equal(t, valueobject.ClaimStatusPaymentProcessing, winner.Status)
	assert.Equal(t, valueobject.ClaimStatusWaitingFinal, loser.Status)

	assert.True(t, hub.received(high, models.EventClaimWon))
	assert.True(t, hub.received(low, models.EventClaimLost))
	assert.True(t, hub.received(owner, models.EventListingSettled))
}

func TestSettlementService_Settle_TieGoesToEarliest(t *testing.T) {
	svc, store, _ := newTestEngine(t)
	ctx := context.Background()
	owner := uuid.New()
	listing := newOfferListing(store, owner)
	early := uuid.New()
	late := uuid.New()

	earlyClaim, err := svc.MakeOffer(ctx, MakeOfferInput{ListingID: listing.ID, UserID: early, Amount: 300})
	require.NoError(t, err)
	lateClaim, err := svc.MakeOffer(ctx, MakeOfferInput{ListingID: listing.ID, UserID: late, Amount: 300})
	require.NoError(t, err)

	require.NoError(t, svc.Settle(ctx, listing.ID, owner))

	assert.Equal(t, valueobject.ClaimStatusAccepted, store.GetClaimByID(valueobject.ClaimKindOffer, earlyClaim.ID).Status)
	assert.Equal(t, valueobject.ClaimStatusRejected, store.GetClaimByID(valueobject.ClaimKindOffer, lateClaim.ID).Status)
}

func TestSettlementService_Settle_NoClaims(t *testing.T) {
	svc, store, _ := newTestEngine(t)
	ctx := context.Background()
	owner := uuid.New()
	listing := newAuction(store, owner)

	// Расчёт без заявок допустим: объявление закрывается без победителя.
	require.NoError(t, svc.Settle(ctx, listing.ID, owner))

	got, err := store.GetByID(ctx, listing.ID)
	require.NoError(t, err)
	assert.Equal(t, valueobject.ListingStatusSold, got.Status)
}

func TestSettlementService_Settle_OnlyOwner(t *testing.T) {
	svc, store, _ := newTestEngine(t)
	ctx := context.Background()
	listing := newAuction(store, uuid.New())

	err := svc.Settle(ctx, listing.ID, uuid.New())
	assert.True(t, apperror.IsForbidden(err))

	got, gerr := store.GetByID(ctx, listing.ID)
	require.NoError(t, gerr)
	assert.Equal(t, valueobject.ListingStatusActive, got.Status)
}

func TestSettlementService_Settle_OnlyActiveListing(t *testing.T) {
	svc, store, _ := newTestEngine(t)
	ctx := context.Background()
	owner := uuid.New()
	listing := newAuction(store, owner)

	require.NoError(t, svc.Settle(ctx, listing.ID, owner))
	err := svc.Settle(ctx, listing.ID, owner)
	assert.Error(t, err)
}

func TestSettlementService_CompletePayment(t *testing.T) {
	svc, store, hub := newTestEngine(t)
	ctx := context.Background()
	owner := uuid.New()
	listing := newAuction(store, owner)
	winner := uuid.New()

	claim, err := svc.PlaceBid(ctx, PlaceBidInput{ListingID: listing.ID, UserID: winner, Amount: 100})
	require.NoError(t, err)
	require.NoError(t, svc.Settle(ctx, listing.ID, owner))

	// Чужой пользователь не может оплатить заявку.
	err = svc.CompletePayment(ctx, valueobject.ClaimKindBid, claim.ID, uuid.New())
	assert.True(t, apperror.IsForbidden(err))

	require.NoError(t, svc.CompletePayment(ctx, valueobject.ClaimKindBid, claim.ID, winner))
	assert.Equal(t, valueobject.ClaimStatusCompleted, store.GetClaimByID(valueobject.ClaimKindBid, claim.ID).Status)
	assert.True(t, hub.received(owner, models.EventPaymentCompleted))

	// Повторное завершение - no-op.
	require.NoError(t, svc.CompletePayment(ctx, valueobject.ClaimKindBid, claim.ID, winner))

	got, gerr := store.GetByID(ctx, listing.ID)
	require.NoError(t, gerr)
	assert.Equal(t, valueobject.ListingStatusSold, got.Status)
}

func TestSettlementService_CompletePayment_RequiresWinnerSlot(t *testing.T) {
	svc, store, _ := newTestEngine(t)
	ctx := context.Background()
	owner := uuid.New()
	listing := newAuction(store, owner)
	loser := uuid.New()

	loserClaim, err := svc.PlaceBid(ctx, PlaceBidInput{ListingID: listing.ID, UserID: loser, Amount: 100})
	require.NoError(t, err)
	_, err = svc.PlaceBid(ctx, PlaceBidInput{ListingID: listing.ID, UserID: uuid.New(), Amount: 200})
	require.NoError(t, err)
	require.NoError(t, svc.Settle(ctx, listing.ID, owner))

	err = svc.CompletePayment(ctx, valueobject.ClaimKindBid, loserClaim.ID, loser)
	assert.Error(t, err)
}

func TestSettlementService_CancelClaim_PromotesNextHighest(t *testing.T) {
	svc, store, hub := newTestEngine(t)
	ctx := context.Background()
	owner := uuid.New()
	listing := newAuction(store, owner)
	first := uuid.New()
	second := uuid.New()
	third := uuid.New()

	thirdClaim, err := svc.PlaceBid(ctx, PlaceBidInput{ListingID: listing.ID, UserID: third, Amount: 100})
	require.NoError(t, err)
	secondClaim, err := svc.PlaceBid(ctx, PlaceBidInput{ListingID: listing.ID, UserID: second, Amount: 200})
	require.NoError(t, err)
	firstClaim, err := svc.PlaceBid(ctx, PlaceBidInput{ListingID: listing.ID, UserID: first, Amount: 300})
	require.NoError(t, err)

	require.NoError(t, svc.Settle(ctx, listing.ID, owner))
	require.NoError(t, svc.CancelClaim(ctx, valueobject.ClaimKindBid, firstClaim.ID, first))

	// Победитель выбыл, вторая по сумме ставка занимает его слот.
	assert.Equal(t, valueobject.ClaimStatusFailed, store.GetClaimByID(valueobject.ClaimKindBid, firstClaim.ID).Status)
	assert.Equal(t, valueobject.ClaimStatusPaymentProcessing, store.GetClaimByID(valueobject.ClaimKindBid, secondClaim.ID).Status)
	assert.Equal(t, valueobject.ClaimStatusWaitingFinal, store.GetClaimByID(valueobject.ClaimKindBid, thirdClaim.ID).Status)
	assert.True(t, hub.received(second, models.EventClaimPromoted))
	assert.True(t, hub.received(owner, models.EventClaimCancelled))

	got, gerr := store.GetByID(ctx, listing.ID)
	require.NoError(t, gerr)
	assert.Equal(t, valueobject.ListingStatusSold, got.Status)
}

func TestSettlementService_CancelClaim_LastClaimant(t *testing.T) {
	svc, store, hub := newTestEngine(t)
	ctx := context.Background()
	owner := uuid.New()
	listing := newAuction(store, owner)
	winner := uuid.New()

	claim, err := svc.PlaceBid(ctx, PlaceBidInput{ListingID: listing.ID, UserID: winner, Amount: 100})
	require.NoError(t, err)
	require.NoError(t, svc.Settle(ctx, listing.ID, owner))
	require.NoError(t, svc.CancelClaim(ctx, valueobject.ClaimKindBid, claim.ID, winner))

	// Претендентов не осталось: объявление остаётся проданным
	// без победителя, продавец получает уведомление.
	got, gerr := store.GetByID(ctx, listing.ID)
	require.NoError(t, gerr)
	assert.Equal(t, valueobject.ListingStatusSold, got.Status)
	assert.True(t, hub.received(owner, models.EventNoActiveClaimant))
}

func TestSettlementService_CancelClaim_Authorization(t *testing.T) {
	svc, store, _ := newTestEngine(t)
	ctx := context.Background()
	owner := uuid.New()
	listing := newAuction(store, owner)
	winner := uuid.New()

	claim, err := svc.PlaceBid(ctx, PlaceBidInput{ListingID: listing.ID, UserID: winner, Amount: 100})
	require.NoError(t, err)

	// До расчёта заявка не в слоте победителя - отменять нечего.
	err = svc.CancelClaim(ctx, valueobject.ClaimKindBid, claim.ID, winner)
	assert.Error(t, err)

	require.NoError(t, svc.Settle(ctx, listing.ID, owner))

	err = svc.CancelClaim(ctx, valueobject.ClaimKindBid, claim.ID, uuid.New())
	assert.True(t, apperror.IsForbidden(err))
}

func TestRankClaims_Ordering(t *testing.T) {
	now := time.Now()
	a := models.Claim{ID: uuid.New(), Amount: 100, CreatedAt: now}
	b := models.Claim{ID: uuid.New(), Amount: 300, CreatedAt: now.Add(time.Second)}
	c := models.Claim{ID: uuid.New(), Amount: 300, CreatedAt: now.Add(2 * time.Second)}
	d := models.Claim{ID: uuid.New(), Amount: 200, CreatedAt: now}

	claims := []models.Claim{a, c, d, b}
	rankClaims(claims)

	assert.Equal(t, b.ID, claims[0].ID)
	assert.Equal(t, c.ID, claims[1].ID)
	assert.Equal(t, d.ID, claims[2].ID)
	assert.Equal(t, a.ID, claims[3].ID)
}
