package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/rpillai/dealwatch/internal/domain"
	"github.com/shopspring/decimal"
)

// fakePriceSource serves prices from a map keyed by the requested ref. The
// returned price carries its own Ref, so a remapped id can be simulated by
// storing a price whose Ref differs from the key.
type fakePriceSource struct {
	prices   map[domain.GameRef]domain.GamePrice
	featured []domain.GameRef
	results  []domain.SearchResult
	err      error
	calls    int
}

func (f *fakePriceSource) GetPrice(_ context.Context, ref domain.GameRef) (*domain.GamePrice, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	price, ok := f.prices[ref]
	if !ok {
		return nil, domain.ErrNotFound
	}
	copied := price
	return &copied, nil
}

func (f *fakePriceSource) FeaturedRefs(context.Context) ([]domain.GameRef, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.featured, nil
}

func (f *fakePriceSource) Search(context.Context, string) ([]domain.SearchResult, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.results, nil
}

type sentMail struct {
	To      string
	Subject string
	Body    string
}

type fakeSender struct {
	sent []sentMail
	err  error
}

func (f *fakeSender) Send(_ context.Context, to, subject, body string) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, sentMail{To: to, Subject: subject, Body: body})
	return nil
}

type fakeUserRepo struct {
	users   map[string]*domain.User
	nextID  uint
	creates int
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[string]*domain.User), nextID: 1}
}

func (f *fakeUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	user, ok := f.users[email]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return user, nil
}

func (f *fakeUserRepo) GetOrCreateByEmail(_ context.Context, email string) (*domain.User, error) {
	if user, ok := f.users[email]; ok {
		return user, nil
	}
	user := &domain.User{ID: f.nextID, Email: email, IsActive: true}
	f.nextID++
	f.creates++
	f.users[email] = user
	return user, nil
}

type fakeGameRepo struct {
	prices  map[domain.GameRef]domain.GamePrice
	upserts int
}

func newFakeGameRepo() *fakeGameRepo {
	return &fakeGameRepo{prices: make(map[domain.GameRef]domain.GamePrice)}
}

func (f *fakeGameRepo) UpsertPrice(_ context.Context, price domain.GamePrice) error {
	f.upserts++
	f.prices[price.Ref] = price
	return nil
}

func (f *fakeGameRepo) Get(_ context.Context, ref domain.GameRef) (*domain.GamePrice, error) {
	price, ok := f.prices[ref]
	if !ok {
		return nil, domain.ErrNotFound
	}
	copied := price
	return &copied, nil
}

// fakeAlertRepo keeps alert rows in memory and fills LastKnownPrice from the
// games fake on listing, the way the real repository joins the games table.
type fakeAlertRepo struct {
	games   *fakeGameRepo
	rows    map[uint]*domain.PriceAlert
	emails  map[uint]string
	nextID  uint
	upserts int
}

func newFakeAlertRepo(games *fakeGameRepo) *fakeAlertRepo {
	return &fakeAlertRepo{
		games:  games,
		rows:   make(map[uint]*domain.PriceAlert),
		emails: make(map[uint]string),
		nextID: 1,
	}
}

func (f *fakeAlertRepo) add(email string, alert domain.PriceAlert) uint {
	alert.ID = f.nextID
	f.nextID++
	alert.IsActive = true
	f.rows[alert.ID] = &alert
	f.emails[alert.ID] = email
	return alert.ID
}

func (f *fakeAlertRepo) Upsert(_ context.Context, alert *domain.PriceAlert) error {
	f.upserts++
	for _, row := range f.rows {
		if row.UserID == alert.UserID && row.GameRef == alert.GameRef && row.AlertType == alert.AlertType {
			row.TargetPrice = alert.TargetPrice
			row.IsActive = true
			row.TriggeredAt = nil
			alert.ID = row.ID
			alert.IsActive = true
			return nil
		}
	}
	alert.ID = f.nextID
	f.nextID++
	alert.IsActive = true
	copied := *alert
	f.rows[copied.ID] = &copied
	return nil
}

func (f *fakeAlertRepo) ListActiveByEmail(_ context.Context, email string) ([]domain.PriceAlert, error) {
	var alerts []domain.PriceAlert
	for id, row := range f.rows {
		if row.IsActive && f.emails[id] == email {
			alerts = append(alerts, *row)
		}
	}
	return alerts, nil
}

func (f *fakeAlertRepo) ListForEvaluation(_ context.Context) ([]domain.EvalAlert, error) {
	var alerts []domain.EvalAlert
	for id, row := range f.rows {
		if !row.IsActive {
			continue
		}
		eval := domain.EvalAlert{
			AlertID:     id,
			Email:       f.emails[id],
			GameRef:     row.GameRef,
			TargetPrice: row.TargetPrice,
			AlertType:   row.AlertType,
		}
		if stored, ok := f.games.prices[row.GameRef]; ok {
			eval.Title = stored.Title
			eval.LastKnownPrice = stored.CurrentPrice
		}
		alerts = append(alerts, eval)
	}
	return alerts, nil
}

func (f *fakeAlertRepo) MarkTriggered(_ context.Context, alertID uint, at time.Time) error {
	row, ok := f.rows[alertID]
	if !ok || !row.IsActive {
		return domain.ErrNotFound
	}
	row.IsActive = false
	row.TriggeredAt = &at
	return nil
}

func (f *fakeAlertRepo) Deactivate(_ context.Context, userID uint, ref domain.GameRef) error {
	for _, row := range f.rows {
		if row.UserID == userID && row.GameRef == ref && row.IsActive {
			row.IsActive = false
			return nil
		}
	}
	return domain.ErrNotFound
}

type fakeSubRepo struct {
	subs       map[uint]*domain.DealsSubscription
	nextID     uint
	subscribes int
	markErr    error
}

func newFakeSubRepo() *fakeSubRepo {
	return &fakeSubRepo{subs: make(map[uint]*domain.DealsSubscription), nextID: 1}
}

func (f *fakeSubRepo) add(userID uint, email string, lastSent *time.Time) uint {
	id := f.nextID
	f.nextID++
	f.subs[id] = &domain.DealsSubscription{ID: id, UserID: userID, Email: email, IsActive: true, LastSent: lastSent}
	return id
}

func (f *fakeSubRepo) Subscribe(_ context.Context, userID uint) error {
	f.subscribes++
	for _, sub := range f.subs {
		if sub.UserID == userID {
			sub.IsActive = true
			return nil
		}
	}
	f.add(userID, "", nil)
	return nil
}

func (f *fakeSubRepo) ListDueDigest(_ context.Context, dayStart time.Time) ([]domain.DealsSubscription, error) {
	var due []domain.DealsSubscription
	for _, sub := range f.subs {
		if !sub.IsActive {
			continue
		}
		if sub.LastSent == nil || sub.LastSent.Before(dayStart) {
			due = append(due, *sub)
		}
	}
	return due, nil
}

func (f *fakeSubRepo) ListActiveEmails(context.Context) ([]string, error) {
	var emails []string
	for _, sub := range f.subs {
		if sub.IsActive {
			emails = append(emails, sub.Email)
		}
	}
	return emails, nil
}

func (f *fakeSubRepo) MarkSent(_ context.Context, subscriptionID uint, at time.Time) error {
	if f.markErr != nil {
		return f.markErr
	}
	sub, ok := f.subs[subscriptionID]
	if !ok {
		return domain.ErrNotFound
	}
	stamped := at
	sub.LastSent = &stamped
	return nil
}

type fakeFreeGameRepo struct {
	sent  map[string]bool
	marks int
}

func newFakeFreeGameRepo() *fakeFreeGameRepo {
	return &fakeFreeGameRepo{sent: make(map[string]bool)}
}

func (f *fakeFreeGameRepo) WasSent(_ context.Context, namespace, offerID string) (bool, error) {
	return f.sent[namespace+"/"+offerID], nil
}

func (f *fakeFreeGameRepo) MarkSent(_ context.Context, record domain.FreeGameAlertRecord) error {
	f.marks++
	f.sent[record.Namespace+"/"+record.OfferID] = true
	return nil
}

type fakeFreeGamesSource struct {
	current  []domain.FreeGame
	upcoming []domain.FreeGame
	err      error
}

func (f *fakeFreeGamesSource) FreeGames(context.Context) ([]domain.FreeGame, []domain.FreeGame, error) {
	if f.err != nil {
		return nil, nil, f.err
	}
	return f.current, f.upcoming, nil
}

type fakeDealsProvider struct {
	deals []domain.GamePrice
	err   error
}

func (f *fakeDealsProvider) Current(context.Context) ([]domain.GamePrice, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.deals, nil
}

var errSendFailed = errors.New("send failed")

func money(value string) decimal.Decimal {
	d, err := decimal.NewFromString(value)
	if err != nil {
		panic(err)
	}
	return d
}

func steamRef(id string) domain.GameRef {
	return domain.NewGameRef(domain.PlatformSteam, id)
}
