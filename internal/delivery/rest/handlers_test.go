package rest

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rpillai/dealwatch/internal/domain"
	"github.com/rpillai/dealwatch/internal/usecase"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type fakeUserService struct {
	err error
}

func (f *fakeUserService) Register(_ context.Context, email string) (*domain.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &domain.User{ID: 1, Email: email, IsActive: true}, nil
}

type fakeGameService struct {
	price *domain.GamePrice
	err   error
}

func (f *fakeGameService) Search(_ context.Context, query string) ([]domain.SearchResult, error) {
	if f.err != nil {
		return nil, f.err
	}
	return []domain.SearchResult{{
		Ref:      domain.NewGameRef(domain.PlatformSteam, "730"),
		Title:    query,
		Price:    decimal.RequireFromString("199.00"),
		Currency: "INR",
	}}, nil
}

func (f *fakeGameService) GetDetails(context.Context, string) (*domain.GamePrice, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.price, nil
}

type fakeAlertService struct {
	confirmation *usecase.AlertConfirmation
	alerts       []domain.PriceAlert
	removedRef   string
	err          error
}

func (f *fakeAlertService) SetupAlert(context.Context, string, string, decimal.Decimal, string) (*usecase.AlertConfirmation, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.confirmation, nil
}

func (f *fakeAlertService) ListAlerts(context.Context, string) ([]domain.PriceAlert, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.alerts, nil
}

func (f *fakeAlertService) RemoveAlert(_ context.Context, _ string, rawRef string) error {
	if f.err != nil {
		return f.err
	}
	f.removedRef = rawRef
	return nil
}

type fakeDigestService struct {
	subscribed []string
	sent       []string
	err        error
}

func (f *fakeDigestService) Subscribe(_ context.Context, email string) error {
	if f.err != nil {
		return f.err
	}
	f.subscribed = append(f.subscribed, email)
	return nil
}

func (f *fakeDigestService) SendNow(_ context.Context, email string) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, email)
	return nil
}

type fakeDeals struct {
	deals []domain.GamePrice
	err   error
}

func (f *fakeDeals) Current(context.Context) ([]domain.GamePrice, error) {
	return f.deals, f.err
}

type serverFakes struct {
	users  *fakeUserService
	games  *fakeGameService
	alerts *fakeAlertService
	digest *fakeDigestService
	deals  *fakeDeals
}

func newTestServer(t *testing.T) (*httptest.Server, *serverFakes) {
	t.Helper()
	fakes := &serverFakes{
		users:  &fakeUserService{},
		games:  &fakeGameService{},
		alerts: &fakeAlertService{},
		digest: &fakeDigestService{},
		deals:  &fakeDeals{},
	}
	logger := zap.NewNop()
	handlers := NewHandlers(fakes.users, fakes.games, fakes.alerts, fakes.digest, fakes.deals, logger)
	server := httptest.NewServer(NewRouter(handlers, logger, nil))
	t.Cleanup(server.Close)
	return server, fakes
}

func doJSON(t *testing.T, method, url, body string) (*http.Response, map[string]json.RawMessage) {
	t.Helper()
	request, err := http.NewRequest(method, url, strings.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	if body != "" {
		request.Header.Set("Content-Type", "application/json")
	}
	response, err := http.DefaultClient.Do(request)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { response.Body.Close() })

	envelope := map[string]json.RawMessage{}
	if err := json.NewDecoder(response.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode envelope: %v", err)
	}
	return response, envelope
}

func TestRegisterUserCreated(t *testing.T) {
	server, _ := newTestServer(t)

	response, envelope := doJSON(t, http.MethodPost, server.URL+"/api/v1/users", `{"email":"User@Example.com"}`)
	if response.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", response.StatusCode)
	}
	var data userResponse
	if err := json.Unmarshal(envelope["data"], &data); err != nil {
		t.Fatal(err)
	}
	if data.Email != "User@Example.com" || !data.IsActive {
		t.Fatalf("unexpected body %+v", data)
	}
}

func TestRegisterUserMalformedBody(t *testing.T) {
	server, _ := newTestServer(t)

	response, envelope := doJSON(t, http.MethodPost, server.URL+"/api/v1/users", `{"email":`)
	if response.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", response.StatusCode)
	}
	var apiErr struct {
		Code string `json:"code"`
	}
	if err := json.Unmarshal(envelope["error"], &apiErr); err != nil {
		t.Fatal(err)
	}
	if apiErr.Code != "invalid_input" {
		t.Fatalf("expected invalid_input, got %q", apiErr.Code)
	}
}

func TestErrorStatusMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"invalid input", domain.ErrInvalidInput, http.StatusBadRequest, "invalid_input"},
		{"not found", domain.ErrNotFound, http.StatusNotFound, "not_found"},
		{"unavailable", domain.ErrUnavailable, http.StatusServiceUnavailable, "unavailable"},
		{"unknown", fmt.Errorf("db exploded: credentials leaked"), http.StatusInternalServerError, "internal"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server, fakes := newTestServer(t)
			fakes.games.err = tt.err

			response, envelope := doJSON(t, http.MethodGet, server.URL+"/api/v1/games/730", "")
			if response.StatusCode != tt.wantStatus {
				t.Fatalf("expected %d, got %d", tt.wantStatus, response.StatusCode)
			}
			var apiErr struct {
				Code    string `json:"code"`
				Message string `json:"message"`
			}
			if err := json.Unmarshal(envelope["error"], &apiErr); err != nil {
				t.Fatal(err)
			}
			if apiErr.Code != tt.wantCode {
				t.Fatalf("expected code %q, got %q", tt.wantCode, apiErr.Code)
			}
			if tt.wantCode == "internal" && strings.Contains(apiErr.Message, "credentials") {
				t.Fatalf("internal error detail leaked to client: %q", apiErr.Message)
			}
		})
	}
}

func TestGameDetails(t *testing.T) {
	server, fakes := newTestServer(t)
	fakes.games.price = &domain.GamePrice{
		Ref:             domain.NewGameRef(domain.PlatformSteam, "1245620"),
		Title:           "Elden Ring",
		CurrentPrice:    decimal.RequireFromString("1999.50"),
		OriginalPrice:   decimal.RequireFromString("3999.00"),
		DiscountPercent: 50,
		Currency:        "INR",
	}

	response, envelope := doJSON(t, http.MethodGet, server.URL+"/api/v1/games/1245620", "")
	if response.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", response.StatusCode)
	}
	var data gameResponse
	if err := json.Unmarshal(envelope["data"], &data); err != nil {
		t.Fatal(err)
	}
	if data.ID != "steam:1245620" || data.DiscountPercent != 50 {
		t.Fatalf("unexpected body %+v", data)
	}
}

func TestSetupAlertCreated(t *testing.T) {
	server, fakes := newTestServer(t)
	fakes.alerts.confirmation = &usecase.AlertConfirmation{
		Alert: domain.PriceAlert{
			ID:          7,
			GameRef:     domain.NewGameRef(domain.PlatformSteam, "730"),
			TargetPrice: decimal.RequireFromString("500"),
			AlertType:   domain.AlertBelowTarget,
			CreatedAt:   time.Now(),
		},
		Title:            "Counter-Strike 2",
		CurrentPrice:     decimal.RequireFromString("450"),
		Currency:         "INR",
		TargetAlreadyMet: true,
	}

	body := `{"email":"a@b.com","game_id":"730","target_price":"500","alert_type":"below_target"}`
	response, envelope := doJSON(t, http.MethodPost, server.URL+"/api/v1/alerts", body)
	if response.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", response.StatusCode)
	}
	var data setupAlertResponse
	if err := json.Unmarshal(envelope["data"], &data); err != nil {
		t.Fatal(err)
	}
	if data.Alert.ID != 7 || !data.TargetAlreadyMet || !data.Alert.IsActive {
		t.Fatalf("unexpected body %+v", data)
	}
}

func TestListAlertsEmpty(t *testing.T) {
	server, _ := newTestServer(t)

	response, envelope := doJSON(t, http.MethodGet, server.URL+"/api/v1/alerts?email=a@b.com", "")
	if response.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", response.StatusCode)
	}
	// An empty list serializes as [], never null.
	if string(envelope["data"]) != "[]" {
		t.Fatalf("expected [], got %s", envelope["data"])
	}
}

func TestRemoveAlertPassesRef(t *testing.T) {
	server, fakes := newTestServer(t)

	response, _ := doJSON(t, http.MethodDelete, server.URL+"/api/v1/alerts/steam:730?email=a@b.com", "")
	if response.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", response.StatusCode)
	}
	if fakes.alerts.removedRef != "steam:730" {
		t.Fatalf("expected raw ref forwarded, got %q", fakes.alerts.removedRef)
	}
}

func TestDigestEndpoints(t *testing.T) {
	server, fakes := newTestServer(t)

	response, _ := doJSON(t, http.MethodPost, server.URL+"/api/v1/digest/subscriptions", `{"email":"a@b.com"}`)
	if response.StatusCode != http.StatusCreated {
		t.Fatalf("subscribe: expected 201, got %d", response.StatusCode)
	}
	response, _ = doJSON(t, http.MethodPost, server.URL+"/api/v1/digest/send", `{"email":"a@b.com"}`)
	if response.StatusCode != http.StatusOK {
		t.Fatalf("send: expected 200, got %d", response.StatusCode)
	}
	if len(fakes.digest.subscribed) != 1 || len(fakes.digest.sent) != 1 {
		t.Fatalf("expected one subscribe and one send, got %+v", fakes.digest)
	}
}

func TestCurrentDealsUnavailable(t *testing.T) {
	server, fakes := newTestServer(t)
	fakes.deals.err = fmt.Errorf("%w: no fresh deals", domain.ErrUnavailable)

	response, _ := doJSON(t, http.MethodGet, server.URL+"/api/v1/deals", "")
	if response.StatusCode != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", response.StatusCode)
	}
}

func TestHealthz(t *testing.T) {
	server, _ := newTestServer(t)

	response, _ := doJSON(t, http.MethodGet, server.URL+"/healthz", "")
	if response.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", response.StatusCode)
	}
}
