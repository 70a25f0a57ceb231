package rest

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rpillai/dealwatch/internal/domain"
	"github.com/rpillai/dealwatch/internal/usecase"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type UserService interface {
	Register(ctx context.Context, email string) (*domain.User, error)
}

type GameService interface {
	Search(ctx context.Context, query string) ([]domain.SearchResult, error)
	GetDetails(ctx context.Context, rawRef string) (*domain.GamePrice, error)
}

type AlertService interface {
	SetupAlert(ctx context.Context, rawRef, email string, targetPrice decimal.Decimal, rawType string) (*usecase.AlertConfirmation, error)
	ListAlerts(ctx context.Context, email string) ([]domain.PriceAlert, error)
	RemoveAlert(ctx context.Context, email, rawRef string) error
}

type DigestService interface {
	Subscribe(ctx context.Context, email string) error
	SendNow(ctx context.Context, email string) error
}

type Handlers struct {
	users  UserService
	games  GameService
	alerts AlertService
	digest DigestService
	deals  usecase.DealsProvider
	logger *zap.Logger
}

func NewHandlers(users UserService, games GameService, alerts AlertService, digest DigestService, deals usecase.DealsProvider, logger *zap.Logger) *Handlers {
	return &Handlers{
		users:  users,
		games:  games,
		alerts: alerts,
		digest: digest,
		deals:  deals,
		logger: logger,
	}
}

type emailRequest struct {
	Email string `json:"email"`
}

type setupAlertRequest struct {
	Email       string          `json:"email"`
	GameID      string          `json:"game_id"`
	TargetPrice decimal.Decimal `json:"target_price"`
	AlertType   string          `json:"alert_type"`
}

type userResponse struct {
	Email    string `json:"email"`
	IsActive bool   `json:"is_active"`
}

type searchItemResponse struct {
	ID       string          `json:"id"`
	Title    string          `json:"title"`
	Price    decimal.Decimal `json:"price"`
	Currency string          `json:"currency,omitempty"`
}

type gameResponse struct {
	ID              string          `json:"id"`
	Title           string          `json:"title"`
	CurrentPrice    decimal.Decimal `json:"current_price"`
	OriginalPrice   decimal.Decimal `json:"original_price"`
	DiscountPercent int             `json:"discount_percent"`
	Currency        string          `json:"currency"`
}

type alertResponse struct {
	ID           uint            `json:"id"`
	GameID       string          `json:"game_id"`
	Title        string          `json:"title,omitempty"`
	TargetPrice  decimal.Decimal `json:"target_price"`
	AlertType    string          `json:"alert_type"`
	CurrentPrice decimal.Decimal `json:"current_price"`
	Currency     string          `json:"currency,omitempty"`
	IsActive     bool            `json:"is_active"`
	CreatedAt    time.Time       `json:"created_at"`
}

type setupAlertResponse struct {
	Alert            alertResponse `json:"alert"`
	TargetAlreadyMet bool          `json:"target_already_met"`
}

func (h *Handlers) RegisterUser(w http.ResponseWriter, r *http.Request) {
	var req emailRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, h.logger, r, err)
		return
	}
	user, err := h.users.Register(r.Context(), req.Email)
	if err != nil {
		writeError(w, h.logger, r, err)
		return
	}
	writeSuccess(w, http.StatusCreated, userResponse{Email: user.Email, IsActive: user.IsActive})
}

func (h *Handlers) SearchGames(w http.ResponseWriter, r *http.Request) {
	results, err := h.games.Search(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		writeError(w, h.logger, r, err)
		return
	}
	items := make([]searchItemResponse, 0, len(results))
	for _, result := range results {
		items = append(items, searchItemResponse{
			ID:       result.Ref.String(),
			Title:    result.Title,
			Price:    result.Price,
			Currency: result.Currency,
		})
	}
	writeSuccess(w, http.StatusOK, items)
}

func (h *Handlers) GameDetails(w http.ResponseWriter, r *http.Request) {
	price, err := h.games.GetDetails(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, h.logger, r, err)
		return
	}
	writeSuccess(w, http.StatusOK, mapGameResponse(*price))
}

func (h *Handlers) SetupAlert(w http.ResponseWriter, r *http.Request) {
	var req setupAlertRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, h.logger, r, err)
		return
	}
	confirmation, err := h.alerts.SetupAlert(r.Context(), req.GameID, req.Email, req.TargetPrice, req.AlertType)
	if err != nil {
		writeError(w, h.logger, r, err)
		return
	}
	writeSuccess(w, http.StatusCreated, setupAlertResponse{
		Alert: alertResponse{
			ID:           confirmation.Alert.ID,
			GameID:       confirmation.Alert.GameRef.String(),
			Title:        confirmation.Title,
			TargetPrice:  confirmation.Alert.TargetPrice,
			AlertType:    string(confirmation.Alert.AlertType),
			CurrentPrice: confirmation.CurrentPrice,
			Currency:     confirmation.Currency,
			IsActive:     true,
			CreatedAt:    confirmation.Alert.CreatedAt,
		},
		TargetAlreadyMet: confirmation.TargetAlreadyMet,
	})
}

func (h *Handlers) ListAlerts(w http.ResponseWriter, r *http.Request) {
	alerts, err := h.alerts.ListAlerts(r.Context(), r.URL.Query().Get("email"))
	if err != nil {
		writeError(w, h.logger, r, err)
		return
	}
	items := make([]alertResponse, 0, len(alerts))
	for _, alert := range alerts {
		items = append(items, alertResponse{
			ID:           alert.ID,
			GameID:       alert.GameRef.String(),
			Title:        alert.Title,
			TargetPrice:  alert.TargetPrice,
			AlertType:    string(alert.AlertType),
			CurrentPrice: alert.LastKnownPrice,
			Currency:     alert.Currency,
			IsActive:     alert.IsActive,
			CreatedAt:    alert.CreatedAt,
		})
	}
	writeSuccess(w, http.StatusOK, items)
}

func (h *Handlers) RemoveAlert(w http.ResponseWriter, r *http.Request) {
	err := h.alerts.RemoveAlert(r.Context(), r.URL.Query().Get("email"), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, h.logger, r, err)
		return
	}
	writeSuccess(w, http.StatusOK, map[string]string{"status": "removed"})
}

func (h *Handlers) SubscribeDigest(w http.ResponseWriter, r *http.Request) {
	var req emailRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, h.logger, r, err)
		return
	}
	if err := h.digest.Subscribe(r.Context(), req.Email); err != nil {
		writeError(w, h.logger, r, err)
		return
	}
	writeSuccess(w, http.StatusCreated, map[string]string{"status": "subscribed"})
}

func (h *Handlers) SendDigestNow(w http.ResponseWriter, r *http.Request) {
	var req emailRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, h.logger, r, err)
		return
	}
	if err := h.digest.SendNow(r.Context(), req.Email); err != nil {
		writeError(w, h.logger, r, err)
		return
	}
	writeSuccess(w, http.StatusOK, map[string]string{"status": "sent"})
}

func (h *Handlers) CurrentDeals(w http.ResponseWriter, r *http.Request) {
	deals, err := h.deals.Current(r.Context())
	if err != nil {
		writeError(w, h.logger, r, err)
		return
	}
	items := make([]gameResponse, 0, len(deals))
	for _, deal := range deals {
		items = append(items, mapGameResponse(deal))
	}
	writeSuccess(w, http.StatusOK, items)
}

func mapGameResponse(price domain.GamePrice) gameResponse {
	return gameResponse{
		ID:              price.Ref.String(),
		Title:           price.Title,
		CurrentPrice:    price.CurrentPrice,
		OriginalPrice:   price.OriginalPrice,
		DiscountPercent: price.DiscountPercent,
		Currency:        price.Currency,
	}
}

func decodeBody(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return fmt.Errorf("%w: malformed request body", domain.ErrInvalidInput)
	}
	return nil
}
