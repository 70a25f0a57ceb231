package db

import (
	"context"
	"time"

	"github.com/rpillai/dealwatch/internal/domain"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type AlertRepository struct {
	db *gorm.DB
}

func NewAlertRepository(db *gorm.DB) *AlertRepository {
	return &AlertRepository{db: db}
}

func (r *AlertRepository) Upsert(ctx context.Context, alert *domain.PriceAlert) error {
	model := priceAlertModel{
		UserID:      alert.UserID,
		GameRef:     alert.GameRef.String(),
		TargetPrice: alert.TargetPrice,
		AlertType:   string(alert.AlertType),
		IsActive:    true,
	}
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}, {Name: "game_ref"}, {Name: "alert_type"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"target_price": alert.TargetPrice,
			"is_active":    true,
			"triggered_at": nil,
		}),
	}).Create(&model).Error
	if err != nil {
		return err
	}
	alert.ID = model.ID
	alert.IsActive = true
	alert.TriggeredAt = nil
	return nil
}

type alertRow struct {
	ID             uint
	UserID         uint
	GameRef        string
	TargetPrice    decimal.Decimal
	AlertType      string
	IsActive       bool
	CreatedAt      time.Time
	TriggeredAt    *time.Time
	Title          string
	LastKnownPrice decimal.Decimal
	Currency       string
	Email          string
}

func (r *AlertRepository) ListActiveByEmail(ctx context.Context, email string) ([]domain.PriceAlert, error) {
	var rows []alertRow
	err := r.db.WithContext(ctx).
		Table("price_alerts").
		Select("price_alerts.id, price_alerts.user_id, price_alerts.game_ref, price_alerts.target_price, "+
			"price_alerts.alert_type, price_alerts.is_active, price_alerts.created_at, price_alerts.triggered_at, "+
			"games.title, games.current_price AS last_known_price, games.currency").
		Joins("JOIN games ON games.game_ref = price_alerts.game_ref").
		Joins("JOIN users ON users.id = price_alerts.user_id").
		Where("users.email = ? AND price_alerts.is_active = ?", email, true).
		Order("games.title").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	alerts := make([]domain.PriceAlert, 0, len(rows))
	for _, row := range rows {
		ref, err := domain.ParseGameRef(row.GameRef)
		if err != nil {
			return nil, err
		}
		alerts = append(alerts, domain.PriceAlert{
			ID:             row.ID,
			UserID:         row.UserID,
			GameRef:        ref,
			TargetPrice:    row.TargetPrice,
			AlertType:      domain.AlertType(row.AlertType),
			IsActive:       row.IsActive,
			CreatedAt:      row.CreatedAt,
			TriggeredAt:    row.TriggeredAt,
			Title:          row.Title,
			LastKnownPrice: row.LastKnownPrice,
			Currency:       row.Currency,
		})
	}
	return alerts, nil
}

func (r *AlertRepository) ListForEvaluation(ctx context.Context) ([]domain.EvalAlert, error) {
	var rows []alertRow
	err := r.db.WithContext(ctx).
		Table("price_alerts").
		Select("price_alerts.id, price_alerts.game_ref, price_alerts.target_price, price_alerts.alert_type, "+
			"games.title, games.current_price AS last_known_price, users.email").
		Joins("JOIN games ON games.game_ref = price_alerts.game_ref").
		Joins("JOIN users ON users.id = price_alerts.user_id").
		Where("price_alerts.is_active = ? AND users.is_active = ?", true, true).
		Order("price_alerts.id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	alerts := make([]domain.EvalAlert, 0, len(rows))
	for _, row := range rows {
		ref, err := domain.ParseGameRef(row.GameRef)
		if err != nil {
			return nil, err
		}
		alerts = append(alerts, domain.EvalAlert{
			AlertID:        row.ID,
			Email:          row.Email,
			GameRef:        ref,
			Title:          row.Title,
			TargetPrice:    row.TargetPrice,
			LastKnownPrice: row.LastKnownPrice,
			AlertType:      domain.AlertType(row.AlertType),
		})
	}
	return alerts, nil
}

func (r *AlertRepository) MarkTriggered(ctx context.Context, alertID uint, at time.Time) error {
	result := r.db.WithContext(ctx).
		Model(&priceAlertModel{}).
		Where("id = ? AND is_active = ?", alertID, true).
		Updates(map[string]interface{}{"is_active": false, "triggered_at": at.UTC()})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *AlertRepository) Deactivate(ctx context.Context, userID uint, ref domain.GameRef) error {
	result := r.db.WithContext(ctx).
		Model(&priceAlertModel{}).
		Where("user_id = ? AND game_ref = ? AND is_active = ?", userID, ref.String(), true).
		Update("is_active", false)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}
