package db

import (
	"context"
	"time"

	"github.com/rpillai/dealwatch/internal/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type SubscriptionRepository struct {
	db *gorm.DB
}

func NewSubscriptionRepository(db *gorm.DB) *SubscriptionRepository {
	return &SubscriptionRepository{db: db}
}

func (r *SubscriptionRepository) Subscribe(ctx context.Context, userID uint) error {
	model := dealsSubscriptionModel{UserID: userID, IsActive: true}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{"is_active": true}),
	}).Create(&model).Error
}

type subscriptionRow struct {
	ID       uint
	UserID   uint
	Email    string
	IsActive bool
	LastSent *time.Time
}

func (r *SubscriptionRepository) ListDueDigest(ctx context.Context, dayStart time.Time) ([]domain.DealsSubscription, error) {
	var rows []subscriptionRow
	err := r.db.WithContext(ctx).
		Table("deals_subscriptions").
		Select("deals_subscriptions.id, deals_subscriptions.user_id, deals_subscriptions.is_active, "+
			"deals_subscriptions.last_sent, users.email").
		Joins("JOIN users ON users.id = deals_subscriptions.user_id").
		Where("deals_subscriptions.is_active = ? AND users.is_active = ?", true, true).
		Where("deals_subscriptions.last_sent IS NULL OR deals_subscriptions.last_sent < ?", dayStart.UTC()).
		Order("deals_subscriptions.id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return mapSubscriptionRows(rows), nil
}

func (r *SubscriptionRepository) ListActiveEmails(ctx context.Context) ([]string, error) {
	var emails []string
	err := r.db.WithContext(ctx).
		Table("deals_subscriptions").
		Joins("JOIN users ON users.id = deals_subscriptions.user_id").
		Where("deals_subscriptions.is_active = ? AND users.is_active = ?", true, true).
		Distinct().
		Pluck("users.email", &emails).Error
	if err != nil {
		return nil, err
	}
	return emails, nil
}

func (r *SubscriptionRepository) MarkSent(ctx context.Context, subscriptionID uint, at time.Time) error {
	result := r.db.WithContext(ctx).
		Model(&dealsSubscriptionModel{}).
		Where("id = ?", subscriptionID).
		Update("last_sent", at.UTC())
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func mapSubscriptionRows(rows []subscriptionRow) []domain.DealsSubscription {
	subs := make([]domain.DealsSubscription, 0, len(rows))
	for _, row := range rows {
		subs = append(subs, domain.DealsSubscription{
			ID:       row.ID,
			UserID:   row.UserID,
			Email:    row.Email,
			IsActive: row.IsActive,
			LastSent: row.LastSent,
		})
	}
	return subs
}
