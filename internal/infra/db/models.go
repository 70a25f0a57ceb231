package db

import (
	"time"

	"github.com/rpillai/dealwatch/internal/domain"
	"github.com/shopspring/decimal"
)

type userModel struct {
	ID        uint   `gorm:"primaryKey"`
	Email     string `gorm:"uniqueIndex;not null"`
	IsActive  bool   `gorm:"not null;default:true"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (userModel) TableName() string { return "users" }

type gameModel struct {
	GameRef      string          `gorm:"primaryKey"`
	Title        string          `gorm:"not null"`
	CurrentPrice decimal.Decimal `gorm:"type:decimal(10,2)"`
	Currency     string          `gorm:"size:8"`
	LastUpdated  time.Time
}

func (gameModel) TableName() string { return "games" }

type priceAlertModel struct {
	ID          uint            `gorm:"primaryKey"`
	UserID      uint            `gorm:"uniqueIndex:idx_alert_user_game_type;not null"`
	GameRef     string          `gorm:"uniqueIndex:idx_alert_user_game_type;not null"`
	TargetPrice decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	AlertType   string          `gorm:"uniqueIndex:idx_alert_user_game_type;size:16;not null"`
	IsActive    bool            `gorm:"index;not null;default:true"`
	CreatedAt   time.Time
	TriggeredAt *time.Time
}

func (priceAlertModel) TableName() string { return "price_alerts" }

type dealsSubscriptionModel struct {
	ID       uint `gorm:"primaryKey"`
	UserID   uint `gorm:"uniqueIndex;not null"`
	IsActive bool `gorm:"not null;default:true"`
	LastSent *time.Time
}

func (dealsSubscriptionModel) TableName() string { return "deals_subscriptions" }

type freeGameAlertModel struct {
	ID        uint   `gorm:"primaryKey"`
	Namespace string `gorm:"uniqueIndex:idx_free_game_ns_offer;not null"`
	OfferID   string `gorm:"uniqueIndex:idx_free_game_ns_offer;not null"`
	Title     string
	StartDate *time.Time
	EndDate   *time.Time
	AlertSent bool `gorm:"not null;default:false"`
}

func (freeGameAlertModel) TableName() string { return "free_game_alerts" }

func mapUserToDomain(model userModel) *domain.User {
	return &domain.User{
		ID:        model.ID,
		Email:     model.Email,
		IsActive:  model.IsActive,
		CreatedAt: model.CreatedAt,
		UpdatedAt: model.UpdatedAt,
	}
}
