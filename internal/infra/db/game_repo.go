package db

import (
	"context"
	"time"

	"github.com/rpillai/dealwatch/internal/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type GameRepository struct {
	db  *gorm.DB
	now func() time.Time
}

func NewGameRepository(db *gorm.DB) *GameRepository {
	return &GameRepository{db: db, now: time.Now}
}

func (r *GameRepository) UpsertPrice(ctx context.Context, price domain.GamePrice) error {
	model := gameModel{
		GameRef:      price.Ref.String(),
		Title:        price.Title,
		CurrentPrice: price.CurrentPrice,
		Currency:     price.Currency,
		LastUpdated:  r.now().UTC(),
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "game_ref"}},
		DoUpdates: clause.AssignmentColumns([]string{"title", "current_price", "currency", "last_updated"}),
	}).Create(&model).Error
}

func (r *GameRepository) Get(ctx context.Context, ref domain.GameRef) (*domain.GamePrice, error) {
	var model gameModel
	if err := r.db.WithContext(ctx).Where("game_ref = ?", ref.String()).First(&model).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}

	parsed, err := domain.ParseGameRef(model.GameRef)
	if err != nil {
		return nil, err
	}
	return &domain.GamePrice{
		Ref:          parsed,
		Title:        model.Title,
		CurrentPrice: model.CurrentPrice,
		Currency:     model.Currency,
	}, nil
}
