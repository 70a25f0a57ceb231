package db

import (
	"context"
	"errors"

	"github.com/rpillai/dealwatch/internal/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type FreeGameAlertRepository struct {
	db *gorm.DB
}

func NewFreeGameAlertRepository(db *gorm.DB) *FreeGameAlertRepository {
	return &FreeGameAlertRepository{db: db}
}

func (r *FreeGameAlertRepository) WasSent(ctx context.Context, namespace, offerID string) (bool, error) {
	var model freeGameAlertModel
	err := r.db.WithContext(ctx).
		Where("namespace = ? AND offer_id = ?", namespace, offerID).
		First(&model).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return model.AlertSent, nil
}

func (r *FreeGameAlertRepository) MarkSent(ctx context.Context, record domain.FreeGameAlertRecord) error {
	model := freeGameAlertModel{
		Namespace: record.Namespace,
		OfferID:   record.OfferID,
		Title:     record.Title,
		StartDate: record.StartDate,
		EndDate:   record.EndDate,
		AlertSent: true,
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "namespace"}, {Name: "offer_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{"alert_sent": true}),
	}).Create(&model).Error
}
