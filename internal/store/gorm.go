package store

import (
	"context"

	"gorm.io/gorm"

	"photobooth-admin/internal/model"
)

// gormStore implements the Store interface using GORM.
type gormStore struct {
	db    *gorm.DB
	table string
}

// NewGormStore creates a new GORM-backed store over the given table. An empty
// table name uses the model default.
func NewGormStore(db *gorm.DB, table string) Store {
	if table == "" {
		table = model.Photo{}.TableName()
	}
	return &gormStore{db: db, table: table}
}

func (s *gormStore) List(ctx context.Context) ([]model.Photo, error) {
	var photos []model.Photo
	if err := s.db.WithContext(ctx).Table(s.table).Order("created_at DESC").Find(&photos).Error; err != nil {
		return nil, wrap(OpList, "", err)
	}
	return photos, nil
}

func (s *gormStore) MarkPrinted(ctx context.Context, id string) error {
	err := s.db.WithContext(ctx).
		Table(s.table).
		Where("id = ?", id).
		Update("printed", true).Error
	return wrap(OpMarkPrinted, id, err)
}

func (s *gormStore) Delete(ctx context.Context, id string) error {
	err := s.db.WithContext(ctx).
		Table(s.table).
		Where("id = ?", id).
		Delete(&model.Photo{}).Error
	return wrap(OpDelete, id, err)
}
