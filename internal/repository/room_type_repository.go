package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"hotelms/internal/model"
)

// RoomTypeRepository defines room type persistence operations.
type RoomTypeRepository interface {
	Create(ctx context.Context, roomType *model.RoomType) error
	Update(ctx context.Context, roomType *model.RoomType) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.RoomType, error)
	FindByName(ctx context.Context, name string) (*model.RoomType, error)
	List(ctx context.Context) ([]model.RoomType, error)
}

type roomTypeRepository struct {
	db *gorm.DB
}

// NewRoomTypeRepository creates a new room type repository.
func NewRoomTypeRepository(db *gorm.DB) RoomTypeRepository {
	return &roomTypeRepository{db: db}
}

func (r *roomTypeRepository) Create(ctx context.Context, roomType *model.RoomType) error {
	return r.db.WithContext(ctx).Create(roomType).Error
}

func (r *roomTypeRepository) Update(ctx context.Context, roomType *model.RoomType) error {
	return r.db.WithContext(ctx).Save(roomType).Error
}

func (r *roomTypeRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.RoomType{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *roomTypeRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.RoomType, error) {
	var roomType model.RoomType
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&roomType).Error; err != nil {
		return nil, err
	}
	return &roomType, nil
}

func (r *roomTypeRepository) FindByName(ctx context.Context, name string) (*model.RoomType, error) {
	var roomType model.RoomType
	if err := r.db.WithContext(ctx).Where("name = ?", name).First(&roomType).Error; err != nil {
		return nil, err
	}
	return &roomType, nil
}

func (r *roomTypeRepository) List(ctx context.Context) ([]model.RoomType, error) {
	var roomTypes []model.RoomType
	if err := r.db.WithContext(ctx).Order("price_per_night ASC, name ASC").Find(&roomTypes).Error; err != nil {
		return nil, err
	}
	return roomTypes, nil
}
