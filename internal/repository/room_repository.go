package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"hotelms/internal/model"
)

// RoomFilter narrows a room listing.
type RoomFilter struct {
	Status     model.RoomStatus
	RoomTypeID uuid.UUID
	MinGuests  int
	Page       Page
}

// RoomRepository defines room persistence operations.
type RoomRepository interface {
	Create(ctx context.Context, room *model.Room) error
	UpdateFields(ctx context.Context, id uuid.UUID, fields map[string]interface{}) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Room, error)
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.Room, error)
	FindByNumber(ctx context.Context, number string) (*model.Room, error)
	List(ctx context.Context, filter RoomFilter) ([]model.Room, int64, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status model.RoomStatus) error
	CountByRoomType(ctx context.Context, roomTypeID uuid.UUID) (int64, error)
}

type roomRepository struct {
	db *gorm.DB
}

// NewRoomRepository creates a new room repository.
func NewRoomRepository(db *gorm.DB) RoomRepository {
	return &roomRepository{db: db}
}

// Create creates a new room.
func (r *roomRepository) Create(ctx context.Context, room *model.Room) error {
	return r.db.WithContext(ctx).Omit("RoomType").Create(room).Error
}

// UpdateFields writes only the given columns of a room.
func (r *roomRepository) UpdateFields(ctx context.Context, id uuid.UUID, fields map[string]interface{}) error {
	if len(fields) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Model(&model.Room{}).
		Where("id = ?", id).
		Updates(fields).Error
}

// Delete soft-deletes a room.
func (r *roomRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.Room{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// FindByID finds a room by ID with its room type.
func (r *roomRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Room, error) {
	var room model.Room
	if err := r.db.WithContext(ctx).Preload("RoomType").Where("id = ?", id).First(&room).Error; err != nil {
		return nil, err
	}
	return &room, nil
}

// FindByIDForUpdate finds a room by ID with row-level lock for update.
func (r *roomRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.Room, error) {
	var room model.Room
	if err := r.db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}).
		Preload("RoomType").
		Where("id = ?", id).First(&room).Error; err != nil {
		return nil, err
	}
	return &room, nil
}

// FindByNumber finds a room by its door number.
func (r *roomRepository) FindByNumber(ctx context.Context, number string) (*model.Room, error) {
	var room model.Room
	if err := r.db.WithContext(ctx).Where("number = ?", number).First(&room).Error; err != nil {
		return nil, err
	}
	return &room, nil
}

// List returns a page of rooms and the total number of matches.
func (r *roomRepository) List(ctx context.Context, filter RoomFilter) ([]model.Room, int64, error) {
	q := r.db.WithContext(ctx).Model(&model.Room{})
	if filter.Status != "" {
		q = q.Where("rooms.status = ?", filter.Status)
	}
	if filter.RoomTypeID != uuid.Nil {
		q = q.Where("rooms.room_type_id = ?", filter.RoomTypeID)
	}
	if filter.MinGuests > 0 {
		q = q.Joins("JOIN room_types ON room_types.id = rooms.room_type_id AND room_types.deleted_at IS NULL").
			Where("room_types.capacity >= ?", filter.MinGuests)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	page := filter.Page.Normalize()
	var rooms []model.Room
	if err := q.Preload("RoomType").
		Order("rooms.floor ASC, rooms.number ASC").
		Limit(page.Size).Offset(page.Offset()).
		Find(&rooms).Error; err != nil {
		return nil, 0, err
	}
	return rooms, total, nil
}

// UpdateStatus sets the availability status of a room.
func (r *roomRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status model.RoomStatus) error {
	return r.db.WithContext(ctx).Model(&model.Room{}).
		Where("id = ?", id).
		Update("status", status).Error
}

// CountByRoomType counts rooms of a room type.
func (r *roomRepository) CountByRoomType(ctx context.Context, roomTypeID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Room{}).
		Where("room_type_id = ?", roomTypeID).
		Count(&count).Error
	return count, err
}
