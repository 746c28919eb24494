package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"hotelms/internal/cache"
	apperrors "hotelms/internal/errors"
	"hotelms/internal/logger"
	"hotelms/internal/model"
	"hotelms/internal/repository"
	"hotelms/internal/storage"
)

const (
	roomTypeCacheTTL     = 10 * time.Minute
	roomTypeListCacheKey = "room_types:all"
)

func roomTypeCacheKey(id uuid.UUID) string {
	return "room_type:" + id.String()
}

// RoomTypeInput carries the editable fields of a room type.
type RoomTypeInput struct {
	Name          string
	Description   string
	PricePerNight decimal.Decimal
	Capacity      int
	Amenities     string
}

// RoomTypeService manages the room type catalog.
type RoomTypeService interface {
	Create(ctx context.Context, in RoomTypeInput) (*model.RoomType, error)
	Update(ctx context.Context, id uuid.UUID, in RoomTypeInput) (*model.RoomType, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Get(ctx context.Context, id uuid.UUID) (*model.RoomType, error)
	List(ctx context.Context) ([]model.RoomType, error)
	UploadImage(ctx context.Context, id uuid.UUID, body io.Reader, contentType string) (*model.RoomType, error)
}

type roomTypeService struct {
	roomTypeRepo repository.RoomTypeRepository
	roomRepo     repository.RoomRepository
	cache        *cache.Client
	uploader     storage.Uploader
}

// NewRoomTypeService creates a room type service. uploader may be nil when
// image storage is not configured.
func NewRoomTypeService(
	roomTypeRepo repository.RoomTypeRepository,
	roomRepo repository.RoomRepository,
	cache *cache.Client,
	uploader storage.Uploader,
) RoomTypeService {
	return &roomTypeService{
		roomTypeRepo: roomTypeRepo,
		roomRepo:     roomRepo,
		cache:        cache,
		uploader:     uploader,
	}
}

func validateRoomType(in RoomTypeInput) error {
	if !in.PricePerNight.IsPositive() {
		return apperrors.ErrInvalidPrice
	}
	if in.Capacity < 1 {
		return apperrors.ErrInvalidCapacity
	}
	return nil
}

func (s *roomTypeService) Create(ctx context.Context, in RoomTypeInput) (*model.RoomType, error) {
	if err := validateRoomType(in); err != nil {
		return nil, err
	}

	roomType := &model.RoomType{
		Name:          in.Name,
		Description:   in.Description,
		PricePerNight: in.PricePerNight.Round(2),
		Capacity:      in.Capacity,
		Amenities:     in.Amenities,
	}
	if err := s.roomTypeRepo.Create(ctx, roomType); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperrors.ErrRoomTypeExists
		}
		return nil, fmt.Errorf("create room type: %w", err)
	}

	s.invalidate(ctx, roomType.ID)
	logger.WithContext(ctx).Info("room type created", "room_type_id", roomType.ID, "name", roomType.Name)
	return roomType, nil
}

func (s *roomTypeService) Update(ctx context.Context, id uuid.UUID, in RoomTypeInput) (*model.RoomType, error) {
	if err := validateRoomType(in); err != nil {
		return nil, err
	}

	roomType, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}

	roomType.Name = in.Name
	roomType.Description = in.Description
	roomType.PricePerNight = in.PricePerNight.Round(2)
	roomType.Capacity = in.Capacity
	roomType.Amenities = in.Amenities

	if err := s.roomTypeRepo.Update(ctx, roomType); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperrors.ErrRoomTypeExists
		}
		return nil, fmt.Errorf("update room type: %w", err)
	}

	s.invalidate(ctx, id)
	return roomType, nil
}

func (s *roomTypeService) Delete(ctx context.Context, id uuid.UUID) error {
	count, err := s.roomRepo.CountByRoomType(ctx, id)
	if err != nil {
		return fmt.Errorf("count rooms: %w", err)
	}
	if count > 0 {
		return apperrors.ErrRoomTypeInUse
	}

	if err := s.roomTypeRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.ErrRoomTypeNotFound
		}
		return fmt.Errorf("delete room type: %w", err)
	}

	s.invalidate(ctx, id)
	logger.WithContext(ctx).Info("room type deleted", "room_type_id", id)
	return nil
}

// Get reads through the cache.
func (s *roomTypeService) Get(ctx context.Context, id uuid.UUID) (*model.RoomType, error) {
	var cached model.RoomType
	if s.cache.GetJSON(ctx, roomTypeCacheKey(id), &cached) {
		return &cached, nil
	}

	roomType, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	s.cache.SetJSON(ctx, roomTypeCacheKey(id), roomType, roomTypeCacheTTL)
	return roomType, nil
}

func (s *roomTypeService) List(ctx context.Context) ([]model.RoomType, error) {
	var cached []model.RoomType
	if s.cache.GetJSON(ctx, roomTypeListCacheKey, &cached) {
		return cached, nil
	}

	roomTypes, err := s.roomTypeRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list room types: %w", err)
	}
	s.cache.SetJSON(ctx, roomTypeListCacheKey, roomTypes, roomTypeCacheTTL)
	return roomTypes, nil
}

// UploadImage stores the image in object storage and records its URL.
func (s *roomTypeService) UploadImage(ctx context.Context, id uuid.UUID, body io.Reader, contentType string) (*model.RoomType, error) {
	if s.uploader == nil {
		return nil, apperrors.ErrStorageDisabled
	}
	ext, ok := storage.ImageExtension(contentType)
	if !ok {
		return nil, apperrors.ErrInvalidImage
	}

	roomType, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}

	key := fmt.Sprintf("room-types/%s/%s%s", id, uuid.NewString(), ext)
	url, err := s.uploader.Upload(ctx, key, body, contentType)
	if err != nil {
		return nil, fmt.Errorf("upload image: %w", err)
	}

	roomType.ImageURL = url
	if err := s.roomTypeRepo.Update(ctx, roomType); err != nil {
		return nil, fmt.Errorf("update room type: %w", err)
	}

	s.invalidate(ctx, id)
	logger.WithContext(ctx).Info("room type image uploaded", "room_type_id", id, "key", key)
	return roomType, nil
}

func (s *roomTypeService) find(ctx context.Context, id uuid.UUID) (*model.RoomType, error) {
	roomType, err := s.roomTypeRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrRoomTypeNotFound
		}
		return nil, fmt.Errorf("find room type: %w", err)
	}
	return roomType, nil
}

func (s *roomTypeService) invalidate(ctx context.Context, id uuid.UUID) {
	_ = s.cache.Delete(ctx, roomTypeCacheKey(id), roomTypeListCacheKey)
}
