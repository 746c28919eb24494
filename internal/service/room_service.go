package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	apperrors "hotelms/internal/errors"
	"hotelms/internal/logger"
	"hotelms/internal/model"
	"hotelms/internal/repository"
)

// RoomInput carries the fields of a new room.
type RoomInput struct {
	Number     string
	Floor      int
	RoomTypeID uuid.UUID
	Notes      string
}

// RoomUpdate carries optional room changes. Nil fields are left unchanged.
type RoomUpdate struct {
	Number     *string
	Floor      *int
	RoomTypeID *uuid.UUID
	Notes      *string
	Status     *model.RoomStatus
}

// RoomService manages rooms and their availability.
type RoomService interface {
	Create(ctx context.Context, in RoomInput) (*model.Room, error)
	Update(ctx context.Context, id uuid.UUID, in RoomUpdate) (*model.Room, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Get(ctx context.Context, id uuid.UUID) (*model.Room, error)
	List(ctx context.Context, filter repository.RoomFilter) ([]model.Room, int64, error)
	ListAvailable(ctx context.Context, roomTypeID uuid.UUID, guests int, page repository.Page) ([]model.Room, int64, error)
}

type roomService struct {
	tx           repository.Transactor
	roomRepo     repository.RoomRepository
	roomTypeRepo repository.RoomTypeRepository
}

// NewRoomService creates a new room service.
func NewRoomService(
	tx repository.Transactor,
	roomRepo repository.RoomRepository,
	roomTypeRepo repository.RoomTypeRepository,
) RoomService {
	return &roomService{
		tx:           tx,
		roomRepo:     roomRepo,
		roomTypeRepo: roomTypeRepo,
	}
}

func (s *roomService) Create(ctx context.Context, in RoomInput) (*model.Room, error) {
	roomType, err := s.findRoomType(ctx, in.RoomTypeID)
	if err != nil {
		return nil, err
	}

	room := &model.Room{
		Number:     in.Number,
		Floor:      in.Floor,
		RoomTypeID: roomType.ID,
		Status:     model.RoomStatusAvailable,
		Notes:      in.Notes,
	}
	if err := s.roomRepo.Create(ctx, room); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperrors.ErrRoomNumberTaken
		}
		return nil, fmt.Errorf("create room: %w", err)
	}
	room.RoomType = roomType

	logger.WithContext(ctx).Info("room created", "room_id", room.ID, "number", room.Number)
	return room, nil
}

// Update applies admin edits under a row lock so it cannot race a booking
// reserving the room. Only available and maintenance may be set directly, and
// never while a booking holds the room. Only changed columns are written.
func (s *roomService) Update(ctx context.Context, id uuid.UUID, in RoomUpdate) (*model.Room, error) {
	if in.Status != nil && *in.Status != model.RoomStatusAvailable && *in.Status != model.RoomStatusMaintenance {
		return nil, apperrors.ErrInvalidRoomStatus
	}

	var newType *model.RoomType
	if in.RoomTypeID != nil {
		roomType, err := s.findRoomType(ctx, *in.RoomTypeID)
		if err != nil {
			return nil, err
		}
		newType = roomType
	}

	var room *model.Room
	err := s.tx.WithTransaction(ctx, func(ctx context.Context, repos repository.TxRepositories) error {
		var err error
		room, err = lockRoom(ctx, repos.Rooms, id)
		if err != nil {
			return err
		}

		fields := map[string]interface{}{}
		if in.Status != nil && *in.Status != room.Status {
			held, err := repos.Bookings.HasActiveForRoom(ctx, id)
			if err != nil {
				return fmt.Errorf("check active bookings: %w", err)
			}
			if held {
				return apperrors.ErrRoomInUse
			}
			room.Status = *in.Status
			fields["status"] = room.Status
		}
		if newType != nil && newType.ID != room.RoomTypeID {
			room.RoomTypeID = newType.ID
			room.RoomType = newType
			fields["room_type_id"] = room.RoomTypeID
		}
		if in.Number != nil && *in.Number != room.Number {
			room.Number = *in.Number
			fields["number"] = room.Number
		}
		if in.Floor != nil && *in.Floor != room.Floor {
			room.Floor = *in.Floor
			fields["floor"] = room.Floor
		}
		if in.Notes != nil && *in.Notes != room.Notes {
			room.Notes = *in.Notes
			fields["notes"] = room.Notes
		}
		if len(fields) == 0 {
			return nil
		}

		if err := repos.Rooms.UpdateFields(ctx, id, fields); err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return apperrors.ErrRoomNumberTaken
			}
			return fmt.Errorf("update room: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return room, nil
}

// Delete removes a room unless a booking holds it. The room row is locked so a
// concurrent booking cannot slip in between the check and the delete.
func (s *roomService) Delete(ctx context.Context, id uuid.UUID) error {
	err := s.tx.WithTransaction(ctx, func(ctx context.Context, repos repository.TxRepositories) error {
		if _, err := lockRoom(ctx, repos.Rooms, id); err != nil {
			return err
		}
		held, err := repos.Bookings.HasActiveForRoom(ctx, id)
		if err != nil {
			return fmt.Errorf("check active bookings: %w", err)
		}
		if held {
			return apperrors.ErrRoomInUse
		}
		if err := repos.Rooms.Delete(ctx, id); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.ErrRoomNotFound
			}
			return fmt.Errorf("delete room: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	logger.WithContext(ctx).Info("room deleted", "room_id", id)
	return nil
}

func lockRoom(ctx context.Context, rooms repository.RoomRepository, id uuid.UUID) (*model.Room, error) {
	room, err := rooms.FindByIDForUpdate(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrRoomNotFound
		}
		return nil, fmt.Errorf("lock room: %w", err)
	}
	return room, nil
}

func (s *roomService) Get(ctx context.Context, id uuid.UUID) (*model.Room, error) {
	room, err := s.roomRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrRoomNotFound
		}
		return nil, fmt.Errorf("find room: %w", err)
	}
	return room, nil
}

func (s *roomService) List(ctx context.Context, filter repository.RoomFilter) ([]model.Room, int64, error) {
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, 0, apperrors.ErrInvalidRoomStatus
	}
	rooms, total, err := s.roomRepo.List(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("list rooms: %w", err)
	}
	return rooms, total, nil
}

// ListAvailable returns available rooms that fit the guest count.
func (s *roomService) ListAvailable(ctx context.Context, roomTypeID uuid.UUID, guests int, page repository.Page) ([]model.Room, int64, error) {
	if guests < 1 {
		guests = 1
	}
	return s.List(ctx, repository.RoomFilter{
		Status:     model.RoomStatusAvailable,
		RoomTypeID: roomTypeID,
		MinGuests:  guests,
		Page:       page,
	})
}

func (s *roomService) findRoomType(ctx context.Context, id uuid.UUID) (*model.RoomType, error) {
	roomType, err := s.roomTypeRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrRoomTypeNotFound
		}
		return nil, fmt.Errorf("find room type: %w", err)
	}
	return roomType, nil
}
