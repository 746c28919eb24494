package service

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"hotelms/internal/cache"
	"hotelms/internal/logger"
	"hotelms/internal/model"
	"hotelms/internal/repository"
)

//go:embed catalog.json
var defaultCatalog []byte

// Catalog is the seed document for room types, rooms and an optional admin.
type Catalog struct {
	RoomTypes []CatalogRoomType `json:"room_types"`
	Admin     *CatalogAdmin     `json:"admin,omitempty"`
}

// CatalogRoomType is a room type and the rooms that belong to it.
type CatalogRoomType struct {
	Name          string        `json:"name"`
	Description   string        `json:"description"`
	PricePerNight string        `json:"price_per_night"`
	Capacity      int           `json:"capacity"`
	Amenities     string        `json:"amenities"`
	Rooms         []CatalogRoom `json:"rooms"`
}

// CatalogRoom is a seeded room.
type CatalogRoom struct {
	Number string `json:"number"`
	Floor  int    `json:"floor"`
}

// CatalogAdmin is the initial admin account.
type CatalogAdmin struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

// SeedResult summarizes a seed run.
type SeedResult struct {
	RoomTypesCreated int  `json:"room_types_created"`
	RoomTypesUpdated int  `json:"room_types_updated"`
	RoomsCreated     int  `json:"rooms_created"`
	RoomsSkipped     int  `json:"rooms_skipped"`
	AdminCreated     bool `json:"admin_created"`
}

// ParseCatalog decodes a catalog document.
func ParseCatalog(data []byte) (*Catalog, error) {
	var c Catalog
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	return &c, nil
}

// DefaultCatalog returns the built-in catalog.
func DefaultCatalog() (*Catalog, error) {
	return ParseCatalog(defaultCatalog)
}

// CatalogService loads seed data.
type CatalogService interface {
	Seed(ctx context.Context, catalog *Catalog) (*SeedResult, error)
}

type catalogService struct {
	roomTypeRepo repository.RoomTypeRepository
	roomRepo     repository.RoomRepository
	userRepo     repository.UserRepository
	cache        *cache.Client
}

// NewCatalogService creates a new catalog service.
func NewCatalogService(
	roomTypeRepo repository.RoomTypeRepository,
	roomRepo repository.RoomRepository,
	userRepo repository.UserRepository,
	cache *cache.Client,
) CatalogService {
	return &catalogService{
		roomTypeRepo: roomTypeRepo,
		roomRepo:     roomRepo,
		userRepo:     userRepo,
		cache:        cache,
	}
}

// Seed upserts room types by name and creates missing rooms by number.
// Existing rooms are left untouched.
func (s *catalogService) Seed(ctx context.Context, catalog *Catalog) (*SeedResult, error) {
	log := logger.WithContext(ctx)
	result := &SeedResult{}

	for _, item := range catalog.RoomTypes {
		price, err := decimal.NewFromString(item.PricePerNight)
		if err != nil || !price.IsPositive() {
			return nil, fmt.Errorf("room type %q: invalid price %q", item.Name, item.PricePerNight)
		}
		if item.Capacity < 1 {
			return nil, fmt.Errorf("room type %q: invalid capacity %d", item.Name, item.Capacity)
		}

		roomType, err := s.roomTypeRepo.FindByName(ctx, item.Name)
		switch {
		case err == nil:
			roomType.Description = item.Description
			roomType.PricePerNight = price.Round(2)
			roomType.Capacity = item.Capacity
			roomType.Amenities = item.Amenities
			if err := s.roomTypeRepo.Update(ctx, roomType); err != nil {
				return nil, fmt.Errorf("update room type %q: %w", item.Name, err)
			}
			result.RoomTypesUpdated++
		case errors.Is(err, gorm.ErrRecordNotFound):
			roomType = &model.RoomType{
				Name:          item.Name,
				Description:   item.Description,
				PricePerNight: price.Round(2),
				Capacity:      item.Capacity,
				Amenities:     item.Amenities,
			}
			if err := s.roomTypeRepo.Create(ctx, roomType); err != nil {
				return nil, fmt.Errorf("create room type %q: %w", item.Name, err)
			}
			result.RoomTypesCreated++
		default:
			return nil, fmt.Errorf("find room type %q: %w", item.Name, err)
		}
		_ = s.cache.Delete(ctx, roomTypeCacheKey(roomType.ID))

		for _, r := range item.Rooms {
			_, err := s.roomRepo.FindByNumber(ctx, r.Number)
			if err == nil {
				result.RoomsSkipped++
				continue
			}
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, fmt.Errorf("find room %q: %w", r.Number, err)
			}
			room := &model.Room{
				Number:     r.Number,
				Floor:      r.Floor,
				RoomTypeID: roomType.ID,
				Status:     model.RoomStatusAvailable,
			}
			if err := s.roomRepo.Create(ctx, room); err != nil {
				return nil, fmt.Errorf("create room %q: %w", r.Number, err)
			}
			result.RoomsCreated++
		}
	}
	_ = s.cache.Delete(ctx, roomTypeListCacheKey)

	if catalog.Admin != nil && catalog.Admin.Email != "" {
		created, err := s.seedAdmin(ctx, catalog.Admin)
		if err != nil {
			return nil, err
		}
		result.AdminCreated = created
	}

	log.Info("catalog seeded",
		"room_types_created", result.RoomTypesCreated,
		"room_types_updated", result.RoomTypesUpdated,
		"rooms_created", result.RoomsCreated,
		"rooms_skipped", result.RoomsSkipped,
		"admin_created", result.AdminCreated,
	)
	return result, nil
}

func (s *catalogService) seedAdmin(ctx context.Context, admin *CatalogAdmin) (bool, error) {
	email := normalizeEmail(admin.Email)
	_, err := s.userRepo.FindByEmail(ctx, email)
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return false, fmt.Errorf("find admin: %w", err)
	}
	if len(admin.Password) < 8 {
		return false, fmt.Errorf("admin %q: password must be at least 8 characters", email)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(admin.Password), bcryptCost)
	if err != nil {
		return false, fmt.Errorf("hash password: %w", err)
	}
	name := admin.Name
	if name == "" {
		name = "Administrator"
	}
	user := &model.User{
		Name:          name,
		Email:         email,
		PasswordHash:  string(hash),
		Role:          model.RoleAdmin,
		EmailVerified: true,
		Active:        true,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return false, fmt.Errorf("create admin: %w", err)
	}
	return true, nil
}
