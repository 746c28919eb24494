package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"hotelms/internal/model"
)

func TestDefaultCatalog(t *testing.T) {
	c, err := DefaultCatalog()
	require.NoError(t, err)
	require.NotEmpty(t, c.RoomTypes)

	numbers := map[string]bool{}
	for _, rt := range c.RoomTypes {
		assert.NotEmpty(t, rt.Name)
		assert.GreaterOrEqual(t, rt.Capacity, 1)
		for _, r := range rt.Rooms {
			assert.False(t, numbers[r.Number], "duplicate room number %s", r.Number)
			numbers[r.Number] = true
		}
	}
}

func TestParseCatalog_Invalid(t *testing.T) {
	_, err := ParseCatalog([]byte(`{"room_types": [`))
	assert.Error(t, err)
}

func TestCatalogService_Seed(t *testing.T) {
	roomTypes := new(MockRoomTypeRepository)
	rooms := new(MockRoomRepository)
	users := new(MockUserRepository)

	existing := &model.RoomType{Name: "Standard"}
	roomTypes.On("FindByName", mock.Anything, "Standard").Return(existing, nil)
	roomTypes.On("Update", mock.Anything, existing).Return(nil)
	roomTypes.On("FindByName", mock.Anything, "Suite").Return(nil, gorm.ErrRecordNotFound)
	roomTypes.On("Create", mock.Anything, mock.MatchedBy(func(rt *model.RoomType) bool {
		return rt.Name == "Suite" && rt.PricePerNight.String() == "250"
	})).Return(nil)

	rooms.On("FindByNumber", mock.Anything, "101").Return(&model.Room{Number: "101"}, nil)
	rooms.On("FindByNumber", mock.Anything, "301").Return(nil, gorm.ErrRecordNotFound)
	rooms.On("Create", mock.Anything, mock.MatchedBy(func(r *model.Room) bool {
		return r.Number == "301" && r.Status == model.RoomStatusAvailable
	})).Return(nil)

	users.On("FindByEmail", mock.Anything, "admin@hotel.test").Return(nil, gorm.ErrRecordNotFound)
	users.On("Create", mock.Anything, mock.MatchedBy(func(u *model.User) bool {
		return u.Role == model.RoleAdmin && u.EmailVerified &&
			bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte("changeme123")) == nil
	})).Return(nil)

	catalog, err := ParseCatalog([]byte(`{
		"room_types": [
			{"name": "Standard", "price_per_night": "95", "capacity": 2, "rooms": [{"number": "101", "floor": 1}]},
			{"name": "Suite", "price_per_night": "250.00", "capacity": 4, "rooms": [{"number": "301", "floor": 3}]}
		],
		"admin": {"email": "Admin@Hotel.test", "password": "changeme123"}
	}`))
	require.NoError(t, err)

	svc := NewCatalogService(roomTypes, rooms, users, nil)
	result, err := svc.Seed(context.Background(), catalog)
	require.NoError(t, err)

	assert.Equal(t, &SeedResult{
		RoomTypesCreated: 1,
		RoomTypesUpdated: 1,
		RoomsCreated:     1,
		RoomsSkipped:     1,
		AdminCreated:     true,
	}, result)
	assert.Equal(t, "95", existing.PricePerNight.String())
	roomTypes.AssertExpectations(t)
	rooms.AssertExpectations(t)
	users.AssertExpectations(t)
}

func TestCatalogService_SeedRejectsBadPrice(t *testing.T) {
	svc := NewCatalogService(new(MockRoomTypeRepository), new(MockRoomRepository), new(MockUserRepository), nil)
	_, err := svc.Seed(context.Background(), &Catalog{RoomTypes: []CatalogRoomType{
		{Name: "Broken", PricePerNight: "free", Capacity: 2},
	}})
	assert.Error(t, err)
}
