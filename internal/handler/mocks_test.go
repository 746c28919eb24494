package handler

import (
	"context"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/mock"

	"hotelms/internal/auth"
	"hotelms/internal/model"
	"hotelms/internal/repository"
	"hotelms/internal/service"
)

type testValidator struct {
	v *validator.Validate
}

func (tv *testValidator) Validate(i interface{}) error {
	return tv.v.Struct(i)
}

// request describes one handler invocation.
type request struct {
	method      string
	target      string
	body        string
	contentType string
	header      map[string]string
	params      map[string]string
	claims      *auth.Claims
}

// serve runs h against req and renders any returned error the way echo would.
func serve(t *testing.T, h echo.HandlerFunc, req request) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	e.Validator = &testValidator{v: validator.New()}

	var body io.Reader
	if req.body != "" {
		body = strings.NewReader(req.body)
	}
	r := httptest.NewRequest(req.method, req.target, body)
	if req.body != "" {
		ct := req.contentType
		if ct == "" {
			ct = echo.MIMEApplicationJSON
		}
		r.Header.Set(echo.HeaderContentType, ct)
	}
	for k, v := range req.header {
		r.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(r, rec)

	if len(req.params) > 0 {
		names := make([]string, 0, len(req.params))
		values := make([]string, 0, len(req.params))
		for k, v := range req.params {
			names = append(names, k)
			values = append(values, v)
		}
		c.SetParamNames(names...)
		c.SetParamValues(values...)
	}
	if req.claims != nil {
		c.Set(auth.ContextKey, req.claims)
	}

	if err := h(c); err != nil {
		e.HTTPErrorHandler(err, c)
	}
	return rec
}

func customerClaims() *auth.Claims {
	return &auth.Claims{UserID: uuid.New(), Role: model.RoleCustomer, TokenType: auth.TokenTypeAccess}
}

func adminClaims() *auth.Claims {
	return &auth.Claims{UserID: uuid.New(), Role: model.RoleAdmin, TokenType: auth.TokenTypeAccess}
}


// MockAuthService is a mock implementation of service.AuthService.
type MockAuthService struct {
	mock.Mock
}

func (m *MockAuthService) RegisterCustomer(ctx context.Context, in service.RegisterInput) (*model.User, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockAuthService) RegisterAdmin(ctx context.Context, in service.RegisterInput, adminKey string) (*model.User, error) {
	args := m.Called(ctx, in, adminKey)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockAuthService) Login(ctx context.Context, email, password string) (*service.TokenPair, *model.User, error) {
	args := m.Called(ctx, email, password)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	return args.Get(0).(*service.TokenPair), args.Get(1).(*model.User), args.Error(2)
}

func (m *MockAuthService) RefreshToken(ctx context.Context, refreshToken string) (string, error) {
	args := m.Called(ctx, refreshToken)
	return args.String(0), args.Error(1)
}

func (m *MockAuthService) Logout(ctx context.Context, refreshToken string, access *auth.Claims) error {
	args := m.Called(ctx, refreshToken, access)
	return args.Error(0)
}

func (m *MockAuthService) Me(ctx context.Context, userID uuid.UUID) (*model.User, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockAuthService) ResetPassword(ctx context.Context, email, code, newPassword string) error {
	args := m.Called(ctx, email, code, newPassword)
	return args.Error(0)
}

// MockRoomService is a mock implementation of service.RoomService.
type MockRoomService struct {
	mock.Mock
}

func (m *MockRoomService) Create(ctx context.Context, in service.RoomInput) (*model.Room, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Room), args.Error(1)
}

func (m *MockRoomService) Update(ctx context.Context, id uuid.UUID, in service.RoomUpdate) (*model.Room, error) {
	args := m.Called(ctx, id, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Room), args.Error(1)
}

func (m *MockRoomService) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockRoomService) Get(ctx context.Context, id uuid.UUID) (*model.Room, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Room), args.Error(1)
}

func (m *MockRoomService) List(ctx context.Context, filter repository.RoomFilter) ([]model.Room, int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]model.Room), args.Get(1).(int64), args.Error(2)
}

func (m *MockRoomService) ListAvailable(ctx context.Context, roomTypeID uuid.UUID, guests int, page repository.Page) ([]model.Room, int64, error) {
	args := m.Called(ctx, roomTypeID, guests, page)
	return args.Get(0).([]model.Room), args.Get(1).(int64), args.Error(2)
}

// MockBookingService is a mock implementation of service.BookingService.
type MockBookingService struct {
	mock.Mock
}

func (m *MockBookingService) booking(args mock.Arguments) (*model.Booking, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Booking), args.Error(1)
}

func (m *MockBookingService) Confirm(ctx context.Context, id uuid.UUID) (*model.Booking, error) {
	return m.booking(m.Called(ctx, id))
}

func (m *MockBookingService) Create(ctx context.Context, actor service.Actor, in service.CreateBookingInput) (*model.Booking, error) {
	return m.booking(m.Called(ctx, actor, in))
}

func (m *MockBookingService) Get(ctx context.Context, actor service.Actor, id uuid.UUID) (*model.Booking, error) {
	return m.booking(m.Called(ctx, actor, id))
}

func (m *MockBookingService) List(ctx context.Context, actor service.Actor, filter repository.BookingFilter) ([]model.Booking, int64, error) {
	args := m.Called(ctx, actor, filter)
	return args.Get(0).([]model.Booking), args.Get(1).(int64), args.Error(2)
}

func (m *MockBookingService) Cancel(ctx context.Context, actor service.Actor, id uuid.UUID) (*model.Booking, error) {
	return m.booking(m.Called(ctx, actor, id))
}

func (m *MockBookingService) CheckIn(ctx context.Context, id uuid.UUID) (*model.Booking, error) {
	return m.booking(m.Called(ctx, id))
}

func (m *MockBookingService) CheckOut(ctx context.Context, id uuid.UUID) (*model.Booking, error) {
	return m.booking(m.Called(ctx, id))
}

func (m *MockBookingService) ExpireStale(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

// MockPaymentService is a mock implementation of service.PaymentService.
type MockPaymentService struct {
	mock.Mock
}

func (m *MockPaymentService) CancelForBooking(ctx context.Context, bookingID uuid.UUID) error {
	args := m.Called(ctx, bookingID)
	return args.Error(0)
}

func (m *MockPaymentService) CreateIntent(ctx context.Context, actor service.Actor, bookingID uuid.UUID) (*model.Payment, error) {
	args := m.Called(ctx, actor, bookingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Payment), args.Error(1)
}

func (m *MockPaymentService) GetForBooking(ctx context.Context, actor service.Actor, bookingID uuid.UUID) (*model.Payment, error) {
	args := m.Called(ctx, actor, bookingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Payment), args.Error(1)
}

func (m *MockPaymentService) HandleWebhook(ctx context.Context, payload []byte, signature string) error {
	args := m.Called(ctx, payload, signature)
	return args.Error(0)
}

// MockCatalogService is a mock implementation of service.CatalogService.
type MockCatalogService struct {
	mock.Mock
}

func (m *MockCatalogService) Seed(ctx context.Context, catalog *service.Catalog) (*service.SeedResult, error) {
	args := m.Called(ctx, catalog)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.SeedResult), args.Error(1)
}

// MockRoomTypeService is a mock implementation of service.RoomTypeService.
type MockRoomTypeService struct {
	mock.Mock
}

func (m *MockRoomTypeService) roomType(args mock.Arguments) (*model.RoomType, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.RoomType), args.Error(1)
}

func (m *MockRoomTypeService) Create(ctx context.Context, in service.RoomTypeInput) (*model.RoomType, error) {
	return m.roomType(m.Called(ctx, in))
}

func (m *MockRoomTypeService) Update(ctx context.Context, id uuid.UUID, in service.RoomTypeInput) (*model.RoomType, error) {
	return m.roomType(m.Called(ctx, id, in))
}

func (m *MockRoomTypeService) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockRoomTypeService) Get(ctx context.Context, id uuid.UUID) (*model.RoomType, error) {
	return m.roomType(m.Called(ctx, id))
}

func (m *MockRoomTypeService) List(ctx context.Context) ([]model.RoomType, error) {
	args := m.Called(ctx)
	return args.Get(0).([]model.RoomType), args.Error(1)
}

func (m *MockRoomTypeService) UploadImage(ctx context.Context, id uuid.UUID, body io.Reader, contentType string) (*model.RoomType, error) {
	return m.roomType(m.Called(ctx, id, body, contentType))
}
