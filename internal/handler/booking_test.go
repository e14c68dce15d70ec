package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SwaraChokshi/The-Wheel-Deal/internal/model"
	"github.com/SwaraChokshi/The-Wheel-Deal/internal/repository"
)

// fakeCatalog serves a fixed set of cars.
type fakeCatalog struct{ cars map[string]*model.Car }

func (f *fakeCatalog) GetByID(_ context.Context, id string) (*model.Car, error) {
	c, ok := f.cars[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

// fakeIdentities resolves every user to a fixed contact snapshot.
type fakeIdentities struct{}

func (fakeIdentities) GetByID(_ context.Context, id string) (*model.User, error) {
	return &model.User{ID: id, Username: "Test User", Email: id + "@example.com"}, nil
}

func testCatalog() *fakeCatalog {
	return &fakeCatalog{cars: map[string]*model.Car{
		"car1": {ID: "car1", Name: "Swift Dzire", PricePerDay: 1000, Availability: true},
		"car2": {ID: "car2", Name: "Thar", PricePerDay: 2500, Availability: false},
	}}
}

func newBookingHandler() (*BookingHandler, *repository.MemoryBookingStore) {
	store := repository.NewMemoryBookingStore()
	return NewBookingHandler(store, testCatalog(), fakeIdentities{}), store
}

// doJSON runs an echo request with an authenticated actor in context.
func doJSON(method, target, body string, actor model.Actor, params map[string]string, h echo.HandlerFunc) *httptest.ResponseRecorder {
	e := echo.New()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if actor.ID != "" {
		c.Set("user_id", actor.ID)
		c.Set("role", actor.Role)
	}
	for k, v := range params {
		c.SetParamNames(k)
		c.SetParamValues(v)
	}
	_ = h(c)
	return rec
}

func futureDate(days int) string {
	return time.Now().UTC().AddDate(0, 0, days).Format("2006-01-02")
}

func createBody(carID string, pickupOffset, returnOffset int) string {
	return fmt.Sprintf(`{"car_id":%q,"pickup_date":%q,"return_date":%q,"pickup_location":"Airport"}`,
		carID, futureDate(pickupOffset), futureDate(returnOffset))
}

func TestBookingCreate(t *testing.T) {
	user := model.Actor{ID: "u1", Role: model.RoleUser}

	t.Run("success snapshots price and contact", func(t *testing.T) {
		h, store := newBookingHandler()
		rec := doJSON(http.MethodPost, "/api/bookings", createBody("car1", 1, 3), user, nil, h.Create)
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

		var b model.Booking
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &b))
		assert.Equal(t, "u1", b.UserID)
		assert.Equal(t, "Swift Dzire", b.CarName)
		assert.Equal(t, "u1@example.com", b.UserEmail)
		assert.Equal(t, int64(1000), b.UnitPrice)
		assert.Equal(t, int64(3000), b.TotalPrice, "three inclusive days")
		assert.Equal(t, model.StatusPending, b.Status)
		assert.Equal(t, model.PaymentPending, b.PaymentStatus)

		stored, err := store.GetByID(context.Background(), b.ID)
		require.NoError(t, err)
		assert.Equal(t, b.TotalPrice, stored.TotalPrice)
	})

	t.Run("overlap rejected with 409", func(t *testing.T) {
		h, _ := newBookingHandler()
		rec := doJSON(http.MethodPost, "/api/bookings", createBody("car1", 1, 5), user, nil, h.Create)
		require.Equal(t, http.StatusCreated, rec.Code)

		// Touching endpoint: previous booking returns the day this one
		// wants to pick up.
		rec = doJSON(http.MethodPost, "/api/bookings", createBody("car1", 5, 8), user, nil, h.Create)
		assert.Equal(t, http.StatusConflict, rec.Code)

		// The day after is free.
		rec = doJSON(http.MethodPost, "/api/bookings", createBody("car1", 6, 8), user, nil, h.Create)
		assert.Equal(t, http.StatusCreated, rec.Code)
	})

	t.Run("inverted range rejected", func(t *testing.T) {
		h, _ := newBookingHandler()
		rec := doJSON(http.MethodPost, "/api/bookings", createBody("car1", 5, 3), user, nil, h.Create)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("past pickup rejected", func(t *testing.T) {
		h, _ := newBookingHandler()
		rec := doJSON(http.MethodPost, "/api/bookings", createBody("car1", -2, 3), user, nil, h.Create)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("unknown car rejected", func(t *testing.T) {
		h, _ := newBookingHandler()
		rec := doJSON(http.MethodPost, "/api/bookings", createBody("ghost", 1, 3), user, nil, h.Create)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("unavailable car rejected", func(t *testing.T) {
		h, _ := newBookingHandler()
		rec := doJSON(http.MethodPost, "/api/bookings", createBody("car2", 1, 3), user, nil, h.Create)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("invalid date format rejected", func(t *testing.T) {
		h, _ := newBookingHandler()
		body := `{"car_id":"car1","pickup_date":"tomorrow","return_date":"2030-01-05"}`
		rec := doJSON(http.MethodPost, "/api/bookings", body, user, nil, h.Create)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestBookingGetOwnership(t *testing.T) {
	h, _ := newBookingHandler()
	owner := model.Actor{ID: "u1", Role: model.RoleUser}
	stranger := model.Actor{ID: "u2", Role: model.RoleUser}
	admin := model.Actor{ID: "a1", Role: model.RoleAdmin}

	rec := doJSON(http.MethodPost, "/api/bookings", createBody("car1", 1, 3), owner, nil, h.Create)
	require.Equal(t, http.StatusCreated, rec.Code)
	var b model.Booking
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &b))

	p := map[string]string{"id": b.ID}
	assert.Equal(t, http.StatusOK, doJSON(http.MethodGet, "/", "", owner, p, h.Get).Code)
	assert.Equal(t, http.StatusForbidden, doJSON(http.MethodGet, "/", "", stranger, p, h.Get).Code)
	assert.Equal(t, http.StatusOK, doJSON(http.MethodGet, "/", "", admin, p, h.Get).Code)
	assert.Equal(t, http.StatusNotFound, doJSON(http.MethodGet, "/", "", owner, map[string]string{"id": "nope"}, h.Get).Code)
}

func TestBookingCancel(t *testing.T) {
	owner := model.Actor{ID: "u1", Role: model.RoleUser}
	stranger := model.Actor{ID: "u2", Role: model.RoleUser}
	admin := model.Actor{ID: "a1", Role: model.RoleAdmin}

	create := func(t *testing.T, h *BookingHandler) model.Booking {
		t.Helper()
		rec := doJSON(http.MethodPost, "/api/bookings", createBody("car1", 1, 3), owner, nil, h.Create)
		require.Equal(t, http.StatusCreated, rec.Code)
		var b model.Booking
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &b))
		return b
	}

	t.Run("owner cancels and the range frees up", func(t *testing.T) {
		h, _ := newBookingHandler()
		b := create(t, h)
		rec := doJSON(http.MethodDelete, "/", "", owner, map[string]string{"id": b.ID}, h.Cancel)
		require.Equal(t, http.StatusOK, rec.Code)

		rec = doJSON(http.MethodPost, "/api/bookings", createBody("car1", 1, 3), owner, nil, h.Create)
		assert.Equal(t, http.StatusCreated, rec.Code, "cancelled booking no longer blocks")
	})

	t.Run("stranger forbidden", func(t *testing.T) {
		h, _ := newBookingHandler()
		b := create(t, h)
		rec := doJSON(http.MethodDelete, "/", "", stranger, map[string]string{"id": b.ID}, h.Cancel)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("owner cannot cancel a paid booking", func(t *testing.T) {
		h, store := newBookingHandler()
		b := create(t, h)
		_, err := store.UpdateByID(context.Background(), b.ID, func(b *model.Booking) (bool, error) {
			return b.MarkPaid(), nil
		})
		require.NoError(t, err)

		rec := doJSON(http.MethodDelete, "/", "", owner, map[string]string{"id": b.ID}, h.Cancel)
		assert.Equal(t, http.StatusConflict, rec.Code)

		// Admin still can.
		rec = doJSON(http.MethodDelete, "/", "", admin, map[string]string{"id": b.ID}, h.Cancel)
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("cancelling twice is a no-op", func(t *testing.T) {
		h, _ := newBookingHandler()
		b := create(t, h)
		p := map[string]string{"id": b.ID}
		require.Equal(t, http.StatusOK, doJSON(http.MethodDelete, "/", "", owner, p, h.Cancel).Code)
		assert.Equal(t, http.StatusOK, doJSON(http.MethodDelete, "/", "", owner, p, h.Cancel).Code)
	})
}

func TestBookingAvailability(t *testing.T) {
	h, _ := newBookingHandler()
	owner := model.Actor{ID: "u1", Role: model.RoleUser}

	rec := doJSON(http.MethodPost, "/api/bookings", createBody("car1", 1, 5), owner, nil, h.Create)
	require.Equal(t, http.StatusCreated, rec.Code)

	probe := func(carID string, from, to string) map[string]json.RawMessage {
		target := "/api/bookings/availability?pickup_date=" + from + "&return_date=" + to
		if carID != "" {
			target += "&car_id=" + carID
		}
		rec := doJSON(http.MethodGet, target, "", model.Actor{}, nil, h.Availability)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		var out map[string]json.RawMessage
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
		return out
	}

	t.Run("taken range reported", func(t *testing.T) {
		out := probe("car1", futureDate(5), futureDate(8))
		assert.JSONEq(t, "false", string(out["available"]), "touching endpoint counts as taken")
	})

	t.Run("free range", func(t *testing.T) {
		out := probe("car1", futureDate(6), futureDate(8))
		assert.JSONEq(t, "true", string(out["available"]))
	})

	t.Run("no car filter lists conflicts only", func(t *testing.T) {
		out := probe("", futureDate(1), futureDate(2))
		_, hasAvailable := out["available"]
		assert.False(t, hasAvailable)
		var bookings []json.RawMessage
		require.NoError(t, json.Unmarshal(out["bookings"], &bookings))
		assert.Len(t, bookings, 1)
	})

	t.Run("invalid dates rejected", func(t *testing.T) {
		rec := doJSON(http.MethodGet, "/api/bookings/availability?pickup_date=xx&return_date=yy", "", model.Actor{}, nil, h.Availability)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestBookingList(t *testing.T) {
	h, _ := newBookingHandler()
	u1 := model.Actor{ID: "u1", Role: model.RoleUser}
	u2 := model.Actor{ID: "u2", Role: model.RoleUser}

	require.Equal(t, http.StatusCreated, doJSON(http.MethodPost, "/", createBody("car1", 1, 3), u1, nil, h.Create).Code)
	require.Equal(t, http.StatusCreated, doJSON(http.MethodPost, "/", createBody("car1", 4, 6), u2, nil, h.Create).Code)

	rec := doJSON(http.MethodGet, "/api/bookings", "", u1, nil, h.List)
	require.Equal(t, http.StatusOK, rec.Code)
	var mine []model.Booking
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &mine))
	require.Len(t, mine, 1)
	assert.Equal(t, "u1", mine[0].UserID)
}
