package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/SwaraChokshi/The-Wheel-Deal/internal/model"
	"github.com/SwaraChokshi/The-Wheel-Deal/internal/repository"
)

// CarHandler serves the public car catalog and its admin management
// endpoints.
type CarHandler struct {
	Cars *repository.CarRepo
}

// NewCarHandler wires the catalog endpoints to the car repository.
func NewCarHandler(cars *repository.CarRepo) *CarHandler {
	return &CarHandler{Cars: cars}
}

type carRequest struct {
	Name         string `json:"name"`
	Brand        string `json:"brand"`
	Model        string `json:"model"`
	Year         int    `json:"year"`
	PricePerDay  int64  `json:"price_per_day"`
	ImageURL     string `json:"image_url"`
	Location     string `json:"location"`
	Seats        int    `json:"seats"`
	Transmission string `json:"transmission"`
	FuelType     string `json:"fuel_type"`
	Availability *bool  `json:"availability"`
}

// List returns available cars, optionally filtered by ?location=.
func (h *CarHandler) List(c echo.Context) error {
	cars, err := h.Cars.ListAvailable(c.Request().Context(), c.QueryParam("location"))
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to list cars"})
	}
	return c.JSON(http.StatusOK, cars)
}

// Get returns a single car by id.
func (h *CarHandler) Get(c echo.Context) error {
	car, err := h.Cars.GetByID(c.Request().Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "car not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load car"})
	}
	return c.JSON(http.StatusOK, car)
}

// Create adds a catalog entry.  Admin only.
func (h *CarHandler) Create(c echo.Context) error {
	var req carRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if req.Name == "" || req.PricePerDay <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name and a positive price_per_day are required"})
	}
	avail := true
	if req.Availability != nil {
		avail = *req.Availability
	}
	car := &model.Car{
		ID:           uuid.NewString(),
		Name:         req.Name,
		Brand:        req.Brand,
		Model:        req.Model,
		Year:         req.Year,
		PricePerDay:  req.PricePerDay,
		ImageURL:     req.ImageURL,
		Location:     req.Location,
		Seats:        req.Seats,
		Transmission: req.Transmission,
		FuelType:     req.FuelType,
		Availability: avail,
		CreatedAt:    time.Now().UTC(),
	}
	if err := h.Cars.Create(c.Request().Context(), car); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create car"})
	}
	return c.JSON(http.StatusCreated, car)
}

// Update overwrites the mutable fields of a car.  Admin only.
func (h *CarHandler) Update(c echo.Context) error {
	car, err := h.Cars.GetByID(c.Request().Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "car not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load car"})
	}

	var req carRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if req.Name != "" {
		car.Name = req.Name
	}
	if req.Brand != "" {
		car.Brand = req.Brand
	}
	if req.Model != "" {
		car.Model = req.Model
	}
	if req.Year != 0 {
		car.Year = req.Year
	}
	if req.PricePerDay > 0 {
		car.PricePerDay = req.PricePerDay
	}
	if req.ImageURL != "" {
		car.ImageURL = req.ImageURL
	}
	if req.Location != "" {
		car.Location = req.Location
	}
	if req.Seats != 0 {
		car.Seats = req.Seats
	}
	if req.Transmission != "" {
		car.Transmission = req.Transmission
	}
	if req.FuelType != "" {
		car.FuelType = req.FuelType
	}
	if req.Availability != nil {
		car.Availability = *req.Availability
	}

	if err := h.Cars.Update(c.Request().Context(), car); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "car not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to update car"})
	}
	return c.JSON(http.StatusOK, car)
}

// Delete removes a car from the catalog.  Admin only.  Existing bookings
// keep their snapshots and are unaffected.
func (h *CarHandler) Delete(c echo.Context) error {
	if err := h.Cars.Delete(c.Request().Context(), c.Param("id")); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "car not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to delete car"})
	}
	return c.JSON(http.StatusOK, echo.Map{"deleted": true})
}
