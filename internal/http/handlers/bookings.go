package handlers

import (
	"log"
	"net/http"
	"strconv"

	"carpool-be/internal/http/middleware"
	"carpool-be/internal/models"
	"carpool-be/internal/realtime"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type BookingHandler struct {
	DB  *gorm.DB
	Pub *realtime.Publisher
}

type createBookingReq struct {
	RideID uint `json:"ride_id" binding:"required"`
	Seats  int  `json:"seats" binding:"required,min=1"`
}

func (h *BookingHandler) Create(c *gin.Context) {
	userID := middleware.MustUserID(c)

	var req createBookingReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid body", "error": err.Error()})
		return
	}

	var ride models.Ride
	if err := h.DB.First(&ride, req.RideID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "ride not found"})
		return
	}

	if ride.DriverID == userID {
		c.JSON(http.StatusBadRequest, gin.H{"message": "cannot book your own ride"})
		return
	}

	booking := models.Booking{
		RideID:      ride.ID,
		PassengerID: userID,
		Seats:       req.Seats,
		Status:      models.BookingRequested,
	}

	if err := h.DB.Create(&booking).Error; err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "failed create booking", "error": err.Error()})
		return
	}

	// The ride owner hears about the request on their identity room only.
	var passenger models.User
	if err := h.DB.First(&passenger, userID).Error; err == nil {
		h.Pub.BookingRequested(booking, ride, passenger)
	} else {
		log.Printf("[bookings] skip booking-request emit: passenger %d lookup failed: %v", userID, err)
	}

	c.JSON(http.StatusCreated, gin.H{"data": booking})
}

type updateBookingReq struct {
	Status string `json:"status" binding:"required,oneof=approved rejected"`
}

// UpdateStatus lets the ride owner approve or reject a request. The decision
// is pushed to the passenger's identity room.
func (h *BookingHandler) UpdateStatus(c *gin.Context) {
	userID := middleware.MustUserID(c)

	bookingID64, _ := strconv.ParseUint(c.Param("id"), 10, 64)
	bookingID := uint(bookingID64)

	var req updateBookingReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid body", "error": err.Error()})
		return
	}

	var booking models.Booking
	if err := h.DB.First(&booking, bookingID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "booking not found"})
		return
	}

	var ride models.Ride
	if err := h.DB.First(&ride, booking.RideID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "ride not found"})
		return
	}

	if ride.DriverID != userID {
		c.JSON(http.StatusForbidden, gin.H{"message": "only the ride owner can decide"})
		return
	}

	booking.Status = req.Status
	if err := h.DB.Save(&booking).Error; err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "failed update booking", "error": err.Error()})
		return
	}

	h.Pub.BookingStatusChanged(booking, ride)

	c.JSON(http.StatusOK, gin.H{"data": booking})
}

func (h *BookingHandler) ListMine(c *gin.Context) {
	userID := middleware.MustUserID(c)

	var bookings []models.Booking
	if err := h.DB.Where("passenger_id = ?", userID).Order("created_at desc").Find(&bookings).Error; err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "failed", "error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": bookings})
}

// ListForRide returns the requests on a ride the caller owns.
func (h *BookingHandler) ListForRide(c *gin.Context) {
	userID := middleware.MustUserID(c)

	rideID64, _ := strconv.ParseUint(c.Param("id"), 10, 64)

	var ride models.Ride
	if err := h.DB.First(&ride, uint(rideID64)).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "ride not found"})
		return
	}
	if ride.DriverID != userID {
		c.JSON(http.StatusForbidden, gin.H{"message": "not your ride"})
		return
	}

	var bookings []models.Booking
	if err := h.DB.Where("ride_id = ?", ride.ID).Order("created_at asc").Find(&bookings).Error; err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "failed", "error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": bookings})
}
