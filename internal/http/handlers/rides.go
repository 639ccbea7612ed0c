package handlers

import (
	"log"
	"net/http"
	"time"

	"carpool-be/internal/http/middleware"
	"carpool-be/internal/models"
	"carpool-be/internal/realtime"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type RideHandler struct {
	DB  *gorm.DB
	Pub *realtime.Publisher
}

type createRideReq struct {
	Origin      string    `json:"origin" binding:"required"`
	Destination string    `json:"destination" binding:"required"`
	DepartAt    time.Time `json:"depart_at" binding:"required"`
	Seats       int       `json:"seats" binding:"required,min=1,max=8"`
	Price       float64   `json:"price" binding:"min=0"`
}

func (h *RideHandler) Create(c *gin.Context) {
	userID := middleware.MustUserID(c)

	var req createRideReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid body", "error": err.Error()})
		return
	}

	ride := models.Ride{
		DriverID:    userID,
		Origin:      req.Origin,
		Destination: req.Destination,
		DepartAt:    req.DepartAt,
		Seats:       req.Seats,
		Price:       req.Price,
	}

	if err := h.DB.Create(&ride).Error; err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "failed create ride", "error": err.Error()})
		return
	}

	// Announce after commit. Delivery is best effort and must not affect
	// the response.
	var driver models.User
	if err := h.DB.First(&driver, userID).Error; err == nil {
		h.Pub.RideCreated(ride, driver)
	} else {
		log.Printf("[rides] skip new-ride emit: driver %d lookup failed: %v", userID, err)
	}

	c.JSON(http.StatusCreated, gin.H{"data": ride})
}

func (h *RideHandler) List(c *gin.Context) {
	var rides []models.Ride
	q := h.DB.Where("depart_at > ?", time.Now()).Order("depart_at asc").Limit(50)

	if from := c.Query("origin"); from != "" {
		q = q.Where("origin = ?", from)
	}
	if to := c.Query("destination"); to != "" {
		q = q.Where("destination = ?", to)
	}

	if err := q.Find(&rides).Error; err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "failed", "error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": rides})
}
