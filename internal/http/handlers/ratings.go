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

type RatingHandler struct {
	DB  *gorm.DB
	Pub *realtime.Publisher
}

type createRatingReq struct {
	Stars   int    `json:"stars" binding:"required,min=1,max=5"`
	Comment string `json:"comment" binding:"max=500"`
}

// Create rates the driver of a ride the caller rode on.
func (h *RatingHandler) Create(c *gin.Context) {
	userID := middleware.MustUserID(c)

	rideID64, _ := strconv.ParseUint(c.Param("id"), 10, 64)

	var req createRatingReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid body", "error": err.Error()})
		return
	}

	var ride models.Ride
	if err := h.DB.First(&ride, uint(rideID64)).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "ride not found"})
		return
	}

	if ride.DriverID == userID {
		c.JSON(http.StatusBadRequest, gin.H{"message": "cannot rate yourself"})
		return
	}

	rating := models.Rating{
		RideID:  ride.ID,
		RaterID: userID,
		RateeID: ride.DriverID,
		Stars:   req.Stars,
		Comment: req.Comment,
	}

	if err := h.DB.Create(&rating).Error; err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "failed create rating", "error": err.Error()})
		return
	}

	var rater models.User
	if err := h.DB.First(&rater, userID).Error; err == nil {
		h.Pub.RatingReceived(rating, rater)
	} else {
		log.Printf("[ratings] skip rating emit: rater %d lookup failed: %v", userID, err)
	}

	c.JSON(http.StatusCreated, gin.H{"data": rating})
}

// ListForUser returns ratings received by a user.
func (h *RatingHandler) ListForUser(c *gin.Context) {
	userID64, _ := strconv.ParseUint(c.Param("id"), 10, 64)

	var ratings []models.Rating
	if err := h.DB.Where("ratee_id = ?", uint(userID64)).Order("created_at desc").Find(&ratings).Error; err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "failed", "error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": ratings})
}
