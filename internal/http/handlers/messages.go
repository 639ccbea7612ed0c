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

type MessageHandler struct {
	DB  *gorm.DB
	Pub *realtime.Publisher
}

type sendMessageReq struct {
	RecipientID uint   `json:"recipient_id" binding:"required"`
	Body        string `json:"body" binding:"required"`
}

func (h *MessageHandler) Send(c *gin.Context) {
	userID := middleware.MustUserID(c)

	rideID64, _ := strconv.ParseUint(c.Param("id"), 10, 64)
	rideID := uint(rideID64)

	var req sendMessageReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid body", "error": err.Error()})
		return
	}

	var ride models.Ride
	if err := h.DB.First(&ride, rideID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "ride not found"})
		return
	}

	msg := models.Message{
		RideID:      rideID,
		SenderID:    userID,
		RecipientID: req.RecipientID,
		Body:        req.Body,
	}

	if err := h.DB.Create(&msg).Error; err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "failed create message", "error": err.Error()})
		return
	}

	var sender models.User
	if err := h.DB.First(&sender, userID).Error; err == nil {
		h.Pub.MessageSent(msg, sender)
	} else {
		log.Printf("[messages] skip message emit: sender %d lookup failed: %v", userID, err)
	}

	c.JSON(http.StatusCreated, gin.H{"data": msg})
}

func (h *MessageHandler) List(c *gin.Context) {
	rideID64, _ := strconv.ParseUint(c.Param("id"), 10, 64)
	rideID := uint(rideID64)

	limit := 30
	if v := c.Query("limit"); v != "" {
		if x, err := strconv.Atoi(v); err == nil && x > 0 && x <= 200 {
			limit = x
		}
	}

	var msgs []models.Message
	q := h.DB.Where("ride_id = ?", rideID).Order("id desc").Limit(limit)

	if before := c.Query("before_id"); before != "" {
		if bid, err := strconv.ParseUint(before, 10, 64); err == nil {
			q = q.Where("id < ?", bid)
		}
	}

	if err := q.Find(&msgs).Error; err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "failed", "error": err.Error()})
		return
	}

	// Query is newest-first; flip so the UI renders ascending.
	for i, j := 0, len(msgs)-1; i < j; i, j = i+1, j-1 {
		msgs[i], msgs[j] = msgs[j], msgs[i]
	}

	c.JSON(http.StatusOK, gin.H{"data": msgs})
}
