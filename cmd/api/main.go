package main

import (
	"fmt"
	"log"

	"carpool-be/internal/config"
	"carpool-be/internal/database"
	"carpool-be/internal/http/handlers"
	"carpool-be/internal/http/middleware"
	"carpool-be/internal/models"
	"carpool-be/internal/realtime"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	if cfg.DBDSN == "" || cfg.JWTSecret == "" {
		log.Fatal("DB_DSN and JWT_SECRET must be set")
	}

	db, err := database.ConnectMySQL(cfg.DBDSN)
	if err != nil {
		log.Fatal("failed connect db:", err)
	}

	// Auto-migrate tables
	if err := db.AutoMigrate(
		&models.User{},
		&models.Ride{},
		&models.Booking{},
		&models.Message{},
		&models.Rating{},
	); err != nil {
		log.Fatal("failed migrate:", err)
	}

	// One hub per process, constructed here and passed down. The publisher
	// refuses a nil hub, so a wiring mistake fails at startup.
	hub := realtime.NewHub()
	pub := realtime.NewPublisher(hub)

	r := gin.Default()

	// Auth
	authH := &handlers.AuthHandler{DB: db, JWTSecret: cfg.JWTSecret}
	r.POST("/api/v1/auth/register", authH.Register)
	r.POST("/api/v1/auth/login", authH.Login)

	// WebSocket endpoint
	wsH := &handlers.WSHandler{
		Hub:                  hub,
		DB:                   db,
		JWTSecret:            cfg.JWTSecret,
		WSInsecureSkipVerify: cfg.WSInsecureSkipVerify,
	}
	r.GET("/ws", wsH.Handle)

	// Protected routes
	authed := r.Group("/api/v1")
	authed.Use(middleware.AuthMiddleware(cfg.JWTSecret))

	rideH := &handlers.RideHandler{DB: db, Pub: pub}
	authed.POST("/rides", rideH.Create)
	authed.GET("/rides", rideH.List)

	bookingH := &handlers.BookingHandler{DB: db, Pub: pub}
	authed.POST("/bookings", bookingH.Create)
	authed.PATCH("/bookings/:id", bookingH.UpdateStatus)
	authed.GET("/bookings", bookingH.ListMine)
	authed.GET("/rides/:id/bookings", bookingH.ListForRide)

	msgH := &handlers.MessageHandler{DB: db, Pub: pub}
	authed.POST("/rides/:id/messages", msgH.Send)
	authed.GET("/rides/:id/messages", msgH.List)

	ratingH := &handlers.RatingHandler{DB: db, Pub: pub}
	authed.POST("/rides/:id/ratings", ratingH.Create)
	authed.GET("/users/:id/ratings", ratingH.ListForUser)

	addr := fmt.Sprintf(":%d", cfg.Port)
	log.Println("listening on", addr)
	log.Fatal(r.Run(addr))
}
