package models

import "time"

type User struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Name         string    `gorm:"size:120;not null" json:"name"`
	Email        string    `gorm:"size:190;uniqueIndex;not null" json:"email"`
	PasswordHash string    `gorm:"size:255;not null" json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type Ride struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	DriverID    uint      `gorm:"index;not null" json:"driver_id"`
	Origin      string    `gorm:"size:190;not null" json:"origin"`
	Destination string    `gorm:"size:190;not null" json:"destination"`
	DepartAt    time.Time `gorm:"index;not null" json:"depart_at"`
	Seats       int       `gorm:"not null" json:"seats"`
	Price       float64   `gorm:"not null" json:"price"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Booking status values. A booking stays requested until the driver decides.
const (
	BookingRequested = "requested"
	BookingApproved  = "approved"
	BookingRejected  = "rejected"
)

type Booking struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	RideID      uint      `gorm:"index;not null" json:"ride_id"`
	PassengerID uint      `gorm:"index;not null" json:"passenger_id"`
	Seats       int       `gorm:"not null" json:"seats"`
	Status      string    `gorm:"size:20;not null" json:"status"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type Message struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	RideID      uint      `gorm:"index;not null" json:"ride_id"`
	SenderID    uint      `gorm:"index;not null" json:"sender_id"`
	RecipientID uint      `gorm:"index;not null" json:"recipient_id"`
	Body        string    `gorm:"type:text;not null" json:"body"`
	CreatedAt   time.Time `gorm:"index" json:"created_at"`
}

type Rating struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	RideID    uint      `gorm:"index;not null" json:"ride_id"`
	RaterID   uint      `gorm:"index;not null" json:"rater_id"`
	RateeID   uint      `gorm:"index;not null" json:"ratee_id"`
	Stars     int       `gorm:"not null" json:"stars"`
	Comment   string    `gorm:"size:500" json:"comment"`
	CreatedAt time.Time `json:"created_at"`
}
