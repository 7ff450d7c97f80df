package models

import "time"

// Tour is a bookable catalog entry. Price is stored in minor units
// (cents) so checkout amounts never go through floats.
type Tour struct {
	TourID      string    `json:"tourId" bson:"tourid"`
	Name        string    `json:"name" bson:"name"`
	Description string    `json:"description,omitempty" bson:"description,omitempty"`
	Location    string    `json:"location,omitempty" bson:"location,omitempty"`
	Difficulty  string    `json:"difficulty,omitempty" bson:"difficulty,omitempty"`
	Price       int64     `json:"price" bson:"price"`
	Currency    string    `json:"currency" bson:"currency"`
	MaxGroup    int       `json:"maxGroup,omitempty" bson:"max_group,omitempty"`
	Banner      string    `json:"banner,omitempty" bson:"banner,omitempty"`
	CreatedBy   string    `json:"createdBy" bson:"created_by"`
	CreatedAt   time.Time `json:"createdAt" bson:"created_at"`
	UpdatedAt   time.Time `json:"updatedAt" bson:"updated_at"`
}

// Review is a per-tour rating left by a user who booked it.
type Review struct {
	ReviewID string    `json:"reviewId" bson:"reviewid"`
	TourID   string    `json:"tourId" bson:"tourid"`
	UserID   string    `json:"userId" bson:"userid"`
	Rating   int       `json:"rating" bson:"rating"`
	Comment  string    `json:"comment" bson:"comment"`
	Date     time.Time `json:"date" bson:"date"`
}
