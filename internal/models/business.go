package models

import "time"

// Business represents one listed business (MongoDB)
type Business struct {
	ID         string    `json:"id" bson:"_id"`
	Name       string    `json:"name" bson:"name"`
	Street     string    `json:"street,omitempty" bson:"street,omitempty"`
	City       string    `json:"city" bson:"city"`
	State      string    `json:"state" bson:"state"`
	PostalCode string    `json:"postal_code,omitempty" bson:"postal_code,omitempty"`
	CreatedAt  time.Time `json:"created_at" bson:"created_at"`
}

// CreateBusinessRequest defines the request body for listing a business
type CreateBusinessRequest struct {
	Name       string `json:"name" validate:"required,min=2,max=120"`
	Street     string `json:"street,omitempty" validate:"omitempty,max=120"`
	City       string `json:"city" validate:"required,min=2,max=80"`
	State      string `json:"state" validate:"required,min=2,max=40"`
	PostalCode string `json:"postal_code,omitempty" validate:"omitempty,max=12"`
}
