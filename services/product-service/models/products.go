package models

import "time"

type Product struct {
	ID          string    `json:"id" bson:"_id"`
	Name        string    `json:"name" bson:"name"`
	Description string    `json:"description" bson:"description"`
	Price       float64   `json:"price" bson:"price"`
	Category    string    `json:"category" bson:"category"`
	Stock       int       `json:"stock" bson:"stock"`
	Images      []string  `json:"images" bson:"images"`
	Seller      string    `json:"seller" bson:"seller"`
	CreatedAt   time.Time `json:"createdAt" bson:"created_at"`
	UpdatedAt   time.Time `json:"updatedAt" bson:"updated_at"`
}

// ProductUpdate carries the owner-editable fields; nil means unchanged.
type ProductUpdate struct {
	Name        *string   `json:"name" binding:"omitempty,min=1,max=200"`
	Description *string   `json:"description" binding:"omitempty,max=5000"`
	Price       *float64  `json:"price" binding:"omitempty,gte=0"`
	Category    *string   `json:"category" binding:"omitempty,min=1,max=100"`
	Stock       *int      `json:"stock" binding:"omitempty,gte=0"`
	Images      *[]string `json:"images"`
}

func (u ProductUpdate) Empty() bool {
	return u.Name == nil && u.Description == nil && u.Price == nil &&
		u.Category == nil && u.Stock == nil && u.Images == nil
}
