package models

import (
	"time"

	"github.com/yashrajoria/shopswift/services/common/auth"
)

type Fullname struct {
	FirstName string `json:"firstName" bson:"first_name"`
	LastName  string `json:"lastName" bson:"last_name"`
}

// Address is embedded in the user document and addressed by ID.
type Address struct {
	ID      string `json:"id" bson:"_id"`
	Street  string `json:"street" bson:"street"`
	City    string `json:"city" bson:"city"`
	State   string `json:"state" bson:"state"`
	Pincode string `json:"pincode" bson:"pincode"`
	Country string `json:"country" bson:"country"`
}

type User struct {
	ID        string    `json:"id" bson:"_id"`
	Username  string    `json:"username" bson:"username"`
	Email     string    `json:"email" bson:"email"`
	Password  string    `json:"-" bson:"password"`
	Fullname  Fullname  `json:"fullname" bson:"fullname"`
	Role      string    `json:"role" bson:"role"`
	Addresses []Address `json:"addresses" bson:"addresses"`
	CreatedAt time.Time `json:"createdAt" bson:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" bson:"updated_at"`
}

// Identity is the token payload for this user.
func (u *User) Identity() auth.Identity {
	return auth.Identity{
		ID:       u.ID,
		Username: u.Username,
		Email:    u.Email,
		Role:     u.Role,
	}
}
