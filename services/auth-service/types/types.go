package types

type FullnameRequest struct {
	FirstName string `json:"firstName" binding:"required,min=1,max=50"`
	LastName  string `json:"lastName" binding:"required,min=1,max=50"`
}

type RegisterRequest struct {
	Username string          `json:"username" binding:"required,username"`
	Email    string          `json:"email" binding:"required,email"`
	Password string          `json:"password" binding:"required,strongpassword"`
	Fullname FullnameRequest `json:"fullname"`
	Role     string          `json:"role" binding:"omitempty,oneof=user seller"`
}

// LoginRequest accepts either an email or a username.
type LoginRequest struct {
	Email    string `json:"email" binding:"omitempty,email"`
	Username string `json:"username"`
	Password string `json:"password" binding:"required"`
}

type AddressRequest struct {
	Street  string `json:"street" binding:"required"`
	City    string `json:"city" binding:"required"`
	State   string `json:"state" binding:"required"`
	Pincode string `json:"pincode" binding:"required"`
	Country string `json:"country" binding:"required"`
}
