package model

const (
	PoolUser  = "user"
	PoolAdmin = "admin"
)

const (
	StatusPending  = "pending"
	StatusActive   = "active"
	StatusInactive = "inactive"
)

const (
	StateNormal  = 1
	StateDeleted = 2
)

// Account is the single credential entity for both pools. Role is only set for
// admin-pool rows. OtpCode and OtpExpiresAt are set and cleared together.
type Account struct {
	ID            string  `json:"id"`
	Pool          string  `json:"-"`
	Name          string  `json:"name"`
	Email         string  `json:"email"`
	PasswordHash  string  `json:"-"`
	Phone         *string `json:"phone,omitempty"`
	Address       *string `json:"address,omitempty"`
	Image         *string `json:"image,omitempty"`
	Role          *string `json:"role,omitempty"`
	OtpCode       *int    `json:"-"`
	OtpExpiresAt  *int64  `json:"-"`
	IsOtpVerified bool    `json:"is_otp_verified"`
	Status        string  `json:"status"`
	State         int     `json:"-"`
	Ctime         int64   `json:"created_at"`
	Mtime         int64   `json:"updated_at"`
}
