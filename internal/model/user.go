package model

import "time"

// Role of a user account
type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
)

// Gender values stored on user records
const (
	GenderMale   = "male"
	GenderFemale = "female"
)

// User represents a customer or administrator. The ID is issued by the
// identity provider, not by this service.
type User struct {
	ID        string    `json:"_id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Photo     string    `json:"photo"`
	Gender    string    `json:"gender"`
	Role      Role      `json:"role"`
	DOB       time.Time `json:"dob"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Age returns the user's age in whole years at now.
func (u *User) Age(now time.Time) int {
	age := now.Year() - u.DOB.Year()
	if now.Month() < u.DOB.Month() || (now.Month() == u.DOB.Month() && now.Day() < u.DOB.Day()) {
		age--
	}
	return age
}
