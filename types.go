package motoadmin

import (
	"math"
	"strings"
	"time"
)

// User is an account known to the rental API.
type User struct {
	ID         string    `json:"_id"`
	Name       string    `json:"name"`
	Email      string    `json:"email"`
	Role       Role      `json:"role"`
	IsVerified bool      `json:"isVerified"`
	CreatedAt  time.Time `json:"createdAt,omitzero"`
}

// IsAdmin reports whether the user may use the console.
// The API is inconsistent about casing ("admin" vs "Admin").
func (u *User) IsAdmin() bool {
	return u != nil && strings.EqualFold(string(u.Role), string(RoleAdmin))
}

// Motorcycle is a rentable vehicle.
type Motorcycle struct {
	ID          string           `json:"_id"`
	Name        string           `json:"name"`
	Brand       string           `json:"brand"`
	RentPrice   float64          `json:"rentPrice"`
	Status      MotorcycleStatus `json:"status"`
	Description string           `json:"description,omitempty"`
	ImageURL    string           `json:"image,omitempty"`
	CreatedAt   time.Time        `json:"createdAt,omitzero"`
}

// IsAvailable reports whether the motorcycle can be rented.
func (m *Motorcycle) IsAvailable() bool {
	return m.Status == MotorcycleAvailable
}

// Rental is a single rental record as returned by /rentals/all.
type Rental struct {
	ID                string       `json:"_id"`
	UserEmail         string       `json:"userEmail"`
	MotorcycleName    string       `json:"motorcycleName"`
	MotorcycleCompany string       `json:"motorcycleCompany"`
	RentStartDate     time.Time    `json:"rentStartDate"`
	RentEndDate       time.Time    `json:"rentEndDate"`
	Status            RentalStatus `json:"status"`
	TotalCost         float64      `json:"totalCost"`
}

// IsActive reports whether the motorcycle is still out.
func (r *Rental) IsActive() bool {
	return r.Status == RentalActive
}

// DashboardStats is the payload of GET /admin/stats.
type DashboardStats struct {
	TotalUsers       int     `json:"totalUsers"`
	TotalMotorcycles int     `json:"totalMotorcycles"`
	RentedPercentage float64 `json:"rentedPercentage"`
}

// LoginResult is the payload of POST /auth/login.
type LoginResult struct {
	Token string `json:"token"`
	User  *User  `json:"user"`
}

// ListParams selects one page of a server-paginated collection.
type ListParams struct {
	Page   int
	Limit  int
	Search string
}

// normalize applies defaults to zero values.
func (p ListParams) normalize() ListParams {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.Limit < 1 {
		p.Limit = DefaultPageLimit
	}
	p.Search = strings.TrimSpace(p.Search)
	return p
}

// MotorcyclePage is the payload of GET /motorcycles.
type MotorcyclePage struct {
	Motorcycles []*Motorcycle `json:"motorcycles"`
	TotalPages  int           `json:"totalPages"`
}

// UserPage is the payload of GET /users.
type UserPage struct {
	Users      []*User `json:"users"`
	TotalPages int     `json:"totalPages"`
}

// Image is an uploaded motorcycle picture forwarded verbatim to the API.
type Image struct {
	Filename    string
	ContentType string
	Data        []byte
}

// MotorcycleInput is the form sent to add or update a motorcycle.
type MotorcycleInput struct {
	Name        string
	Brand       string
	RentPrice   float64
	Status      MotorcycleStatus
	Description string
	Image       *Image
}

// Validate checks the fields the API requires.
func (in *MotorcycleInput) Validate() error {
	in.Name = strings.TrimSpace(in.Name)
	in.Brand = strings.TrimSpace(in.Brand)
	in.Description = strings.TrimSpace(in.Description)
	if in.Status == "" {
		in.Status = MotorcycleAvailable
	}

	switch {
	case in.Name == "":
		return &ValidationError{Field: "name", Message: "Motorcycle name is required"}
	case in.Brand == "":
		return &ValidationError{Field: "brand", Message: "Brand is required"}
	case math.IsNaN(in.RentPrice) || math.IsInf(in.RentPrice, 0):
		return &ValidationError{Field: "rentPrice", Message: "Rent price must be a number"}
	case in.RentPrice < 0:
		return &ValidationError{Field: "rentPrice", Message: "Rent price must not be negative"}
	case !in.Status.Valid():
		return &ValidationError{Field: "status", Message: "Status must be Available or Rented"}
	}
	if in.Image != nil && len(in.Image.Data) > MaxImageSize {
		return &ValidationError{Field: "image", Message: "Image must be 5 MB or smaller"}
	}
	return nil
}
