package motoadmin

import "time"

// Version is the current motoadmin version
const Version = "1.0.0"

// Client defaults.
const (
	// DefaultBaseURL is the rental API root used when ClientConfig.BaseURL is empty.
	DefaultBaseURL = "http://localhost:5000/api"

	// DefaultTimeout bounds a single API round trip.
	DefaultTimeout = 10 * time.Second

	// DefaultPageLimit is the page size requested from paginated endpoints.
	DefaultPageLimit = 5

	// MaxImageSize is the largest motorcycle image forwarded to the API.
	MaxImageSize = 5 << 20
)

// Role is the role attached to an API user.
type Role string

const (
	// RoleAdmin is the only role allowed into the console.
	RoleAdmin Role = "admin"

	// RoleUser is a regular renter.
	RoleUser Role = "user"
)

// String returns the string representation of the role.
func (r Role) String() string {
	return string(r)
}

// MotorcycleStatus is the availability of a motorcycle.
type MotorcycleStatus string

const (
	MotorcycleAvailable MotorcycleStatus = "Available"
	MotorcycleRented    MotorcycleStatus = "Rented"
)

// Valid reports whether s is one of the statuses the API accepts.
func (s MotorcycleStatus) Valid() bool {
	return s == MotorcycleAvailable || s == MotorcycleRented
}

// String returns the string representation of the status.
func (s MotorcycleStatus) String() string {
	return string(s)
}

// RentalStatus is the lifecycle state of a rental record.
type RentalStatus string

const (
	// RentalActive marks a rental whose motorcycle has not been returned.
	RentalActive RentalStatus = "Rented"

	// RentalReturned marks a closed rental.
	RentalReturned RentalStatus = "Returned"
)

// String returns the string representation of the rental status.
func (s RentalStatus) String() string {
	return string(s)
}
