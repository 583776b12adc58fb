package employee

import (
	"time"
)

// Employee is the read-only view of an employee the attendance service needs.
// The employee lifecycle itself is owned elsewhere.
type Employee struct {
	ID               string
	FullName         string
	Designation      *string
	PhoneNumber      *string
	Branch           string
	EmploymentStatus EmploymentStatus
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

type EmploymentStatus string

const (
	EmploymentStatusActive   EmploymentStatus = "active"
	EmploymentStatusInactive EmploymentStatus = "inactive"
)
