package domain

// Role represents a user's role in the system
type Role string

const (
	RoleUser      Role = "User"
	RoleManager   Role = "Manager"
	RoleAdmin     Role = "Admin"
	RoleSuspended Role = "Suspended"
)

// IsValid reports whether the role belongs to the closed set.
// Free-form role strings are rejected at the store boundary.
func (r Role) IsValid() bool {
	switch r {
	case RoleUser, RoleManager, RoleAdmin, RoleSuspended:
		return true
	}
	return false
}

// ApplicationStatus represents the review state of a loan application
type ApplicationStatus string

const (
	StatusPending  ApplicationStatus = "Pending"
	StatusApproved ApplicationStatus = "Approved"
	StatusRejected ApplicationStatus = "Rejected"
)

// IsValid reports whether the status belongs to the closed set.
func (s ApplicationStatus) IsValid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected:
		return true
	}
	return false
}

// FeeStatus represents the paid/unpaid state of an application's processing
// fee, independent of its review status
type FeeStatus string

const (
	FeeUnpaid FeeStatus = "Unpaid"
	FeePaid   FeeStatus = "Paid"
)
