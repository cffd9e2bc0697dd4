package domain

import "time"

// Organization plans. Every self-registered user starts on the free plan.
const (
	PlanFree = "FREE"
	PlanPro  = "PRO"
)

// Membership roles within an organization.
const (
	RoleOwner  = "OWNER"
	RoleAdmin  = "ADMIN"
	RoleMember = "MEMBER"
)

type Organization struct {
	ID        string
	Name      string
	OwnerID   string // Foreign key to users table
	Plan      string
	CreatedAt time.Time
	UpdatedAt time.Time
}

type OrgMember struct {
	UserID    string
	OrgID     string
	Role      string
	CreatedAt time.Time
}
