package domain

import "time"

// ReferralStatus is the tri-state lifecycle of a referral, settable only by
// admins.
type ReferralStatus string

const (
	ReferralPending  ReferralStatus = "Pending"
	ReferralApproved ReferralStatus = "Approved"
	ReferralRejected ReferralStatus = "Rejected"
)

// ValidReferralStatus reports whether s is a known status.
func ValidReferralStatus(s ReferralStatus) bool {
	switch s {
	case ReferralPending, ReferralApproved, ReferralRejected:
		return true
	}
	return false
}

// Enquiry is a free-text contact request owned by a user.
type Enquiry struct {
	ID          string
	UserID      string
	Name        string
	Phone       string
	Description string
	CreatedAt   time.Time
}

// Referral is a lead submitted by a user on behalf of another business.
type Referral struct {
	ID            string
	UserID        string
	Name          string
	ContactNumber string
	CompanyName   string
	Email         string
	Status        ReferralStatus
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// ContentRequestItem is one requested service/content pair.
type ContentRequestItem struct {
	Service string `json:"service"`
	Content string `json:"content"`
}

// ContentRequest is a user's wish list of study materials not yet in the
// catalog.
type ContentRequest struct {
	ID        string
	UserID    string
	Requests  []ContentRequestItem
	CreatedAt time.Time
}
