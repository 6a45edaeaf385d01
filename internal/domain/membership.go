package domain

import "time"

// Membership is a purchasable plan definition. Static reference data,
// managed by admins.
type Membership struct {
	ID                string
	PlanName          PlanTier
	Price             float64
	Description       string
	ValidityDays      int
	AllowedServiceIDs []string
	CreatedAt         time.Time
}

// AllowsService reports whether the plan grants access to a service.
func (m Membership) AllowsService(serviceID string) bool {
	for _, id := range m.AllowedServiceIDs {
		if id == serviceID {
			return true
		}
	}
	return false
}

// ValidUntil computes the expiry for an assignment made at now. Assigning
// twice simply resets the window; there is no proration.
func (m Membership) ValidUntil(now time.Time) time.Time {
	return now.AddDate(0, 0, m.ValidityDays)
}

// BenefitPlan is one column header of the marketing benefit matrix.
type BenefitPlan struct {
	Name  string `json:"name"`
	Price string `json:"price"`
}

// BenefitRow is one row of the matrix: a benefit name with one value per
// plan, plus an optional link.
type BenefitRow struct {
	Name   string   `json:"name"`
	Values []string `json:"values"`
	Link   string   `json:"link,omitempty"`
}

// BenefitMatrix is the single denormalized plan-vs-benefit grid shown on the
// pricing page. It is deliberately independent of Membership/Service records
// and can drift from them.
type BenefitMatrix struct {
	Plans     []BenefitPlan `json:"plans"`
	Benefits  []BenefitRow  `json:"benefits"`
	UpdatedAt time.Time     `json:"updatedAt"`
}
