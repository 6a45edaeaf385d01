package domain

import "time"

// PlanTier enumerates the membership tiers that gate study content.
type PlanTier string

const (
	PlanStartup     PlanTier = "Startup"
	PlanGrowthStage PlanTier = "GrowthStage"
	PlanMatureStage PlanTier = "MatureStage"
)

// ValidPlanTier reports whether t is one of the known tiers.
func ValidPlanTier(t PlanTier) bool {
	switch t {
	case PlanStartup, PlanGrowthStage, PlanMatureStage:
		return true
	}
	return false
}

// ContentType enumerates the supported study-material formats.
type ContentType string

const (
	ContentVideo ContentType = "video"
	ContentPDF   ContentType = "pdf"
)

// Content is a single study item inside a service's tier list.
type Content struct {
	ID         string      `json:"id"`
	Title      string      `json:"title"`
	Type       ContentType `json:"type"`
	URL        string      `json:"url"`
	StorageKey string      `json:"storage_key,omitempty"`
	UploadedAt time.Time   `json:"uploaded_at"`
}

// PlanContents holds the three parallel content lists of a service,
// one per plan tier. A content item belongs to exactly one (service, tier)
// pair; visibility is decided by the viewer's active plan.
type PlanContents struct {
	Startup     []Content `json:"Startup"`
	GrowthStage []Content `json:"GrowthStage"`
	MatureStage []Content `json:"MatureStage"`
}

// ForTier returns the content list for the given tier.
func (pc PlanContents) ForTier(t PlanTier) []Content {
	switch t {
	case PlanStartup:
		return pc.Startup
	case PlanGrowthStage:
		return pc.GrowthStage
	case PlanMatureStage:
		return pc.MatureStage
	}
	return nil
}

// Append adds an item to the given tier's list.
func (pc *PlanContents) Append(t PlanTier, c Content) {
	switch t {
	case PlanStartup:
		pc.Startup = append(pc.Startup, c)
	case PlanGrowthStage:
		pc.GrowthStage = append(pc.GrowthStage, c)
	case PlanMatureStage:
		pc.MatureStage = append(pc.MatureStage, c)
	}
}

// Service is a catalog entry owning its tiered content lists.
type Service struct {
	ID           string
	Name         string
	Description  string
	PlanContents PlanContents
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
