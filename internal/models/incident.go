package models

type Incident struct {
	ID          string `gorm:"primaryKey;size:20" json:"id"`
	Title       string `gorm:"not null;size:50;default:N/A" json:"title"`
	Description string `gorm:"not null;size:100;default:N/A" json:"description"`
	Status      string `gorm:"not null;size:10;default:N/A" json:"status"`
	URL         string `gorm:"not null;size:100;default:#" json:"url"`

	// Relationships
	ServiceID          *string  `gorm:"size:20;index" json:"service_id"`
	Service            *Service `gorm:"foreignKey:ServiceID" json:"service,omitempty"`
	EscalationPolicyID *string  `gorm:"size:20" json:"escalation_policy_id"`
}
