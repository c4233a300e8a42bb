package models

type Service struct {
	ID          string `gorm:"primaryKey;size:20" json:"id"`
	Name        string `gorm:"not null;size:40" json:"name"`
	Description string `gorm:"not null;size:250;default:N/A" json:"description"`
	Status      string `gorm:"not null;size:10;default:N/A" json:"status"`
	URL         string `gorm:"not null;size:100;default:#" json:"url"`

	// Relationships
	EscalationPolicyID *string           `gorm:"size:20" json:"escalation_policy_id"`
	EscalationPolicy   *EscalationPolicy `gorm:"foreignKey:EscalationPolicyID" json:"escalation_policy,omitempty"`
	Incidents          []Incident        `gorm:"foreignKey:ServiceID" json:"incidents,omitempty"`
	Teams              []Team            `gorm:"many2many:service_teams" json:"teams,omitempty"`
}
