package models

type EscalationPolicy struct {
	ID   string `gorm:"primaryKey;size:20" json:"id"`
	Name string `gorm:"not null;size:40" json:"name"`
	URL  string `gorm:"not null;size:100;default:#" json:"url"`

	// Relationships
	Services  []Service  `gorm:"foreignKey:EscalationPolicyID" json:"services,omitempty"`
	Incidents []Incident `gorm:"foreignKey:EscalationPolicyID" json:"incidents,omitempty"`
	Teams     []Team     `gorm:"many2many:escalation_policy_teams" json:"teams,omitempty"`
}
