package sync

import (
	"fmt"

	"github.com/pulseboard-dev/pulseboard/internal/models"
	"github.com/pulseboard-dev/pulseboard/internal/pagerduty"
)

// Field defaults for absent or null payload values.
const (
	defaultText = "N/A"
	defaultURL  = "#"
)

// The normalizers are pure raw-record to entity mappings. A record without an
// id cannot be keyed and fails the whole pass: skipping it silently would make
// successive snapshots disagree about counts for the same remote state.

func normalizeTeam(raw pagerduty.RawTeam) (models.Team, error) {
	if raw.ID == "" {
		return models.Team{}, fmt.Errorf("team record has no id")
	}

	return models.Team{
		ID:   raw.ID,
		Name: orDefault(raw.Name, defaultText),
		URL:  orDefault(raw.HTMLURL, defaultURL),
	}, nil
}

func normalizeEscalationPolicy(raw pagerduty.RawEscalationPolicy) (models.EscalationPolicy, error) {
	if raw.ID == "" {
		return models.EscalationPolicy{}, fmt.Errorf("escalation policy record has no id")
	}

	return models.EscalationPolicy{
		ID:   raw.ID,
		Name: orDefault(raw.Name, defaultText),
		URL:  orDefault(raw.HTMLURL, defaultURL),
	}, nil
}

func normalizeService(raw pagerduty.RawService) (models.Service, error) {
	if raw.ID == "" {
		return models.Service{}, fmt.Errorf("service record has no id")
	}

	return models.Service{
		ID:                 raw.ID,
		Name:               orDefault(raw.Name, defaultText),
		Description:        orDefault(raw.Description, defaultText),
		Status:             orDefault(raw.Status, defaultText),
		URL:                orDefault(raw.HTMLURL, defaultURL),
		EscalationPolicyID: refID(raw.EscalationPolicy),
	}, nil
}

func normalizeIncident(raw pagerduty.RawIncident) (models.Incident, error) {
	if raw.ID == "" {
		return models.Incident{}, fmt.Errorf("incident record has no id")
	}

	return models.Incident{
		ID:                 raw.ID,
		Title:              orDefault(raw.Title, defaultText),
		Description:        orDefault(raw.Description, defaultText),
		Status:             orDefault(raw.Status, defaultText),
		URL:                orDefault(raw.HTMLURL, defaultURL),
		ServiceID:          refID(raw.Service),
		EscalationPolicyID: refID(raw.EscalationPolicy),
	}, nil
}

func orDefault(value *string, fallback string) string {
	if value == nil {
		return fallback
	}

	return *value
}

// refID reads the id out of a nested reference object. A missing reference or
// a reference without an id yields a null foreign key, not an error.
func refID(ref *pagerduty.Ref) *string {
	if ref == nil || ref.ID == "" {
		return nil
	}

	id := ref.ID
	return &id
}
