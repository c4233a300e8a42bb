package sync

import (
	"errors"
	"fmt"

	"github.com/pulseboard-dev/pulseboard/internal/models"
	"github.com/pulseboard-dev/pulseboard/internal/pagerduty"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// store writes one normalized batch per entity type. Each batch runs inside a
// single transaction, so a failure rolls the whole batch back; batches already
// committed for earlier types in the pass stand.
type store struct {
	db *gorm.DB
}

func (s store) upsertTeams(raws []pagerduty.RawTeam) (int, error) {
	teams := make([]models.Team, 0, len(raws))

	for _, raw := range raws {
		team, err := normalizeTeam(raw)

		if err != nil {
			return 0, err
		}

		teams = append(teams, team)
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		for i := range teams {
			if err := upsert(tx, &teams[i]); err != nil {
				return err
			}
		}

		return nil
	})

	if err != nil {
		return 0, fmt.Errorf("store teams: %w", err)
	}

	return len(teams), nil
}

func (s store) upsertEscalationPolicies(raws []pagerduty.RawEscalationPolicy) (int, error) {
	err := s.db.Transaction(func(tx *gorm.DB) error {
		for _, raw := range raws {
			policy, err := normalizeEscalationPolicy(raw)

			if err != nil {
				return err
			}

			if err := upsert(tx, &policy); err != nil {
				return err
			}

			if err := linkTeams(tx, &policy, raw.Teams); err != nil {
				return err
			}
		}

		return nil
	})

	if err != nil {
		return 0, fmt.Errorf("store escalation policies: %w", err)
	}

	return len(raws), nil
}

func (s store) upsertServices(raws []pagerduty.RawService) (int, error) {
	err := s.db.Transaction(func(tx *gorm.DB) error {
		for _, raw := range raws {
			service, err := normalizeService(raw)

			if err != nil {
				return err
			}

			if err := upsert(tx, &service); err != nil {
				return err
			}

			if err := linkTeams(tx, &service, raw.Teams); err != nil {
				return err
			}
		}

		return nil
	})

	if err != nil {
		return 0, fmt.Errorf("store services: %w", err)
	}

	return len(raws), nil
}

func (s store) upsertIncidents(raws []pagerduty.RawIncident) (int, error) {
	incidents := make([]models.Incident, 0, len(raws))

	for _, raw := range raws {
		incident, err := normalizeIncident(raw)

		if err != nil {
			return 0, err
		}

		incidents = append(incidents, incident)
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		for i := range incidents {
			if err := upsert(tx, &incidents[i]); err != nil {
				return err
			}
		}

		return nil
	})

	if err != nil {
		return 0, fmt.Errorf("store incidents: %w", err)
	}

	return len(incidents), nil
}

// upsert inserts the entity or, when a row with the same id exists, overwrites
// its non-key columns.
func upsert(tx *gorm.DB, entity interface{}) error {
	return tx.Clauses(clause.OnConflict{UpdateAll: true}).Create(entity).Error
}

// linkTeams replaces the entity's team associations with the teams referenced
// in the raw payload. References to ids not present in the teams table are
// skipped: referential completeness of the snapshot is best effort.
func linkTeams(tx *gorm.DB, entity interface{}, refs []pagerduty.Ref) error {
	teams := make([]models.Team, 0, len(refs))

	for _, ref := range refs {
		var team models.Team

		err := tx.First(&team, "id = ?", ref.ID).Error

		if errors.Is(err, gorm.ErrRecordNotFound) {
			continue
		}

		if err != nil {
			return err
		}

		teams = append(teams, team)
	}

	return tx.Model(entity).Association("Teams").Replace(teams)
}
