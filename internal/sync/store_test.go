package sync

import (
	"testing"

	"github.com/pulseboard-dev/pulseboard/db"
	"github.com/pulseboard-dev/pulseboard/internal/models"
	"github.com/pulseboard-dev/pulseboard/internal/pagerduty"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newTestDB opens an isolated in-memory store with foreign keys enforced, so
// a write that violates referential integrity fails the way it would against
// the production schema. The pool is pinned to one connection so every query
// sees the same sqlite database.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	conn, err := gorm.Open(sqlite.Open("file::memory:?_foreign_keys=on"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := conn.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.MigrateDatabase(conn))

	t.Cleanup(func() { sqlDB.Close() })

	return conn
}

func TestUpsertTeamsInsertsAndUpdates(t *testing.T) {
	conn := newTestDB(t)
	st := store{db: conn}

	count, err := st.upsertTeams([]pagerduty.RawTeam{
		{ID: "T1", Name: strptr("Infra")},
		{ID: "T2", Name: strptr("Platform")},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	// Same id again with a new name must overwrite, not duplicate.
	_, err = st.upsertTeams([]pagerduty.RawTeam{{ID: "T1", Name: strptr("Infrastructure")}})
	require.NoError(t, err)

	var teams []models.Team
	require.NoError(t, conn.Order("id").Find(&teams).Error)
	require.Len(t, teams, 2)
	assert.Equal(t, "Infrastructure", teams[0].Name)
	assert.Equal(t, "Platform", teams[1].Name)
}

func TestUpsertTeamsMissingIDAbortsBatch(t *testing.T) {
	conn := newTestDB(t)
	st := store{db: conn}

	_, err := st.upsertTeams([]pagerduty.RawTeam{
		{ID: "T1", Name: strptr("Infra")},
		{Name: strptr("no id")},
	})
	require.Error(t, err)

	var count int64
	require.NoError(t, conn.Model(&models.Team{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestUpsertServicesMissingIDRollsBackBatch(t *testing.T) {
	conn := newTestDB(t)
	st := store{db: conn}

	_, err := st.upsertServices([]pagerduty.RawService{
		{ID: "S1", Name: strptr("API")},
		{Name: strptr("no id")},
	})
	require.Error(t, err)

	// The first service was written inside the same transaction and must be
	// gone after the rollback.
	var count int64
	require.NoError(t, conn.Model(&models.Service{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestUpsertServicesLinksKnownTeams(t *testing.T) {
	conn := newTestDB(t)
	st := store{db: conn}

	_, err := st.upsertTeams([]pagerduty.RawTeam{{ID: "T1", Name: strptr("Infra")}})
	require.NoError(t, err)

	count, err := st.upsertServices([]pagerduty.RawService{{
		ID:    "S1",
		Name:  strptr("API"),
		Teams: []pagerduty.Ref{{ID: "T1"}},
	}})
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	var service models.Service
	require.NoError(t, conn.Preload("Teams").First(&service, "id = ?", "S1").Error)
	require.Len(t, service.Teams, 1)
	assert.Equal(t, "T1", service.Teams[0].ID)
}

func TestUpsertServicesSkipsDanglingTeamReference(t *testing.T) {
	conn := newTestDB(t)
	st := store{db: conn}

	_, err := st.upsertServices([]pagerduty.RawService{{
		ID:    "S1",
		Name:  strptr("API"),
		Teams: []pagerduty.Ref{{ID: "T404"}},
	}})
	require.NoError(t, err)

	var service models.Service
	require.NoError(t, conn.Preload("Teams").First(&service, "id = ?", "S1").Error)
	assert.Empty(t, service.Teams)
}

func TestUpsertServicesRederivesAssociations(t *testing.T) {
	conn := newTestDB(t)
	st := store{db: conn}

	_, err := st.upsertTeams([]pagerduty.RawTeam{
		{ID: "T1", Name: strptr("Infra")},
		{ID: "T2", Name: strptr("Platform")},
	})
	require.NoError(t, err)

	raw := pagerduty.RawService{ID: "S1", Name: strptr("API"), Teams: []pagerduty.Ref{{ID: "T1"}}}

	_, err = st.upsertServices([]pagerduty.RawService{raw})
	require.NoError(t, err)

	// The remote moved the service to another team; a re-sync must replace
	// the association rather than accumulate it.
	raw.Teams = []pagerduty.Ref{{ID: "T2"}}

	_, err = st.upsertServices([]pagerduty.RawService{raw})
	require.NoError(t, err)

	var service models.Service
	require.NoError(t, conn.Preload("Teams").First(&service, "id = ?", "S1").Error)
	require.Len(t, service.Teams, 1)
	assert.Equal(t, "T2", service.Teams[0].ID)
}

func TestUpsertServicesUnknownPolicyFKIsStorageError(t *testing.T) {
	conn := newTestDB(t)
	st := store{db: conn}

	var enforced int
	require.NoError(t, conn.Raw("PRAGMA foreign_keys").Scan(&enforced).Error)
	require.Equal(t, 1, enforced)

	// Unlike team references, the escalation_policy_id column is a real
	// foreign key: pointing it at a row that was never stored is a constraint
	// violation, and the batch rolls back.
	_, err := st.upsertServices([]pagerduty.RawService{{
		ID:               "S1",
		Name:             strptr("API"),
		EscalationPolicy: &pagerduty.Ref{ID: "EP404"},
	}})
	require.Error(t, err)

	var count int64
	require.NoError(t, conn.Model(&models.Service{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestUpsertIncidentsUnknownServiceFKIsStorageError(t *testing.T) {
	conn := newTestDB(t)
	st := store{db: conn}

	_, err := st.upsertIncidents([]pagerduty.RawIncident{{
		ID:      "I1",
		Status:  strptr("open"),
		Service: &pagerduty.Ref{ID: "S404"},
	}})
	require.Error(t, err)

	var count int64
	require.NoError(t, conn.Model(&models.Incident{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestUpsertEscalationPoliciesLinksTeams(t *testing.T) {
	conn := newTestDB(t)
	st := store{db: conn}

	_, err := st.upsertTeams([]pagerduty.RawTeam{{ID: "T1", Name: strptr("Infra")}})
	require.NoError(t, err)

	_, err = st.upsertEscalationPolicies([]pagerduty.RawEscalationPolicy{{
		ID:    "EP1",
		Name:  strptr("Primary"),
		Teams: []pagerduty.Ref{{ID: "T1"}, {ID: "T404"}},
	}})
	require.NoError(t, err)

	var policy models.EscalationPolicy
	require.NoError(t, conn.Preload("Teams").First(&policy, "id = ?", "EP1").Error)
	require.Len(t, policy.Teams, 1)
	assert.Equal(t, "T1", policy.Teams[0].ID)
}

func TestUpsertIncidentsDefaultsPersisted(t *testing.T) {
	conn := newTestDB(t)
	st := store{db: conn}

	_, err := st.upsertIncidents([]pagerduty.RawIncident{{ID: "I1", Status: strptr("open")}})
	require.NoError(t, err)

	var incident models.Incident
	require.NoError(t, conn.First(&incident, "id = ?", "I1").Error)
	assert.Equal(t, "N/A", incident.Title)
	assert.Equal(t, "N/A", incident.Description)
	assert.Equal(t, "open", incident.Status)
	assert.Equal(t, "#", incident.URL)
	assert.Nil(t, incident.ServiceID)
}
