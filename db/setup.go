package db

import (
	"github.com/pulseboard-dev/pulseboard/internal/models"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var DB *gorm.DB

// mirrorModels is the snapshot schema in dependency order: foreign-key and
// many-to-many targets come before the types referencing them.
var mirrorModels = []interface{}{
	&models.Team{},
	&models.EscalationPolicy{},
	&models.Service{},
	&models.Incident{},
}

func ConnectDatabase(dsn string) error {
	var err error

	DB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{})

	if err != nil {
		return err
	}

	return nil
}

func MigrateDatabase(conn *gorm.DB) error {
	migrator := conn.Migrator()

	all := append([]interface{}{&models.SyncRun{}}, mirrorModels...)

	for _, model := range all {
		if !migrator.HasTable(model) {
			if err := conn.AutoMigrate(model); err != nil {
				return err
			}
		}
	}

	return nil
}

// ResetDatabase drops and recreates the mirror tables so a sync pass writes a
// full snapshot rather than merging with history. The sync_runs audit table
// is left alone.
func ResetDatabase(conn *gorm.DB) error {
	drop := []interface{}{
		"service_teams",
		"escalation_policy_teams",
		&models.Incident{},
		&models.Service{},
		&models.EscalationPolicy{},
		&models.Team{},
	}

	if err := conn.Migrator().DropTable(drop...); err != nil {
		return err
	}

	for _, model := range mirrorModels {
		if err := conn.AutoMigrate(model); err != nil {
			return err
		}
	}

	return nil
}
