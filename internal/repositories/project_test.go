package repositories

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"alfredoptarigan/project-matcher/internal/models"
)

func dryRunDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(postgres.Open("host=localhost user=matcher dbname=matcher sslmode=disable"), &gorm.Config{
		DryRun:               true,
		DisableAutomaticPing: true,
		Logger:               logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	return db
}

func TestUpsertProject_RefreshesUpdatedAt(t *testing.T) {
	db := dryRunDB(t)

	sql := db.ToSQL(func(tx *gorm.DB) *gorm.DB {
		return upsertProject(tx, &models.Project{ID: "rfp-1", Description: "Cloud hosting"})
	})

	assert.Contains(t, sql, `ON CONFLICT ("id") DO UPDATE SET`)
	assert.Contains(t, sql, `"updated_at"="excluded"."updated_at"`)
	assert.Contains(t, sql, `"description"="excluded"."description"`)
	assert.NotContains(t, sql, `"created_at"="excluded"."created_at"`)
}

func TestProjectUpdateColumnsMatchModel(t *testing.T) {
	db := dryRunDB(t)

	stmt := &gorm.Statement{DB: db}
	require.NoError(t, stmt.Parse(&models.Project{}))

	for _, col := range projectUpdateColumns {
		assert.NotNil(t, stmt.Schema.LookUpField(col), col)
	}
	assert.Len(t, projectUpdateColumns, len(stmt.Schema.DBNames)-2)
}
