package pgdb

import (
	"fmt"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/techmart/backend/internal/usecase"
)

const outboxMigration = "../../../db/migrations/000004_create_outbox_events.up.sql"

// Запросы репозитория и миграция должны называть одни и те же колонки:
// расхождение роняет каждый drain-цикл worker'а с 42703.
func TestOutboxMigrationCoversRepoColumns(t *testing.T) {
	raw, err := os.ReadFile(outboxMigration)
	require.NoError(t, err)
	migration := string(raw)

	columns := []string{
		"id",
		"event_id",
		"event_type",
		"order_id",
		"payload",
		"status",
		"created_at",
		"processing_started_at",
		"processed_at",
	}
	for _, col := range columns {
		assert.Contains(t, migration, col)
	}
}

// Статусы в БД и в коде — один словарь: строка с дефолтным статусом,
// который WHERE status = 'pending' никогда не выберет, зависла бы навсегда.
func TestOutboxMigrationStatusDefaultMatchesVocabulary(t *testing.T) {
	raw, err := os.ReadFile(outboxMigration)
	require.NoError(t, err)
	migration := string(raw)

	assert.Contains(t, migration, fmt.Sprintf("DEFAULT '%s'", usecase.Pending))
	assert.NotContains(t, migration, "'PENDING'", "status values are lowercase in code")
}
