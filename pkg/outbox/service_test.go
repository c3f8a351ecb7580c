package outbox

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/propnest/pdc-engine/pkg/db/models"
	"github.com/propnest/pdc-engine/pkg/enums"
)

func setupOutboxTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	schema := `
CREATE TABLE IF NOT EXISTS outbox_events (
  id TEXT PRIMARY KEY,
  event_type TEXT NOT NULL,
  aggregate_type TEXT NOT NULL,
  aggregate_id TEXT NOT NULL,
  payload TEXT NOT NULL,
  created_at DATETIME,
  published_at DATETIME,
  attempt_count INTEGER NOT NULL DEFAULT 0,
  last_error TEXT
);`
	require.NoError(t, db.Exec(schema).Error)
	return db
}

func TestServiceEmitStoresEnvelope(t *testing.T) {
	db := setupOutboxTestDB(t)
	svc := NewService(NewRepository(db), nil)

	pdcID := uuid.New()
	actor := &ActorRef{ActorID: uuid.New(), Role: "accountant"}

	err := db.Transaction(func(tx *gorm.DB) error {
		return svc.Emit(context.Background(), tx, DomainEvent{
			EventType:     enums.EventPDCBounced,
			AggregateType: enums.AggregatePDC,
			AggregateID:   pdcID,
			Actor:         actor,
			Data:          map[string]any{"reason": "insufficient funds"},
		})
	})
	require.NoError(t, err)

	var row models.OutboxEvent
	require.NoError(t, db.First(&row).Error)
	assert.Equal(t, enums.EventPDCBounced, row.EventType)
	assert.Equal(t, enums.AggregatePDC, row.AggregateType)
	assert.Equal(t, pdcID, row.AggregateID)
	assert.Nil(t, row.PublishedAt)

	var envelope PayloadEnvelope
	require.NoError(t, json.Unmarshal(row.Payload, &envelope))
	assert.Equal(t, 1, envelope.Version)
	assert.NotEmpty(t, envelope.EventID)
	assert.False(t, envelope.OccurredAt.IsZero())
	require.NotNil(t, envelope.Actor)
	assert.Equal(t, actor.ActorID, envelope.Actor.ActorID)

	var data map[string]string
	require.NoError(t, json.Unmarshal(envelope.Data, &data))
	assert.Equal(t, "insufficient funds", data["reason"])
}

func TestServiceEmitRequiresTransaction(t *testing.T) {
	db := setupOutboxTestDB(t)
	svc := NewService(NewRepository(db), nil)

	err := svc.Emit(context.Background(), nil, DomainEvent{
		EventType:     enums.EventPDCDue,
		AggregateType: enums.AggregatePDC,
		AggregateID:   uuid.New(),
	})
	require.Error(t, err)
}

func TestServiceEmitRejectsUnknownEventType(t *testing.T) {
	db := setupOutboxTestDB(t)
	svc := NewService(NewRepository(db), nil)

	err := db.Transaction(func(tx *gorm.DB) error {
		return svc.Emit(context.Background(), tx, DomainEvent{
			EventType:     enums.OutboxEventType("pdc_shredded"),
			AggregateType: enums.AggregatePDC,
			AggregateID:   uuid.New(),
		})
	})
	require.Error(t, err)
}

func TestRepositoryFetchUnpublishedSkipsExhaustedRows(t *testing.T) {
	db := setupOutboxTestDB(t)
	repo := NewRepository(db)

	fresh := models.OutboxEvent{
		ID:            uuid.New(),
		EventType:     enums.EventPDCDue,
		AggregateType: enums.AggregatePDC,
		AggregateID:   uuid.New(),
		Payload:       json.RawMessage(`{}`),
		AttemptCount:  1,
	}
	exhausted := models.OutboxEvent{
		ID:            uuid.New(),
		EventType:     enums.EventPDCDue,
		AggregateType: enums.AggregatePDC,
		AggregateID:   uuid.New(),
		Payload:       json.RawMessage(`{}`),
		AttemptCount:  10,
	}
	require.NoError(t, db.Create(&fresh).Error)
	require.NoError(t, db.Create(&exhausted).Error)

	rows, err := repo.FetchUnpublished(50, 10)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, fresh.ID, rows[0].ID)
}

func TestRepositoryMarkPublishedAndFailed(t *testing.T) {
	db := setupOutboxTestDB(t)
	repo := NewRepository(db)

	event := models.OutboxEvent{
		ID:            uuid.New(),
		EventType:     enums.EventPDCCleared,
		AggregateType: enums.AggregatePDC,
		AggregateID:   uuid.New(),
		Payload:       json.RawMessage(`{}`),
	}
	require.NoError(t, db.Create(&event).Error)

	require.NoError(t, repo.MarkFailed(event.ID, errors.New("publish timeout")))

	var row models.OutboxEvent
	require.NoError(t, db.First(&row, "id = ?", event.ID).Error)
	assert.Equal(t, 1, row.AttemptCount)
	require.NotNil(t, row.LastError)
	assert.Equal(t, "publish timeout", *row.LastError)

	require.NoError(t, repo.MarkPublished(event.ID))
	require.NoError(t, db.First(&row, "id = ?", event.ID).Error)
	assert.NotNil(t, row.PublishedAt)

	rows, err := repo.FetchUnpublished(50, 10)
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestRepositoryDeletePublishedBefore(t *testing.T) {
	db := setupOutboxTestDB(t)
	repo := NewRepository(db)

	old := time.Now().Add(-48 * time.Hour)
	published := models.OutboxEvent{
		ID:            uuid.New(),
		EventType:     enums.EventPDCDue,
		AggregateType: enums.AggregatePDC,
		AggregateID:   uuid.New(),
		Payload:       json.RawMessage(`{}`),
		PublishedAt:   &old,
	}
	pending := models.OutboxEvent{
		ID:            uuid.New(),
		EventType:     enums.EventPDCDue,
		AggregateType: enums.AggregatePDC,
		AggregateID:   uuid.New(),
		Payload:       json.RawMessage(`{}`),
	}
	require.NoError(t, db.Create(&published).Error)
	require.NoError(t, db.Create(&pending).Error)

	pruned, err := repo.DeletePublishedBefore(time.Now().Add(-24 * time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(1), pruned)

	var count int64
	require.NoError(t, db.Model(&models.OutboxEvent{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}
