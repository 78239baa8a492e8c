package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Gzeu/tarot-reading-app/internal/deck/catalog"
	identityDomain "github.com/Gzeu/tarot-reading-app/internal/identity/domain"
	identityPersistence "github.com/Gzeu/tarot-reading-app/internal/identity/infrastructure/persistence"
	"github.com/Gzeu/tarot-reading-app/internal/readings/domain"
	"github.com/Gzeu/tarot-reading-app/internal/shared/infrastructure/database"
	"github.com/Gzeu/tarot-reading-app/internal/shared/infrastructure/database/sqlite"
	"github.com/Gzeu/tarot-reading-app/migrations"
)

func newTestConn(t *testing.T) database.Connection {
	t.Helper()
	ctx := context.Background()
	conn, err := sqlite.NewConnection(ctx, database.Config{SQLitePath: ":memory:"})
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	require.NoError(t, migrations.Run(ctx, conn))
	return conn
}

func seedUser(t *testing.T, conn database.Connection, email string) uuid.UUID {
	t.Helper()
	user, err := identityDomain.NewUser(email, "Seeker")
	require.NoError(t, err)
	require.NoError(t, identityPersistence.NewSQLUserRepository(conn).Save(context.Background(), user))
	return user.ID()
}

func newReading(t *testing.T, userID uuid.UUID, spreadID, readingDate string) *domain.Reading {
	t.Helper()
	spread, err := catalog.GetSpread(spreadID)
	require.NoError(t, err)

	cardIDs := make([]int, spread.CardCount)
	reversed := make([]bool, spread.CardCount)
	for i := range cardIDs {
		cardIDs[i] = i*3 + 1
		reversed[i] = i%2 == 1
	}

	reading, err := domain.NewReading(userID, spread, "What next?", domain.Draw{
		CardIDs:  cardIDs,
		Reversed: reversed,
	}, readingDate)
	require.NoError(t, err)
	reading.ClearDomainEvents()
	return reading
}

func TestSQLReadingRepository(t *testing.T) {
	ctx := context.Background()
	conn := newTestConn(t)
	repo := NewSQLReadingRepository(conn)
	userID := seedUser(t, conn, "reader@example.com")

	t.Run("save and find roundtrip", func(t *testing.T) {
		reading := newReading(t, userID, "three-card", "2026-03-10")
		reading.SetInterpretation("A story of change.")
		require.NoError(t, repo.Save(ctx, reading))

		found, err := repo.FindByID(ctx, reading.ID())
		require.NoError(t, err)
		assert.Equal(t, reading.ID(), found.ID())
		assert.Equal(t, userID, found.UserID())
		assert.Equal(t, "three-card", found.SpreadID())
		assert.Equal(t, "What next?", found.Question())
		assert.Equal(t, []int{1, 4, 7}, found.CardIDs())
		assert.Equal(t, []bool{false, true, false}, found.Reversed())
		assert.Equal(t, "A story of change.", found.Interpretation())
		assert.Equal(t, "2026-03-10", found.ReadingDate())
		assert.False(t, found.IsFavorite())
	})

	t.Run("missing reading yields ErrReadingNotFound", func(t *testing.T) {
		_, err := repo.FindByID(ctx, uuid.New())
		assert.ErrorIs(t, err, domain.ErrReadingNotFound)
	})

	t.Run("favorite flag persists through upsert", func(t *testing.T) {
		reading := newReading(t, userID, "daily-card", "2026-03-11")
		require.NoError(t, repo.Save(ctx, reading))

		reading.SetFavorite(true)
		require.NoError(t, repo.Save(ctx, reading))

		found, err := repo.FindByID(ctx, reading.ID())
		require.NoError(t, err)
		assert.True(t, found.IsFavorite())
	})

	t.Run("journal entries roundtrip with their reading", func(t *testing.T) {
		reading := newReading(t, userID, "daily-card", "2026-03-12")
		_, err := reading.AttachJournal("The Tower again.", "Still resisting change.")
		require.NoError(t, err)
		reading.ClearDomainEvents()
		require.NoError(t, repo.Save(ctx, reading))

		found, err := repo.FindByID(ctx, reading.ID())
		require.NoError(t, err)
		require.Len(t, found.Journal(), 1)
		assert.Equal(t, "The Tower again.", found.Journal()[0].Notes())
		assert.Equal(t, "Still resisting change.", found.Journal()[0].Reflection())
	})

	t.Run("daily lookup pins by user, spread and date", func(t *testing.T) {
		daily := newReading(t, userID, "daily-card", "2026-03-13")
		require.NoError(t, repo.Save(ctx, daily))

		found, err := repo.FindDailyByUserDate(ctx, userID, "daily-card", "2026-03-13")
		require.NoError(t, err)
		assert.Equal(t, daily.ID(), found.ID())

		_, err = repo.FindDailyByUserDate(ctx, userID, "daily-card", "2026-03-14")
		assert.ErrorIs(t, err, domain.ErrReadingNotFound)

		other := seedUser(t, conn, "other@example.com")
		_, err = repo.FindDailyByUserDate(ctx, other, "daily-card", "2026-03-13")
		assert.ErrorIs(t, err, domain.ErrReadingNotFound)
	})

	t.Run("list returns newest first with pagination", func(t *testing.T) {
		pager := seedUser(t, conn, "pager@example.com")
		var ids []uuid.UUID
		for i := 0; i < 5; i++ {
			reading := newReading(t, pager, "three-card", "2026-03-10")
			require.NoError(t, repo.Save(ctx, reading))
			ids = append(ids, reading.ID())
			time.Sleep(2 * time.Millisecond)
		}

		page, err := repo.ListByUser(ctx, pager, 2, 0)
		require.NoError(t, err)
		require.Len(t, page, 2)
		assert.Equal(t, ids[4], page[0].ID())
		assert.Equal(t, ids[3], page[1].ID())

		rest, err := repo.ListByUser(ctx, pager, 10, 2)
		require.NoError(t, err)
		require.Len(t, rest, 3)
		assert.Equal(t, ids[0], rest[2].ID())
	})

	t.Run("deleting a reading cascades to its journal", func(t *testing.T) {
		reading := newReading(t, userID, "three-card", "2026-03-15")
		_, err := reading.AttachJournal("note", "")
		require.NoError(t, err)
		require.NoError(t, repo.Save(ctx, reading))

		_, err = conn.Exec(ctx, `DELETE FROM readings WHERE id = ?`, reading.ID().String())
		require.NoError(t, err)

		var count int
		err = conn.QueryRow(ctx,
			`SELECT COUNT(1) FROM journal_entries WHERE reading_id = ?`,
			reading.ID().String(),
		).Scan(&count)
		require.NoError(t, err)
		assert.Zero(t, count)
	})
}
