package cli

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	internalApp "github.com/Gzeu/tarot-reading-app/internal/app"
	identityCommands "github.com/Gzeu/tarot-reading-app/internal/identity/application/commands"
	"github.com/Gzeu/tarot-reading-app/internal/readings/application/queries"
	"github.com/Gzeu/tarot-reading-app/pkg/config"
)

func setupTestApp(t *testing.T) *App {
	t.Helper()

	tmpDir, err := os.MkdirTemp("", "tarot-cli-test-*")
	require.NoError(t, err)
	t.Cleanup(func() { os.RemoveAll(tmpDir) })

	cfg := &config.Config{
		AppEnv:   "test",
		LogLevel: "error",

		SQLitePath: filepath.Join(tmpDir, "test.db"),

		OutboxPollInterval: 50 * time.Millisecond,
		OutboxBatchSize:    10,
		OutboxMaxRetries:   3,
		OutboxEnabled:      false,

		ReferenceTimezone: "UTC",
	}

	ctx := context.Background()
	container, err := internalApp.NewContainer(ctx, cfg)
	require.NoError(t, err)
	t.Cleanup(func() { container.Close() })

	registered, err := container.RegisterUserHandler.Handle(ctx, identityCommands.RegisterUserCommand{
		Email:       "cli@example.com",
		DisplayName: "CLI Seeker",
	})
	require.NoError(t, err)

	cliApp := &App{Container: container, CurrentUserID: registered.UserID}
	SetApp(cliApp)
	t.Cleanup(func() { SetApp(nil) })
	return cliApp
}

func TestDrawCmd(t *testing.T) {
	app := setupTestApp(t)
	ctx := context.Background()

	drawQuestion = "What next?"
	drawSeed = 0
	drawCmd.SetContext(ctx)

	err := drawCmd.RunE(drawCmd, []string{"three-card"})
	require.NoError(t, err)

	views, err := app.Container.ListReadingsHandler.Handle(ctx, queries.ListReadingsQuery{
		UserID: app.CurrentUserID,
	})
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Equal(t, "three-card", views[0].SpreadID)
	assert.Equal(t, "What next?", views[0].Question)
	assert.Len(t, views[0].Cards, 3)
}

func TestDrawCmd_SeededDrawIsReproducible(t *testing.T) {
	app := setupTestApp(t)
	ctx := context.Background()

	drawQuestion = ""
	drawSeed = 42
	drawCmd.SetContext(ctx)

	require.NoError(t, drawCmd.RunE(drawCmd, []string{"three-card"}))
	require.NoError(t, drawCmd.RunE(drawCmd, []string{"three-card"}))

	views, err := app.Container.ListReadingsHandler.Handle(ctx, queries.ListReadingsQuery{
		UserID: app.CurrentUserID,
	})
	require.NoError(t, err)
	require.Len(t, views, 2)

	first := make([]int, 0, 3)
	second := make([]int, 0, 3)
	for _, card := range views[0].Cards {
		first = append(first, card.CardID)
	}
	for _, card := range views[1].Cards {
		second = append(second, card.CardID)
	}
	assert.Equal(t, first, second)
}

func TestDrawCmd_UnknownSpread(t *testing.T) {
	setupTestApp(t)

	drawSeed = 0
	drawCmd.SetContext(context.Background())

	err := drawCmd.RunE(drawCmd, []string{"five-card"})
	assert.Error(t, err)
}

func TestFavoriteAndJournalCmds(t *testing.T) {
	app := setupTestApp(t)
	ctx := context.Background()

	drawQuestion = ""
	drawSeed = 0
	drawCmd.SetContext(ctx)
	require.NoError(t, drawCmd.RunE(drawCmd, []string{"three-card"}))

	views, err := app.Container.ListReadingsHandler.Handle(ctx, queries.ListReadingsQuery{
		UserID: app.CurrentUserID,
	})
	require.NoError(t, err)
	require.Len(t, views, 1)
	readingID := views[0].ID.String()

	favoriteOff = false
	favoriteCmd.SetContext(ctx)
	require.NoError(t, favoriteCmd.RunE(favoriteCmd, []string{readingID}))

	journalReflection = "It lingers."
	journalCmd.SetContext(ctx)
	require.NoError(t, journalCmd.RunE(journalCmd, []string{readingID, "The cards were kind."}))

	view, err := app.Container.GetReadingHandler.Handle(ctx, queries.GetReadingQuery{
		ReadingID: views[0].ID,
		UserID:    app.CurrentUserID,
	})
	require.NoError(t, err)
	assert.True(t, view.Favorite)
	require.Len(t, view.Journal, 1)
	assert.Equal(t, "The cards were kind.", view.Journal[0].Notes)
	assert.Equal(t, "It lingers.", view.Journal[0].Reflection)
}

func TestCardsAndSpreadsCmds(t *testing.T) {
	setupTestApp(t)
	ctx := context.Background()

	cardsCmd.SetContext(ctx)
	assert.NoError(t, cardsCmd.RunE(cardsCmd, nil))
	assert.NoError(t, cardsCmd.RunE(cardsCmd, []string{"1"}))
	assert.Error(t, cardsCmd.RunE(cardsCmd, []string{"99"}))

	spreadsCmd.SetContext(ctx)
	assert.NoError(t, spreadsCmd.RunE(spreadsCmd, nil))
}

func TestStatusCmd(t *testing.T) {
	setupTestApp(t)

	statusCmd.SetContext(context.Background())
	assert.NoError(t, statusCmd.RunE(statusCmd, nil))

	productsCmd.SetContext(context.Background())
	assert.NoError(t, productsCmd.RunE(productsCmd, nil))
}
