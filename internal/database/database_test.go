package database

import (
	"fmt"
	"testing"

	"herboscope/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestOpenGORM_BackfillsSearchNames(t *testing.T) {
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	first, err := OpenGORM("sqlite", dsn, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = CloseGORM(first) })

	require.NoError(t, first.Exec(
		"INSERT INTO plants (id, plant_name, scientific_name, image_path, search_name) VALUES (?, ?, '', ?, '')",
		"p-1", "ÁLOE Vera", "/plantImages/aloe.jpg",
	).Error)

	second, err := OpenGORM("sqlite", dsn, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = CloseGORM(second) })

	var plant models.Plant
	require.NoError(t, second.First(&plant, "id = ?", "p-1").Error)
	assert.Equal(t, "áloe vera", plant.SearchName)
}

func TestOpenGORM_UnknownDriver(t *testing.T) {
	_, err := OpenGORM("oracle", "", nil)
	assert.Error(t, err)
}
