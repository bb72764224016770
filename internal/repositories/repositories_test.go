package repositories_test

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"herboscope/internal/database"
	"herboscope/internal/models"
	"herboscope/internal/repositories"
	apperrors "herboscope/pkg/errors"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type store struct {
	users  repositories.UserRepository
	plants repositories.PlantRepository
}

// stores returns every backend available in this environment. MongoDB is
// only exercised when MONGO_URI is set.
func stores(t *testing.T) map[string]func(t *testing.T) store {
	t.Helper()
	all := map[string]func(t *testing.T) store{
		"memory": func(t *testing.T) store {
			return store{
				users:  repositories.NewMemoryUserRepository(),
				plants: repositories.NewMemoryPlantRepository(),
			}
		},
		"sqlite": func(t *testing.T) store {
			dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
			db, err := database.OpenGORM("sqlite", dsn, zap.NewNop())
			require.NoError(t, err)
			t.Cleanup(func() { _ = database.CloseGORM(db) })
			return store{
				users:  repositories.NewGORMUserRepository(db),
				plants: repositories.NewGORMPlantRepository(db),
			}
		},
	}
	if uri := os.Getenv("MONGO_URI"); uri != "" {
		all["mongo"] = func(t *testing.T) store {
			ctx := context.Background()
			client, db, err := database.OpenMongo(ctx, uri, "herboscope_test_"+uuid.NewString()[:8])
			require.NoError(t, err)
			t.Cleanup(func() {
				_ = db.Drop(context.Background())
				_ = client.Disconnect(context.Background())
			})
			return store{
				users:  repositories.NewMongoUserRepository(db),
				plants: repositories.NewMongoPlantRepository(db),
			}
		}
	}
	return all
}

func ptr(s string) *string { return &s }

func createPlant(t *testing.T, repo repositories.PlantRepository, name string) *models.Plant {
	t.Helper()
	p := &models.Plant{PlantName: name, ImagePath: "/plantImages/" + name + ".jpg"}
	require.NoError(t, repo.Create(context.Background(), p))
	require.NotEmpty(t, p.ID)
	// keep createdAt strictly increasing across backends
	time.Sleep(2 * time.Millisecond)
	return p
}

func TestPlantRepository(t *testing.T) {
	for name, open := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			t.Run("create and get", func(t *testing.T) {
				repo := open(t).plants
				p := &models.Plant{
					PlantName:      "Tulsi",
					ScientificName: "Ocimum tenuiflorum",
					Uses:           "Tea",
					Description:    "Holy basil",
					ImagePath:      "uploads/plantImages/tulsi.jpg",
				}
				require.NoError(t, repo.Create(ctx, p))
				assert.False(t, p.CreatedAt.IsZero())

				got, err := repo.GetByID(ctx, p.ID)
				require.NoError(t, err)
				assert.Equal(t, p.PlantName, got.PlantName)
				assert.Equal(t, p.ScientificName, got.ScientificName)
				assert.Equal(t, p.Uses, got.Uses)
				assert.Equal(t, p.Description, got.Description)
				assert.Equal(t, p.ImagePath, got.ImagePath)

				_, err = repo.GetByID(ctx, uuid.NewString())
				assert.True(t, apperrors.IsCode(err, apperrors.CodeNotFound))
			})

			t.Run("recent is newest first and capped", func(t *testing.T) {
				repo := open(t).plants
				for i := 0; i < 5; i++ {
					createPlant(t, repo, fmt.Sprintf("plant-%d", i))
				}

				plants, err := repo.Recent(ctx, 3)
				require.NoError(t, err)
				require.Len(t, plants, 3)
				assert.Equal(t, "plant-4", plants[0].PlantName)
				assert.Equal(t, "plant-3", plants[1].PlantName)
				assert.Equal(t, "plant-2", plants[2].PlantName)
			})

			t.Run("search ignores case and wildcards", func(t *testing.T) {
				repo := open(t).plants
				createPlant(t, repo, "Tulsi")
				createPlant(t, repo, "HOLY TULIP")
				createPlant(t, repo, "Neem")
				createPlant(t, repo, "100% Aloe")
				createPlant(t, repo, "Mint_leaf")

				plants, err := repo.SearchByName(ctx, "tUl", 50)
				require.NoError(t, err)
				require.Len(t, plants, 2)
				assert.Equal(t, "HOLY TULIP", plants[0].PlantName)
				assert.Equal(t, "Tulsi", plants[1].PlantName)

				plants, err = repo.SearchByName(ctx, "%", 50)
				require.NoError(t, err)
				require.Len(t, plants, 1)
				assert.Equal(t, "100% Aloe", plants[0].PlantName)

				plants, err = repo.SearchByName(ctx, "_", 50)
				require.NoError(t, err)
				require.Len(t, plants, 1)
				assert.Equal(t, "Mint_leaf", plants[0].PlantName)

				plants, err = repo.SearchByName(ctx, "e", 1)
				require.NoError(t, err)
				assert.Len(t, plants, 1)
			})

			t.Run("search folds non-ASCII case", func(t *testing.T) {
				repo := open(t).plants
				createPlant(t, repo, "ÁLOE Vera")
				renamed := createPlant(t, repo, "Rose")
				_, err := repo.Update(ctx, renamed.ID, models.PlantUpdate{PlantName: ptr("ÉPINE Blanche")})
				require.NoError(t, err)

				plants, err := repo.SearchByName(ctx, "álo", 50)
				require.NoError(t, err)
				require.Len(t, plants, 1)
				assert.Equal(t, "ÁLOE Vera", plants[0].PlantName)

				plants, err = repo.SearchByName(ctx, "épine", 50)
				require.NoError(t, err)
				require.Len(t, plants, 1)
				assert.Equal(t, "ÉPINE Blanche", plants[0].PlantName)

				plants, err = repo.SearchByName(ctx, "rose", 50)
				require.NoError(t, err)
				assert.Empty(t, plants)
			})

			t.Run("update changes only mutable fields", func(t *testing.T) {
				repo := open(t).plants
				p := createPlant(t, repo, "Tulsi")
				before, err := repo.GetByID(ctx, p.ID)
				require.NoError(t, err)

				got, err := repo.Update(ctx, p.ID, models.PlantUpdate{
					PlantName: ptr("Holy Basil"),
					Uses:      ptr("Tea"),
				})
				require.NoError(t, err)
				assert.Equal(t, "Holy Basil", got.PlantName)
				assert.Equal(t, "Tea", got.Uses)
				assert.Equal(t, before.ImagePath, got.ImagePath)
				assert.True(t, before.CreatedAt.Equal(got.CreatedAt))

				same, err := repo.Update(ctx, p.ID, models.PlantUpdate{})
				require.NoError(t, err)
				assert.Equal(t, "Holy Basil", same.PlantName)

				_, err = repo.Update(ctx, uuid.NewString(), models.PlantUpdate{Uses: ptr("x")})
				assert.True(t, apperrors.IsCode(err, apperrors.CodeNotFound))
				_, err = repo.Update(ctx, uuid.NewString(), models.PlantUpdate{})
				assert.True(t, apperrors.IsCode(err, apperrors.CodeNotFound))
			})

			t.Run("delete twice", func(t *testing.T) {
				repo := open(t).plants
				p := createPlant(t, repo, "Neem")

				require.NoError(t, repo.Delete(ctx, p.ID))
				err := repo.Delete(ctx, p.ID)
				assert.True(t, apperrors.IsCode(err, apperrors.CodeNotFound))

				_, err = repo.GetByID(ctx, p.ID)
				assert.True(t, apperrors.IsCode(err, apperrors.CodeNotFound))
			})
		})
	}
}

func TestUserRepository(t *testing.T) {
	for name, open := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			repo := open(t).users

			admin, err := repo.AdminExists(ctx)
			require.NoError(t, err)
			assert.False(t, admin)

			alice := &models.User{Username: "alice", Email: "a@x.com", Password: "hash", Role: models.RoleUser}
			require.NoError(t, repo.Create(ctx, alice))
			require.NotEmpty(t, alice.ID)

			got, err := repo.GetByEmail(ctx, "a@x.com")
			require.NoError(t, err)
			assert.Equal(t, alice.ID, got.ID)
			assert.Equal(t, "hash", got.Password)

			got, err = repo.GetByUsername(ctx, "alice")
			require.NoError(t, err)
			assert.Equal(t, alice.ID, got.ID)

			got, err = repo.GetByID(ctx, alice.ID)
			require.NoError(t, err)
			assert.Equal(t, "a@x.com", got.Email)

			_, err = repo.GetByEmail(ctx, "nobody@x.com")
			assert.True(t, apperrors.IsCode(err, apperrors.CodeNotFound))

			err = repo.Create(ctx, &models.User{Username: "alice2", Email: "a@x.com", Password: "hash", Role: models.RoleUser})
			assert.True(t, apperrors.IsCode(err, apperrors.CodeAlreadyExists), "duplicate email: %v", err)

			err = repo.Create(ctx, &models.User{Username: "alice", Email: "other@x.com", Password: "hash", Role: models.RoleUser})
			assert.True(t, apperrors.IsCode(err, apperrors.CodeAlreadyExists), "duplicate username: %v", err)

			require.NoError(t, repo.Create(ctx, &models.User{Username: "root", Email: "root@x.com", Password: "hash", Role: models.RoleAdmin}))
			admin, err = repo.AdminExists(ctx)
			require.NoError(t, err)
			assert.True(t, admin)
		})
	}
}
