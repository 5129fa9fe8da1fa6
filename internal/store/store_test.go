package store

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mobility-portal/internal/common/config"
	"mobility-portal/internal/common/logger"
	"mobility-portal/internal/models"
)

func sampleRecord(email string) models.SubmissionData {
	data := models.SubmissionData{
		FirstName:   "Sara",
		LastName:    "Alaoui",
		Nationality: models.NationalityMoroccan,
		Email:       email,
		Choice1: models.SchoolChoice{
			SchoolName:   models.SchoolENSIMAG,
			AcademicPath: "MMIS",
		},
		Choice2:   models.UnsetChoice(),
		CreatedAt: "2025-03-01T10:00:00Z",
	}
	data.Set(models.SlotResumePdf, "https://files.example/resume.pdf")
	return data
}

func TestValidateRecord(t *testing.T) {
	assert.NoError(t, ValidateRecord(sampleRecord("sara.alaoui@centrale-casablanca.ma")))

	bad := sampleRecord("sara.alaoui@centrale-casablanca.ma")
	bad.Choice1.SchoolName = "s99_nowhere"
	assert.ErrorIs(t, ValidateRecord(bad), ErrInvalidRecord)

	noName := sampleRecord("sara.alaoui@centrale-casablanca.ma")
	noName.FirstName = ""
	assert.ErrorIs(t, ValidateRecord(noName), ErrInvalidRecord)
}

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	got, err := s.GetMySubmission(ctx, "sara.alaoui@centrale-casablanca.ma")
	require.NoError(t, err)
	assert.Nil(t, got)

	first, err := s.SaveSubmission(ctx, sampleRecord("sara.alaoui@centrale-casablanca.ma"))
	require.NoError(t, err)
	assert.Equal(t, MockDatabaseID, first.DatabaseID)

	second := sampleRecord("Sara.Alaoui@centrale-casablanca.ma")
	second.Choice1.AcademicPath = "ISI"
	saved, err := s.SaveSubmission(ctx, second)
	require.NoError(t, err)
	assert.Equal(t, MockDatabaseID+"-2", saved.DatabaseID)

	got, err = s.GetMySubmission(ctx, "SARA.ALAOUI@centrale-casablanca.ma")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "ISI", got.Choice1.AcademicPath)

	all, err := s.ListAllSubmissions(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestOpen_Mockup(t *testing.T) {
	b, err := Open(context.Background(), config.DatabaseConfig{Strategy: "mockup"}, nil, logger.NewTestLogger(t))
	require.NoError(t, err)
	assert.IsType(t, &MemoryStore{}, b.Store)
	assert.Empty(t, b.Checks)
	assert.NoError(t, b.Close())
}

func TestOpen_CachedWhenRedisGiven(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rdb.Close()

	cfg := config.DatabaseConfig{Strategy: "mockup"}
	cfg.Redis.CacheTTL = 60000

	b, err := Open(context.Background(), cfg, rdb, logger.NewTestLogger(t))
	require.NoError(t, err)
	assert.IsType(t, &CachedStore{}, b.Store)
	assert.Contains(t, b.Checks, "redis")
}

func TestOpen_UnknownStrategy(t *testing.T) {
	_, err := Open(context.Background(), config.DatabaseConfig{Strategy: "mongo"}, nil, logger.NewTestLogger(t))
	assert.ErrorContains(t, err, "unknown database strategy")
}
