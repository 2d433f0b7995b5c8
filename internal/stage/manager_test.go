package stage

import (
	"context"
	"log/slog"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/datalith/predictit-etl/internal/testutil"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func TestEnsureStage(t *testing.T) {
	fake := testutil.NewFakeWarehouse()
	m := NewManager(fake, "ETL_DB", "RAW_DATA", testLogger())

	err := m.EnsureStage(context.Background(), Spec{
		Name:      "PREDICTIT_S3_STAGE",
		Bucket:    "landing-bucket",
		Path:      "predictit/raw",
		KeyID:     "AKIATEST",
		SecretKey: "sekrit",
	})
	require.NoError(t, err)

	require.Len(t, fake.Statements, 1)
	sql := fake.Statements[0]
	assert.Contains(t, sql, "CREATE OR REPLACE STAGE ETL_DB.RAW_DATA.PREDICTIT_S3_STAGE")
	assert.Contains(t, sql, "URL = 's3://landing-bucket/predictit/raw/'")
	assert.Contains(t, sql, "AWS_KEY_ID = 'AKIATEST'")
	assert.Contains(t, sql, "AWS_SECRET_KEY = 'sekrit'")
	assert.Contains(t, sql, "FILE_FORMAT = (TYPE = 'JSON')")
}

func TestEnsureStageIdempotent(t *testing.T) {
	fake := testutil.NewFakeWarehouse()
	m := NewManager(fake, "ETL_DB", "RAW_DATA", testLogger())
	spec := Spec{Name: "PREDICTIT_S3_STAGE", Bucket: "b", Path: "p"}

	require.NoError(t, m.EnsureStage(context.Background(), spec))
	require.NoError(t, m.EnsureStage(context.Background(), spec))

	// Replace semantics: the same DDL both times.
	require.Len(t, fake.Statements, 2)
	assert.Equal(t, fake.Statements[0], fake.Statements[1])
}

func TestEnsureStageOmitsCredentialsWhenUnset(t *testing.T) {
	fake := testutil.NewFakeWarehouse()
	m := NewManager(fake, "ETL_DB", "RAW_DATA", testLogger())

	require.NoError(t, m.EnsureStage(context.Background(), Spec{Name: "S", Bucket: "b"}))
	assert.NotContains(t, fake.Statements[0], "CREDENTIALS")
	assert.Contains(t, fake.Statements[0], "URL = 's3://b'")
}

func TestEnsureStageValidation(t *testing.T) {
	m := NewManager(testutil.NewFakeWarehouse(), "ETL_DB", "RAW_DATA", testLogger())

	err := m.EnsureStage(context.Background(), Spec{Bucket: "b"})
	assert.ErrorContains(t, err, "stage name required")

	err = m.EnsureStage(context.Background(), Spec{Name: "S"})
	assert.ErrorContains(t, err, "stage bucket required")
}

func TestEnsureStageQueryFailure(t *testing.T) {
	fake := testutil.NewFakeWarehouse()
	fake.FailOn = "CREATE OR REPLACE STAGE"
	m := NewManager(fake, "ETL_DB", "RAW_DATA", testLogger())

	err := m.EnsureStage(context.Background(), Spec{Name: "S", Bucket: "b"})
	assert.ErrorContains(t, err, "creating stage S")
}
