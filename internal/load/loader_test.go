package load

import (
	"context"
	"log/slog"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/datalith/predictit-etl/internal/testutil"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func newLoader(fake *testutil.FakeWarehouse) *Loader {
	return NewLoader(fake, "ETL_DB", "RAW_DATA", "PREDICTIT_S3_STAGE", testLogger())
}

func scriptCounts(fake *testutil.FakeWarehouse, staging, raw int64) {
	fake.SetResult("SELECT COUNT(*) FROM ETL_DB.RAW_DATA.RAW_JSON_STAGING", [][]any{{staging}})
	fake.SetResult("SELECT COUNT(*) FROM ETL_DB.RAW_DATA.PREDICTIT_RAW", [][]any{{raw}})
}

func TestLoadSequence(t *testing.T) {
	fake := testutil.NewFakeWarehouse()
	scriptCounts(fake, 1, 24)

	res, err := newLoader(fake).Load(context.Background())
	require.NoError(t, err)

	assert.Equal(t, StateStagingCleared, res.State)
	assert.Equal(t, int64(1), res.StagingRows)
	assert.Equal(t, int64(24), res.RawRows)

	require.Len(t, fake.Statements, 9)
	wantOrder := []string{
		"CREATE TABLE IF NOT EXISTS ETL_DB.RAW_DATA.RAW_JSON_STAGING",
		"CREATE TABLE IF NOT EXISTS ETL_DB.RAW_DATA.PREDICTIT_RAW",
		"TRUNCATE TABLE ETL_DB.RAW_DATA.RAW_JSON_STAGING",
		"COPY INTO ETL_DB.RAW_DATA.RAW_JSON_STAGING",
		"SELECT COUNT(*) FROM ETL_DB.RAW_DATA.RAW_JSON_STAGING",
		"TRUNCATE TABLE ETL_DB.RAW_DATA.PREDICTIT_RAW",
		"INSERT INTO ETL_DB.RAW_DATA.PREDICTIT_RAW",
		"SELECT COUNT(*) FROM ETL_DB.RAW_DATA.PREDICTIT_RAW",
		"TRUNCATE TABLE ETL_DB.RAW_DATA.RAW_JSON_STAGING",
	}
	for i, want := range wantOrder {
		assert.Contains(t, fake.Statements[i], want, "statement %d", i)
	}
}

func TestLoadCopyReadsFromStage(t *testing.T) {
	fake := testutil.NewFakeWarehouse()
	scriptCounts(fake, 1, 1)

	_, err := newLoader(fake).Load(context.Background())
	require.NoError(t, err)

	copies := fake.StatementsContaining("COPY INTO")
	require.Len(t, copies, 1)
	assert.Contains(t, copies[0], "FROM @ETL_DB.RAW_DATA.PREDICTIT_S3_STAGE")
	assert.Contains(t, copies[0], "METADATA$FILENAME")
	assert.Contains(t, copies[0], `PATTERN = '.*\.json'`)
	assert.Contains(t, copies[0], "FORCE = TRUE")
}

func TestLoadFlattenDefaultsMissingStatus(t *testing.T) {
	fake := testutil.NewFakeWarehouse()
	scriptCounts(fake, 1, 1)

	_, err := newLoader(fake).Load(context.Background())
	require.NoError(t, err)

	inserts := fake.StatementsContaining("INSERT INTO")
	require.Len(t, inserts, 1)
	assert.Contains(t, inserts[0], "LATERAL FLATTEN(input => r.RAW_DATA:data:markets)")
	assert.Contains(t, inserts[0], "COALESCE(market.value:status::VARCHAR, 'Unknown')")
	assert.Contains(t, inserts[0], "r.RAW_DATA:extracted_at::TIMESTAMP_NTZ")
}

func TestLoadEmptyStagingStopsRun(t *testing.T) {
	fake := testutil.NewFakeWarehouse()
	scriptCounts(fake, 0, 0)

	res, err := newLoader(fake).Load(context.Background())

	var emptyErr *EmptyLoadError
	require.ErrorAs(t, err, &emptyErr)
	assert.Contains(t, emptyErr.Table, "RAW_JSON_STAGING")
	assert.Equal(t, StateStagingEmpty, res.State)

	// The raw table must not have been touched.
	assert.Empty(t, fake.StatementsContaining("TRUNCATE TABLE ETL_DB.RAW_DATA.PREDICTIT_RAW"))
}

func TestLoadEmptyRawAfterInsert(t *testing.T) {
	fake := testutil.NewFakeWarehouse()
	scriptCounts(fake, 1, 0)

	res, err := newLoader(fake).Load(context.Background())

	var emptyErr *EmptyLoadError
	require.ErrorAs(t, err, &emptyErr)
	assert.Contains(t, emptyErr.Table, "PREDICTIT_RAW")
	assert.Equal(t, StateRawTruncated, res.State)

	// Failure between insert and cleanup: staging keeps its contents. The
	// next run's leading truncate is the recovery path.
	truncates := fake.StatementsContaining("TRUNCATE TABLE ETL_DB.RAW_DATA.RAW_JSON_STAGING")
	assert.Len(t, truncates, 1)
}

func TestLoadIdempotent(t *testing.T) {
	fake := testutil.NewFakeWarehouse()
	scriptCounts(fake, 1, 24)
	loader := newLoader(fake)

	first, err := loader.Load(context.Background())
	require.NoError(t, err)
	second, err := loader.Load(context.Background())
	require.NoError(t, err)

	// Truncate-then-reload law: same staged files, same final counts.
	assert.Equal(t, first.RawRows, second.RawRows)
	assert.Equal(t, first.StagingRows, second.StagingRows)

	// And the second run issued the identical statement sequence.
	half := len(fake.Statements) / 2
	assert.Equal(t, fake.Statements[:half], fake.Statements[half:])
}

func TestLoadQueryFailureIsFatal(t *testing.T) {
	fake := testutil.NewFakeWarehouse()
	scriptCounts(fake, 1, 1)
	fake.FailOn = "COPY INTO"

	_, err := newLoader(fake).Load(context.Background())
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "copying staged files"))
}
