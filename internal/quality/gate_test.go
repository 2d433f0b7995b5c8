package quality

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

func newGate(fake *testutil.FakeWarehouse) *Gate {
	return NewGate(fake, "ETL_DB", "RAW_DATA", testLogger())
}

func TestCheckPasses(t *testing.T) {
	fake := testutil.NewFakeWarehouse()
	fake.QueueResult("SELECT COUNT(*)", [][]any{{int64(24)}}) // row count
	fake.QueueResult("SELECT COUNT(*)", [][]any{{int64(0)}})  // null count
	fake.SetResult("LIMIT 3", [][]any{{1}, {2}, {3}})

	report, err := newGate(fake).Check(context.Background())
	require.NoError(t, err)

	assert.Equal(t, int64(24), report.RowCount)
	assert.Equal(t, int64(0), report.NullKeyRows)
	assert.Equal(t, 3, report.SampleRows)
}

func TestCheckZeroRowsFailsRun(t *testing.T) {
	fake := testutil.NewFakeWarehouse()
	fake.SetResult("SELECT COUNT(*)", [][]any{{int64(0)}})

	report, err := newGate(fake).Check(context.Background())

	var qualityErr *DataQualityError
	require.ErrorAs(t, err, &qualityErr)
	assert.Equal(t, "row_count", qualityErr.Check)
	assert.Equal(t, int64(0), report.RowCount)

	// The remaining checks never ran.
	assert.Empty(t, fake.StatementsContaining("IS NULL"))
	assert.Empty(t, fake.StatementsContaining("LIMIT 3"))
}

func TestCheckNullKeysOnlyWarn(t *testing.T) {
	fake := testutil.NewFakeWarehouse()
	fake.QueueResult("SELECT COUNT(*)", [][]any{{int64(10)}})
	fake.QueueResult("SELECT COUNT(*)", [][]any{{int64(4)}})
	fake.SetResult("LIMIT 3", [][]any{{1}})

	report, err := newGate(fake).Check(context.Background())

	// Nulls in key columns do not fail the run when the row count is
	// positive.
	require.NoError(t, err)
	assert.Equal(t, int64(4), report.NullKeyRows)
	assert.Equal(t, 1, report.SampleRows)
}

func TestCheckStatements(t *testing.T) {
	fake := testutil.NewFakeWarehouse()
	fake.SetResult("SELECT COUNT(*)", [][]any{{int64(5)}})

	_, err := newGate(fake).Check(context.Background())
	require.NoError(t, err)

	require.Len(t, fake.Statements, 3)
	assert.Contains(t, fake.Statements[0], "SELECT COUNT(*) FROM ETL_DB.RAW_DATA.PREDICTIT_RAW")
	assert.Contains(t, fake.Statements[1], "WHERE market_id IS NULL OR market_name IS NULL")
	assert.Contains(t, fake.Statements[2], "LIMIT 3")
}

func TestCheckQueryFailure(t *testing.T) {
	fake := testutil.NewFakeWarehouse()
	fake.FailOn = "SELECT COUNT(*)"

	_, err := newGate(fake).Check(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "counting raw rows")
}
