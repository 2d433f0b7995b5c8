// Package runlog implements an optional Postgres store of pipeline run
// history, so operators can query past runs without digging through logs.
package runlog

const schemaDDL = `
CREATE TABLE IF NOT EXISTS run_logs (
    run_id          TEXT PRIMARY KEY,
    status          TEXT NOT NULL,
    failed_stage    TEXT,
    failure_message TEXT,
    storage_key     TEXT,
    raw_rows        BIGINT NOT NULL DEFAULT 0,
    started_at      TIMESTAMPTZ NOT NULL,
    completed_at    TIMESTAMPTZ,
    updated_at      TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_run_logs_started_at ON run_logs (started_at);
CREATE INDEX IF NOT EXISTS idx_run_logs_status ON run_logs (status);
`
