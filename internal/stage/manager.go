// Package stage manages the external stage that lets the warehouse read
// landed files directly from the object store.
package stage

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/datalith/predictit-etl/internal/warehouse"
)

// Spec describes the external stage to (re)define.
type Spec struct {
	Name      string
	Bucket    string
	Path      string
	KeyID     string
	SecretKey string
}

// Manager issues stage DDL against the warehouse.
type Manager struct {
	q        warehouse.Querier
	database string
	schema   string
	logger   *slog.Logger
}

// NewManager creates a Manager that qualifies stage names with the given
// database and schema.
func NewManager(q warehouse.Querier, database, schema string, logger *slog.Logger) *Manager {
	return &Manager{q: q, database: database, schema: schema, logger: logger}
}

// EnsureStage issues CREATE OR REPLACE STAGE binding the named stage to the
// bucket path with a JSON file format. Replace semantics make re-invocation
// safe. Credentials are embedded only when both keys are present; otherwise
// the stage relies on the warehouse's storage integration or instance role.
func (m *Manager) EnsureStage(ctx context.Context, spec Spec) error {
	if spec.Name == "" {
		return fmt.Errorf("stage name required")
	}
	if spec.Bucket == "" {
		return fmt.Errorf("stage bucket required")
	}

	url := fmt.Sprintf("s3://%s", spec.Bucket)
	if p := strings.Trim(spec.Path, "/"); p != "" {
		url = fmt.Sprintf("s3://%s/%s/", spec.Bucket, p)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "CREATE OR REPLACE STAGE %s\nURL = '%s'\n", m.qualified(spec.Name), url)
	if spec.KeyID != "" && spec.SecretKey != "" {
		fmt.Fprintf(&b, "CREDENTIALS = (\n    AWS_KEY_ID = '%s'\n    AWS_SECRET_KEY = '%s'\n)\n", spec.KeyID, spec.SecretKey)
	}
	b.WriteString("FILE_FORMAT = (TYPE = 'JSON');")

	if _, err := m.q.Run(ctx, b.String()); err != nil {
		return fmt.Errorf("creating stage %s: %w", spec.Name, err)
	}

	m.logger.Info("external stage defined", "stage", spec.Name, "url", url)
	return nil
}

// QualifiedName returns the fully qualified stage name.
func (m *Manager) QualifiedName(name string) string {
	return m.qualified(name)
}

func (m *Manager) qualified(name string) string {
	return fmt.Sprintf("%s.%s.%s", m.database, m.schema, name)
}
