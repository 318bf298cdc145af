// Package syncer replicates the domain tables one-way, from the local
// database to the hosted one. Each table is replaced atomically:
// delete plus batched insert in a single transaction, restricted to
// the columns the hosted table actually has, followed by an optional
// row-count verification.
package syncer

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/Brunogomez94/siciap-cloud/domain"
	"github.com/Brunogomez94/siciap-cloud/store"
)

// ErrTableMissing means the hosted database has no equivalent table.
var ErrTableMissing = errors.New("table missing in hosted database")

// Result reports the outcome of syncing one table.
type Result struct {
	Table    string    `json:"table"`
	Rows     int       `json:"rows"`
	Skipped  bool      `json:"skipped"`
	SyncedAt time.Time `json:"synced_at"`
}

// Verification compares row counts between the two databases.
type Verification struct {
	Table      string `json:"table"`
	LocalCount int    `json:"local_count"`
	CloudCount int    `json:"cloud_count"`
	Match      bool   `json:"match"`
}

// Syncer holds the two database ends and the hosted schema name.
type Syncer struct {
	local       *store.Store
	cloud       *store.Store
	cloudSchema string
	logger      zerolog.Logger
}

// New builds a Syncer. cloudSchema is the schema the hosted tables
// live in, usually public.
func New(local, cloud *store.Store, cloudSchema string, logger zerolog.Logger) *Syncer {
	if cloudSchema == "" {
		cloudSchema = "public"
	}
	return &Syncer{local: local, cloud: cloud, cloudSchema: cloudSchema, logger: logger}
}

// Tables returns the fixed list of tables the sync job replicates, in
// sync order.
func Tables() []string {
	specs := domain.Specs()
	tables := make([]string, len(specs))
	for i, s := range specs {
		tables[i] = s.Table
	}
	return tables
}

// SyncTable replicates one local table to the hosted database. An
// empty local table is skipped, not an error. The hosted table must
// already exist.
func (s *Syncer) SyncTable(ctx context.Context, table string) (Result, error) {
	res := Result{Table: table, SyncedAt: time.Now().UTC()}
	target := s.cloudTable(table)
	log := s.logger.With().Str("table", table).Logger()

	exists, err := s.cloud.TableExists(ctx, target)
	if err != nil {
		return res, err
	}
	if !exists {
		return res, fmt.Errorf("%s: %w", target, ErrTableMissing)
	}

	localCols, err := s.local.TableColumns(ctx, table)
	if err != nil {
		return res, err
	}
	cloudCols, err := s.cloud.TableColumns(ctx, target)
	if err != nil {
		return res, err
	}
	valid := intersect(localCols, cloudCols)
	if len(valid) == 0 {
		return res, fmt.Errorf("%s: %w", target, store.ErrNoColumnOverlap)
	}
	if len(valid) < len(localCols) {
		log.Info().Strs("omitted", difference(localCols, valid)).Msg("Columns absent from hosted table, omitting")
	}

	rows, err := s.local.ReadAll(ctx, table, valid)
	if err != nil {
		return res, err
	}
	if len(rows) == 0 {
		log.Warn().Msg("Local table is empty, skipping sync")
		res.Skipped = true
		return res, nil
	}

	inserted, err := s.cloud.ReplaceAllValues(ctx, target, valid, rows)
	if err != nil {
		return res, err
	}
	res.Rows = inserted
	log.Info().Int("rows", inserted).Msg("Table synced")
	return res, nil
}

// SyncAll replicates every domain table, continuing past per-table
// failures. The returned error aggregates the tables that failed.
func (s *Syncer) SyncAll(ctx context.Context) ([]Result, error) {
	var results []Result
	var failed []string
	for _, table := range Tables() {
		res, err := s.SyncTable(ctx, table)
		if err != nil {
			s.logger.Error().Err(err).Str("table", table).Msg("Sync failed")
			failed = append(failed, table)
		}
		results = append(results, res)
	}
	if len(failed) > 0 {
		return results, fmt.Errorf("sync failed for: %s", strings.Join(failed, ", "))
	}
	return results, nil
}

// Verify compares local and hosted row counts for one table.
func (s *Syncer) Verify(ctx context.Context, table string) (Verification, error) {
	v := Verification{Table: table}
	local, err := s.local.Count(ctx, table)
	if err != nil {
		return v, err
	}
	cloud, err := s.cloud.Count(ctx, s.cloudTable(table))
	if err != nil {
		return v, err
	}
	v.LocalCount = local
	v.CloudCount = cloud
	v.Match = local == cloud
	return v, nil
}

// cloudTable maps a local schema-qualified table to its hosted
// equivalent.
func (s *Syncer) cloudTable(table string) string {
	name := table
	if i := strings.IndexByte(table, '.'); i >= 0 {
		name = table[i+1:]
	}
	return s.cloudSchema + "." + name
}

func intersect(a, b []string) []string {
	have := make(map[string]bool, len(b))
	for _, c := range b {
		have[c] = true
	}
	var out []string
	for _, c := range a {
		if have[c] {
			out = append(out, c)
		}
	}
	return out
}

func difference(a, b []string) []string {
	have := make(map[string]bool, len(b))
	for _, c := range b {
		have[c] = true
	}
	var out []string
	for _, c := range a {
		if !have[c] {
			out = append(out, c)
		}
	}
	return out
}
