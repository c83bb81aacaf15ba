package jobs

import (
	"context"
	"fmt"
	"log"

	"github.com/google/uuid"

	"RevBridge/internal/bridge"
	"RevBridge/internal/config"
	"RevBridge/internal/export"
	"RevBridge/internal/ingest"
	"RevBridge/internal/store"
)

// RefreshFromFile runs the whole bridge from the configured input path:
// ingest, run, write artifacts, persist when a store is wired. This is the
// one-shot entry point shared by the CLI run mode and the scheduler.
func RefreshFromFile(ctx context.Context, cfg *config.Config, st *store.Store) (*bridge.Result, error) {
	policy, err := cfg.Policy()
	if err != nil {
		return nil, err
	}
	rs, err := ingest.LoadFile(cfg.Files.PathIn, cfg)
	if err != nil {
		return nil, fmt.Errorf("ingest %s: %w", cfg.Files.PathIn, err)
	}
	inputRows := len(rs.Rows)

	res, err := bridge.Run(rs, policy)
	if err != nil {
		return nil, err
	}

	if err := export.WriteAll(cfg.Files.FlatPathOut, cfg.Files.WaterfallPathOut, cfg.Files.WorkbookPathOut, res, rs.DimensionColumns); err != nil {
		return nil, fmt.Errorf("write artifacts: %w", err)
	}

	runID, err := st.SaveRun(ctx, policy.Label(), inputRows, res)
	if err != nil {
		return nil, fmt.Errorf("persist run: %w", err)
	}
	if runID != uuid.Nil {
		log.Printf("[Jobs] refresh persisted as run %s", runID)
	}
	return res, nil
}
