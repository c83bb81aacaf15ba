package export

import "RevBridge/internal/bridge"

// WriteAll writes every configured artifact for a run. Empty paths are
// skipped, so callers can disable individual outputs from config.
func WriteAll(flatPath, waterfallPath, workbookPath string, res *bridge.Result, dimensionColumns []string) error {
	if flatPath != "" {
		if err := WriteFlatCSV(flatPath, res.Flat, dimensionColumns); err != nil {
			return err
		}
	}
	if waterfallPath != "" {
		if err := WriteWaterfallCSV(waterfallPath, res.Waterfall); err != nil {
			return err
		}
	}
	if workbookPath != "" {
		if err := WriteWorkbook(workbookPath, res, dimensionColumns); err != nil {
			return err
		}
	}
	return nil
}
