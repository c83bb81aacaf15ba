package bridge

import (
	"log"
	"time"
)

// Result is everything a bridge run produces: both reporting artifacts, the
// input profile and the data quality warnings gathered along the way.
type Result struct {
	Flat      []FlatRow
	Waterfall []WaterfallRow
	Summary   InputSummary
	Warnings  []Warning
	Elapsed   time.Duration
}

// Run executes the full bridge over an ingested row set: lifespans, trim,
// deltas, classification, both outputs, then the consistency checks. Stages
// run strictly in sequence; a failed check aborts the run with a typed error
// and no partial artifacts.
func Run(rs *RowSet, policy PeriodPolicy) (*Result, error) {
	started := time.Now()
	log.Printf("[Bridge] run started: %d rows, %s", len(rs.Rows), policy.Label())

	rs.Sort()
	if err := rs.CheckKeyUniqueness(); err != nil {
		return nil, err
	}

	summary := Summarize(rs)
	summary.Log()

	t := time.Now()
	ls := ComputeLifespans(rs)
	logStage("lifespans", t)

	t = time.Now()
	trimmed := TrimToLifespan(rs, ls, policy)
	logStage("trim", t)

	t = time.Now()
	rows := ComputeDeltas(trimmed, policy)
	logStage("deltas", t)

	t = time.Now()
	Classify(rows, ls, policy)
	ApplyBuckets(rows)
	logStage("classify", t)

	t = time.Now()
	flat := BuildFlat(rows, trimmed, ls)
	wf := BuildWaterfall(rows)
	logStage("outputs", t)

	warnings := append([]Warning(nil), rs.Warnings...)
	if err := CheckDirectionality(rows); err != nil {
		return nil, err
	}
	if err := CheckWaterfallSums(wf); err != nil {
		return nil, err
	}
	if err := CheckAnnualTotals(rs, wf, &warnings); err != nil {
		return nil, err
	}

	res := &Result{
		Flat:      flat,
		Waterfall: wf,
		Summary:   summary,
		Warnings:  warnings,
		Elapsed:   time.Since(started),
	}
	for _, w := range warnings {
		log.Printf("[Bridge] warning %s", w)
	}
	log.Printf("[Bridge] run finished in %s: %d flat rows, %d waterfall rows, %d warnings",
		res.Elapsed.Round(time.Millisecond), len(flat), len(wf), len(warnings))
	return res, nil
}

func logStage(name string, start time.Time) {
	log.Printf("[Bridge] stage %s took %s", name, time.Since(start).Round(time.Millisecond))
}
