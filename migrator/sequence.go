package migrator

import "slices"

// SequenceReport is the result of validating the applied-migration history
// against the catalog.
type SequenceReport struct {
	// Valid is true iff the applied numbers, read in catalog order, are
	// exactly 1..len(Applied), i.e. migrations were applied in strict
	// ordinal order with no gaps or skips.
	Valid bool
	// Applied are the numbers of the applied migrations present in the
	// catalog, in catalog order.
	Applied []int
	// Expected is the contiguous range 1..len(Applied).
	Expected []int
}

// ValidateSequence checks that the applied migrations form a contiguous
// prefix of the migration sequence. It is a diagnostic only and never blocks
// execution.
func ValidateSequence(catalog *Catalog, applied map[string]struct{}) SequenceReport {
	report := SequenceReport{Applied: []int{}, Expected: []int{}}
	for _, f := range catalog.Files() {
		if _, ok := applied[f.Name]; ok {
			report.Applied = append(report.Applied, f.Number)
		}
	}

	for i := range report.Applied {
		report.Expected = append(report.Expected, i+1)
	}
	report.Valid = slices.Equal(report.Applied, report.Expected)

	return report
}
