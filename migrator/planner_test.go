package migrator

import (
	"database/sql"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.hackfix.me/automigrate/migrator/types"
)

// testCatalog builds an in-memory catalog with the given migration numbers.
func testCatalog(numbers ...int) *Catalog {
	c := &Catalog{dir: "migrations"}
	for _, n := range numbers {
		name := fmt.Sprintf("%04d-m%d", n, n)
		c.files = append(c.files, &types.MigrationFile{
			FileName:     name + ".schema.up.sql",
			DownFileName: name + ".schema.down.sql",
			Name:         name,
			Number:       n,
			Type:         types.TypeSchema,
		})
	}

	return c
}

// appliedSet returns the applied-name set for the given numbers of catalog c.
func appliedSet(c *Catalog, numbers ...int) map[string]struct{} {
	applied := map[string]struct{}{}
	for _, n := range numbers {
		for _, f := range c.Files() {
			if f.Number == n {
				applied[f.Name] = struct{}{}
			}
		}
	}

	return applied
}

func planNumbers(p *types.Plan) []int {
	numbers := []int{}
	for _, f := range p.ToMigrate {
		numbers = append(numbers, f.Number)
	}

	return numbers
}

func target(n int) sql.Null[int] {
	return sql.Null[int]{V: n, Valid: true}
}

func noTarget() sql.Null[int] {
	return sql.Null[int]{}
}

func TestBuildPlan(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		catalog    []int
		applied    []int
		target     sql.Null[int]
		expDir     types.Direction
		expNumbers []int
		expCurrent int
		expTarget  int
		expErr     string
	}{
		{
			name:       "ok/full_forward_from_empty",
			catalog:    []int{1, 2, 3},
			applied:    []int{},
			target:     noTarget(),
			expDir:     types.DirectionForward,
			expNumbers: []int{1, 2, 3},
			expCurrent: 0,
			expTarget:  3,
		},
		{
			name:       "ok/forward_remaining",
			catalog:    []int{1, 2, 3},
			applied:    []int{1, 2},
			target:     target(3),
			expDir:     types.DirectionForward,
			expNumbers: []int{3},
			expCurrent: 2,
			expTarget:  3,
		},
		{
			name:       "ok/backward_to_1_descending",
			catalog:    []int{1, 2, 3},
			applied:    []int{1, 2, 3},
			target:     target(1),
			expDir:     types.DirectionBackward,
			expNumbers: []int{3, 2},
			expCurrent: 3,
			expTarget:  1,
		},
		{
			name:       "ok/backward_to_zero_sentinel",
			catalog:    []int{1, 2, 3},
			applied:    []int{1, 2, 3},
			target:     target(0),
			expDir:     types.DirectionBackward,
			expNumbers: []int{3, 2, 1},
			expCurrent: 3,
			expTarget:  0,
		},
		{
			name:    "err/target_above_catalog",
			catalog: []int{1, 2, 3},
			applied: []int{1, 2, 3},
			target:  target(5),
			expErr:  "invalid target migration number: 5",
		},
		{
			name:    "err/target_not_a_catalog_ordinal",
			catalog: []int{1, 2, 4},
			applied: []int{1},
			target:  target(3),
			expErr:  "invalid target migration number: 3",
		},
		{
			name:       "ok/target_equals_current_is_noop",
			catalog:    []int{1, 2, 3},
			applied:    []int{1, 2},
			target:     target(2),
			expDir:     types.DirectionBackward,
			expNumbers: []int{},
			expCurrent: 2,
			expTarget:  2,
		},
		{
			name:       "ok/up_to_date_noop",
			catalog:    []int{1, 2, 3},
			applied:    []int{1, 2, 3},
			target:     noTarget(),
			expDir:     types.DirectionBackward,
			expNumbers: []int{},
			expCurrent: 3,
			expTarget:  3,
		},
		{
			name:       "ok/noncontiguous_ordinals_forward",
			catalog:    []int{1, 3, 7},
			applied:    []int{1},
			target:     target(7),
			expDir:     types.DirectionForward,
			expNumbers: []int{3, 7},
			expCurrent: 1,
			expTarget:  7,
		},
		{
			name:       "ok/zero_target_with_nothing_applied",
			catalog:    []int{1, 2},
			applied:    []int{},
			target:     target(0),
			expDir:     types.DirectionBackward,
			expNumbers: []int{},
			expCurrent: 0,
			expTarget:  0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			catalog := testCatalog(tt.catalog...)
			applied := appliedSet(catalog, tt.applied...)
			plan, err := BuildPlan(catalog, applied, tt.target)
			if tt.expErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.expErr)

				var targetErr *types.InvalidTargetError
				require.ErrorAs(t, err, &targetErr)
				assert.Equal(t, tt.target.V, targetErr.Number)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.expDir, plan.Direction)
			assert.Equal(t, tt.expNumbers, planNumbers(plan))
			assert.Equal(t, tt.expCurrent, plan.Current)
			assert.Equal(t, tt.expTarget, plan.Target)
			assert.Equal(t, len(tt.expNumbers) == 0, plan.Empty())
		})
	}
}

func TestBuildPlanEmptyCatalog(t *testing.T) {
	t.Parallel()

	plan, err := BuildPlan(testCatalog(), map[string]struct{}{}, noTarget())
	require.NoError(t, err)
	assert.Equal(t, types.DirectionNone, plan.Direction)
	assert.True(t, plan.Empty())
}

func TestBuildPlanBackwardOrdering(t *testing.T) {
	t.Parallel()

	// Backward plans must revert newest-applied-first, whatever the span.
	catalog := testCatalog(1, 2, 3, 4, 5)
	applied := appliedSet(catalog, 1, 2, 3, 4, 5)
	plan, err := BuildPlan(catalog, applied, target(2))
	require.NoError(t, err)

	numbers := planNumbers(plan)
	require.Equal(t, []int{5, 4, 3}, numbers)
	for i := 1; i < len(numbers); i++ {
		assert.Greater(t, numbers[i-1], numbers[i])
	}
}
