package selector

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"s3fetch/internal/errors"
)

// fixed reference instant so windows are reproducible
var now = time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)

func days(n int) time.Time {
	return now.Add(-time.Duration(n) * 24 * time.Hour)
}

func TestSelect_Scenarios(t *testing.T) {
	listing := []Object{
		{Key: "a.csv", LastModified: days(1), Size: 100},
		{Key: "b.csv", LastModified: days(10), Size: 200},
	}

	tests := []struct {
		name      string
		objects   []Object
		criteria  Criteria
		wantKeys  []string
		wantBytes int64
	}{
		{
			name:      "last five days keeps only the recent object",
			objects:   listing,
			criteria:  Criteria{Mode: ModeLastNDays, Days: 5},
			wantKeys:  []string{"a.csv"},
			wantBytes: 100,
		},
		{
			name:      "exact date keeps only that day",
			objects:   listing,
			criteria:  Criteria{Mode: ModeExactDate, Date: days(10)},
			wantKeys:  []string{"b.csv"},
			wantBytes: 200,
		},
		{
			name:      "name pattern narrows a wide window",
			objects:   listing,
			criteria:  Criteria{Mode: ModeLastNDays, Days: 30, NamePattern: "b"},
			wantKeys:  []string{"b.csv"},
			wantBytes: 200,
		},
		{
			name:      "empty listing yields empty selection",
			objects:   nil,
			criteria:  Criteria{Mode: ModeLastNDays, Days: 5},
			wantKeys:  []string{},
			wantBytes: 0,
		},
		{
			name: "name pattern is case-sensitive",
			objects: []Object{
				{Key: "Report.csv", LastModified: days(1), Size: 50},
				{Key: "report.csv", LastModified: days(1), Size: 60},
			},
			criteria:  Criteria{Mode: ModeLastNDays, Days: 5, NamePattern: "report"},
			wantKeys:  []string{"report.csv"},
			wantBytes: 60,
		},
		{
			name: "zero matches is a valid empty result",
			objects: []Object{
				{Key: "old.csv", LastModified: days(100), Size: 10},
			},
			criteria:  Criteria{Mode: ModeLastNDays, Days: 5},
			wantKeys:  []string{},
			wantBytes: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			selection, err := Select(tt.objects, tt.criteria, now)
			require.NoError(t, err)

			keys := make([]string, 0, len(selection.Objects))
			for _, obj := range selection.Objects {
				keys = append(keys, obj.Key)
			}
			assert.Equal(t, tt.wantKeys, keys)
			assert.Equal(t, tt.wantBytes, selection.TotalBytes)
		})
	}
}

func TestSelect_WindowBoundaries(t *testing.T) {
	t.Run("last-n-days lower bound is inclusive", func(t *testing.T) {
		boundary := now.Add(-5 * 24 * time.Hour)
		listing := []Object{
			{Key: "exact.csv", LastModified: boundary, Size: 1},
			{Key: "just-before.csv", LastModified: boundary.Add(-time.Second), Size: 2},
		}

		selection, err := Select(listing, Criteria{Mode: ModeLastNDays, Days: 5}, now)
		require.NoError(t, err)
		require.Len(t, selection.Objects, 1)
		assert.Equal(t, "exact.csv", selection.Objects[0].Key)
	})

	t.Run("exact-date window is midnight inclusive to next midnight exclusive", func(t *testing.T) {
		day := time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC)
		listing := []Object{
			{Key: "midnight.csv", LastModified: day, Size: 1},
			{Key: "last-second.csv", LastModified: day.Add(24*time.Hour - time.Second), Size: 2},
			{Key: "next-midnight.csv", LastModified: day.Add(24 * time.Hour), Size: 4},
			{Key: "day-before.csv", LastModified: day.Add(-time.Second), Size: 8},
		}

		// The criteria date carries a time-of-day; only the calendar day matters.
		selection, err := Select(listing, Criteria{Mode: ModeExactDate, Date: day.Add(9 * time.Hour)}, now)
		require.NoError(t, err)

		keys := make([]string, 0, len(selection.Objects))
		for _, obj := range selection.Objects {
			keys = append(keys, obj.Key)
		}
		assert.Equal(t, []string{"midnight.csv", "last-second.csv"}, keys)
		assert.Equal(t, int64(3), selection.TotalBytes)
	})
}

func TestSelect_Ordering(t *testing.T) {
	listing := []Object{
		{Key: "c.csv", LastModified: days(1), Size: 1},
		{Key: "a.csv", LastModified: days(3), Size: 2},
		{Key: "b.csv", LastModified: days(1), Size: 4},
		{Key: "d.csv", LastModified: days(2), Size: 8},
	}

	selection, err := Select(listing, Criteria{Mode: ModeLastNDays, Days: 30}, now)
	require.NoError(t, err)

	keys := make([]string, 0, len(selection.Objects))
	for _, obj := range selection.Objects {
		keys = append(keys, obj.Key)
	}
	// Ascending by LastModified; ties broken by key.
	assert.Equal(t, []string{"a.csv", "d.csv", "b.csv", "c.csv"}, keys)

	for i := 1; i < len(selection.Objects); i++ {
		a, b := selection.Objects[i-1], selection.Objects[i]
		assert.False(t, b.LastModified.Before(a.LastModified))
		if a.LastModified.Equal(b.LastModified) {
			assert.Less(t, a.Key, b.Key)
		}
	}
}

func TestSelect_PureFunction(t *testing.T) {
	listing := []Object{
		{Key: "z.csv", LastModified: days(1), Size: 1},
		{Key: "a.csv", LastModified: days(2), Size: 2},
		{Key: "m.csv", LastModified: days(3), Size: 4},
	}
	input := make([]Object, len(listing))
	copy(input, listing)

	criteria := Criteria{Mode: ModeLastNDays, Days: 30}

	first, err := Select(input, criteria, now)
	require.NoError(t, err)
	second, err := Select(input, criteria, now)
	require.NoError(t, err)

	// Deterministic: identical inputs, identical output.
	assert.Equal(t, first, second)

	// Idempotent over the input: the listing is never mutated.
	assert.Equal(t, listing, input)
}

func TestSelect_SumInvariant(t *testing.T) {
	listing := []Object{
		{Key: "a", LastModified: days(1), Size: 123},
		{Key: "b", LastModified: days(2), Size: 456},
		{Key: "c", LastModified: days(40), Size: 789},
	}

	selection, err := Select(listing, Criteria{Mode: ModeLastNDays, Days: 7}, now)
	require.NoError(t, err)

	var sum int64
	for _, obj := range selection.Objects {
		sum += obj.Size
	}
	assert.Equal(t, sum, selection.TotalBytes)
}

func TestCriteria_Validate(t *testing.T) {
	tests := []struct {
		name     string
		criteria Criteria
		wantErr  bool
	}{
		{
			name:     "positive days is valid",
			criteria: Criteria{Mode: ModeLastNDays, Days: 1},
		},
		{
			name:     "zero days is rejected",
			criteria: Criteria{Mode: ModeLastNDays, Days: 0},
			wantErr:  true,
		},
		{
			name:     "negative days is rejected",
			criteria: Criteria{Mode: ModeLastNDays, Days: -3},
			wantErr:  true,
		},
		{
			name:     "exact date is valid",
			criteria: Criteria{Mode: ModeExactDate, Date: now},
		},
		{
			name:     "zero date is rejected",
			criteria: Criteria{Mode: ModeExactDate},
			wantErr:  true,
		},
		{
			name:     "unknown mode is rejected",
			criteria: Criteria{Mode: "sometime"},
			wantErr:  true,
		},
		{
			name:     "empty mode is rejected",
			criteria: Criteria{},
			wantErr:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.criteria.Validate()
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.IsInvalidCriteria(err))
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestSelect_InvalidCriteriaAborts(t *testing.T) {
	listing := []Object{{Key: "a.csv", LastModified: days(1), Size: 100}}

	selection, err := Select(listing, Criteria{Mode: ModeLastNDays, Days: 0}, now)
	require.Error(t, err)
	assert.True(t, errors.IsInvalidCriteria(err))
	assert.Empty(t, selection.Objects)
	assert.Zero(t, selection.TotalBytes)
}
