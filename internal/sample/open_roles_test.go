package sample

import (
	"bytes"
	"encoding/csv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2024, 6, 1, 15, 30, 0, 0, time.UTC)

func TestGenerateOpenRolesDeterministic(t *testing.T) {
	assert.Equal(t, GenerateOpenRoles(42, now), GenerateOpenRoles(42, now))
}

func TestGenerateOpenRolesInvariants(t *testing.T) {
	for seed := uint64(0); seed < 50; seed++ {
		roles := GenerateOpenRoles(seed, now)
		require.Len(t, roles, len(roleTemplates))

		for i, r := range roles {
			assert.Equal(t, r.TargetHeadcount, r.FilledCount+r.OpenPositions, r.RoleName)
			assert.GreaterOrEqual(t, r.OpenPositions, 1, "at least one position stays open")
			assert.Contains(t, []string{"Active", "Filled", "On Hold"}, r.Status)
			assert.InDelta(t, float64(r.FilledCount)/float64(r.TargetHeadcount)*100, r.FillRate, 1e-9)
			assert.Equal(t, now.Truncate(24*time.Hour).AddDate(0, 0, -r.DaysOpen), r.PostingDate)

			if r.DaysOpen > 7 {
				assert.GreaterOrEqual(t, r.DaysOpen, 30)
				assert.LessOrEqual(t, r.DaysOpen, 120)
			}

			if i > 0 {
				prev := roles[i-1]
				pr, cr := priorityRank[prev.Priority], priorityRank[r.Priority]
				assert.LessOrEqual(t, pr, cr, "sorted by priority")
				if pr == cr {
					assert.GreaterOrEqual(t, prev.OpenPositions, r.OpenPositions, "then by open positions")
				}
			}
		}
	}
}

func TestWriteCSV(t *testing.T) {
	roles := []OpenRole{{
		RoleName:        "QA Engineer",
		Department:      "Engineering",
		Level:           "Mid",
		TargetHeadcount: 3,
		FilledCount:     1,
		OpenPositions:   2,
		FillRate:        100.0 / 3,
		PostingDate:     time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC),
		Status:          "Active",
		Priority:        "High",
		DaysOpen:        61,
	}}

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, roles))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, OpenRolesHeader, records[0])
	assert.Equal(t, []string{"QA Engineer", "Engineering", "Mid", "3", "1", "2", "33.3%", "2024-04-01", "Active", "High", "61"}, records[1])
}

func TestSummarize(t *testing.T) {
	s := Summarize([]OpenRole{
		{Status: "Active", TargetHeadcount: 4, FilledCount: 1, OpenPositions: 3},
		{Status: "On Hold", TargetHeadcount: 4, FilledCount: 3, OpenPositions: 1},
	})
	assert.Equal(t, Summary{Roles: 2, Active: 1, OpenPositions: 4, TargetHeadcount: 8, FillRate: 50}, s)

	assert.Zero(t, Summarize(nil).FillRate)
}
