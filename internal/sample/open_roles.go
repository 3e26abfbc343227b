// Package sample generates demo input files for the hiring agents.
package sample

import (
	"encoding/csv"
	"fmt"
	"io"
	"math/rand/v2"
	"sort"
	"strconv"
	"time"
)

// OpenRolesFileName is the name the roles agent matches on
const OpenRolesFileName = "OpenRoles.csv"

// OpenRolesHeader is the CSV header written by WriteCSV
var OpenRolesHeader = []string{
	"RoleName", "Department", "Level", "TargetHeadcount", "FilledCount",
	"OpenPositions", "FillRate", "PostingDate", "Status", "Priority", "DaysOpen",
}

// OpenRole is one job posting
type OpenRole struct {
	RoleName        string
	Department      string
	Level           string
	TargetHeadcount int
	FilledCount     int
	OpenPositions   int
	FillRate        float64
	PostingDate     time.Time
	Status          string
	Priority        string
	DaysOpen        int
}

type roleTemplate struct {
	name, department, level string
	target                  int
}

var roleTemplates = []roleTemplate{
	{"Software Engineer", "Engineering", "Mid", 8},
	{"Senior Software Engineer", "Engineering", "Senior", 5},
	{"Data Scientist", "Data Science", "Mid", 6},
	{"ML Engineer", "Data Science", "Senior", 4},
	{"Product Manager", "Product", "Mid", 3},
	{"DevOps Engineer", "Engineering", "Mid", 4},
	{"Frontend Engineer", "Engineering", "Mid", 5},
	{"Backend Engineer", "Engineering", "Senior", 6},
	{"QA Engineer", "Engineering", "Mid", 3},
	{"Engineering Manager", "Engineering", "Senior", 2},
}

var priorityRank = map[string]int{"High": 1, "Medium": 2, "Low": 3}

// GenerateOpenRoles builds the demo OpenRoles data set. The same seed and
// now always give the same rows.
func GenerateOpenRoles(seed uint64, now time.Time) []OpenRole {
	rng := rand.New(rand.NewPCG(seed, seed))
	day := now.Truncate(24 * time.Hour)

	roles := make([]OpenRole, 0, len(roleTemplates))
	for _, t := range roleTemplates {
		filled := rng.IntN(max(1, t.target-1) + 1)
		open := t.target - filled
		daysOpen := 30 + rng.IntN(91)

		status := "Active"
		if open == 0 {
			status = []string{"Filled", "On Hold"}[rng.IntN(2)]
		}

		priority := "Low"
		switch {
		case float64(open) >= float64(t.target)*0.5:
			priority = "High"
		case open > 0:
			priority = "Medium"
		}

		// a fifth of the roles were just posted
		if rng.Float64() < 0.2 {
			daysOpen = 1 + rng.IntN(7)
			status = "Active"
			priority = "High"
		}

		roles = append(roles, OpenRole{
			RoleName:        t.name,
			Department:      t.department,
			Level:           t.level,
			TargetHeadcount: t.target,
			FilledCount:     filled,
			OpenPositions:   open,
			FillRate:        float64(filled) / float64(t.target) * 100,
			PostingDate:     day.AddDate(0, 0, -daysOpen),
			Status:          status,
			Priority:        priority,
			DaysOpen:        daysOpen,
		})
	}

	sort.SliceStable(roles, func(i, j int) bool {
		pi, pj := priorityRank[roles[i].Priority], priorityRank[roles[j].Priority]
		if pi != pj {
			return pi < pj
		}
		return roles[i].OpenPositions > roles[j].OpenPositions
	})
	return roles
}

// WriteCSV writes roles with OpenRolesHeader
func WriteCSV(w io.Writer, roles []OpenRole) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(OpenRolesHeader); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for _, r := range roles {
		record := []string{
			r.RoleName,
			r.Department,
			r.Level,
			strconv.Itoa(r.TargetHeadcount),
			strconv.Itoa(r.FilledCount),
			strconv.Itoa(r.OpenPositions),
			fmt.Sprintf("%.1f%%", r.FillRate),
			r.PostingDate.Format("2006-01-02"),
			r.Status,
			r.Priority,
			strconv.Itoa(r.DaysOpen),
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("failed to write %s: %w", r.RoleName, err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// Summary is the roll-up printed after generation
type Summary struct {
	Roles           int
	Active          int
	OpenPositions   int
	TargetHeadcount int
	FillRate        float64
}

// Summarize totals the generated roles
func Summarize(roles []OpenRole) Summary {
	s := Summary{Roles: len(roles)}
	filled := 0
	for _, r := range roles {
		if r.Status == "Active" {
			s.Active++
		}
		s.OpenPositions += r.OpenPositions
		s.TargetHeadcount += r.TargetHeadcount
		filled += r.FilledCount
	}
	if s.TargetHeadcount > 0 {
		s.FillRate = float64(filled) / float64(s.TargetHeadcount) * 100
	}
	return s
}
