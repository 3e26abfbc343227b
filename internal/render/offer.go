package render

import (
	"fmt"

	"github.com/fmuoria/hiring-agent/internal/jsonval"
)

var reasonColumns = map[string]string{
	"reason":               "Reason",
	"count":                "Count",
	"percentage":           "% of Declines",
	"avgDaysInPipeline":    "Avg Days in Pipeline",
	"avgSalaryExpectation": "Avg Salary Expectation",
	"topSource":            "Top Source",
}

var recentDeclineColumns = map[string]string{
	"candidate":      "Candidate",
	"date":           "Date",
	"reason":         "Reason",
	"daysInPipeline": "Days in Pipeline",
	"source":         "Source",
}

// RenderOfferRejection draws the offer rejection summary: headline counts,
// delay analysis, decline reasons with a count chart, and recent declines.
func RenderOfferRejection(summary jsonval.Value, title string) *View {
	view := &View{Title: firstNonEmpty(title, "Offer Rejection Analysis")}

	declined := field(summary, "totalCandidateDeclined", "0")
	accepted := field(summary, "totalAccepted", "0")
	view.add(Block{
		Kind:  MetricsBlock,
		Title: "Candidate Offer Declines Summary",
		Tiles: [][]Tile{{
			{Label: "Total Offers", Value: field(summary, "totalOffers", "0")},
			{Label: "Candidate Declined", Value: declined, Delta: "-" + declined},
			{Label: "Accepted", Value: accepted, Delta: "+" + accepted},
			{Label: "Decline Rate", Value: field(summary, "declineRate", "0%")},
		}},
	})
	view.notice(LevelInfo, "Analyzing why candidates rejected offers (candidate-initiated declines)")

	diff := 0.0
	if v, ok := summary.Get("delayDifference"); ok {
		diff, _ = ParseNumber(v)
	}
	difference := Tile{Label: "Difference", Value: fmt.Sprintf("%.1f days", diff)}
	if diff != 0 {
		difference.Delta = fmt.Sprintf("%+.1f days", diff)
	}
	view.add(Block{
		Kind:  MetricsBlock,
		Title: "Delay Analysis",
		Tiles: [][]Tile{{
			{Label: "Avg Days (Declined)", Value: field(summary, "avgDaysDeclined", "0")},
			{Label: "Avg Days (Accepted)", Value: field(summary, "avgDaysAccepted", "0")},
			difference,
		}},
	})

	if reasons := objectRows(summary, "reasons"); len(reasons) > 0 {
		rows := renameColumns(reasons, "reason", reasonColumns)
		table := BuildTable(rows, nil)
		if contains(table.Columns, "Reason") && contains(table.Columns, "Count") {
			table.Chart = lenientSeries(rows, "Reason", "Count")
		}
		view.add(Block{Kind: TableBlock, Title: "Top Decline Reasons", Table: table})
	}

	if recent := objectRows(summary, "recent_declines"); len(recent) > 0 {
		rows := renameColumns(recent, "candidate", recentDeclineColumns)
		view.add(Block{Kind: TableBlock, Title: "Recent Candidate Declines (Last 10)", Table: BuildTable(rows, nil)})
	}

	return view
}

func field(obj jsonval.Value, key, fallback string) string {
	v, ok := obj.Get(key)
	if !ok || v.IsNull() {
		return fallback
	}
	return Cell(v)
}

func objectRows(obj jsonval.Value, key string) []jsonval.Value {
	v, _ := obj.Get(key)
	var rows []jsonval.Value
	for _, item := range v.Items() {
		if item.IsObject() {
			rows = append(rows, item)
		}
	}
	return rows
}

// renameColumns relabels keys when the first row carries marker
func renameColumns(rows []jsonval.Value, marker string, names map[string]string) []jsonval.Value {
	if !rows[0].Has(marker) {
		return rows
	}
	out := make([]jsonval.Value, 0, len(rows))
	for _, row := range rows {
		members := make([]jsonval.Member, 0, row.Len())
		for _, m := range row.Members() {
			key := m.Key
			if renamed, ok := names[key]; ok {
				key = renamed
			}
			members = append(members, jsonval.Member{Key: key, Value: m.Value})
		}
		out = append(out, jsonval.ObjectValue(members...))
	}
	return out
}
