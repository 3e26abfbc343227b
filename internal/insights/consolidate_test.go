package insights

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/fmuoria/hiring-agent/internal/jsonval"
)

func TestConsolidate(t *testing.T) {
	tests := []struct {
		name string
		in   []string
		want []string
	}{
		{"Empty", []string{}, []string{}},
		{"No duplicates", []string{"Rec 1", "Rec 2", "Rec 3"}, []string{"Rec 1", "Rec 2", "Rec 3"}},
		{"Duplicates", []string{"Rec 1", "Rec 2", "Rec 1", "Rec 3", "Rec 2"}, []string{"Rec 1", "Rec 2", "Rec 3"}},
		{"Preserves first-seen order", []string{"Rec 3", "Rec 1", "Rec 2", "Rec 1", "Rec 3"}, []string{"Rec 3", "Rec 1", "Rec 2"}},
		{"All duplicates", []string{"Rec 1", "Rec 1", "Rec 1"}, []string{"Rec 1"}},
		{"Near duplicates stay distinct", []string{"Rec 1", "rec 1", "Rec 1 "}, []string{"Rec 1", "rec 1", "Rec 1 "}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Consolidate(tt.in)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, got, Consolidate(got), "consolidate must be idempotent")
		})
	}
}

func TestText(t *testing.T) {
	assert.Equal(t, "a\nb", Text([]string{"a", "b", "a"}))
	assert.Equal(t, "", Text(nil))
}

func TestFromRecords(t *testing.T) {
	records := jsonval.MustParse(`[
		{"Source":"LinkedIn","Recommendation":"Post earlier","Rate":"20%"},
		{"Source":"Referral","action_items":["Raise bonus","- Thank referrers"]},
		{"Source":"Agency","KeyInsight":null}
	]`).Items()

	assert.Equal(t, []string{"Post earlier", "Raise bonus", "Thank referrers"}, FromRecords(records))
}

func TestCollector(t *testing.T) {
	var c Collector
	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.Add("shared")
		}()
	}
	wg.Wait()
	c.Add("other", "shared")

	assert.Equal(t, []string{"shared", "other"}, c.Items())
	assert.Equal(t, "shared\nother", c.Text())
	assert.Equal(t, 2, c.Len())
}
