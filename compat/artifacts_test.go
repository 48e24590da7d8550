package compat

import (
	"slices"
	"testing"

	"github.com/albertocavalcante/go-schemareg/registry"
	"github.com/albertocavalcante/go-schemareg/report"
)

func TestCheckTopics(t *testing.T) {
	prev := registry.TopicMap{
		"orders":  {Topic: "orders.v1"},
		"trades":  {Topics: []string{"trades.v1", "trades.replay"}},
		"quotes":  {Topic: "quotes.v1"},
		"retired": {Topic: "retired.v1"},
	}
	cur := registry.TopicMap{
		"orders": {Topics: []string{"orders.v1"}},
		"trades": {Topics: []string{"trades.replay", "trades.v1"}},
		"quotes": {Topic: "quotes.v1", Topics: []string{"ignored"}},
		"fills":  {Topic: "fills.v1"},
	}

	got := CheckTopics(prev, cur)
	assertIssues(t, got, []want{
		{report.KindTopicMappingRemoved, "retired", "retired.v1"},
		{report.KindTopicReassigned, "trades", "trades.replay"},
	})
	for _, is := range got {
		if is.Subject != TopicsSubject {
			t.Errorf("Subject = %q", is.Subject)
		}
	}

	if got := CheckTopics(nil, cur); len(got) != 0 {
		t.Errorf("new topic mapping produced issues: %v", got)
	}
}

func TestCheckVenues(t *testing.T) {
	tests := []struct {
		name        string
		prev        registry.VenueList
		cur         registry.VenueList
		wantAdded   []string
		wantRemoved []string
	}{
		{
			name: "unchanged",
			prev: registry.VenueList{"XNAS", "XLON"},
			cur:  registry.VenueList{"XLON", "XNAS"},
		},
		{
			name:      "added",
			prev:      registry.VenueList{"XNAS"},
			cur:       registry.VenueList{"XNAS", "XLON", "XTKS"},
			wantAdded: []string{"XLON", "XTKS"},
		},
		{
			name:        "removed",
			prev:        registry.VenueList{"XNAS", "XLON", "XTKS"},
			cur:         registry.VenueList{"XLON"},
			wantRemoved: []string{"XNAS", "XTKS"},
		},
		{
			name:        "swapped",
			prev:        registry.VenueList{"XNAS"},
			cur:         registry.VenueList{"XLON"},
			wantAdded:   []string{"XLON"},
			wantRemoved: []string{"XNAS"},
		},
		{
			name: "no previous",
			cur:  registry.VenueList{"XLON"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := CheckVenues(tt.prev, tt.cur)
			if !slices.Equal(d.Added, tt.wantAdded) {
				t.Errorf("Added = %v, want %v", d.Added, tt.wantAdded)
			}
			if !slices.Equal(d.Removed, tt.wantRemoved) {
				t.Errorf("Removed = %v, want %v", d.Removed, tt.wantRemoved)
			}
			if len(d.Issues) != len(tt.wantRemoved) {
				t.Fatalf("got %d issues, want one per removed venue", len(d.Issues))
			}
			for i, is := range d.Issues {
				if is.Kind != report.KindVenueRemoved || !is.IsError() || is.Value != tt.wantRemoved[i] {
					t.Errorf("issue[%d] = %+v", i, is)
				}
			}
			if d.Compatible() != (len(tt.wantRemoved) == 0) {
				t.Errorf("Compatible() = %v", d.Compatible())
			}
		})
	}
}
