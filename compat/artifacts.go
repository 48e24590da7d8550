package compat

import (
	"github.com/albertocavalcante/go-schemareg/registry"
	"github.com/albertocavalcante/go-schemareg/report"
)

// Subjects used for registry-wide artifacts.
const (
	TopicsSubject = "topics"
	VenuesSubject = "venues"
)

// CheckTopics compares two topic mappings. Reassigning the primary topic of
// an existing schema id and dropping a mapping are both breaking. New ids are
// compatible.
func CheckTopics(prev, cur registry.TopicMap) []report.Issue {
	if prev == nil {
		return nil
	}

	var issues []report.Issue
	for _, id := range prev.IDs() {
		was := prev[id].Primary()
		mapping, ok := cur[id]
		if !ok {
			issues = append(issues,
				report.Errorf(TopicsSubject, report.KindTopicMappingRemoved, "topic mapping for %s was removed", id).
					WithField(id).
					WithValue(was))
			continue
		}
		if now := mapping.Primary(); now != was {
			issues = append(issues,
				report.Errorf(TopicsSubject, report.KindTopicReassigned, "topic for %s changed from %s to %s", id, was, now).
					WithField(id).
					WithValue(now))
		}
	}
	return issues
}

// VenueDiff is the result of comparing two venue registries.
type VenueDiff struct {
	Added   []string
	Removed []string

	// Issues holds one venue-removed error per removed venue.
	Issues []report.Issue
}

// Compatible reports whether no venue was removed.
func (d VenueDiff) Compatible() bool {
	return len(d.Removed) == 0
}

// CheckVenues compares two venue registries, keeping registry order.
// Additions are compatible and only listed in Added.
func CheckVenues(prev, cur registry.VenueList) VenueDiff {
	var d VenueDiff
	if prev == nil {
		return d
	}

	for _, v := range prev {
		if !cur.Contains(v) {
			d.Removed = append(d.Removed, v)
			d.Issues = append(d.Issues,
				report.Errorf(VenuesSubject, report.KindVenueRemoved, "venue %s was removed", v).WithValue(v))
		}
	}
	for _, v := range cur {
		if !prev.Contains(v) {
			d.Added = append(d.Added, v)
		}
	}
	return d
}
