package http

import (
	"reflect"
	"testing"

	"github.com/nats-io/nats.go"

	natsadapter "github.com/samirrijal/geogrids/internal/adapters/nats"
)

func activeSubjects(subjects ...string) map[string]*nats.Subscription {
	m := make(map[string]*nats.Subscription, len(subjects))
	for _, s := range subjects {
		m[s] = nil
	}
	return m
}

func TestSupersededBy(t *testing.T) {
	all := natsadapter.SubjectCellsAll
	two := natsadapter.CellSubject(2)
	five := natsadapter.CellSubject(5)

	tests := []struct {
		name    string
		subject string
		active  map[string]*nats.Subscription
		want    []string
	}{
		{"octant replaces catch-all", two, activeSubjects(all), []string{all}},
		{"octants coexist", five, activeSubjects(two), nil},
		{"catch-all replaces octants", all, activeSubjects(two, five), []string{two, five}},
		{"nothing active", two, activeSubjects(), nil},
		{"same subject", all, activeSubjects(all), nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := supersededBy(tt.subject, tt.active)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("supersededBy(%s) = %v, want %v", tt.subject, got, tt.want)
			}
		})
	}
}

func TestWsSubject(t *testing.T) {
	if s, ok := wsSubject(nil); !ok || s != natsadapter.SubjectCellsAll {
		t.Errorf("expected catch-all, got %q %v", s, ok)
	}
	three := 3
	if s, ok := wsSubject(&three); !ok || s != "geogrids.cells.3" {
		t.Errorf("expected octant 3 subject, got %q %v", s, ok)
	}
	eight := 8
	if _, ok := wsSubject(&eight); ok {
		t.Error("expected octant 8 to be rejected")
	}
}
