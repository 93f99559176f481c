package metrics

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestOutcome(t *testing.T) {
	if Outcome(0) != "no_match" || Outcome(2) != "match" {
		t.Fatalf("unexpected outcomes %q %q", Outcome(0), Outcome(2))
	}
}

func TestHandlerExposesCounters(t *testing.T) {
	MatchesComputed.Inc()
	RoadmapsSelected.WithLabelValues(Outcome(1)).Inc()
	CatalogReloads.WithLabelValues("unchanged").Inc()
	ObserveRequest("GET", "", 200, 5*time.Millisecond)

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body, _ := io.ReadAll(rec.Body)
	for _, name := range []string{
		"pathway_matches_computed_total",
		`pathway_roadmaps_selected_total{outcome="match"}`,
		`pathway_catalog_reloads_total{result="unchanged"}`,
		`route="unmatched"`,
	} {
		if !strings.Contains(string(body), name) {
			t.Errorf("expected %s in metrics output", name)
		}
	}
}
