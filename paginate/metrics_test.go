package paginate

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMetrics_NilSafe(t *testing.T) {
	var m *Metrics
	m.lookup("articles", OutcomeHit)
	m.populate("articles", PopulateStored)
	m.listCall("articles")
}

func TestNewMetrics_Registers(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := NewMetrics(reg, "app")
	if err != nil {
		t.Fatalf("NewMetrics() error = %v", err)
	}

	m.lookup("articles", OutcomeMiss)
	m.listCall("articles")

	if n := testutil.CollectAndCount(m.lookups, "app_pager_cache_lookups_total"); n != 1 {
		t.Errorf("expected 1 lookup series, got %d", n)
	}
	if n := testutil.CollectAndCount(m.listCalls, "app_pager_list_calls_total"); n != 1 {
		t.Errorf("expected 1 list call series, got %d", n)
	}
}
