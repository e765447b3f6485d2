package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestVideoJobCounters(t *testing.T) {
	before := testutil.ToFloat64(videoJobsTransitionsTotal.WithLabelValues("completed"))
	IncVideoTransition(" Completed ")
	after := testutil.ToFloat64(videoJobsTransitionsTotal.WithLabelValues("completed"))
	if after-before != 1 {
		t.Errorf("expected label normalisation to hit 'completed', delta=%v", after-before)
	}

	SetActiveLoops(3)
	if got := testutil.ToFloat64(videoActiveLoops); got != 3 {
		t.Errorf("expected active loops gauge 3, got %v", got)
	}
}

func TestSetDBPool(t *testing.T) {
	SetDBPool(PoolStats{Total: 5, Idle: 2, InUse: 3, Max: 10, EmptyAcquires: 7})

	for state, want := range map[string]float64{"total": 5, "idle": 2, "in_use": 3, "max": 10} {
		if got := testutil.ToFloat64(dbPoolConns.WithLabelValues(state)); got != want {
			t.Errorf("expected %s=%v, got %v", state, want, got)
		}
	}
	if got := testutil.ToFloat64(dbPoolEmptyAcquires); got != 7 {
		t.Errorf("expected 7 empty acquires, got %v", got)
	}
}

func TestIncCacheRequest_NormalisesLabels(t *testing.T) {
	before := testutil.ToFloat64(jobCacheLookups.WithLabelValues("video_job", "hit"))
	IncCacheRequest("Video_Job", " HIT")
	if d := testutil.ToFloat64(jobCacheLookups.WithLabelValues("video_job", "hit")) - before; d != 1 {
		t.Errorf("expected one normalised hit, delta=%v", d)
	}
}

func TestMustRegister_Idempotent(t *testing.T) {
	MustRegister()
	MustRegister()
}
