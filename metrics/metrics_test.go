package metrics

import (
	"errors"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestReloads(t *testing.T) {
	r := New("counter")
	r.Reloaded(1, time.Millisecond)
	r.Reloaded(2, time.Millisecond)
	r.ReloadFailed(errors.New("boom"), time.Millisecond)

	if got := testutil.ToFloat64(r.attempts.WithLabelValues("success")); got != 2 {
		t.Errorf("success = %v, want 2", got)
	}
	if got := testutil.ToFloat64(r.attempts.WithLabelValues("failure")); got != 1 {
		t.Errorf("failure = %v, want 1", got)
	}
	if got := testutil.ToFloat64(r.generation); got != 2 {
		t.Errorf("generation = %v, want 2", got)
	}

	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body := rec.Body.String()
	for _, want := range []string{"reload_attempts_total", `module="counter"`, "reload_duration_seconds_count"} {
		if !strings.Contains(body, want) {
			t.Errorf("metrics output missing %q:\n%s", want, body)
		}
	}
}
