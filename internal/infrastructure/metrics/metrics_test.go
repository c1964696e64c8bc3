package metrics

import (
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestObserveStore(t *testing.T) {
	ok := StoreOperationsTotal.WithLabelValues("relation", "Exists", "ok")
	failed := StoreOperationsTotal.WithLabelValues("relation", "Exists", "error")
	okBefore, failedBefore := testutil.ToFloat64(ok), testutil.ToFloat64(failed)

	ObserveStore("relation", "Exists")(nil)
	ObserveStore("relation", "Exists")(errors.New("down"))

	assert.Equal(t, okBefore+1, testutil.ToFloat64(ok))
	assert.Equal(t, failedBefore+1, testutil.ToFloat64(failed))
}

func TestRecordBreakerState(t *testing.T) {
	RecordBreakerState("relation-store", 2)
	assert.Equal(t, float64(2), testutil.ToFloat64(BreakerState.WithLabelValues("relation-store")))
}

func TestRecordToggleAndHTTP(t *testing.T) {
	c := RelationTogglesTotal.WithLabelValues("VIDEO_LIKE", "true")
	before := testutil.ToFloat64(c)
	RecordToggle("VIDEO_LIKE", true)
	assert.Equal(t, before+1, testutil.ToFloat64(c))

	h := HTTPRequestsTotal.WithLabelValues(http.MethodGet, "/feed/{kind}", "200")
	before = testutil.ToFloat64(h)
	RecordHTTPRequest(http.MethodGet, "/feed/{kind}", http.StatusOK, 3*time.Millisecond)
	assert.Equal(t, before+1, testutil.ToFloat64(h))
}
