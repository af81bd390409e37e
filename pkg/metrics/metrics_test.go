package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecordTransition(t *testing.T) {
	before := testutil.ToFloat64(reportTransitionsTotal.WithLabelValues("pending", "taken"))
	RecordTransition("pending", "taken")
	assert.Equal(t, before+1, testutil.ToFloat64(reportTransitionsTotal.WithLabelValues("pending", "taken")))
}

func TestRecordScannerRun(t *testing.T) {
	reverted := testutil.ToFloat64(scannerRevertedTotal)
	failed := testutil.ToFloat64(scannerFailuresTotal)

	RecordScannerRun(3, 1, 20*time.Millisecond)

	assert.Equal(t, reverted+3, testutil.ToFloat64(scannerRevertedTotal))
	assert.Equal(t, failed+1, testutil.ToFloat64(scannerFailuresTotal))
}

func TestRecordNotification(t *testing.T) {
	before := testutil.ToFloat64(notificationsTotal.WithLabelValues("otp", "failed"))
	RecordNotification("otp", false)
	assert.Equal(t, before+1, testutil.ToFloat64(notificationsTotal.WithLabelValues("otp", "failed")))
}
