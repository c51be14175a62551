package metrics_test

import (
	"errors"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"odyssey_gateway/internal/pkg/metrics"
)

// sampleValues sums counter values per metric family.
func sampleValues(m *metrics.Metrics) map[string]float64 {
	families, err := m.Registry().Gather()
	So(err, ShouldBeNil)
	out := make(map[string]float64)
	for _, f := range families {
		for _, metric := range f.GetMetric() {
			if c := metric.GetCounter(); c != nil {
				out[f.GetName()] += c.GetValue()
			}
		}
	}
	return out
}

func TestMetrics(t *testing.T) {
	Convey("Given fresh collectors", t, func() {
		m := metrics.New()

		Convey("Uploads are counted by result and successful bytes are summed", func() {
			m.RecordUpload("image/png", 100, nil)
			m.RecordUpload("image/png", 50, errors.New("fail"))

			values := sampleValues(m)
			So(values["odyssey_gateway_arweave_uploads_total"], ShouldEqual, float64(2))
			So(values["odyssey_gateway_arweave_uploaded_bytes_total"], ShouldEqual, float64(100))
		})

		Convey("HTTP requests and SDK errors are exported", func() {
			m.ObserveHTTPRequest("/api/get-stage", "GET", "500", 20*time.Millisecond)
			m.RecordSDKError("get_stage")

			values := sampleValues(m)
			So(values["odyssey_gateway_http_requests_total"], ShouldEqual, float64(1))
			So(values["odyssey_gateway_odyssey_errors_total"], ShouldEqual, float64(1))
		})
	})

	Convey("A nil Metrics is a no-op", t, func() {
		var m *metrics.Metrics
		So(func() {
			m.RecordUpload("x", 1, nil)
			m.RecordSDKError("x")
			m.ObserveHTTPRequest("r", "GET", "200", time.Second)
		}, ShouldNotPanic)
	})
}
