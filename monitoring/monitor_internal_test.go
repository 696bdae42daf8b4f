package monitoring

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/orbitsync/simulation"
)

func get(m *Monitor, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	m.Router().ServeHTTP(rec, req)

	return rec
}

var _ = Describe("Monitor", func() {
	var (
		m      *Monitor
		driver *simulation.Driver
	)

	BeforeEach(func() {
		session, err := simulation.MakeBuilder().
			WithPeriods(1000, 2000, 3000).
			Build()
		Expect(err).NotTo(HaveOccurred())

		driver = simulation.NewDriver(session, 16)
		m = NewMonitor()
		m.RegisterDriver(driver)
	})

	It("should fall back to a random port for reserved ports", func() {
		Expect(m.WithPortNumber(80).portNumber).To(Equal(0))
		Expect(m.WithPortNumber(8080).portNumber).To(Equal(8080))
	})

	It("should refuse requests without a driver", func() {
		rec := get(NewMonitor(), "/api/now")
		Expect(rec.Code).To(Equal(http.StatusServiceUnavailable))
	})

	It("should report the current time", func() {
		for i := 0; i < 3; i++ {
			_, err := driver.Tick()
			Expect(err).NotTo(HaveOccurred())
		}

		rec := get(m, "/api/now")

		Expect(rec.Code).To(Equal(http.StatusOK))
		var rsp nowRsp
		Expect(json.Unmarshal(rec.Body.Bytes(), &rsp)).To(Succeed())
		Expect(rsp.Now).To(Equal(48.0))
		Expect(rsp.Frames).To(Equal(uint64(3)))
		Expect(rsp.Paused).To(BeFalse())
	})

	It("should pause, continue and reset the driver", func() {
		Expect(get(m, "/api/pause").Code).To(Equal(http.StatusOK))
		Expect(driver.IsPaused()).To(BeTrue())

		Expect(get(m, "/api/continue").Code).To(Equal(http.StatusOK))
		Expect(driver.IsPaused()).To(BeFalse())

		_, err := driver.Tick()
		Expect(err).NotTo(HaveOccurred())
		Expect(get(m, "/api/reset").Code).To(Equal(http.StatusOK))
		Expect(driver.Now()).To(BeZero())
	})

	It("should list the order parameter history", func() {
		_, err := driver.Tick()
		Expect(err).NotTo(HaveOccurred())

		rec := get(m, "/api/order_parameter?window=short")

		Expect(rec.Code).To(Equal(http.StatusOK))
		var rsp orderParameterRsp
		Expect(json.Unmarshal(rec.Body.Bytes(), &rsp)).To(Succeed())
		Expect(rsp.Window).To(Equal("short"))
		Expect(rsp.Capacity).To(Equal(500))
		Expect(rsp.Values).To(HaveLen(1))
		Expect(rsp.Values[0]).To(BeNumerically("~", 1, 1e-9))
	})

	It("should default to the long history", func() {
		rec := get(m, "/api/order_parameter")

		var rsp orderParameterRsp
		Expect(json.Unmarshal(rec.Body.Bytes(), &rsp)).To(Succeed())
		Expect(rsp.Window).To(Equal("long"))
		Expect(rsp.Capacity).To(Equal(450))
	})

	It("should reject unknown windows", func() {
		rec := get(m, "/api/order_parameter?window=medium")
		Expect(rec.Code).To(Equal(http.StatusBadRequest))
	})

	It("should report the prediction", func() {
		rec := get(m, "/api/prediction")

		Expect(rec.Code).To(Equal(http.StatusOK))
		var rsp predictionRsp
		Expect(json.Unmarshal(rec.Body.Bytes(), &rsp)).To(Succeed())
		Expect(rsp.Status).To(Equal("finite"))
		Expect(*rsp.DurationMs).To(BeNumerically("~", 6000, 1e-6))
		Expect(rsp.Formatted).To(Equal("6s 000ms"))
		Expect(rsp.Periods).To(Equal([]float64{1000, 2000, 3000}))
	})

	It("should report a missing prediction as null", func() {
		driver.Inspect(func(s *simulation.Session) {
			Expect(s.SetPeriods([]float64{1000, 0, 3000})).To(Succeed())
		})

		rec := get(m, "/api/prediction")

		var rsp predictionRsp
		Expect(json.Unmarshal(rec.Body.Bytes(), &rsp)).To(Succeed())
		Expect(rsp.DurationMs).To(BeNil())
		Expect(rsp.NextReset).To(Equal(simulation.NoPredictionText))
	})

	It("should serialize the session", func() {
		rec := get(m, "/api/session")

		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(rec.Body.Len()).To(BeNumerically(">", 0))
	})

	It("should reject malformed field requests", func() {
		rec := get(m, "/api/field/"+url.PathEscape("{not json"))
		Expect(rec.Code).To(Equal(http.StatusBadRequest))
	})

	It("should list progress bars", func() {
		bar := m.CreateProgressBar("Simulation", 10)
		bar.IncrementFinished(4)

		rec := get(m, "/api/progress")

		var rsp []progressBarRsp
		Expect(json.Unmarshal(rec.Body.Bytes(), &rsp)).To(Succeed())
		Expect(rsp).To(HaveLen(1))
		Expect(rsp[0].Name).To(Equal("Simulation"))
		Expect(rsp[0].Finished).To(Equal(uint64(4)))

		m.CompleteProgressBar(bar)
		Expect(m.progressBars).To(BeEmpty())
	})

	It("should report resource usage", func() {
		rec := get(m, "/api/resource")

		Expect(rec.Code).To(Equal(http.StatusOK))
		var rsp resourceRsp
		Expect(json.Unmarshal(rec.Body.Bytes(), &rsp)).To(Succeed())
		Expect(rsp.MemorySize).To(BeNumerically(">", 0))
	})

	It("should serve the dashboard", func() {
		rec := get(m, "/")

		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(rec.Body.String()).To(ContainSubstring("<!DOCTYPE html>"))
	})
})
