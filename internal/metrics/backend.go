package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Result label values.
const (
	ResultOK    = "ok"
	ResultError = "error"
)

var (
	backendInit = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "backend",
		Name:      "init_total",
		Help:      "Backend initialization attempts by outcome",
	}, []string{"backend", "result"})

	backendDevices = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "backend",
		Name:      "devices",
		Help:      "Devices reported by the last probe",
	}, []string{"backend", "kind"})

	backendDeviceOpen = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "backend",
		Name:      "device_open_total",
		Help:      "Device open attempts by outcome",
	}, []string{"backend", "result"})

	// Last probe counts, keyed by backend then kind.
	deviceCache   = make(map[string]map[string]int)
	deviceCacheMu sync.RWMutex
)

func result(ok bool) string {
	if ok {
		return ResultOK
	}
	return ResultError
}

// RecordBackendInit counts one Init outcome.
func RecordBackendInit(backend string, ok bool) {
	backendInit.WithLabelValues(backend, result(ok)).Inc()
}

// RecordDeviceOpen counts one CreateDevice outcome.
func RecordDeviceOpen(backend string, err error) {
	backendDeviceOpen.WithLabelValues(backend, result(err == nil)).Inc()
}

// SetBackendDevices stores the device count of the latest probe.
func SetBackendDevices(backend, kind string, count int) {
	backendDevices.WithLabelValues(backend, kind).Set(float64(count))

	deviceCacheMu.Lock()
	defer deviceCacheMu.Unlock()
	kinds, ok := deviceCache[backend]
	if !ok {
		kinds = make(map[string]int)
		deviceCache[backend] = kinds
	}
	kinds[kind] = count
}

// GetBackendDevices returns the latest probe count and whether one was recorded.
func GetBackendDevices(backend, kind string) (int, bool) {
	deviceCacheMu.RLock()
	defer deviceCacheMu.RUnlock()
	count, ok := deviceCache[backend][kind]
	return count, ok
}

// DeleteBackendMetrics removes the device gauges of a backend.
func DeleteBackendMetrics(backend string) {
	deviceCacheMu.Lock()
	for kind := range deviceCache[backend] {
		backendDevices.DeleteLabelValues(backend, kind)
	}
	delete(deviceCache, backend)
	deviceCacheMu.Unlock()
}

// BackendInits returns the init counter for one backend and result.
func BackendInits(backend, result string) prometheus.Counter {
	return backendInit.WithLabelValues(backend, result)
}

// DeviceOpens returns the device open counter for one backend and result.
func DeviceOpens(backend, result string) prometheus.Counter {
	return backendDeviceOpen.WithLabelValues(backend, result)
}

var deviceNodeChanges = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: namespace,
	Subsystem: "devices",
	Name:      "node_changes_total",
	Help:      "Sound device nodes added or removed",
}, []string{"action"})

// RecordDeviceNodeChange counts one device node appearing or disappearing.
func RecordDeviceNodeChange(action string) {
	deviceNodeChanges.WithLabelValues(action).Inc()
}
