// Package statsview serves live runtime charts (heap, goroutines, GC pauses)
// over HTTP while an emulation session runs. pprof endpoints are served on
// the same address under /debug/pprof/.
package statsview

import (
	"github.com/go-echarts/statsview"
	"github.com/go-echarts/statsview/viewer"

	"github.com/FabianRolfMatthiasNoll/gbcore/internal/logger"
)

// DefaultAddr is used when Launch is given an empty address.
const DefaultAddr = "localhost:12600"

const path = "/debug/statsview"

// URL returns the chart page for addr.
func URL(addr string) string {
	if addr == "" {
		addr = DefaultAddr
	}
	return "http://" + addr + path
}

// Launch starts the stats server in a new goroutine and returns a function
// that shuts it down.
func Launch(addr string) (stop func()) {
	if addr == "" {
		addr = DefaultAddr
	}
	viewer.SetConfiguration(viewer.WithAddr(addr))
	mgr := statsview.New()
	go func() {
		if err := mgr.Start(); err != nil {
			logger.Logf("statsview", "server stopped: %v", err)
		}
	}()
	logger.Logf("statsview", "stats available at %s", URL(addr))
	return mgr.Stop
}
