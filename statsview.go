package main

import (
	"github.com/go-echarts/statsview"
	"github.com/go-echarts/statsview/viewer"
	"github.com/golang/glog"
)

const (
	statsviewAddress = "localhost:12600"
	statsviewPath    = "/debug/statsview"
)

// startStatsview serves runtime charts, pprof is available under /debug/pprof/ on the same address.
func startStatsview() {
	viewer.SetConfiguration(viewer.WithAddr(statsviewAddress))
	mgr := statsview.New()
	go mgr.Start()
	glog.Infof("Runtime statistics at http://%s%s", statsviewAddress, statsviewPath)
}
