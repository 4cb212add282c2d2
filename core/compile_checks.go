package core

import (
	"net/http"

	glog "github.com/goliatone/go-logger/glog"
)

var (
	_ http.Handler = (*Router)(nil)
	_ Service      = ServiceFunc{}

	_ Logger         = glog.Nop()
	_ LoggerProvider = glog.ProviderFromLogger(glog.Nop())
)
