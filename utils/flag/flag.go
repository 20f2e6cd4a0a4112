/*
flag Package set up cli flags shared across services

Usage:

	Flags listed in this package are shared across boundaries and
	service-agnostic. For service dependent flags please define in their
	respective package. Parse must be called from main after all packages
	had a chance to register their own flags.
*/
package flag

import (
	"flag"
)

const (
	APIServer   = "api_server"
	AlertWorker = "alert_worker"
)

var (
	IsDevelopment bool
	ServiceName   string
)

func init() {
	flag.BoolVar(&IsDevelopment, "dev", true, "set to true if the current run is for development. default value is true")
	flag.StringVar(&ServiceName, "service", APIServer, "'api_server' or 'alert_worker'")
}

// Parse parses all registered flags. Call once from main.
func Parse() {
	flag.Parse()
}
