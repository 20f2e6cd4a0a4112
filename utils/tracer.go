package utils

import (
	"os"

	"github.com/forumjet/alertmux/utils/dotenv"
	"github.com/forumjet/alertmux/utils/flag"
	Logger "github.com/forumjet/alertmux/utils/log"
	"github.com/sirupsen/logrus"
	"gopkg.in/DataDog/dd-trace-go.v1/ddtrace/tracer"
)

// StartTracer starts the Datadog tracer. Call once from main.
func StartTracer() {
	env := "development"
	if os.Getenv("ALERTMUX_ENV") == dotenv.ProdEnv {
		env = "production"
	}

	tracer.Start(
		tracer.WithService(flag.ServiceName),
		tracer.WithEnv(env),
	)

	Logger.Log.WithFields(
		logrus.Fields{"service": flag.ServiceName, "is_development": flag.IsDevelopment},
	).Info("tracer initialized")
}

// Stop tracer, OK to be closed multiple times
func CloseTracer() {
	tracer.Stop()
}
