package main

import (
	"github.com/mapstead/skiptrace/internal/server"
	"github.com/mapstead/skiptrace/internal/util"
	"github.com/mapstead/skiptrace/pkg/logger"
	"github.com/mapstead/skiptrace/pkg/logger/console"
)

func main() {
	util.LoadEnv()

	debug := util.GetEnvBool("DEBUG", false)

	consoleLogger := console.New(console.Params{
		Debug: debug,
	})
	logger.Init(consoleLogger)

	server.Init()
}
