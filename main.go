package main

import (
	"github.com/AndyVoronov/ObschiySbor-sub000/core/logger"
	"github.com/AndyVoronov/ObschiySbor-sub000/core/server"
)

func main() {
	if err := server.Run(); err != nil {
		logger.Fatal("run server error", err)
	}
}
