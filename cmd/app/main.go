package main

import (
	"shear/config"
	"shear/di"
	"shear/shared/logger"
)

// @title Shear Booking API
// @version 1.0
// @description Salon appointment booking backend: availability, validation and conflict-safe appointment lifecycle.
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	cfg := config.Get()

	logger.InitLogger()

	logger.SetLogLevel(cfg)

	http := di.InitializeService()
	http.Serve()
}
