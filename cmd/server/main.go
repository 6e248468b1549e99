package main

import (
	"flag"
	"log"

	"casasmart/internal/app"
)

// @title           Casa Smart API
// @version         1.0
// @description     Back office and customer portal for smart-home installations.
// @BasePath        /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	configPath := flag.String("config", "config/config.yaml", "path to the YAML config")
	flag.Parse()

	if err := app.Run(*configPath); err != nil {
		log.Fatalf("server: %v", err)
	}
}
