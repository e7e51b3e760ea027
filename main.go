package main

import (
	"flag"
	"log"
	"path/filepath"

	"composer/internal/app"
	"composer/internal/config"
)

var version = "dev"

func main() {
	configPath := flag.String("config", filepath.Join(config.DefaultDataDir(), config.FileName), "path to composer.yaml")
	flag.Parse()

	if err := app.ServeMCP(*configPath, version); err != nil {
		log.Fatalf("composer: %v", err)
	}
}
