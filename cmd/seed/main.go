// Command seed replaces the sightings table with fixture data: either the
// embedded demo set or a file previously produced by the seed export.
package main

import (
	"context"
	"flag"
	"log"
	"os"

	"platewatch/internal/config"
	"platewatch/internal/db"
	"platewatch/internal/seed"
)

func main() {
	file := flag.String("file", "", "seed-literal file to load instead of the embedded demo data")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	if err := db.Init(cfg); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	entries := seed.Demo
	if *file != "" {
		data, err := os.ReadFile(*file)
		if err != nil {
			log.Fatalf("Failed to read seed file: %v", err)
		}
		entries, err = seed.Parse(data)
		if err != nil {
			log.Fatalf("Failed to parse seed file: %v", err)
		}
	}

	count, err := seed.Load(context.Background(), db.ORM, entries)
	if err != nil {
		log.Fatalf("Failed to seed database: %v", err)
	}

	log.Printf("Successfully seeded %d license plate sightings.", count)
}
