package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/leighaderango/thermal-images/internal/config"
	"github.com/leighaderango/thermal-images/internal/imaging"
	"github.com/leighaderango/thermal-images/internal/pipeline"
	"github.com/leighaderango/thermal-images/internal/scale"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "--version", "-v", "version":
			fmt.Printf("thermal-scan %s\n", Version)
			fmt.Printf("  Build time: %s\n", BuildTime)
			fmt.Printf("  Git commit: %s\n", GitCommit)
			return
		}
	}

	dir := flag.String("dir", "", "directory of thermal captures to process (required)")
	configPath := flag.String("config", "", "YAML config file; defaults are used when omitted")
	out := flag.String("out", "", "output JSON file; stdout when omitted")
	workers := flag.Int("workers", 0, "concurrent captures; overrides the config when > 0")
	flag.Parse()

	// Results go to stdout, diagnostics to stderr.
	log.SetOutput(os.Stderr)
	log.SetFlags(log.Ldate | log.Ltime)

	if *dir == "" {
		flag.Usage()
		os.Exit(2)
	}

	cfg := config.Default()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			log.Fatalf("Config error: %v", err)
		}
		cfg = loaded
	}
	if *workers > 0 {
		cfg.Workers = *workers
	}

	paths, err := imaging.ListCaptures(*dir)
	if err != nil {
		log.Fatalf("Failed to list captures: %v", err)
	}
	if len(paths) == 0 {
		log.Fatalf("No captures found in %s", *dir)
	}

	cache := imaging.NewCache()
	sources := make([]pipeline.Source, 0, len(paths))
	for _, path := range paths {
		img, err := cache.Load(path)
		if err != nil {
			log.Fatalf("Failed to load %s: %v", path, err)
		}
		sources = append(sources, pipeline.Source{Name: path, Image: img})
	}

	reader := &scale.TesseractReader{
		TessdataPrefix: cfg.TessdataPrefix,
		Language:       cfg.Language,
		Upscale:        cfg.OCRUpscale,
	}

	p, err := pipeline.New(cfg, reader)
	if err != nil {
		log.Fatalf("Pipeline error: %v", err)
	}

	records, err := p.Run(context.Background(), sources)
	if err != nil {
		log.Fatalf("Batch failed: %v", err)
	}

	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		log.Fatalf("Failed to encode results: %v", err)
	}
	data = append(data, '\n')

	if *out == "" {
		os.Stdout.Write(data)
		return
	}
	if err := os.WriteFile(*out, data, 0644); err != nil {
		log.Fatalf("Failed to write %s: %v", *out, err)
	}
	log.Printf("Wrote %d records to %s", len(records), *out)
}
