package main

import (
	"flag"

	"github.com/EngoEngine/engo"
	"github.com/ScottBrooks/nearfield"
	"github.com/mattn/go-colorable"
	log "github.com/sirupsen/logrus"
)

func main() {
	config := flag.String("config", "sim.yaml", "sim config file")
	duration := flag.Float64("duration", 30, "seconds to run, 0 runs until interrupted")
	watch := flag.Bool("watch", false, "rebuild when the config or motion script changes")
	verbose := flag.Bool("v", false, "debug logging")
	flag.Parse()

	log.SetFormatter(&log.TextFormatter{ForceColors: true})
	log.SetOutput(colorable.NewColorableStdout())
	if *verbose {
		log.SetLevel(log.DebugLevel)
	}

	cfg, err := nearfield.LoadSimConfig(*config)
	if err != nil {
		log.WithError(err).Fatal("unable to load sim config")
	}

	opts := engo.RunOptions{
		Title:        "Nearfield",
		HeadlessMode: true,
		FPSLimit:     30,
	}
	scene := nearfield.SimScene{
		Config:     cfg,
		ConfigPath: *config,
		Duration:   float32(*duration),
		Watch:      *watch,
	}

	engo.Run(opts, &scene)
}
