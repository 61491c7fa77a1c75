// Command seed writes the agent seed set to the configured registry storage.
//
// Usage:
//
//	seed [--config config.toml] [--file seed.yaml] [--reset] [--list]
//
// Without --reset an existing document is left untouched.
package main

import (
	"fmt"
	"log"
	"os"

	"github.com/JaimeStill/agent-registry/internal/agents"
	"github.com/JaimeStill/agent-registry/internal/config"
	"github.com/JaimeStill/agent-registry/internal/infrastructure"
	"github.com/spf13/pflag"
)

func main() {
	var (
		configFile = pflag.String("config", config.BaseConfigFile, "Configuration file")
		file       = pflag.StringP("file", "f", "", "External seed file (overrides the built-in set and registry.seed_file)")
		reset      = pflag.Bool("reset", false, "Replace an existing agents document")
		list       = pflag.BoolP("list", "l", false, "Print the seed set without writing")
	)
	pflag.Parse()

	cfg, err := config.LoadFile(*configFile)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	path := cfg.Registry.SeedFile
	if *file != "" {
		path = *file
	}

	seed, err := agents.LoadSeed(path)
	if err != nil {
		log.Fatalf("load seed: %v", err)
	}

	if *list {
		printSeed(seed)
		return
	}

	infra, err := infrastructure.New(cfg)
	if err != nil {
		log.Fatalf("infrastructure: %v", err)
	}
	if err := infra.Start(); err != nil {
		log.Fatalf("start: %v", err)
	}
	defer infra.Lifecycle.Shutdown(cfg.ShutdownTimeoutDuration())

	store := agents.NewStore(infra.Storage, cfg.Registry.Document)

	msg, err := run(infra, store, seed, *reset)
	if err != nil {
		infra.Lifecycle.Shutdown(cfg.ShutdownTimeoutDuration())
		log.Fatalf("seed: %v", err)
	}
	fmt.Println(msg)
}

func printSeed(seed []agents.Agent) {
	fmt.Printf("%d agents:\n", len(seed))
	for _, a := range seed {
		state := "disabled"
		if a.IsEnabled {
			state = "enabled"
		}
		fmt.Printf("  %3d  %-16s %-20s %s\n", a.ID, a.Name, a.Category, state)
	}
}

func run(infra *infrastructure.Infrastructure, store *agents.Store, seed []agents.Agent, reset bool) (string, error) {
	ctx := infra.Context()

	if reset {
		if err := store.Reset(ctx, seed); err != nil {
			return "", err
		}
		return fmt.Sprintf("reset %s with %d agents", store.Key(), len(seed)), nil
	}

	seeded, err := store.Initialize(ctx, seed)
	if err != nil {
		return "", err
	}
	if !seeded {
		return fmt.Sprintf("%s already exists; use --reset to replace it", store.Key()), nil
	}
	return fmt.Sprintf("seeded %s with %d agents", store.Key(), len(seed)), nil
}

func init() {
	pflag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [flags]\n", os.Args[0])
		pflag.PrintDefaults()
	}
}
