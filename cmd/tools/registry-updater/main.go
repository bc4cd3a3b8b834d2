// cmd/tools/registry-updater/main.go
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"khetmitra-workers/pkg/registry"
)

const registryVersion = "1.0.0"

func main() {
	generateCmd := flag.NewFlagSet("generate", flag.ExitOnError)
	generatePath := generateCmd.String("path", "configs/activity-registry.json", "Path to registry file")

	checkCmd := flag.NewFlagSet("check", flag.ExitOnError)
	checkPath := checkCmd.String("path", "configs/activity-registry.json", "Path to registry file")

	if len(os.Args) < 2 {
		help()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "generate":
		generateCmd.Parse(os.Args[2:])
		reg := registry.New(registryVersion, time.Now(), Activities()...)
		if err := reg.Validate(); err != nil {
			fmt.Printf("Registry validation failed: %v\n", err)
			os.Exit(1)
		}
		if err := registry.Save(reg, *generatePath); err != nil {
			fmt.Printf("Error writing registry: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Wrote %d activities to %s\n", len(reg.Activities), *generatePath)

	case "check":
		checkCmd.Parse(os.Args[2:])
		if err := check(*checkPath); err != nil {
			fmt.Printf("Registry check failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("Registry check passed.")

	case "help":
		fallthrough
	default:
		help()
	}
}

// check fails when the file is invalid or out of step with the workers
// compiled into this binary.
func check(path string) error {
	onDisk, err := registry.LoadRegistry(path)
	if err != nil {
		return fmt.Errorf("failed to load registry: %w", err)
	}
	if err := onDisk.Validate(); err != nil {
		return err
	}
	missing, extra := registry.Diff(registry.New(registryVersion, time.Now(), Activities()...), onDisk)
	if len(missing) > 0 || len(extra) > 0 {
		return fmt.Errorf("registry out of date: missing %v, unknown %v", missing, extra)
	}
	return nil
}

func help() {
	fmt.Println(`
Usage: registry-updater <command> [flags]

Commands:
  generate  Write the activity registry from the compiled-in workers
  check     Verify the registry file matches the compiled-in workers
  help      Show this help message

Examples:
  registry-updater generate -path configs/activity-registry.json
  registry-updater check -path configs/activity-registry.json`)
}
