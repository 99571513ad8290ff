package main

import (
	"fmt"
	"os"

	"chosenoffset.com/roomwalk/internal/config"
	"chosenoffset.com/roomwalk/internal/placeholders"
)

func main() {
	fmt.Println("Room Walk Placeholder Asset Generator")
	fmt.Println("=====================================")
	fmt.Println()

	path := ""
	if len(os.Args) > 1 {
		path = os.Args[1]
	}
	cfg, err := config.LoadConfig(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if err := placeholders.Generate(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	fmt.Println()
	fmt.Printf("Done! Placeholder assets are in %s.\n", cfg.Assets.Root)
}
