package main

import (
	"os"

	_ "github.com/floofybot/floofy/internal/modules/core"
	_ "github.com/floofybot/floofy/internal/modules/music_player"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
