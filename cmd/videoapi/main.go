package main

import (
	"fmt"
	"os"

	"github.com/ltrain81/TwelveLabs-on-bedrock-demo/cmd/videoapi/cmd"
	"github.com/ltrain81/TwelveLabs-on-bedrock-demo/internal/config"
)

func main() {
	if err := config.LoadEnv(); err != nil {
		fmt.Fprintf(os.Stderr, "configuration warning: %v\n", err)
	}

	cmd.Execute()
}
