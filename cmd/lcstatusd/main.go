package main

import (
	"log"

	"github.com/Rudrajiii/leetcode-status-tracker-extension/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		log.Fatal(err)
	}
}
