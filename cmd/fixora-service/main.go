package main

import (
	"log"

	"github.com/fixora/fixora-service/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		log.Fatal(err)
	}
}
