package main

import (
	"log"

	"github.com/appdotbuilder/isp-helpdesk-rfo/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		log.Fatal(err)
	}
}
