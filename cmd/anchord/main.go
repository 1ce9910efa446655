package main

import (
	"log"
	"os"

	"github.com/viant/cloudanchor"
)

func main() {
	if err := cloudanchor.Run(os.Args[1:]); err != nil {
		log.Fatal(err)
	}
}
