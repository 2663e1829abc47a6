package main

import (
	"log"
	"os"
)

func main() {
	app := newApp(os.Stdin, os.Stdout, os.Stderr)
	if err := app.Run(os.Args); err != nil {
		log.SetFlags(0)
		log.Fatal(err)
	}
}
