package main

import (
	"errors"
	"fmt"
	"log"
	"os"

	"github.com/vantix/vantix/internal/vantixcli"
)

func main() {
	if err := vantixcli.Execute(os.Args[1:]); err != nil {
		if errors.Is(err, vantixcli.ErrUsage) {
			fmt.Fprintln(os.Stderr, err)
			fmt.Fprintln(os.Stderr)
			vantixcli.PrintUsage(os.Stderr)
			os.Exit(2)
		}
		log.Fatal(err)
	}
}
