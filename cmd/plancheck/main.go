// Command plancheck asks the entitlement service what an account may do.
//
//	plancheck status --token T --business B
//	plancheck can clients --token T --business B
//
// "can" exits with status 2 when the plan denies the action.
package main

import (
	"errors"
	"fmt"
	"os"
)

// Version is set at build time with -ldflags.
var Version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		if errors.Is(err, errDenied) {
			os.Exit(2)
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
