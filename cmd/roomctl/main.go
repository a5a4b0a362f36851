// Command roomctl is the operator tool for the study rooms API. It mints
// development access tokens and runs the classification and generation
// pipeline from the terminal without a database.
package main

import "os"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
