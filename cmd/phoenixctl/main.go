// Command phoenixctl runs the bundled MapReduce example applications
// from the command line.
package main

import "github.com/perfwave/phoenix-go/cmd/phoenixctl/cmd"

func main() {
	cmd.Execute()
}
