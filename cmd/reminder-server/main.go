// Command reminder-server runs the medication reminder daemon.
package main

import "github.com/oshokin/med-reminder/cmd/reminder-server/cmd"

func main() {
	cmd.Execute()
}
