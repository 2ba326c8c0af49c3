// Command brewctl is the Brewlog admin CLI.
package main

import "brewlog/cmd/brewctl/commands"

func main() {
	commands.Execute()
}
