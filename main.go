// The main package for the vmgdwatch executable.
package main

import "github.com/vmgdwatch/scraper/cmd"

func main() {
	cmd.Execute()
}
