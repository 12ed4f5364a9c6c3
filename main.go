package main

import "github.com/crxaudit/crxaudit-cli/cmd"

// execCmd is indirected so tests can intercept the CLI entry point.
var execCmd = cmd.Execute

func main() {
	execCmd()
}
