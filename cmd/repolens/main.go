// cmd/repolens/main.go
package main

import (
	cmd "github.com/repolens/repolens/internal/cli"
)

// main starts the repolens CLI application by delegating to the cobra root
// command defined in the cli package.
func main() {
	cmd.Execute()
}
