// Command prism is the CLI front end over the core pipeline: index a
// codebase and query it.
package main

import "github.com/prism-dev/prism/internal/cli"

func main() {
	cli.Execute()
}
