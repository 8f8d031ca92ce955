// cmd/peekctl/main.go
package main

import (
	"github.com/peekapeak/peekctl/pkg/cli"
)

func main() {
	cli.Execute()
}
