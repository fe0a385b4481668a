// Command ytsum summarizes YouTube videos from the terminal.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
)

func main() {
	cc := newCommandContext()
	err := newRootCommand(cc).Execute()
	cc.close()
	if err != nil {
		if !errors.Is(err, context.Canceled) {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
		os.Exit(1)
	}
}
