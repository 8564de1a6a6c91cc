package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

// printlnFn and printFn are test seams for user-facing output. In tests,
// replace them with stubs.
var (
	printlnFn = fmt.Println
	printFn   = fmt.Print
)

// execIface is the command surface the REPL needs. The real App satisfies
// it; tests can provide a lightweight stub.
type execIface interface {
	Exec(ctx context.Context, cmd string, args []string) error
	Help() string
}

// runREPL starts the read-eval-print loop of the wpk console.
//
// It reads a line from reader, parses the first token as the command and
// dispatches it with the remaining tokens as arguments. The loop exits on
// EOF, when ctx is cancelled, or when the user types "exit" or "quit".
//
// Command errors are printed and the loop continues.
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader) {
	for {
		if ctx.Err() != nil {
			return
		}
		printFn(fmt.Sprintf("wpk (%s)> ", statusFn()))

		line, err := reader.ReadString('\n')
		if err != nil && !(errors.Is(err, io.EOF) && line != "") {
			printlnFn()
			return
		}

		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		switch cmd {
		case "help":
			printlnFn(a.Help())

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			err := a.Exec(ctx, cmd, args)
			var ue usageError
			switch {
			case err == nil:
			case errors.Is(err, errUnknownCommand):
				printlnFn("Unknown command:", cmd)
			case errors.As(err, &ue):
				printlnFn("Usage:", ue.usage)
			default:
				printlnFn("error:", err)
			}
		}
	}
}
