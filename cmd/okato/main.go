package main

import (
	"fmt"
	"log/slog"
	"os"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "import":
		cmdImport(os.Args[2:])
	case "runs":
		cmdRuns(os.Args[2:])
	case "inflect":
		cmdInflect(os.Args[2:])
	case "serve":
		cmdServe(os.Args[2:])
	default:
		usage()
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintf(os.Stderr, `Usage: okato <command>

Commands:
  import [input] [database-url] [login] [password]
          Load an OKATO CSV export into the places table
  runs    List recent import runs
  inflect <title>
          Print the stripped title and its locative form
  serve   Start the HTTP and MCP server
`)
}

func newLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))
}
