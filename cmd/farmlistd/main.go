package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/lherron/farmlist/internal/cli"
)

func main() {
	addr := flag.String("addr", "", "Listen address (defaults to FARMLIST_DAEMON_ADDR or 127.0.0.1:7878)")
	unixPath := flag.String("unix", os.Getenv("FARMLIST_DAEMON_UNIX"), "Listen on unix socket path")
	token := flag.String("token", "", "Shared token for local auth (defaults to FARMLIST_DAEMON_TOKEN)")
	dbPath := flag.String("db", "", "Catalog database path override (defaults to config)")
	catalogDir := flag.String("catalog", "", "Catalog directory override")
	flag.Parse()

	opts := cli.DaemonOptions{
		Addr:       *addr,
		Unix:       *unixPath,
		Token:      *token,
		DBPath:     *dbPath,
		CatalogDir: *catalogDir,
	}

	if err := cli.ServeDaemon(opts); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
