package main

import (
	"chat-aggregator/repositories"
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/mama165/sdk-go/logs"
	"github.com/olekukonko/tablewriter"
)

func main() {
	dbPath := flag.String("db", "./data/badger", "Path to badger DB")
	prefix := flag.String("prefix", "channel:", "Prefix to scan, empty for everything")
	logLevel := flag.String("log-level", "WARN", "Log level")
	flag.Parse()

	if err := run(*dbPath, *prefix, *logLevel); err != nil {
		fmt.Fprintf(os.Stderr, "Fatal error: %v\n", err)
		os.Exit(1)
	}
}

func run(dbPath, prefix, logLevel string) error {
	db, err := repositories.OpenDB(dbPath)
	if err != nil {
		return err
	}
	defer db.Close()

	rows, err := repositories.NewStore(db, logs.GetLoggerFromString(logLevel)).Rows(context.Background(), prefix)
	if err != nil {
		return fmt.Errorf("scanning %q: %w", prefix, err)
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Key", "Value"})
	table.SetAutoWrapText(false)
	table.SetAutoFormatHeaders(true)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("")
	table.SetRowSeparator("")
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetTablePadding("\t")

	for _, row := range rows {
		table.Append([]string{row.Key, row.Value})
	}
	table.Render()
	fmt.Printf("\n%d row(s) under %q\n", len(rows), prefix)
	return nil
}
