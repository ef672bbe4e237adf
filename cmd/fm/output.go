package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/viper"
)

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// printTable renders rows, or v as JSON when --json is set.
func printTable(v any, header table.Row, rows []table.Row) error {
	if viper.GetBool("json") {
		return printJSON(v)
	}
	if len(rows) == 0 {
		fmt.Println("(none)")
		return nil
	}
	tw := table.NewWriter()
	tw.SetOutputMirror(os.Stdout)
	tw.SetStyle(table.StyleLight)
	tw.AppendHeader(header)
	tw.AppendRows(rows)
	tw.Render()
	return nil
}

// printRecord renders a single entity as a two-column table.
func printRecord(v any, fields ...any) error {
	if viper.GetBool("json") {
		return printJSON(v)
	}
	tw := table.NewWriter()
	tw.SetOutputMirror(os.Stdout)
	tw.SetStyle(table.StyleLight)
	for i := 0; i+1 < len(fields); i += 2 {
		tw.AppendRow(table.Row{fields[i], fields[i+1]})
	}
	tw.Render()
	return nil
}

func printID(kind, id string) error {
	if viper.GetBool("json") {
		return printJSON(map[string]string{"id": id})
	}
	fmt.Printf("%s %s\n", kind, id)
	return nil
}

func deref[T any](p *T) any {
	if p == nil {
		return ""
	}
	return *p
}
