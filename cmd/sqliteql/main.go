// Command sqliteql is a thin CLI over the engine façade: open a database
// file, run one dot-command or SQL statement, print the result.
package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/alecthomas/kong"

	"sqliteql"
)

var CLI struct {
	DBPath  string `arg:"" help:"Path to the SQLite database file" type:"existingfile"`
	Command string `arg:"" help:"A dot-command (.dbinfo, .tables, .schema) or a SQL statement"`
}

func main() {
	kong.Parse(&CLI,
		kong.Name("sqliteql"),
		kong.Description("Read-only query engine over the SQLite 3 file format"),
		kong.UsageOnError(),
	)

	if err := run(CLI.DBPath, CLI.Command); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(dbPath, command string) error {
	f, err := os.Open(dbPath)
	if err != nil {
		return err
	}
	defer f.Close()

	eng, err := sqliteql.Open(f)
	if err != nil {
		return err
	}

	if sqliteql.IsDotCommand(command) {
		out, err := eng.RunDotCommand(sqliteql.DotCommand(strings.ToLower(strings.TrimSpace(command))))
		if err != nil {
			return err
		}
		fmt.Print(out)
		return nil
	}

	rows, err := eng.Execute(command)
	if err != nil {
		return err
	}
	for _, row := range rows {
		fmt.Println(strings.Join(row, "|"))
	}
	return nil
}
