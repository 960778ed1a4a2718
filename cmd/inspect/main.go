package main

import (
	"chat-room/internal"
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/dgraph-io/badger/v4"
	"github.com/gookit/color"
	"github.com/kelseyhightower/envconfig"
	"github.com/olekukonko/tablewriter"
)

type Config struct {
	BadgerFilepath string `envconfig:"BADGER_FILEPATH" default:"./data/badger"`
	// INSPECT_COLOURS highlights the type column
	Colours bool `envconfig:"INSPECT_COLOURS" default:"true"`
}

func main() {
	var config Config
	if err := envconfig.Process("", &config); err != nil {
		log.Fatal("Error while reading config: ", err)
	}
	dbPath := flag.String("db", config.BadgerFilepath, "Path to badger DB")
	prefix := flag.String("prefix", "msg:", "Prefix to scan (participant:, msg:, msgid:)")
	flag.Parse()

	db, err := badger.Open(badger.DefaultOptions(*dbPath).
		WithReadOnly(true).
		WithLoggingLevel(badger.ERROR))
	if err != nil {
		log.Fatal("Error while opening Badger: ", err)
	}
	defer db.Close()

	rows, err := scan(db, *prefix)
	if err != nil {
		log.Fatal(err)
	}
	render(os.Stdout, rows, config.Colours)
}

func scan(db *badger.DB, prefix string) ([]internal.InspectRow, error) {
	var rows []internal.InspectRow
	err := db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		prefixBytes := []byte(prefix)
		for it.Seek(prefixBytes); it.ValidForPrefix(prefixBytes); it.Next() {
			item := it.Item()
			err := item.Value(func(v []byte) error {
				rows = append(rows, internal.RecordMapper(string(item.KeyCopy(nil)), v))
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	return rows, err
}

func render(w io.Writer, rows []internal.InspectRow, colours bool) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Key", "Type", "Time", "Detail"})
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
		kind := row.Type
		if colours {
			kind = colourOf(kind).Render(kind)
		}
		table.Append([]string{row.Key, kind, row.Timestamp, row.Detail})
	}
	table.Render()
	fmt.Fprintf(w, "%d keys\n", len(rows))
}

func colourOf(kind string) color.Style {
	switch kind {
	case "PARTICIPANT":
		return color.New(color.FgYellow)
	case "STATUS":
		return color.New(color.FgDarkGray)
	case "PRIVATE_MESSAGE":
		return color.New(color.FgMagenta)
	case "MESSAGE":
		return color.New(color.FgGreen)
	case "CORRUPTED":
		return color.New(color.FgRed, color.OpBold)
	default:
		return color.New(color.FgCyan)
	}
}
