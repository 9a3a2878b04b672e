// Command inspect dumps the messenger keyspaces from a Badger database as
// tables, for debugging a live data directory.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/gookit/color"
	"github.com/mama165/sdk-go/database"
	"github.com/olekukonko/tablewriter"
)

func main() {
	dbPath := flag.String("db", database.DefaultPath, "Path to badger DB")
	// Default to messages; user: and chat: prefixes work too
	prefix := flag.String("prefix", "msg:", "Prefix to scan")
	flag.Parse()

	db, err := badger.Open(badger.DefaultOptions(*dbPath).
		WithReadOnly(true).
		WithLoggingLevel(badger.ERROR))
	if err != nil {
		log.Fatal("Error while opening Badger: ", err)
	}
	defer db.Close()

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Key", "Entity", "Created", "Detail"})
	table.SetAutoWrapText(false)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("")
	table.SetRowSeparator("")
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetTablePadding("\t")

	count := 0
	err = db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		prefixBytes := []byte(*prefix)
		for it.Seek(prefixBytes); it.ValidForPrefix(prefixBytes); it.Next() {
			item := it.Item()
			key := string(item.Key())

			// Pointer and index keys hold IDs, not records
			if strings.HasPrefix(key, "msgid:") ||
				strings.HasPrefix(key, "member:") ||
				strings.HasPrefix(key, "userchat:") ||
				strings.HasPrefix(key, "user:name:") ||
				strings.HasPrefix(key, "user:email:") {
				continue
			}

			err := item.Value(func(v []byte) error {
				table.Append(toRow(key, v))
				count++
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		log.Fatal("Error while scanning: ", err)
	}

	table.Render()
	color.Green.Printf("\n%d record(s) under prefix %q\n", count, *prefix)
}

// toRow flattens a JSON record into a table row without binding to a specific
// record type, so the tool keeps working when fields change.
func toRow(key string, value []byte) []string {
	var record map[string]any
	if err := json.Unmarshal(value, &record); err != nil {
		return []string{key, "RAW", "-", fmt.Sprintf("%d bytes", len(value))}
	}

	entity := "-"
	if id, ok := record["id"].(string); ok && len(id) >= 8 {
		entity = id[:8]
	}

	created := "-"
	if raw, ok := record["created_at"].(string); ok {
		if ts, err := time.Parse(time.RFC3339Nano, raw); err == nil {
			created = ts.Format("2006-01-02 15:04:05")
		}
	}

	var details []string
	for _, field := range []string{"username", "email", "name", "content", "sender_id"} {
		if v, ok := record[field].(string); ok {
			if len(v) > 40 {
				v = v[:40] + "…"
			}
			details = append(details, field+"="+v)
		}
	}

	return []string{key, entity, created, strings.Join(details, " ")}
}
