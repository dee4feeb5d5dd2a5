// Package report renders the final run summary and exports documents.
package report

import (
	"fmt"
	"io"
	"strconv"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"

	"github.com/weehong/appwrite-database-cloner/cloner"
)

// PrintSummary writes the per-collection summary table and itemized error
// detail for every failing entity.
func PrintSummary(w io.Writer, res *cloner.Result) {
	ok := color.New(color.FgGreen).SprintFunc()
	bad := color.New(color.FgRed).SprintFunc()

	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{
		"Collection", "Attributes", "Indexes", "Written", "Skipped", "Failed", "Status",
	})

	for _, c := range res.Collections {
		attrs, indexes := "-", "-"
		if c.Structure != nil {
			attrs = strconv.Itoa(c.Structure.AttributesCreated)
			indexes = strconv.Itoa(c.Structure.IndexesCreated)
		}

		status := ok("OK")
		if c.Failed() {
			status = bad("FAILED")
		}

		table.Append([]string{
			c.Name,
			attrs,
			indexes,
			strconv.Itoa(c.DocumentsWritten),
			strconv.Itoa(c.DocumentsSkipped),
			strconv.Itoa(len(c.DocumentErrors)),
			status,
		})
	}

	table.Render()

	fmt.Fprintf(w, "\nMode: %s  Documents written: %d  skipped: %d  failed: %d\n",
		res.Mode, res.DocumentsWritten(), res.DocumentsSkipped(), res.DocumentErrors())

	printErrors(w, res)
}

func printErrors(w io.Writer, res *cloner.Result) {
	for _, c := range res.Collections {
		if !c.Failed() {
			continue
		}

		fmt.Fprintf(w, "\n%s:\n", c.Name)

		if c.Err != nil {
			fmt.Fprintf(w, "  collection: %s\n", c.Err)
		}

		if c.Structure != nil {
			if c.Structure.Err != nil {
				fmt.Fprintf(w, "  structure: %s\n", c.Structure.Err)
			}

			for _, e := range c.Structure.AttributeErrors {
				fmt.Fprintf(w, "  attribute %q: %s\n", e.Key, e.Err)
			}

			for _, e := range c.Structure.IndexErrors {
				fmt.Fprintf(w, "  index %q: %s\n", e.Key, e.Err)
			}
		}

		for _, e := range c.DocumentErrors {
			fmt.Fprintf(w, "  document %q: %s\n", e.SourceID, e.Err)
		}
	}
}
