package report

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"slices"

	"github.com/weehong/appwrite-database-cloner/appwrite"
	"github.com/weehong/appwrite-database-cloner/cloner/sanitize"
	"github.com/weehong/appwrite-database-cloner/errors"
)

// WriteCSV writes the sanitized user-defined fields of the documents as CSV.
// The header is the sorted union of field names across all documents, with
// the source document id as the first column. Non-scalar values are encoded
// as JSON.
func WriteCSV(w io.Writer, docs []appwrite.Document) error {
	fields := map[string]struct{}{}

	cleaned := make([]map[string]any, len(docs))
	for i, doc := range docs {
		cleaned[i] = sanitize.Clean(doc)
		for k := range cleaned[i] {
			fields[k] = struct{}{}
		}
	}

	header := make([]string, 0, len(fields)+1)
	for k := range fields {
		header = append(header, k)
	}

	slices.Sort(header)
	header = append([]string{"$id"}, header...)

	cw := csv.NewWriter(w)

	err := cw.Write(header)
	if err != nil {
		return errors.Wrap(err, "write header")
	}

	for i, doc := range docs {
		row := make([]string, len(header))
		row[0] = doc.ID()

		for j, field := range header[1:] {
			val, ok := cleaned[i][field]
			if !ok || val == nil {
				continue
			}

			row[j+1] = renderValue(val)
		}

		err = cw.Write(row)
		if err != nil {
			return errors.Wrap(err, "write row")
		}
	}

	cw.Flush()

	return errors.Wrap(cw.Error(), "flush")
}

func renderValue(val any) string {
	if s, ok := val.(string); ok {
		return s
	}

	data, err := json.Marshal(val)
	if err != nil {
		return ""
	}

	return string(data)
}
