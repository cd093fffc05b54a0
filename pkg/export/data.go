package export

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/kilianp07/rolloutplan/core/rollout"
)

// WriteJSON writes the document to w in JSON format.
func WriteJSON(w io.Writer, doc Document) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(doc)
}

// WriteYAML writes the document to w in YAML format.
func WriteYAML(w io.Writer, doc Document) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return err
	}
	return enc.Close()
}

// WriteCSV writes one record per activity row. Painted cells hold the hex
// colour, empty cells are blank.
func WriteCSV(w io.Writer, weeks []rollout.WeekData) error {
	cw := csv.NewWriter(w)
	header := []string{"week", "title", "activity"}
	for d := 1; d <= rollout.DaysPerWeek; d++ {
		header = append(header, "day"+strconv.Itoa(d))
	}
	if err := cw.Write(header); err != nil {
		return err
	}
	for _, wk := range weeks {
		for _, r := range wk.Rows {
			rec := []string{strconv.Itoa(wk.WeekNumber), wk.Title, r.Activity}
			for _, c := range r.Cells {
				if st, ok := c.Get(); ok {
					rec = append(rec, st.Color.Hex())
				} else {
					rec = append(rec, "")
				}
			}
			if err := cw.Write(rec); err != nil {
				return err
			}
		}
	}
	cw.Flush()
	return cw.Error()
}
