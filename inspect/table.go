package inspect

import (
	"fmt"
	"io"
	"strconv"

	"github.com/olekukonko/tablewriter"

	"github.com/spacemeshos/bitstream/layout"
)

// Table renders rec with one row per field.
func Table(w io.Writer, rec layout.Record) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"field", "kind", "width", "value"})
	table.SetBorder(true)
	table.SetAutoFormatHeaders(false)

	for _, v := range rec {
		table.Append([]string{
			v.Name,
			v.Kind.String(),
			strconv.FormatUint(uint64(v.Width), 10),
			fmt.Sprint(v.V),
		})
	}
	table.Render()
}
