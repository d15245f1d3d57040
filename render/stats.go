package render

import (
	"io"
	"strconv"

	"github.com/olekukonko/tablewriter"
)

// Stats counts what a Renderer has done since it was created.
type Stats struct {
	FramesBegun     uint64
	FramesPresented uint64
	// FramesSkipped counts BeginFrame calls that found the surface stale.
	FramesSkipped uint64
	Rebuilds      uint64
	Extent        Extent
	ImageCount    int
	PresentMode   PresentMode
}

// WriteTable renders the counters as a two-column text table.
func (s Stats) WriteTable(w io.Writer) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Metric", "Value"})
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.Append([]string{"Frames begun", strconv.FormatUint(s.FramesBegun, 10)})
	table.Append([]string{"Frames presented", strconv.FormatUint(s.FramesPresented, 10)})
	table.Append([]string{"Frames skipped", strconv.FormatUint(s.FramesSkipped, 10)})
	table.Append([]string{"Rebuilds", strconv.FormatUint(s.Rebuilds, 10)})
	table.Append([]string{"Extent", s.Extent.String()})
	table.Append([]string{"Swap images", strconv.Itoa(s.ImageCount)})
	table.Append([]string{"Present mode", s.PresentMode.String()})
	table.Render()
}
