package main

import (
	"fmt"
	"io"
	"math"
	"strings"
	"time"

	"github.com/NimbleMarkets/ntcharts/linechart/timeserieslinechart"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/spencer-p/winddash/pkg/series"
	"github.com/spencer-p/winddash/pkg/sunset"
)

const thresholdDataSet = "threshold"

var (
	tideLineStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("45"))
	thresholdLineStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("208"))
)

func newTidesCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tides",
		Short: "Draw the tide and the threshold line",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := loadSettings(v)
			if err != nil {
				return err
			}
			date, _ := cmd.Flags().GetString("date")
			tide, day, err := fetchTide(cmd.Context(), s, date)
			if err != nil {
				return err
			}
			h := threshold(cmd, v)
			w := cmd.OutOrStdout()

			if values, _ := cmd.Flags().GetBool("values"); values {
				printValues(w, tide, s.place.Location)
				return nil
			}

			width, _ := cmd.Flags().GetInt("width")
			height, _ := cmd.Flags().GetInt("height")
			chart, err := tideChart(tide, h, width, height, s.place.Location)
			if err != nil {
				return err
			}
			fmt.Fprintln(w, titleStyle.Render("Tide (m)"))
			fmt.Fprintln(w, chart)
			fmt.Fprintf(w, "%s %s  %s %s\n",
				tideLineStyle.Render("─"), infoStyle.Render("Sea level"),
				thresholdLineStyle.Render("─"), infoStyle.Render(fmt.Sprintf("Threshold %.2f m", h)))
			fmt.Fprintln(w)
			printCrossings(w, tide, h, sunset.GetSunEvents(day, 1, s.place), s.place.Location)
			return nil
		},
	}
	addThresholdFlags(cmd)
	cmd.Flags().Int("width", 72, "chart width in columns")
	cmd.Flags().Int("height", 14, "chart height in rows")
	cmd.Flags().Bool("values", false, "print the hourly heights instead of a chart")
	return cmd
}

// tideChart draws the tide as braille with the threshold as a second line.
func tideChart(tide series.Series, threshold float64, width, height int, loc *time.Location) (string, error) {
	start, end, ok := tide.Span()
	lo, hi, hasValues := tide.Bounds()
	if !ok || !hasValues || !start.Before(end) {
		return "", fmt.Errorf("not enough tide data to draw")
	}
	lo, hi = math.Min(lo, threshold), math.Max(hi, threshold)
	lo, hi = math.Floor(lo*2-1)/2, math.Ceil(hi*2+1)/2

	lc := timeserieslinechart.New(width, height)
	lc.SetTimeRange(start, end)
	lc.SetViewTimeAndYRange(start, end, lo, hi)
	lc.SetStyle(tideLineStyle)
	lc.SetDataSetStyle(thresholdDataSet, thresholdLineStyle)

	hours := int(end.Sub(start).Hours())
	xStep := 1
	if hours > 0 && hours < lc.GraphWidth() {
		xStep = lc.GraphWidth() / hours * 3
	}
	lc.SetXStep(xStep)
	lc.Model.XLabelFormatter = func(i int, v float64) string {
		return time.Unix(int64(v), 0).In(loc).Format("15:04")
	}

	for _, s := range tide.Samples {
		if s.Null() {
			continue
		}
		lc.Push(timeserieslinechart.TimePoint{Time: s.Time, Value: s.Value})
	}
	lc.PushDataSet(thresholdDataSet, timeserieslinechart.TimePoint{Time: start, Value: threshold})
	lc.PushDataSet(thresholdDataSet, timeserieslinechart.TimePoint{Time: end, Value: threshold})
	lc.DrawBrailleAll()
	return lc.View(), nil
}

// printValues lists the heights one per line, like a table.
func printValues(w io.Writer, tide series.Series, loc *time.Location) {
	var b strings.Builder
	for _, s := range tide.Samples {
		if s.Null() {
			fmt.Fprintf(&b, "%s  -\n", s.Time.In(loc).Format("2006-01-02 15:04"))
			continue
		}
		fmt.Fprintf(&b, "%s  %6.2f\n", s.Time.In(loc).Format("2006-01-02 15:04"), s.Value)
	}
	fmt.Fprint(w, b.String())
}
