package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/spencer-p/winddash/pkg/crossing"
	"github.com/spencer-p/winddash/pkg/meta"
	"github.com/spencer-p/winddash/pkg/payload"
	"github.com/spencer-p/winddash/pkg/series"
	"github.com/spencer-p/winddash/pkg/sunset"
)

func addThresholdFlags(cmd *cobra.Command) {
	cmd.Flags().String("date", "", "day to show, YYYY-MM-DD (default today)")
	cmd.Flags().Float64("threshold", 1.0, "tide threshold height in meters")
}

// threshold prefers the flag, then the config.
func threshold(cmd *cobra.Command, v *viper.Viper) float64 {
	if cmd.Flags().Changed("threshold") || !v.IsSet("threshold") {
		h, _ := cmd.Flags().GetFloat64("threshold")
		return h
	}
	return v.GetFloat64("threshold")
}

func newCrossingsCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "crossings",
		Short: "Print the times the tide crosses the threshold",
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
			sun := sunset.GetSunEvents(day, 1, s.place)
			printCrossings(cmd.OutOrStdout(), tide, threshold(cmd, v), sun, s.place.Location)
			return nil
		},
	}
	addThresholdFlags(cmd)
	return cmd
}

// fetchTide loads the tide series for a day.
func fetchTide(ctx context.Context, s settings, date string) (series.Series, time.Time, error) {
	d, err := day(date, s.place.Location)
	if err != nil {
		return series.Series{}, d, err
	}
	resp, err := s.client.Tides(ctx, d)
	if err != nil {
		return series.Series{}, d, err
	}
	tide, err := resp.Hourly.Series(payload.SeaLevel, "m", s.place.Location)
	if err != nil {
		return series.Series{}, d, fmt.Errorf("tides: %w", err)
	}
	return s.policy.Apply(tide), d, nil
}

func printCrossings(w io.Writer, tide series.Series, threshold float64, sun sunset.SunEvents, loc *time.Location) {
	crossings := crossing.Find(tide.Samples, threshold)
	fmt.Fprintln(w, titleStyle.Render(fmt.Sprintf("Crossings of %.2f m", threshold)))
	if len(crossings) == 0 {
		fmt.Fprintln(w, infoStyle.Render("The tide never crosses the threshold."))
	}
	for _, c := range crossings {
		fmt.Fprintf(w, "  %s\n", c.Time.In(loc).Format("2006-01-02 15:04"))
	}

	windows := meta.Windows(tide.Samples, crossings, sun, threshold)
	if len(windows) == 0 {
		return
	}
	fmt.Fprintln(w)
	for i := range windows {
		line := windows[i].String()
		if windows[i].Below {
			line = belowStyle.Render(line)
		}
		fmt.Fprintf(w, "  %s\n", line)
	}
}
