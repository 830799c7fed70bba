package main

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/spencer-p/winddash/pkg/payload"
	"github.com/spencer-p/winddash/pkg/series"
	"github.com/spencer-p/winddash/pkg/timetricks"
)

var headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("213"))

func newWeatherCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "weather",
		Short: "Print the wind forecast of every model",
		Long: `Prints hourly wind speed and direction for a day range. The range is
--start to --end, or --start plus an ISO 8601 --period such as P7D.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := loadSettings(v)
			if err != nil {
				return err
			}
			loc := s.place.Location

			startFlag, _ := cmd.Flags().GetString("start")
			start, err := day(startFlag, loc)
			if err != nil {
				return fmt.Errorf("--start: %w", err)
			}
			end := start
			if period, _ := cmd.Flags().GetString("period"); period != "" {
				if end, err = timetricks.PeriodEnd(start, period); err != nil {
					return err
				}
			} else if endFlag, _ := cmd.Flags().GetString("end"); endFlag != "" {
				if end, err = timetricks.ParseDay(endFlag, loc); err != nil {
					return fmt.Errorf("--end: %w", err)
				}
			}
			if err := timetricks.CheckRange(start, end); err != nil {
				return err
			}

			resp, err := s.client.Weather(cmd.Context(), start, end)
			if err != nil {
				fmt.Fprintln(cmd.ErrOrStderr(), errStyle.Render(err.Error()))
				return err
			}
			return printWeather(cmd.OutOrStdout(), resp, s.policy, loc)
		},
	}
	cmd.Flags().String("start", "", "first day, YYYY-MM-DD (default today)")
	cmd.Flags().String("end", "", "last day, YYYY-MM-DD (default the start day)")
	cmd.Flags().String("period", "", "range length as an ISO 8601 period, e.g. P7D")
	cmd.MarkFlagsMutuallyExclusive("end", "period")
	return cmd
}

type windColumns struct {
	label      string
	speed, dir series.Series
}

// printWeather writes one row per hour with speed and direction per model.
func printWeather(w io.Writer, resp *payload.HourlyResponse, policy series.NullPolicy, loc *time.Location) error {
	var cols []windColumns
	for _, model := range payload.Models {
		speed, err := resp.Hourly.Series(payload.WindSpeedPrefix+model, "km/h", loc)
		if err != nil {
			continue
		}
		dir, err := resp.Hourly.Series(payload.WindDirectionPrefix+model, "°", loc)
		if err != nil {
			continue
		}
		cols = append(cols, windColumns{label: model, speed: speed, dir: dir})
	}
	if len(cols) == 0 {
		return fmt.Errorf("no wind columns in the forecast: %w", payload.ErrMissingColumn)
	}

	header := []string{fmt.Sprintf("%-16s", "time")}
	for _, c := range cols {
		header = append(header, fmt.Sprintf("%19s", c.label))
	}
	fmt.Fprintln(w, headerStyle.Render(strings.Join(header, " ")))

	for i, t := range cols[0].speed.Times() {
		row := []string{t.In(loc).Format("2006-01-02 15:04")}
		skip := policy == series.DropNulls
		for _, c := range cols {
			sp, dir := c.speed.Samples[i], c.dir.Samples[i]
			if sp.Null() || dir.Null() {
				row = append(row, fmt.Sprintf("%19s", "-"))
				continue
			}
			skip = false
			row = append(row, fmt.Sprintf("%8.1f km/h %4.0f°", sp.Value, dir.Value))
		}
		if skip {
			continue
		}
		fmt.Fprintln(w, strings.Join(row, " "))
	}
	return nil
}
