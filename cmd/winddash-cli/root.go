package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/spencer-p/winddash/pkg/backend"
	"github.com/spencer-p/winddash/pkg/series"
	"github.com/spencer-p/winddash/pkg/sunset"
	"github.com/spencer-p/winddash/pkg/timetricks"
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("45"))
	infoStyle  = lipgloss.NewStyle().Faint(true)
	errStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	belowStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("51"))
)

// newRootCmd builds the command tree. Settings come from flags, then
// WINDDASH_* variables, then $HOME/.winddash.yaml.
func newRootCmd() *cobra.Command {
	var cfgFile string
	v := viper.New()

	root := &cobra.Command{
		Use:   "winddash-cli",
		Short: "Wind forecasts and tide threshold crossings in the terminal",
		Long: `Fetches wind forecasts, observations and tides from a winddash backend
and prints them, along with the times the tide crosses a threshold height.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initConfig(v, cfgFile)
		},
	}

	root.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.winddash.yaml)")
	root.PersistentFlags().String("backend", "http://localhost:8080", "winddash backend URL")
	root.PersistentFlags().String("timezone", "Europe/Paris", "time zone dates and times are shown in")
	root.PersistentFlags().Float64("latitude", 46.244, "latitude of the spot, for daylight")
	root.PersistentFlags().Float64("longitude", -1.561, "longitude of the spot, for daylight")
	root.PersistentFlags().String("null-policy", "keep", "what to do with missing values: keep or drop")
	cobra.CheckErr(v.BindPFlags(root.PersistentFlags()))

	root.AddCommand(
		newCrossingsCmd(v),
		newTidesCmd(v),
		newWeatherCmd(v),
	)
	return root
}

func initConfig(v *viper.Viper, cfgFile string) error {
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else if home, err := os.UserHomeDir(); err == nil {
		v.AddConfigPath(home)
		v.SetConfigType("yaml")
		v.SetConfigName(".winddash")
	}

	v.SetEnvPrefix("winddash")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", v.ConfigFileUsed())
	} else if cfgFile != "" {
		return fmt.Errorf("reading %s: %w", cfgFile, err)
	}
	return nil
}

// settings are the resolved persistent flags.
type settings struct {
	client *backend.Client
	place  sunset.Place
	policy series.NullPolicy
}

func loadSettings(v *viper.Viper) (settings, error) {
	place, err := sunset.NewPlace(v.GetFloat64("latitude"), v.GetFloat64("longitude"), v.GetString("timezone"))
	if err != nil {
		return settings{}, err
	}
	policy, err := series.ParseNullPolicy(v.GetString("null-policy"))
	if err != nil {
		return settings{}, err
	}
	return settings{
		client: backend.NewClient(v.GetString("backend")),
		place:  place,
		policy: policy,
	}, nil
}

// day reads a --date flag value, defaulting to today.
func day(s string, loc *time.Location) (time.Time, error) {
	if s == "" {
		return timetricks.TrimClock(time.Now().In(loc)), nil
	}
	return timetricks.ParseDay(s, loc)
}
