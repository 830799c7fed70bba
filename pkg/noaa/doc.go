// Package noaa implements queries to the NOAA CO-OPS data API. It provides
// high/low tide predictions, joined into an hourly curve with the splines
// package, and wind observations from a station. Requests are made in GMT and
// converted to the configured place's time zone.
package noaa
