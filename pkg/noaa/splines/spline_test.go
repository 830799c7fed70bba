package splines

import (
	"fmt"
	"math"
	"time"

	"github.com/spencer-p/winddash/pkg/series"
)

func ExampleSpline_Resample() {
	tstart := time.Date(2021, time.April, 3, 10, 30, 0, 0, time.UTC)
	extremes := []series.Sample{{
		Time:  tstart,
		Value: 10,
	}, {
		Time:  tstart.Add(9 * time.Hour),
		Value: 1,
	}}
	for _, s := range CurvesBetween(extremes).Resample(tstart, tstart.Add(11*time.Hour), time.Hour) {
		fmt.Println(s.Time.Format("15:04"), math.Round(s.Value))
	}
	// Output:
	// 10:30 10
	// 11:30 10
	// 12:30 9
	// 13:30 8
	// 14:30 6
	// 15:30 5
	// 16:30 3
	// 17:30 2
	// 18:30 1
	// 19:30 1
	// 20:30 NaN
}

func ExampleCurvesBetween() {
	tstart := time.Time{}
	tend := tstart.Add(10 * time.Second)
	extremes := []series.Sample{{
		Time:  tstart,
		Value: 0,
	}, {
		Time:  tend,
		Value: 10,
	}}
	curve := CurvesBetween(extremes)[0]
	fmt.Printf("A = %.2f\n", curve.A)
	fmt.Printf("B = %.2f\n", curve.B)
	fmt.Printf("C = %.2f\n", curve.C)
	fmt.Printf("D = %.2f\n", curve.D)
	// Output:
	// A = -0.02
	// B = 0.30
	// C = -0.00
	// D = 0.00
}
