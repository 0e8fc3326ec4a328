package main

import (
	"fmt"
	"io"

	"scenelint/internal/observ"
)

func printTimings(out io.Writer, path string, report *observ.Report) {
	if out == nil || report == nil || len(report.Phases) == 0 {
		return
	}
	if path != "" {
		fmt.Fprintf(out, "%s ", path)
	}
	for _, p := range report.Phases {
		fmt.Fprintf(out, "%s %.1f ms  ", p.Name, p.DurationMS)
	}
	fmt.Fprintf(out, "total %.1f ms\n", report.TotalMS)
}
