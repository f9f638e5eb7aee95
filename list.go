package main

import (
	"fmt"
	"io"
	"time"
)

const displayLayout = "Mon 02 Jan 15:04"

func printMeetings(w io.Writer, meetings []Meeting) {
	if len(meetings) == 0 {
		fmt.Fprintln(w, "📭 No upcoming meetings.")
		return
	}
	fmt.Fprintln(w, "📋 Upcoming meetings:")
	for _, m := range meetings {
		fmt.Fprintf(w, "  📅 %s - %s  %s (%s <%s>)\n",
			m.Start.Format(displayLayout), m.End.Format("15:04"), m.Title, m.OrganizerName, m.OrganizerEmail)
	}
}

func printCycles(w io.Writer, cycles []CycleRecord) {
	if len(cycles) == 0 {
		fmt.Fprintln(w, "📭 No sync cycles recorded yet.")
		return
	}
	for _, c := range cycles {
		took := c.FinishedAt.Sub(c.StartedAt).Round(time.Millisecond)
		if c.Status == cycleStatusOK {
			fmt.Fprintf(w, "  ✅ %s %s - %d events, %d pages, %d skipped (%s)\n",
				c.StartedAt.Local().Format(time.RFC3339), c.CalendarID, c.Events, c.Pages, c.Skipped, took)
			continue
		}
		fmt.Fprintf(w, "  ❌ %s %s - %s (%s)\n",
			c.StartedAt.Local().Format(time.RFC3339), c.CalendarID, c.Error, took)
	}
}
