package reports

import (
	"fmt"
	"io"
	"math"
	"strings"
	"text/tabwriter"
)

const (
	noDataText    = "No data available"
	progressWidth = 20
)

// UsageWidth is the width of a usage bar in percent, clamped to 0..100.
func UsageWidth(percentage float64) float64 {
	if math.IsNaN(percentage) || percentage < 0 {
		return 0
	}
	return math.Min(percentage, 100)
}

func progressBar(percentage float64) string {
	filled := int(math.Round(UsageWidth(percentage) / 100 * progressWidth))
	return "[" + strings.Repeat("#", filled) + strings.Repeat(".", progressWidth-filled) + "]"
}

// RenderText writes the dashboard as plain text tables.
func RenderText(w io.Writer, v ViewState) error {
	if v.Loading && v.Snapshot == nil {
		_, err := fmt.Fprintln(w, "Loading report data...")
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	p := func(format string, args ...any) {
		fmt.Fprintf(tw, format, args...)
	}

	p("System Reports\n")
	if v.Error != "" {
		p("\n! %s\n", v.Error)
	}

	r := v.Report()
	s := r.Stats

	p("\nSystem Overview\n")
	p("Total Reservations\t%d\t%d approved, %d pending\n", s.TotalReservations, s.ApprovedReservations, s.PendingReservations)
	p("User Reservations\t%d / %d\tProfessor / Student reservations\n", s.ProfessorReservations, s.StudentReservations)
	p("Rooms Available\t%d\tTotal classrooms in system\n", s.TotalClassrooms)
	p("Total Users\t%d\t%d admins, %d professors\n", s.TotalUsers, s.UsersByRole.AdminCount, s.UsersByRole.ProfessorCount)

	p("\nMost Popular Rooms\n")
	p("Room\tReservations\tUsage\n")
	if len(r.PopularRooms) == 0 {
		p("%s\n", noDataText)
	}
	for _, room := range r.PopularRooms {
		p("%s\t%d\t%s %.1f%%\n", room.Room, room.Reservations(), progressBar(room.Percentage), room.Percentage)
	}

	p("\nMost Active Users\n")
	p("User\tRole\tReservations\n")
	if len(r.ActiveUsers) == 0 {
		p("%s\n", noDataText)
	}
	for _, u := range r.ActiveUsers {
		p("%s\t%s\t%d\n", u.UserName, u.Role, u.Count)
	}

	p("\nMonthly Reservation Activity\n")
	p("Month\tProfessor\tStudent\tAdmin\tTotal\n")
	if len(r.MonthlyActivity) == 0 {
		p("%s\n", noDataText)
	}
	for _, m := range r.MonthlyActivity {
		p("%s\t%d\t%d\t%d\t%d\n", m.Month, m.ProfessorCount, m.StudentCount, m.AdminCount, m.Total)
	}

	if v.Exporting {
		p("\nProcessing export...\n")
	}
	if v.ShowPDFReport {
		p("\nPDF report ready (%d bytes of report data)\n", len(v.PDFData))
	}
	if v.Snapshot != nil {
		p("\nLast updated %s via %s\n", v.Snapshot.FetchedAt.Format("2006-01-02 15:04:05"), v.Snapshot.Source)
	}

	return tw.Flush()
}
