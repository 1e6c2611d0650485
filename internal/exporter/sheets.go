package exporter

import (
	"roomreports/pkg/contracts/domain"
)

// Sheet names, in workbook order
const (
	SheetStatistics      = "Statistics"
	SheetPopularRooms    = "Popular Rooms"
	SheetActiveUsers     = "Active Users"
	SheetMonthlyActivity = "Monthly Activity"
)

// Sheet is one table of the tabular export.
type Sheet struct {
	Name    string
	Headers []string
	Rows    [][]any
}

// ReportSheets lays the report out as the four export tables.
// Usage % is a one-decimal string; every other number is an int64.
func ReportSheets(r domain.Report) []Sheet {
	return []Sheet{
		statisticsSheet(r.Stats),
		popularRoomsSheet(r.PopularRooms),
		activeUsersSheet(r.ActiveUsers),
		monthlyActivitySheet(r.MonthlyActivity),
	}
}

func statisticsSheet(s domain.ReportStatistics) Sheet {
	return Sheet{
		Name:    SheetStatistics,
		Headers: []string{"Metric", "Value"},
		Rows: [][]any{
			{"Total Reservations", s.TotalReservations},
			{"Approved Reservations", s.ApprovedReservations},
			{"Pending Reservations", s.PendingReservations},
			{"Professor Reservations", s.ProfessorReservations},
			{"Student Reservations", s.StudentReservations},
			{"Total Classrooms", s.TotalClassrooms},
			{"Total Users", s.TotalUsers},
			{"Admin Users", s.UsersByRole.AdminCount},
			{"Professor Users", s.UsersByRole.ProfessorCount},
			{"Student Users", s.UsersByRole.StudentCount},
			{"Other Users", s.UsersByRole.OtherCount},
		},
	}
}

func popularRoomsSheet(rooms []domain.PopularRoom) Sheet {
	rows := make([][]any, 0, len(rooms))
	for _, room := range rooms {
		rows = append(rows, []any{
			room.Room,
			room.Reservations(),
			formatPercent(room.Percentage),
			room.RoleData.Professor,
			room.RoleData.Student,
			room.RoleData.Admin,
		})
	}
	return Sheet{
		Name:    SheetPopularRooms,
		Headers: []string{"Room", "Reservations", "Usage %", "By Professors", "By Students", "By Admins"},
		Rows:    rows,
	}
}

func activeUsersSheet(users []domain.ActiveUser) Sheet {
	rows := make([][]any, 0, len(users))
	for _, u := range users {
		rows = append(rows, []any{u.UserName, u.Role, u.Count})
	}
	return Sheet{
		Name:    SheetActiveUsers,
		Headers: []string{"User", "Role", "Reservations"},
		Rows:    rows,
	}
}

func monthlyActivitySheet(months []domain.MonthlyActivity) Sheet {
	rows := make([][]any, 0, len(months))
	for _, m := range months {
		rows = append(rows, []any{m.Month, m.ProfessorCount, m.StudentCount, m.AdminCount, m.Total})
	}
	return Sheet{
		Name:    SheetMonthlyActivity,
		Headers: []string{"Month", "Professor Reservations", "Student Reservations", "Admin Reservations", "Total"},
		Rows:    rows,
	}
}
