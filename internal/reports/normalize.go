package reports

import (
	"roomreports/pkg/contracts/domain"
)

// Normalize fills in defaults for every field the view presents. It keeps
// the order of every list and never fails; a nil payload or a missing
// section yields zero statistics and empty lists.
func Normalize(p *domain.ReportPayload) domain.Report {
	report := domain.Report{
		PopularRooms:    []domain.PopularRoom{},
		ActiveUsers:     []domain.ActiveUser{},
		MonthlyActivity: []domain.MonthlyActivity{},
	}
	if p == nil {
		return report
	}

	if p.Statistics != nil {
		report.Stats = normalizeStatistics(p.Statistics)
	}
	for _, room := range p.PopularRooms {
		report.PopularRooms = append(report.PopularRooms, normalizeRoom(room))
	}
	for _, user := range p.ActiveUsers {
		report.ActiveUsers = append(report.ActiveUsers, domain.ActiveUser{
			UserName: user.UserName.Or(domain.UnknownUser),
			Role:     user.Role.Or(domain.UnknownRole),
			Count:    user.Count.Or(0),
		})
	}
	for _, month := range p.MonthlyActivity {
		report.MonthlyActivity = append(report.MonthlyActivity, domain.MonthlyActivity{
			Month:          month.Month.Value,
			ProfessorCount: month.ProfessorCount.Or(0),
			StudentCount:   month.StudentCount.Or(0),
			AdminCount:     month.AdminCount.Or(0),
			Total:          month.Total.Or(0),
		})
	}

	return report
}

func normalizeStatistics(s *domain.StatisticsPayload) domain.ReportStatistics {
	stats := domain.ReportStatistics{
		TotalReservations:     s.TotalReservations.Or(0),
		ApprovedReservations:  s.ApprovedReservations.Or(0),
		PendingReservations:   s.PendingReservations.Or(0),
		RejectedReservations:  s.RejectedReservations.Or(0),
		ProfessorReservations: s.ProfessorReservations.Or(0),
		StudentReservations:   s.StudentReservations.Or(0),
		TotalClassrooms:       s.TotalClassrooms.Or(0),
		TotalStudyRooms:       s.TotalStudyRooms.Or(0),
		TotalUsers:            s.TotalUsers.Or(0),
	}
	if r := s.UsersByRole; r != nil {
		stats.UsersByRole = domain.UsersByRole{
			AdminCount:     r.AdminCount.Or(0),
			ProfessorCount: r.ProfessorCount.Or(0),
			StudentCount:   r.StudentCount.Or(0),
			OtherCount:     r.OtherCount.Or(0),
		}
	}
	return stats
}

// normalizeRoom defaults percentage and the role breakdown. The count is
// passed through as received and stays nil when absent.
func normalizeRoom(room domain.PopularRoomPayload) domain.PopularRoom {
	out := domain.PopularRoom{
		Room:       room.Room.Value,
		Percentage: room.Percentage.Or(0),
	}
	if room.Count.Valid {
		count := room.Count.Value
		out.Count = &count
	}
	if rd := room.RoleData; rd != nil {
		out.RoleData = domain.RoleBreakdown{
			Professor: rd.Professor.Or(0),
			Student:   rd.Student.Or(0),
			Admin:     rd.Admin.Or(0),
			Unknown:   rd.Unknown.Or(0),
		}
	}
	return out
}
