package exporter

import "roomreports/pkg/contracts/domain"

func int64p(v int64) *int64 { return &v }

func sampleReport() domain.Report {
	return domain.Report{
		Stats: domain.ReportStatistics{
			TotalReservations:     42,
			ApprovedReservations:  30,
			PendingReservations:   10,
			ProfessorReservations: 12,
			StudentReservations:   28,
			TotalClassrooms:       9,
			TotalUsers:            55,
			UsersByRole: domain.UsersByRole{
				AdminCount:     2,
				ProfessorCount: 8,
				StudentCount:   44,
				OtherCount:     1,
			},
		},
		PopularRooms: []domain.PopularRoom{
			{Room: "B-101", Count: int64p(17), Percentage: 40.476, RoleData: domain.RoleBreakdown{Professor: 5, Student: 11, Admin: 1}},
			{Room: "Lab 3", Percentage: 0},
		},
		ActiveUsers: []domain.ActiveUser{
			{UserName: "Dana Lee", Role: "STUDENT", Count: 6},
			{UserName: domain.UnknownUser, Role: domain.UnknownRole, Count: 0},
		},
		MonthlyActivity: []domain.MonthlyActivity{
			{Month: "2026-09", ProfessorCount: 4, StudentCount: 9, AdminCount: 0, Total: 13},
		},
	}
}
