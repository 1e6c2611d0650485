package domain

import "encoding/json"

// Default labels substituted for missing user fields.
const (
	UnknownUser = "Unknown User"
	UnknownRole = "Unknown Role"
)

// ReportPayload is the document returned by GET /api/reports.
// Every section is optional.
type ReportPayload struct {
	Statistics      *StatisticsPayload       `json:"statistics,omitempty"`
	PopularRooms    []PopularRoomPayload     `json:"popularRooms,omitempty"`
	ActiveUsers     []ActiveUserPayload      `json:"activeUsers,omitempty"`
	MonthlyActivity []MonthlyActivityPayload `json:"monthlyActivity,omitempty"`
}

// StatisticsPayload carries the aggregate reservation and user counts.
type StatisticsPayload struct {
	TotalReservations     OptionalInt         `json:"totalReservations"`
	ApprovedReservations  OptionalInt         `json:"approvedReservations"`
	PendingReservations   OptionalInt         `json:"pendingReservations"`
	RejectedReservations  OptionalInt         `json:"rejectedReservations"`
	ProfessorReservations OptionalInt         `json:"professorReservations"`
	StudentReservations   OptionalInt         `json:"studentReservations"`
	TotalClassrooms       OptionalInt         `json:"totalClassrooms"`
	TotalStudyRooms       OptionalInt         `json:"totalStudyRooms"`
	TotalUsers            OptionalInt         `json:"totalUsers"`
	UsersByRole           *UsersByRolePayload `json:"usersByRole,omitempty"`
}

// UsersByRolePayload splits the user count by role.
type UsersByRolePayload struct {
	AdminCount     OptionalInt `json:"adminCount"`
	ProfessorCount OptionalInt `json:"professorCount"`
	StudentCount   OptionalInt `json:"studentCount"`
	OtherCount     OptionalInt `json:"otherCount"`
}

// PopularRoomPayload is one row of the popular rooms ranking.
type PopularRoomPayload struct {
	Room       OptionalString        `json:"room"`
	Count      OptionalInt           `json:"count"`
	Percentage OptionalFloat         `json:"percentage"`
	RoleData   *RoleBreakdownPayload `json:"roleData,omitempty"`
}

// RoleBreakdownPayload counts a room's reservations by requester role.
type RoleBreakdownPayload struct {
	Professor OptionalInt `json:"professor"`
	Student   OptionalInt `json:"student"`
	Admin     OptionalInt `json:"admin"`
	Unknown   OptionalInt `json:"unknown"`
}

// ActiveUserPayload is one row of the most active users ranking.
type ActiveUserPayload struct {
	UserName OptionalString `json:"userName"`
	Role     OptionalString `json:"role"`
	Count    OptionalInt    `json:"count"`
}

// MonthlyActivityPayload is one month of reservation activity.
type MonthlyActivityPayload struct {
	Month          OptionalString `json:"month"`
	ProfessorCount OptionalInt    `json:"professorCount"`
	StudentCount   OptionalInt    `json:"studentCount"`
	AdminCount     OptionalInt    `json:"adminCount"`
	Total          OptionalInt    `json:"total"`
}

// Report is a normalized payload: every presented number is set.
type Report struct {
	Stats           ReportStatistics  `json:"stats"`
	PopularRooms    []PopularRoom     `json:"popularRooms"`
	ActiveUsers     []ActiveUser      `json:"activeUsers"`
	MonthlyActivity []MonthlyActivity `json:"monthlyActivity"`
}

// ReportStatistics holds the overview counters.
type ReportStatistics struct {
	TotalReservations     int64       `json:"totalReservations"`
	ApprovedReservations  int64       `json:"approvedReservations"`
	PendingReservations   int64       `json:"pendingReservations"`
	RejectedReservations  int64       `json:"rejectedReservations"`
	ProfessorReservations int64       `json:"professorReservations"`
	StudentReservations   int64       `json:"studentReservations"`
	TotalClassrooms       int64       `json:"totalClassrooms"`
	TotalStudyRooms       int64       `json:"totalStudyRooms"`
	TotalUsers            int64       `json:"totalUsers"`
	UsersByRole           UsersByRole `json:"usersByRole"`
}

// UsersByRole splits TotalUsers by role.
type UsersByRole struct {
	AdminCount     int64 `json:"adminCount"`
	ProfessorCount int64 `json:"professorCount"`
	StudentCount   int64 `json:"studentCount"`
	OtherCount     int64 `json:"otherCount"`
}

// PopularRoom is a normalized ranking row. Count is passed through as
// received and is nil when the backend omitted it.
type PopularRoom struct {
	Room       string        `json:"room"`
	Count      *int64        `json:"count,omitempty"`
	Percentage float64       `json:"percentage"`
	RoleData   RoleBreakdown `json:"roleData"`
}

// Reservations returns Count, or 0 when it was not supplied.
func (p PopularRoom) Reservations() int64 {
	if p.Count == nil {
		return 0
	}
	return *p.Count
}

// RoleBreakdown counts reservations by requester role.
type RoleBreakdown struct {
	Professor int64 `json:"professor"`
	Student   int64 `json:"student"`
	Admin     int64 `json:"admin"`
	Unknown   int64 `json:"unknown"`
}

// ActiveUser is a normalized most-active-user row.
type ActiveUser struct {
	UserName string `json:"userName"`
	Role     string `json:"role"`
	Count    int64  `json:"count"`
}

// MonthlyActivity is a normalized month row.
type MonthlyActivity struct {
	Month          string `json:"month"`
	ProfessorCount int64  `json:"professorCount"`
	StudentCount   int64  `json:"studentCount"`
	AdminCount     int64  `json:"adminCount"`
	Total          int64  `json:"total"`
}

// PDFData is the document from GET /api/reports/pdf-data. It is handed to
// the PDF presenter untouched.
type PDFData = json.RawMessage
