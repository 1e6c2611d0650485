package domain

import (
	"bytes"
	"encoding/json"
)

// The reporting API is not trusted to send well-formed sections. A section
// or row of the wrong JSON kind is treated as absent, like a malformed
// number.

func jsonKind(data []byte) byte {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return 0
	}
	return data[0]
}

// decodeObject decodes data into v only when it is a JSON object
func decodeObject(data []byte, v any) (bool, error) {
	if jsonKind(data) != '{' {
		return false, nil
	}
	return true, json.Unmarshal(data, v)
}

// decodeList decodes data into v only when it is a JSON array
func decodeList(data []byte, v any) error {
	if jsonKind(data) != '[' {
		return nil
	}
	return json.Unmarshal(data, v)
}

// UnmarshalJSON drops sections that are not of the expected kind.
func (p *ReportPayload) UnmarshalJSON(data []byte) error {
	*p = ReportPayload{}
	var raw struct {
		Statistics      json.RawMessage `json:"statistics"`
		PopularRooms    json.RawMessage `json:"popularRooms"`
		ActiveUsers     json.RawMessage `json:"activeUsers"`
		MonthlyActivity json.RawMessage `json:"monthlyActivity"`
	}
	if ok, err := decodeObject(data, &raw); !ok || err != nil {
		return err
	}

	var stats StatisticsPayload
	if ok, err := decodeObject(raw.Statistics, &stats); err != nil {
		return err
	} else if ok {
		p.Statistics = &stats
	}
	if err := decodeList(raw.PopularRooms, &p.PopularRooms); err != nil {
		return err
	}
	if err := decodeList(raw.ActiveUsers, &p.ActiveUsers); err != nil {
		return err
	}
	return decodeList(raw.MonthlyActivity, &p.MonthlyActivity)
}

// UnmarshalJSON leaves the statistics zero unless data is an object.
func (s *StatisticsPayload) UnmarshalJSON(data []byte) error {
	*s = StatisticsPayload{}
	type plain StatisticsPayload
	var aux struct {
		plain
		UsersByRole json.RawMessage `json:"usersByRole"`
	}
	if ok, err := decodeObject(data, &aux); !ok || err != nil {
		return err
	}
	*s = StatisticsPayload(aux.plain)

	var byRole UsersByRolePayload
	if ok, err := decodeObject(aux.UsersByRole, &byRole); err != nil {
		return err
	} else if ok {
		s.UsersByRole = &byRole
	}
	return nil
}

// UnmarshalJSON leaves the counts zero unless data is an object.
func (u *UsersByRolePayload) UnmarshalJSON(data []byte) error {
	*u = UsersByRolePayload{}
	type plain UsersByRolePayload
	_, err := decodeObject(data, (*plain)(u))
	return err
}

// UnmarshalJSON turns a non-object row into an empty row.
func (r *PopularRoomPayload) UnmarshalJSON(data []byte) error {
	*r = PopularRoomPayload{}
	type plain PopularRoomPayload
	var aux struct {
		plain
		RoleData json.RawMessage `json:"roleData"`
	}
	if ok, err := decodeObject(data, &aux); !ok || err != nil {
		return err
	}
	*r = PopularRoomPayload(aux.plain)

	var roles RoleBreakdownPayload
	if ok, err := decodeObject(aux.RoleData, &roles); err != nil {
		return err
	} else if ok {
		r.RoleData = &roles
	}
	return nil
}

// UnmarshalJSON leaves the counts zero unless data is an object.
func (b *RoleBreakdownPayload) UnmarshalJSON(data []byte) error {
	*b = RoleBreakdownPayload{}
	type plain RoleBreakdownPayload
	_, err := decodeObject(data, (*plain)(b))
	return err
}

// UnmarshalJSON turns a non-object row into an empty row.
func (a *ActiveUserPayload) UnmarshalJSON(data []byte) error {
	*a = ActiveUserPayload{}
	type plain ActiveUserPayload
	_, err := decodeObject(data, (*plain)(a))
	return err
}

// UnmarshalJSON turns a non-object row into an empty row.
func (m *MonthlyActivityPayload) UnmarshalJSON(data []byte) error {
	*m = MonthlyActivityPayload{}
	type plain MonthlyActivityPayload
	_, err := decodeObject(data, (*plain)(m))
	return err
}
