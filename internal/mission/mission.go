package mission

import (
	"time"

	missionDatamodel "github.com/frahmantamala/field-expense/internal/core/datamodel/mission"
)

const DateLayout = "2006-01-02"

type Status string

const (
	StatusActive    Status = "active"
	StatusCompleted Status = "completed"
)

// Mission is a field trip that groups the expenses submitted during it.
type Mission struct {
	ID        string
	OwnerID   int64
	Name      string
	Status    Status
	StartDate time.Time
	EndDate   *time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (m *Mission) IsActive() bool {
	return m.Status == StatusActive
}

func day(t time.Time) time.Time {
	y, mo, d := t.UTC().Date()
	return time.Date(y, mo, d, 0, 0, 0, 0, time.UTC)
}

type MissionResponse struct {
	ID        string  `json:"id"`
	OwnerID   int64   `json:"owner_id"`
	Name      string  `json:"name"`
	Status    Status  `json:"status"`
	StartDate string  `json:"start_date"`
	EndDate   *string `json:"end_date,omitempty"`
}

func (m *Mission) ToResponse() MissionResponse {
	resp := MissionResponse{
		ID:        m.ID,
		OwnerID:   m.OwnerID,
		Name:      m.Name,
		Status:    m.Status,
		StartDate: m.StartDate.Format(DateLayout),
	}
	if m.EndDate != nil {
		end := m.EndDate.Format(DateLayout)
		resp.EndDate = &end
	}
	return resp
}

func ToDataModel(m *Mission) *missionDatamodel.Mission {
	return &missionDatamodel.Mission{
		ID:        m.ID,
		OwnerID:   m.OwnerID,
		Name:      m.Name,
		Status:    string(m.Status),
		StartDate: m.StartDate,
		EndDate:   m.EndDate,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

func FromDataModel(row *missionDatamodel.Mission) *Mission {
	m := &Mission{
		ID:        row.ID,
		OwnerID:   row.OwnerID,
		Name:      row.Name,
		Status:    Status(row.Status),
		StartDate: day(row.StartDate),
		CreatedAt: row.CreatedAt,
		UpdatedAt: row.UpdatedAt,
	}
	if row.EndDate != nil {
		end := day(*row.EndDate)
		m.EndDate = &end
	}
	return m
}
