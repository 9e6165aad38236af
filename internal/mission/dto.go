package mission

import (
	"strings"

	"github.com/frahmantamala/field-expense/internal/core/common/validation"
)

type StartMissionDTO struct {
	Name string `json:"name"`
}

func (d *StartMissionDTO) Validate() error {
	d.Name = strings.TrimSpace(d.Name)
	if appErr := validation.ValidateMissionName(d.Name); appErr != nil {
		return appErr
	}
	return nil
}

type MissionsResponse struct {
	Missions []MissionResponse `json:"missions"`
}

func ToResponses(missions []*Mission) []MissionResponse {
	out := make([]MissionResponse, 0, len(missions))
	for _, m := range missions {
		out = append(out, m.ToResponse())
	}
	return out
}
