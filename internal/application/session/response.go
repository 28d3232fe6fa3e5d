package session

import (
	"github.com/jhoicas/mesa-api/internal/application/dto"
	"github.com/jhoicas/mesa-api/internal/domain/entity"
)

// ToResponse vista pública de la sesión (sin tokens).
func ToResponse(s *entity.Session) *dto.SessionResponse {
	if s == nil {
		return nil
	}
	out := &dto.SessionResponse{
		SessionID:    s.ID,
		TableID:      s.TableID,
		State:        string(s.State),
		IsValidating: s.IsValidating,
		Error:        s.LastError,
	}
	if s.User != nil {
		u := ToUserDTO(*s.User)
		out.User = &u
	}
	return out
}

func ToUserDTO(u entity.UserIdentity) dto.UserDTO {
	return dto.UserDTO{
		FullName:            u.FullName(),
		FirstName:           u.FirstName,
		LastName:            u.LastName,
		CURP:                u.CURP,
		Email:               u.Email,
		Company:             u.Company,
		Contractor:          u.Contractor,
		TenantName:          u.TenantName,
		Tenant:              u.Tenant,
		MaxCreditLine:       u.MaxCreditLine,
		RemainingCreditLine: u.RemainingCreditLine,
	}
}
