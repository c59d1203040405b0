package models

import (
	"time"

	"pharmatch/internal/core/domain"
)

// PartyInfo is the counterparty block on a contract response. Phone and
// email are blanked unless the disclosure gate is open.
type PartyInfo struct {
	ID    uint   `json:"id"`
	Name  string `json:"name"`
	Phone string `json:"phone,omitempty"`
	Email string `json:"email,omitempty"`
}

// ContractResponse DTO
type ContractResponse struct {
	ID                uint                  `json:"id"`
	ApplicationID     uint                  `json:"application_id"`
	Status            domain.ContractStatus `json:"status"`
	InitialWorkDate   time.Time             `json:"initial_work_date"`
	WorkDays          int                   `json:"work_days"`
	DailyWage         int64                 `json:"daily_wage"`
	TotalCompensation int64                 `json:"total_compensation"`
	PlatformFee       int64                 `json:"platform_fee"`
	PaymentDeadline   time.Time             `json:"payment_deadline"`
	EndDate           time.Time             `json:"end_date"`
	ContactDisclosed  bool                  `json:"contact_disclosed"`
	Pharmacy          *PartyInfo            `json:"pharmacy,omitempty"`
	Pharmacist        *PartyInfo            `json:"pharmacist,omitempty"`
	Payment           *PaymentResponse      `json:"payment,omitempty"`
	CreatedAt         time.Time             `json:"created_at"`
}

// ToResponse builds the contract DTO, blanking counterparty contact details
// unless the disclosure gate is open for the contract's status.
func (c *Contract) ToResponse() *ContractResponse {
	disclosed := domain.CanDisclose(c.Status)

	resp := &ContractResponse{
		ID:                c.ID,
		ApplicationID:     c.ApplicationID,
		Status:            c.Status,
		InitialWorkDate:   c.InitialWorkDate,
		WorkDays:          c.WorkDays,
		DailyWage:         c.DailyWage,
		TotalCompensation: c.TotalCompensation,
		PlatformFee:       c.PlatformFee,
		PaymentDeadline:   c.PaymentDeadline,
		EndDate:           c.EndDate,
		ContactDisclosed:  disclosed,
		CreatedAt:         c.CreatedAt,
	}

	if c.Pharmacy != nil {
		resp.Pharmacy = &PartyInfo{ID: c.Pharmacy.ID, Name: c.Pharmacy.Name}
		if disclosed {
			resp.Pharmacy.Phone = c.Pharmacy.Phone
			resp.Pharmacy.Email = c.Pharmacy.Email
		}
	}
	if c.Pharmacist != nil {
		resp.Pharmacist = &PartyInfo{ID: c.Pharmacist.ID, Name: c.Pharmacist.Name}
		if disclosed {
			resp.Pharmacist.Phone = c.Pharmacist.Phone
			resp.Pharmacist.Email = c.Pharmacist.Email
		}
	}
	if c.Payment != nil {
		resp.Payment = c.Payment.ToResponse()
	}

	return resp
}

// PaymentResponse DTO
type PaymentResponse struct {
	ID            uint                 `json:"id"`
	ContractID    uint                 `json:"contract_id"`
	ReferenceNo   string               `json:"reference_no"`
	Amount        int64                `json:"amount"`
	PaymentStatus domain.PaymentStatus `json:"payment_status"`
	PaymentDate   *time.Time           `json:"payment_date,omitempty"`
	TransferName  string               `json:"transfer_name,omitempty"`
	ReportedAt    *time.Time           `json:"reported_at,omitempty"`
	ConfirmedAt   *time.Time           `json:"confirmed_at,omitempty"`
}

func (p *Payment) ToResponse() *PaymentResponse {
	return &PaymentResponse{
		ID:            p.ID,
		ContractID:    p.ContractID,
		ReferenceNo:   p.ReferenceNo,
		Amount:        p.Amount,
		PaymentStatus: p.PaymentStatus,
		PaymentDate:   p.PaymentDate,
		TransferName:  p.TransferName,
		ReportedAt:    p.ReportedAt,
		ConfirmedAt:   p.ConfirmedAt,
	}
}

// PenaltyResponse DTO
type PenaltyResponse struct {
	ID             uint                 `json:"id"`
	PharmacyID     uint                 `json:"pharmacy_id"`
	ContractID     uint                 `json:"contract_id"`
	PenaltyType    domain.PenaltyType   `json:"penalty_type"`
	Reason         string               `json:"reason"`
	PenaltyStatus  domain.PenaltyStatus `json:"penalty_status"`
	AppealReason   string               `json:"appeal_reason,omitempty"`
	ImposedAt      time.Time            `json:"imposed_at"`
	ResolvedAt     *time.Time           `json:"resolved_at,omitempty"`
	ResolutionNote string               `json:"resolution_note,omitempty"`
}

func (p *Penalty) ToResponse() *PenaltyResponse {
	return &PenaltyResponse{
		ID:             p.ID,
		PharmacyID:     p.PharmacyID,
		ContractID:     p.ContractID,
		PenaltyType:    p.PenaltyType,
		Reason:         p.Reason,
		PenaltyStatus:  p.PenaltyStatus,
		AppealReason:   p.AppealReason,
		ImposedAt:      p.ImposedAt,
		ResolvedAt:     p.ResolvedAt,
		ResolutionNote: p.ResolutionNote,
	}
}

// ApplicationResponse DTO
type ApplicationResponse struct {
	ID              uint                     `json:"id"`
	JobPostingID    uint                     `json:"job_posting_id"`
	PharmacistID    uint                     `json:"pharmacist_id"`
	Status          domain.ApplicationStatus `json:"status"`
	AppliedAt       time.Time                `json:"applied_at"`
	RejectionReason string                   `json:"rejection_reason,omitempty"`
}

func (a *Application) ToResponse() *ApplicationResponse {
	return &ApplicationResponse{
		ID:              a.ID,
		JobPostingID:    a.JobPostingID,
		PharmacistID:    a.PharmacistID,
		Status:          a.Status,
		AppliedAt:       a.AppliedAt,
		RejectionReason: a.RejectionReason,
	}
}
