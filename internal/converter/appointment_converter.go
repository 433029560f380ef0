package converter

import (
	"medical-appointment-service/internal/delivery/dto"
	"medical-appointment-service/internal/domain/entity"
)

// AppointmentToResponse converts an Appointment entity to its response DTO.
// EndTime is derived from the entity, never stored.
func AppointmentToResponse(appointment *entity.Appointment) *dto.AppointmentResponse {
	if appointment == nil {
		return nil
	}

	response := &dto.AppointmentResponse{
		ID:                 appointment.ID,
		PatientID:          appointment.PatientID,
		DoctorID:           appointment.DoctorID,
		MedicalCenterID:    appointment.MedicalCenterID,
		SpecialityID:       appointment.SpecialityID,
		StartTime:          appointment.StartTime,
		EndTime:            appointment.EndTime(),
		DurationMinutes:    appointment.DurationMinutes,
		Status:             string(appointment.Status),
		Type:               string(appointment.Type),
		Reason:             appointment.Reason,
		Notes:              appointment.Notes,
		DoctorNotes:        appointment.DoctorNotes,
		PatientPhone:       appointment.PatientPhone,
		PatientEmail:       appointment.PatientEmail,
		ReminderSent:       appointment.ReminderSent,
		CancellationReason: appointment.CancellationReason,
		CancelledBy:        appointment.CancelledBy,
		CancelledAt:        appointment.CancelledAt,
		CreatedBy:          appointment.CreatedBy,
		UpdatedBy:          appointment.UpdatedBy,
		CreatedAt:          appointment.CreatedAt,
		UpdatedAt:          appointment.UpdatedAt,
		Version:            appointment.Version,
	}

	if appointment.ConfirmationToken != nil {
		response.ConfirmationToken = *appointment.ConfirmationToken
	}

	return response
}

// AppointmentsToResponses converts a slice of Appointment entities
func AppointmentsToResponses(appointments []entity.Appointment) []dto.AppointmentResponse {
	responses := make([]dto.AppointmentResponse, len(appointments))
	for i := range appointments {
		responses[i] = *AppointmentToResponse(&appointments[i])
	}
	return responses
}

// HistoryToResponse converts an AppointmentHistory entry to its response DTO
func HistoryToResponse(entry *entity.AppointmentHistory) *dto.HistoryEntryResponse {
	if entry == nil {
		return nil
	}

	response := &dto.HistoryEntryResponse{
		ID:            entry.ID,
		AppointmentID: entry.AppointmentID,
		Action:        entry.Action,
		Description:   entry.Description,
		PerformedBy:   entry.PerformedBy,
		PerformedAt:   entry.PerformedAt,
		PreviousStart: entry.PreviousStart,
		NewStart:      entry.NewStart,
	}

	if entry.PreviousStatus != nil {
		response.PreviousStatus = string(*entry.PreviousStatus)
	}
	if entry.NewStatus != nil {
		response.NewStatus = string(*entry.NewStatus)
	}

	return response
}

// HistoryToResponses converts a slice of AppointmentHistory entries
func HistoryToResponses(entries []entity.AppointmentHistory) []dto.HistoryEntryResponse {
	responses := make([]dto.HistoryEntryResponse, len(entries))
	for i := range entries {
		responses[i] = *HistoryToResponse(&entries[i])
	}
	return responses
}
