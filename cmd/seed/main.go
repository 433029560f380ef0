package main

import (
	"flag"
	"fmt"
	"time"

	"medical-appointment-service/config"
	"medical-appointment-service/internal/domain/entity"
	"medical-appointment-service/internal/infrastructure/database"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Development data seeder. Generates doctors with non-overlapping appointment
// slots over the next two weeks.
func main() {
	doctors := flag.Int("doctors", 5, "number of doctors to seed")
	perDoctor := flag.Int("appointments", 20, "appointments per doctor")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		logrus.Fatalf("Failed to load config: %v", err)
	}

	db, err := database.NewPostgresConnection(cfg.DB)
	if err != nil {
		logrus.Fatalf("Failed to connect to database: %v", err)
	}
	if err := database.RunMigrations(db, cfg.DB); err != nil {
		logrus.Fatalf("Failed to run migrations: %v", err)
	}

	faker := gofakeit.New(0)

	types := []entity.AppointmentType{
		entity.TypeConsultation,
		entity.TypeFollowUp,
		entity.TypePreventive,
		entity.TypeDiagnostic,
		entity.TypeTelemedicine,
	}

	total := 0
	for d := 0; d < *doctors; d++ {
		doctorID := uuid.New()
		medicalCenterID := uuid.New()
		specialityID := uuid.New()

		// Consecutive 30-minute slots starting tomorrow 08:00, 16 per day
		slot := time.Now().Truncate(24 * time.Hour).AddDate(0, 0, 1).Add(8 * time.Hour)
		slotsToday := 0

		for a := 0; a < *perDoctor; a++ {
			if slotsToday == 16 {
				slot = slot.AddDate(0, 0, 1).Add(-8 * time.Hour)
				slotsToday = 0
			}

			patientID := uuid.New()
			token := uuid.NewString()
			appointment := entity.Appointment{
				ID:                uuid.New(),
				PatientID:         patientID,
				DoctorID:          doctorID,
				MedicalCenterID:   medicalCenterID,
				SpecialityID:      specialityID,
				StartTime:         slot,
				DurationMinutes:   30,
				Status:            entity.StatusScheduled,
				Type:              types[faker.Number(0, len(types)-1)],
				Reason:            faker.Sentence(6),
				PatientPhone:      faker.Phone(),
				PatientEmail:      faker.Email(),
				ConfirmationToken: &token,
				CreatedBy:         patientID.String(),
				UpdatedBy:         patientID.String(),
				Version:           1,
			}

			if err := db.Create(&appointment).Error; err != nil {
				logrus.Fatalf("Failed to seed appointment: %v", err)
			}

			history := entity.AppointmentHistory{
				AppointmentID: appointment.ID,
				Action:        entity.HistoryActionCreated,
				Description:   "Appointment created",
				PerformedBy:   patientID.String(),
				PerformedAt:   time.Now(),
			}
			if err := db.Create(&history).Error; err != nil {
				logrus.Fatalf("Failed to seed appointment history: %v", err)
			}

			slot = slot.Add(30 * time.Minute)
			slotsToday++
			total++
		}
	}

	fmt.Printf("Seeded %d appointments across %d doctors\n", total, *doctors)
}
