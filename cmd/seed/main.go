package main

import (
	"log"
	"os"
	"time"

	"clinical-docs-be/internal/model"
	"clinical-docs-be/pkg/database"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"
)

func main() {
	// Load Environment Variables
	if err := godotenv.Load(); err != nil {
		log.Println("Info: No .env file found, using system env")
	}

	dsn := os.Getenv("DB_CONNECTION_STRING")
	if dsn == "" {
		log.Fatal("Error: DB_CONNECTION_STRING is not set")
	}

	db, err := database.NewGormDBFromDSN(dsn)
	if err != nil {
		log.Fatal("Error: Failed to connect to database:", err)
	}

	log.Println("Seeding demo clinician...")

	hash, err := bcrypt.GenerateFromPassword([]byte("clinician123"), bcrypt.DefaultCost)
	if err != nil {
		log.Fatal("Error: Failed to hash password:", err)
	}
	password := string(hash)

	clinician := model.User{
		Email:        "clinician@example.com",
		PasswordHash: &password,
		FullName:     "Demo Clinician",
		Role:         "clinician",
		Status:       "active",
	}

	var existingUser model.User
	if err := db.Where("email = ?", clinician.Email).First(&existingUser).Error; err == nil {
		log.Printf("User '%s' already exists, skipping...", clinician.Email)
	} else if err := db.Create(&clinician).Error; err != nil {
		log.Fatal("Error: Failed to create clinician:", err)
	} else {
		log.Printf("Created clinician: %s", clinician.Email)
	}

	log.Println("Seeding demo patients...")

	dob := func(year int, month time.Month, day int) *time.Time {
		d := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
		return &d
	}

	patients := []model.Patient{
		{FirstName: "Alice", LastName: "Hartono", MedicalRecordNumber: "MRN-0001", DateOfBirth: dob(1984, time.March, 12)},
		{FirstName: "Budi", LastName: "Santoso", MedicalRecordNumber: "MRN-0002", DateOfBirth: dob(1972, time.November, 3)},
		{FirstName: "Citra", LastName: "Wijaya", MedicalRecordNumber: "MRN-0003", DateOfBirth: dob(1996, time.July, 28)},
	}

	for i := range patients {
		p := &patients[i]

		var existing model.Patient
		if err := db.Where("medical_record_number = ?", p.MedicalRecordNumber).First(&existing).Error; err == nil {
			log.Printf("Patient '%s' already exists, skipping...", p.MedicalRecordNumber)
			*p = existing
			continue
		}

		if err := db.Create(p).Error; err != nil {
			log.Printf("Error creating patient '%s': %v", p.MedicalRecordNumber, err)
		} else {
			log.Printf("Created patient: %s %s (%s)", p.FirstName, p.LastName, p.MedicalRecordNumber)
		}
	}

	log.Println("Seeding demo sessions...")

	for _, p := range patients {
		if p.Id == uuid.Nil {
			continue
		}

		var count int64
		db.Model(&model.Session{}).Where("patient_id = ?", p.Id).Count(&count)
		if count > 0 {
			log.Printf("Sessions for patient '%s' already exist, skipping...", p.MedicalRecordNumber)
			continue
		}

		session := model.Session{
			PatientId: p.Id,
			VisitDate: time.Now().AddDate(0, 0, -7),
			Notes:     "Initial consultation",
		}
		if err := db.Create(&session).Error; err != nil {
			log.Printf("Error creating session for '%s': %v", p.MedicalRecordNumber, err)
		} else {
			log.Printf("Created session %s for patient %s", session.Id, p.MedicalRecordNumber)
		}
	}

	log.Println("Seeding completed!")
}
