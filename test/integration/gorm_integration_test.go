package integration

import (
	"context"
	"log"
	"os"
	"testing"
	"time"

	"clinical-docs-be/internal/entity"
	"clinical-docs-be/internal/repository/specification"
	"clinical-docs-be/internal/repository/unitofwork"
	"clinical-docs-be/pkg/database"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/stretchr/testify/assert"
)

func TestGormConnection(t *testing.T) {
	// Load .env from root
	err := godotenv.Load("../../.env")
	if err != nil {
		log.Println("No .env file found, using system env")
	}

	dsn := os.Getenv("DB_CONNECTION_STRING")
	if dsn == "" {
		t.Skip("Skipping integration test: DB_CONNECTION_STRING not set")
	}

	gormDB, err := database.NewGormDBFromDSN(dsn)
	if err != nil {
		t.Fatalf("Failed to connect to DB: %v", err)
	}

	// Verify Wiring
	uowFactory := unitofwork.NewRepositoryFactory(gormDB)
	uow := uowFactory.NewUnitOfWork(context.Background())

	assert.NotNil(t, uow.PatientRepository())
	assert.NotNil(t, uow.NoteEmbeddingRepository())

	// Basic Ping
	sqlDB, _ := gormDB.DB()
	err = sqlDB.Ping()
	assert.NoError(t, err)
	t.Log("Successfully connected to DB and initialized UnitOfWork Factory")

	// Verify Data Access (implies columns exist)
	t.Run("Check Patient Repository", func(t *testing.T) {
		count, err := uow.PatientRepository().Count(context.Background())
		assert.NoError(t, err)
		t.Logf("Patient count: %d", count)
	})

	t.Run("Check Note Embedding Repository", func(t *testing.T) {
		// Count implies the vector-backed table exists
		count, err := uow.NoteEmbeddingRepository().Count(context.Background())
		assert.NoError(t, err)
		t.Logf("NoteEmbedding count: %d", count)
	})

	t.Run("Check Transactional Patient Session", func(t *testing.T) {
		ctx := context.Background()
		txUow := uowFactory.NewUnitOfWork(ctx)

		err := txUow.Begin(ctx)
		assert.NoError(t, err)
		defer txUow.Rollback()

		patientId := uuid.New()
		patient := &entity.Patient{
			Id:                  patientId,
			FirstName:           "Integration",
			LastName:            "Patient",
			MedicalRecordNumber: "MRN-IT-" + uuid.New().String()[:8],
		}
		err = txUow.PatientRepository().Create(ctx, patient)
		assert.NoError(t, err)

		session := &entity.Session{
			Id:        uuid.New(),
			PatientId: patientId,
			VisitDate: time.Now(),
			Notes:     "integration visit",
		}
		err = txUow.SessionRepository().Create(ctx, session)
		assert.NoError(t, err)

		// Visible inside the transaction
		found, err := txUow.SessionRepository().FindOne(ctx, specification.ByID{ID: session.Id})
		assert.NoError(t, err)
		assert.NotNil(t, found)
		assert.Equal(t, patientId, found.PatientId)

		// Rollback via defer: nothing persists after the test
	})
}
