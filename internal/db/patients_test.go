package db

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/themobileprof/mhaas-be/internal/pregnancy"
)

func newMockDB(t *testing.T) (*DB, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { sqlDB.Close() })
	return &DB{sqlDB}, mock
}

func TestCreatePatient_DerivesEDDFromLMP(t *testing.T) {
	db, mock := newMockDB(t)

	lmp := time.Date(2024, time.January, 10, 0, 0, 0, 0, time.UTC)
	wantEDD := time.Date(2024, time.October, 17, 0, 0, 0, 0, time.UTC)

	patient := &Patient{
		UserID:        "u1",
		HospitalID:    "h1",
		RegisteredBy:  "staff-1",
		FullName:      "Amina Yusuf",
		PhoneNumber:   "+2348011111111",
		DateOfBirth:   time.Date(1995, time.March, 2, 0, 0, 0, 0, time.UTC),
		MaritalStatus: "Married",
		LMP:           lmp,
		Gravida:       2,
		Parity:        1,
	}

	rows := sqlmock.NewRows([]string{"id", "created_at"}).AddRow("p1", time.Now())
	mock.ExpectQuery(`INSERT INTO patients`).
		WithArgs(patient.UserID, patient.HospitalID, patient.RegisteredBy, patient.FullName,
			patient.PhoneNumber, patient.DateOfBirth, patient.MaritalStatus,
			lmp, wantEDD, patient.Gravida, patient.Parity).
		WillReturnRows(rows)

	if err := db.CreatePatient(context.Background(), patient); err != nil {
		t.Fatalf("CreatePatient returned error: %v", err)
	}

	if patient.EDD == nil || !patient.EDD.Equal(wantEDD) {
		t.Errorf("EDD = %v, want %s", patient.EDD, wantEDD.Format("2006-01-02"))
	}
	if patient.ID != "p1" {
		t.Errorf("ID = %q, want p1", patient.ID)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestCreatePatient_IgnoresCallerSuppliedEDD(t *testing.T) {
	db, mock := newMockDB(t)

	lmp := time.Date(2024, time.January, 10, 0, 0, 0, 0, time.UTC)
	wantEDD := time.Date(2024, time.October, 17, 0, 0, 0, 0, time.UTC)
	bogusEDD := time.Date(2030, time.January, 1, 0, 0, 0, 0, time.UTC)

	patient := &Patient{UserID: "u1", HospitalID: "h1", LMP: lmp, EDD: &bogusEDD}

	rows := sqlmock.NewRows([]string{"id", "created_at"}).AddRow("p1", time.Now())
	mock.ExpectQuery(`INSERT INTO patients`).
		WithArgs(patient.UserID, patient.HospitalID, patient.RegisteredBy, patient.FullName,
			patient.PhoneNumber, patient.DateOfBirth, patient.MaritalStatus,
			lmp, wantEDD, patient.Gravida, patient.Parity).
		WillReturnRows(rows)

	if err := db.CreatePatient(context.Background(), patient); err != nil {
		t.Fatalf("CreatePatient returned error: %v", err)
	}

	if !patient.EDD.Equal(wantEDD) {
		t.Errorf("EDD = %s, want the value derived from LMP", patient.EDD.Format("2006-01-02"))
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestCreatePatient_InvalidLMP(t *testing.T) {
	db, _ := newMockDB(t)

	patient := &Patient{UserID: "u1", HospitalID: "h1"}
	if err := db.CreatePatient(context.Background(), patient); !errors.Is(err, pregnancy.ErrInvalidDate) {
		t.Errorf("CreatePatient error = %v, want ErrInvalidDate", err)
	}
}

func TestUpdatePatientLMP_RecomputesEDD(t *testing.T) {
	db, mock := newMockDB(t)

	newLMP := time.Date(2024, time.May, 30, 0, 0, 0, 0, time.UTC)
	wantEDD := time.Date(2025, time.March, 6, 0, 0, 0, 0, time.UTC)

	rows := sqlmock.NewRows([]string{
		"id", "user_id", "hospital_id", "registered_by", "full_name", "phone_number",
		"date_of_birth", "marital_status", "lmp", "edd", "gravida", "parity", "created_at",
	}).AddRow("p1", "u1", "h1", "staff-1", "Amina Yusuf", "+2348011111111",
		time.Date(1995, time.March, 2, 0, 0, 0, 0, time.UTC), "Married",
		newLMP, wantEDD, 2, 1, time.Now())

	mock.ExpectQuery(`UPDATE patients`).
		WithArgs(newLMP, wantEDD, "p1").
		WillReturnRows(rows)

	patient, err := db.UpdatePatientLMP(context.Background(), "p1", newLMP)
	if err != nil {
		t.Fatalf("UpdatePatientLMP returned error: %v", err)
	}

	if patient.EDD == nil || !patient.EDD.Equal(wantEDD) {
		t.Errorf("EDD = %v, want %s", patient.EDD, wantEDD.Format("2006-01-02"))
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestGetPatientByID_NotFound(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectQuery(`FROM patients`).
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	if _, err := db.GetPatientByID(context.Background(), "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetPatientByID error = %v, want ErrNotFound", err)
	}
}

func TestListPatientsWithEDD(t *testing.T) {
	db, mock := newMockDB(t)

	edd := time.Date(2025, time.March, 6, 0, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows([]string{
		"id", "user_id", "hospital_id", "registered_by", "full_name", "phone_number",
		"date_of_birth", "marital_status", "lmp", "edd", "gravida", "parity", "created_at",
	}).AddRow("p1", "u1", "h1", "staff-1", "Amina Yusuf", "+2348011111111",
		time.Date(1995, time.March, 2, 0, 0, 0, 0, time.UTC), "Married",
		time.Date(2024, time.May, 30, 0, 0, 0, 0, time.UTC), edd, 2, 1, time.Now())

	mock.ExpectQuery(`WHERE edd IS NOT NULL`).
		WillReturnRows(rows)

	patients, err := db.ListPatientsWithEDD(context.Background())
	if err != nil {
		t.Fatalf("ListPatientsWithEDD returned error: %v", err)
	}
	if len(patients) != 1 {
		t.Fatalf("got %d patients, want 1", len(patients))
	}
	if patients[0].EDD == nil || !patients[0].EDD.Equal(edd) {
		t.Errorf("EDD = %v, want %s", patients[0].EDD, edd.Format("2006-01-02"))
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
