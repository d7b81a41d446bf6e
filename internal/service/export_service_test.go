package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/undarez/camper-splatchs-sub001/internal/dto"
	"github.com/undarez/camper-splatchs-sub001/internal/model"
)

func TestExportService_ExportStations_RequiresAdmin(t *testing.T) {
	env := newTestEnv()
	user := env.addUser("u1", "user@example.fr", model.RoleUser)
	svc := NewExportService(env.repo, env.policy, env.logger)

	if _, _, err := svc.ExportStations(context.Background(), &dto.StationListRequest{}, user); !errors.Is(err, ErrAdminRequired) {
		t.Errorf("expected ErrAdminRequired, got %v", err)
	}
	if _, _, err := svc.ExportStations(context.Background(), &dto.StationListRequest{}, nil); !errors.Is(err, ErrAuthRequired) {
		t.Errorf("expected ErrAuthRequired, got %v", err)
	}
}

func TestExportService_ExportStations_NoStations(t *testing.T) {
	env := newTestEnv()
	admin := env.addUser("admin", testAdminEmail, model.RoleAdmin)
	svc := NewExportService(env.repo, env.policy, env.logger)

	_, _, err := svc.ExportStations(context.Background(), &dto.StationListRequest{}, admin)
	if !errors.Is(err, ErrExportNoStations) {
		t.Errorf("expected ErrExportNoStations, got %v", err)
	}
}

func TestExportService_ExportStations_Success(t *testing.T) {
	env := newTestEnv()
	admin := env.addUser("admin", testAdminEmail, model.RoleAdmin)

	wash := env.addStation("s1", model.StationTypeWash, model.StatusActive, "admin")
	validatedAt := time.Date(2026, 4, 2, 9, 30, 0, 0, time.UTC)
	wash.ValidatedAt = &validatedAt
	svcRow := model.DefaultService("s1")
	svcRow.TirePressure = true
	svcRow.PaymentMethods = []string{"JETON", "CARTE_BANCAIRE"}
	env.store.services["s1"] = svcRow

	env.addStation("s2", model.StationTypeParking, model.StatusPending, "admin")
	parking := model.DefaultParkingDetails("s2")
	parking.TotalPlaces = 20
	env.store.parkings["s2"] = parking

	svc := NewExportService(env.repo, env.policy, env.logger)
	buf, filename, err := svc.ExportStations(context.Background(), &dto.StationListRequest{}, admin)
	if err != nil {
		t.Fatalf("ExportStations: %v", err)
	}
	if filename == "" || buf.Len() == 0 {
		t.Fatal("expected a named, non-empty workbook")
	}

	f, err := excelize.OpenReader(buf)
	if err != nil {
		t.Fatalf("open workbook: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows("Stations")
	if err != nil {
		t.Fatalf("read rows: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("expected header + 2 rows, got %d", len(rows))
	}
	if rows[0][0] != "ID" || rows[1][0] != "s1" || rows[2][0] != "s2" {
		t.Errorf("unexpected first column %v / %v / %v", rows[0][0], rows[1][0], rows[2][0])
	}
	if rows[1][15] != "oui" {
		t.Errorf("expected tire pressure 'oui', got %q", rows[1][15])
	}
	if rows[1][23] != "JETON, CARTE_BANCAIRE" {
		t.Errorf("unexpected payment methods cell %q", rows[1][23])
	}
	if rows[2][27] != "20" {
		t.Errorf("expected 20 places, got %q", rows[2][27])
	}
}

func TestExportService_ExportStations_Filter(t *testing.T) {
	env := newTestEnv()
	admin := env.addUser("admin", testAdminEmail, model.RoleAdmin)
	env.addStation("s1", model.StationTypeWash, model.StatusActive, "admin")
	env.addStation("s2", model.StationTypeParking, model.StatusActive, "admin")

	svc := NewExportService(env.repo, env.policy, env.logger)
	buf, _, err := svc.ExportStations(context.Background(), &dto.StationListRequest{Type: "PARKING"}, admin)
	if err != nil {
		t.Fatalf("ExportStations: %v", err)
	}
	f, _ := excelize.OpenReader(buf)
	defer f.Close()
	rows, _ := f.GetRows("Stations")
	if len(rows) != 2 || rows[1][0] != "s2" {
		t.Errorf("expected only the parking row, got %v", rows)
	}
}
