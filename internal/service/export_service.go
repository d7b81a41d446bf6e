package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/undarez/camper-splatchs-sub001/internal/dto"
	"github.com/undarez/camper-splatchs-sub001/internal/model"
	"github.com/undarez/camper-splatchs-sub001/internal/policy"
	"github.com/undarez/camper-splatchs-sub001/internal/repository"
	pkgerrors "github.com/undarez/camper-splatchs-sub001/pkg/errors"
)

// ── export errors ──

var (
	ErrExportNoStations   = newBizError(pkgerrors.ErrNotFound, "no station matches the export filter")
	ErrExportGenerateFail = errors.New("generate spreadsheet failed")
)

// ExportService spreadsheet export for administrators.
//
// One sheet, one row per station, wash and parking attributes side by side.
// The workbook is returned as a buffer; the handler sets the download headers.
type ExportService interface {
	ExportStations(ctx context.Context, req *dto.StationListRequest, actor *policy.Actor) (*bytes.Buffer, string, error)
}

type exportService struct {
	repo   *repository.Repository
	policy *policy.Policy
	logger *zap.Logger
}

// NewExportService creates an ExportService
func NewExportService(repo *repository.Repository, pol *policy.Policy, logger *zap.Logger) ExportService {
	return &exportService{repo: repo, policy: pol, logger: logger}
}

var exportColumns = []struct {
	title string
	width float64
}{
	{"ID", 38}, {"Nom", 28}, {"Type", 14}, {"Statut", 11}, {"Adresse", 32},
	{"Ville", 18}, {"Code postal", 11}, {"Latitude", 11}, {"Longitude", 11},
	{"Auteur", 20}, {"Créée le", 18}, {"Validée le", 18}, {"Validée par", 24},
	{"Haute pression", 14}, {"Électricité", 11}, {"Gonflage", 9}, {"Aspirateur", 10},
	{"Accès PMR", 10}, {"Eaux usées", 10}, {"Point d'eau", 10}, {"Vidange grises", 13},
	{"Vidange noires", 13}, {"Longueur max", 12}, {"Paiements", 24},
	{"Payant", 8}, {"Tarif", 8}, {"Taxe de séjour", 13}, {"Places", 8}, {"Commerces", 30},
}

func (s *exportService) ExportStations(ctx context.Context, req *dto.StationListRequest, actor *policy.Actor) (*bytes.Buffer, string, error) {
	if actor == nil {
		return nil, "", ErrAuthRequired
	}
	if !s.policy.IsAdmin(actor) {
		return nil, "", ErrAdminRequired
	}

	// 1. query
	stations, err := s.repo.Station.ListAll(ctx, repository.StationFilter{
		Type:   model.StationType(req.Type),
		City:   strings.TrimSpace(req.City),
		Status: model.StationStatus(req.Status),
	})
	if err != nil {
		s.logger.Error("list stations for export failed", zap.Error(err))
		return nil, "", err
	}
	if len(stations) == 0 {
		return nil, "", ErrExportNoStations
	}

	// 2. workbook
	f := excelize.NewFile()
	defer f.Close()

	sheetName := "Stations"
	idx, _ := f.NewSheet(sheetName)
	f.SetActiveSheet(idx)
	f.DeleteSheet("Sheet1")

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11, Color: "#FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#1F7A8C"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})

	for i, col := range exportColumns {
		name := colName(i)
		f.SetColWidth(sheetName, name, name, col.width)
		f.SetCellValue(sheetName, cell(name, 1), col.title)
	}
	f.SetCellStyle(sheetName, "A1", cell(colName(len(exportColumns)-1), 1), headerStyle)

	// 3. rows
	for i := range stations {
		row := i + 2
		if err := f.SetSheetRow(sheetName, cell("A", row), ptrRow(exportRow(&stations[i]))); err != nil {
			s.logger.Error("write export row failed", zap.Int("row", row), zap.Error(err))
			return nil, "", ErrExportGenerateFail
		}
	}

	lastCell := cell(colName(len(exportColumns)-1), len(stations)+1)
	if err := f.AutoFilter(sheetName, "A1:"+lastCell, nil); err != nil {
		s.logger.Warn("set export autofilter failed", zap.Error(err))
	}
	f.SetPanes(sheetName, &excelize.Panes{Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft"})

	// 4. buffer
	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		s.logger.Error("write workbook failed", zap.Error(err))
		return nil, "", ErrExportGenerateFail
	}

	filename := fmt.Sprintf("stations_%s.xlsx", time.Now().Format("20060102"))
	s.logger.Info("stations exported", zap.Int("count", len(stations)), zap.String("by", actor.Email))
	return buf, filename, nil
}

// exportRow one line per station, blank cells for the sub-record it does not have
func exportRow(st *model.Station) []interface{} {
	author := ""
	if st.Author != nil {
		author = st.Author.Name
	}
	validatedAt, validatedBy := "", ""
	if st.ValidatedAt != nil {
		validatedAt = st.ValidatedAt.Format("2006-01-02 15:04")
	}
	if st.ValidatedBy != nil {
		validatedBy = *st.ValidatedBy
	}

	row := []interface{}{
		st.StationID, st.Name, string(st.Type), string(st.Status), st.Address,
		st.City, st.PostalCode, st.Latitude, st.Longitude,
		author, st.CreatedAt.Format("2006-01-02 15:04"), validatedAt, validatedBy,
	}

	if svc := st.Service; svc != nil {
		maxLength := ""
		if svc.MaxVehicleLength != nil {
			maxLength = fmt.Sprintf("%.1f", *svc.MaxVehicleLength)
		}
		row = append(row,
			string(svc.HighPressure), string(svc.Electricity), yesNo(svc.TirePressure), yesNo(svc.Vacuum),
			yesNo(svc.HandicapAccess), yesNo(svc.WasteWater), yesNo(svc.WaterPoint), yesNo(svc.WasteWaterDisposal),
			yesNo(svc.BlackWaterDisposal), maxLength, strings.Join(svc.PaymentMethods, ", "),
		)
	} else {
		row = append(row, "", "", "", "", "", "", "", "", "", "", "")
	}

	if p := st.Parking; p != nil {
		tariff, stayTax := "", ""
		if p.Tariff != nil {
			tariff = fmt.Sprintf("%.2f", *p.Tariff)
		}
		if p.StayTax != nil {
			stayTax = fmt.Sprintf("%.2f", *p.StayTax)
		}
		row = append(row, yesNo(p.IsPaid), tariff, stayTax, p.TotalPlaces, strings.Join(p.NearbyAmenities, ", "))
	} else {
		row = append(row, "", "", "", "", "")
	}
	return row
}

// ptrRow SetSheetRow wants a pointer to a slice
func ptrRow(row []interface{}) *[]interface{} { return &row }

func yesNo(b bool) string {
	if b {
		return "oui"
	}
	return "non"
}

// ── helpers ──

func colName(idx int) string {
	name, _ := excelize.ColumnNumberToName(idx + 1)
	return name
}

func cell(col string, row int) string {
	return fmt.Sprintf("%s%d", col, row)
}
