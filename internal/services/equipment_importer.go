package services

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"equipment-store/internal/dto"
	"equipment-store/internal/repositories"
	"equipment-store/pkg/constants"
	apperrors "equipment-store/pkg/errors"
	"equipment-store/pkg/types"
	"equipment-store/pkg/utils"
)

const equipmentSheet = "Equipment"

// Columns looked up in the header row of an uploaded workbook. Each entry
// lists the accepted spellings, lowercased.
var importColumns = map[string][]string{
	"serial_number": {"serial_number", "serial number", "serial"},
	"model_number":  {"model_number", "model number", "model"},
	"brand":         {"brand"},
	"price":         {"price"},
	"buy_date":      {"buy_date", "buy date", "purchase date"},
}

var exportHeader = []string{
	"Label", "Serial number", "Model number", "Brand", "Price", "Buy date",
	"Type", "Status", "Current user", "Created at",
}

type EquipmentSpreadsheetServiceInterface interface {
	ExportEquipments(ctx context.Context, typeRef string, listing constants.EquipmentFilter, search string) ([]byte, error)
	ImportEquipments(ctx context.Context, typeRef string, r io.Reader) (*dto.ImportResultDTO, error)
}

type EquipmentSpreadsheetService struct {
	equipmentService  EquipmentServiceInterface
	equipmentTypeRepo repositories.EquipmentTypeRepositoryInterface
	validate          *validator.Validate
	logger            *zap.Logger
}

func NewEquipmentSpreadsheetService(
	equipmentService EquipmentServiceInterface,
	equipmentTypeRepo repositories.EquipmentTypeRepositoryInterface,
	validate *validator.Validate,
	logger *zap.Logger,
) EquipmentSpreadsheetServiceInterface {
	return &EquipmentSpreadsheetService{
		equipmentService:  equipmentService,
		equipmentTypeRepo: equipmentTypeRepo,
		validate:          validate,
		logger:            logger,
	}
}

// ExportEquipments renders a whole listing, unpaginated, as an xlsx workbook.
func (s *EquipmentSpreadsheetService) ExportEquipments(ctx context.Context, typeRef string, listing constants.EquipmentFilter, search string) ([]byte, error) {
	list, _, err := s.equipmentService.GetEquipments(ctx, typeRef, listing, types.Filter{Search: search})
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", equipmentSheet); err != nil {
		return nil, err
	}
	headerStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, err
	}
	if err := f.SetSheetRow(equipmentSheet, "A1", &exportHeader); err != nil {
		return nil, err
	}
	lastCol, _ := excelize.ColumnNumberToName(len(exportHeader))
	if err := f.SetCellStyle(equipmentSheet, "A1", lastCol+"1", headerStyle); err != nil {
		return nil, err
	}

	for i, e := range list {
		holder := ""
		if e.CurrentUser != nil {
			holder = e.CurrentUser.Username
		}
		price, _ := e.Price.Float64()
		row := []interface{}{
			e.Label, e.SerialNumber, e.ModelNumber, e.Brand, price, e.BuyDate,
			e.EquipmentType.Name, e.Status, holder, e.CreatedAt,
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		if err := f.SetSheetRow(equipmentSheet, cell, &row); err != nil {
			return nil, err
		}
	}
	if err := f.SetColWidth(equipmentSheet, "A", lastCol, 16); err != nil {
		return nil, err
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	s.logger.Info("equipment exported", zap.String("type", typeRef), zap.String("filter", string(listing)), zap.Int("rows", len(list)))
	return buf.Bytes(), nil
}

// locateHeader finds the first row, on any sheet, holding every import
// column, and returns the sheet rows together with the header position.
func locateHeader(f *excelize.File) (rows [][]string, headerRow int, cols map[string]int, err error) {
	for _, sheet := range f.GetSheetList() {
		sheetRows, err := f.GetRows(sheet)
		if err != nil {
			return nil, 0, nil, err
		}
		for rIdx, row := range sheetRows {
			found := map[string]int{}
			for cIdx, cell := range row {
				name := strings.ToLower(strings.TrimSpace(cell))
				for field, spellings := range importColumns {
					for _, sp := range spellings {
						if name == sp {
							found[field] = cIdx
						}
					}
				}
			}
			if len(found) == len(importColumns) {
				return sheetRows, rIdx, found, nil
			}
		}
	}
	return nil, 0, nil, apperrors.NewInvalidInputError("no header row with columns serial_number, model_number, brand, price and buy_date")
}

func cellAt(row []string, idx int) string {
	if idx < len(row) {
		return strings.TrimSpace(row[idx])
	}
	return ""
}

// importDate accepts ISO dates and raw Excel date serials.
func importDate(raw string) string {
	if _, err := utils.ParseDate(raw); err == nil {
		return raw
	}
	if serial, err := strconv.ParseFloat(raw, 64); err == nil {
		if t, err := excelize.ExcelDateToTime(serial, false); err == nil {
			return t.Format(utils.DateLayout)
		}
	}
	return raw
}

// ImportEquipments creates one unit of the type per data row. Rows that fail
// validation or creation are reported and skipped; the rest are kept.
func (s *EquipmentSpreadsheetService) ImportEquipments(ctx context.Context, typeRef string, r io.Reader) (*dto.ImportResultDTO, error) {
	et, err := s.equipmentTypeRepo.ResolveEquipmentType(ctx, nil, typeRef)
	if err != nil {
		return nil, err
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, apperrors.NewInvalidInputError("file is not a valid xlsx workbook: %v", err)
	}
	defer f.Close()

	rows, headerRow, cols, err := locateHeader(f)
	if err != nil {
		return nil, err
	}

	result := &dto.ImportResultDTO{
		Created: []dto.ShortEquipmentDTO{},
		Skipped: []dto.ImportRowErrorDTO{},
	}
	for rIdx := headerRow + 1; rIdx < len(rows); rIdx++ {
		row := rows[rIdx]
		if strings.TrimSpace(strings.Join(row, "")) == "" {
			continue
		}
		rowNumber := rIdx + 1
		skip := func(err error) {
			result.Skipped = append(result.Skipped, dto.ImportRowErrorDTO{Row: rowNumber, Error: err.Error()})
		}

		payload := dto.CreateEquipmentDTO{
			SerialNumber:    cellAt(row, cols["serial_number"]),
			ModelNumber:     cellAt(row, cols["model_number"]),
			Brand:           cellAt(row, cols["brand"]),
			BuyDate:         importDate(cellAt(row, cols["buy_date"])),
			EquipmentTypeID: et.ID,
		}
		price, err := decimal.NewFromString(cellAt(row, cols["price"]))
		if err != nil {
			skip(fmt.Errorf("price: %w", err))
			continue
		}
		payload.Price = decimal.NewNullDecimal(price.Round(2))

		if err := s.validate.Struct(payload); err != nil {
			skip(err)
			continue
		}
		created, err := s.equipmentService.CreateEquipment(ctx, payload)
		if err != nil {
			// Storage failures abort the whole import.
			if apperrors.StatusOf(err) >= 500 {
				return nil, err
			}
			skip(err)
			continue
		}
		result.Created = append(result.Created, dto.ShortEquipmentDTO{ID: created.ID, Label: created.Label})
	}

	s.logger.Info("equipment imported",
		zap.Uint64("equipment_type_id", et.ID),
		zap.Int("created", len(result.Created)),
		zap.Int("skipped", len(result.Skipped)),
	)
	return result, nil
}
