package dataprocessing

import (
	"encoding/csv"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/202510804-cloud/polar-plant-dashboard/internal/config"
	apperrors "github.com/202510804-cloud/polar-plant-dashboard/internal/errors"
	"github.com/202510804-cloud/polar-plant-dashboard/internal/files"
)

// Header aliases accepted for each canonical column. Comparison happens on
// the NFC-normalized, trimmed, lower-cased header text.
var envColumnAliases = map[string][]string{
	ColTime:        {"time", "timestamp", "datetime", "측정시간", "시간"},
	ColTemperature: {"temperature", "temp", "온도"},
	ColHumidity:    {"humidity", "습도"},
	ColPH:          {"ph"},
	ColEC:          {"ec", "전기전도도"},
}

var growthColumnAliases = map[string][]string{
	ColFreshWeight: {"생중량(g)", "생중량", "fresh_weight", "fresh weight(g)", "fresh weight"},
	ColLeafCount:   {"잎 수(장)", "잎수(장)", "잎 수", "leaf_count", "leaf count"},
	ColShootLength: {"초장(cm)", "초장", "shoot_length", "shoot length"},
}

// Timestamp layouts tried in order when coercing the time column.
var timeLayouts = []string{
	"2006-01-02 15:04:05",
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	"2006/01/02 15:04:05",
	"2006/01/02 15:04",
	"2006-01-02",
	"2006.01.02 15:04",
	"01/02/2006 15:04",
}

// ParseEnvCSV reads one group's environmental CSV into a table. Every
// surviving row is tagged with the group name and target EC. Rows whose
// time value cannot be coerced are dropped, not kept with a placeholder.
// A missing time column, like any read failure, is reported as a
// recoverable SOURCE_UNREADABLE error: the group contributes zero rows and
// the caller continues with the remaining groups.
func ParseEnvCSV(path string, group config.Group) (EnvTable, error) {
	f, err := os.Open(path)
	if err != nil {
		return EnvTable{}, apperrors.NewSourceError(group.Name, "open environmental csv", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		return EnvTable{}, apperrors.NewSourceError(group.Name, "read environmental csv", err)
	}
	if len(records) == 0 {
		return EnvTable{}, apperrors.NewSourceError(group.Name, "environmental csv is empty", nil)
	}

	header := records[0]
	// Files exported from spreadsheet tools often carry a UTF-8 BOM.
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\uFEFF")
	}

	colMap, extraCols := mapHeader(header, envColumnAliases)
	timeIdx, ok := colMap[ColTime]
	if !ok {
		return EnvTable{}, apperrors.NewSourceError(group.Name, "environmental csv has no time column", nil)
	}

	table := EnvTable{
		Columns: buildColumns([]string{ColTime, ColTemperature, ColHumidity, ColPH, ColEC}, colMap, extraCols, header),
		Rows:    []EnvRecord{},
	}
	carried := carriedColumns(colMap)

	dropped := 0
	for _, row := range records[1:] {
		if emptyRow(row) {
			continue
		}
		if timeIdx >= len(row) {
			dropped++
			continue
		}
		ts, ok := parseTimestamp(row[timeIdx])
		if !ok {
			dropped++
			continue
		}

		rec := EnvRecord{
			Time:        ts,
			Temperature: cellFloat(row, colMap, ColTemperature),
			Humidity:    cellFloat(row, colMap, ColHumidity),
			PH:          cellFloat(row, colMap, ColPH),
			EC:          cellFloat(row, colMap, ColEC),
			Group:       group.Name,
			TargetEC:    group.TargetEC,
			Extra:       collectExtras(row, extraCols, header),
			carried:     carried,
		}
		table.Rows = append(table.Rows, rec)
	}

	if dropped > 0 {
		slog.Warn("dropped rows with unparsable timestamps",
			slog.String("group", group.Name),
			slog.Int("dropped", dropped),
			slog.Int("kept", len(table.Rows)))
	}

	return table, nil
}

// ParseGrowthWorkbook reads the growth-results workbook. Each sheet whose
// NFC-normalized name matches a configured group is parsed into one table;
// unknown sheets are skipped silently. The returned slice follows the
// workbook's sheet order. Only a workbook-level failure is an error.
func ParseGrowthWorkbook(path string, groups []config.Group) ([]GrowthTable, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, apperrors.NewParsingError("open growth workbook", err)
	}
	defer f.Close()

	byName := make(map[string]config.Group, len(groups))
	for _, g := range groups {
		byName[files.NormalizeName(g.Name)] = g
	}

	var tables []GrowthTable
	for _, sheet := range f.GetSheetList() {
		group, ok := byName[files.NormalizeName(sheet)]
		if !ok {
			slog.Debug("skipping sheet with no matching group", slog.String("sheet", sheet))
			continue
		}

		rows, err := f.GetRows(sheet)
		if err != nil {
			slog.Warn("could not read growth sheet",
				slog.String("group", group.Name),
				slog.String("error", err.Error()))
			continue
		}

		table := parseGrowthSheet(rows, group)
		tables = append(tables, table)
		slog.Info("parsed growth sheet",
			slog.String("group", group.Name),
			slog.Int("rows", len(table.Rows)))
	}

	return tables, nil
}

// parseGrowthSheet converts one sheet's string matrix into a table. An
// empty sheet contributes zero rows without error.
func parseGrowthSheet(rows [][]string, group config.Group) GrowthTable {
	table := GrowthTable{Rows: []GrowthRecord{}}
	if len(rows) == 0 {
		return table
	}

	header := rows[0]
	colMap, extraCols := mapHeader(header, growthColumnAliases)
	table.Columns = buildColumns([]string{ColFreshWeight, ColLeafCount, ColShootLength}, colMap, extraCols, header)
	carried := carriedColumns(colMap)

	for _, row := range rows[1:] {
		if emptyRow(row) {
			continue
		}
		rec := GrowthRecord{
			FreshWeight: cellFloat(row, colMap, ColFreshWeight),
			LeafCount:   cellFloat(row, colMap, ColLeafCount),
			ShootLength: cellFloat(row, colMap, ColShootLength),
			Group:       group.Name,
			TargetEC:    group.TargetEC,
			Extra:       collectExtras(row, extraCols, header),
			carried:     carried,
		}
		table.Rows = append(table.Rows, rec)
	}

	return table
}

// mapHeader maps canonical column names to their index in the header row
// and returns the indexes of unrecognized passthrough columns.
func mapHeader(header []string, aliases map[string][]string) (map[string]int, []int) {
	colMap := make(map[string]int)
	var extraCols []int

	for i, cell := range header {
		normalized := strings.ToLower(strings.TrimSpace(files.NormalizeName(cell)))
		if normalized == "" {
			continue
		}

		matched := false
		for canonical, names := range aliases {
			if _, taken := colMap[canonical]; taken {
				continue
			}
			for _, alias := range names {
				if normalized == alias {
					colMap[canonical] = i
					matched = true
					break
				}
			}
			if matched {
				break
			}
		}
		if !matched {
			extraCols = append(extraCols, i)
		}
	}

	return colMap, extraCols
}

// carriedColumns records which canonical columns the source header maps,
// so records can omit the ones the source never provided.
func carriedColumns(colMap map[string]int) map[string]bool {
	carried := make(map[string]bool, len(colMap))
	for col := range colMap {
		carried[col] = true
	}
	return carried
}

// buildColumns assembles the table's column list: the canonical columns
// actually present, the group tags, then passthrough columns under their
// normalized source names.
func buildColumns(canonical []string, colMap map[string]int, extraCols []int, header []string) []string {
	columns := make([]string, 0, len(colMap)+len(extraCols)+2)
	for _, col := range canonical {
		if _, ok := colMap[col]; ok {
			columns = append(columns, col)
		}
	}
	columns = append(columns, ColGroup, ColTargetEC)
	for _, i := range extraCols {
		columns = append(columns, files.NormalizeName(strings.TrimSpace(header[i])))
	}
	return columns
}

// collectExtras gathers passthrough cell values keyed by their normalized
// header name. Missing cells stay absent rather than filled with sentinels.
func collectExtras(row []string, extraCols []int, header []string) map[string]string {
	if len(extraCols) == 0 {
		return nil
	}
	extra := make(map[string]string, len(extraCols))
	for _, i := range extraCols {
		if i >= len(row) {
			continue
		}
		val := strings.TrimSpace(row[i])
		if val == "" {
			continue
		}
		extra[files.NormalizeName(strings.TrimSpace(header[i]))] = val
	}
	if len(extra) == 0 {
		return nil
	}
	return extra
}

// parseTimestamp coerces a cell into a timestamp, trying the known layouts
// in order. The boolean result is false when no layout matches.
func parseTimestamp(raw string) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, false
	}
	for _, layout := range timeLayouts {
		if ts, err := time.Parse(layout, raw); err == nil {
			return ts, true
		}
	}
	return time.Time{}, false
}

// cellFloat reads a numeric cell tolerantly: thousands separators are
// stripped and unparsable or absent cells become zero.
func cellFloat(row []string, colMap map[string]int, col string) float64 {
	idx, ok := colMap[col]
	if !ok || idx >= len(row) {
		return 0
	}
	val, _ := strconv.ParseFloat(strings.ReplaceAll(strings.TrimSpace(row[idx]), ",", ""), 64)
	return val
}

func emptyRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
