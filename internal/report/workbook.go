// Package report builds and sends the weekly per-plan progress reports.
package report

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"
)

const (
	sheetTitlePrefix = "Weekly Report - "
	// Excel's sheet name limit, in characters.
	maxSheetNameLen = 31
)

var header = []interface{}{"Exercise", "Avg Weight (kg)", "Avg Reps", "Avg RIR", "Avg RPE", "Consistency (%)"}

// Row is one exercise's averages over the report window. AvgRIR and AvgRPE
// are nil when no log in the window recorded them.
type Row struct {
	Exercise    string
	AvgWeight   float64
	AvgReps     float64
	AvgRIR      *float64
	AvgRPE      *float64
	Consistency float64
}

// SheetTitle returns the worksheet name for a plan, stripped of characters
// Excel rejects and cut to Excel's length limit.
func SheetTitle(planName string) string {
	clean := strings.Map(func(r rune) rune {
		switch r {
		case ':', '\\', '/', '?', '*', '[', ']':
			return -1
		}
		return r
	}, planName)

	title := strings.TrimSpace(sheetTitlePrefix + clean)
	for utf8.RuneCountInString(title) > maxSheetNameLen {
		_, size := utf8.DecodeLastRuneInString(title)
		title = title[:len(title)-size]
	}
	// a trailing apostrophe is invalid as well
	return strings.TrimRight(title, "' ")
}

// BuildWeeklyWorkbook renders rows into a single sheet xlsx file.
func BuildWeeklyWorkbook(planName string, rows []Row) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	sheet := SheetTitle(planName)
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return nil, fmt.Errorf("set sheet name: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"D9E1F2"}, Pattern: 1},
	})
	if err != nil {
		return nil, err
	}

	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return nil, err
	}
	if err := f.SetCellStyle(sheet, "A1", "F1", headerStyle); err != nil {
		return nil, err
	}

	for i, r := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		values := []interface{}{r.Exercise, r.AvgWeight, r.AvgReps, optional(r.AvgRIR), optional(r.AvgRPE), r.Consistency}
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			return nil, fmt.Errorf("write row %d: %w", i+2, err)
		}
	}

	if err := f.SetColWidth(sheet, "A", "A", 30); err != nil {
		return nil, err
	}
	if err := f.SetColWidth(sheet, "B", "F", 16); err != nil {
		return nil, err
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func optional(v *float64) interface{} {
	if v == nil {
		return nil
	}
	return *v
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

type aggregate struct {
	weight, reps float64
	n            int
	rir, rpe     float64
	nRIR, nRPE   int
}

// sample is the part of a log that the report averages.
type sample struct {
	exercise string
	weight   float64
	reps     int
	rir, rpe *int
}

// aggregateRows averages samples per exercise, ignoring missing RIR/RPE
// values, and returns rows sorted by exercise name.
func aggregateRows(samples []sample, consistency float64) []Row {
	byExercise := make(map[string]*aggregate)
	for _, s := range samples {
		a, ok := byExercise[s.exercise]
		if !ok {
			a = &aggregate{}
			byExercise[s.exercise] = a
		}
		a.weight += s.weight
		a.reps += float64(s.reps)
		a.n++
		if s.rir != nil {
			a.rir += float64(*s.rir)
			a.nRIR++
		}
		if s.rpe != nil {
			a.rpe += float64(*s.rpe)
			a.nRPE++
		}
	}

	rows := make([]Row, 0, len(byExercise))
	for name, a := range byExercise {
		row := Row{
			Exercise:    name,
			AvgWeight:   round2(a.weight / float64(a.n)),
			AvgReps:     round2(a.reps / float64(a.n)),
			Consistency: consistency,
		}
		if a.nRIR > 0 {
			v := round2(a.rir / float64(a.nRIR))
			row.AvgRIR = &v
		}
		if a.nRPE > 0 {
			v := round2(a.rpe / float64(a.nRPE))
			row.AvgRPE = &v
		}
		rows = append(rows, row)
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Exercise < rows[j].Exercise })
	return rows
}
