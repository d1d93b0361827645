// Package roster reads candidate and gift spreadsheets and writes the winner list.
package roster

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/ArowuTest/promo-lottery/internal/models"
	"github.com/google/logger"
	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"
)

// WeightPrefix marks a candidate column holding the weight for one tier,
// e.g. "weight_first".
const WeightPrefix = "weight_"

// WinnersSheet is the sheet name used by ExportWinners.
const WinnersSheet = "Winners"

var ErrNoRows = errors.New("roster: sheet has no data rows")

var headerAliases = map[string]string{
	"name":     "namezh",
	"姓名":       "namezh",
	"中文名":      "namezh",
	"英文名":      "nameen",
	"头像":       "avatarchar",
	"照片":       "image",
	"祝福":       "wish",
	"奖品名称":     "giftname",
	"奖品等级":     "giftlevel",
	"奖品数量":     "giftquantity",
	"奖品描述":     "description",
	"奖品图片":     "giftimage",
	"quantity": "giftquantity",
}

// normalizeHeader lowercases a header cell. Tier keys are case sensitive, so
// a weight column keeps the case of its tier key.
func normalizeHeader(h string) string {
	h = strings.TrimSpace(h)
	if len(h) > len(WeightPrefix) && strings.EqualFold(h[:len(WeightPrefix)], WeightPrefix) {
		return WeightPrefix + h[len(WeightPrefix):]
	}
	h = strings.ToLower(h)
	if alias, ok := headerAliases[h]; ok {
		return alias
	}
	return h
}

// readRows returns the header row and the data rows of the first sheet.
func readRows(r io.Reader) ([]string, [][]string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, nil, fmt.Errorf("roster: open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, nil, fmt.Errorf("roster: workbook has no sheets")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, nil, fmt.Errorf("roster: read sheet %q: %w", sheets[0], err)
	}
	if len(rows) < 2 {
		return nil, nil, ErrNoRows
	}
	header := make([]string, len(rows[0]))
	for i, h := range rows[0] {
		header[i] = normalizeHeader(h)
	}
	return header, rows[1:], nil
}

func cell(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

// ParseCandidates reads a roster. Recognised columns are id, namezh, nameen,
// avatarChar, image, wish, locked and weight_<tierKey>. Rows without a name
// are skipped and rows without an id get a generated one.
func ParseCandidates(r io.Reader) ([]models.Candidate, error) {
	header, rows, err := readRows(r)
	if err != nil {
		return nil, err
	}
	col := make(map[string]int, len(header))
	weightCols := make(map[int]string)
	for i, h := range header {
		if strings.HasPrefix(h, WeightPrefix) {
			weightCols[i] = strings.TrimPrefix(h, WeightPrefix)
			continue
		}
		col[h] = i
	}
	if _, ok := col["namezh"]; !ok {
		if _, ok := col["nameen"]; !ok {
			return nil, fmt.Errorf("roster: no name column in %v", header)
		}
	}
	idx := func(name string) int {
		if i, ok := col[name]; ok {
			return i
		}
		return -1
	}

	out := make([]models.Candidate, 0, len(rows))
	for n, row := range rows {
		c := models.Candidate{
			ID:          cell(row, idx("id")),
			NameLocal:   cell(row, idx("namezh")),
			NameForeign: cell(row, idx("nameen")),
			AvatarChar:  cell(row, idx("avatarchar")),
			Portrait:    cell(row, idx("image")),
			Wish:        cell(row, idx("wish")),
		}
		if c.NameLocal == "" && c.NameForeign == "" {
			continue
		}
		if c.NameLocal == "" {
			c.NameLocal = c.NameForeign
		}
		if c.AvatarChar == "" {
			c.AvatarChar = string([]rune(c.NameLocal)[:1])
		}
		if c.ID == "" {
			c.ID = uuid.NewString()
		}
		if v := cell(row, idx("locked")); v != "" {
			locked, err := strconv.ParseBool(v)
			if err != nil {
				logger.Warningf("roster: row %d: locked=%q is not a boolean, ignoring", n+2, v)
			}
			c.Locked = locked
		}
		for i, tier := range weightCols {
			v := cell(row, i)
			if v == "" {
				continue
			}
			w, err := strconv.ParseFloat(v, 64)
			if err != nil {
				logger.Warningf("roster: row %d: weight for %s %q is not a number, ignoring", n+2, tier, v)
				continue
			}
			if c.Weights == nil {
				c.Weights = make(map[string]float64, len(weightCols))
			}
			c.Weights[tier] = w
		}
		out = append(out, c)
	}
	if len(out) == 0 {
		return nil, ErrNoRows
	}
	return out, nil
}

// ParseGifts reads a gift catalog with giftName, giftLevel, giftQuantity,
// description and giftImage columns. Imported gifts start fully stocked.
func ParseGifts(r io.Reader) ([]models.Gift, error) {
	header, rows, err := readRows(r)
	if err != nil {
		return nil, err
	}
	col := make(map[string]int, len(header))
	for i, h := range header {
		col[h] = i
	}
	for _, required := range []string{"giftname", "giftlevel"} {
		if _, ok := col[required]; !ok {
			return nil, fmt.Errorf("roster: missing %s column", required)
		}
	}
	idx := func(name string) int {
		if i, ok := col[name]; ok {
			return i
		}
		return -1
	}

	out := make([]models.Gift, 0, len(rows))
	for n, row := range rows {
		g := models.Gift{
			Name:        cell(row, idx("giftname")),
			TierKey:     cell(row, idx("giftlevel")),
			Description: cell(row, idx("description")),
			Image:       cell(row, idx("giftimage")),
		}
		if g.Name == "" || g.TierKey == "" {
			continue
		}
		g.TotalQuantity = 1
		if v := cell(row, idx("giftquantity")); v != "" {
			q, err := strconv.Atoi(v)
			if err != nil || q < 1 {
				logger.Warningf("roster: row %d: quantity %q invalid, using 1", n+2, v)
			} else {
				g.TotalQuantity = q
			}
		}
		g.RemainingQuantity = g.TotalQuantity
		out = append(out, g)
	}
	if len(out) == 0 {
		return nil, ErrNoRows
	}
	return out, nil
}

// ExportWinners writes one column per tier: the tier label as header and the
// winners' names below it in draw order.
func ExportWinners(tiers []models.Tier, winners map[string][]models.WinnerRecord) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), WinnersSheet); err != nil {
		return nil, fmt.Errorf("roster: rename sheet: %w", err)
	}
	for c, t := range tiers {
		name, err := excelize.ColumnNumberToName(c + 1)
		if err != nil {
			return nil, err
		}
		if err := f.SetColWidth(WinnersSheet, name, name, 16); err != nil {
			return nil, fmt.Errorf("roster: column width: %w", err)
		}
		label := t.Label
		if label == "" {
			label = t.Key
		}
		cells := []interface{}{label}
		for _, w := range winners[t.Key] {
			cells = append(cells, displayName(w))
		}
		axis, err := excelize.CoordinatesToCellName(c+1, 1)
		if err != nil {
			return nil, err
		}
		if err := f.SetSheetCol(WinnersSheet, axis, &cells); err != nil {
			return nil, fmt.Errorf("roster: write column %s: %w", name, err)
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("roster: write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func displayName(w models.WinnerRecord) string {
	if w.NameLocal != "" {
		return w.NameLocal
	}
	return w.NameForeign
}
