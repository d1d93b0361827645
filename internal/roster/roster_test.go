package roster

import (
	"bytes"
	"testing"

	"github.com/ArowuTest/promo-lottery/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func buildXLSX(t *testing.T, rows [][]string) *bytes.Reader {
	t.Helper()
	f := excelize.NewFile()
	sheet := f.GetSheetName(f.GetActiveSheetIndex())
	for idx, row := range rows {
		axis, err := excelize.CoordinatesToCellName(1, idx+1)
		require.NoError(t, err)
		cells := make([]interface{}, len(row))
		for i, val := range row {
			cells[i] = val
		}
		require.NoError(t, f.SetSheetRow(sheet, axis, &cells))
	}
	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))
	require.NoError(t, f.Close())
	return bytes.NewReader(buf.Bytes())
}

func TestParseCandidates(t *testing.T) {
	data := buildXLSX(t, [][]string{
		{"id", "namezh", "nameen", "locked", "weight_first", "weight_second"},
		{"e1", "王小明", "Ming Wang", "false", "0", "2.5"},
		{"e2", "李雷", "Lei Li", "true", "", ""},
		{"", "", "", "", "", ""},
		{"", "", "Han Meimei", "", "x", ""},
	})

	got, err := ParseCandidates(data)
	require.NoError(t, err)
	require.Len(t, got, 3)

	assert.Equal(t, "e1", got[0].ID)
	assert.Equal(t, "王小明", got[0].NameLocal)
	assert.Equal(t, "王", got[0].AvatarChar)
	assert.Equal(t, map[string]float64{"first": 0, "second": 2.5}, got[0].Weights)
	assert.False(t, got[0].Locked)

	assert.True(t, got[1].Locked)
	assert.Nil(t, got[1].Weights)

	assert.NotEmpty(t, got[2].ID, "missing ids are generated")
	assert.Equal(t, "Han Meimei", got[2].NameLocal)
	assert.Nil(t, got[2].Weights, "unparseable weights are skipped")
}

func TestParseCandidatesKeepsTierKeyCase(t *testing.T) {
	data := buildXLSX(t, [][]string{
		{"namezh", "weight_Grand", "WEIGHT_bonusTier"},
		{"Ada", "0", "3"},
	})
	got, err := ParseCandidates(data)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, map[string]float64{"Grand": 0, "bonusTier": 3}, got[0].Weights)
	assert.Zero(t, got[0].Weight("Grand"))
	assert.Equal(t, 1.0, got[0].Weight("grand"), "a differently cased key is another tier")
}

func TestParseCandidatesAliases(t *testing.T) {
	data := buildXLSX(t, [][]string{
		{"姓名", "英文名"},
		{"张三", "San Zhang"},
	})
	got, err := ParseCandidates(data)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "张三", got[0].NameLocal)
	assert.Equal(t, "San Zhang", got[0].NameForeign)
}

func TestParseCandidatesErrors(t *testing.T) {
	_, err := ParseCandidates(buildXLSX(t, [][]string{{"namezh"}}))
	assert.ErrorIs(t, err, ErrNoRows)

	_, err = ParseCandidates(buildXLSX(t, [][]string{{"dept"}, {"sales"}}))
	assert.Error(t, err)

	_, err = ParseCandidates(bytes.NewReader([]byte("not a workbook")))
	assert.Error(t, err)
}

func TestParseGifts(t *testing.T) {
	data := buildXLSX(t, [][]string{
		{"giftName", "giftLevel", "giftQuantity", "description"},
		{"Bike", "first", "2", "City bike"},
		{"Mug", "second", "zero", ""},
		{"", "second", "3", ""},
	})
	got, err := ParseGifts(data)
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, models.Gift{
		Name:              "Bike",
		TierKey:           "first",
		Description:       "City bike",
		TotalQuantity:     2,
		RemainingQuantity: 2,
	}, got[0])
	assert.Equal(t, 1, got[1].TotalQuantity)
	assert.Equal(t, 1, got[1].RemainingQuantity)

	_, err = ParseGifts(buildXLSX(t, [][]string{{"giftName"}, {"Bike"}}))
	assert.Error(t, err)
}

func TestExportWinners(t *testing.T) {
	tiers := []models.Tier{
		{Key: "first", Label: "First Prize", Quota: 1},
		{Key: "second", Label: "Second Prize", Quota: 3},
		{Key: "bonus", Quota: 1},
	}
	winners := map[string][]models.WinnerRecord{
		"first":  {{NameLocal: "Ada"}},
		"second": {{NameLocal: "Grace"}, {NameForeign: "Linus"}},
	}

	raw, err := ExportWinners(tiers, winners)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(raw))
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{WinnersSheet}, f.GetSheetList())
	rows, err := f.GetRows(WinnersSheet)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"First Prize", "Second Prize", "bonus"}, rows[0])
	assert.Equal(t, []string{"Ada", "Grace"}, rows[1])
	assert.Equal(t, []string{"", "Linus"}, rows[2])

	width, err := f.GetColWidth(WinnersSheet, "B")
	require.NoError(t, err)
	assert.Equal(t, 16.0, width)
}
