package handlers

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ArowuTest/promo-lottery/internal/auth"
	"github.com/ArowuTest/promo-lottery/internal/lottery"
	"github.com/ArowuTest/promo-lottery/internal/models"
	"github.com/ArowuTest/promo-lottery/internal/rng"
	"github.com/ArowuTest/promo-lottery/internal/storage"
	"github.com/brianvoe/gofakeit/v7"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

type stage struct {
	router *gin.Engine
	engine *lottery.Engine
	clock  *lottery.ManualClock
}

func newStage(t *testing.T, tiers []models.Tier, n int) *stage {
	t.Helper()
	gin.SetMode(gin.TestMode)

	f := gofakeit.New(7)
	pool := make([]models.Candidate, n)
	for i := range pool {
		pool[i] = models.Candidate{ID: f.UUID(), NameLocal: f.Name(), NameForeign: f.Name()}
	}
	clk := lottery.NewManualClock(time.Date(2026, 2, 1, 20, 0, 0, 0, time.UTC))
	e, err := lottery.New(lottery.Options{
		Tiers:      tiers,
		Candidates: pool,
		Selector:   rng.NewSeededSelector(3),
		Store:      storage.NewMemoryStore(),
		Clock:      clk,
		MaxRounds:  10,
	})
	require.NoError(t, err)

	r := gin.New()
	NewLotteryHandler(e, nil).RegisterRoutes(r.Group("/api/v1"))
	return &stage{router: r, engine: e, clock: clk}
}

func (s *stage) do(t *testing.T, method, path string, body any, header ...string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for i := 0; i+1 < len(header); i += 2 {
		req.Header.Set(header[i], header[i+1])
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

var stageTiers = []models.Tier{
	{Key: "first", Label: "First Prize", Quota: 1},
	{Key: "second", Label: "Second Prize", Quota: 3},
}

func TestDrawOverHTTP(t *testing.T) {
	s := newStage(t, stageTiers, 5)

	w := s.do(t, http.MethodPost, "/api/v1/lottery/start", map[string]string{"tierKey": "second"})
	require.Equal(t, http.StatusAccepted, w.Code, w.Body.String())

	w = s.do(t, http.MethodPost, "/api/v1/lottery/stop", nil)
	assert.Equal(t, http.StatusConflict, w.Code)

	s.clock.Advance(4 * time.Second)
	w = s.do(t, http.MethodPost, "/api/v1/lottery/stop", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var res lottery.Result
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	assert.Equal(t, "second", res.Winner.TierKey)

	s.clock.Advance(3 * time.Second)
	w = s.do(t, http.MethodGet, "/api/v1/lottery/state", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var st lottery.Status
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &st))
	assert.Equal(t, lottery.StateSettled, st.State)
	assert.Equal(t, 4, st.PoolSize)

	w = s.do(t, http.MethodGet, "/api/v1/winners", nil)
	var winners map[string][]models.WinnerRecord
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &winners))
	assert.Len(t, winners["second"], 1)

	w = s.do(t, http.MethodPost, "/api/v1/lottery/undo", nil)
	require.Equal(t, http.StatusOK, w.Code)
	w = s.do(t, http.MethodPost, "/api/v1/lottery/undo", nil)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestErrorMapping(t *testing.T) {
	s := newStage(t, stageTiers, 2)

	tests := []struct {
		name   string
		method string
		path   string
		body   any
		want   int
	}{
		{"unknown tier", http.MethodPost, "/api/v1/lottery/start", map[string]string{"tierKey": "nope"}, http.StatusBadRequest},
		{"select without key", http.MethodPost, "/api/v1/lottery/tier", map[string]string{}, http.StatusBadRequest},
		{"duplicate tier keys", http.MethodPut, "/api/v1/tiers", []models.Tier{{Key: "a"}, {Key: "a"}}, http.StatusBadRequest},
		{"too many rounds", http.MethodPost, "/api/v1/multi-round", map[string]any{"tierKey": "second", "rounds": 4}, http.StatusConflict},
		{"zero rounds", http.MethodPost, "/api/v1/multi-round", map[string]any{"tierKey": "second", "rounds": 0}, http.StatusBadRequest},
		{"no session", http.MethodDelete, "/api/v1/multi-round", nil, http.StatusNotFound},
		{"missing history", http.MethodDelete, "/api/v1/history/nope", nil, http.StatusNotFound},
		{"missing candidate", http.MethodPatch, "/api/v1/candidates/nope", map[string]any{"locked": true}, http.StatusNotFound},
		{"nothing to export", http.MethodGet, "/api/v1/winners/export", nil, http.StatusNotFound},
		{"bad history limit", http.MethodGet, "/api/v1/history?limit=x", nil, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := s.do(t, tt.method, tt.path, tt.body)
			assert.Equal(t, tt.want, w.Code, w.Body.String())
		})
	}
}

func TestAllWeightsZeroIsUnprocessable(t *testing.T) {
	s := newStage(t, stageTiers, 2)
	for _, c := range s.engine.Candidates() {
		w := s.do(t, http.MethodPatch, "/api/v1/candidates/"+c.ID, map[string]any{"awardWeights": map[string]float64{"first": 0}})
		require.Equal(t, http.StatusOK, w.Code)
	}
	require.Equal(t, http.StatusAccepted, s.do(t, http.MethodPost, "/api/v1/lottery/start", map[string]string{"tierKey": "first"}).Code)
	s.clock.Advance(4 * time.Second)
	assert.Equal(t, http.StatusUnprocessableEntity, s.do(t, http.MethodPost, "/api/v1/lottery/stop", nil).Code)
	assert.Equal(t, http.StatusOK, s.do(t, http.MethodPost, "/api/v1/lottery/abort", nil).Code)
}

func TestMultiRoundOverHTTP(t *testing.T) {
	s := newStage(t, stageTiers, 5)
	w := s.do(t, http.MethodPost, "/api/v1/multi-round", map[string]any{"tierKey": "second", "rounds": 2, "autoStop": true})
	require.Equal(t, http.StatusAccepted, w.Code, w.Body.String())

	s.clock.Advance(time.Minute)
	w = s.do(t, http.MethodGet, "/api/v1/multi-round", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var sess lottery.Session
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &sess))
	assert.Equal(t, 2, sess.Completed)
	assert.False(t, sess.Active)

	w = s.do(t, http.MethodGet, "/api/v1/history/stats", nil)
	var stats lottery.HistoryStats
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &stats))
	assert.Equal(t, 2, stats.Total)
	assert.Equal(t, 2, stats.ByTier["second"].Count)
}

func xlsxUpload(t *testing.T, rows [][]string) (*bytes.Buffer, string) {
	t.Helper()
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	for i, row := range rows {
		axis, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		cells := make([]interface{}, len(row))
		for j, v := range row {
			cells[j] = v
		}
		require.NoError(t, f.SetSheetRow(sheet, axis, &cells))
	}
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", "roster.xlsx")
	require.NoError(t, err)
	require.NoError(t, f.Write(part))
	require.NoError(t, mw.Close())
	return &body, mw.FormDataContentType()
}

func TestImportAndExport(t *testing.T) {
	s := newStage(t, stageTiers, 0)

	body, ct := xlsxUpload(t, [][]string{
		{"id", "namezh", "nameen"},
		{"e1", "Ada", "Ada Lovelace"},
		{"e2", "Grace", "Grace Hopper"},
	})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/candidates/import", body)
	req.Header.Set("Content-Type", ct)
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Len(t, s.engine.Candidates(), 2)

	w = s.do(t, http.MethodPost, "/api/v1/gifts/import", []models.Gift{{Name: "Bike", TierKey: "first", TotalQuantity: 1, RemainingQuantity: 1}})
	require.Equal(t, http.StatusOK, w.Code)
	require.Len(t, s.engine.Gifts(), 1)

	require.Equal(t, http.StatusAccepted, s.do(t, http.MethodPost, "/api/v1/lottery/start", map[string]string{"tierKey": "first"}).Code)
	s.clock.Advance(4 * time.Second)
	require.Equal(t, http.StatusOK, s.do(t, http.MethodPost, "/api/v1/lottery/stop", nil).Code)
	s.clock.Advance(3 * time.Second)

	w = s.do(t, http.MethodGet, "/api/v1/winners/export", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, xlsxContentType, w.Header().Get("Content-Type"))
	wb, err := excelize.OpenReader(bytes.NewReader(w.Body.Bytes()))
	require.NoError(t, err)
	defer wb.Close()
	rows, err := wb.GetRows("Winners")
	require.NoError(t, err)
	assert.Equal(t, []string{"First Prize", "Second Prize"}, rows[0])
	assert.Len(t, rows, 2)

	w = s.do(t, http.MethodPost, "/api/v1/lottery/reset", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, s.engine.Candidates(), 2)
	assert.Equal(t, 1, s.engine.Gifts()[0].RemainingQuantity)
}

func TestRoutesRequireTokenWhenSecretSet(t *testing.T) {
	auth.Init("stage-secret")
	t.Cleanup(func() { auth.Init("") })
	s := newStage(t, stageTiers, 3)

	assert.Equal(t, http.StatusOK, s.do(t, http.MethodGet, "/api/v1/lottery/state", nil).Code, "reads stay open")
	assert.Equal(t, http.StatusUnauthorized, s.do(t, http.MethodPost, "/api/v1/lottery/start", nil).Code)

	host, err := auth.GenerateJWT("u1", "host", string(models.RoleHost))
	require.NoError(t, err)
	w := s.do(t, http.MethodPost, "/api/v1/lottery/start", nil, "Authorization", "Bearer "+host)
	assert.Equal(t, http.StatusAccepted, w.Code, w.Body.String())
	w = s.do(t, http.MethodPost, "/api/v1/lottery/reset", nil, "Authorization", "Bearer "+host)
	assert.Equal(t, http.StatusForbidden, w.Code)

	admin, err := auth.GenerateJWT("u2", "admin", string(models.RoleAdmin))
	require.NoError(t, err)
	w = s.do(t, http.MethodPost, "/api/v1/lottery/abort", nil, "Authorization", "Bearer "+admin)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestLoginWithoutDatabase(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/login", Login)
	body := bytes.NewBufferString(`{"username":"a","password":"b"}`)
	req := httptest.NewRequest(http.MethodPost, "/login", body)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}
