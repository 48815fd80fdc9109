package http

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/202510804-cloud/polar-plant-dashboard/internal/config"
	"github.com/202510804-cloud/polar-plant-dashboard/internal/dataprocessing"
)

func testConfig(dataDir string) *config.Config {
	return &config.Config{
		Paths: config.PathsConfig{
			DataDir:        dataDir,
			EnvFileSuffix:  "_환경데이터.csv",
			GrowthWorkbook: "4개교_생육결과데이터.xlsx",
		},
		Groups: []config.Group{
			{Name: "송도고", TargetEC: 1.0, Color: "#ABDEE6"},
			{Name: "하늘고", TargetEC: 2.0, Color: "#FFCCB6"},
		},
	}
}

func writeFixtures(t *testing.T, cfg *config.Config) {
	t.Helper()
	dir := cfg.Paths.DataDir

	for i, g := range cfg.Groups {
		content := "time,temperature,humidity,ph,ec\n"
		for j := 0; j <= i; j++ {
			content += fmt.Sprintf("2024-01-15 %02d:00:00,%0.1f,60.0,6.0,%0.1f\n", 10+j, 20.0+float64(i*10+j), g.TargetEC)
		}
		require.NoError(t, os.WriteFile(filepath.Join(dir, g.Name+cfg.Paths.EnvFileSuffix), []byte(content), 0o644))
	}

	f := excelize.NewFile()
	defer f.Close()
	for i, g := range cfg.Groups {
		_, err := f.NewSheet(g.Name)
		require.NoError(t, err)
		header := []interface{}{"생중량(g)", "잎 수(장)", "초장(cm)"}
		require.NoError(t, f.SetSheetRow(g.Name, "A1", &header))
		row := []interface{}{10.0 + float64(i*5), 5, 12.0}
		require.NoError(t, f.SetSheetRow(g.Name, "A2", &row))
	}
	require.NoError(t, f.DeleteSheet("Sheet1"))
	require.NoError(t, f.SaveAs(filepath.Join(dir, cfg.Paths.GrowthWorkbook)))
}

func newTestServer(t *testing.T, cfg *config.Config) *httptest.Server {
	t.Helper()
	loader := dataprocessing.NewLoader(cfg, nil)
	srv := httptest.NewServer(NewRouter(loader, cfg, nil))
	t.Cleanup(srv.Close)
	return srv
}

func getJSON(t *testing.T, url string, out interface{}) int {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	return resp.StatusCode
}

func TestGetStatus_OK(t *testing.T) {
	cfg := testConfig(t.TempDir())
	writeFixtures(t, cfg)
	srv := newTestServer(t, cfg)

	var status struct {
		Status     string `json:"status"`
		RunID      string `json:"run_id"`
		EnvRows    int    `json:"env_rows"`
		GrowthRows int    `json:"growth_rows"`
	}
	code := getJSON(t, srv.URL+"/api/status", &status)

	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "ok", status.Status)
	assert.NotEmpty(t, status.RunID)
	assert.Equal(t, 3, status.EnvRows)
	assert.Equal(t, 2, status.GrowthRows)
}

func TestGetStatus_DirectoryMissing(t *testing.T) {
	cfg := testConfig(filepath.Join(t.TempDir(), "absent"))
	srv := newTestServer(t, cfg)

	var status struct {
		Status  string `json:"status"`
		Kind    string `json:"kind"`
		Message string `json:"message"`
	}
	code := getJSON(t, srv.URL+"/api/status", &status)

	assert.Equal(t, http.StatusServiceUnavailable, code)
	assert.Equal(t, "error", status.Status)
	assert.Equal(t, "DIRECTORY_MISSING", status.Kind)
	assert.NotEmpty(t, status.Message)
}

func TestGetEnvTable_Filter(t *testing.T) {
	cfg := testConfig(t.TempDir())
	writeFixtures(t, cfg)
	srv := newTestServer(t, cfg)

	var table dataprocessing.EnvTable

	code := getJSON(t, srv.URL+"/api/env?group=하늘고", &table)
	require.Equal(t, http.StatusOK, code)
	require.Len(t, table.Rows, 2)
	for _, row := range table.Rows {
		assert.Equal(t, "하늘고", row.Group)
	}

	code = getJSON(t, srv.URL+"/api/env", &table)
	require.Equal(t, http.StatusOK, code)
	assert.Len(t, table.Rows, 3)

	code = getJSON(t, srv.URL+"/api/env?group=없는학교", &table)
	require.Equal(t, http.StatusOK, code)
	assert.Empty(t, table.Rows)
}

func TestGetGrowthMeans(t *testing.T) {
	cfg := testConfig(t.TempDir())
	writeFixtures(t, cfg)
	srv := newTestServer(t, cfg)

	var resp struct {
		Groups []dataprocessing.GroupStats `json:"groups"`
	}
	code := getJSON(t, srv.URL+"/api/growth/means", &resp)

	require.Equal(t, http.StatusOK, code)
	require.Len(t, resp.Groups, 2)
	assert.Equal(t, "송도고", resp.Groups[0].Group)
	assert.Equal(t, 10.0, resp.Groups[0].Means["fresh_weight"])
	assert.Equal(t, "하늘고", resp.Groups[1].Group)
	assert.Equal(t, 15.0, resp.Groups[1].Means["fresh_weight"])
}

func TestGetGrowthBest(t *testing.T) {
	cfg := testConfig(t.TempDir())
	writeFixtures(t, cfg)
	srv := newTestServer(t, cfg)

	var best struct {
		Attribute string  `json:"attribute"`
		Group     string  `json:"group"`
		Mean      float64 `json:"mean"`
	}
	code := getJSON(t, srv.URL+"/api/growth/best", &best)

	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "fresh_weight", best.Attribute)
	assert.Equal(t, "하늘고", best.Group)
	assert.Equal(t, 15.0, best.Mean)

	var errResp map[string]string
	code = getJSON(t, srv.URL+"/api/growth/best?attr=nonexistent", &errResp)
	assert.Equal(t, http.StatusNotFound, code)
}

func TestReload(t *testing.T) {
	cfg := testConfig(t.TempDir())
	writeFixtures(t, cfg)
	srv := newTestServer(t, cfg)

	var first struct {
		RunID string `json:"run_id"`
	}
	getJSON(t, srv.URL+"/api/status", &first)

	resp, err := http.Post(srv.URL+"/api/reload", "application/json", nil)
	require.NoError(t, err)
	defer resp.Body.Close()

	var second struct {
		Status string `json:"status"`
		RunID  string `json:"run_id"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&second))
	assert.Equal(t, "ok", second.Status)
	assert.NotEqual(t, first.RunID, second.RunID, "reload must produce a fresh run")
}

func TestHealthz(t *testing.T) {
	cfg := testConfig(t.TempDir())
	writeFixtures(t, cfg)
	srv := newTestServer(t, cfg)

	var health map[string]string
	code := getJSON(t, srv.URL+"/healthz", &health)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "up", health["status"])
}

func TestGetGroups(t *testing.T) {
	cfg := testConfig(t.TempDir())
	srv := newTestServer(t, cfg)

	var resp struct {
		Groups []config.Group `json:"groups"`
	}
	code := getJSON(t, srv.URL+"/api/groups", &resp)

	assert.Equal(t, http.StatusOK, code)
	require.Len(t, resp.Groups, 2)
	assert.Equal(t, 1.0, resp.Groups[0].TargetEC)
}
