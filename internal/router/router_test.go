package router

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/blues/dfs/internal/config"
	"github.com/blues/dfs/internal/database"
	"github.com/blues/dfs/internal/event"
	"github.com/blues/dfs/internal/handler"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, database.Migrate(db))

	hub, err := event.NewHub(nil)
	require.NoError(t, err)
	t.Cleanup(hub.Close)

	cfg := &config.Config{
		Ledger: config.LedgerConfig{
			MinDonation:   100,
			MinWithdrawal: 500,
			LockTimeoutMs: 2000,
		},
	}
	return Setup(db, hub, cfg)
}

func doJSON(t *testing.T, r *gin.Engine, method, path string, body interface{}) (*httptest.ResponseRecorder, handler.Response) {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var resp handler.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return w, resp
}

func createCampaignViaAPI(t *testing.T, r *gin.Engine) int64 {
	t.Helper()

	w, resp := doJSON(t, r, http.MethodPost, "/api/v1/campaigns", gin.H{
		"title":        "乡村图书馆",
		"targetAmount": 10000,
		"ownerId":      "owner-1",
		"ownerName":    "王老师",
		"milestones": []gin.H{
			{"title": "一期建设", "amount": 6000},
		},
	})
	require.Equal(t, http.StatusCreated, w.Code)
	require.True(t, resp.Success)

	data := resp.Data.(map[string]interface{})
	return int64(data["id"].(float64))
}

func TestHealthEndpoint(t *testing.T) {
	r := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "donation-funding-service")
}

func TestCreateCampaignAndGetLedger(t *testing.T) {
	r := newTestRouter(t)
	campaignId := createCampaignViaAPI(t, r)

	w, resp := doJSON(t, r, http.MethodGet, fmt.Sprintf("/api/v1/campaigns/%d/ledger", campaignId), nil)
	require.Equal(t, http.StatusOK, w.Code)

	ledger := resp.Data.(map[string]interface{})
	assert.Equal(t, float64(0), ledger["raisedTotal"])
	assert.Equal(t, float64(0), ledger["availableTotal"])
}

func TestConfirmDonationIdempotent(t *testing.T) {
	r := newTestRouter(t)
	campaignId := createCampaignViaAPI(t, r)

	body := gin.H{
		"campaignId": campaignId,
		"amount":     3000,
		"donorName":  "李女士",
		"txRef":      "pay-http-001",
	}

	w, _ := doJSON(t, r, http.MethodPost, "/api/v1/donations/confirm", body)
	require.Equal(t, http.StatusOK, w.Code)

	// 网关重复回调返回同样的成功结果
	w, _ = doJSON(t, r, http.MethodPost, "/api/v1/donations/confirm", body)
	require.Equal(t, http.StatusOK, w.Code)

	w, resp := doJSON(t, r, http.MethodGet, fmt.Sprintf("/api/v1/campaigns/%d/ledger", campaignId), nil)
	require.Equal(t, http.StatusOK, w.Code)
	ledger := resp.Data.(map[string]interface{})
	assert.Equal(t, float64(3000), ledger["raisedTotal"])
}

func TestConfirmDonationUnknownCampaign(t *testing.T) {
	r := newTestRouter(t)

	w, resp := doJSON(t, r, http.MethodPost, "/api/v1/donations/confirm", gin.H{
		"campaignId": 98765,
		"amount":     3000,
		"txRef":      "pay-http-404",
	})
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.False(t, resp.Success)
}

func TestAnonymousDonorHiddenInListing(t *testing.T) {
	r := newTestRouter(t)
	campaignId := createCampaignViaAPI(t, r)

	w, _ := doJSON(t, r, http.MethodPost, "/api/v1/donations/confirm", gin.H{
		"campaignId": campaignId,
		"amount":     2000,
		"donorName":  "张先生",
		"anonymous":  true,
		"txRef":      "pay-http-anon",
	})
	require.Equal(t, http.StatusOK, w.Code)

	w, resp := doJSON(t, r, http.MethodGet, fmt.Sprintf("/api/v1/campaigns/%d/donations", campaignId), nil)
	require.Equal(t, http.StatusOK, w.Code)

	data := resp.Data.(map[string]interface{})
	records := data["records"].([]interface{})
	require.Len(t, records, 1)
	assert.Equal(t, "匿名", records[0].(map[string]interface{})["donorName"])
}

func TestMilestoneProofAndApprovalFlow(t *testing.T) {
	r := newTestRouter(t)
	campaignId := createCampaignViaAPI(t, r)

	w, resp := doJSON(t, r, http.MethodGet, fmt.Sprintf("/api/v1/campaigns/%d/milestones", campaignId), nil)
	require.Equal(t, http.StatusOK, w.Code)
	milestones := resp.Data.([]interface{})
	require.Len(t, milestones, 1)
	milestoneId := int64(milestones[0].(map[string]interface{})["id"].(float64))

	w, _ = doJSON(t, r, http.MethodPost, "/api/v1/donations/confirm", gin.H{
		"campaignId": campaignId,
		"amount":     8000,
		"txRef":      "pay-http-flow",
	})
	require.Equal(t, http.StatusOK, w.Code)

	w, _ = doJSON(t, r, http.MethodPost, fmt.Sprintf("/api/v1/milestones/%d/proof", milestoneId), gin.H{
		"ownerId":  "owner-1",
		"proofUrl": "https://example.com/proof.jpg",
	})
	require.Equal(t, http.StatusOK, w.Code)

	w, _ = doJSON(t, r, http.MethodPost, fmt.Sprintf("/api/v1/milestones/%d/decision", milestoneId), gin.H{
		"outcome": "approved",
	})
	require.Equal(t, http.StatusOK, w.Code)

	w, resp = doJSON(t, r, http.MethodGet, fmt.Sprintf("/api/v1/campaigns/%d/ledger", campaignId), nil)
	require.Equal(t, http.StatusOK, w.Code)
	ledger := resp.Data.(map[string]interface{})
	assert.Equal(t, float64(6000), ledger["releasedTotal"])
	assert.Equal(t, float64(6000), ledger["availableTotal"])
}

func TestDecideWithoutProofConflicts(t *testing.T) {
	r := newTestRouter(t)
	campaignId := createCampaignViaAPI(t, r)

	w, resp := doJSON(t, r, http.MethodGet, fmt.Sprintf("/api/v1/campaigns/%d/milestones", campaignId), nil)
	require.Equal(t, http.StatusOK, w.Code)
	milestones := resp.Data.([]interface{})
	milestoneId := int64(milestones[0].(map[string]interface{})["id"].(float64))

	w, resp = doJSON(t, r, http.MethodPost, fmt.Sprintf("/api/v1/milestones/%d/decision", milestoneId), gin.H{
		"outcome": "approved",
	})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.False(t, resp.Success)
}

func TestWithdrawalErrorMappings(t *testing.T) {
	r := newTestRouter(t)
	campaignId := createCampaignViaAPI(t, r)

	// 没有可提现资金
	w, _ := doJSON(t, r, http.MethodPost, fmt.Sprintf("/api/v1/campaigns/%d/withdrawals", campaignId), gin.H{
		"amount":             1000,
		"method":             "bank_transfer",
		"destinationAccount": "6222 0000 1111 2222",
		"ownerId":            "owner-1",
	})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	// 非发起人
	w, _ = doJSON(t, r, http.MethodPost, fmt.Sprintf("/api/v1/campaigns/%d/withdrawals", campaignId), gin.H{
		"amount":             1000,
		"method":             "bank_transfer",
		"destinationAccount": "6222 0000 1111 2222",
		"ownerId":            "intruder",
	})
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestInvalidCampaignIdParam(t *testing.T) {
	r := newTestRouter(t)

	w, resp := doJSON(t, r, http.MethodGet, "/api/v1/campaigns/abc/ledger", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.False(t, resp.Success)
}
