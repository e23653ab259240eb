package api

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"golang.org/x/crypto/bcrypt"

	"github.com/vanminhgroup/qlts/internal/auth"
	"github.com/vanminhgroup/qlts/internal/db"
	"github.com/vanminhgroup/qlts/internal/model"
	"github.com/vanminhgroup/qlts/internal/store"
)

const testJWTSecret = "test-secret"

type testServer struct {
	t       *testing.T
	db      *sql.DB
	handler http.Handler
}

func setupTestServer(t *testing.T) *testServer {
	t.Helper()
	database := db.NewTestDB(t)
	return &testServer{t: t, db: database, handler: NewRouter(database, testJWTSecret)}
}

// account creates an account with the given role and returns a token for it.
func (s *testServer) account(phone, role string) (*model.Account, string) {
	s.t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	require.NoError(s.t, err)
	a, err := store.CreateAccount(context.Background(), s.db, &model.Account{
		Phone: phone, Name: "Nguyễn " + role, PasswordHash: string(hash), Role: role, Active: true,
	})
	require.NoError(s.t, err)
	token, err := auth.GenerateToken(testJWTSecret, a, 0)
	require.NoError(s.t, err)
	return a, token
}

func (s *testServer) do(method, path, token string, body any) *httptest.ResponseRecorder {
	s.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(s.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&v), rec.Body.String())
	return v
}

func (s *testServer) office(token, code, label string) model.Office {
	s.t.Helper()
	rec := s.do("POST", "/api/offices", token, map[string]string{"code": code, "label": label})
	require.Equal(s.t, http.StatusCreated, rec.Code, rec.Body.String())
	return decode[model.Office](s.t, rec)
}

func TestUnauthenticatedAccess(t *testing.T) {
	s := setupTestServer(t)

	rec := s.do("GET", "/api/assets", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = s.do("GET", "/api/assets", "not-a-jwt", nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	// The raw token without a Bearer prefix is accepted too.
	_, token := s.account("0900000001", model.RoleUser)
	req := httptest.NewRequest("GET", "/api/assets", nil)
	req.Header.Set("Authorization", token)
	raw := httptest.NewRecorder()
	s.handler.ServeHTTP(raw, req)
	assert.Equal(t, http.StatusOK, raw.Code)
}

func TestRoleBasedAccess(t *testing.T) {
	s := setupTestServer(t)
	_, userToken := s.account("0900000001", model.RoleUser)

	rec := s.do("POST", "/api/offices", userToken, map[string]string{"label": "Kho A"})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = s.do("GET", "/api/accounts", userToken, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = s.do("DELETE", "/api/asset-transfer/logs", userToken, map[string]any{"ids": []string{uuid.NewString()}})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = s.do("GET", "/api/accounts/me", userToken, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestTransferFlow(t *testing.T) {
	s := setupTestServer(t)
	_, token := s.account("0900000002", model.RoleManager)

	x := s.office(token, "X", "OfficeX")
	y := s.office(token, "Y", "OfficeY")

	rec := s.do("POST", "/api/assets", token, map[string]any{
		"code": "A1", "name": "Máy chiếu", "quantity": 5, "managementOfficeId": x.ID, "price": "12000000",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	a1 := decode[model.Asset](t, rec)

	// Quantity arrives as a string in older clients.
	rec = s.do("POST", "/api/asset-transfer/import", token, map[string]any{
		"assetId": a1.ID, "quantity": "5", "toOfficeId": x.ID, "fromOfficeId": x.ID,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.NotEmpty(t, decode[map[string]string](t, rec)["logId"])

	for _, q := range []any{0, -3, "abc", 1.5} {
		rec = s.do("POST", "/api/asset-transfer/import", token, map[string]any{
			"assetId": a1.ID, "quantity": q, "toOfficeId": x.ID,
		})
		assert.Equal(t, http.StatusBadRequest, rec.Code, "quantity %v", q)
	}

	rec = s.do("POST", "/api/asset-transfer/export", token, map[string]any{
		"assetId": a1.ID, "fromOfficeId": x.ID, "toOfficeId": y.ID, "quantity": 4,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	exported := decode[map[string]any](t, rec)
	assert.Equal(t, "success", exported["status"])
	assert.Equal(t, true, exported["created"])
	destID, _ := exported["destinationAssetId"].(string)
	require.NotEmpty(t, destID)

	rec = s.do("POST", "/api/asset-transfer/export", token, map[string]any{
		"assetId": a1.ID, "fromOfficeId": x.ID, "toOfficeId": y.ID, "quantity": 100,
	})
	assert.Equal(t, http.StatusConflict, rec.Code)
	failed := decode[map[string]string](t, rec)
	assert.Equal(t, "error", failed["status"])
	assert.Contains(t, failed["message"], "available 6, requested 100")

	rec = s.do("POST", "/api/asset-transfer/export", token, map[string]any{
		"assetId": a1.ID, "fromOfficeId": y.ID, "toOfficeId": x.ID, "quantity": 1,
	})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = s.do("POST", "/api/asset-transfer/export", token, map[string]any{
		"assetId": uuid.NewString(), "fromOfficeId": x.ID, "toOfficeId": y.ID, "quantity": 1,
	})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = s.do("POST", "/api/asset-transfer/export", token, map[string]any{
		"assetId": a1.ID, "fromOfficeId": x.ID, "toOfficeId": y.ID, "quantity": 1,
		"sourceAsset": map[string]any{"name": "Máy chiếu", "unitId": "no-such-unit"},
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
	assert.Equal(t, "error", decode[map[string]string](t, rec)["status"])

	rec = s.do("GET", "/api/assets/"+destID, token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	dest := decode[model.Asset](t, rec)
	assert.Equal(t, 4, dest.Quantity)
	assert.Equal(t, "A1", dest.Code)
	assert.Equal(t, y.ID, *dest.ManagementOfficeID)

	rec = s.do("GET", "/api/asset-transfer/logs?limit=1", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	page := decode[struct {
		Total      int                     `json:"total"`
		Logs       []model.TransferLogView `json:"logs"`
		Page       int                     `json:"page"`
		TotalPages int                     `json:"totalPages"`
	}](t, rec)
	assert.Equal(t, 2, page.Total)
	assert.Equal(t, 2, page.TotalPages)
	require.Len(t, page.Logs, 1)

	rec = s.do("GET", "/api/asset-transfer/logs?transferType=EXPORT", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	logs := decode[map[string]any](t, rec)["logs"].([]any)
	require.Len(t, logs, 1)
	entry := logs[0].(map[string]any)
	assert.Equal(t, "Xuất kho", entry["transferTypeText"])
	assert.Equal(t, "Điều chuyển", entry["reasonText"])
	exportLogID := entry["id"].(string)

	rec = s.do("GET", "/api/asset-transfer/logs?assetId="+a1.ID+"&transferType=IMPORT", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 1, decode[map[string]any](t, rec)["total"])

	rec = s.do("GET", "/api/asset-transfer/logs?assetId="+destID, token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 0, decode[map[string]any](t, rec)["total"])

	rec = s.do("GET", "/api/asset-transfer/logs/"+exportLogID, token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	single := decode[model.TransferLogView](t, rec)
	assert.Equal(t, 4, single.Quantity)
	assert.Equal(t, "Xuất kho", single.TransferTypeText)

	rec = s.do("GET", "/api/asset-transfer/logs/"+uuid.NewString(), token, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = s.do("GET", "/api/asset-transfer/logs?status=DONE", token, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do("GET", "/api/asset-transfer/inventory/"+a1.ID, token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	inventory := decode[[]model.Inventory](t, rec)
	require.Len(t, inventory, 1)
	assert.Equal(t, 6, inventory[0].Quantity)

	rec = s.do("DELETE", "/api/asset-transfer/logs", token, map[string]any{"ids": []string{}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do("DELETE", "/api/asset-transfer/logs", token, map[string]any{"ids": []string{"42"}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do("DELETE", "/api/asset-transfer/logs", token, map[string]any{"ids": []string{uuid.NewString()}})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = s.do("DELETE", "/api/asset-transfer/logs", token, map[string]any{"ids": []string{exportLogID}})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 1, decode[map[string]any](t, rec)["deletedCount"])
}

func TestAssetsEndpoints(t *testing.T) {
	s := setupTestServer(t)
	_, token := s.account("0900000003", model.RoleManager)
	x := s.office(token, "X", "OfficeX")

	body := map[string]any{"code": "B1", "name": "Bàn", "quantity": 2, "managementOfficeId": x.ID}
	rec := s.do("POST", "/api/assets", token, body)
	require.Equal(t, http.StatusCreated, rec.Code)
	b1 := decode[model.Asset](t, rec)

	rec = s.do("POST", "/api/assets", token, body)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = s.do("POST", "/api/assets", token, map[string]any{"code": "B2", "managementOfficeId": x.ID})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	invalid := decode[map[string]any](t, rec)
	assert.Equal(t, map[string]any{"name": "required"}, invalid["fields"])

	rec = s.do("POST", "/api/assets", token, map[string]any{"code": "B3", "name": "Ghế", "managementOfficeId": uuid.NewString()})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = s.do("PUT", "/api/assets/"+b1.ID, token, map[string]any{"code": "B1", "name": "Bàn gỗ", "quantity": 99})
	require.Equal(t, http.StatusOK, rec.Code)
	updated := decode[model.Asset](t, rec)
	assert.Equal(t, "Bàn gỗ", updated.Name)
	assert.Equal(t, 2, updated.Quantity)

	rec = s.do("GET", "/api/assets?name=g%E1%BB%97", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 1, decode[map[string]any](t, rec)["total"])

	rec = s.do("GET", "/api/assets/totals", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	totals := decode[[]model.AssetTotal](t, rec)
	require.Len(t, totals, 1)
	assert.Equal(t, 1, totals[0].TotalAsset)

	rec = s.do("DELETE", "/api/assets", token, map[string]any{"ids": []string{}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	rec = s.do("DELETE", "/api/assets", token, map[string]any{"ids": []string{uuid.NewString()}})
	assert.Equal(t, http.StatusNotFound, rec.Code)
	rec = s.do("DELETE", "/api/assets", token, map[string]any{"ids": []string{b1.ID}})
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAssetsImportEndpoint(t *testing.T) {
	s := setupTestServer(t)
	_, token := s.account("0900000004", model.RoleManager)
	s.office(token, "HN", "Hà Nội")

	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	rows := [][]any{
		{"code", "quantity", "unit", "name", "managementOffice"},
		{"C1", 3, "Cái", "Máy in", "HN"},
		{"C2", 1, "Cái", "Máy quét", "Đà Nẵng"},
		{"C3", "x", "", "Sai", "HN"},
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		r := row
		require.NoError(t, f.SetSheetRow(sheet, cell, &r))
	}
	xlsx, err := f.WriteToBuffer()
	require.NoError(t, err)
	require.NoError(t, f.Close())

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", "assets.xlsx")
	require.NoError(t, err)
	_, err = part.Write(xlsx.Bytes())
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest("POST", "/api/assets/import", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	result := decode[model.ImportResult](t, rec)
	assert.Equal(t, 1, result.Inserted)
	require.Len(t, result.Errors, 2)
	assert.Equal(t, 3, result.Errors[0].Line)
	assert.Equal(t, 4, result.Errors[1].Line)

	rec = s.do("POST", "/api/assets/import", token, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAccountsEndpoints(t *testing.T) {
	s := setupTestServer(t)
	admin, adminToken := s.account("0900000005", model.RoleAdmin)

	rec := s.do("POST", "/api/accounts", adminToken, map[string]any{
		"phone": "0911000111", "name": "Lê Văn C", "password": "short", "role": model.RoleUser,
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do("POST", "/api/accounts", adminToken, map[string]any{
		"phone": "0911000111", "name": "Lê Văn C", "password": "longenough", "role": "owner",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do("POST", "/api/accounts", adminToken, map[string]any{
		"phone": "0911000111", "name": "Lê Văn C", "password": "longenough", "role": model.RoleUser,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decode[model.Account](t, rec)
	assert.NotContains(t, rec.Body.String(), "password")

	rec = s.do("POST", "/api/accounts", adminToken, map[string]any{
		"phone": "0911000111", "name": "Trùng", "password": "longenough", "role": model.RoleUser,
	})
	assert.Equal(t, http.StatusConflict, rec.Code)

	account, err := store.GetAccount(context.Background(), s.db, created.ID)
	require.NoError(t, err)
	userToken, err := auth.GenerateToken(testJWTSecret, account, 0)
	require.NoError(t, err)

	rec = s.do("GET", "/api/accounts/me", userToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, created.ID, decode[model.Account](t, rec).ID)

	rec = s.do("PUT", "/api/accounts/me/password", userToken, map[string]string{
		"currentPassword": "wrong-password", "newPassword": "brandnewpass",
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// A password reset by the admin signs the user out.
	rec = s.do("PUT", "/api/accounts/"+created.ID, adminToken, map[string]any{"password": "resetpassword"})
	require.Equal(t, http.StatusOK, rec.Code)
	rec = s.do("GET", "/api/accounts/me", userToken, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = s.do("DELETE", "/api/accounts", adminToken, map[string]any{"ids": []string{admin.ID}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do("DELETE", "/api/accounts", adminToken, map[string]any{"ids": []string{created.ID}})
	require.Equal(t, http.StatusOK, rec.Code)
	rec = s.do("GET", "/api/accounts/"+created.ID, adminToken, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCatalogEndpoints(t *testing.T) {
	s := setupTestServer(t)
	_, token := s.account("0900000006", model.RoleManager)

	rec := s.do("POST", "/api/departments", token, map[string]string{"code": "KT", "label": "Kỹ thuật"})
	require.Equal(t, http.StatusCreated, rec.Code)
	dept := decode[model.Department](t, rec)

	rec = s.do("POST", "/api/teams", token, map[string]any{"code": "D1", "label": "Đội xe 1", "departmentId": dept.ID})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = s.do("POST", "/api/teams", token, map[string]any{"label": "Đội ma", "departmentId": uuid.NewString()})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = s.do("GET", "/api/teams?departmentId="+dept.ID, token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]model.Team](t, rec), 1)

	rec = s.do("POST", "/api/units", token, map[string]string{"label": "Cái"})
	require.Equal(t, http.StatusCreated, rec.Code)
	rec = s.do("POST", "/api/units", token, map[string]string{"label": "Cái"})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = s.do("GET", "/api/asset-types", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "[]\n", rec.Body.String())

	rec = s.do("GET", "/api/offices/"+uuid.NewString(), token, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestVehiclesEndpoints(t *testing.T) {
	s := setupTestServer(t)
	_, token := s.account("0900000007", model.RoleManager)

	rec := s.do("POST", "/api/vehicles", token, map[string]any{"carType": "Toyota Vios", "plate": "29A-123.45", "valuation": 450000000})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	rec = s.do("POST", "/api/vehicles", token, map[string]any{"plate": "29A-123.45"})
	assert.Equal(t, http.StatusConflict, rec.Code)
	rec = s.do("POST", "/api/vehicles", token, map[string]any{"plate": "30F-000.01", "valuation": -1})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do("GET", "/api/vehicles?plate=29A", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 1, decode[map[string]any](t, rec)["total"])
}

func TestQuantityDecoding(t *testing.T) {
	tests := []struct {
		in   string
		want int
	}{
		{`5`, 5},
		{`"7"`, 7},
		{`" 3 "`, 3},
		{`-2`, -2},
		{`1.5`, 0},
		{`"abc"`, 0},
		{`null`, 0},
		{`true`, 0},
	}
	for _, tt := range tests {
		var q quantity
		require.NoError(t, json.Unmarshal([]byte(tt.in), &q), tt.in)
		assert.Equal(t, tt.want, int(q), tt.in)
	}
}
