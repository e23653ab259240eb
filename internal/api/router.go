package api

import (
	"database/sql"
	"net/http"

	"github.com/vanminhgroup/qlts/internal/auth"
	"github.com/vanminhgroup/qlts/internal/model"
	"github.com/vanminhgroup/qlts/internal/transfer"
)

// NewRouter creates the API router with all endpoints registered.
func NewRouter(db *sql.DB, jwtSecret string) http.Handler {
	mux := http.NewServeMux()

	transfersHandler := &TransfersHandler{
		Engine: &transfer.Engine{DB: db},
		Logs:   &transfer.Logs{DB: db},
	}
	assetsHandler := &AssetsHandler{DB: db}
	catalogHandler := &CatalogHandler{DB: db}
	vehiclesHandler := &VehiclesHandler{DB: db}
	accountsHandler := &AccountsHandler{DB: db}

	authMW := AuthMiddleware(&auth.Gate{DB: db, Secret: jwtSecret})
	requireAdmin := RequireRole(model.RoleAdmin)
	requireManager := RequireRole(model.RoleManager)

	authed := func(h http.HandlerFunc) http.Handler { return authMW(h) }
	manager := func(h http.HandlerFunc) http.Handler { return authMW(requireManager(h)) }
	admin := func(h http.HandlerFunc) http.Handler { return authMW(requireAdmin(h)) }

	// Asset transfers (all roles), log deletion (manager+).
	mux.Handle("POST /api/asset-transfer/import", authed(transfersHandler.Import))
	mux.Handle("POST /api/asset-transfer/export", authed(transfersHandler.Export))
	mux.Handle("GET /api/asset-transfer/logs", authed(transfersHandler.ListLogs))
	mux.Handle("GET /api/asset-transfer/logs/{id}", authed(transfersHandler.GetLog))
	mux.Handle("GET /api/asset-transfer/inventory/{assetId}", authed(transfersHandler.Inventory))
	mux.Handle("DELETE /api/asset-transfer/logs", manager(transfersHandler.DeleteLogs))

	// Assets: read (all roles), write (manager+).
	mux.Handle("GET /api/assets", authed(assetsHandler.List))
	mux.Handle("POST /api/assets", manager(assetsHandler.Create))
	mux.Handle("DELETE /api/assets", manager(assetsHandler.Delete))
	mux.Handle("GET /api/assets/totals", authed(assetsHandler.Totals))
	mux.Handle("POST /api/assets/import", manager(assetsHandler.Import))
	mux.Handle("GET /api/assets/{id}", authed(assetsHandler.Get))
	mux.Handle("PUT /api/assets/{id}", manager(assetsHandler.Update))

	// Organization and catalog: read (all roles), write (manager+).
	mux.Handle("GET /api/departments", authed(catalogHandler.ListDepartments))
	mux.Handle("POST /api/departments", manager(catalogHandler.CreateDepartment))
	mux.Handle("GET /api/teams", authed(catalogHandler.ListTeams))
	mux.Handle("POST /api/teams", manager(catalogHandler.CreateTeam))
	mux.Handle("GET /api/offices", authed(catalogHandler.ListOffices))
	mux.Handle("POST /api/offices", manager(catalogHandler.CreateOffice))
	mux.Handle("GET /api/offices/{id}", authed(catalogHandler.GetOffice))
	mux.Handle("GET /api/asset-types", authed(catalogHandler.ListAssetTypes))
	mux.Handle("POST /api/asset-types", manager(catalogHandler.CreateAssetType))
	mux.Handle("GET /api/units", authed(catalogHandler.ListUnits))
	mux.Handle("POST /api/units", manager(catalogHandler.CreateUnit))

	// Vehicles: read (all roles), write (manager+).
	mux.Handle("GET /api/vehicles", authed(vehiclesHandler.List))
	mux.Handle("POST /api/vehicles", manager(vehiclesHandler.Create))
	mux.Handle("DELETE /api/vehicles", manager(vehiclesHandler.Delete))
	mux.Handle("GET /api/vehicles/totals", authed(vehiclesHandler.Totals))
	mux.Handle("POST /api/vehicles/import", manager(vehiclesHandler.Import))

	// Accounts: own profile (all roles), management (admin only).
	mux.Handle("GET /api/accounts/me", authed(accountsHandler.Me))
	mux.Handle("PUT /api/accounts/me/password", authed(accountsHandler.ChangePassword))
	mux.Handle("GET /api/accounts", admin(accountsHandler.List))
	mux.Handle("POST /api/accounts", admin(accountsHandler.Create))
	mux.Handle("DELETE /api/accounts", admin(accountsHandler.Delete))
	mux.Handle("GET /api/accounts/{id}", admin(accountsHandler.Get))
	mux.Handle("PUT /api/accounts/{id}", admin(accountsHandler.Update))

	return mux
}
