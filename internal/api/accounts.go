package api

import (
	"database/sql"
	"log/slog"
	"net/http"
	"slices"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/vanminhgroup/qlts/internal/model"
	"github.com/vanminhgroup/qlts/internal/store"
)

// AccountsHandler handles account management endpoints.
type AccountsHandler struct {
	DB *sql.DB
}

type createAccountRequest struct {
	Phone       string     `json:"phone" validate:"required,max=20"`
	Name        string     `json:"name" validate:"required,max=255"`
	Email       string     `json:"email" validate:"omitempty,email"`
	Position    string     `json:"position"`
	Password    string     `json:"password" validate:"required"`
	Role        string     `json:"role" validate:"required,oneof=admin manager user"`
	OfficeID    *string    `json:"officeId"`
	DateOfBirth *time.Time `json:"dateOfBirth"`
}

type updateAccountRequest struct {
	Name        *string    `json:"name" validate:"omitempty,max=255"`
	Email       *string    `json:"email" validate:"omitempty,email"`
	Position    *string    `json:"position"`
	Role        *string    `json:"role" validate:"omitempty,oneof=admin manager user"`
	OfficeID    *string    `json:"officeId"`
	Active      *bool      `json:"active"`
	Password    *string    `json:"password"`
	DateOfBirth *time.Time `json:"dateOfBirth"`
}

type changePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" validate:"required"`
	NewPassword     string `json:"newPassword" validate:"required"`
}

// List handles GET /api/accounts.
func (h *AccountsHandler) List(w http.ResponseWriter, r *http.Request) {
	accounts, err := store.ListAccounts(r.Context(), h.DB)
	if err != nil {
		writeError(w, r, err)
		return
	}
	listResponse(w, accounts)
}

// Get handles GET /api/accounts/{id}.
func (h *AccountsHandler) Get(w http.ResponseWriter, r *http.Request) {
	h.writeAccount(w, r, r.PathValue("id"))
}

// Me handles GET /api/accounts/me.
func (h *AccountsHandler) Me(w http.ResponseWriter, r *http.Request) {
	h.writeAccount(w, r, GetActor(r.Context()).AccountID)
}

func (h *AccountsHandler) writeAccount(w http.ResponseWriter, r *http.Request, id string) {
	account, err := store.GetAccount(r.Context(), h.DB, id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if account == nil || account.DeletedAt != nil {
		jsonError(w, http.StatusNotFound, "account not found")
		return
	}
	jsonResponse(w, http.StatusOK, account)
}

// Create handles POST /api/accounts.
func (h *AccountsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createAccountRequest
	if !bindAndValidate(w, r, &req) {
		return
	}

	if err := model.ValidatePassword(req.Password); err != nil {
		jsonError(w, http.StatusBadRequest, err.Error())
		return
	}
	if ok := h.officeExists(w, r, req.OfficeID); !ok {
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		writeError(w, r, err)
		return
	}

	account, err := store.CreateAccount(r.Context(), h.DB, &model.Account{
		Phone:        req.Phone,
		Name:         req.Name,
		Email:        req.Email,
		Position:     req.Position,
		PasswordHash: string(hash),
		Role:         req.Role,
		OfficeID:     req.OfficeID,
		Active:       true,
		DateOfBirth:  req.DateOfBirth,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	slog.Info("account created", "user", GetActor(r.Context()).AccountID, "account", account.Phone, "role", account.Role)
	jsonResponse(w, http.StatusCreated, account)
}

// Update handles PUT /api/accounts/{id}. Changing the password or the active
// flag signs the account out everywhere.
func (h *AccountsHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req updateAccountRequest
	if !bindAndValidate(w, r, &req) {
		return
	}

	u := store.AccountUpdate{
		Name:        req.Name,
		Email:       req.Email,
		Position:    req.Position,
		Role:        req.Role,
		OfficeID:    req.OfficeID,
		Active:      req.Active,
		DateOfBirth: req.DateOfBirth,
	}
	if req.OfficeID != nil && *req.OfficeID != "" {
		if ok := h.officeExists(w, r, req.OfficeID); !ok {
			return
		}
	}
	if req.Password != nil {
		if err := model.ValidatePassword(*req.Password); err != nil {
			jsonError(w, http.StatusBadRequest, err.Error())
			return
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(*req.Password), bcrypt.DefaultCost)
		if err != nil {
			writeError(w, r, err)
			return
		}
		s := string(hash)
		u.PasswordHash = &s
	}

	account, err := store.UpdateAccount(r.Context(), h.DB, r.PathValue("id"), u)
	if err != nil {
		writeError(w, r, err)
		return
	}

	slog.Info("account updated", "user", GetActor(r.Context()).AccountID, "account", account.Phone,
		"password_changed", u.PasswordHash != nil, "active", account.Active)
	jsonResponse(w, http.StatusOK, account)
}

// ChangePassword handles PUT /api/accounts/me/password.
func (h *AccountsHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	var req changePasswordRequest
	if !bindAndValidate(w, r, &req) {
		return
	}

	actor := GetActor(r.Context())
	account, err := store.GetAccount(r.Context(), h.DB, actor.AccountID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if account == nil {
		jsonError(w, http.StatusNotFound, "account not found")
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(req.CurrentPassword)); err != nil {
		jsonError(w, http.StatusUnauthorized, "current password is incorrect")
		return
	}
	if err := model.ValidatePassword(req.NewPassword); err != nil {
		jsonError(w, http.StatusBadRequest, err.Error())
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		writeError(w, r, err)
		return
	}
	s := string(hash)
	if _, err := store.UpdateAccount(r.Context(), h.DB, actor.AccountID, store.AccountUpdate{PasswordHash: &s}); err != nil {
		writeError(w, r, err)
		return
	}

	slog.Info("account changed own password", "user", actor.AccountID)
	jsonResponse(w, http.StatusOK, map[string]string{"message": "password updated"})
}

// Delete handles DELETE /api/accounts.
func (h *AccountsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	var req idsRequest
	if err := decodeJSON(r, &req); err != nil || len(req.IDs) == 0 {
		jsonError(w, http.StatusBadRequest, "ids required")
		return
	}

	actor := GetActor(r.Context())
	if slices.Contains(req.IDs, actor.AccountID) {
		jsonError(w, http.StatusBadRequest, "cannot delete yourself")
		return
	}

	n, err := store.DeleteAccounts(r.Context(), h.DB, req.IDs)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if n == 0 {
		jsonError(w, http.StatusNotFound, "no accounts found")
		return
	}

	slog.Info("accounts deleted", "user", actor.AccountID, "deleted", n)
	jsonResponse(w, http.StatusOK, map[string]any{"message": "accounts deleted", "deletedCount": n})
}

// officeExists writes a 404 and returns false when officeID names no office.
func (h *AccountsHandler) officeExists(w http.ResponseWriter, r *http.Request, officeID *string) bool {
	if officeID == nil {
		return true
	}
	office, err := store.GetOffice(r.Context(), h.DB, *officeID)
	if err != nil {
		writeError(w, r, err)
		return false
	}
	if office == nil {
		jsonError(w, http.StatusNotFound, "office not found")
		return false
	}
	return true
}

