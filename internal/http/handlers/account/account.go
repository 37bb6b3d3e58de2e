// Package account handles admin user accounts: public signup and login,
// and the admin-only user listing and admin-flag toggle.
package account

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/aanand-mishra/chapter-api/internal/auth"
	"github.com/aanand-mishra/chapter-api/internal/storage"
	"github.com/aanand-mishra/chapter-api/internal/types"
	"github.com/aanand-mishra/chapter-api/internal/utils/request"
	"github.com/aanand-mishra/chapter-api/internal/utils/response"
)

const (
	msgSignedUp     = "User registered successfully! An existing admin will need to grant you access to the admin panel."
	msgSignupFailed = "Failed to register user."
	msgBadLogin     = "Invalid credentials or not an admin."
	msgServerError  = "Server error"
	msgUpdated      = "User status updated successfully."
	msgUpdateFailed = "Failed to update user status."
	msgBadFlag      = "isAdmin must be a boolean."
)

// Signup handles POST /api/admin/signup.
//
// Request body: { "username": "…", "password": "…" }
//
// The user is always stored with isAdmin=false, whatever the body says; an
// existing admin grants access later. The password is stored as a bcrypt
// hash. Signing up with an existing username replaces that user.
//
// Responses: 201 confirmation text, 400 malformed JSON, 500 store failure
// (including a missing username).
func Signup(store storage.Storage, users storage.Collection, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var creds types.Credentials
		err := request.DecodeJSON(r, &creds)
		if err != nil && !errors.Is(err, request.ErrEmptyBody) {
			log.Debug("malformed signup body", zap.Error(err))
			response.WriteText(w, http.StatusBadRequest, response.MsgInvalidBody)
			return
		}

		log.Info("signing up user", zap.String("username", creds.Username))

		hash, err := auth.HashPassword(creds.Password)
		if err != nil {
			log.Error("error hashing password", zap.String("username", creds.Username), zap.Error(err))
			response.WriteText(w, http.StatusInternalServerError, msgSignupFailed)
			return
		}

		user := types.Record{
			types.AttrUsername: creds.Username,
			types.AttrPassword: hash,
			types.AttrIsAdmin:  false,
		}
		if err := store.PutItem(r.Context(), users, user); err != nil {
			log.Error("error storing user", zap.String("username", creds.Username), zap.Error(err))
			response.WriteText(w, http.StatusInternalServerError, msgSignupFailed)
			return
		}

		response.WriteText(w, http.StatusCreated, msgSignedUp)
	}
}

// Login handles POST /api/admin/login.
//
// Succeeds only when the user exists, the password matches and the user is
// an admin:
//
//	200 { "success": true, "token": "…" }
//	401 { "success": false, "message": "Invalid credentials or not an admin." }
//	500 { "success": false, "message": "Server error" }
func Login(store storage.Storage, users storage.Collection, issuer auth.Issuer, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var creds types.Credentials
		err := request.DecodeJSON(r, &creds)
		if err != nil && !errors.Is(err, request.ErrEmptyBody) {
			log.Debug("malformed login body", zap.Error(err))
			response.WriteJSON(w, http.StatusBadRequest,
				types.LoginResponse{Success: false, Message: response.MsgInvalidBody})
			return
		}

		user, err := store.GetItem(r.Context(), users, creds.Username)
		if err != nil && !errors.Is(err, storage.ErrNotFound) {
			log.Error("error during admin login", zap.String("username", creds.Username), zap.Error(err))
			response.WriteJSON(w, http.StatusInternalServerError,
				types.LoginResponse{Success: false, Message: msgServerError})
			return
		}

		if user == nil ||
			!auth.CheckPassword(user.String(types.AttrPassword), creds.Password) ||
			!user.Bool(types.AttrIsAdmin) {
			log.Info("admin login rejected", zap.String("username", creds.Username))
			response.WriteJSON(w, http.StatusUnauthorized,
				types.LoginResponse{Success: false, Message: msgBadLogin})
			return
		}

		token, err := issuer.Issue(creds.Username)
		if err != nil {
			log.Error("error issuing admin token", zap.String("username", creds.Username), zap.Error(err))
			response.WriteJSON(w, http.StatusInternalServerError,
				types.LoginResponse{Success: false, Message: msgServerError})
			return
		}

		log.Info("admin logged in", zap.String("username", creds.Username))
		response.WriteJSON(w, http.StatusOK, types.LoginResponse{Success: true, Token: token})
	}
}

// GetList handles GET /api/admin/users. Password hashes are removed from
// every record before it leaves the server.
func GetList(store storage.Storage, users storage.Collection, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		records, err := store.FetchAll(r.Context(), users)
		if err != nil {
			log.Error("error listing users", zap.Error(err))
			response.WriteJSON(w, http.StatusInternalServerError,
				response.Message("failed to load users"))
			return
		}

		for _, rec := range records {
			delete(rec, types.AttrPassword)
		}

		response.WriteJSON(w, http.StatusOK, records)
	}
}

// SetAdmin handles PUT /api/admin/users/{username}.
//
// Request body: { "isAdmin": true }
//
// Writes only the isAdmin attribute. There is no read-before-write check,
// so concurrent toggles resolve as last writer wins.
//
// Responses: 200 confirmation, 400 missing or non-boolean isAdmin,
// 500 unknown user or store failure.
func SetAdmin(store storage.Storage, users storage.Collection, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		username := chi.URLParam(r, "username")

		var flag types.AdminFlag
		if err := request.DecodeJSON(r, &flag); err != nil {
			response.WriteText(w, http.StatusBadRequest, msgBadFlag)
			return
		}
		if err := request.Validate(flag); err != nil {
			response.WriteText(w, http.StatusBadRequest, msgBadFlag)
			return
		}

		log.Info("updating admin flag",
			zap.String("username", username),
			zap.Bool("is_admin", *flag.IsAdmin))

		if err := store.SetAttribute(r.Context(), users, username, types.AttrIsAdmin, *flag.IsAdmin); err != nil {
			log.Error("error updating user status", zap.String("username", username), zap.Error(err))
			response.WriteText(w, http.StatusInternalServerError, msgUpdateFailed)
			return
		}

		response.WriteText(w, http.StatusOK, msgUpdated)
	}
}
