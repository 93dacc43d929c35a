package handlers

import (
	"net/http"

	"github.com/MrSnakeDoc/seek/internal/httpserver/deps"
	"github.com/MrSnakeDoc/seek/internal/httpserver/mw"
)

type signupRequest struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func Signup(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req signupRequest
		if err := decodeJSON(w, r, &req); err != nil {
			writeServiceError(w, d.Logger, err)
			return
		}
		session, err := d.Auth.Signup(r.Context(), req.Email, req.Name, req.Password)
		if err != nil {
			writeServiceError(w, d.Logger, err)
			return
		}
		writeData(w, http.StatusCreated, session)
	}
}

func Login(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req loginRequest
		if err := decodeJSON(w, r, &req); err != nil {
			writeServiceError(w, d.Logger, err)
			return
		}
		session, err := d.Auth.Login(r.Context(), req.Email, req.Password)
		if err != nil {
			writeServiceError(w, d.Logger, err)
			return
		}
		writeData(w, http.StatusOK, session)
	}
}

func Me(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, err := d.Auth.Me(r.Context(), mw.UserID(r.Context()))
		if err != nil {
			writeServiceError(w, d.Logger, err)
			return
		}
		writeData(w, http.StatusOK, user)
	}
}
