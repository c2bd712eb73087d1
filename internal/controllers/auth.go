package controllers

import (
	"context"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/roombook/backend/internal/cctx"
	"github.com/roombook/backend/internal/database/models"
	"github.com/roombook/backend/internal/router"
	"github.com/roombook/backend/internal/service"
)

var _ router.Controller = (*AuthController)(nil)

type AuthLogic interface {
	router.TokenVerifier
	Register(ctx context.Context, reg service.Registration) (models.User, error)
	Authenticate(ctx context.Context, email, password string) (string, error)
}

type AuthController struct {
	Auth AuthLogic
}

var (
	registerKeys = allowedKeys("name", "username", "email", "password")
	loginKeys    = allowedKeys("email", "password")
)

type registerRequest struct {
	Name     string `json:"name"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (c *AuthController) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeBody(r, registerKeys, &req); err != nil {
		router.WriteError(w, r, err)
		return
	}

	user, err := c.Auth.Register(r.Context(), service.Registration{
		Name:     req.Name,
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		router.WriteError(w, r, err)
		return
	}

	router.WriteJSON(w, http.StatusCreated, map[string]interface{}{
		"message": "User created successfully",
		"user":    user,
	})
}

func (c *AuthController) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeBody(r, loginKeys, &req); err != nil {
		router.WriteError(w, r, err)
		return
	}

	token, err := c.Auth.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		router.WriteError(w, r, err)
		return
	}

	router.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Login successful",
		"token":   token,
	})
}

func (c *AuthController) handleVerify(w http.ResponseWriter, r *http.Request) {
	userID, _ := cctx.UserIDFrom(r.Context())
	router.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"valid":  true,
		"userId": userID,
	})
}

func (c *AuthController) Register(mr *mux.Router) {
	sub := mr.PathPrefix("/auth").Subrouter()
	sub.HandleFunc("/register", c.handleRegister).
		Methods(http.MethodPost)
	sub.HandleFunc("/login", c.handleLogin).
		Methods(http.MethodPost)
	sub.Handle("/verify", router.RequireBearer(c.Auth)(http.HandlerFunc(c.handleVerify))).
		Methods(http.MethodGet)
}
