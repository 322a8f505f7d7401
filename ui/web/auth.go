// Copyright (c) 2026 ToeiRei
// Scaffold - web application scaffold
// This source code is licensed under the MIT license found in the LICENSE file.

package web

import (
	"errors"
	"net/http"
	"strings"

	"github.com/toeirei/scaffold/internal/config"
	"github.com/toeirei/scaffold/internal/dao"
	"github.com/toeirei/scaffold/internal/db"
	"github.com/toeirei/scaffold/internal/logging"
)

type formPage struct {
	Error    string
	Notice   string
	Username string
	Action   string
}

func (s *Server) handleRegisterForm(w http.ResponseWriter, r *http.Request) {
	s.render(w, http.StatusOK, "register.html", formPage{Action: registerPath})
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	username := strings.TrimSpace(r.FormValue("username"))
	password := r.FormValue("password")
	page := formPage{Action: registerPath, Username: username}

	if username == "" || password == "" {
		page.Error = dao.ErrEmptyCredentials.Error()
		s.render(w, http.StatusBadRequest, "register.html", page)
		return
	}

	users, err := dao.NewSysUserDao(r.Context())
	if err != nil {
		s.serverError(w, err)
		return
	}
	_, err = users.Create(dao.SysUser{
		Username: username,
		Password: password,
		Email:    strings.TrimSpace(r.FormValue("email")),
		Phone:    strings.TrimSpace(r.FormValue("phone")),
	})
	if err != nil {
		if rbErr := users.Rollback(); rbErr != nil {
			logging.Debugf("web: rollback after failed register: %v", rbErr)
		}
	}
	if errors.Is(err, db.ErrDuplicate) {
		page.Error = "username " + username + " is already taken"
		s.render(w, http.StatusConflict, "register.html", page)
		return
	}
	if err == nil {
		err = users.Commit()
	}
	if err != nil {
		s.serverError(w, err)
		return
	}
	logging.Infof("web: registered user %s", username)
	http.Redirect(w, r, loginPath+"?registered=1", http.StatusSeeOther)
}

func (s *Server) handleLoginForm(w http.ResponseWriter, r *http.Request) {
	page := formPage{Action: loginPath}
	if r.URL.Query().Get("registered") != "" {
		page.Notice = "registration complete, please log in"
	}
	s.render(w, http.StatusOK, "login.html", page)
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	username := strings.TrimSpace(r.FormValue("username"))
	page := formPage{Action: loginPath, Username: username}

	users, err := dao.NewSysUserDao(r.Context())
	if err != nil {
		s.serverError(w, err)
		return
	}
	u, err := users.Authenticate(username, r.FormValue("password"))
	switch {
	case errors.Is(err, dao.ErrEmptyCredentials):
		page.Error = err.Error()
		s.render(w, http.StatusBadRequest, "login.html", page)
		return
	case errors.Is(err, dao.ErrInvalidCredentials), errors.Is(err, dao.ErrUserDisabled):
		page.Error = err.Error()
		s.render(w, http.StatusUnauthorized, "login.html", page)
		return
	case err != nil:
		s.serverError(w, err)
		return
	}

	token, err := issueToken(s.secret, u, s.ttl, s.now())
	if err != nil {
		s.serverError(w, err)
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     config.SessionCookie,
		Value:    token,
		Path:     "/",
		MaxAge:   int(s.ttl.Seconds()),
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteLaxMode,
	})
	http.Redirect(w, r, "/users", http.StatusSeeOther)
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	clearSession(w)
	http.Redirect(w, r, loginPath, http.StatusSeeOther)
}

func clearSession(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     config.SessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})
}

func (s *Server) serverError(w http.ResponseWriter, err error) {
	logging.Errorf("web: %v", err)
	http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
}
