// Copyright (c) 2026 ToeiRei
// Scaffold - web application scaffold
// This source code is licensed under the MIT license found in the LICENSE file.

package web

import (
	"encoding/json"
	"net/http"

	"github.com/toeirei/scaffold/internal/config"
	"github.com/toeirei/scaffold/internal/dao"
	"github.com/toeirei/scaffold/internal/db"
)

type usersPage struct {
	Current string
	Users   []dao.SysUser
	Logout  string
}

func (s *Server) handleUsers(w http.ResponseWriter, r *http.Request) {
	users, err := dao.NewSysUserDao(r.Context())
	if err != nil {
		s.serverError(w, err)
		return
	}
	list, err := users.GetAllUsers()
	if err != nil {
		s.serverError(w, err)
		return
	}
	page := usersPage{Users: list, Logout: logoutPath}
	if c, ok := CurrentUser(r.Context()); ok {
		page.Current = c.Subject
	}
	s.render(w, http.StatusOK, "users.html", page)
}

type health struct {
	Status  string `json:"status"`
	Backend string `json:"backend,omitempty"`
	Error   string `json:"error,omitempty"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	h := health{Status: "ok"}
	code := http.StatusOK
	p, err := db.FromContext(r.Context(), config.DBGlobalName)
	if err == nil {
		h.Backend = p.Options().Backend()
		_, err = p.Execute("SELECT 1")
	}
	if err != nil {
		h.Status, h.Error = "unavailable", err.Error()
		code = http.StatusServiceUnavailable
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(h)
}
