// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package router

import (
	"database/sql"
	"net/http"

	"github.com/danielhkuo/club-checkin/auth"
	"github.com/danielhkuo/club-checkin/cliparse"
	"github.com/danielhkuo/club-checkin/clock"
	"github.com/danielhkuo/club-checkin/db"
	"github.com/danielhkuo/club-checkin/handlers"
	"github.com/danielhkuo/club-checkin/metrics"
	"github.com/danielhkuo/club-checkin/middleware"
	"github.com/danielhkuo/club-checkin/store"
)

func NewRouter(conn *sql.DB, cfg cliparse.Config, c clock.Clock) *http.ServeMux {
	mux := http.NewServeMux()

	st := store.New(conn, db.Dialect(cfg.DatabaseType))
	resolver := auth.NewJWTResolver(cfg.JWTSecret)

	// Initialize handlers
	attendanceHandler := handlers.NewAttendanceHandler(st, resolver, c)
	votingHandler := handlers.NewVotingHandler(st, resolver, c)

	// Health check
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	mux.Handle("GET /metrics", metrics.Handler())

	// Attendance and table topics
	mux.HandleFunc("GET /api/attendance", wrap(attendanceHandler.List))
	mux.HandleFunc("POST /api/attendance", wrap(attendanceHandler.CheckIn))
	mux.HandleFunc("DELETE /api/attendance", wrap(attendanceHandler.Remove))
	mux.HandleFunc("POST /api/attendance/table-topics", wrap(attendanceHandler.ToggleTableTopics))

	// Award voting
	mux.HandleFunc("GET /api/voting", wrap(votingHandler.Status))
	mux.HandleFunc("POST /api/voting", wrap(votingHandler.Action))
	mux.HandleFunc("POST /api/voting/token", wrap(votingHandler.Token))

	// Root endpoint
	mux.HandleFunc("GET /", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			middleware.ErrorResponse(w, http.StatusNotFound, "Not found")
			return
		}
		w.Write([]byte("club-checkin API v1"))
	})

	return mux
}

func wrap(h http.HandlerFunc) http.HandlerFunc {
	return middleware.WithLogging(middleware.WithMetrics(h))
}
