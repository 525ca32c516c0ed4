// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package middleware provides HTTP middleware and helper functions.

# Request Logging and Metrics

Wrap handlers with request logging and prometheus metrics:

	mux.HandleFunc("GET /api/voting", middleware.WithLogging(middleware.WithMetrics(h.Status)))

WithLogging assigns a request id (X-Request-ID, generated with google/uuid if
the client sent none) and logs start and completion with the status code.
WithMetrics counts requests by method, route pattern and status.

# CORS Middleware

	server := http.Server{
		Handler: middleware.CORS(mux),
	}

# JSON Helpers

	middleware.JSONResponse(w, http.StatusOK, data)
	middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
	middleware.WriteError(w, r, err)

WriteError maps apperr kinds to status codes. Internal errors are logged with
their cause and reach the client only as a generic message.
*/
package middleware
