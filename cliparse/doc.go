// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package cliparse handles command-line argument parsing and configuration.

# Configuration

	cfg, err := cliparse.ParseFlags(os.Args[1:])

A .env file is loaded first when present (joho/godotenv). Flags take
precedence over environment variables.

# Settings

	-p            PORT           Server port (default 3318)
	-d            DATABASE_URL   Database URL (required)
	-t            DATABASE_TYPE  sqlite or postgres (default sqlite)
	-tz           REFERENCE_TZ   Club time zone (default America/New_York)
	-jwt-secret   JWT_SECRET     Bearer token secret (required)
*/
package cliparse
