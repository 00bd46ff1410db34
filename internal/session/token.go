// FilmFlow - Movie Catalog and Library Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/filmflow

package session

import (
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

// usernameClaims are checked in order; the first non-empty string wins.
var usernameClaims = []string{"username", "preferred_username", "name", "sub"}

// UsernameFromToken reads the username from an access token without
// verifying its signature. The backend verifies the token on every call;
// the client only needs the name to attribute freshly submitted reviews.
func UsernameFromToken(token string) (string, error) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return "", fmt.Errorf("parse access token: %w", err)
	}
	for _, key := range usernameClaims {
		if v, ok := claims[key].(string); ok && v != "" {
			return v, nil
		}
	}
	return "", fmt.Errorf("access token carries no username claim")
}

// FromToken builds an authenticated session. An explicit username takes
// precedence over the token claims. An empty token yields an
// unauthenticated session.
func FromToken(token, username string) Session {
	if token == "" {
		return Session{Status: StatusUnauthenticated}
	}
	if username == "" {
		if name, err := UsernameFromToken(token); err == nil {
			username = name
		}
	}
	return Session{Status: StatusAuthenticated, AccessToken: token, Username: username}
}
