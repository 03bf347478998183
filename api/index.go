// Package handler is the serverless entry point. The platform calls Handler
// for every request; the application is built on the first call.
package handler

import (
	"net/http"

	"guestbook/internal/serverless"
)

var entrypoint = serverless.FromEnv()

func Handler(w http.ResponseWriter, r *http.Request) {
	entrypoint.ServeHTTP(w, r)
}
