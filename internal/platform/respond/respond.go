// Copyright (c) 2026 Inkpost. All rights reserved.
// Author: dev@inkpost.app

// Package respond provides HTTP response helpers used by all API handlers.
//
// # Architecture
//
// This package centralizes the presentation logic for HTTP responses.
// It ensures that every response (Success or Error) across the entire application
// follows a strict, predictable JSON envelope structure. This consistency is
// crucial for mobile apps and frontend SPAs to parse data robustly.
//
// # Silent Renewal
//
// When the refresh-fallback middleware mints a new access token, success
// envelopes automatically carry it in an "access_token" field (and the
// X-Access-Token header) so the client can replace its held credential.
package respond

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/inkpost/inkpost/internal/platform/apperr"
	"github.com/inkpost/inkpost/internal/platform/constants"
	"github.com/inkpost/inkpost/internal/platform/ctxutil"
	"github.com/inkpost/inkpost/pkg/pagination"
)

// SuccessEnvelope is the JSON envelope for successful single-resource responses.
type SuccessEnvelope struct {
	Data        interface{} `json:"data"`
	AccessToken string      `json:"access_token,omitempty"`
}

// PaginatedEnvelope is the JSON envelope for cursor-paginated list responses.
type PaginatedEnvelope struct {
	Data        interface{}     `json:"data"`
	Meta        pagination.Meta `json:"meta"`
	AccessToken string          `json:"access_token,omitempty"`
}

// ErrorEnvelope is the JSON envelope for error responses.
type ErrorEnvelope struct {
	Error   string              `json:"error"`
	Code    string              `json:"code"`
	Details []apperr.FieldError `json:"details,omitempty"`
}

// JSON writes a JSON response with the given status code.
func JSON(writer http.ResponseWriter, statusCode int, payload interface{}) {
	writer.Header().Set("Content-Type", "application/json; charset=utf-8")
	writer.WriteHeader(statusCode)
	_ = json.NewEncoder(writer).Encode(payload)
}

// OK writes a 200 OK response with data wrapped in the standard success envelope.
func OK(writer http.ResponseWriter, request *http.Request, data interface{}) {
	JSON(writer, http.StatusOK, SuccessEnvelope{
		Data:        data,
		AccessToken: renewedToken(writer, request),
	})
}

// Created writes a 201 Created response with data wrapped in the standard success envelope.
func Created(writer http.ResponseWriter, request *http.Request, data interface{}) {
	JSON(writer, http.StatusCreated, SuccessEnvelope{
		Data:        data,
		AccessToken: renewedToken(writer, request),
	})
}

// Paginated writes a 200 OK response with paginated data and a metadata block.
func Paginated(writer http.ResponseWriter, request *http.Request, data interface{}, metadata pagination.Meta) {
	JSON(writer, http.StatusOK, PaginatedEnvelope{
		Data:        data,
		Meta:        metadata,
		AccessToken: renewedToken(writer, request),
	})
}

// NoContent writes a 204 No Content response.
//
// A silently renewed token can only travel in the header here — 204 bodies
// are empty by definition.
func NoContent(writer http.ResponseWriter, request *http.Request) {
	if token := ctxutil.GetRenewedToken(request.Context()); token != "" {
		writer.Header().Set(constants.AccessTokenHeader, token)
	}
	writer.WriteHeader(http.StatusNoContent)
}

// Error converts any Go error into a standardized JSON API error response.
func Error(writer http.ResponseWriter, request *http.Request, err error) {
	var appError *apperr.AppError
	if !errors.As(err, &appError) {
		// Unexpected internal error: log full details but hide them from the client for security.
		logger := ctxutil.GetLogger(request.Context())
		logger.ErrorContext(request.Context(), "unhandled_error_swallowed",
			slog.String("error", err.Error()),
			slog.String("request_id", ctxutil.GetRequestID(request.Context())),
		)
		appError = apperr.Internal(err)
	}

	// Always log 5xx errors as they indicate server-side issues.
	if appError.HTTPStatus >= 500 {
		logger := ctxutil.GetLogger(request.Context())
		logger.ErrorContext(request.Context(), "api_server_error",
			slog.String("code", appError.Code),
			slog.String("request_id", ctxutil.GetRequestID(request.Context())),
			slog.Any("cause", appError.Cause),
		)
	}

	JSON(writer, appError.HTTPStatus, ErrorEnvelope{
		Error:   appError.Message,
		Code:    appError.Code,
		Details: appError.Details,
	})
}

// renewedToken pulls a silently minted access token (if any) from the request
// context and mirrors it into the response header.
func renewedToken(writer http.ResponseWriter, request *http.Request) string {
	token := ctxutil.GetRenewedToken(request.Context())
	if token != "" {
		writer.Header().Set(constants.AccessTokenHeader, token)
	}
	return token
}
