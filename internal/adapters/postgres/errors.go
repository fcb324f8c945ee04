package postgres

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"boothbook/internal/apperrors"
)

// SQLSTATE codes the adapter maps to caller-facing kinds.
const (
	codeForeignKeyViolation = "23503"
	codeNotNullViolation    = "23502"
	codeCheckViolation      = "23514"
	codeUniqueViolation     = "23505"
	codeInvalidText         = "22P02"
	codeInvalidDatetime     = "22007"
	codeDatetimeOverflow    = "22008"
)

// classify wraps err with the apperrors kind it belongs to. Errors that are
// already classified (decode, not found, ...) pass through untouched.
func classify(op string, err error) error {
	if err == nil || apperrors.Kind(err) != nil {
		return err
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case codeForeignKeyViolation:
			return fmt.Errorf("%s: %w: %s", op, apperrors.ErrReferentialIntegrity, pgErr.Detail)
		case codeNotNullViolation, codeCheckViolation, codeUniqueViolation,
			codeInvalidText, codeInvalidDatetime, codeDatetimeOverflow:
			return fmt.Errorf("%s: %w: %s", op, apperrors.ErrValidation, pgErr.Message)
		}
	}
	return apperrors.Storage(op, err)
}

func notFoundOr(op, entity, id string, err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return apperrors.NotFound(entity, id)
	}
	return classify(op, err)
}
