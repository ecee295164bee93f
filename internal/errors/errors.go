package errors

import (
	"errors"
	"fmt"
)

// Credential and remote API errors

// ErrCredentialNotFound means no credential record exists for the account:
// the account was never connected or was disconnected externally.
type ErrCredentialNotFound struct {
	AccountKey string
}

func (e *ErrCredentialNotFound) Error() string {
	return fmt.Sprintf("no credential for account %s", e.AccountKey)
}

// ErrAuthRevoked means the remote rejected a refresh attempt. The stored
// credential is left untouched so the failure can be diagnosed; recovery
// requires external re-authorization.
type ErrAuthRevoked struct {
	AccountKey string
	Code       string
	Message    string
}

func (e *ErrAuthRevoked) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("auth revoked for account %s: %s (%s)", e.AccountKey, e.Message, e.Code)
	}
	return fmt.Sprintf("auth revoked for account %s", e.AccountKey)
}

// ErrRemoteRejected is an application-level error from the listing endpoint.
// It is terminal for the current page loop but already-ingested pages stay.
type ErrRemoteRejected struct {
	Code    string
	Message string
}

func (e *ErrRemoteRejected) Error() string {
	return fmt.Sprintf("remote rejected request: %s (%s)", e.Message, e.Code)
}

// ErrTransient is a transport-level failure (timeout, connection reset).
// Retrying the whole account sync later is safe because upserts are
// idempotent.
type ErrTransient struct {
	Op  string
	Err error
}

func (e *ErrTransient) Error() string {
	return fmt.Sprintf("transient failure during %s: %v", e.Op, e.Err)
}

func (e *ErrTransient) Unwrap() error {
	return e.Err
}

// Predicates for the sync error taxonomy.

func IsCredentialNotFound(err error) bool {
	var target *ErrCredentialNotFound
	return errors.As(err, &target)
}

func IsAuthRevoked(err error) bool {
	var target *ErrAuthRevoked
	return errors.As(err, &target)
}

func IsRemoteRejected(err error) bool {
	var target *ErrRemoteRejected
	return errors.As(err, &target)
}

func IsTransient(err error) bool {
	var target *ErrTransient
	return errors.As(err, &target)
}

// Config errors

type ErrConfigNotFound struct {
	Path string
}

func (e *ErrConfigNotFound) Error() string {
	return fmt.Sprintf("config file not found: %s", e.Path)
}

type ErrConfigParse struct {
	Err error
}

func (e *ErrConfigParse) Error() string {
	return fmt.Sprintf("failed to parse YAML: %v", e.Err)
}

func (e *ErrConfigParse) Unwrap() error {
	return e.Err
}

type ErrConfigValidation struct {
	Err error
}

func (e *ErrConfigValidation) Error() string {
	return fmt.Sprintf("config validation failed: %v", e.Err)
}

func (e *ErrConfigValidation) Unwrap() error {
	return e.Err
}

// Database errors

type ErrDatabaseOpen struct {
	Path string
	Err  error
}

func (e *ErrDatabaseOpen) Error() string {
	return fmt.Sprintf("failed to open database %s: %v", e.Path, e.Err)
}

func (e *ErrDatabaseOpen) Unwrap() error {
	return e.Err
}

type ErrDatabaseMigration struct {
	Version int
	Err     error
}

func (e *ErrDatabaseMigration) Error() string {
	return fmt.Sprintf("database migration %d failed: %v", e.Version, e.Err)
}

func (e *ErrDatabaseMigration) Unwrap() error {
	return e.Err
}

type ErrDatabaseQuery struct {
	Operation string
	Err       error
}

func (e *ErrDatabaseQuery) Error() string {
	return fmt.Sprintf("database query failed for operation %s: %v", e.Operation, e.Err)
}

func (e *ErrDatabaseQuery) Unwrap() error {
	return e.Err
}

// Server errors

type ErrServerStart struct {
	Addr string
	Err  error
}

func (e *ErrServerStart) Error() string {
	return fmt.Sprintf("failed to start server on %s: %v", e.Addr, e.Err)
}

func (e *ErrServerStart) Unwrap() error {
	return e.Err
}

type ErrServerShutdown struct {
	Err error
}

func (e *ErrServerShutdown) Error() string {
	return fmt.Sprintf("server shutdown failed: %v", e.Err)
}

func (e *ErrServerShutdown) Unwrap() error {
	return e.Err
}

// Filesystem errors

type ErrDirectoryCreate struct {
	Path string
	Err  error
}

func (e *ErrDirectoryCreate) Error() string {
	return fmt.Sprintf("failed to create directory %s: %v", e.Path, e.Err)
}

func (e *ErrDirectoryCreate) Unwrap() error {
	return e.Err
}

type ErrFileRead struct {
	Path string
	Err  error
}

func (e *ErrFileRead) Error() string {
	return fmt.Sprintf("failed to read file %s: %v", e.Path, e.Err)
}

func (e *ErrFileRead) Unwrap() error {
	return e.Err
}
