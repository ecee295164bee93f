package errors

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrCredentialNotFound(t *testing.T) {
	err := &ErrCredentialNotFound{AccountKey: "acct-1"}
	assert.Contains(t, err.Error(), "acct-1")
	assert.True(t, IsCredentialNotFound(err))
	assert.False(t, IsAuthRevoked(err))
}

func TestErrAuthRevoked(t *testing.T) {
	t.Run("with code", func(t *testing.T) {
		err := &ErrAuthRevoked{AccountKey: "acct-1", Code: "invalid_grant", Message: "refresh token expired"}
		assert.Contains(t, err.Error(), "invalid_grant")
		assert.Contains(t, err.Error(), "refresh token expired")
	})

	t.Run("without code", func(t *testing.T) {
		err := &ErrAuthRevoked{AccountKey: "acct-1"}
		assert.Contains(t, err.Error(), "acct-1")
	})

	err := &ErrAuthRevoked{AccountKey: "acct-1"}
	assert.True(t, IsAuthRevoked(err))
	assert.False(t, IsTransient(err))
}

func TestErrRemoteRejected(t *testing.T) {
	err := &ErrRemoteRejected{Code: "scope_not_authorized", Message: "missing video.list scope"}
	assert.Contains(t, err.Error(), "scope_not_authorized")
	assert.True(t, IsRemoteRejected(err))
}

func TestErrTransient(t *testing.T) {
	inner := fmt.Errorf("connection reset")
	err := &ErrTransient{Op: "list videos", Err: inner}
	assert.Contains(t, err.Error(), "list videos")
	assert.Equal(t, inner, err.Unwrap())
	assert.True(t, IsTransient(err))

	t.Run("detected through wrapping", func(t *testing.T) {
		wrapped := fmt.Errorf("sync account acct-1: %w", err)
		assert.True(t, IsTransient(wrapped))
		assert.False(t, IsRemoteRejected(wrapped))
	})
}

func TestPredicatesOnPlainErrors(t *testing.T) {
	plain := fmt.Errorf("boom")
	assert.False(t, IsCredentialNotFound(plain))
	assert.False(t, IsAuthRevoked(plain))
	assert.False(t, IsRemoteRejected(plain))
	assert.False(t, IsTransient(plain))
	assert.False(t, IsTransient(nil))
}

func TestInfraErrorsUnwrap(t *testing.T) {
	inner := fmt.Errorf("inner")

	assert.Equal(t, inner, (&ErrConfigParse{Err: inner}).Unwrap())
	assert.Equal(t, inner, (&ErrDatabaseOpen{Path: "/tmp/x.db", Err: inner}).Unwrap())
	assert.Equal(t, inner, (&ErrDatabaseQuery{Operation: "upsert video", Err: inner}).Unwrap())
	assert.Contains(t, (&ErrDatabaseMigration{Version: 2, Err: inner}).Error(), "migration 2")
	assert.Contains(t, (&ErrConfigNotFound{Path: "cfg.yaml"}).Error(), "cfg.yaml")
}
