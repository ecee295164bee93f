package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCredential_Validate(t *testing.T) {
	t.Run("valid credential", func(t *testing.T) {
		c := &Credential{AccountKey: "acct-1", AccessToken: "tok", AccessExpiresInSec: 3600}
		assert.NoError(t, c.Validate())
	})

	t.Run("missing account key", func(t *testing.T) {
		c := &Credential{AccessToken: "tok"}
		assert.Error(t, c.Validate())
	})

	t.Run("missing access token", func(t *testing.T) {
		c := &Credential{AccountKey: "acct-1"}
		assert.Error(t, c.Validate())
	})

	t.Run("negative expiry", func(t *testing.T) {
		c := &Credential{AccountKey: "acct-1", AccessToken: "tok", AccessExpiresInSec: -1}
		assert.Error(t, c.Validate())
	})
}

func TestCredential_Expired(t *testing.T) {
	issued := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	c := &Credential{
		AccountKey:         "acct-1",
		AccessToken:        "tok",
		AccessExpiresInSec: 3600,
		IssuedAt:           issued,
	}

	assert.Equal(t, issued.Add(time.Hour), c.ExpiresAt())

	t.Run("fresh token", func(t *testing.T) {
		assert.False(t, c.Expired(issued.Add(time.Minute)))
	})

	t.Run("just inside the skew window", func(t *testing.T) {
		assert.False(t, c.Expired(issued.Add(3600*time.Second-301*time.Second)))
	})

	t.Run("at the skew boundary", func(t *testing.T) {
		assert.True(t, c.Expired(issued.Add(3600*time.Second-300*time.Second)))
	})

	t.Run("past the skew boundary", func(t *testing.T) {
		assert.True(t, c.Expired(issued.Add(3600*time.Second-299*time.Second)))
	})

	t.Run("fully expired", func(t *testing.T) {
		assert.True(t, c.Expired(issued.Add(2*time.Hour)))
	})
}

func TestVideoSlice(t *testing.T) {
	vs := VideoSlice{
		{VideoID: "v1", OwnerAccountKey: "a"},
		{VideoID: "v2", OwnerAccountKey: "b"},
		{VideoID: "v3", OwnerAccountKey: "a"},
	}

	v, ok := vs.FindByID("v2")
	assert.True(t, ok)
	assert.Equal(t, "b", v.OwnerAccountKey)

	_, ok = vs.FindByID("missing")
	assert.False(t, ok)

	owned := vs.FilterByOwner("a")
	assert.Len(t, owned, 2)
}

func TestSyncReport_FailedKeys(t *testing.T) {
	report := &SyncReport{
		Succeeded: 1,
		Total:     2,
		Results: []AccountResult{
			{AccountKey: "ok-account", VideosSynced: 3},
			{AccountKey: "bad-account", Err: assert.AnError, ErrorMessage: assert.AnError.Error()},
		},
	}

	assert.Equal(t, []string{"bad-account"}, report.FailedKeys())
	assert.True(t, report.Results[0].Succeeded())
	assert.False(t, report.Results[1].Succeeded())
}
