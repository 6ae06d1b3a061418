package auth

import (
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestExtractTelegramData(t *testing.T) {
	initData := url.Values{
		"auth_date": {"1677649900"},
		"user":      {`{"id":5060715466,"username":"defi_master"}`},
		"hash":      {"abc123"},
	}.Encode()

	data, err := ExtractTelegramData(initData)
	assert.NoError(t, err)
	assert.Equal(t, int64(5060715466), data.ID)
	assert.Equal(t, "defi_master", data.Username)
	assert.Equal(t, time.Unix(1677649900, 0), data.AuthDate)
}

func TestExtractTelegramData_Malformed(t *testing.T) {
	tests := []struct {
		name     string
		initData string
	}{
		{"missing auth_date", "user=%7B%22id%22%3A1%7D"},
		{"non-numeric auth_date", "auth_date=yesterday&user=%7B%22id%22%3A1%7D"},
		{"missing user payload", "auth_date=1677649900"},
		{"broken user json", "auth_date=1677649900&user=%7Bnope"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ExtractTelegramData(tt.initData)
			assert.Error(t, err)
		})
	}
}
