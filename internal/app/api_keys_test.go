package app

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"otpviewer.org/internal/appconf"
)

func TestIsInvalidAPIKey(t *testing.T) {
	app := &Application{Config: appconf.Config{ApiKeys: []string{"alpha", "beta"}}}

	tests := []struct {
		key     string
		invalid bool
	}{
		{"alpha", false},
		{"beta", false},
		{"", true},
		{"gamma", true},
		{"alph", true},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			assert.Equal(t, tt.invalid, app.IsInvalidAPIKey(tt.key))
		})
	}
}

func TestRequestHasInvalidAPIKey(t *testing.T) {
	app := &Application{Config: appconf.Config{ApiKeys: []string{"test"}}}

	assert.False(t, app.RequestHasInvalidAPIKey(httptest.NewRequest("GET", "/api/where/routes.json?key=test", nil)))
	assert.True(t, app.RequestHasInvalidAPIKey(httptest.NewRequest("GET", "/api/where/routes.json", nil)))
}
