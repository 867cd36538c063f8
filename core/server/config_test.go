package server_test

import (
	"testing"

	"stocktake/core/server"

	"github.com/stretchr/testify/assert"
)

func TestConfig_IsValidPort(t *testing.T) {
	tests := []struct {
		name string
		port string
		want bool
	}{
		{"Default", "8080", true},
		{"Low", "1", true},
		{"Max", "65535", true},
		{"TooHigh", "70000", false},
		{"Zero", "0", false},
		{"NotANumber", "http", false},
		{"Empty", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := server.Config{Port: tt.port}
			assert.Equal(t, tt.want, c.IsValidPort())
		})
	}
}

func TestConfig_Addr(t *testing.T) {
	c := server.Config{Port: "9090"}
	assert.Equal(t, ":9090", c.Addr())
}
