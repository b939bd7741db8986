package main

import (
	"context"
	"testing"

	"github.com/dvloznov/expense-tracker/internal/config"
	"github.com/stretchr/testify/assert"
)

func TestRun(t *testing.T) {
	tests := []struct {
		name    string
		storage config.StorageConfig
		wantErr string
	}{
		{name: "memory needs nothing", storage: config.StorageConfig{Driver: config.DriverMemory}},
		{name: "unknown driver", storage: config.StorageConfig{Driver: "sqlite"}, wantErr: `unknown storage driver "sqlite"`},
		{name: "postgres without url", storage: config.StorageConfig{Driver: config.DriverPostgres}, wantErr: "Migrate"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := run(context.Background(), tt.storage)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}
