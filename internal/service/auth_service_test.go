package service

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func TestIsDuplicateKey(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{
			name: "gorm duplicated key",
			err:  gorm.ErrDuplicatedKey,
			want: true,
		},
		{
			name: "wrapped gorm duplicated key",
			err:  fmt.Errorf("create user: %w", gorm.ErrDuplicatedKey),
			want: true,
		},
		{
			name: "postgres unique violation",
			err:  &pgconn.PgError{Code: "23505"},
			want: true,
		},
		{
			name: "wrapped postgres unique violation",
			err:  fmt.Errorf("create user: %w", &pgconn.PgError{Code: "23505"}),
			want: true,
		},
		{
			name: "postgres foreign key violation",
			err:  &pgconn.PgError{Code: "23503"},
			want: false,
		},
		{
			name: "record not found",
			err:  gorm.ErrRecordNotFound,
			want: false,
		},
		{
			name: "plain error",
			err:  errors.New("connection reset"),
			want: false,
		},
		{
			name: "nil",
			err:  nil,
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, isDuplicateKey(tt.err))
		})
	}
}
