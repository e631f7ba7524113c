// pkg/engine/errors_test.go
package engine

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, 200},
		{"not found", ErrModuleNotFound, 404},
		{"forbidden", ErrForbidden, 403},
		{"invalid params", ErrInvalidParams, 400},
		{"invalid input", ErrInvalidInput, 400},
		{"no config", ErrNoConfig, 400},
		{"config save", ErrConfigSave, 500},
		{"unclassified", errors.New("something else"), 500},
		{"wrapped not found", fmt.Errorf("%w: usernames_module", ErrModuleNotFound), 404},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, HTTPStatus(tt.err))
		})
	}
}
