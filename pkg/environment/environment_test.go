package environment_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dmitrymomot/emailauth/pkg/environment"
)

func TestParse(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want environment.Environment
	}{
		{in: "production", want: environment.Production},
		{in: " PROD ", want: environment.Production},
		{in: "stage", want: environment.Staging},
		{in: "staging", want: environment.Staging},
		{in: "dev", want: environment.Development},
		{in: "", want: environment.Development},
		{in: "anything", want: environment.Development},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, environment.Parse(tt.in))
		})
	}
}

func TestPredicates(t *testing.T) {
	t.Parallel()

	assert.True(t, environment.Development.IsDevelopment())
	assert.False(t, environment.Production.IsDevelopment())
	assert.True(t, environment.Production.IsProduction())
	assert.True(t, environment.Staging.IsStaging())
	assert.Equal(t, "staging", environment.Staging.String())
}
