package zonecluster

import (
	"errors"
	"testing"

	"github.com/antigravity/stationselect/internal/problemdata"
)

func floatPtr(v float64) *float64 { return &v }
func countPtr(v int) *int         { return &v }

func TestParams_ValidateRequiresExactlyOneMode(t *testing.T) {
	cases := []struct {
		name   string
		params Params
	}{
		{"neither set", Params{}},
		{"both set", Params{Diameter: floatPtr(1), Count: countPtr(2)}},
		{"zero count", Params{Count: countPtr(0)}},
		{"negative diameter", Params{Diameter: floatPtr(-1)}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.params.validate()
			var invalid *problemdata.InvalidParameterError
			if !errors.As(err, &invalid) {
				t.Fatalf("validate(): want *InvalidParameterError, got %T: %v", err, err)
			}
		})
	}
}

func TestParams_ValidateAcceptsEitherModeAlone(t *testing.T) {
	if err := (Params{Count: countPtr(3)}).validate(); err != nil {
		t.Fatalf("validate() with Count only: %v", err)
	}
	if err := (Params{Diameter: floatPtr(0)}).validate(); err != nil {
		t.Fatalf("validate() with Diameter only: %v", err)
	}
}
