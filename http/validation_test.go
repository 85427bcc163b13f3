package http

import (
	"strings"
	"testing"
)

func TestValidateFlight(t *testing.T) {
	cases := []struct {
		name    string
		flight  FlightRequest
		wantErr string
	}{
		{
			name:   "valid national",
			flight: FlightRequest{Carrier: "Grupo LATAM", FlightType: "N", Month: 3},
		},
		{
			name:   "valid international",
			flight: FlightRequest{Carrier: "K.L.M.", FlightType: "I", Month: 12},
		},
		{
			name:    "month too small",
			flight:  FlightRequest{Carrier: "Grupo LATAM", FlightType: "N", Month: 0},
			wantErr: "MES",
		},
		{
			name:    "month too large",
			flight:  FlightRequest{Carrier: "Grupo LATAM", FlightType: "N", Month: 13},
			wantErr: "MES",
		},
		{
			name:    "bad flight type",
			flight:  FlightRequest{Carrier: "Grupo LATAM", FlightType: "X", Month: 3},
			wantErr: "TIPOVUELO",
		},
		{
			name:    "unknown carrier",
			flight:  FlightRequest{Carrier: "Imaginary Air", FlightType: "N", Month: 3},
			wantErr: "OPERA",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidateFlight(tc.flight)
			if tc.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tc.wantErr) {
				t.Fatalf("error %q does not name field %s", err, tc.wantErr)
			}
		})
	}
}
