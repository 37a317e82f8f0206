package pagination

import "testing"

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   Params
		want Params
	}{
		{"zero values", Params{}, Params{Limit: DefaultLimit, Offset: 0}},
		{"negative", Params{Limit: -5, Offset: -10}, Params{Limit: DefaultLimit, Offset: 0}},
		{"above max", Params{Limit: 5000, Offset: 40}, Params{Limit: MaxLimit, Offset: 40}},
		{"in range", Params{Limit: 50, Offset: 100}, Params{Limit: 50, Offset: 100}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.in.Normalize(); got != tc.want {
				t.Fatalf("Normalize(%+v) = %+v, want %+v", tc.in, got, tc.want)
			}
		})
	}
}
