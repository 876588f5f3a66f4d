package pagination

import "testing"

func TestNormalizeLimit(t *testing.T) {
	cases := []struct {
		name  string
		limit int
		want  int
	}{
		{name: "zero falls back to default", limit: 0, want: DefaultLimit},
		{name: "negative falls back to default", limit: -3, want: DefaultLimit},
		{name: "in range passes through", limit: 40, want: 40},
		{name: "above max is capped", limit: 5000, want: MaxLimit},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := NormalizeLimit(tc.limit); got != tc.want {
				t.Fatalf("NormalizeLimit(%d) = %d, want %d", tc.limit, got, tc.want)
			}
		})
	}
}

func TestNormalize(t *testing.T) {
	got := Params{Limit: -1, Offset: -10}.Normalize()
	if got.Limit != DefaultLimit {
		t.Fatalf("expected default limit, got %d", got.Limit)
	}
	if got.Offset != 0 {
		t.Fatalf("expected offset clamped to 0, got %d", got.Offset)
	}
}

func TestLimitWithBuffer(t *testing.T) {
	if got := LimitWithBuffer(10); got != 11 {
		t.Fatalf("LimitWithBuffer(10) = %d, want 11", got)
	}
}
