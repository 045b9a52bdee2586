package domain_test

import (
	"testing"

	"github.com/vladislavdragonenkov/cafe-manager/internal/domain"
)

func TestFiltersValidate(t *testing.T) {
	cases := []struct {
		name    string
		filters domain.Filters
		wantErr bool
	}{
		{
			name: "known keys",
			filters: domain.Filters{
				domain.FilterID:          "order-1",
				domain.FilterTableNumber: 5,
				domain.FilterStatus:      domain.OrderStatusPending,
			},
		},
		{
			name: "nil values allowed",
			filters: domain.Filters{
				domain.FilterTableNumber: 1,
				domain.FilterStatus:      nil,
			},
		},
		{
			name:    "unknown key",
			filters: domain.Filters{"waiter": "ivan"},
			wantErr: true,
		},
		{
			name:    "wrong type for table number",
			filters: domain.Filters{domain.FilterTableNumber: "five"},
			wantErr: true,
		},
		{
			name:    "wrong type for status",
			filters: domain.Filters{domain.FilterStatus: 42},
			wantErr: true,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.filters.Validate()
			if tc.wantErr {
				if !domain.IsConstraintError(err) {
					t.Fatalf("expected ConstraintError, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestFiltersNormalized(t *testing.T) {
	filters := domain.Filters{
		domain.FilterTableNumber: 1,
		domain.FilterStatus:      nil,
	}

	normalized := filters.Normalized()
	if len(normalized) != 1 {
		t.Fatalf("expected one key after normalization, got %d", len(normalized))
	}
	if _, ok := normalized[domain.FilterStatus]; ok {
		t.Fatal("nil-valued key must be dropped in normalized mode")
	}
	// Исходный фильтр не мутирует.
	if _, ok := filters[domain.FilterStatus]; !ok {
		t.Fatal("normalization must not mutate the source filters")
	}
}

func TestFiltersMatches(t *testing.T) {
	order := makeOrder()

	cases := []struct {
		name    string
		filters domain.Filters
		want    bool
	}{
		{name: "empty matches all", filters: domain.Filters{}, want: true},
		{name: "by id", filters: domain.Filters{domain.FilterID: "order-1"}, want: true},
		{name: "by table", filters: domain.Filters{domain.FilterTableNumber: 5}, want: true},
		{name: "by table int64", filters: domain.Filters{domain.FilterTableNumber: int64(5)}, want: true},
		{name: "by status string", filters: domain.Filters{domain.FilterStatus: "pending"}, want: true},
		{
			name: "conjunction",
			filters: domain.Filters{
				domain.FilterTableNumber: 5,
				domain.FilterStatus:      domain.OrderStatusPending,
			},
			want: true,
		},
		{name: "wrong table", filters: domain.Filters{domain.FilterTableNumber: 6}, want: false},
		{name: "wrong status", filters: domain.Filters{domain.FilterStatus: "paid"}, want: false},
		{
			// Явный null-предикат не совпадает ни с чем: поля заказа обязательны.
			name:    "explicit null predicate",
			filters: domain.Filters{domain.FilterStatus: nil},
			want:    false,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.filters.Matches(order); got != tc.want {
				t.Fatalf("expected %v, got %v", tc.want, got)
			}
		})
	}
}
