package catalog

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaultsWhenPathEmpty(t *testing.T) {
	c, err := Load("")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if _, ok := c.ServiceType("standard"); !ok {
		t.Error("expected default catalog to contain standard service type")
	}
	if _, ok := c.AddOn("inside_oven"); !ok {
		t.Error("expected default catalog to contain inside_oven add-on")
	}
}

func TestLoadFromFile(t *testing.T) {
	content := `{
		"service_types": [{"id": "standard", "rate_cents_per_sqft": 12}],
		"add_ons": [{"id": "laundry", "flat_price_cents": 1500}],
		"metro_multipliers": {"Portland": 1.15}
	}`
	path := filepath.Join(t.TempDir(), "catalog.json")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write temp catalog: %v", err)
	}

	c, err := Load(path)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	st, ok := c.ServiceType("standard")
	if !ok {
		t.Fatal("expected standard service type")
	}
	if st.RateCentsPerSqft != 12 {
		t.Errorf("expected rate 12, got %d", st.RateCentsPerSqft)
	}

	if _, ok := c.ServiceType("deep"); ok {
		t.Error("file catalog should not contain defaults")
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load("/nonexistent/catalog.json"); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestMetroMultiplierCaseInsensitive(t *testing.T) {
	c := Defaults()

	cases := []struct {
		city string
		want float64
	}{
		{"San Francisco", 1.35},
		{"san francisco", 1.35},
		{"SAN FRANCISCO", 1.35},
		{"  Seattle  ", 1.20},
		{"Nowhereville", 1.0},
		{"", 1.0},
	}

	for _, tc := range cases {
		if got := c.MetroMultiplier(tc.city); got != tc.want {
			t.Errorf("MetroMultiplier(%q) = %v, want %v", tc.city, got, tc.want)
		}
	}
}
