package geocode

import "testing"

func TestNearestFindsClosestCity(t *testing.T) {
	city, err := Nearest(40.70, -74.00) // near New York City
	if err != nil {
		t.Fatalf("Nearest: %v", err)
	}
	if city.Name != "New York City" {
		t.Fatalf("expected New York City, got %q", city.Name)
	}
}

func TestFormatFieldOrder(t *testing.T) {
	c := City{Name: "A", Admin1: "B", Admin2: "C", Country: "D"}
	if got, want := c.Format(), "A B C D"; got != want {
		t.Fatalf("Format: got %q want %q", got, want)
	}
}
