package names

import "testing"

func TestValid(t *testing.T) {
	cases := []struct {
		route string
		want  bool
	}{
		{"hello.world", true},
		{"v1.orders-intake_2", true},
		{"", false},
		{"Hello.World", false},
		{"hello world", false},
		{"hello/world", false},
		{"hello@world", false},
	}
	for _, c := range cases {
		if got := Valid(c.route); got != c.want {
			t.Fatalf("Valid(%q) = %v, want %v", c.route, got, c.want)
		}
	}
}

func TestFilter(t *testing.T) {
	cases := []struct {
		route string
		want  string
	}{
		{"Hello.World", "hello.world"},
		{"hello world", "helloworld"},
		{"v1/orders intake", "v1ordersintake"},
		{"@#$", "invalid.route"},
	}
	for _, c := range cases {
		if got := Filter(c.route); got != c.want {
			t.Fatalf("Filter(%q) = %q, want %q", c.route, got, c.want)
		}
	}
}

func TestSanitizeKeepsValidRoutes(t *testing.T) {
	if got := Sanitize("orders.intake"); got != "orders.intake" {
		t.Fatalf("Sanitize changed a valid route: %q", got)
	}
	if got := Sanitize("Orders.Intake"); got != "orders.intake" {
		t.Fatalf("Sanitize(%q) = %q", "Orders.Intake", got)
	}
}
