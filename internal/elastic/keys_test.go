package elastic

import (
	"bytes"
	"testing"
)

func TestQueueKeyFormat(t *testing.T) {
	k := queueKey("orders.intake", 3, 12)
	if string(k) != "orders.intake/3/000000012" {
		t.Fatalf("key: %q", k)
	}
	k = queueKey("q", 1, MaxEvents-1)
	if string(k) != "q/1/099999999" {
		t.Fatalf("key at ceiling: %q", k)
	}
}

func TestQueueKeyOrderMatchesSequence(t *testing.T) {
	prev := queueKey("q", 7, 0)
	for _, seq := range []int64{1, 9, 10, 99, 100, 12345, MaxEvents - 1} {
		k := queueKey("q", 7, seq)
		if bytes.Compare(prev, k) >= 0 {
			t.Fatalf("order broken: %q !< %q", prev, k)
		}
		prev = k
	}
}

func TestGenerationPrefix(t *testing.T) {
	if p := generationPrefix("orders.intake", 42); p != "orders.intake/42" {
		t.Fatalf("prefix: %q", p)
	}
}

func TestPrefixUpperBound(t *testing.T) {
	cases := []struct {
		prefix string
		want   string
	}{
		{"q/1/", "q/10"},
		{"abc", "abd"},
	}
	for _, c := range cases {
		got := prefixUpperBound([]byte(c.prefix))
		if string(got) != c.want {
			t.Fatalf("upper bound of %q = %q, want %q", c.prefix, got, c.want)
		}
	}
	if got := prefixUpperBound([]byte{0xff, 0xff}); got != nil {
		t.Fatalf("all-0xff prefix has no bound, got %q", got)
	}
	// every key carrying the prefix sorts below the bound
	p := []byte("q/1/")
	ub := prefixUpperBound(p)
	if bytes.Compare(append(append([]byte(nil), p...), []byte("099999999")...), ub) >= 0 {
		t.Fatalf("prefixed key not below bound")
	}
}
