package market

import "testing"

func TestLookupKnownPair(t *testing.T) {
	t.Parallel()

	table := NewTable()
	in, ok := table.Lookup("전자기기", "강남구")
	if !ok {
		t.Fatal("expected insight")
	}
	if in.AveragePrice != 850000 || in.Trend != "하락세" {
		t.Fatalf("unexpected insight: %+v", in)
	}
}

func TestLookupFallsBackToDefault(t *testing.T) {
	t.Parallel()

	table := NewTable()
	in, ok := table.Lookup("도서", "부산")
	if !ok {
		t.Fatal("expected default insight")
	}
	if in.AveragePrice != 500000 {
		t.Fatalf("expected default snapshot, got %+v", in)
	}
}

func TestLookupIsStable(t *testing.T) {
	t.Parallel()

	table := NewTable()
	first, _ := table.Lookup("가구", "서초구")
	second, _ := table.Lookup("가구", "서초구")
	if first != second {
		t.Fatalf("lookups diverged: %+v vs %+v", first, second)
	}
}
