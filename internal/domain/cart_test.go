package domain

import "testing"

func TestCartTotalIsDerived(t *testing.T) {
	c := Cart{Lines: []CartLine{
		{Product: Product{PriceCents: 250}, Quantity: 4},
		{Product: Product{PriceCents: 1000}, Quantity: 1},
	}}
	if got := c.TotalCents(); got != 2000 {
		t.Fatalf("expected 2000, got %d", got)
	}
	c.Lines[0].Product.PriceCents = 300
	if got := c.TotalCents(); got != 2200 {
		t.Fatalf("expected total to follow current price, got %d", got)
	}
	if (Cart{}).IsEmpty() != true {
		t.Fatalf("expected empty cart")
	}
}

func TestFormatCents(t *testing.T) {
	if got := FormatCents(1999); got != "19.99" {
		t.Fatalf("unexpected %s", got)
	}
	if got := FormatCents(5); got != "0.05" {
		t.Fatalf("unexpected %s", got)
	}
}

func TestCanMutate(t *testing.T) {
	if !CanMutate(Principal{UserID: "u1"}, "u1") {
		t.Fatalf("owner should mutate")
	}
	if CanMutate(Principal{UserID: "u2"}, "u1") {
		t.Fatalf("stranger should not mutate")
	}
	if !CanMutate(Principal{UserID: "u2", IsSuperuser: true}, "u1") {
		t.Fatalf("superuser should mutate")
	}
	if CanMutate(Principal{}, "") {
		t.Fatalf("anonymous caller should not own unowned resources")
	}
}
