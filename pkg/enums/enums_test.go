package enums

import "testing"

func TestSubscriptionStatusRoundTrip(t *testing.T) {
	for _, status := range validSubscriptionStatuses {
		parsed, err := ParseSubscriptionStatus(status.String())
		if err != nil {
			t.Fatalf("parse %q: %v", status, err)
		}
		if parsed != status {
			t.Fatalf("expected %q, got %q", status, parsed)
		}
		if !parsed.IsValid() {
			t.Fatalf("%q should be valid", parsed)
		}
	}

	if _, err := ParseSubscriptionStatus("ACTIVE"); err == nil {
		t.Fatalf("statuses are case sensitive, parse should fail")
	}
	if SubscriptionStatus("gone").IsValid() {
		t.Fatalf("unknown status should be invalid")
	}
}

func TestPricingTypeParse(t *testing.T) {
	if _, err := ParsePricingType("recurring"); err != nil {
		t.Fatalf("recurring should parse: %v", err)
	}
	if _, err := ParsePricingType("subscription"); err == nil {
		t.Fatalf("unknown pricing type should fail")
	}
}

func TestPricingIntervalParse(t *testing.T) {
	for _, raw := range []string{"day", "week", "month", "year"} {
		if _, err := ParsePricingInterval(raw); err != nil {
			t.Fatalf("%q should parse: %v", raw, err)
		}
	}
	if _, err := ParsePricingInterval("quarter"); err == nil {
		t.Fatalf("unknown interval should fail")
	}
}
