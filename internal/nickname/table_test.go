package nickname

import "testing"

const testYAML = `
nicknames:
  GREGORY: [GREG]
  ROBERT: [BOB, BOBBY, ROB]
  WILLIAM: [BILL, BILLY, WILL]
`

func TestParse(t *testing.T) {
	table, err := Parse([]byte(testYAML))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if table.Len() == 0 {
		t.Fatal("parsed table is empty")
	}
	if got := table.Canonical("BOBBY"); got != "ROBERT" {
		t.Errorf("Canonical(BOBBY) = %q, expected ROBERT", got)
	}
	if got := table.Canonical("UNKNOWN"); got != "UNKNOWN" {
		t.Errorf("Canonical(UNKNOWN) = %q, expected passthrough", got)
	}
}

func TestParse_Empty(t *testing.T) {
	if _, err := Parse([]byte("nicknames: {}")); err == nil {
		t.Error("expected error for empty table")
	}
	if _, err := Parse([]byte(":::not yaml")); err == nil {
		t.Error("expected error for malformed yaml")
	}
}

func TestEquivalent(t *testing.T) {
	table, err := Parse([]byte(testYAML))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	testCases := []struct {
		name     string
		a, b     string
		expected bool
	}{
		{name: "VariantToCanonical", a: "GREG", b: "GREGORY", expected: true},
		{name: "Symmetric", a: "GREGORY", b: "GREG", expected: true},
		{name: "VariantToVariant", a: "BOB", b: "BOBBY", expected: true},
		{name: "Identity", a: "GREGORY", b: "GREGORY", expected: true},
		{name: "UnknownIdentity", a: "ZELDA", b: "ZELDA", expected: true},
		{name: "DifferentCanonicals", a: "GREG", b: "BOB", expected: false},
		{name: "UnknownPair", a: "ZELDA", b: "YVETTE", expected: false},
		{name: "EmptyLeft", a: "", b: "GREG", expected: false},
		{name: "EmptyBoth", a: "", b: "", expected: false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := table.Equivalent(tc.a, tc.b); got != tc.expected {
				t.Errorf("Equivalent(%q, %q) = %v, expected %v", tc.a, tc.b, got, tc.expected)
			}
		})
	}
}

func TestDefault(t *testing.T) {
	table := Default()
	if table.Len() == 0 {
		t.Fatal("embedded table is empty")
	}
	pairs := [][2]string{
		{"GREG", "GREGORY"},
		{"MIKE", "MICHAEL"},
		{"BOB", "ROBERT"},
		{"BILL", "WILLIAM"},
		{"JIM", "JAMES"},
	}
	for _, p := range pairs {
		if !table.Equivalent(p[0], p[1]) {
			t.Errorf("embedded table should relate %s and %s", p[0], p[1])
		}
	}
}
