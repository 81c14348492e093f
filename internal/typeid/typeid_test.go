package typeid

import (
	"strings"
	"testing"
)

func TestNewIDsCarryPrefix(t *testing.T) {
	cases := []struct {
		prefix string
		gen    func() string
	}{
		{PrefixROI, NewROIID},
		{PrefixSet, NewSetID},
		{PrefixSession, NewSessionID},
		{PrefixAsset, NewAssetID},
		{PrefixUser, NewUserID},
	}
	for _, tc := range cases {
		id := tc.gen()
		if !strings.HasPrefix(id, tc.prefix+"_") {
			t.Fatalf("id %q missing prefix %q", id, tc.prefix)
		}
		if err := Validate(id, tc.prefix); err != nil {
			t.Fatalf("validate %q: %v", id, err)
		}
	}
}

func TestValidateRejectsWrongPrefix(t *testing.T) {
	id := NewROIID()
	if err := Validate(id, PrefixSet); err == nil {
		t.Fatalf("expected prefix mismatch error for %q", id)
	}
	if err := Validate("not-an-id", PrefixROI); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestIDsAreUnique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		id := NewROIID()
		if seen[id] {
			t.Fatalf("duplicate id %q", id)
		}
		seen[id] = true
	}
}
