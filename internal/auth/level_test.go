package auth

import "testing"

func TestLevelPredicates(t *testing.T) {
	if !LevelAdmin.IsAdmin() || LevelManager.IsAdmin() {
		t.Error("IsAdmin misclassifies levels")
	}
	if !LevelAdmin.IsManagerOrAbove() || !LevelManager.IsManagerOrAbove() || LevelSupport.IsManagerOrAbove() {
		t.Error("IsManagerOrAbove misclassifies levels")
	}
	if !LevelSupport.IsSupportOrAbove() || Level(0).IsSupportOrAbove() {
		t.Error("IsSupportOrAbove misclassifies levels")
	}
}

func TestValidLevel(t *testing.T) {
	for n, want := range map[int]bool{0: false, 1: true, 2: true, 3: true, 4: false, -1: false} {
		if got := ValidLevel(n); got != want {
			t.Errorf("ValidLevel(%d) = %v; want %v", n, got, want)
		}
	}
}

func TestLevelName(t *testing.T) {
	for level, want := range map[Level]string{
		LevelSupport: "support",
		LevelManager: "manager",
		LevelAdmin:   "admin",
		Level(9):     "unknown",
	} {
		if got := level.Name(); got != want {
			t.Errorf("Level(%d).Name() = %q; want %q", level, got, want)
		}
	}
}

func TestAllowed(t *testing.T) {
	tests := []struct {
		level Level
		cap   Capability
		want  bool
	}{
		{LevelSupport, CapView, true},
		{LevelSupport, CapWriteFieldData, true},
		{LevelSupport, CapWriteRecords, false},
		{LevelManager, CapWriteRecords, true},
		{LevelManager, CapManageAccounts, true},
		{LevelManager, CapCreateAccounts, false},
		{LevelManager, CapDeleteVital, false},
		{LevelAdmin, CapCreateAccounts, true},
		{LevelAdmin, CapDeleteVital, true},
	}

	for _, tt := range tests {
		if got := tt.level.Allowed(tt.cap); got != tt.want {
			t.Errorf("Level(%d).Allowed(%q) = %v; want %v", tt.level, tt.cap, got, tt.want)
		}
	}
}

// Unknown capabilities fail closed: only admins pass.
func TestRequired_UnknownCapability(t *testing.T) {
	if Required(Capability("no-such-cap")) != LevelAdmin {
		t.Error("unknown capability did not require admin")
	}
}
