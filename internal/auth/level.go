package auth

// Level is an operator permission level. Levels form a strict total order:
// support < manager < admin. There is no capability bit model.
type Level int

const (
	// LevelSupport can view records and update participation and
	// maintenance data.
	LevelSupport Level = 1
	// LevelManager can create and update non-vital records and manage
	// account listings.
	LevelManager Level = 2
	// LevelAdmin can create accounts and delete vital records.
	LevelAdmin Level = 3
)

// ValidLevel reports whether n is one of the three defined levels.
func ValidLevel(n int) bool {
	return n >= int(LevelSupport) && n <= int(LevelAdmin)
}

// IsAdmin reports whether l is the admin tier.
func (l Level) IsAdmin() bool { return l == LevelAdmin }

// IsManagerOrAbove reports whether l is manager or admin.
func (l Level) IsManagerOrAbove() bool { return l >= LevelManager }

// IsSupportOrAbove reports whether l is any authenticated tier.
func (l Level) IsSupportOrAbove() bool { return l >= LevelSupport }

// Name returns the human-readable level name.
func (l Level) Name() string {
	switch l {
	case LevelAdmin:
		return "admin"
	case LevelManager:
		return "manager"
	case LevelSupport:
		return "support"
	default:
		return "unknown"
	}
}

// Capability names a protected operation class. Every route declares the
// capability it needs; the required level per capability lives in one
// table rather than scattered integer comparisons.
type Capability string

const (
	// CapView covers reading any record.
	CapView Capability = "view"
	// CapWriteRecords covers creating and updating non-vital records.
	CapWriteRecords Capability = "write_records"
	// CapWriteFieldData covers participation and maintenance writes, open
	// to every authenticated operator.
	CapWriteFieldData Capability = "write_field_data"
	// CapManageAccounts covers listing and viewing operator accounts.
	CapManageAccounts Capability = "manage_accounts"
	// CapCreateAccounts covers creating operator accounts.
	CapCreateAccounts Capability = "create_accounts"
	// CapDeleteVital covers deleting vital records (caregivers, elders,
	// community centers) whose removal has cascading real-world impact.
	CapDeleteVital Capability = "delete_vital"
)

var requiredLevel = map[Capability]Level{
	CapView:           LevelSupport,
	CapWriteFieldData: LevelSupport,
	CapWriteRecords:   LevelManager,
	CapManageAccounts: LevelManager,
	CapCreateAccounts: LevelAdmin,
	CapDeleteVital:    LevelAdmin,
}

// Required returns the minimum level for a capability. Unknown
// capabilities require admin, failing closed.
func Required(c Capability) Level {
	if lvl, ok := requiredLevel[c]; ok {
		return lvl
	}
	return LevelAdmin
}

// Allowed reports whether an operator at level l may exercise capability c.
func (l Level) Allowed(c Capability) bool {
	return l >= Required(c)
}
