package domain

// StaffCategory enumerates role tiers.
type StaffCategory string

const (
	CategoryDiscordSupport     StaffCategory = "Discord Support"
	CategoryCouncilman         StaffCategory = "Councilman"
	CategoryChairman           StaffCategory = "Chairman"
	CategoryCommissioner       StaffCategory = "Commissioner"
	CategoryLieutenantGovernor StaffCategory = "Lieutenant Governor"
	CategoryCommunityManager   StaffCategory = "Community Manager"
	CategoryGovernor           StaffCategory = "Governor"
)

// StaffCategories lists every category in display order.
var StaffCategories = []StaffCategory{
	CategoryDiscordSupport,
	CategoryCouncilman,
	CategoryChairman,
	CategoryCommissioner,
	CategoryLieutenantGovernor,
	CategoryCommunityManager,
	CategoryGovernor,
}

// InteractionRanks lists, highest first, the categories whose members may be
// credited with a moderator interaction.
var InteractionRanks = []StaffCategory{
	CategoryGovernor,
	CategoryCommunityManager,
	CategoryLieutenantGovernor,
	CategoryCommissioner,
	CategoryChairman,
	CategoryCouncilman,
}

// ParseStaffCategory matches s against the known categories.
func ParseStaffCategory(s string) (StaffCategory, bool) {
	for _, c := range StaffCategories {
		if string(c) == s {
			return c, true
		}
	}
	return "", false
}

// Rank returns the position of c in InteractionRanks, or -1 when members of
// c may not log interactions.
func (c StaffCategory) Rank() int {
	for i, r := range InteractionRanks {
		if r == c {
			return i
		}
	}
	return -1
}

// InteractionEligible reports whether members of c may log interactions.
func (c StaffCategory) InteractionEligible() bool {
	return c.Rank() >= 0
}

// StaffMember is a named staff entry with its role category.
type StaffMember struct {
	Name     string        `gorm:"column:name;primaryKey"`
	Category StaffCategory `gorm:"column:category"`
}

// TableName implements schema.Tabler.
func (StaffMember) TableName() string { return "staff" }
