package rulebook

type originPayload struct {
	SystemID      string         `json:"system_id"`
	SystemVersion string         `json:"system_version"`
	Source        string         `json:"source"`
	Locale        string         `json:"locale"`
	Items         []originRecord `json:"items"`
}

type originRecord struct {
	Key            string   `json:"key"`
	Name           string   `json:"name"`
	Description    string   `json:"description"`
	StartingHealth int      `json:"starting_health"`
	EssenceChoices []string `json:"essence_choices"`
}

type rolePayload struct {
	SystemID      string       `json:"system_id"`
	SystemVersion string       `json:"system_version"`
	Source        string       `json:"source"`
	Locale        string       `json:"locale"`
	Items         []roleRecord `json:"items"`
}

type roleRecord struct {
	Key                string           `json:"key"`
	Name               string           `json:"name"`
	Description        string           `json:"description"`
	EssenceAdjustments map[string]int   `json:"essence_adjustments"`
	StartingSkills     map[string]int   `json:"starting_skills"`
	SkillChoices       []string         `json:"skill_choices"`
	ArmorTier          string           `json:"armor_tier"`
	ArmorBonus         int              `json:"armor_bonus"`
	PowerGrowth        string           `json:"power_growth"`
	Perks              []rolePerkRecord `json:"perks"`
}

type rolePerkRecord struct {
	Level   int    `json:"level"`
	Name    string `json:"name"`
	Summary string `json:"summary"`
}

type influencePayload struct {
	SystemID      string            `json:"system_id"`
	SystemVersion string            `json:"system_version"`
	Source        string            `json:"source"`
	Locale        string            `json:"locale"`
	Items         []influenceRecord `json:"items"`
}

type influenceRecord struct {
	Key         string         `json:"key"`
	Name        string         `json:"name"`
	PerkName    string         `json:"perk_name"`
	PerkSummary string         `json:"perk_summary"`
	Specialties []string       `json:"specialties"`
	HangUps     []hangUpRecord `json:"hang_ups"`
	Bonds       []string       `json:"bonds"`
}

type hangUpRecord struct {
	Key     string `json:"key"`
	Name    string `json:"name"`
	Summary string `json:"summary"`
}

type perkPayload struct {
	SystemID      string       `json:"system_id"`
	SystemVersion string       `json:"system_version"`
	Source        string       `json:"source"`
	Locale        string       `json:"locale"`
	Items         []perkRecord `json:"items"`
}

type perkRecord struct {
	Key             string `json:"key"`
	Name            string `json:"name"`
	Summary         string `json:"summary"`
	Prerequisite    string `json:"prerequisite"`
	GrantsArmorTier string `json:"grants_armor_tier"`
}

type gridPowerPayload struct {
	SystemID      string            `json:"system_id"`
	SystemVersion string            `json:"system_version"`
	Source        string            `json:"source"`
	Locale        string            `json:"locale"`
	Items         []gridPowerRecord `json:"items"`
}

type gridPowerRecord struct {
	Key          string `json:"key"`
	Name         string `json:"name"`
	Summary      string `json:"summary"`
	Prerequisite string `json:"prerequisite"`
}

type zordFramePayload struct {
	SystemID      string            `json:"system_id"`
	SystemVersion string            `json:"system_version"`
	Source        string            `json:"source"`
	Locale        string            `json:"locale"`
	Items         []zordFrameRecord `json:"items"`
}

type zordFrameRecord struct {
	Key              string   `json:"key"`
	Name             string   `json:"name"`
	TeamType         string   `json:"team_type"`
	Description      string   `json:"description"`
	BaseHealth       int      `json:"base_health"`
	BasePower        int      `json:"base_power"`
	BaseSpeed        int      `json:"base_speed"`
	BaseArmor        int      `json:"base_armor"`
	SpectrumFeatures []string `json:"spectrum_features"`
	Features         []string `json:"features"`
	GrowthSlots      int      `json:"growth_slots"`
}

type gearPayload struct {
	SystemID      string       `json:"system_id"`
	SystemVersion string       `json:"system_version"`
	Source        string       `json:"source"`
	Locale        string       `json:"locale"`
	Items         []gearRecord `json:"items"`
}

type gearRecord struct {
	Key       string `json:"key"`
	Name      string `json:"name"`
	Slot      string `json:"slot"`
	DamageDie string `json:"damage_die"`
	Notes     string `json:"notes"`
}
