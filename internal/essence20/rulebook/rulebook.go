// Package rulebook loads the static game-rule tables and indexes them by
// key. Tables are immutable after load; the calculator and exporters only
// read them. Lookups return the zero value for unknown keys so corrupt or
// stale references degrade instead of failing.
package rulebook

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"path"

	"github.com/louisbranch/morphsheet/internal/essence20"
	apperrors "github.com/louisbranch/morphsheet/internal/platform/errors"
)

// SystemID identifies the ruleset the content payloads belong to.
const SystemID = "essence20"

// Origin is a character's background species or circumstance.
type Origin struct {
	Key            string
	Name           string
	Description    string
	StartingHealth int
	EssenceChoices []essence20.Essence
}

// RolePerk is a level-gated perk granted by a role.
type RolePerk struct {
	Level   int
	Name    string
	Summary string
}

// Role is the class-like ranger archetype.
type Role struct {
	Key                string
	Name               string
	Description        string
	EssenceAdjustments map[essence20.Essence]int
	StartingSkills     map[string]int
	SkillChoices       []string
	ArmorTier          essence20.ArmorTier
	ArmorBonus         int
	PowerGrowth        essence20.GrowthClass
	Perks              []RolePerk
}

// HangUp is a drawback option carried by non-first influences.
type HangUp struct {
	Key     string
	Name    string
	Summary string
}

// Influence is a background option granting a perk and, for non-first
// picks, a hang-up.
type Influence struct {
	Key         string
	Name        string
	PerkName    string
	PerkSummary string
	Specialties []string
	HangUps     []HangUp
	Bonds       []string
}

// Perk is a general perk selectable outside role and influence grants.
// GrantsArmorTier marks armor-shell perks that upgrade armor training.
type Perk struct {
	Key             string
	Name            string
	Summary         string
	Prerequisite    string
	GrantsArmorTier essence20.ArmorTier
}

// GridPower is a selectable morphin-grid ability.
type GridPower struct {
	Key          string
	Name         string
	Summary      string
	Prerequisite string
}

// ZordFrame is a companion zord chassis with base stats and growth slots.
type ZordFrame struct {
	Key              string
	Name             string
	TeamType         string
	Description      string
	BaseHealth       int
	BasePower        int
	BaseSpeed        int
	BaseArmor        int
	SpectrumFeatures []string
	Features         []string
	GrowthSlots      int
}

// Gear slot kinds.
const (
	SlotSidearm = "sidearm"
	SlotMelee   = "melee"
	SlotTool    = "tool"
)

// GearItem is an equipment catalogue entry.
type GearItem struct {
	Key       string
	Name      string
	Slot      string
	DamageDie string
	Notes     string
}

// Rulebook is the loaded, indexed rule-table set.
type Rulebook struct {
	origins    map[string]Origin
	roles      map[string]Role
	influences map[string]Influence
	perks      map[string]Perk
	gridPowers map[string]GridPower
	zordFrames map[string]ZordFrame
	gear       map[string]GearItem

	originOrder    []string
	roleOrder      []string
	influenceOrder []string
	perkOrder      []string
	gridPowerOrder []string
	zordFrameOrder []string
	gearOrder      []string
}

// Load reads every content payload under root in contentFS and validates
// cross-references. A load failure means the shipped content is broken and
// aborts startup.
func Load(contentFS fs.FS, root string) (*Rulebook, error) {
	rb := &Rulebook{
		origins:    make(map[string]Origin),
		roles:      make(map[string]Role),
		influences: make(map[string]Influence),
		perks:      make(map[string]Perk),
		gridPowers: make(map[string]GridPower),
		zordFrames: make(map[string]ZordFrame),
		gear:       make(map[string]GearItem),
	}

	if err := rb.loadOrigins(contentFS, path.Join(root, "origins.json")); err != nil {
		return nil, err
	}
	if err := rb.loadRoles(contentFS, path.Join(root, "roles.json")); err != nil {
		return nil, err
	}
	if err := rb.loadInfluences(contentFS, path.Join(root, "influences.json")); err != nil {
		return nil, err
	}
	if err := rb.loadPerks(contentFS, path.Join(root, "perks.json")); err != nil {
		return nil, err
	}
	if err := rb.loadGridPowers(contentFS, path.Join(root, "grid_powers.json")); err != nil {
		return nil, err
	}
	if err := rb.loadZordFrames(contentFS, path.Join(root, "zord_frames.json")); err != nil {
		return nil, err
	}
	if err := rb.loadGear(contentFS, path.Join(root, "gear.json")); err != nil {
		return nil, err
	}

	if err := rb.validate(); err != nil {
		return nil, err
	}
	return rb, nil
}

// Origin resolves an origin by key.
func (rb *Rulebook) Origin(key string) (Origin, bool) {
	o, ok := rb.origins[key]
	return o, ok
}

// Origins lists every origin in catalogue order.
func (rb *Rulebook) Origins() []Origin {
	out := make([]Origin, 0, len(rb.originOrder))
	for _, key := range rb.originOrder {
		out = append(out, rb.origins[key])
	}
	return out
}

// Role resolves a role by key.
func (rb *Rulebook) Role(key string) (Role, bool) {
	r, ok := rb.roles[key]
	return r, ok
}

// Roles lists every role in catalogue order.
func (rb *Rulebook) Roles() []Role {
	out := make([]Role, 0, len(rb.roleOrder))
	for _, key := range rb.roleOrder {
		out = append(out, rb.roles[key])
	}
	return out
}

// Influence resolves an influence by key.
func (rb *Rulebook) Influence(key string) (Influence, bool) {
	i, ok := rb.influences[key]
	return i, ok
}

// Influences lists every influence in catalogue order.
func (rb *Rulebook) Influences() []Influence {
	out := make([]Influence, 0, len(rb.influenceOrder))
	for _, key := range rb.influenceOrder {
		out = append(out, rb.influences[key])
	}
	return out
}

// Perk resolves a general perk by key.
func (rb *Rulebook) Perk(key string) (Perk, bool) {
	p, ok := rb.perks[key]
	return p, ok
}

// Perks lists every general perk in catalogue order.
func (rb *Rulebook) Perks() []Perk {
	out := make([]Perk, 0, len(rb.perkOrder))
	for _, key := range rb.perkOrder {
		out = append(out, rb.perks[key])
	}
	return out
}

// GridPower resolves a grid power by key.
func (rb *Rulebook) GridPower(key string) (GridPower, bool) {
	g, ok := rb.gridPowers[key]
	return g, ok
}

// GridPowers lists every grid power in catalogue order.
func (rb *Rulebook) GridPowers() []GridPower {
	out := make([]GridPower, 0, len(rb.gridPowerOrder))
	for _, key := range rb.gridPowerOrder {
		out = append(out, rb.gridPowers[key])
	}
	return out
}

// ZordFrame resolves a zord frame by key.
func (rb *Rulebook) ZordFrame(key string) (ZordFrame, bool) {
	z, ok := rb.zordFrames[key]
	return z, ok
}

// ZordFrames lists every zord frame in catalogue order.
func (rb *Rulebook) ZordFrames() []ZordFrame {
	out := make([]ZordFrame, 0, len(rb.zordFrameOrder))
	for _, key := range rb.zordFrameOrder {
		out = append(out, rb.zordFrames[key])
	}
	return out
}

// Gear resolves a gear item by key.
func (rb *Rulebook) Gear(key string) (GearItem, bool) {
	g, ok := rb.gear[key]
	return g, ok
}

// GearItems lists every gear item in catalogue order.
func (rb *Rulebook) GearItems() []GearItem {
	out := make([]GearItem, 0, len(rb.gearOrder))
	for _, key := range rb.gearOrder {
		out = append(out, rb.gear[key])
	}
	return out
}

func (rb *Rulebook) loadOrigins(contentFS fs.FS, name string) error {
	var payload originPayload
	if err := decodePayload(contentFS, name, &payload); err != nil {
		return err
	}
	for _, rec := range payload.Items {
		if _, exists := rb.origins[rec.Key]; exists {
			return duplicateKey(name, rec.Key)
		}
		origin := Origin{
			Key:            rec.Key,
			Name:           rec.Name,
			Description:    rec.Description,
			StartingHealth: rec.StartingHealth,
		}
		for _, raw := range rec.EssenceChoices {
			essence, ok := essence20.ParseEssence(raw)
			if !ok {
				return danglingRef(name, rec.Key, "essence", raw)
			}
			origin.EssenceChoices = append(origin.EssenceChoices, essence)
		}
		rb.origins[rec.Key] = origin
		rb.originOrder = append(rb.originOrder, rec.Key)
	}
	return nil
}

func (rb *Rulebook) loadRoles(contentFS fs.FS, name string) error {
	var payload rolePayload
	if err := decodePayload(contentFS, name, &payload); err != nil {
		return err
	}
	for _, rec := range payload.Items {
		if _, exists := rb.roles[rec.Key]; exists {
			return duplicateKey(name, rec.Key)
		}
		role := Role{
			Key:                rec.Key,
			Name:               rec.Name,
			Description:        rec.Description,
			EssenceAdjustments: make(map[essence20.Essence]int, len(rec.EssenceAdjustments)),
			StartingSkills:     make(map[string]int, len(rec.StartingSkills)),
			ArmorTier:          essence20.ArmorTier(rec.ArmorTier),
			ArmorBonus:         rec.ArmorBonus,
			PowerGrowth:        essence20.GrowthClass(rec.PowerGrowth),
		}
		for raw, adj := range rec.EssenceAdjustments {
			essence, ok := essence20.ParseEssence(raw)
			if !ok {
				return danglingRef(name, rec.Key, "essence", raw)
			}
			role.EssenceAdjustments[essence] = adj
		}
		for skill, ranks := range rec.StartingSkills {
			if _, ok := essence20.SkillByKey(skill); !ok {
				return danglingRef(name, rec.Key, "skill", skill)
			}
			role.StartingSkills[skill] = ranks
		}
		for _, skill := range rec.SkillChoices {
			if _, ok := essence20.SkillByKey(skill); !ok {
				return danglingRef(name, rec.Key, "skill", skill)
			}
			role.SkillChoices = append(role.SkillChoices, skill)
		}
		for _, perk := range rec.Perks {
			role.Perks = append(role.Perks, RolePerk(perk))
		}
		rb.roles[rec.Key] = role
		rb.roleOrder = append(rb.roleOrder, rec.Key)
	}
	return nil
}

func (rb *Rulebook) loadInfluences(contentFS fs.FS, name string) error {
	var payload influencePayload
	if err := decodePayload(contentFS, name, &payload); err != nil {
		return err
	}
	for _, rec := range payload.Items {
		if _, exists := rb.influences[rec.Key]; exists {
			return duplicateKey(name, rec.Key)
		}
		influence := Influence{
			Key:         rec.Key,
			Name:        rec.Name,
			PerkName:    rec.PerkName,
			PerkSummary: rec.PerkSummary,
			Specialties: rec.Specialties,
			Bonds:       rec.Bonds,
		}
		for _, h := range rec.HangUps {
			influence.HangUps = append(influence.HangUps, HangUp(h))
		}
		rb.influences[rec.Key] = influence
		rb.influenceOrder = append(rb.influenceOrder, rec.Key)
	}
	return nil
}

func (rb *Rulebook) loadPerks(contentFS fs.FS, name string) error {
	var payload perkPayload
	if err := decodePayload(contentFS, name, &payload); err != nil {
		return err
	}
	for _, rec := range payload.Items {
		if _, exists := rb.perks[rec.Key]; exists {
			return duplicateKey(name, rec.Key)
		}
		rb.perks[rec.Key] = Perk{
			Key:             rec.Key,
			Name:            rec.Name,
			Summary:         rec.Summary,
			Prerequisite:    rec.Prerequisite,
			GrantsArmorTier: essence20.ArmorTier(rec.GrantsArmorTier),
		}
		rb.perkOrder = append(rb.perkOrder, rec.Key)
	}
	return nil
}

func (rb *Rulebook) loadGridPowers(contentFS fs.FS, name string) error {
	var payload gridPowerPayload
	if err := decodePayload(contentFS, name, &payload); err != nil {
		return err
	}
	for _, rec := range payload.Items {
		if _, exists := rb.gridPowers[rec.Key]; exists {
			return duplicateKey(name, rec.Key)
		}
		rb.gridPowers[rec.Key] = GridPower(rec)
		rb.gridPowerOrder = append(rb.gridPowerOrder, rec.Key)
	}
	return nil
}

func (rb *Rulebook) loadZordFrames(contentFS fs.FS, name string) error {
	var payload zordFramePayload
	if err := decodePayload(contentFS, name, &payload); err != nil {
		return err
	}
	for _, rec := range payload.Items {
		if _, exists := rb.zordFrames[rec.Key]; exists {
			return duplicateKey(name, rec.Key)
		}
		rb.zordFrames[rec.Key] = ZordFrame{
			Key:              rec.Key,
			Name:             rec.Name,
			TeamType:         rec.TeamType,
			Description:      rec.Description,
			BaseHealth:       rec.BaseHealth,
			BasePower:        rec.BasePower,
			BaseSpeed:        rec.BaseSpeed,
			BaseArmor:        rec.BaseArmor,
			SpectrumFeatures: rec.SpectrumFeatures,
			Features:         rec.Features,
			GrowthSlots:      rec.GrowthSlots,
		}
		rb.zordFrameOrder = append(rb.zordFrameOrder, rec.Key)
	}
	return nil
}

func (rb *Rulebook) loadGear(contentFS fs.FS, name string) error {
	var payload gearPayload
	if err := decodePayload(contentFS, name, &payload); err != nil {
		return err
	}
	for _, rec := range payload.Items {
		if _, exists := rb.gear[rec.Key]; exists {
			return duplicateKey(name, rec.Key)
		}
		rb.gear[rec.Key] = GearItem(rec)
		rb.gearOrder = append(rb.gearOrder, rec.Key)
	}
	return nil
}

// validate checks cross-references after every table is loaded.
func (rb *Rulebook) validate() error {
	for _, role := range rb.roles {
		if essence20.ArmorTierRank(role.ArmorTier) == 0 && role.ArmorTier != essence20.ArmorNone {
			return danglingRef("roles.json", role.Key, "armor tier", string(role.ArmorTier))
		}
		switch role.PowerGrowth {
		case essence20.GrowthSlow, essence20.GrowthModerate, essence20.GrowthFast:
		default:
			return danglingRef("roles.json", role.Key, "power growth", string(role.PowerGrowth))
		}
	}
	for _, influence := range rb.influences {
		if len(influence.HangUps) == 0 {
			return apperrors.WithMetadata(apperrors.CodeRulebookLoadFailed,
				fmt.Sprintf("influence %q has no hang-up options", influence.Key),
				map[string]string{"Key": influence.Key})
		}
		if len(influence.Bonds) == 0 {
			return apperrors.WithMetadata(apperrors.CodeRulebookLoadFailed,
				fmt.Sprintf("influence %q has no bond options", influence.Key),
				map[string]string{"Key": influence.Key})
		}
	}
	for _, perk := range rb.perks {
		if perk.GrantsArmorTier == "" {
			continue
		}
		if essence20.ArmorTierRank(perk.GrantsArmorTier) == 0 {
			return danglingRef("perks.json", perk.Key, "armor tier", string(perk.GrantsArmorTier))
		}
	}
	return nil
}

func decodePayload(contentFS fs.FS, name string, target any) error {
	data, err := fs.ReadFile(contentFS, name)
	if err != nil {
		return apperrors.Wrap(apperrors.CodeRulebookLoadFailed, fmt.Sprintf("read content file %s", name), err)
	}
	if err := json.Unmarshal(data, target); err != nil {
		return apperrors.Wrap(apperrors.CodeRulebookLoadFailed, fmt.Sprintf("decode content file %s", name), err)
	}
	return nil
}

func duplicateKey(file, key string) error {
	return apperrors.WithMetadata(apperrors.CodeRulebookDuplicate,
		fmt.Sprintf("duplicate key %q in %s", key, file),
		map[string]string{"Key": key, "File": file})
}

func danglingRef(file, key, kind, value string) error {
	return apperrors.WithMetadata(apperrors.CodeRulebookDangling,
		fmt.Sprintf("%s %q references unknown %s %q", file, key, kind, value),
		map[string]string{"Key": key, "File": file, "Kind": kind, "Value": value})
}
