// Package models defines the campaign state shared by the local store, the
// persistence mirror and the remote sync boundary.
package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"
)

// SortMode selects the key used to derive turn order from the encounter
type SortMode string

const (
	SortInitiative SortMode = "initiative"
	SortName       SortMode = "name"
)

// ErrUnknownSortMode is returned when a sort mode string is not recognised
var ErrUnknownSortMode = errors.New("unknown sort mode")

// ParseSortMode validates a sort mode string
func ParseSortMode(s string) (SortMode, error) {
	switch SortMode(strings.ToLower(strings.TrimSpace(s))) {
	case SortInitiative:
		return SortInitiative, nil
	case SortName:
		return SortName, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownSortMode, s)
}

// Valid reports whether m is one of the known sort modes
func (m SortMode) Valid() bool {
	return m == SortInitiative || m == SortName
}

// Toggle returns the other sort mode
func (m SortMode) Toggle() SortMode {
	if m == SortInitiative {
		return SortName
	}
	return SortInitiative
}

// UnmarshalJSON rejects unknown sort modes.
func (m *SortMode) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseSortMode(s)
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// BastionOrder is the order a bastion is currently carrying out
type BastionOrder string

const (
	OrderNone     BastionOrder = ""
	OrderCraft    BastionOrder = "Craft"
	OrderEmpower  BastionOrder = "Empower"
	OrderHarvest  BastionOrder = "Harvest"
	OrderRecruit  BastionOrder = "Recruit"
	OrderResearch BastionOrder = "Research"
	OrderTrade    BastionOrder = "Trade"
	OrderMaintain BastionOrder = "Maintain"
)

// BastionOrders lists the orders a bastion can be issued, in menu order.
var BastionOrders = []BastionOrder{
	OrderCraft,
	OrderEmpower,
	OrderHarvest,
	OrderRecruit,
	OrderResearch,
	OrderTrade,
	OrderMaintain,
}

// ErrUnknownOrder is returned when a bastion order string is not recognised
var ErrUnknownOrder = errors.New("unknown bastion order")

// ParseBastionOrder matches s case-insensitively against the known orders.
// The empty string clears the order.
func ParseBastionOrder(s string) (BastionOrder, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return OrderNone, nil
	}
	for _, o := range BastionOrders {
		if strings.EqualFold(string(o), s) {
			return o, nil
		}
	}
	return OrderNone, fmt.Errorf("%w: %q", ErrUnknownOrder, s)
}

// UnmarshalJSON accepts any casing of a known order. Unknown orders decode as
// OrderNone so a single stale value cannot invalidate a whole document.
func (o *BastionOrder) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseBastionOrder(s)
	if err != nil {
		parsed = OrderNone
	}
	*o = parsed
	return nil
}

// Ability is a limited-use resource tracked on a character
type Ability struct {
	Name string `json:"name"`
	Max  int    `json:"max"`
	Used int    `json:"used"`
}

// Character is one combatant in the encounter roster
type Character struct {
	Name          string    `json:"name"`
	HP            int       `json:"hp"`
	MaxHP         int       `json:"maxHp"`
	Initiative    int       `json:"initiative"`
	InitiativeMod int       `json:"initiativeMod"`
	Status        string    `json:"charStatus"`
	AC            *int      `json:"ac"`
	Abilities     []Ability `json:"abilities"`
}

// Clone returns a deep copy of c
func (c Character) Clone() Character {
	out := c
	out.AC = cloneInt(c.AC)
	out.Abilities = append([]Ability{}, c.Abilities...)
	return out
}

// ClampBounds pulls hp into [0, maxHp] and each ability's uses into
// [0, max]. Negative maxima become zero.
func (c *Character) ClampBounds() {
	c.MaxHP = max(c.MaxHP, 0)
	c.HP = min(max(c.HP, 0), c.MaxHP)
	for i := range c.Abilities {
		a := &c.Abilities[i]
		a.Max = max(a.Max, 0)
		a.Used = min(max(a.Used, 0), a.Max)
	}
}

// Player is a party member with passive scores kept for quick reference
type Player struct {
	Name string `json:"name"`
	PP   *int   `json:"pp"` // passive perception
	PI   *int   `json:"pi"` // passive insight
	AC   *int   `json:"ac"`
}

// Clone returns a deep copy of p
func (p Player) Clone() Player {
	out := p
	out.PP = cloneInt(p.PP)
	out.PI = cloneInt(p.PI)
	out.AC = cloneInt(p.AC)
	return out
}

// PlayerToCharacter derives an independent encounter entry from a player.
// HP and initiative are zeroed and must be filled in by the caller.
func PlayerToCharacter(p Player) Character {
	return Character{
		Name:      p.Name,
		AC:        cloneInt(p.AC),
		Abilities: []Ability{},
	}
}

// DeathSave tracks death saving throws for a downed character
type DeathSave struct {
	Name      string `json:"name"`
	Successes int    `json:"successes"`
	Failures  int    `json:"failures"`
	Stable    bool   `json:"stable"`
}

// DeathSaveKind selects which counter of a DeathSave to adjust
type DeathSaveKind string

const (
	DeathSaveSuccesses DeathSaveKind = "successes"
	DeathSaveFailures  DeathSaveKind = "failures"
)

// MaxDeathSaves is the cap for both death save counters
const MaxDeathSaves = 3

// Link is a bookmarked reference URL
type Link struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

// ErrInvalidLinkURL is returned for link URLs without an http(s) scheme
var ErrInvalidLinkURL = errors.New("link url must start with http:// or https://")

var linkURLPattern = regexp.MustCompile(`(?i)^https?://`)

// ValidateLinkURL rejects empty and non-http(s) link URLs
func ValidateLinkURL(url string) error {
	if strings.TrimSpace(url) == "" || !linkURLPattern.MatchString(url) {
		return ErrInvalidLinkURL
	}
	return nil
}

// Bastion is a player stronghold advanced in 7-day turns
type Bastion struct {
	Name             string       `json:"name"`
	Owner            string       `json:"owner"`
	Facilities       []string     `json:"facilities"`
	CurrentOrder     BastionOrder `json:"currentOrder"`
	TurnDay          int          `json:"turnDay"`
	LastEvent        string       `json:"lastEvent"`
	LastProcessedDay int          `json:"lastProcessedDay"`
	Note             string       `json:"note"`
}

// Clone returns a deep copy of b
func (b Bastion) Clone() Bastion {
	out := b
	out.Facilities = append([]string{}, b.Facilities...)
	return out
}

// BastionTurnDays is the length of one bastion turn in campaign days
const BastionTurnDays = 7

// GameState is the complete syncable campaign aggregate
type GameState struct {
	Encounter        []Character `json:"encounter"`
	Players          []Player    `json:"players"`
	DeathSaves       []DeathSave `json:"deathSaves"`
	Links            []Link      `json:"links"`
	Bastions         []Bastion   `json:"bastions"`
	CurrentDay       int         `json:"currentDay"`
	SortBy           SortMode    `json:"sortBy"`
	DarkMode         bool        `json:"darkMode"`
	CurrentRound     int         `json:"currentRound"`
	CurrentTurnIndex int         `json:"currentTurnIndex"`
}

// NoTurn is the CurrentTurnIndex value when no combatant is active
const NoTurn = -1

// DefaultState returns the all-defaults state used on first run and as the
// fallback for any field that is missing or corrupt.
func DefaultState() GameState {
	return GameState{
		Encounter:        []Character{},
		Players:          []Player{},
		DeathSaves:       []DeathSave{},
		Links:            []Link{},
		Bastions:         []Bastion{},
		SortBy:           SortInitiative,
		CurrentTurnIndex: NoTurn,
	}
}

// Normalize replaces nil collections with empty ones and an invalid sort
// mode with the default, so two equal states always encode identically.
func (s *GameState) Normalize() {
	if s.Encounter == nil {
		s.Encounter = []Character{}
	}
	for i := range s.Encounter {
		if s.Encounter[i].Abilities == nil {
			s.Encounter[i].Abilities = []Ability{}
		}
	}
	if s.Players == nil {
		s.Players = []Player{}
	}
	if s.DeathSaves == nil {
		s.DeathSaves = []DeathSave{}
	}
	if s.Links == nil {
		s.Links = []Link{}
	}
	if s.Bastions == nil {
		s.Bastions = []Bastion{}
	}
	for i := range s.Bastions {
		if s.Bastions[i].Facilities == nil {
			s.Bastions[i].Facilities = []string{}
		}
	}
	if !s.SortBy.Valid() {
		s.SortBy = SortInitiative
	}
}

// ClampBounds enforces the per-entity ranges on a state the caller owns:
// character hp and ability uses, death save counters within
// [0, MaxDeathSaves] and bastion processing days within [0, currentDay].
func (s *GameState) ClampBounds() {
	s.CurrentDay = max(s.CurrentDay, 0)
	for i := range s.Encounter {
		s.Encounter[i].ClampBounds()
	}
	for i := range s.DeathSaves {
		d := &s.DeathSaves[i]
		d.Successes = min(max(d.Successes, 0), MaxDeathSaves)
		d.Failures = min(max(d.Failures, 0), MaxDeathSaves)
	}
	for i := range s.Bastions {
		b := &s.Bastions[i]
		b.LastProcessedDay = min(max(b.LastProcessedDay, 0), s.CurrentDay)
		b.TurnDay = max(b.TurnDay, 0)
	}
}

// Clone returns a deep copy of s. The copy shares no slices or pointers.
func (s GameState) Clone() GameState {
	out := s
	out.Encounter = make([]Character, len(s.Encounter))
	for i, c := range s.Encounter {
		out.Encounter[i] = c.Clone()
	}
	out.Players = make([]Player, len(s.Players))
	for i, p := range s.Players {
		out.Players[i] = p.Clone()
	}
	out.DeathSaves = append([]DeathSave{}, s.DeathSaves...)
	out.Links = append([]Link{}, s.Links...)
	out.Bastions = make([]Bastion, len(s.Bastions))
	for i, b := range s.Bastions {
		out.Bastions[i] = b.Clone()
	}
	return out
}

// IsEmpty reports whether the syncable subset equals the defaults. Turn and
// round pointers are ignored.
func (s GameState) IsEmpty() bool {
	return len(s.Encounter) == 0 &&
		len(s.Players) == 0 &&
		len(s.DeathSaves) == 0 &&
		len(s.Links) == 0 &&
		len(s.Bastions) == 0 &&
		s.CurrentDay == 0 &&
		(s.SortBy == SortInitiative || s.SortBy == "") &&
		!s.DarkMode
}

// Field names one top-level slice of GameState
type Field string

const (
	FieldEncounter        Field = "encounter"
	FieldPlayers          Field = "players"
	FieldDeathSaves       Field = "deathSaves"
	FieldLinks            Field = "links"
	FieldBastions         Field = "bastions"
	FieldCurrentDay       Field = "currentDay"
	FieldSortBy           Field = "sortBy"
	FieldDarkMode         Field = "darkMode"
	FieldCurrentRound     Field = "currentRound"
	FieldCurrentTurnIndex Field = "currentTurnIndex"
)

// AllFields lists every GameState field in declaration order.
var AllFields = []Field{
	FieldEncounter,
	FieldPlayers,
	FieldDeathSaves,
	FieldLinks,
	FieldBastions,
	FieldCurrentDay,
	FieldSortBy,
	FieldDarkMode,
	FieldCurrentRound,
	FieldCurrentTurnIndex,
}

// SyncRecord is the remote document shape: the full state plus the
// timestamp stamped by the remote store on write.
type SyncRecord struct {
	GameState
	LastSync time.Time `json:"lastSync"`
}

// HasData reports whether the remote roster, players or death saves hold
// anything. Other fields do not count as data for conflict detection.
func (r SyncRecord) HasData() bool {
	return len(r.Encounter) > 0 || len(r.Players) > 0 || len(r.DeathSaves) > 0
}

// IntPtr returns a pointer to v
func IntPtr(v int) *int {
	return &v
}

func cloneInt(p *int) *int {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
