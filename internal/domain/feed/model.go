package feed

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Decimal decodes upstream numerics that arrive either as JSON numbers or
// as numeric strings ("4.5"). null decodes to zero; use a pointer where
// absence must stay observable.
type Decimal float64

func (d *Decimal) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(string(data))
	if s == "null" {
		*d = 0
		return nil
	}
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		s = strings.TrimSpace(s[1 : len(s)-1])
		if s == "" {
			*d = 0
			return nil
		}
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fmt.Errorf("invalid numeric value %s", strings.TrimSpace(string(data)))
	}
	*d = Decimal(v)
	return nil
}

func (d Decimal) Float64() float64 {
	return float64(d)
}

// Player availability flags as published by the upstream feed.
const (
	StatusAvailable   = "a"
	StatusDoubtful    = "d"
	StatusInjured     = "i"
	StatusNotPlaying  = "n"
	StatusSuspended   = "s"
	StatusUnavailable = "u"
)

func validStatus(status string) bool {
	switch status {
	case StatusAvailable, StatusDoubtful, StatusInjured, StatusNotPlaying, StatusSuspended, StatusUnavailable:
		return true
	}
	return false
}

// Position is an element type (goalkeeper, defender, midfielder, forward).
type Position struct {
	ID                int    `json:"id"`
	PluralName        string `json:"plural_name"`
	PluralNameShort   string `json:"plural_name_short"`
	SingularName      string `json:"singular_name"`
	SingularNameShort string `json:"singular_name_short"`
	SquadSelect       int    `json:"squad_select"`
	SquadMinPlay      int    `json:"squad_min_play"`
	SquadMaxPlay      int    `json:"squad_max_play"`
	UIShirtSpecific   bool   `json:"ui_shirt_specific"`
	ElementCount      int    `json:"element_count"`
}

func (p Position) Validate() *ValidationError {
	if p.ID <= 0 {
		return fieldError("id", "must be a positive integer")
	}
	if strings.TrimSpace(p.SingularName) == "" {
		return fieldError("singular_name", "is required")
	}
	if strings.TrimSpace(p.PluralName) == "" {
		return fieldError("plural_name", "is required")
	}
	if p.SquadMinPlay > p.SquadMaxPlay {
		return fieldError("squad_min_play", "exceeds squad_max_play")
	}
	return nil
}

type Team struct {
	ID                  int     `json:"id"`
	Code                int     `json:"code"`
	Name                string  `json:"name"`
	ShortName           string  `json:"short_name"`
	Draw                int     `json:"draw"`
	Loss                int     `json:"loss"`
	Win                 int     `json:"win"`
	Played              int     `json:"played"`
	Points              int     `json:"points"`
	Position            int     `json:"position"`
	Form                *string `json:"form"`
	TeamDivision        *string `json:"team_division"`
	Unavailable         bool    `json:"unavailable"`
	Strength            int     `json:"strength"`
	StrengthOverallHome int     `json:"strength_overall_home"`
	StrengthOverallAway int     `json:"strength_overall_away"`
	StrengthAttackHome  int     `json:"strength_attack_home"`
	StrengthAttackAway  int     `json:"strength_attack_away"`
	StrengthDefenceHome int     `json:"strength_defence_home"`
	StrengthDefenceAway int     `json:"strength_defence_away"`
	PulseID             int     `json:"pulse_id"`
}

func (t Team) Validate() *ValidationError {
	if t.ID <= 0 {
		return fieldError("id", "must be a positive integer")
	}
	if strings.TrimSpace(t.Name) == "" {
		return fieldError("name", "is required")
	}
	if strings.TrimSpace(t.ShortName) == "" {
		return fieldError("short_name", "is required")
	}
	return nil
}

// Event is one gameweek. Deadlines are UTC instants.
type Event struct {
	ID                     int        `json:"id"`
	Name                   string     `json:"name"`
	DeadlineTime           time.Time  `json:"deadline_time"`
	DeadlineTimeEpoch      int64      `json:"deadline_time_epoch"`
	DeadlineTimeGameOffset int        `json:"deadline_time_game_offset"`
	ReleaseTime            *time.Time `json:"release_time"`
	AverageEntryScore      Decimal    `json:"average_entry_score"`
	HighestScore           *Decimal   `json:"highest_score"`
	HighestScoringEntry    *int64     `json:"highest_scoring_entry"`
	Finished               bool       `json:"finished"`
	DataChecked            bool       `json:"data_checked"`
	IsPrevious             bool       `json:"is_previous"`
	IsCurrent              bool       `json:"is_current"`
	IsNext                 bool       `json:"is_next"`
	CupLeaguesCreated      bool       `json:"cup_leagues_created"`
	H2HKoMatchesCreated    bool       `json:"h2h_ko_matches_created"`
	RankedCount            int        `json:"ranked_count"`
	TransfersMade          int64      `json:"transfers_made"`
	ChipPlays              []ChipPlay `json:"chip_plays"`
	MostSelected           *int       `json:"most_selected"`
	MostTransferredIn      *int       `json:"most_transferred_in"`
	MostCaptained          *int       `json:"most_captained"`
	MostViceCaptained      *int       `json:"most_vice_captained"`
	TopElement             *int       `json:"top_element"`
}

type ChipPlay struct {
	ChipName   string `json:"chip_name"`
	NumPlayed  int64  `json:"num_played"`
}

func (e Event) Validate() *ValidationError {
	if e.ID <= 0 {
		return fieldError("id", "must be a positive integer")
	}
	if strings.TrimSpace(e.Name) == "" {
		return fieldError("name", "is required")
	}
	if e.DeadlineTime.IsZero() {
		return fieldError("deadline_time", "is required")
	}
	return nil
}

// Player is one element row from the upstream feed. Optional fields stay
// pointers so absence never collapses into a real zero.
type Player struct {
	ID         int    `json:"id"`
	Code       int    `json:"code"`
	FirstName  string `json:"first_name"`
	SecondName string `json:"second_name"`
	WebName    string `json:"web_name"`
	Photo      string `json:"photo"`
	Special    bool   `json:"special"`

	Team        int    `json:"team"`
	TeamCode    int    `json:"team_code"`
	ElementType int    `json:"element_type"`
	Status      string `json:"status"`
	News        string `json:"news"`
	NewsAdded   *time.Time `json:"news_added"`
	SquadNumber *int       `json:"squad_number"`

	NowCost             int `json:"now_cost"`
	CostChangeEvent     int `json:"cost_change_event"`
	CostChangeEventFall int `json:"cost_change_event_fall"`
	CostChangeStart     int `json:"cost_change_start"`
	CostChangeStartFall int `json:"cost_change_start_fall"`

	ChanceOfPlayingNextRound *Decimal `json:"chance_of_playing_next_round"`
	ChanceOfPlayingThisRound *Decimal `json:"chance_of_playing_this_round"`
	EPThis                   *Decimal `json:"ep_this"`
	EPNext                   Decimal  `json:"ep_next"`

	DreamteamCount int  `json:"dreamteam_count"`
	InDreamteam    bool `json:"in_dreamteam"`

	SelectedByPercent Decimal `json:"selected_by_percent"`
	Form              Decimal `json:"form"`
	PointsPerGame     Decimal `json:"points_per_game"`
	ValueForm         Decimal `json:"value_form"`
	ValueSeason       Decimal `json:"value_season"`

	TotalPoints int `json:"total_points"`
	EventPoints int `json:"event_points"`

	Minutes         int `json:"minutes"`
	GoalsScored     int `json:"goals_scored"`
	Assists         int `json:"assists"`
	CleanSheets     int `json:"clean_sheets"`
	GoalsConceded   int `json:"goals_conceded"`
	OwnGoals        int `json:"own_goals"`
	PenaltiesSaved  int `json:"penalties_saved"`
	PenaltiesMissed int `json:"penalties_missed"`
	YellowCards     int `json:"yellow_cards"`
	RedCards        int `json:"red_cards"`
	Saves           int `json:"saves"`
	Starts          int `json:"starts"`
	Bonus           int `json:"bonus"`
	BPS             int `json:"bps"`

	Influence Decimal `json:"influence"`
	Creativity Decimal `json:"creativity"`
	Threat    Decimal `json:"threat"`
	ICTIndex  Decimal `json:"ict_index"`

	ExpectedGoals            Decimal `json:"expected_goals"`
	ExpectedAssists          Decimal `json:"expected_assists"`
	ExpectedGoalInvolvements Decimal `json:"expected_goal_involvements"`
	ExpectedGoalsConceded    Decimal `json:"expected_goals_conceded"`

	TransfersIn       int64 `json:"transfers_in"`
	TransfersOut      int64 `json:"transfers_out"`
	TransfersInEvent  int64 `json:"transfers_in_event"`
	TransfersOutEvent int64 `json:"transfers_out_event"`

	CornersAndIndirectFreekicksOrder *int   `json:"corners_and_indirect_freekicks_order"`
	CornersAndIndirectFreekicksText  string `json:"corners_and_indirect_freekicks_text"`
	DirectFreekicksOrder             *int   `json:"direct_freekicks_order"`
	DirectFreekicksText              string `json:"direct_freekicks_text"`
	PenaltiesOrder                   *int   `json:"penalties_order"`
	PenaltiesText                    string `json:"penalties_text"`

	InfluenceRank         *int `json:"influence_rank"`
	InfluenceRankType     *int `json:"influence_rank_type"`
	CreativityRank        *int `json:"creativity_rank"`
	CreativityRankType    *int `json:"creativity_rank_type"`
	ThreatRank            *int `json:"threat_rank"`
	ThreatRankType        *int `json:"threat_rank_type"`
	ICTIndexRank          *int `json:"ict_index_rank"`
	ICTIndexRankType      *int `json:"ict_index_rank_type"`
	NowCostRank           *int `json:"now_cost_rank"`
	NowCostRankType       *int `json:"now_cost_rank_type"`
	FormRank              *int `json:"form_rank"`
	FormRankType          *int `json:"form_rank_type"`
	PointsPerGameRank     *int `json:"points_per_game_rank"`
	PointsPerGameRankType *int `json:"points_per_game_rank_type"`
	SelectedRank          *int `json:"selected_rank"`
	SelectedRankType      *int `json:"selected_rank_type"`
}

func (p Player) Validate() *ValidationError {
	if p.ID <= 0 {
		return fieldError("id", "must be a positive integer")
	}
	if strings.TrimSpace(p.WebName) == "" {
		return fieldError("web_name", "is required")
	}
	if p.Team <= 0 {
		return fieldError("team", "must be a positive integer")
	}
	if p.ElementType <= 0 {
		return fieldError("element_type", "must be a positive integer")
	}
	if !validStatus(p.Status) {
		return fieldError("status", fmt.Sprintf("unknown status code %q", p.Status))
	}
	if p.NowCost < 0 {
		return fieldError("now_cost", "must not be negative")
	}
	return nil
}

// DisplayName is the "first second" form used as the join key against
// historical sheets.
func (p Player) DisplayName() string {
	return strings.TrimSpace(p.FirstName + " " + p.SecondName)
}

// Snapshot is one validated, immutable view of the bootstrap feed. A new
// fetch replaces the whole value; nothing mutates in place.
type Snapshot struct {
	Teams     []Team
	Players   []Player
	Events    []Event
	Positions []Position
	FetchedAt time.Time
}
