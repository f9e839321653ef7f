package similarity

import "math"

// Column identifies one participating feature column.
type Column string

// Participating columns. Categorical columns name their registry field
// so the one-hot block can span the full declared category set.
const (
	ColMainPosition     Column = "mainPosition"
	ColPositionGroup    Column = "positionGroup"
	ColScorerGroup      Column = "scorer_before_grouped_category"
	ColCleanSheetsGroup Column = "clean_sheets_before_grouped"
	ColFromArea         Column = "from_competition_competition_area"
	ColToArea           Column = "to_competition_competition_area"
	ColTransferAge      Column = "transferAge"
	ColMarketValue      Column = "marketvalue_closest"
	ColFromTeamValue    Column = "fromTeam_marketValue"
	ColToTeamValue      Column = "toTeam_marketValue"
	ColPlayedBeforePct  Column = "percentage_played_before"
	ColFromLevel        Column = "from_competition_competition_level"
	ColToLevel          Column = "to_competition_competition_level"
	ColTeamValueRel     Column = "team_market_value_relation"
)

// defaultColumns is the full participating set, matching the query shape.
var defaultColumns = []Column{
	ColMainPosition,
	ColPositionGroup,
	ColTransferAge,
	ColMarketValue,
	ColToTeamValue,
	ColFromTeamValue,
	ColPlayedBeforePct,
	ColScorerGroup,
	ColCleanSheetsGroup,
	ColFromArea,
	ColToArea,
	ColFromLevel,
	ColToLevel,
	ColTeamValueRel,
}

var categoricalColumns = map[Column]bool{
	ColMainPosition:     true,
	ColPositionGroup:    true,
	ColScorerGroup:      true,
	ColCleanSheetsGroup: true,
	ColFromArea:         true,
	ColToArea:           true,
}

// queryValue extracts a column from the query.
func queryValue(q Query, col Column) (num float64, cat string) {
	switch col {
	case ColMainPosition:
		return 0, q.MainPosition
	case ColPositionGroup:
		return 0, q.PositionGroup
	case ColScorerGroup:
		return 0, q.ScorerGroup
	case ColCleanSheetsGroup:
		return 0, q.CleanSheetsGroup
	case ColFromArea:
		return 0, q.FromArea
	case ColToArea:
		return 0, q.ToArea
	case ColTransferAge:
		return q.TransferAge, ""
	case ColMarketValue:
		return q.MarketValue, ""
	case ColFromTeamValue:
		return q.FromTeamValue, ""
	case ColToTeamValue:
		return q.ToTeamValue, ""
	case ColPlayedBeforePct:
		return q.PlayedBeforePct, ""
	case ColFromLevel:
		return q.FromLevel, ""
	case ColToLevel:
		return q.ToLevel, ""
	case ColTeamValueRel:
		return q.TeamValueRel, ""
	}
	return math.NaN(), ""
}

// recordValue extracts a column from a reference record.
func recordValue(r Record, col Column) (num float64, cat string) {
	switch col {
	case ColMainPosition:
		return 0, r.MainPosition
	case ColPositionGroup:
		return 0, r.PositionGroup
	case ColScorerGroup:
		return 0, r.ScorerGroup
	case ColCleanSheetsGroup:
		return 0, r.CleanSheetsGroup
	case ColFromArea:
		return 0, r.FromArea
	case ColToArea:
		return 0, r.ToArea
	case ColTransferAge:
		return r.TransferAge, ""
	case ColMarketValue:
		return r.MarketValue, ""
	case ColFromTeamValue:
		return r.FromTeamValue, ""
	case ColToTeamValue:
		return r.ToTeamValue, ""
	case ColPlayedBeforePct:
		return r.PlayedBeforePct, ""
	case ColFromLevel:
		return r.FromLevel, ""
	case ColToLevel:
		return r.ToLevel, ""
	case ColTeamValueRel:
		return r.TeamValueRel, ""
	}
	return math.NaN(), ""
}

// complete reports whether the record has a value in every participating
// column and every identity column.
func complete(r Record, cols []Column) bool {
	if r.PlayerID == "" || r.PlayerName == "" || r.MainPosition == "" ||
		r.Season == 0 || math.IsNaN(r.PlayingPct) {
		return false
	}
	for _, col := range cols {
		num, cat := recordValue(r, col)
		if categoricalColumns[col] {
			if cat == "" {
				return false
			}
			continue
		}
		if math.IsNaN(num) {
			return false
		}
	}
	return true
}
