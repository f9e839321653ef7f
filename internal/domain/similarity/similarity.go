// Package similarity retrieves historically comparable transfers for a
// query via standardized Euclidean distance over encoded features.
package similarity

// Query is the narrow feature shape a similarity search runs on. It is
// built from the same raw inputs as the model vector but carries no
// schema zero-fill.
type Query struct {
	MainPosition     string
	PositionGroup    string
	TransferAge      float64
	MarketValue      float64
	FromTeamValue    float64
	ToTeamValue      float64
	PlayedBeforePct  float64
	ScorerGroup      string
	CleanSheetsGroup string
	FromArea         string
	ToArea           string
	FromLevel        float64
	ToLevel          float64
	TeamValueRel     float64
}

// Record is one historical (player, season) observation from the
// reference dataset. Missing numeric values are NaN, missing categorical
// values are the empty string.
type Record struct {
	PlayerID   string
	PlayerName string
	Season     int
	PlayingPct float64 // observed outcome after the transfer

	MainPosition     string
	PositionGroup    string
	TransferAge      float64
	MarketValue      float64
	FromTeamValue    float64
	ToTeamValue      float64
	PlayedBeforePct  float64
	ScorerGroup      string
	CleanSheetsGroup string
	FromArea         string
	ToArea           string
	FromLevel        float64
	ToLevel          float64
	TeamValueRel     float64
}

// Match pairs a reference record with its distance to the query.
type Match struct {
	Record   Record
	Distance float64
}
