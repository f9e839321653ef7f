package categories

// competitionLevels holds the valid league tiers per competition area.
// The table is static: it mirrors the coverage of the training data and
// only changes when the model is retrained.
var competitionLevels = map[string][]int{
	"Austria":            {1, 2},
	"Belgium":            {1, 2},
	"Bosnia-Herzegovina": {1},
	"Bulgaria":           {1},
	"Canada":             {1},
	"Croatia":            {1, 2},
	"Czech Republic":     {1},
	"Denmark":            {1, 2},
	"England":            {1, 2, 3, 4},
	"Estonia":            {1},
	"Finland":            {1, 2},
	"France":             {1, 2, 3},
	"Georgia":            {1},
	"Germany":            {1, 2, 3, 4},
	"Greece":             {1},
	"Hungary":            {1},
	"Ireland":            {1},
	"Israel":             {1},
	"Italy":              {1, 2},
	"Japan":              {1},
	"Korea, South":       {1},
	"Latvia":             {1},
	"Lithuania":          {1},
	"Luxembourg":         {1},
	"Malta":              {1},
	"Moldova":            {1},
	"Montenegro":         {1},
	"Netherlands":        {1, 2},
	"Northern Ireland":   {1},
	"Norway":             {1, 2},
	"Poland":             {1},
	"Portugal":           {1, 2},
	"Romania":            {1},
	"Russia":             {1},
	"Saudi Arabia":       {1},
	"Scotland":           {1},
	"Serbia":             {1},
	"Slovakia":           {1},
	"Slovenia":           {1},
	"Spain":              {1, 2},
	"Sweden":             {1, 2},
	"Switzerland":        {1, 2},
	"Türkiye":            {1},
	"Ukraine":            {1},
	"United States":      {1, 2, 3},
	"Wales":              {1},
}

// defaultLevels is offered for areas outside the table.
var defaultLevels = []int{1, 2, 3, 4}

// LevelsFor returns the valid competition tiers for an area. Unknown
// areas fall back to the full tier range.
func LevelsFor(area string) []int {
	levels, ok := competitionLevels[area]
	if !ok {
		levels = defaultLevels
	}
	out := make([]int, len(levels))
	copy(out, levels)
	return out
}

// Areas returns every area present in the competition level table.
func Areas() []string {
	out := make([]string, 0, len(competitionLevels))
	for area := range competitionLevels {
		out = append(out, area)
	}
	return out
}
