package domain

// AreaBox maps a named borough to an approximate lat/lon rectangle.
type AreaBox struct {
	Name   string
	LatMin float64
	LatMax float64
	LonMin float64
	LonMax float64
}

// Contains reports whether the point lies inside the box (inclusive).
func (b AreaBox) Contains(lat, lon float64) bool {
	return lat >= b.LatMin && lat <= b.LatMax && lon >= b.LonMin && lon <= b.LonMax
}

// areaBoxes is the ordered borough lookup table. Order matters: resolution
// is first-match-wins and the boxes are assumed non-overlapping, so this is
// deliberately a slice rather than a map.
var areaBoxes = []AreaBox{
	{Name: "coyoacán", LatMin: 19.33, LatMax: 19.37, LonMin: -99.18, LonMax: -99.12},
	{Name: "cuauhtémoc", LatMin: 19.42, LatMax: 19.46, LonMin: -99.16, LonMax: -99.12},
	{Name: "gustavo a. madero", LatMin: 19.47, LatMax: 19.52, LonMin: -99.15, LonMax: -99.08},
	{Name: "azcapotzalco", LatMin: 19.47, LatMax: 19.50, LonMin: -99.20, LonMax: -99.17},
	{Name: "miguel hidalgo", LatMin: 19.40, LatMax: 19.44, LonMin: -99.22, LonMax: -99.18},
	{Name: "benito juárez", LatMin: 19.37, LatMax: 19.41, LonMin: -99.18, LonMax: -99.14},
	{Name: "tlalpan", LatMin: 19.27, LatMax: 19.31, LonMin: -99.20, LonMax: -99.14},
	{Name: "iztapalapa", LatMin: 19.34, LatMax: 19.38, LonMin: -99.08, LonMax: -99.02},
	{Name: "tláhuac", LatMin: 19.27, LatMax: 19.31, LonMin: -99.02, LonMax: -98.96},
	{Name: "xochimilco", LatMin: 19.24, LatMax: 19.28, LonMin: -99.14, LonMax: -99.06},
	{Name: "álvaro obregón", LatMin: 19.35, LatMax: 19.39, LonMin: -99.25, LonMax: -99.19},
}

// ResolveArea maps a coordinate to a borough name. The first containing box
// wins; ok is false when no box contains the point.
func ResolveArea(lat, lon float64) (name string, ok bool) {
	for _, box := range areaBoxes {
		if box.Contains(lat, lon) {
			return box.Name, true
		}
	}
	return "", false
}

// AreaAlias lists the text fragments that tag a record with a borough.
type AreaAlias struct {
	Name    string
	Aliases []string
}

// AreaAliases is the ordered alias table used to tag complaint text with
// borough names at corpus load time. Aliases are matched as lowercase
// substrings.
var AreaAliases = []AreaAlias{
	{Name: "coyoacán", Aliases: []string{"coyoacán", "coyoacan", "alianza popular", "villa panamericana", "pedregal de carrasco"}},
	{Name: "cuauhtémoc", Aliases: []string{"cuauhtémoc", "cuauhtemoc", "roma norte", "roma", "centro", "doctores"}},
	{Name: "gustavo a. madero", Aliases: []string{"gustavo a. madero", "zacatenco", "san pedro zacatenco", "ticoman"}},
	{Name: "azcapotzalco", Aliases: []string{"azcapotzalco", "tlatilco"}},
	{Name: "miguel hidalgo", Aliases: []string{"miguel hidalgo", "lomas de chapultepec", "chapultepec", "palmas"}},
	{Name: "benito juárez", Aliases: []string{"benito juárez", "benito juarez", "letrán valle", "letran valle", "narvarte", "del valle"}},
	{Name: "tlalpan", Aliases: []string{"tlalpan", "jardines de tlalpan"}},
	{Name: "iztapalapa", Aliases: []string{"iztapalapa"}},
	{Name: "tláhuac", Aliases: []string{"tláhuac", "tlahuac"}},
	{Name: "xochimilco", Aliases: []string{"xochimilco", "santa cecilia tepetlapa", "tepetlapa"}},
	{Name: "álvaro obregón", Aliases: []string{"álvaro obregón", "alvaro obregon", "torres de potrero", "potrero"}},
	{Name: "cuajimalpa", Aliases: []string{"cuajimalpa", "santa fe"}},
	{Name: "iztacalco", Aliases: []string{"iztacalco"}},
	{Name: "milpa alta", Aliases: []string{"milpa alta"}},
	{Name: "magdalena contreras", Aliases: []string{"magdalena contreras"}},
}
