package seedmeet

import (
	"fmt"
	"math"
	"math/rand/v2"
	"strconv"

	"github.com/okian/swimchamps/internal/domain/model"
)

// programmeEvent is one race of the generated meet programme.
type programmeEvent struct {
	distance int
	stroke   string
}

var programme = []programmeEvent{ //nolint:gochecknoglobals // fixed meet programme
	{50, "Freestyle"}, {50, "Backstroke"}, {50, "Breaststroke"}, {50, "Butterfly"},
	{100, "Freestyle"}, {100, "Backstroke"}, {100, "Breaststroke"}, {100, "Butterfly"}, {100, "IM"},
	{200, "Freestyle"}, {200, "Backstroke"}, {200, "Breaststroke"}, {200, "Butterfly"}, {200, "IM"},
	{400, "Freestyle"}, {400, "IM"},
	{800, "Freestyle"}, {1500, "Freestyle"},
}

var ( //nolint:gochecknoglobals // name pools
	girlNames = []string{"Ada", "Bea", "Cora", "Dina", "Eve", "Fay", "Gia", "Hana", "Iris", "Jade", "Kira", "Lena"}
	boyNames  = []string{"Ari", "Ben", "Cal", "Dev", "Eli", "Finn", "Gus", "Hugo", "Ivo", "Jon", "Kai", "Leo"}
	surnames  = []string{"Byron", "Chen", "Diaz", "Evans", "Frost", "Gray", "Hale", "Ito", "Jones", "Khan", "Lund", "Moss"}
	clubs     = []string{"Otters SC", "Seals AC", "Harbour Dolphins", "Northside Marlins", "Riverside Tritons"}
)

// Generate builds a meet of n swimmers. The same seed always yields the same
// records. Categories and sex categories are left for the service to derive
// from the event labels.
func Generate(n int, seed uint64) []model.PerformanceRecord {
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)) //nolint:gosec // synthetic data
	seen := make(map[string]int, n)

	var out []model.PerformanceRecord
	for i := 0; i < n; i++ {
		female := rng.IntN(2) == 0
		first, prefix := boyNames, "Boys"
		if female {
			first, prefix = girlNames, "Girls"
		}
		name := first[rng.IntN(len(first))] + " " + surnames[rng.IntN(len(surnames))]
		if k := seen[name]; k > 0 {
			seen[name] = k + 1
			name = fmt.Sprintf("%s %d", name, k+1)
		} else {
			seen[name] = 1
		}
		age := minAge + rng.IntN(maxAge-minAge+1)
		club := clubs[rng.IntN(len(clubs))]
		talent := rng.Float64()

		entries := minEntries + rng.IntN(maxEntries-minEntries+1)
		for _, ev := range rng.Perm(len(programme))[:entries] {
			pe := programme[ev]
			secs := raceSeconds(pe.distance, age, talent, rng)
			out = append(out, model.PerformanceRecord{
				EventID:     eventID(ev, female),
				EventLabel:  fmt.Sprintf("%s %dm %s", prefix, pe.distance, pe.stroke),
				SwimmerName: name,
				Age:         age,
				Club:        club,
				TimeRaw:     clockTime(secs),
				Score:       score(pe.distance, secs),
			})
		}
	}
	return out
}

// eventID numbers girls' events first, then boys'.
func eventID(ev int, female bool) string {
	if female {
		return strconv.Itoa(ev + 1)
	}
	return strconv.Itoa(len(programme) + ev + 1)
}

// raceSeconds models a pace per 100m that improves with age and talent.
func raceSeconds(distance, age int, talent float64, rng *rand.Rand) float64 {
	pace := 95 - float64(age-minAge)*3 - talent*20 + rng.Float64()*6
	return pace * float64(distance) / 100
}

// score awards maxScore for a 50s/100m pace and falls off with the cube of
// the time ratio.
func score(distance int, secs float64) int {
	ref := 50 * float64(distance) / 100
	return min(maxScore, int(maxScore*math.Pow(ref/secs, 3)))
}

// clockTime renders seconds as HH:MM:SS.hh.
func clockTime(secs float64) string {
	cs := int(math.Round(secs * centisPerSec))
	h := cs / (3600 * centisPerSec)
	cs -= h * 3600 * centisPerSec
	m := cs / (60 * centisPerSec)
	cs -= m * 60 * centisPerSec
	return fmt.Sprintf("%02d:%02d:%02d.%02d", h, m, cs/centisPerSec, cs%centisPerSec)
}
