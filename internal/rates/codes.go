// Package rates converts the OTA rate sheet into Goibibo rate-plan updates.
package rates

var plans = []string{"EP", "CP", "MAP"}

// Plans returns the meal plans in sheet order.
func Plans() []string {
	return append([]string(nil), plans...)
}

// PlanCodes maps a meal plan to rate-plan codes per pax count.
type PlanCodes map[string]map[int]string

func both(code string) map[int]string {
	return map[int]string{2: code, 1: code}
}

func family(code string) map[int]string {
	return map[int]string{4: code, 3: code, 2: code, 1: code}
}

var goibiboCodes = map[string]PlanCodes{
	"Standard": {
		"EP": both("990581915997"), "CP": both("990581915999"), "MAP": both("990581916000"),
	},
	"Deluxe Rooms": {
		"EP": both("990000570318"), "CP": both("990000570314"), "MAP": both("990000570319"),
	},
	"Deluxe - Valley View": {
		"EP": both("990000570322"), "CP": both("990000570321"), "MAP": both("990000570323"),
	},
	"Deluxe - Twin Bed": {
		"EP": both("990580234874"), "CP": both("990580234875"), "MAP": both("990581915991"),
	},
	"Super Deluxe -Valley View": {
		"EP": both("990580365528"), "CP": both("990580365529"), "MAP": both("990581477451"),
	},
	"Executive Rooms": {
		"EP": both("990581915988"), "CP": both("990581915989"), "MAP": both("990581915990"),
	},
	"Executive - Valley View": {
		"EP": both("990000570336"), "CP": both("990000570338"), "MAP": both("990000570334"),
	},
	"Family Room": {
		"EP": family("990580365537"), "CP": family("990580365538"), "MAP": family("990581477456"),
	},
}

// GoibiboCodes returns a copy of the Goibibo rate-plan codes keyed by OTA
// room type.
func GoibiboCodes() map[string]PlanCodes {
	out := make(map[string]PlanCodes, len(goibiboCodes))
	for category, byPlan := range goibiboCodes {
		out[category] = byPlan.Clone()
	}
	return out
}

// Clone returns a deep copy.
func (c PlanCodes) Clone() PlanCodes {
	out := make(PlanCodes, len(c))
	for plan, byPax := range c {
		cp := make(map[int]string, len(byPax))
		for pax, code := range byPax {
			cp[pax] = code
		}
		out[plan] = cp
	}
	return out
}

// codeOrder is the pax preference when picking a plan's code.
var codeOrder = []int{2, 1, 3, 4}

// Code returns the rate-plan code for category and plan.
func Code(codes map[string]PlanCodes, category, plan string) (string, bool) {
	byPlan, ok := codes[category]
	if !ok {
		return "", false
	}
	byPax, ok := byPlan[plan]
	if !ok {
		return "", false
	}
	for _, pax := range codeOrder {
		if code := byPax[pax]; code != "" {
			return code, true
		}
	}
	return "", false
}
