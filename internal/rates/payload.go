package rates

import (
	"fmt"
	"strconv"
)

// RowWidth is the number of cells in one category row of the rate sheet:
// the category name then six cells per plan.
const RowWidth = 1 + 6*3

// PlanRates holds one meal plan's prices.
type PlanRates struct {
	Pax        map[int]float64 `json:"pax"`
	ExtraAdult float64         `json:"extra_adult"`
	PaidChild  float64         `json:"paid_child"`
}

// CategoryRates is one row of the rate sheet.
type CategoryRates struct {
	Category string               `json:"category"`
	Plans    map[string]PlanRates `json:"plans"`
}

// FromRow reads a sheet row. Per plan the columns are 4, 3, 2 and 1 adult,
// extra adult, paid child. Missing cells read as 0.
func FromRow(category string, cells []float64) CategoryRates {
	at := func(i int) float64 {
		if i < len(cells) {
			return cells[i]
		}
		return 0
	}
	cr := CategoryRates{Category: category, Plans: make(map[string]PlanRates, len(plans))}
	for p, plan := range plans {
		base := p * 6
		cr.Plans[plan] = PlanRates{
			Pax: map[int]float64{
				4: at(base),
				3: at(base + 1),
				2: at(base + 2),
				1: at(base + 3),
			},
			ExtraAdult: at(base + 4),
			PaidChild:  at(base + 5),
		}
	}
	return cr
}

// ExtraGuestPrice is the charge for guests beyond the pax price.
type ExtraGuestPrice struct {
	ExtraAdult  float64 `json:"extra_adult"`
	ExtraChild2 float64 `json:"extra_child2"`
}

// Prices is the rate block of one update.
type Prices struct {
	SellPrice       map[string]float64 `json:"sell_price"`
	ExtraGuestPrice ExtraGuestPrice    `json:"extra_guest_price"`
}

// DateRange is an inclusive YYYY-MM-DD range.
type DateRange struct {
	From string `json:"from_date"`
	To   string `json:"to_date"`
}

// RateUpdate sets one rate plan for a date range.
type RateUpdate struct {
	Rates            Prices      `json:"rates"`
	DateRangeList    []DateRange `json:"date_range_list"`
	DayList          []string    `json:"day_list"`
	Level            string      `json:"level"`
	CodeList         []string    `json:"code_list"`
	ContractTypeList []string    `json:"contract_type_list"`
}

// Payload is the request body for the rates endpoint.
type Payload struct {
	HotelCode string       `json:"hotel_code"`
	Data      []RateUpdate `json:"data"`
}

// BuildPayload converts sheet rows into rate updates. Plans without a
// positive pax price are skipped; rows or plans without a code produce a
// warning instead of an update.
func BuildPayload(hotelCode string, rows []CategoryRates, codes map[string]PlanCodes, from, to string) (*Payload, []string) {
	p := &Payload{HotelCode: hotelCode, Data: []RateUpdate{}}
	var warnings []string

	for _, row := range rows {
		if _, ok := codes[row.Category]; !ok {
			warnings = append(warnings, fmt.Sprintf("no mapping for category %q", row.Category))
			continue
		}
		for _, plan := range plans {
			rates, ok := row.Plans[plan]
			if !ok {
				continue
			}
			sell := make(map[string]float64)
			for pax := 1; pax <= 4; pax++ {
				if v := rates.Pax[pax]; v > 0 {
					sell[strconv.Itoa(pax)] = v
				}
			}
			if len(sell) == 0 {
				continue
			}
			code, ok := Code(codes, row.Category, plan)
			if !ok {
				warnings = append(warnings, fmt.Sprintf("no rate plan code for %s - %s", row.Category, plan))
				continue
			}

			p.Data = append(p.Data, RateUpdate{
				Rates: Prices{
					SellPrice: sell,
					ExtraGuestPrice: ExtraGuestPrice{
						ExtraAdult:  rates.ExtraAdult,
						ExtraChild2: rates.PaidChild,
					},
				},
				DateRangeList:    []DateRange{{From: from, To: to}},
				DayList:          []string{"0", "1", "2", "3", "4", "5", "6"},
				Level:            "rate_plan",
				CodeList:         []string{code},
				ContractTypeList: []string{"b2c"},
			})
		}
	}
	return p, warnings
}
