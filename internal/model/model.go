package model

import "time"

// Shift is one enriched punch-clock record. CheckOut is nil while the shift
// is still open; Hours for an open shift is measured against the wall clock
// at aggregation time.
type Shift struct {
	Name     string     `json:"name,omitempty"`
	Shop     string     `json:"shop,omitempty"`
	CheckIn  time.Time  `json:"check_in"`
	CheckOut *time.Time `json:"check_out"`
	Hours    float64    `json:"shift_time"`
}

// Timecard is one employee's shifts and hour totals for a date range. Totals
// carries a "total" bucket plus one bucket per shop name, unrounded.
type Timecard struct {
	Shifts []Shift            `json:"shifts"`
	Totals map[string]float64 `json:"totals"`
}

// PunchLog is the store-wide aggregation: shifts grouped by calendar day
// (keyed YYYY-MM-DD in the account timezone) and then by shop name, with
// running grand, per-shop and per-employee hour totals.
type PunchLog struct {
	Days           map[string]map[string][]Shift `json:"punch_log"`
	TotalHours     float64                       `json:"total_hours"`
	ShopTotals     map[string]float64            `json:"shop_totals"`
	EmployeeTotals map[string]float64            `json:"employee_totals"`
}

// EmployeeInfo is the onboarding listing entry. Email is empty when the POS
// has no contact card for the employee.
type EmployeeInfo struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
}
