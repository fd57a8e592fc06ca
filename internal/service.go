package internal

import (
	"context"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/wildflower-dev/timecard-service/internal/lightspeed"
	"github.com/wildflower-dev/timecard-service/internal/model"
)

const totalBucket = "total"

// Service builds the derived timecard views from raw Lightspeed resources.
// It never handles token refresh itself; that is the query engine's job, so
// any auth error surfacing here already failed its one retry.
type Service struct {
	client lightspeed.ClientInterface
}

func NewService(c lightspeed.ClientInterface) *Service {
	return &Service{client: c}
}

// MapEmployeeIDsToNames fetches every employee, archived ones included, and
// maps id to display name.
func (service Service) MapEmployeeIDsToNames(ctx context.Context, creds lightspeed.Credentials) (map[string]string, error) {
	names := make(map[string]string)

	pages := service.client.Employees(ctx, creds, lightspeed.Params{"archived": true})
	for pages.Next() {
		var employees []lightspeed.Employee
		if err := pages.Page().Records(&employees); err != nil {
			return nil, err
		}
		for _, e := range employees {
			names[e.EmployeeID] = e.FullName()
		}
	}
	if err := pages.Err(); err != nil {
		return nil, err
	}
	return names, nil
}

// MapShopIDsToNames maps shop id to shop name. One page covers every store
// the POS supports, so only the first page is pulled.
func (service Service) MapShopIDsToNames(ctx context.Context, creds lightspeed.Credentials) (map[string]string, error) {
	shops := make(map[string]string)

	pages := service.client.Shops(ctx, creds, nil)
	if pages.Next() {
		var records []lightspeed.Shop
		if err := pages.Page().Records(&records); err != nil {
			return nil, err
		}
		for _, s := range records {
			shops[s.ShopID] = s.Name
		}
	}
	if err := pages.Err(); err != nil {
		return nil, err
	}
	return shops, nil
}

// ListEmployees returns id, name and email for every current employee. The
// email lives in a nested contact relation the API sometimes collapses to an
// empty string; those employees simply list without one.
func (service Service) ListEmployees(ctx context.Context, creds lightspeed.Credentials) ([]model.EmployeeInfo, error) {
	employees := []model.EmployeeInfo{}

	pages := service.client.Employees(ctx, creds, lightspeed.Params{"load_relations": `["Contact"]`})
	for pages.Next() {
		var records []lightspeed.Employee
		if err := pages.Page().Records(&records); err != nil {
			return nil, err
		}
		for _, e := range records {
			employees = append(employees, model.EmployeeInfo{
				ID:    e.EmployeeID,
				Name:  e.FullName(),
				Email: e.Email(),
			})
		}
	}
	if err := pages.Err(); err != nil {
		return nil, err
	}
	return employees, nil
}

// GetEmployeeTimecard aggregates one employee's shifts in the given date
// range into a shift listing plus hour totals per shop. A zero start selects
// the default window, the fourteen days ending today. Totals stay unrounded;
// presentation rounding is the handler's problem.
func (service Service) GetEmployeeTimecard(ctx context.Context, creds lightspeed.Credentials, loc *time.Location,
	employeeID string, start, end time.Time) (*model.Timecard, error) {
	contextLogger := log.WithContext(ctx)
	contextLogger.Infof("building timecard for employee %s", employeeID)

	rangeStart, rangeEnd := expandRange(start, end, loc)

	shops, err := service.MapShopIDsToNames(ctx, creds)
	if err != nil {
		return nil, err
	}

	shifts := []model.Shift{}
	totals := map[string]float64{}

	params := punchParams(rangeStart, rangeEnd)
	params["employeeID"] = employeeID

	pages := service.client.EmployeeHours(ctx, creds, params)
	for pages.Next() {
		page := pages.Page()
		if page.Attributes.Count == 0 {
			continue
		}

		var records []lightspeed.EmployeeHours
		if err := page.Records(&records); err != nil {
			return nil, err
		}
		for _, rec := range records {
			shift, err := buildShift(rec, shops[rec.ShopID])
			if err != nil {
				return nil, err
			}
			totals[totalBucket] += shift.Hours
			totals[shift.Shop] += shift.Hours
			shifts = append(shifts, shift)
		}
	}
	if err := pages.Err(); err != nil {
		return nil, err
	}

	return &model.Timecard{Shifts: shifts, Totals: totals}, nil
}

// GetPunchLog aggregates every employee's shifts in the date range into a
// day -> shop -> shifts nesting with grand, per-shop and per-employee hour
// totals. Days key on the check-in date localized to the account timezone.
func (service Service) GetPunchLog(ctx context.Context, creds lightspeed.Credentials, loc *time.Location,
	start, end time.Time) (*model.PunchLog, error) {
	contextLogger := log.WithContext(ctx)
	contextLogger.Info("building the punch log")

	rangeStart, rangeEnd := expandRange(start, end, loc)

	shops, err := service.MapShopIDsToNames(ctx, creds)
	if err != nil {
		return nil, err
	}
	employees, err := service.MapEmployeeIDsToNames(ctx, creds)
	if err != nil {
		return nil, err
	}

	punchLog := &model.PunchLog{
		Days:           map[string]map[string][]model.Shift{},
		ShopTotals:     map[string]float64{},
		EmployeeTotals: map[string]float64{},
	}

	pages := service.client.EmployeeHours(ctx, creds, punchParams(rangeStart, rangeEnd))
	for pages.Next() {
		page := pages.Page()
		if page.Attributes.Count == 0 {
			continue
		}

		var records []lightspeed.EmployeeHours
		if err := page.Records(&records); err != nil {
			return nil, err
		}
		for _, rec := range records {
			shift, err := buildShift(rec, shops[rec.ShopID])
			if err != nil {
				return nil, err
			}
			shift.Name = employees[rec.EmployeeID]

			punchLog.TotalHours += shift.Hours
			punchLog.ShopTotals[shift.Shop] += shift.Hours
			punchLog.EmployeeTotals[shift.Name] += shift.Hours

			day := shift.CheckIn.In(loc).Format("2006-01-02")
			if punchLog.Days[day] == nil {
				punchLog.Days[day] = map[string][]model.Shift{}
			}
			punchLog.Days[day][shift.Shop] = append(punchLog.Days[day][shift.Shop], shift)
		}
	}
	if err := pages.Err(); err != nil {
		return nil, err
	}

	return punchLog, nil
}

// punchParams filters punch records to the range, most recent shifts first.
func punchParams(start, end time.Time) lightspeed.Params {
	return lightspeed.Params{
		"checkIn":      lightspeed.Op("><", start, end),
		"orderby":      "employeeHoursID",
		"orderby_desc": "1",
	}
}

// expandRange widens a day-granular range to inclusive full-day timestamps in
// the account timezone. A zero start selects the 14 days ending today.
func expandRange(start, end time.Time, loc *time.Location) (time.Time, time.Time) {
	if start.IsZero() {
		today := time.Now().In(loc)
		start = today.AddDate(0, 0, -14)
		end = today
	}
	rangeStart := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, loc)
	rangeEnd := time.Date(end.Year(), end.Month(), end.Day(), 23, 59, 59, int(time.Second-time.Nanosecond), loc)
	return rangeStart, rangeEnd
}

// buildShift converts one raw punch record. An open shift (no check out yet)
// is measured against the clock right now, so re-aggregating it later yields
// a larger figure on purpose.
func buildShift(rec lightspeed.EmployeeHours, shopName string) (model.Shift, error) {
	checkIn, err := time.Parse(time.RFC3339, rec.CheckIn)
	if err != nil {
		return model.Shift{}, fmt.Errorf("unparseable checkIn %q: %w", rec.CheckIn, err)
	}

	var checkOut *time.Time
	var elapsed time.Duration
	if rec.CheckOut != "" {
		out, err := time.Parse(time.RFC3339, rec.CheckOut)
		if err != nil {
			return model.Shift{}, fmt.Errorf("unparseable checkOut %q: %w", rec.CheckOut, err)
		}
		checkOut = &out
		elapsed = out.Sub(checkIn)
	} else {
		elapsed = time.Since(checkIn)
	}

	return model.Shift{
		Shop:     shopName,
		CheckIn:  checkIn,
		CheckOut: checkOut,
		Hours:    elapsed.Seconds() / 3600,
	}, nil
}
