package internal

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"sort"
	"time"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
	"github.com/xuri/excelize/v2"

	"github.com/wildflower-dev/timecard-service/internal/account"
	"github.com/wildflower-dev/timecard-service/internal/lightspeed"
	"github.com/wildflower-dev/timecard-service/internal/model"
	"github.com/wildflower-dev/timecard-service/internal/payperiod"
	"github.com/wildflower-dev/timecard-service/internal/util"
)

const dateFormat = "2006-01-02"

type errorBody struct {
	Error string `json:"error"`
}

// EmployeesHandler lists id, name and email for every current employee of
// the account, for the onboarding screens.
func EmployeesHandler(handler TimecardAPIHandler, store account.Store) func(res http.ResponseWriter, req *http.Request) {
	return func(res http.ResponseWriter, req *http.Request) {
		ctx := req.Context()

		_, session, ok := resolveAccount(res, req, store)
		if !ok {
			return
		}

		employees, err := handler.ListEmployees(ctx, session)
		if err != nil {
			writeServiceError(ctx, res, err)
			return
		}
		util.WithBodyAndStatus(employees, http.StatusOK, res)
	}
}

// TimecardHandler serves one employee's shifts and totals. Hours round to
// two decimals here, at the presentation edge only.
func TimecardHandler(handler TimecardAPIHandler, store account.Store) func(res http.ResponseWriter, req *http.Request) {
	return func(res http.ResponseWriter, req *http.Request) {
		ctx := req.Context()

		acct, session, ok := resolveAccount(res, req, store)
		if !ok {
			return
		}

		start, end, err := requestedRange(req, acct)
		if err != nil {
			util.WithBodyAndStatus(errorBody{Error: err.Error()}, http.StatusBadRequest, res)
			return
		}

		employeeID := mux.Vars(req)["employeeID"]
		timecard, err := handler.GetEmployeeTimecard(ctx, session, acct.Location(), employeeID, start, end)
		if err != nil {
			writeServiceError(ctx, res, err)
			return
		}

		util.WithBodyAndStatus(roundedTimecard(timecard), http.StatusOK, res)
	}
}

// PunchLogHandler serves the store-wide day/shop aggregation.
func PunchLogHandler(handler TimecardAPIHandler, store account.Store) func(res http.ResponseWriter, req *http.Request) {
	return func(res http.ResponseWriter, req *http.Request) {
		ctx := req.Context()

		acct, session, ok := resolveAccount(res, req, store)
		if !ok {
			return
		}

		start, end, err := requestedRange(req, acct)
		if err != nil {
			util.WithBodyAndStatus(errorBody{Error: err.Error()}, http.StatusBadRequest, res)
			return
		}

		punchLog, err := handler.GetPunchLog(ctx, session, acct.Location(), start, end)
		if err != nil {
			writeServiceError(ctx, res, err)
			return
		}
		util.WithBodyAndStatus(punchLog, http.StatusOK, res)
	}
}

// PunchLogExportHandler renders the punch log as an .xlsx workbook with a
// totals sheet and a flat shift listing.
func PunchLogExportHandler(handler TimecardAPIHandler, store account.Store) func(res http.ResponseWriter, req *http.Request) {
	return func(res http.ResponseWriter, req *http.Request) {
		ctx := req.Context()
		contextLogger := log.WithContext(ctx)

		acct, session, ok := resolveAccount(res, req, store)
		if !ok {
			return
		}

		start, end, err := requestedRange(req, acct)
		if err != nil {
			util.WithBodyAndStatus(errorBody{Error: err.Error()}, http.StatusBadRequest, res)
			return
		}

		punchLog, err := handler.GetPunchLog(ctx, session, acct.Location(), start, end)
		if err != nil {
			writeServiceError(ctx, res, err)
			return
		}

		workbook, err := punchLogWorkbook(punchLog)
		if err != nil {
			contextLogger.WithError(err).Error("failed to build the export workbook")
			util.WithBodyAndStatus(nil, http.StatusInternalServerError, res)
			return
		}

		res.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		res.Header().Set("Content-Disposition", `attachment; filename="punch_log.xlsx"`)
		if err := workbook.Write(res); err != nil {
			contextLogger.WithError(err).Error("failed to stream the export workbook")
		}
	}
}

type onboardRequest struct {
	Timezone               string `json:"timezone"`
	PayPeriodType          string `json:"pay_period_type"`
	PayPeriodReferenceDate string `json:"pay_period_reference_date"`
}

// OnboardHandler binds timezone and pay-period settings onto a connected
// account and marks it onboarded.
func OnboardHandler(store account.Store) func(res http.ResponseWriter, req *http.Request) {
	return func(res http.ResponseWriter, req *http.Request) {
		ctx := req.Context()
		contextLogger := log.WithContext(ctx)

		acct, _, ok := resolveAccount(res, req, store)
		if !ok {
			return
		}

		var body onboardRequest
		if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
			util.WithBodyAndStatus(errorBody{Error: "malformed request body"}, http.StatusBadRequest, res)
			return
		}

		if _, err := time.LoadLocation(body.Timezone); err != nil {
			util.WithBodyAndStatus(errorBody{Error: fmt.Sprintf("unknown timezone %q", body.Timezone)}, http.StatusBadRequest, res)
			return
		}
		reference, err := time.Parse(dateFormat, body.PayPeriodReferenceDate)
		if err != nil {
			util.WithBodyAndStatus(errorBody{Error: "pay_period_reference_date must be YYYY-MM-DD"}, http.StatusBadRequest, res)
			return
		}
		if _, err := payperiod.New(body.PayPeriodType, reference); err != nil {
			util.WithBodyAndStatus(errorBody{Error: err.Error()}, http.StatusBadRequest, res)
			return
		}

		acct.Timezone = body.Timezone
		acct.PayPeriodType = body.PayPeriodType
		acct.PayPeriodReferenceDate = body.PayPeriodReferenceDate
		acct.IsOnboarded = true

		if err := store.Put(acct); err != nil {
			contextLogger.WithError(err).Error("failed to persist onboarding settings")
			util.WithBodyAndStatus(nil, http.StatusInternalServerError, res)
			return
		}
		util.WithBodyAndStatus(acct, http.StatusOK, res)
	}
}

// resolveAccount loads the account named in the route and wraps it in a
// session the Lightspeed client can refresh through.
func resolveAccount(res http.ResponseWriter, req *http.Request, store account.Store) (*account.Account, *account.Session, bool) {
	ctx := req.Context()
	contextLogger := log.WithContext(ctx)

	accountID := mux.Vars(req)["accountID"]
	acct, err := store.Get(accountID)
	if err != nil {
		var notFound account.ErrNotFound
		if errors.As(err, &notFound) {
			util.WithBodyAndStatus(errorBody{Error: err.Error()}, http.StatusNotFound, res)
			return nil, nil, false
		}
		contextLogger.WithError(err).Error("failed to load the account")
		util.WithBodyAndStatus(nil, http.StatusInternalServerError, res)
		return nil, nil, false
	}
	return acct, account.NewSession(acct, store), true
}

// requestedRange reads an explicit start/end pair, or a pay-period selector,
// off the request. No parameters means the service default window.
func requestedRange(req *http.Request, acct *account.Account) (time.Time, time.Time, error) {
	query := req.URL.Query()

	if period := query.Get("period"); period != "" {
		reference, err := time.Parse(dateFormat, acct.PayPeriodReferenceDate)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("account has no pay period settings; onboard it first")
		}
		calc, err := payperiod.New(acct.PayPeriodType, reference)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
		switch period {
		case "current":
			p := calc.Current()
			return p.Start, p.End, nil
		case "previous":
			p := calc.Previous()
			return p.Start, p.End, nil
		default:
			return time.Time{}, time.Time{}, fmt.Errorf("period must be current or previous")
		}
	}

	if query.Get("start") == "" {
		return time.Time{}, time.Time{}, nil
	}
	start, err := time.Parse(dateFormat, query.Get("start"))
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("start must be YYYY-MM-DD")
	}
	end, err := time.Parse(dateFormat, query.Get("end"))
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("end must be YYYY-MM-DD")
	}
	return start, end, nil
}

// writeServiceError maps aggregation failures onto responses. An auth error
// down here already survived its one refresh retry, so the only fix is for
// the user to reconnect the account.
func writeServiceError(ctx context.Context, res http.ResponseWriter, err error) {
	contextLogger := log.WithContext(ctx)

	if errors.Is(err, lightspeed.ErrInvalidToken) || errors.Is(err, lightspeed.ErrInvalidGrant) {
		contextLogger.WithError(err).Warn("account credentials are no longer valid")
		util.WithBodyAndStatus(errorBody{Error: "reconnect your account"}, http.StatusUnauthorized, res)
		return
	}

	contextLogger.WithError(err).Error("timecard service call failed")
	util.WithBodyAndStatus(nil, http.StatusInternalServerError, res)
}

// roundedTimecard copies a timecard with hours rounded to 2 decimals. The
// aggregation keeps full precision so sums do not compound rounding error.
func roundedTimecard(tc *model.Timecard) *model.Timecard {
	rounded := &model.Timecard{
		Shifts: make([]model.Shift, len(tc.Shifts)),
		Totals: make(map[string]float64, len(tc.Totals)),
	}
	for i, shift := range tc.Shifts {
		shift.Hours = round2(shift.Hours)
		rounded.Shifts[i] = shift
	}
	for bucket, hours := range tc.Totals {
		rounded.Totals[bucket] = round2(hours)
	}
	return rounded
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func punchLogWorkbook(punchLog *model.PunchLog) (*excelize.File, error) {
	workbook := excelize.NewFile()

	summary := "Summary"
	workbook.SetSheetName("Sheet1", summary)
	rows := [][]interface{}{
		{"Total hours", round2(punchLog.TotalHours)},
		{},
		{"Shop", "Hours"},
	}
	for _, shop := range sortedKeys(punchLog.ShopTotals) {
		rows = append(rows, []interface{}{shop, round2(punchLog.ShopTotals[shop])})
	}
	rows = append(rows, []interface{}{}, []interface{}{"Employee", "Hours"})
	for _, name := range sortedKeys(punchLog.EmployeeTotals) {
		rows = append(rows, []interface{}{name, round2(punchLog.EmployeeTotals[name])})
	}
	if err := writeRows(workbook, summary, rows); err != nil {
		return nil, err
	}

	shiftsSheet := "Shifts"
	workbook.NewSheet(shiftsSheet)
	shiftRows := [][]interface{}{{"Date", "Shop", "Employee", "Check in", "Check out", "Hours"}}
	days := make([]string, 0, len(punchLog.Days))
	for day := range punchLog.Days {
		days = append(days, day)
	}
	sort.Strings(days)
	for _, day := range days {
		for _, shop := range sortedShiftKeys(punchLog.Days[day]) {
			for _, shift := range punchLog.Days[day][shop] {
				checkOut := ""
				if shift.CheckOut != nil {
					checkOut = shift.CheckOut.Format(time.RFC3339)
				}
				shiftRows = append(shiftRows, []interface{}{
					day, shop, shift.Name, shift.CheckIn.Format(time.RFC3339), checkOut, round2(shift.Hours),
				})
			}
		}
	}
	if err := writeRows(workbook, shiftsSheet, shiftRows); err != nil {
		return nil, err
	}

	return workbook, nil
}

func writeRows(workbook *excelize.File, sheet string, rows [][]interface{}) error {
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := workbook.SetSheetRow(sheet, cell, &row); err != nil {
			return err
		}
	}
	return nil
}

func sortedKeys(m map[string]float64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func sortedShiftKeys(m map[string][]model.Shift) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
