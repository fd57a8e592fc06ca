package internal

import (
	"context"
	"net/http"
	"time"

	"github.com/wildflower-dev/timecard-service/internal/account"
	"github.com/wildflower-dev/timecard-service/internal/config"
	"github.com/wildflower-dev/timecard-service/internal/lightspeed"
	"github.com/wildflower-dev/timecard-service/internal/model"
)

// TimecardAPIHandler is the aggregation surface the HTTP layer drives.
type TimecardAPIHandler interface {
	ListEmployees(ctx context.Context, creds lightspeed.Credentials) ([]model.EmployeeInfo, error)
	GetEmployeeTimecard(ctx context.Context, creds lightspeed.Credentials, loc *time.Location,
		employeeID string, start, end time.Time) (*model.Timecard, error)
	GetPunchLog(ctx context.Context, creds lightspeed.Credentials, loc *time.Location,
		start, end time.Time) (*model.PunchLog, error)
}

func Routes(handler TimecardAPIHandler, store account.Store) []config.Route {
	return []config.Route{
		{
			Path:    "/accounts/{accountID}/employees",
			Method:  http.MethodGet,
			Handler: EmployeesHandler(handler, store),
		},
		{
			Path:    "/accounts/{accountID}/timecard/{employeeID}",
			Method:  http.MethodGet,
			Handler: TimecardHandler(handler, store),
		},
		{
			Path:    "/accounts/{accountID}/punchlog",
			Method:  http.MethodGet,
			Handler: PunchLogHandler(handler, store),
		},
		{
			Path:    "/accounts/{accountID}/punchlog/export",
			Method:  http.MethodGet,
			Handler: PunchLogExportHandler(handler, store),
		},
		{
			Path:    "/accounts/{accountID}/onboard",
			Method:  http.MethodPost,
			Handler: OnboardHandler(store),
		},
	}
}
