package middlewares

import (
	"net/http"

	"github.com/wildflower-dev/timecard-service/internal/util"
)

//RuntimeHealthCheck reports process liveness
func RuntimeHealthCheck() func(w http.ResponseWriter, r *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		util.WithBodyAndStatus("All OK", http.StatusOK, w)
	}
}
