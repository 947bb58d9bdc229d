package api

import "net/http"

// dashboardHandler serves the embedded monitoring page.
type dashboardHandler struct{}

func newDashboardHandler() *dashboardHandler {
	return &dashboardHandler{}
}

// HandleDashboard answers GET /dashboard with an HTML page that polls
// /stats, /rankings, and /reports/correlation, and follows live tuning
// updates over /ws.
func (h *dashboardHandler) HandleDashboard(w http.ResponseWriter, r *http.Request) {
	http.ServeFileFS(w, r, dashboardFS, "dashboard.html")
}
