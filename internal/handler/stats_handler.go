package handler

import "net/http"

// DashboardStats handles GET /api/v1/stats/stats.
func (h *Handlers) DashboardStats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	stats, err := h.stats.Dashboard(ctx)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	h.writeJSONResponse(w, http.StatusOK, envelope{
		"message": "Stats fetched successfully",
		"data":    stats,
	})
}

// PieCharts handles GET /api/v1/stats/pie.
func (h *Handlers) PieCharts(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	charts, err := h.stats.PieCharts(ctx)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	h.writeJSONResponse(w, http.StatusOK, envelope{
		"message": "Pie charts fetched successfully",
		"data":    charts,
	})
}

// BarCharts handles GET /api/v1/stats/bar.
func (h *Handlers) BarCharts(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	charts, err := h.stats.BarCharts(ctx)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	h.writeJSONResponse(w, http.StatusOK, envelope{
		"message": "Bar charts fetched successfully",
		"data":    envelope{"charts": charts},
	})
}

// LineCharts handles GET /api/v1/stats/line.
func (h *Handlers) LineCharts(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	charts, err := h.stats.LineCharts(ctx)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	h.writeJSONResponse(w, http.StatusOK, envelope{
		"message": "Line charts fetched successfully",
		"data":    envelope{"charts": charts},
	})
}
