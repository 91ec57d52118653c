package handlers

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/linemk/doggys-shop/internal/service"
)

// SalesReportHandler GET /api/reports/sales?from=&to=&q=
func SalesReportHandler(log *slog.Logger, reports service.ReportService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.SalesReportHandler"
		logger := log.With(slog.String("op", op))

		from, to, err := dateRange(r)
		if err != nil {
			writeError(w, logger, "invalid date range", err)
			return
		}
		report, err := reports.Sales(r.Context(), service.SalesFilter{
			From:  from,
			To:    to,
			Query: strings.TrimSpace(r.URL.Query().Get("q")),
		})
		if err != nil {
			writeError(w, logger, "failed to build sales report", err)
			return
		}
		writeJSON(w, logger, http.StatusOK, toSalesReportResponse(report))
	}
}
