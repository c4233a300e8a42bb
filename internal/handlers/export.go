package handlers

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/pulseboard-dev/pulseboard/db"
	"github.com/pulseboard-dev/pulseboard/internal/models"
)

// DownloadCSV streams one of the named reports as a CSV attachment. An empty
// mirror yields a header-only document.
func DownloadCSV(ctx *gin.Context) {
	report := ctx.Param("report")

	var (
		body []byte
		err  error
	)

	switch report {
	case "total_services":
		body, err = totalServicesCSV()
	case "total_incidents":
		body, err = totalIncidentsCSV()
	default:
		ctx.JSON(http.StatusNotFound, gin.H{"error": "Unknown report: " + report})
		return
	}

	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to build report"})
		return
	}

	ctx.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s.csv", report))
	ctx.Data(http.StatusOK, "text/csv", body)
}

func totalServicesCSV() ([]byte, error) {
	summaries, err := buildServiceSummaries()

	if err != nil {
		return nil, err
	}

	rows := [][]string{
		{"service_id", "name", "status", "escalation_policy", "teams", "total_incidents"},
	}

	for _, summary := range summaries {
		rows = append(rows, []string{
			summary.ID,
			summary.Name,
			summary.Status,
			summary.EscalationPolicy,
			strings.Join(summary.Teams, ";"),
			strconv.FormatInt(summary.IncidentCount, 10),
		})
	}

	return writeCSV(rows)
}

func totalIncidentsCSV() ([]byte, error) {
	var incidents []models.Incident

	if err := db.DB.Preload("Service").Order("id").Find(&incidents).Error; err != nil {
		return nil, err
	}

	rows := [][]string{
		{"incident_id", "title", "status", "service", "url"},
	}

	for _, incident := range incidents {
		service := ""

		if incident.Service != nil {
			service = incident.Service.Name
		}

		rows = append(rows, []string{
			incident.ID,
			incident.Title,
			incident.Status,
			service,
			incident.URL,
		})
	}

	return writeCSV(rows)
}

func writeCSV(rows [][]string) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	if err := writer.WriteAll(rows); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}
