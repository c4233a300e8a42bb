package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/pulseboard-dev/pulseboard/db"
	"github.com/pulseboard-dev/pulseboard/internal/models"
	"gorm.io/gorm"
)

type DashboardResponse struct {
	Teams              int64          `json:"teams"`
	EscalationPolicies int64          `json:"escalation_policies"`
	Services           int64          `json:"services"`
	Incidents          int64          `json:"incidents"`
	LastSync           *LastSyncBrief `json:"last_sync"`
}

type LastSyncBrief struct {
	Status     string `json:"status"`
	FinishedAt string `json:"finished_at"`
}

type ServiceSummary struct {
	ID               string   `json:"id"`
	Name             string   `json:"name"`
	Description      string   `json:"description"`
	Status           string   `json:"status"`
	URL              string   `json:"url"`
	EscalationPolicy string   `json:"escalation_policy"`
	Teams            []string `json:"teams"`
	IncidentCount    int64    `json:"incident_count"`
}

type ServiceIncidentsResponse struct {
	ServiceID    string            `json:"service_id"`
	ServiceName  string            `json:"service_name"`
	Incidents    []models.Incident `json:"incidents"`
	StatusCounts map[string]int64  `json:"status_counts"`
}

// Dashboard reports per-type row counts and the outcome of the latest sync
// pass.
func Dashboard(ctx *gin.Context) {
	var response DashboardResponse

	counts := []struct {
		model interface{}
		dest  *int64
	}{
		{&models.Team{}, &response.Teams},
		{&models.EscalationPolicy{}, &response.EscalationPolicies},
		{&models.Service{}, &response.Services},
		{&models.Incident{}, &response.Incidents},
	}

	for _, c := range counts {
		if err := db.DB.Model(c.model).Count(c.dest).Error; err != nil {
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to count records"})
			return
		}
	}

	var run models.SyncRun

	if err := db.DB.Order("id DESC").First(&run).Error; err == nil {
		response.LastSync = &LastSyncBrief{
			Status:     run.Status,
			FinishedAt: run.FinishedAt.Format("2006-01-02 15:04:05"),
		}
	}

	ctx.JSON(http.StatusOK, response)
}

func ListTeams(ctx *gin.Context) {
	var teams []models.Team

	if err := db.DB.Order("id").Find(&teams).Error; err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve teams"})
		return
	}

	ctx.JSON(http.StatusOK, teams)
}

func ListEscalationPolicies(ctx *gin.Context) {
	var policies []models.EscalationPolicy

	if err := db.DB.Preload("Teams").Order("id").Find(&policies).Error; err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve escalation policies"})
		return
	}

	ctx.JSON(http.StatusOK, policies)
}

func ListServices(ctx *gin.Context) {
	summaries, err := buildServiceSummaries()

	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve services"})
		return
	}

	ctx.JSON(http.StatusOK, summaries)
}

func ListIncidents(ctx *gin.Context) {
	query := db.DB.Order("id")

	if status := ctx.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}

	var incidents []models.Incident

	if err := query.Find(&incidents).Error; err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve incidents"})
		return
	}

	ctx.JSON(http.StatusOK, incidents)
}

// ServiceIncidents lists one service's incidents together with a
// status-to-count aggregation.
func ServiceIncidents(ctx *gin.Context) {
	serviceID := ctx.Param("service_id")

	var service models.Service

	if err := db.DB.First(&service, "id = ?", serviceID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "Service not found"})
		} else {
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve service"})
		}
		return
	}

	var incidents []models.Incident

	if err := db.DB.Where("service_id = ?", serviceID).Order("id").Find(&incidents).Error; err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve incidents"})
		return
	}

	statusCounts := make(map[string]int64)

	for _, incident := range incidents {
		statusCounts[incident.Status]++
	}

	ctx.JSON(http.StatusOK, ServiceIncidentsResponse{
		ServiceID:    service.ID,
		ServiceName:  service.Name,
		Incidents:    incidents,
		StatusCounts: statusCounts,
	})
}

func buildServiceSummaries() ([]ServiceSummary, error) {
	var services []models.Service

	if err := db.DB.Preload("Teams").Preload("EscalationPolicy").Order("id").Find(&services).Error; err != nil {
		return nil, err
	}

	summaries := make([]ServiceSummary, 0, len(services))

	for _, service := range services {
		summary := ServiceSummary{
			ID:          service.ID,
			Name:        service.Name,
			Description: service.Description,
			Status:      service.Status,
			URL:         service.URL,
			Teams:       make([]string, 0, len(service.Teams)),
		}

		if service.EscalationPolicy != nil {
			summary.EscalationPolicy = service.EscalationPolicy.Name
		}

		for _, team := range service.Teams {
			summary.Teams = append(summary.Teams, team.Name)
		}

		if err := db.DB.Model(&models.Incident{}).Where("service_id = ?", service.ID).Count(&summary.IncidentCount).Error; err != nil {
			return nil, err
		}

		summaries = append(summaries, summary)
	}

	return summaries, nil
}
