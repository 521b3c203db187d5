package handlers

import (
	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"medihelp/internal/middleware"
	"medihelp/internal/models"
	"medihelp/internal/services"
	"medihelp/internal/utils"
)

// EmergencyHandler exposes SOS creation, status tracking and hospital lookup.
type EmergencyHandler struct {
	emergencyService *services.EmergencyService
	defaultRadiusKM  float64
}

func NewEmergencyHandler(emergencyService *services.EmergencyService, defaultRadiusKM float64) *EmergencyHandler {
	if defaultRadiusKM <= 0 {
		defaultRadiusKM = utils.DefaultHospitalRadiusKM
	}
	return &EmergencyHandler{
		emergencyService: emergencyService,
		defaultRadiusKM:  defaultRadiusKM,
	}
}

// Latitude and longitude are pointers so an absent coordinate is
// distinguishable from an explicit 0 (the equator and prime meridian are
// legal positions).
type createSOSRequest struct {
	Latitude    *float64            `json:"latitude"`
	Longitude   *float64            `json:"longitude"`
	HospitalID  string              `json:"hospital_id"`
	Type        string              `json:"type"`
	Description string              `json:"description"`
	MedicalInfo *models.MedicalInfo `json:"medical_info"`
}

type updateStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// CreateSOS accepts an emergency request and returns it immediately with
// status pending. Hospital notification happens in the background and never
// blocks or fails this call.
func (h *EmergencyHandler) CreateSOS(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		utils.UnauthorizedResponse(c)
		return
	}

	var req createSOSRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "invalid request payload")
		return
	}
	if req.Latitude == nil || req.Longitude == nil {
		utils.BadRequestResponse(c, "latitude and longitude are required")
		return
	}

	input := services.CreateEmergencyInput{
		UserID:      userID,
		Location:    models.GeoPoint{Latitude: *req.Latitude, Longitude: *req.Longitude},
		Type:        models.EmergencyType(req.Type),
		Description: req.Description,
		MedicalInfo: req.MedicalInfo,
	}

	if req.HospitalID != "" {
		hospitalID, err := primitive.ObjectIDFromHex(req.HospitalID)
		if err != nil {
			utils.BadRequestResponse(c, "Invalid hospital ID")
			return
		}
		input.HospitalID = &hospitalID
	}

	request, err := h.emergencyService.CreateEmergencyRequest(c.Request.Context(), input)
	if err != nil {
		utils.ServiceErrorResponse(c, err)
		return
	}

	utils.CreatedResponse(c, "Emergency request created successfully", request)
}

// GetRequest returns one emergency request by ID.
func (h *EmergencyHandler) GetRequest(c *gin.Context) {
	requestID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid request ID")
		return
	}

	request, err := h.emergencyService.GetEmergencyRequest(c.Request.Context(), requestID)
	if err != nil {
		utils.ServiceErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, "Emergency request retrieved successfully", request)
}

// ListMine returns the caller's emergency requests, newest first.
func (h *EmergencyHandler) ListMine(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		utils.UnauthorizedResponse(c)
		return
	}

	requests, err := h.emergencyService.ListUserRequests(c.Request.Context(), userID)
	if err != nil {
		utils.ServiceErrorResponse(c, err)
		return
	}

	utils.SuccessResponseWithMeta(c, "Emergency requests retrieved successfully", requests, &utils.Meta{Count: len(requests)})
}

// UpdateStatus advances an emergency request through its lifecycle. Illegal
// transitions are rejected with a conflict.
func (h *EmergencyHandler) UpdateStatus(c *gin.Context) {
	requestID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid request ID")
		return
	}

	var req updateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "status is required")
		return
	}

	request, err := h.emergencyService.UpdateStatus(c.Request.Context(), requestID, models.EmergencyStatus(req.Status))
	if err != nil {
		utils.ServiceErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, "Emergency status updated successfully", request)
}

// NearbyHospitals lists hospitals within a radius of a point, closest first.
func (h *EmergencyHandler) NearbyHospitals(c *gin.Context) {
	latitude, ok := utils.GetFloatQuery(c, "latitude")
	if !ok {
		utils.BadRequestResponse(c, "latitude is required")
		return
	}
	longitude, ok := utils.GetFloatQuery(c, "longitude")
	if !ok {
		utils.BadRequestResponse(c, "longitude is required")
		return
	}

	radiusKm := h.defaultRadiusKM
	if value, ok := utils.GetFloatQuery(c, "radius_km"); ok {
		radiusKm = value
	}

	hospitals, err := h.emergencyService.GetNearbyHospitals(c.Request.Context(), latitude, longitude, radiusKm)
	if err != nil {
		utils.ServiceErrorResponse(c, err)
		return
	}

	utils.SuccessResponseWithMeta(c, "Hospitals retrieved successfully", hospitals, &utils.Meta{Count: len(hospitals)})
}
