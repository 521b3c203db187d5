package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"medihelp/internal/models"
	"medihelp/internal/repositories/memory"
	"medihelp/internal/services"
	"medihelp/internal/utils"
	"medihelp/pkg/logger"
)

type emergencyHandlerFixture struct {
	router  *gin.Engine
	service *services.EmergencyService
	patient primitive.ObjectID
}

func newEmergencyHandlerFixture(t *testing.T, hospitals ...*models.Hospital) *emergencyHandlerFixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	log := logger.NewNop()
	users := memory.NewUserRepository()
	patient := primitive.NewObjectID()
	users.Add(&models.User{ID: patient, Name: "Amina", Role: models.UserRolePatient})

	notifier := services.NewNotificationService(nil, nil, log, time.Second)
	service := services.NewEmergencyService(
		memory.NewEmergencyRepository(),
		memory.NewHospitalRepository(hospitals...),
		users,
		notifier,
		nil,
		log,
		utils.DefaultHospitalRadiusKM,
	)
	handler := NewEmergencyHandler(service, utils.DefaultHospitalRadiusKM)

	router := gin.New()
	group := router.Group("/api/v1/emergency", authAs(patient))
	group.POST("/sos", handler.CreateSOS)
	group.GET("/requests", handler.ListMine)
	group.GET("/requests/:id", handler.GetRequest)
	group.PATCH("/requests/:id/status", handler.UpdateStatus)
	group.GET("/hospitals/nearby", handler.NearbyHospitals)

	return &emergencyHandlerFixture{router: router, service: service, patient: patient}
}

func (f *emergencyHandlerFixture) do(t *testing.T, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	f.router.ServeHTTP(w, req)
	return w
}

func TestCreateSOSEndpoint(t *testing.T) {
	fx := newEmergencyHandlerFixture(t)

	w := fx.do(t, http.MethodPost, "/api/v1/emergency/sos", gin.H{
		"latitude":    6.5244,
		"longitude":   3.3792,
		"description": "chest pain",
	})
	assert.Equal(t, http.StatusCreated, w.Code)
	fx.service.WaitForDispatches()

	var response struct {
		Success bool                     `json:"success"`
		Data    *models.EmergencyRequest `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	require.NotNil(t, response.Data)
	assert.Equal(t, models.EmergencyStatusPending, response.Data.Status)
	assert.Equal(t, fx.patient, response.Data.UserID)

	w = fx.do(t, http.MethodPost, "/api/v1/emergency/sos", gin.H{
		"latitude":  120.0,
		"longitude": 3.3792,
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = fx.do(t, http.MethodPost, "/api/v1/emergency/sos", gin.H{
		"latitude":    6.5244,
		"longitude":   3.3792,
		"hospital_id": "junk",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCreateSOSRequiresLocation(t *testing.T) {
	fx := newEmergencyHandlerFixture(t)

	w := fx.do(t, http.MethodPost, "/api/v1/emergency/sos", gin.H{"description": "help"})
	assert.Equal(t, http.StatusBadRequest, w.Code, "no coordinates at all")

	w = fx.do(t, http.MethodPost, "/api/v1/emergency/sos", gin.H{"latitude": 6.5244})
	assert.Equal(t, http.StatusBadRequest, w.Code, "longitude missing")

	w = fx.do(t, http.MethodPost, "/api/v1/emergency/sos", gin.H{"longitude": 3.3792})
	assert.Equal(t, http.StatusBadRequest, w.Code, "latitude missing")

	// Explicit zeros are a real position, not an absent one.
	w = fx.do(t, http.MethodPost, "/api/v1/emergency/sos", gin.H{"latitude": 0.0, "longitude": 0.0})
	assert.Equal(t, http.StatusCreated, w.Code)
	fx.service.WaitForDispatches()
}

func TestUpdateStatusEndpoint(t *testing.T) {
	fx := newEmergencyHandlerFixture(t)

	w := fx.do(t, http.MethodPost, "/api/v1/emergency/sos", gin.H{
		"latitude":  6.5244,
		"longitude": 3.3792,
	})
	require.Equal(t, http.StatusCreated, w.Code)
	fx.service.WaitForDispatches()

	var created struct {
		Data *models.EmergencyRequest `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	base := "/api/v1/emergency/requests/" + created.Data.ID.Hex()

	w = fx.do(t, http.MethodPatch, base+"/status", gin.H{"status": "acknowledged"})
	assert.Equal(t, http.StatusOK, w.Code)

	w = fx.do(t, http.MethodPatch, base+"/status", gin.H{"status": "resolved"})
	assert.Equal(t, http.StatusBadRequest, w.Code, "acknowledged cannot jump to resolved")

	w = fx.do(t, http.MethodPatch, base+"/status", gin.H{"status": "escalated"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = fx.do(t, http.MethodPatch, base+"/status", gin.H{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestNearbyHospitalsEndpoint(t *testing.T) {
	fx := newEmergencyHandlerFixture(t,
		&models.Hospital{ID: primitive.NewObjectID(), Name: "Close", Location: models.GeoPoint{Latitude: 0, Longitude: 0.018}},
		&models.Hospital{ID: primitive.NewObjectID(), Name: "Far", Location: models.GeoPoint{Latitude: 0, Longitude: 0.5}},
	)

	w := fx.do(t, http.MethodGet, "/api/v1/emergency/hospitals/nearby?latitude=0&longitude=0", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	var response struct {
		Data []*models.HospitalDistance `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	require.Len(t, response.Data, 1)
	assert.Equal(t, "Close", response.Data[0].Hospital.Name)

	w = fx.do(t, http.MethodGet, "/api/v1/emergency/hospitals/nearby?latitude=0&longitude=0&radius_km=60", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	response.Data = nil
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Len(t, response.Data, 2)

	w = fx.do(t, http.MethodGet, "/api/v1/emergency/hospitals/nearby?longitude=0", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetAndListRequestsEndpoint(t *testing.T) {
	fx := newEmergencyHandlerFixture(t)

	w := fx.do(t, http.MethodPost, "/api/v1/emergency/sos", gin.H{
		"latitude":  6.5244,
		"longitude": 3.3792,
	})
	require.Equal(t, http.StatusCreated, w.Code)
	fx.service.WaitForDispatches()

	var created struct {
		Data *models.EmergencyRequest `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))

	w = fx.do(t, http.MethodGet, "/api/v1/emergency/requests/"+created.Data.ID.Hex(), nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = fx.do(t, http.MethodGet, "/api/v1/emergency/requests/"+primitive.NewObjectID().Hex(), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = fx.do(t, http.MethodGet, "/api/v1/emergency/requests", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	var listed struct {
		Data []*models.EmergencyRequest `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &listed))
	assert.Len(t, listed.Data, 1)
}
