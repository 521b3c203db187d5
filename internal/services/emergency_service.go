package services

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"medihelp/internal/models"
	"medihelp/internal/repositories/interfaces"
	"medihelp/internal/utils"
	"medihelp/pkg/logger"
	"medihelp/pkg/maps"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// EmergencyService owns the SOS request lifecycle: creation, the status
// state machine, nearby-hospital lookup and the detached alert dispatch.
// Notification outcomes never affect the request state or the creating call.
type EmergencyService struct {
	emergencies interfaces.EmergencyRepository
	hospitals   interfaces.HospitalRepository
	users       interfaces.UserRepository
	notifier    *NotificationService
	geocoder    maps.Geocoder
	log         *logger.Logger
	radiusKm    float64

	dispatches sync.WaitGroup
}

func NewEmergencyService(
	emergencies interfaces.EmergencyRepository,
	hospitals interfaces.HospitalRepository,
	users interfaces.UserRepository,
	notifier *NotificationService,
	geocoder maps.Geocoder,
	log *logger.Logger,
	radiusKm float64,
) *EmergencyService {
	if radiusKm <= 0 {
		radiusKm = utils.DefaultHospitalRadiusKM
	}
	return &EmergencyService{
		emergencies: emergencies,
		hospitals:   hospitals,
		users:       users,
		notifier:    notifier,
		geocoder:    geocoder,
		log:         log,
		radiusKm:    radiusKm,
	}
}

type CreateEmergencyInput struct {
	UserID      primitive.ObjectID
	Location    models.GeoPoint
	HospitalID  *primitive.ObjectID
	Type        models.EmergencyType
	Description string
	MedicalInfo *models.MedicalInfo
}

// CreateEmergencyRequest validates and persists the request with status
// pending, then fires the hospital alert dispatch detached from the call.
// The request is returned before any notification attempt completes.
func (s *EmergencyService) CreateEmergencyRequest(ctx context.Context, input CreateEmergencyInput) (*models.EmergencyRequest, error) {
	if input.UserID.IsZero() {
		return nil, fmt.Errorf("%w: user_id is required", utils.ErrValidation)
	}
	if !input.Location.Valid() {
		return nil, fmt.Errorf("%w: location must contain finite coordinates within range", utils.ErrValidation)
	}
	if input.Type == "" {
		input.Type = models.EmergencyTypeMedical
	}
	if !models.ValidEmergencyType(input.Type) {
		return nil, fmt.Errorf("%w: unknown emergency type %q", utils.ErrValidation, input.Type)
	}

	request := &models.EmergencyRequest{
		UserID:      input.UserID,
		Location:    input.Location,
		Type:        input.Type,
		Description: input.Description,
		MedicalInfo: input.MedicalInfo,
		HospitalID:  input.HospitalID,
		Status:      models.EmergencyStatusPending,
	}

	if err := s.emergencies.Create(ctx, request); err != nil {
		return nil, err
	}

	s.log.WithFields(map[string]interface{}{
		"request_id": request.ID.Hex(),
		"user_id":    request.UserID.Hex(),
		"type":       request.Type,
	}).Info("emergency request created")

	dispatched := *request
	s.dispatches.Add(1)
	go s.dispatchAlerts(&dispatched)

	return request, nil
}

// WaitForDispatches blocks until all in-flight alert dispatches finish.
// Called on shutdown so detached sends are not cut off mid-flight.
func (s *EmergencyService) WaitForDispatches() {
	s.dispatches.Wait()
}

// dispatchAlerts resolves the target hospital and sends the alert email and
// SMS. It runs detached from the creating request; every failure here is
// logged and swallowed.
func (s *EmergencyService) dispatchAlerts(request *models.EmergencyRequest) {
	defer s.dispatches.Done()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	log := s.log.WithField("request_id", request.ID.Hex())

	hospital, err := s.resolveHospital(ctx, request)
	if err != nil {
		log.WithError(err).Warn("no hospital available for alert dispatch")
		return
	}

	patientName := "Unknown patient"
	if user, err := s.users.GetByID(ctx, request.UserID); err == nil {
		patientName = user.Name
	}

	address := ""
	if s.geocoder != nil {
		if result, err := s.geocoder.ReverseGeocode(ctx, request.Location.Latitude, request.Location.Longitude); err == nil {
			address = result.Address
		} else {
			log.WithError(err).Debug("reverse geocode failed")
		}
	}

	mapLink := fmt.Sprintf("https://www.google.com/maps?q=%f,%f", request.Location.Latitude, request.Location.Longitude)

	var results []<-chan NotificationResult
	if hospital.Email != "" {
		subject := fmt.Sprintf("Emergency SOS Alert: %s", request.Type)
		body := buildAlertEmail(patientName, request, address, mapLink)
		results = append(results, s.notifier.SendEmail(hospital.Email, subject, body))
	}
	if hospital.Contact != "" {
		body := buildAlertSMS(patientName, request, mapLink)
		results = append(results, s.notifier.SendSMS(hospital.Contact, body))
	}

	if len(results) == 0 {
		log.WithField("hospital_id", hospital.ID.Hex()).Warn("hospital has no reachable contact channel")
		return
	}

	// The creating request has long since returned; this goroutine is the
	// place where completion status gets recorded.
	for _, ch := range results {
		result := <-ch
		if result.Err != nil {
			log.WithError(result.Err).WithField("channel", result.Channel).Error("emergency alert delivery failed")
		} else {
			log.WithFields(map[string]interface{}{
				"channel":    result.Channel,
				"message_id": result.MessageID,
			}).Info("emergency alert delivered")
		}
	}
}

func (s *EmergencyService) resolveHospital(ctx context.Context, request *models.EmergencyRequest) (*models.Hospital, error) {
	if request.HospitalID != nil {
		return s.hospitals.GetByID(ctx, *request.HospitalID)
	}

	nearby, err := s.GetNearbyHospitals(ctx, request.Location.Latitude, request.Location.Longitude, s.radiusKm)
	if err != nil {
		return nil, err
	}
	if len(nearby) == 0 {
		return nil, fmt.Errorf("no hospital within %.0f km: %w", s.radiusKm, utils.ErrNotFound)
	}

	return nearby[0].Hospital, nil
}

func (s *EmergencyService) GetEmergencyRequest(ctx context.Context, id primitive.ObjectID) (*models.EmergencyRequest, error) {
	return s.emergencies.GetByID(ctx, id)
}

func (s *EmergencyService) ListUserRequests(ctx context.Context, userID primitive.ObjectID) ([]*models.EmergencyRequest, error) {
	return s.emergencies.GetByUserID(ctx, userID)
}

// UpdateStatus applies one transition of the status state machine. Invalid
// targets fail with ErrInvalidTransition and leave the record unchanged.
func (s *EmergencyService) UpdateStatus(ctx context.Context, id primitive.ObjectID, newStatus models.EmergencyStatus) (*models.EmergencyRequest, error) {
	if !models.ValidEmergencyStatus(newStatus) {
		return nil, fmt.Errorf("%w: unknown status %q", utils.ErrValidation, newStatus)
	}

	request, err := s.emergencies.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if !request.Status.CanTransitionTo(newStatus) {
		return nil, fmt.Errorf("%w: %s -> %s", utils.ErrInvalidTransition, request.Status, newStatus)
	}

	updates := map[string]interface{}{}
	now := time.Now()
	switch newStatus {
	case models.EmergencyStatusDispatched:
		updates["dispatched_at"] = now
	case models.EmergencyStatusResolved:
		updates["resolved_at"] = now
	}

	ok, err := s.emergencies.TransitionStatus(ctx, id, request.Status, newStatus, updates)
	if err != nil {
		return nil, err
	}
	if !ok {
		// A concurrent transition won; re-read to report the actual state.
		current, readErr := s.emergencies.GetByID(ctx, id)
		if readErr != nil {
			return nil, readErr
		}
		return nil, fmt.Errorf("%w: %s -> %s", utils.ErrInvalidTransition, current.Status, newStatus)
	}

	s.log.WithFields(map[string]interface{}{
		"request_id": id.Hex(),
		"from":       request.Status,
		"to":         newStatus,
	}).Info("emergency status updated")

	return s.emergencies.GetByID(ctx, id)
}

// GetNearbyHospitals returns hospitals within radiusKm of the query point,
// ascending by distance.
func (s *EmergencyService) GetNearbyHospitals(ctx context.Context, latitude, longitude, radiusKm float64) ([]*models.HospitalDistance, error) {
	point := models.GeoPoint{Latitude: latitude, Longitude: longitude}
	if !point.Valid() {
		return nil, fmt.Errorf("%w: coordinates out of range", utils.ErrValidation)
	}
	if radiusKm <= 0 {
		radiusKm = s.radiusKm
	}

	hospitals, err := s.hospitals.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	var nearby []*models.HospitalDistance
	for _, hospital := range hospitals {
		distance := utils.DistanceKm(latitude, longitude, hospital.Location.Latitude, hospital.Location.Longitude)
		if distance <= radiusKm {
			nearby = append(nearby, &models.HospitalDistance{
				Hospital:   hospital,
				DistanceKm: distance,
			})
		}
	}

	sort.Slice(nearby, func(i, j int) bool {
		return nearby[i].DistanceKm < nearby[j].DistanceKm
	})

	return nearby, nil
}

func buildAlertEmail(patientName string, request *models.EmergencyRequest, address, mapLink string) string {
	var b strings.Builder

	fmt.Fprintf(&b, "<h2>Emergency SOS Alert</h2>")
	fmt.Fprintf(&b, "<p><strong>Patient:</strong> %s</p>", patientName)
	fmt.Fprintf(&b, "<p><strong>Type:</strong> %s</p>", request.Type)
	fmt.Fprintf(&b, "<p><strong>Time:</strong> %s</p>", request.CreatedAt.Format(time.RFC1123))
	fmt.Fprintf(&b, "<p><strong>Coordinates:</strong> %f, %f (<a href=%q>map</a>)</p>",
		request.Location.Latitude, request.Location.Longitude, mapLink)
	if address != "" {
		fmt.Fprintf(&b, "<p><strong>Address:</strong> %s</p>", address)
	}
	if request.Description != "" {
		fmt.Fprintf(&b, "<p><strong>Description:</strong> %s</p>", request.Description)
	}
	if info := request.MedicalInfo; info != nil {
		fmt.Fprintf(&b, "<h3>Medical Information</h3>")
		if info.BloodGroup != "" {
			fmt.Fprintf(&b, "<p><strong>Blood group:</strong> %s</p>", info.BloodGroup)
		}
		if len(info.Allergies) > 0 {
			fmt.Fprintf(&b, "<p><strong>Allergies:</strong> %s</p>", strings.Join(info.Allergies, ", "))
		}
		if len(info.MedicalConditions) > 0 {
			fmt.Fprintf(&b, "<p><strong>Conditions:</strong> %s</p>", strings.Join(info.MedicalConditions, ", "))
		}
	}

	return b.String()
}

func buildAlertSMS(patientName string, request *models.EmergencyRequest, mapLink string) string {
	return fmt.Sprintf("SOS %s: %s needs help. Location: %s", request.Type, patientName, mapLink)
}
