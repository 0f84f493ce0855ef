package http

import (
	"bytes"
	"encoding/json"
	"strings"
	"time"

	"bloodbank-backend/internal/domain"
	"bloodbank-backend/internal/service"
)

// Date accepts either a calendar date or an RFC 3339 timestamp. An empty
// string or null decodes to the zero value.
type Date struct {
	time.Time
}

func (d *Date) UnmarshalJSON(b []byte) error {
	if bytes.Equal(b, []byte("null")) {
		d.Time = time.Time{}
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	s = strings.TrimSpace(s)
	if s == "" {
		d.Time = time.Time{}
		return nil
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04", "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			d.Time = t
			return nil
		}
	}
	return domain.Validationf("invalid date %q", s)
}

func (d *Date) ptr() *time.Time {
	if d == nil || d.IsZero() {
		return nil
	}
	t := d.Time
	return &t
}

type RegisterRequest struct {
	Name        string           `json:"name"`
	Email       string           `json:"email"`
	Password    string           `json:"password"`
	Role        domain.Role      `json:"role"`
	BloodType   domain.BloodType `json:"bloodType"`
	Location    string           `json:"location"`
	DateOfBirth *Date            `json:"dateOfBirth"`
}

func (r *RegisterRequest) Validate() error {
	if strings.TrimSpace(r.Name) == "" || strings.TrimSpace(r.Email) == "" || r.Password == "" {
		return domain.Validationf("name, email and password are required")
	}
	if r.Role == "" {
		r.Role = domain.RoleDonor
	}
	return nil
}

func (r *RegisterRequest) input() service.RegisterInput {
	return service.RegisterInput{
		Name:        r.Name,
		Email:       r.Email,
		Password:    r.Password,
		Role:        r.Role,
		BloodType:   r.BloodType,
		Location:    r.Location,
		DateOfBirth: r.DateOfBirth.ptr(),
	}
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (r *LoginRequest) Validate() error {
	if strings.TrimSpace(r.Email) == "" || r.Password == "" {
		return domain.Validationf("email and password are required")
	}
	return nil
}

type AuthResponse struct {
	Token string       `json:"token"`
	User  *domain.User `json:"user"`
}

// ProfileRequest is shared by the self-service and admin user edits. Fields
// left out of the body are not changed.
type ProfileRequest struct {
	Name        *string           `json:"name"`
	Email       *string           `json:"email"`
	BloodType   *domain.BloodType `json:"bloodType"`
	Location    *string           `json:"location"`
	DateOfBirth *Date             `json:"dateOfBirth"`
}

func (r *ProfileRequest) Validate() error {
	if r.BloodType != nil && *r.BloodType != "" && !r.BloodType.Valid() {
		return domain.Validationf("invalid blood type %q", *r.BloodType)
	}
	return nil
}

func (r *ProfileRequest) update() service.ProfileUpdate {
	return service.ProfileUpdate{
		Name:        r.Name,
		Email:       r.Email,
		BloodType:   r.BloodType,
		Location:    r.Location,
		DateOfBirth: r.DateOfBirth.ptr(),
	}
}

type ScheduleRequest struct {
	Date     Date   `json:"date"`
	Location string `json:"location"`
}

func (r *ScheduleRequest) Validate() error {
	if r.Date.IsZero() {
		return domain.Validationf("donation date is required")
	}
	if strings.TrimSpace(r.Location) == "" {
		return domain.Validationf("location is required")
	}
	return nil
}

type CreateBloodRequest struct {
	BloodType domain.BloodType `json:"bloodType"`
	Units     int32            `json:"units"`
	Location  string           `json:"location"`
	Urgency   domain.Urgency   `json:"urgency"`
	Reason    string           `json:"reason"`
}

func (r *CreateBloodRequest) Validate() error {
	if !r.BloodType.Valid() {
		return domain.Validationf("invalid blood type %q", r.BloodType)
	}
	if r.Units < 1 {
		return domain.Validationf("units must be at least 1")
	}
	return nil
}

func (r *CreateBloodRequest) input() service.CreateRequestInput {
	return service.CreateRequestInput{
		BloodType: r.BloodType,
		Units:     r.Units,
		Location:  r.Location,
		Urgency:   r.Urgency,
		Reason:    r.Reason,
	}
}

// InventoryRequest carries a blood type and a unit count. For the PUT form
// the blood type comes from the path.
type InventoryRequest struct {
	BloodType domain.BloodType `json:"bloodType"`
	Units     *int32           `json:"units"`
}

func (r *InventoryRequest) Validate() error {
	if !r.BloodType.Valid() {
		return domain.Validationf("invalid blood type %q", r.BloodType)
	}
	if r.Units == nil {
		return domain.Validationf("units is required")
	}
	if *r.Units < 0 {
		return domain.Validationf("units must not be negative")
	}
	return nil
}

type StatusRequest struct {
	Status string `json:"status"`
}

func (r *StatusRequest) Validate() error {
	r.Status = strings.TrimSpace(r.Status)
	if r.Status == "" {
		return domain.Validationf("status is required")
	}
	return nil
}

type BroadcastRequest struct {
	Type       domain.NotificationType `json:"type"`
	Recipients []string                `json:"recipients"`
	Message    string                  `json:"message"`
	BloodType  domain.BloodType        `json:"bloodType"`
}

func (r *BroadcastRequest) Validate() error {
	if strings.TrimSpace(r.Message) == "" {
		return domain.Validationf("message is required")
	}
	if len(r.Recipients) == 0 {
		return domain.Validationf("at least one recipient is required")
	}
	return nil
}

func (r *BroadcastRequest) input() service.BroadcastInput {
	return service.BroadcastInput{
		Type:       r.Type,
		Recipients: r.Recipients,
		Message:    r.Message,
		BloodType:  r.BloodType,
	}
}
