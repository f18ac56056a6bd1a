package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/terraincognita07/ovumcy-bot/internal/models"
)

var (
	ErrUserIDRequired           = errors.New("user id is required")
	ErrNameRequired             = errors.New("name is required")
	ErrAgeOutOfRange            = errors.New("age out of range")
	ErrLastPeriodDateRequired   = errors.New("last period date is required")
	ErrLastPeriodInFuture       = errors.New("last period date is in the future")
	ErrPeriodDurationOutOfRange = errors.New("period duration out of range")
	ErrCycleLengthOutOfRange    = errors.New("cycle length out of range")
	ErrEnergyLevelOutOfRange    = errors.New("energy level out of range")
)

// ValidationError reports a single rejected input field. It is always recoverable: the caller
// asks for the same field again.
type ValidationError struct {
	Field string
	Err   error
}

func (err *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %v", err.Field, err.Err)
}

func (err *ValidationError) Unwrap() error {
	return err.Err
}

type RegistrationInput struct {
	UserID         int64     `validate:"required"`
	Name           string    `validate:"required,max=64"`
	Age            int       `validate:"min=8,max=60"`
	LastPeriodDate time.Time `validate:"required"`
	PeriodDuration int       `validate:"min=1,max=10"`
	CycleLength    int       `validate:"min=21,max=45"`
	Language       string
}

// CycleSettingsInput updates any subset of the cycle parameters.
type CycleSettingsInput struct {
	LastPeriodDate *time.Time
	PeriodDuration *int `validate:"omitempty,min=1,max=10"`
	CycleLength    *int `validate:"omitempty,min=21,max=45"`
}

var inputValidator = validator.New(validator.WithRequiredStructEnabled())

var fieldErrors = map[string]error{
	"UserID":         ErrUserIDRequired,
	"Name":           ErrNameRequired,
	"Age":            ErrAgeOutOfRange,
	"LastPeriodDate": ErrLastPeriodDateRequired,
	"PeriodDuration": ErrPeriodDurationOutOfRange,
	"CycleLength":    ErrCycleLengthOutOfRange,
}

var fieldNames = map[string]string{
	"UserID":         "user_id",
	"Name":           "name",
	"Age":            "age",
	"LastPeriodDate": "last_period_date",
	"PeriodDuration": "period_duration",
	"CycleLength":    "cycle_length",
}

func ValidateRegistration(input RegistrationInput, now time.Time) (RegistrationInput, error) {
	input.Name = strings.TrimSpace(input.Name)
	if err := validateStruct(input); err != nil {
		return RegistrationInput{}, err
	}
	if err := validateLastPeriodDate(input.LastPeriodDate, now); err != nil {
		return RegistrationInput{}, err
	}
	input.LastPeriodDate = DateAtLocation(input.LastPeriodDate, now.Location())
	return input, nil
}

func ValidateCycleSettings(input CycleSettingsInput, now time.Time) (CycleSettingsInput, error) {
	if err := validateStruct(input); err != nil {
		return CycleSettingsInput{}, err
	}
	if input.LastPeriodDate != nil {
		if err := validateLastPeriodDate(*input.LastPeriodDate, now); err != nil {
			return CycleSettingsInput{}, err
		}
		day := DateAtLocation(*input.LastPeriodDate, now.Location())
		input.LastPeriodDate = &day
	}
	return input, nil
}

func ValidateAge(age int) error {
	if age < models.MinAge || age > models.MaxAge {
		return &ValidationError{Field: "age", Err: ErrAgeOutOfRange}
	}
	return nil
}

func ValidatePeriodDuration(duration int) error {
	if duration < models.MinPeriodDuration || duration > models.MaxPeriodDuration {
		return &ValidationError{Field: "period_duration", Err: ErrPeriodDurationOutOfRange}
	}
	return nil
}

func ValidateCycleLength(cycleLength int) error {
	if cycleLength < models.MinCycleLength || cycleLength > models.MaxCycleLength {
		return &ValidationError{Field: "cycle_length", Err: ErrCycleLengthOutOfRange}
	}
	return nil
}

func ValidateEnergyLevel(level int) error {
	if level < models.MinEnergyLevel || level > models.MaxEnergyLevel {
		return &ValidationError{Field: "energy_level", Err: ErrEnergyLevelOutOfRange}
	}
	return nil
}

func validateLastPeriodDate(value time.Time, now time.Time) error {
	if value.IsZero() {
		return &ValidationError{Field: "last_period_date", Err: ErrLastPeriodDateRequired}
	}
	if DateAtLocation(value, now.Location()).After(DateAtLocation(now, now.Location())) {
		return &ValidationError{Field: "last_period_date", Err: ErrLastPeriodInFuture}
	}
	return nil
}

func validateStruct(input any) error {
	err := inputValidator.Struct(input)
	if err == nil {
		return nil
	}

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) || len(validationErrors) == 0 {
		return err
	}

	first := validationErrors[0]
	name, ok := fieldNames[first.StructField()]
	if !ok {
		name = strings.ToLower(first.StructField())
	}
	cause, ok := fieldErrors[first.StructField()]
	if !ok {
		cause = first
	}
	return &ValidationError{Field: name, Err: cause}
}
