package types

import (
	"errors"
	"fmt"
)

var (
	// ErrNoBillingTable is returned when no billing export table could be
	// resolved from flags, config file or environment.
	ErrNoBillingTable = errors.New("no billing export table configured. Set billing_project, billing_dataset and billing_table")
)

// MalformedRecordError marks a warehouse row that cannot become a line
// item. It is recoverable: the row is counted, skipped and the run
// continues.
type MalformedRecordError struct {
	Field  string
	Reason string
}

func (e *MalformedRecordError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("malformed record: field %q %s", e.Field, e.Reason)
	}
	return fmt.Sprintf("malformed record: %s", e.Reason)
}

// IsMalformedRecord reports whether err is a MalformedRecordError.
func IsMalformedRecord(err error) bool {
	var target *MalformedRecordError
	return errors.As(err, &target)
}

// CurrencyMismatchError marks rows reporting different currencies within
// one run. It is fatal: sums across currencies are meaningless.
type CurrencyMismatchError struct {
	Want string
	Got  string
}

func (e *CurrencyMismatchError) Error() string {
	return fmt.Sprintf("currency mismatch: run is in %s but a row reports %s", e.Want, e.Got)
}

// IsCurrencyMismatch reports whether err is a CurrencyMismatchError.
func IsCurrencyMismatch(err error) bool {
	var target *CurrencyMismatchError
	return errors.As(err, &target)
}

// ConfigurationError marks an invalid or incomplete run configuration.
// It is raised before any row is processed.
type ConfigurationError struct {
	Option string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration error: %s: %s", e.Option, e.Reason)
}

// IsConfigurationError reports whether err is a ConfigurationError.
func IsConfigurationError(err error) bool {
	var target *ConfigurationError
	return errors.As(err, &target)
}
