// Package validation provides common validation utilities.
package validation

import (
	"fmt"

	"github.com/iwvelando/loan-calculator/pkg/constants"
)

// ValidateOutputFormat checks if the output format is one of the supported formats.
func ValidateOutputFormat(format string) error {
	if format != constants.OutputFormatPretty && format != constants.OutputFormatJSON {
		return fmt.Errorf("expected output format of %s or %s, got %s",
			constants.OutputFormatPretty, constants.OutputFormatJSON, format)
	}
	return nil
}

// ValidatePaymentMethod checks that method names a supported repayment method.
func ValidatePaymentMethod(method string) error {
	if method != constants.PaymentMethodBank && method != constants.PaymentMethodCash {
		return fmt.Errorf("expected payment method of %s or %s, got %s",
			constants.PaymentMethodBank, constants.PaymentMethodCash, method)
	}
	return nil
}
