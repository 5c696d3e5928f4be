package transaction

import (
	"errors"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// maxOrderIDLength bounds caller-supplied identifiers so they stay
// usable as journal keys and log fields.
const maxOrderIDLength = 256

// validateOrderID checks the precondition on caller-supplied order
// identifiers: non-empty, not just whitespace, bounded length.
func validateOrderID(orderID string) error {
	return validation.Validate(orderID,
		validation.Required.Error("must not be empty"),
		validation.Length(1, maxOrderIDLength),
		validation.By(notBlank),
	)
}

func notBlank(value interface{}) error {
	s, _ := value.(string)
	if strings.TrimSpace(s) == "" {
		return errors.New("must not be blank")
	}
	return nil
}
