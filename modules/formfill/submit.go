package formfill

import (
	"context"
	"errors"
)

// ErrSubmitButtonNotFound is returned when no candidate selector resolves
// to a visible element (spec §4.6: "returns error with
// submit_button_not_found").
var ErrSubmitButtonNotFound = errors.New("submit_button_not_found")

// submitSelectors is the fixed, ordered candidate list spec §4.6 names:
// typed submit inputs and buttons, then text-content verb matches in
// Spanish and English, then common test markers.
var submitSelectors = []string{
	`input[type="submit"]`,
	`button[type="submit"]`,
	`button:has-text("enviar")`,
	`button:has-text("aplicar")`,
	`button:has-text("solicitar")`,
	`button:has-text("inscribirme")`,
	`button:has-text("submit")`,
	`button:has-text("apply")`,
	`[data-testid="submit"]`,
	`[data-testid="submit-button"]`,
	`.submit-button`,
	`.btn-submit`,
}

// FindAndClickSubmit tries each candidate selector in order and clicks the
// first one that resolves to a visible element.
func FindAndClickSubmit(ctx context.Context, page Page) error {
	for _, selector := range submitSelectors {
		found, err := page.QuerySelector(ctx, selector)
		if err != nil || !found {
			continue
		}
		if err := page.Click(ctx, selector); err != nil {
			continue
		}
		return nil
	}
	return ErrSubmitButtonNotFound
}
