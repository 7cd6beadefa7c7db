package formfill

import (
	"context"
	"strings"
	"time"
)

// Signal is the closed set of Confirm classification outcomes (spec §4.5).
type Signal string

const (
	SignalURLChange          Signal = "url_change"
	SignalErrorDetected       Signal = "error_detected"
	SignalSuccessText         Signal = "success_text"
	SignalFormGone            Signal = "form_gone"
	SignalSubmittedAmbiguous  Signal = "submitted_ambiguous"
)

// ConfirmResult is the outcome of a single Confirm run.
type ConfirmResult struct {
	Confirmed bool
	Signal    Signal
}

// criticalErrorTerms are single-hit positive error signals; any one present
// is sufficient on its own (spec §4.5: "any single critical term... is
// positive").
var criticalErrorTerms = []string{
	"failed",
	"submission failed",
	"could not submit",
	"fallo",
}

// errorPatterns are closed, lowercased substrings; two distinct matches are
// required unless a critical term already fired.
var errorPatterns = []string{
	"ha ocurrido un error",
	"se ha producido un error",
	"inténtalo de nuevo",
	"intentalo de nuevo",
	"try again",
	"something went wrong",
	"no se pudo procesar",
	"invalid input",
	"required field",
	"campo obligatorio",
}

var successPatterns = []string{
	"gracias",
	"thank you",
	"thanks for applying",
	"solicitud enviada",
	"application received",
	"application submitted",
	"hemos recibido tu solicitud",
	"your application has been received",
}

const checkInterval = 500 * time.Millisecond

func hasCriticalError(lower string) bool {
	for _, term := range criticalErrorTerms {
		if strings.Contains(lower, term) {
			return true
		}
	}
	return false
}

func hasErrorPattern(lower string) bool {
	if hasCriticalError(lower) {
		return true
	}
	distinct := 0
	for _, p := range errorPatterns {
		if strings.Contains(lower, p) {
			distinct++
		}
	}
	return distinct >= 2
}

func hasSuccessPattern(lower string) bool {
	for _, p := range successPatterns {
		if strings.Contains(lower, p) {
			return true
		}
	}
	return false
}

// classify applies the fixed precedence order of spec §4.5 to a single
// observation. URL change is checked first: a changed URL reports
// url_change unless the new page text matches an error pattern, in which
// case it reports error_detected. A lone non-critical word such as "error"
// is not an error pattern, which is what makes scenario 7 of spec §8
// ("Confirm precedence") deterministic: a URL change with both "gracias" and
// "error" present still reports url_change.
func classify(startURL, currentURL, currentText string, formElementCountAtStart, currentFormElementCount int) (ConfirmResult, bool) {
	lowerText := strings.ToLower(currentText)
	urlChanged := currentURL != startURL

	if urlChanged {
		if hasErrorPattern(lowerText) {
			return ConfirmResult{Confirmed: false, Signal: SignalErrorDetected}, true
		}
		return ConfirmResult{Confirmed: true, Signal: SignalURLChange}, true
	}
	if hasErrorPattern(lowerText) {
		return ConfirmResult{Confirmed: false, Signal: SignalErrorDetected}, true
	}
	if hasSuccessPattern(lowerText) {
		return ConfirmResult{Confirmed: true, Signal: SignalSuccessText}, true
	}
	if formElementCountAtStart >= 1 && currentFormElementCount == 0 {
		return ConfirmResult{Confirmed: true, Signal: SignalFormGone}, true
	}
	return ConfirmResult{}, false
}

// Confirm polls page every check_interval until timeout, classifying on
// each tick and short-circuiting on the first positive.
func Confirm(ctx context.Context, page Page, startURL string, formElementCountAtStart int, timeout time.Duration, countFormElements func(ctx context.Context, page Page) (int, error)) (ConfirmResult, error) {
	deadline := time.Now().Add(timeout)
	ticker := time.NewTicker(checkInterval)
	defer ticker.Stop()

	for {
		currentURL, err := page.CurrentURL(ctx)
		if err != nil {
			return ConfirmResult{}, err
		}
		currentText, err := page.Text(ctx)
		if err != nil {
			return ConfirmResult{}, err
		}
		currentCount, err := countFormElements(ctx, page)
		if err != nil {
			return ConfirmResult{}, err
		}

		if result, matched := classify(startURL, currentURL, currentText, formElementCountAtStart, currentCount); matched {
			return result, nil
		}

		if time.Now().After(deadline) {
			return ConfirmResult{Confirmed: false, Signal: SignalSubmittedAmbiguous}, nil
		}

		select {
		case <-ctx.Done():
			return ConfirmResult{}, ctx.Err()
		case <-ticker.C:
		}
	}
}
