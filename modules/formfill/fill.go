package formfill

import (
	"context"
	"math/rand"
	"strings"
	"time"
)

// Profile supplies the semantic values Fill maps onto detected fields.
// Keys are semantic (e.g. "email", "phone", "cv_file", "salary_expectation").
type Profile map[string]string

const (
	defaultSalaryExpectation = "según convenio"
	defaultAvailability      = "inmediata"
)

// fillDictionary maps a lowercased label/name substring to a semantic key.
// Closed, data-not-code per spec §9.
var fillDictionary = map[string]string{
	"email":           "email",
	"correo":          "email",
	"teléfono":        "phone",
	"telefono":        "phone",
	"phone":           "phone",
	"tel":             "phone",
	"nombre":          "first_name",
	"first name":      "first_name",
	"apellido":        "last_name",
	"last name":       "last_name",
	"cv":              "cv_file",
	"curriculum":      "cv_file",
	"resume":          "cv_file",
	"salario":         "salary_expectation",
	"salary":          "salary_expectation",
	"pretensión":      "salary_expectation",
	"disponibilidad":  "availability",
	"availability":    "availability",
	"linkedin":        "linkedin_url",
	"portfolio":       "portfolio_url",
}

var typeFallback = map[FieldKind]string{
	KindEmail: "email",
	KindTel:   "phone",
	KindFile:  "cv_file",
}

func semanticKeyFor(f Field) (string, bool) {
	label := strings.ToLower(f.Label)
	name := strings.ToLower(f.Name)
	for substr, key := range fillDictionary {
		if strings.Contains(label, substr) {
			return key, true
		}
	}
	for substr, key := range fillDictionary {
		if strings.Contains(name, substr) {
			return key, true
		}
	}
	if key, ok := typeFallback[f.Kind]; ok {
		return key, true
	}
	return "", false
}

func valueFor(profile Profile, key string) (string, bool) {
	if v, ok := profile[key]; ok && v != "" {
		return v, true
	}
	switch key {
	case "salary_expectation":
		return defaultSalaryExpectation, true
	case "availability":
		return defaultAvailability, true
	}
	return "", false
}

func isTruthy(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "true", "yes", "sí", "si", "1":
		return true
	}
	return false
}

func randomPause(minSeconds, maxSeconds float64) time.Duration {
	d := minSeconds + rand.Float64()*(maxSeconds-minSeconds)
	return time.Duration(d * float64(time.Second))
}

// Fill maps semantic values onto detected fields per spec §4.5 and returns
// ref -> value_written. After each written field it pauses a random
// 0.3-1.5 s to emulate human pacing; the pause is not configurable, and
// cancelling ctx ends Fill early with ctx.Err().
func Fill(ctx context.Context, page Page, fields []Field, profile Profile) (map[string]string, error) {
	written := make(map[string]string)

	for _, f := range fields {
		key, ok := semanticKeyFor(f)
		if !ok {
			continue
		}
		value, ok := valueFor(profile, key)
		if !ok {
			continue
		}

		if err := writeField(ctx, page, f, value); err != nil {
			return written, err
		}
		written[f.Ref] = value

		select {
		case <-ctx.Done():
			return written, ctx.Err()
		case <-time.After(randomPause(0.3, 1.5)):
		}
	}
	return written, nil
}

func writeField(ctx context.Context, page Page, f Field, value string) error {
	switch f.Kind {
	case KindTextarea:
		return page.Type(ctx, f.Ref, value, randDelay(20, 60))
	case KindSelect:
		return fillSelect(ctx, page, f, value)
	case KindRadio:
		if isTruthy(value) {
			return page.Click(ctx, f.Ref)
		}
		return nil
	case KindCheckbox:
		current, err := page.IsChecked(ctx, f.Ref)
		if err != nil {
			return err
		}
		desired := isTruthy(value)
		if current != desired {
			return page.Click(ctx, f.Ref)
		}
		return nil
	case KindFile:
		return page.SetInputFiles(ctx, f.Ref, value)
	case KindRange:
		_, err := page.Evaluate(ctx, `(ref,val)=>{const el=document.querySelector(ref); el.value=val; el.dispatchEvent(new Event('input')); el.dispatchEvent(new Event('change'));}`, f.Ref, value)
		return err
	case KindEmail, KindTel:
		return page.Type(ctx, f.Ref, value, randDelay(40, 100))
	default:
		if len(value) > 30 {
			return page.Type(ctx, f.Ref, value, randDelay(40, 100))
		}
		return page.Fill(ctx, f.Ref, value)
	}
}

func fillSelect(ctx context.Context, page Page, f Field, value string) error {
	lowerValue := strings.ToLower(value)
	for _, opt := range f.Options {
		if strings.ToLower(opt) == lowerValue {
			return page.SelectOption(ctx, f.Ref, opt)
		}
	}
	for _, opt := range f.Options {
		if strings.Contains(strings.ToLower(opt), lowerValue) {
			return page.SelectOption(ctx, f.Ref, opt)
		}
	}
	return nil
}

func randDelay(minMs, maxMs int) int {
	return minMs + rand.Intn(maxMs-minMs+1)
}
