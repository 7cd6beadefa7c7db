package formfill

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmartinez/canje/modules/formfill/fakepage"
)

func TestSnapshotRoundTrip(t *testing.T) {
	page := fakepage.New("https://example.com/apply")
	page.AddField("#email", RawField{Tag: "input", Type: "email", Name: "email", ID: "email", Visible: true})
	page.AddField("#phone", RawField{Tag: "input", Type: "tel", Name: "phone", ID: "phone", Visible: true})

	fields, err := Detect(context.Background(), page)
	require.NoError(t, err)

	profile := Profile{"email": "test@example.com", "phone": "600123456"}
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	written, err := Fill(ctx, page, fields, profile)
	require.NoError(t, err)
	require.NotEmpty(t, written)

	kindByRef := make(map[string]FieldKind)
	for _, f := range fields {
		kindByRef[f.Ref] = f.Kind
	}
	snap, err := BuildSnapshot(context.Background(), page, page.URL, written, kindByRef)
	require.NoError(t, err)

	readBack, err := ReadBack(context.Background(), page, fields)
	require.NoError(t, err)

	for ref, val := range snap.Fields {
		if val == nil {
			continue
		}
		assert.Equal(t, val, readBack[ref], "field %s should read back the snapshot value", ref)
	}
}

func TestConfirm_URLChangeWinsOverErrorText(t *testing.T) {
	page := fakepage.New("https://example.com/apply")
	page.AddField("submit", RawField{Tag: "button", Type: "submit"})
	page.Body = "gracias por tu solicitud, pero ha ocurrido un error inesperado"
	page.ScriptedClick = func(p *fakepage.Page, selector string) {
		p.URL = "https://example.com/apply/thank-you"
	}

	ctx := context.Background()
	require.NoError(t, page.Click(ctx, "submit"))

	result, err := Confirm(ctx, page, "https://example.com/apply", 1, 2*time.Second, fakepage.CountFormElements)
	require.NoError(t, err)
	assert.True(t, result.Confirmed)
	assert.Equal(t, SignalURLChange, result.Signal)
}

func TestConfirm_ErrorDetectedWithoutURLChange(t *testing.T) {
	page := fakepage.New("https://example.com/apply")
	page.Body = "error: invalid campo obligatorio, inténtalo de nuevo"

	result, err := Confirm(context.Background(), page, page.URL, 1, 2*time.Second, fakepage.CountFormElements)
	require.NoError(t, err)
	assert.False(t, result.Confirmed)
	assert.Equal(t, SignalErrorDetected, result.Signal)
}

func TestConfirm_SuccessText(t *testing.T) {
	page := fakepage.New("https://example.com/apply")
	page.Body = "gracias, hemos recibido tu solicitud"

	result, err := Confirm(context.Background(), page, page.URL, 1, 2*time.Second, fakepage.CountFormElements)
	require.NoError(t, err)
	assert.True(t, result.Confirmed)
	assert.Equal(t, SignalSuccessText, result.Signal)
}

func TestConfirm_TimesOutAmbiguous(t *testing.T) {
	page := fakepage.New("https://example.com/apply")
	page.AddField("#name", RawField{Tag: "input", Type: "text", ID: "name"})
	page.Body = "neutral content"

	result, err := Confirm(context.Background(), page, page.URL, 1, 600*time.Millisecond, fakepage.CountFormElements)
	require.NoError(t, err)
	assert.False(t, result.Confirmed)
	assert.Equal(t, SignalSubmittedAmbiguous, result.Signal)
}

func TestFindAndClickSubmit_NoCandidateFound(t *testing.T) {
	page := fakepage.New("https://example.com/apply")
	err := FindAndClickSubmit(context.Background(), page)
	assert.ErrorIs(t, err, ErrSubmitButtonNotFound)
}

func TestDetect_LabelResolutionPrefersAriaLabel(t *testing.T) {
	page := fakepage.New("https://example.com/apply")
	page.AddField("#x", RawField{Tag: "input", Type: "text", AriaLabel: "Full name", Placeholder: "ignored", Visible: true})

	fields, err := Detect(context.Background(), page)
	require.NoError(t, err)
	require.Len(t, fields, 1)
	assert.Equal(t, "Full name", fields[0].Label)
}
