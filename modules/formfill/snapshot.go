package formfill

import "context"

// Snapshot is the serialized field map spec §9 describes: "{ref: string ->
// value: string | bool}". File inputs store their source path.
type Snapshot struct {
	FormURL string
	Fields  map[string]any
}

// BuildSnapshot converts the ref->value map Fill produced into a Snapshot,
// reading back checkbox/radio state as bool per the design note.
func BuildSnapshot(ctx context.Context, page Page, formURL string, written map[string]string, fieldKind map[string]FieldKind) (Snapshot, error) {
	snap := Snapshot{FormURL: formURL, Fields: make(map[string]any, len(written))}
	for ref, value := range written {
		switch fieldKind[ref] {
		case KindCheckbox, KindRadio:
			checked, err := page.IsChecked(ctx, ref)
			if err != nil {
				snap.Fields[ref] = isTruthy(value)
				continue
			}
			snap.Fields[ref] = checked
		default:
			snap.Fields[ref] = value
		}
	}
	return snap, nil
}

// Replay re-applies a Snapshot's values to a page's current fields,
// tolerating missing selectors (spec §9: "Replay must tolerate missing
// selectors").
func Replay(ctx context.Context, page Page, snap Snapshot) error {
	for ref, value := range snap.Fields {
		found, err := page.QuerySelector(ctx, ref)
		if err != nil || !found {
			continue
		}
		switch v := value.(type) {
		case bool:
			current, err := page.IsChecked(ctx, ref)
			if err == nil && current != v {
				_ = page.Click(ctx, ref)
			}
		case string:
			_ = page.Fill(ctx, ref, v)
		}
	}
	return nil
}

// ReadBack reads the current value of every non-file field (hidden ones
// included), for the round-trip test property (spec §8): "Detect -> Fill ->
// Snapshot -> Replay produces field reads equal to the snapshot values".
func ReadBack(ctx context.Context, page Page, fields []Field) (map[string]any, error) {
	out := make(map[string]any, len(fields))
	for _, f := range fields {
		if f.Kind == KindFile {
			continue
		}
		switch f.Kind {
		case KindCheckbox, KindRadio:
			checked, err := page.IsChecked(ctx, f.Ref)
			if err != nil {
				continue
			}
			out[f.Ref] = checked
		default:
			val, err := page.Evaluate(ctx, `(ref)=>document.querySelector(ref)?.value`, f.Ref)
			if err != nil {
				continue
			}
			out[f.Ref] = val
		}
	}
	return out, nil
}
