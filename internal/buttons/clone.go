package buttons

import "github.com/Conceptual-Machines/stimulus-api/internal/models"

func cloneButtons(in []models.ButtonDefinition) []models.ButtonDefinition {
	out := make([]models.ButtonDefinition, len(in))
	for i, b := range in {
		out[i] = cloneButton(b)
	}
	return out
}

func cloneButton(b models.ButtonDefinition) models.ButtonDefinition {
	if b.RNGRef != nil {
		ref := *b.RNGRef
		b.RNGRef = &ref
	}
	b.FreqHz = append([]float64{}, b.FreqHz...)
	b.Voices = cloneVoices(b.Voices)
	b.Appearance = cloneAppearance(b.Appearance)
	b.Behavior = cloneBehavior(b.Behavior)
	if b.Layout != nil {
		layout := *b.Layout
		b.Layout = &layout
	}
	if b.Tags != nil {
		b.Tags = append([]string{}, b.Tags...)
	}
	return b
}

func cloneVoices(in []models.ButtonVoice) []models.ButtonVoice {
	out := make([]models.ButtonVoice, len(in))
	for i, v := range in {
		if v.ModelID != nil {
			id := *v.ModelID
			v.ModelID = &id
		}
		if v.Envelope != nil {
			env := *v.Envelope
			v.Envelope = &env
		}
		out[i] = v
	}
	return out
}

func cloneAppearance(a *models.ButtonAppearance) *models.ButtonAppearance {
	if a == nil {
		return nil
	}
	out := *a
	if a.Border != nil {
		border := *a.Border
		out.Border = &border
	}
	return &out
}

func cloneBehavior(b *models.ButtonBehavior) *models.ButtonBehavior {
	if b == nil {
		return nil
	}
	out := *b
	if b.ReactiveColor != nil {
		rc := *b.ReactiveColor
		out.ReactiveColor = &rc
	}
	if b.LightFeedback != nil {
		lf := *b.LightFeedback
		out.LightFeedback = &lf
	}
	return &out
}
