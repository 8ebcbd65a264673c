package i18n

import (
	"context"

	"github.com/mrraes/bewijs/internal/prompt"
	"github.com/mrraes/bewijs/internal/render"
)

// RenderLabels returns the image labels in the context's language.
func RenderLabels(ctx context.Context) render.Labels {
	l := render.DefaultLabels()
	l.Title = T(ctx, "CertificateTitle")
	l.GameFallback = T(ctx, "GameFallback")
	l.Name = T(ctx, "LabelName")
	l.Class = T(ctx, "LabelClass")
	l.GameID = T(ctx, "LabelGameID")
	l.Date = T(ctx, "LabelDate")
	l.Mode = T(ctx, "LabelMode")
	l.Time = T(ctx, "LabelTime")
	l.Score = T(ctx, "LabelScore")
	l.Goals = T(ctx, "LabelGoals")
	l.Accommodations = T(ctx, "LabelAccommodations")
	l.Columns = []string{
		T(ctx, "ColumnNumber"),
		T(ctx, "ColumnQuestion"),
		T(ctx, "ColumnCorrect"),
		T(ctx, "ColumnGiven"),
		T(ctx, "ColumnMark"),
	}
	return l
}

// PromptTexts returns the terminal prompt texts in the context's language.
func PromptTexts(ctx context.Context) prompt.Texts {
	return prompt.Texts{
		StartTest: T(ctx, "StartTest"),
		StartTask: T(ctx, "StartTask"),
		Intro:     T(ctx, "PromptIntro"),
		Name:      T(ctx, "PromptName"),
		Class:     T(ctx, "PromptClass"),
		Required:  T(ctx, "PromptRequired"),
		Yes:       T(ctx, "Yes"),
		No:        T(ctx, "No"),
	}
}
