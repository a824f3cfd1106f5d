package main

import (
	"fmt"
	"html/template"

	"github.com/sahasand/talia-colors-website/internal/intake"
	"github.com/sahasand/talia-colors-website/internal/questionnaire"
	"github.com/sahasand/talia-colors-website/internal/recommend"
	"github.com/sahasand/talia-colors-website/internal/workflow"
)

// StageItem is one entry of the stage indicator.
type StageItem struct {
	Number   int
	TitleKey string
	IconKey  string
	Active   bool
	Done     bool
}

// OptionView is a question option with its selection state.
type OptionView struct {
	Value          string
	LabelKey       string
	DescriptionKey string
	EmojiKey       string
	Selected       bool
}

// QuestionView is the current question of the questionnaire stage.
type QuestionView struct {
	Index          int
	Number         int
	Count          int
	TitleKey       string
	DescriptionKey string
	Options        []OptionView
	Selected       string
	IsLast         bool
	IsFirst        bool
	Percent        int
}

// ProcessingStepView is one line of the analysis checklist.
type ProcessingStepView struct {
	MessageKey string
	Done       bool
	Active     bool
}

// ProcessingView is the processing stage status.
type ProcessingView struct {
	Percent    int
	MessageKey string
	Steps      []ProcessingStepView
	Remaining  string
}

// ResultView is one recommendation ready for display.
type ResultView struct {
	Rec         recommend.ColorRecommendation
	Description template.HTML
	Process     template.HTML
	BookURL     string
}

// ProfileRow is one answered field in the analysis profile.
type ProfileRow struct {
	LabelKey string
	ValueKey string
	EmojiKey string
}

// ResultsView is the results stage.
type ResultsView struct {
	Best           *ResultView
	Others         []ResultView
	NoMatch        bool
	Profile        []ProfileRow
	GeneralBookURL string
}

// PickerView is everything the color picker fragment renders.
type PickerView struct {
	Lang      string
	CSRFToken string
	Stage     string
	Stages    []StageItem
	ErrorKey  string
	Photo     *intake.Photo

	Question   *QuestionView
	Processing *ProcessingView
	Results    *ResultsView
}

// buildPickerView turns a workflow snapshot into the template view model.
func (s *server) buildPickerView(v workflow.View, lang, csrf, errKey string) PickerView {
	pv := PickerView{
		Lang:      lang,
		CSRFToken: csrf,
		Stage:     string(v.Stage),
		ErrorKey:  errKey,
		Photo:     v.Photo,
	}
	current := v.Stage.Index()
	for i := range workflow.Stages {
		pv.Stages = append(pv.Stages, StageItem{
			Number:   i + 1,
			TitleKey: fmt.Sprintf("aiColorPicker.workflow.steps.%d.title", i),
			IconKey:  fmt.Sprintf("aiColorPicker.workflow.steps.%d.icon", i),
			Active:   i == current,
			Done:     i < current,
		})
	}

	switch v.Stage {
	case workflow.StageQuestionnaire:
		pv.Question = questionView(v)
	case workflow.StageProcessing:
		pv.Processing = s.processingView(v.Processing)
	case workflow.StageResults:
		pv.Results = s.resultsView(v, lang)
	}
	return pv
}

func questionView(v workflow.View) *QuestionView {
	q := v.Question
	qv := &QuestionView{
		Index:          v.QuestionIndex,
		Number:         v.QuestionIndex + 1,
		Count:          v.QuestionCount,
		TitleKey:       q.TitleKey,
		DescriptionKey: q.DescriptionKey,
		Selected:       v.Selected,
		IsLast:         v.IsLast,
		IsFirst:        v.QuestionIndex == 0,
		Percent:        v.Percent,
	}
	for _, o := range q.Options {
		qv.Options = append(qv.Options, OptionView{
			Value:          o.Value,
			LabelKey:       o.LabelKey,
			DescriptionKey: o.DescriptionKey,
			EmojiKey:       o.EmojiKey,
			Selected:       o.Value == v.Selected,
		})
	}
	return qv
}

func (s *server) processingView(st workflow.Status) *ProcessingView {
	pv := &ProcessingView{
		Percent:    st.Percent,
		MessageKey: st.Step.MessageKey,
		Remaining:  fmt.Sprintf("%.0f", st.Remaining.Seconds()),
	}
	for i, step := range s.sim.Steps() {
		pv.Steps = append(pv.Steps, ProcessingStepView{
			MessageKey: step.MessageKey,
			Done:       st.Done || i < st.StepIndex,
			Active:     !st.Done && i == st.StepIndex,
		})
	}
	if pv.MessageKey == "" && len(pv.Steps) > 0 {
		pv.MessageKey = pv.Steps[0].MessageKey
	}
	return pv
}

func (s *server) resultsView(v workflow.View, lang string) *ResultsView {
	rv := &ResultsView{
		NoMatch:        v.NoMatch,
		Profile:        profileRows(v.Answers),
		GeneralBookURL: s.booking.GeneralURL(s.bundle, lang),
	}
	for i, rec := range v.Recommendations {
		item := ResultView{
			Rec:         rec,
			Description: s.rich.Inline(rec.Description),
			Process:     s.rich.Inline(rec.Process),
			BookURL:     s.booking.URL(s.bundle, lang, rec.Name),
		}
		if i == 0 {
			rv.Best = &item
			continue
		}
		rv.Others = append(rv.Others, item)
	}
	return rv
}

// profileRows maps each answer back to the option that produced it.
func profileRows(a recommend.Answers) []ProfileRow {
	var rows []ProfileRow
	for _, q := range questionnaire.Questions() {
		value := a.Get(q.Field)
		if value == "" {
			continue
		}
		row := ProfileRow{LabelKey: "colorRecommendations.analysisProfile.fields." + string(q.Field)}
		for _, o := range q.Options {
			if o.Value == value {
				row.ValueKey = o.LabelKey
				row.EmojiKey = o.EmojiKey
			}
		}
		rows = append(rows, row)
	}
	return rows
}
