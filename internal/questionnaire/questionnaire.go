package questionnaire

import (
	"errors"
	"fmt"

	"github.com/sahasand/talia-colors-website/internal/recommend"
)

var (
	// ErrNoSelection indicates Next was called before the current question was answered.
	ErrNoSelection = errors.New("questionnaire: current question has no answer")
	// ErrIncomplete indicates completion was requested while some answers are missing.
	ErrIncomplete = errors.New("questionnaire: answers incomplete")
	// ErrWrongQuestion indicates a selection for a question other than the current one.
	ErrWrongQuestion = errors.New("questionnaire: question is not current")
)

// Option is one choice of a question. Only Value matters to downstream logic; the keys
// point at presentation strings in the locale bundle.
type Option struct {
	Value          string
	LabelKey       string
	DescriptionKey string
	EmojiKey       string
}

// Question is a single-choice question bound to one answer field.
type Question struct {
	Index          int
	Field          recommend.Field
	TitleKey       string
	DescriptionKey string
	Options        []Option
}

var questions = buildQuestions()

func buildQuestions() []Question {
	out := make([]Question, 0, len(recommend.Fields))
	for i, field := range recommend.Fields {
		prefix := fmt.Sprintf("questionnaire.questions.%d", i)
		values := recommend.Options(field)
		opts := make([]Option, 0, len(values))
		for j, v := range values {
			optPrefix := fmt.Sprintf("%s.options.%d", prefix, j)
			opts = append(opts, Option{
				Value:          v,
				LabelKey:       optPrefix + ".label",
				DescriptionKey: optPrefix + ".description",
				EmojiKey:       optPrefix + ".emoji",
			})
		}
		out = append(out, Question{
			Index:          i,
			Field:          field,
			TitleKey:       prefix + ".title",
			DescriptionKey: prefix + ".description",
			Options:        opts,
		})
	}
	return out
}

// Questions returns the six questions in their fixed order.
func Questions() []Question {
	out := make([]Question, len(questions))
	copy(out, questions)
	return out
}

// Count is the number of questions.
func Count() int { return len(questions) }

// Outcome describes the effect of a navigation intent.
type Outcome int

const (
	// Stayed means the index did not change.
	Stayed Outcome = iota
	// Moved means the index changed within the questionnaire.
	Moved
	// Completed means the last question was confirmed with all answers present.
	Completed
	// BackToUpload means Previous was requested on the first question.
	BackToUpload
)

func (o Outcome) String() string {
	switch o {
	case Moved:
		return "moved"
	case Completed:
		return "completed"
	case BackToUpload:
		return "back_to_upload"
	default:
		return "stayed"
	}
}

// Progress tracks the current question and the answers recorded so far. Answers survive
// backward and forward navigation until overwritten.
type Progress struct {
	index   int
	answers recommend.Answers
}

// New starts at the first question with no answers.
func New() *Progress {
	return &Progress{}
}

// Index returns the zero-based current question index.
func (p *Progress) Index() int { return p.index }

// Current returns the current question.
func (p *Progress) Current() Question { return questions[p.index] }

// Answers returns a copy of the recorded answers.
func (p *Progress) Answers() recommend.Answers { return p.answers }

// Selected returns the recorded value for the current question, or "".
func (p *Progress) Selected() string {
	return p.answers.Get(questions[p.index].Field)
}

// IsLast reports whether the current question is the final one.
func (p *Progress) IsLast() bool { return p.index == len(questions)-1 }

// Percent is the progress through the questionnaire counting the current question.
func (p *Progress) Percent() int {
	return (p.index + 1) * 100 / len(questions)
}

// Select records value for the question at index. Only the current question can be answered.
func (p *Progress) Select(index int, value string) error {
	if index != p.index {
		return fmt.Errorf("%w: got %d, current %d", ErrWrongQuestion, index, p.index)
	}
	return p.answers.Set(questions[index].Field, value)
}

// SelectAndAdvance records value and immediately moves on, the way touch clients behave.
func (p *Progress) SelectAndAdvance(index int, value string) (Outcome, error) {
	if err := p.Select(index, value); err != nil {
		return Stayed, err
	}
	return p.Next()
}

// Next advances to the following question, or reports Completed on the last one once every
// answer is present.
func (p *Progress) Next() (Outcome, error) {
	if p.Selected() == "" {
		return Stayed, ErrNoSelection
	}
	if !p.IsLast() {
		p.index++
		return Moved, nil
	}
	if !p.answers.Complete() {
		return Stayed, ErrIncomplete
	}
	return Completed, nil
}

// Previous moves back one question, or reports BackToUpload on the first.
func (p *Progress) Previous() Outcome {
	if p.index == 0 {
		return BackToUpload
	}
	p.index--
	return Moved
}
