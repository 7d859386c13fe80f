package generator

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/policy-play/backend/internal/models"
)

// Wrong options per falling-ball question, by level.
var fallingBallWrongCounts = map[models.Level]int{
	models.LevelBeginner:     2,
	models.LevelIntermediate: 3,
	models.LevelExpert:       4,
}

const (
	minQuestionChars = 10
	minAnswerChars   = 3
)

// looseQuestion tolerates the field-name spellings models actually emit.
type looseQuestion struct {
	Question      string   `json:"question"`
	QuestionText  string   `json:"questionText"`
	Correct       string   `json:"correct"`
	CorrectAnswer string   `json:"correctAnswer"`
	CorrectOption string   `json:"correct_option"`
	WrongOptions  []string `json:"wrongOptions"`
	WrongSnake    []string `json:"wrong_options"`
}

func (q looseQuestion) normalize() models.FallingBallQuestion {
	question := q.Question
	if question == "" {
		question = q.QuestionText
	}
	correct := q.Correct
	if correct == "" {
		correct = q.CorrectAnswer
	}
	if correct == "" {
		correct = q.CorrectOption
	}
	wrong := q.WrongOptions
	if len(wrong) == 0 {
		wrong = q.WrongSnake
	}
	return models.FallingBallQuestion{
		Question:     strings.TrimSpace(question),
		Correct:      strings.TrimSpace(correct),
		WrongOptions: wrong,
	}
}

// GenerateFallingBallQuestions always returns exactly count questions.
// Parsed questions that are too short to play are discarded; shortfall
// is made up by synthesizing questions from the policy's rules, and the
// whole batch is synthetic when generation fails outright.
func (g *Generator) GenerateFallingBallQuestions(ctx context.Context, p *models.StructuredPolicy, level models.Level, count int) []models.FallingBallQuestion {
	wrongCount, ok := fallingBallWrongCounts[level]
	if !ok {
		wrongCount = fallingBallWrongCounts[models.LevelBeginner]
	}

	questions := g.requestFallingBall(ctx, p, count, wrongCount)

	kept := make([]models.FallingBallQuestion, 0, count)
	for _, q := range questions {
		if len(q.Question) < minQuestionChars || len(q.Correct) < minAnswerChars {
			continue
		}
		q.WrongOptions = padWrongOptions(q.WrongOptions, wrongCount)
		kept = append(kept, q)
		if len(kept) == count {
			break
		}
	}

	for i := 0; len(kept) < count; i++ {
		kept = append(kept, syntheticQuestion(p, i, wrongCount))
	}

	return kept
}

func (g *Generator) requestFallingBall(ctx context.Context, p *models.StructuredPolicy, count, wrongCount int) []models.FallingBallQuestion {
	resp, err := g.llm.Generate(ctx, GenerateRequest{
		System:      PuzzleSystemPrompt(),
		Prompt:      BuildFallingBallPrompt(p, count, wrongCount),
		Temperature: 0.7,
		MaxTokens:   4096,
	})
	if err != nil {
		log.Printf("[generator] WARN: falling ball generation failed, synthesizing batch: %v", err)
		return nil
	}

	var loose []looseQuestion
	if err := decodeList(resp.Content, &loose); err != nil {
		// Some responses are a single bare question object.
		var one looseQuestion
		if err2 := decodeJSON(resp.Content, &one); err2 != nil {
			log.Printf("[generator] WARN: falling ball response unusable: %v", err)
			return nil
		}
		loose = []looseQuestion{one}
	}

	out := make([]models.FallingBallQuestion, 0, len(loose))
	for _, q := range loose {
		out = append(out, q.normalize())
	}
	return out
}

// syntheticQuestion builds a fallback question, cycling through the
// policy's rules, or fully generic when the policy has none.
func syntheticQuestion(p *models.StructuredPolicy, i, wrongCount int) models.FallingBallQuestion {
	if len(p.Rules) > 0 {
		rule := p.Rules[i%len(p.Rules)]
		return models.FallingBallQuestion{
			Question: fmt.Sprintf("Which of these is a rule from %q?", p.TitleOrDefault()),
			Correct:  rule,
			WrongOptions: padWrongOptions([]string{
				"Employees may decide case by case",
				"The policy does not cover this",
			}, wrongCount),
		}
	}
	return models.FallingBallQuestion{
		Question: "What document do these questions come from?",
		Correct:  p.TitleOrDefault(),
		WrongOptions: padWrongOptions([]string{
			"An unrelated policy",
			"The employee handbook index",
		}, wrongCount),
	}
}
