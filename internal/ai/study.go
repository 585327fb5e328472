package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

var ErrInvalidResponse = errors.New("invalid AI response format")

const (
	flashcardSystemPrompt = "You are a helpful assistant that generates flashcards for students."
	quizSystemPrompt      = "You are an assistant that generates multiple choice questions for students."
)

const quizOptionCount = 4

type FlashcardDraft struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

type QuizDraft struct {
	Question     string   `json:"question"`
	Options      []string `json:"options"`
	CorrectIndex *int     `json:"correct_index"`
}

// StudyGenerator turns note text into flashcards and quiz questions.
type StudyGenerator struct {
	client Client
}

func NewStudyGenerator(client Client) *StudyGenerator {
	return &StudyGenerator{client: client}
}

// Flashcards returns the well formed cards from the reply. Entries missing a
// question or an answer are skipped.
func (g *StudyGenerator) Flashcards(ctx context.Context, content string, count int) ([]FlashcardDraft, error) {
	raw, err := g.client.GenerateText(ctx, flashcardSystemPrompt, flashcardPrompt(content, count))
	if err != nil {
		return nil, err
	}

	var drafts []FlashcardDraft
	if err := decodeArray(raw, &drafts); err != nil {
		return nil, err
	}

	cards := make([]FlashcardDraft, 0, len(drafts))
	for _, d := range drafts {
		if strings.TrimSpace(d.Question) == "" || strings.TrimSpace(d.Answer) == "" {
			continue
		}
		cards = append(cards, d)
	}

	return cards, nil
}

// Quiz returns the well formed questions from the reply. A question needs
// four options and a correct_index pointing into them.
func (g *StudyGenerator) Quiz(ctx context.Context, content string) ([]QuizDraft, error) {
	raw, err := g.client.GenerateText(ctx, quizSystemPrompt, quizPrompt(content))
	if err != nil {
		return nil, err
	}

	var drafts []QuizDraft
	if err := decodeArray(raw, &drafts); err != nil {
		return nil, err
	}

	questions := make([]QuizDraft, 0, len(drafts))
	for _, d := range drafts {
		if strings.TrimSpace(d.Question) == "" || len(d.Options) != quizOptionCount || d.CorrectIndex == nil {
			continue
		}
		if *d.CorrectIndex < 0 || *d.CorrectIndex >= len(d.Options) {
			continue
		}
		questions = append(questions, d)
	}

	return questions, nil
}

// ExtractJSONArray returns the text between the first '[' and the last ']'.
func ExtractJSONArray(raw string) (string, error) {
	start := strings.Index(raw, "[")
	end := strings.LastIndex(raw, "]")
	if start < 0 || end < start {
		return "", ErrInvalidResponse
	}
	return raw[start : end+1], nil
}

func decodeArray(raw string, v interface{}) error {
	payload, err := ExtractJSONArray(raw)
	if err != nil {
		return err
	}
	if err := json.Unmarshal([]byte(payload), v); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}
	return nil
}

func flashcardPrompt(content string, count int) string {
	return fmt.Sprintf(`Generate %d educational flashcards from the note content below. Return the result as pure JSON only, like this:
[
  {"question": "What is X?", "answer": "It is Y."},
  {"question": "When did Z happen?", "answer": "In 1900."}
]

Note content:
"""%s"""`, count, content)
}

func quizPrompt(content string) string {
	return fmt.Sprintf(`Generate 4 multiple choice questions (MCQs) based on the following note content.

Each question must include:
- A "question" field (string),
- An "options" field as a list of 4 strings (A, B, C, D),
- A "correct_index" field as an integer between 0 and 3.

IMPORTANT:
- "correct_index" must point to the correct answer in "options".
- Return ONLY JSON, no explanation.

Example:
[
  {
    "question": "What is the capital of France?",
    "options": ["Berlin", "Madrid", "Paris", "Rome"],
    "correct_index": 2
  }
]

Note content:
"""%s"""`, content)
}
