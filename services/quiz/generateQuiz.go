package quiz

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"policypath/models"

	"github.com/samber/lo"
	"github.com/tmc/langchaingo/llms"
)

func (s *Service) generateQuestions(ctx context.Context, topics []string) ([]models.QuizQuestion, error) {
	prompt := s.buildQuizPrompt(topics)

	log.Printf("[INFO] Calling LLM for quiz generation over %d topics", len(topics))
	completion, err := llms.GenerateFromSinglePrompt(ctx, s.llm, prompt, llms.WithTemperature(0.7))
	if err != nil {
		log.Printf("[ERROR] Failed to generate quiz payload: %v", err)
		return nil, fmt.Errorf("failed to generate quiz payload: %w", err)
	}

	questions, err := parseQuizPayload(completion)
	if err != nil {
		log.Printf("[ERROR] Failed to parse quiz payload: %v", err)
		return nil, err
	}

	log.Printf("[INFO] Successfully generated %d quiz questions", len(questions))
	return questions, nil
}

func (s *Service) buildQuizPrompt(topics []string) string {
	topicList := strings.Join(lo.Map(topics, func(topic string, _ int) string {
		return "- " + topic
	}), "\n")

	if s.retriever != nil {
		chunks, err := s.retriever.QueryTopicChunks(topics, maxQuestions+5)
		if err != nil {
			log.Printf("[WARN] Reference retrieval failed, generating without context: %v", err)
		} else if len(chunks) > 0 {
			combined := strings.Join(chunks, "\n\n=== CHUNK SEPARATOR ===\n\n")
			return QUIZ_SYSTEM_PROMPT + "\n\n" + fmt.Sprintf(QUIZ_USER_PROMPT, maxQuestions, topicList, combined)
		}
	}

	return QUIZ_SYSTEM_PROMPT + "\n\n" + fmt.Sprintf(QUIZ_USER_PROMPT_NO_CONTEXT, maxQuestions, topicList)
}

// parseQuizPayload extracts the JSON question array from a model reply.
// The reply may wrap the array in a markdown code fence or surround it with
// prose; only questions with at least two options and an answer drawn from
// those options survive. At least one surviving question is required.
func parseQuizPayload(raw string) ([]models.QuizQuestion, error) {
	payload := stripCodeFence(raw)

	start := strings.Index(payload, "[")
	end := strings.LastIndex(payload, "]")
	if start < 0 || end < start {
		return nil, fmt.Errorf("no JSON array in quiz payload")
	}
	payload = payload[start : end+1]

	var questions []models.QuizQuestion
	if err := json.Unmarshal([]byte(payload), &questions); err != nil {
		return nil, fmt.Errorf("failed to decode quiz payload: %w", err)
	}

	valid := lo.Filter(questions, func(q models.QuizQuestion, _ int) bool {
		return wellFormed(q)
	})
	if len(valid) == 0 {
		return nil, fmt.Errorf("quiz payload contained no well-formed questions")
	}

	if len(valid) > maxQuestions {
		valid = valid[:maxQuestions]
	}

	return valid, nil
}

func wellFormed(q models.QuizQuestion) bool {
	if strings.TrimSpace(q.Question) == "" || len(q.Options) < 2 {
		return false
	}
	return lo.Contains(q.Options, q.Answer)
}

func stripCodeFence(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}

	trimmed = strings.TrimPrefix(trimmed, "```json")
	trimmed = strings.TrimPrefix(trimmed, "```")
	trimmed = strings.TrimSuffix(strings.TrimSpace(trimmed), "```")
	return strings.TrimSpace(trimmed)
}
