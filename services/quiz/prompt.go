package quiz

const (
	QUIZ_SYSTEM_PROMPT = `You are a quiz generator for learners of the Indian Constitution. You produce multiple-choice questions from the topics a learner has already mastered, grounded in the reference material when it is provided.

Respond with ONLY a JSON array, no prose. Each element must have exactly these fields:
- "question": the question text
- "options": an array of 4 answer choices
- "answer": the correct choice, copied verbatim from "options"

Questions must be answerable from the given topics. Do not invent topics the learner has not mastered.`

	QUIZ_USER_PROMPT = `Generate %d multiple-choice questions covering these mastered topics:
%s

Reference material:
%s`

	QUIZ_USER_PROMPT_NO_CONTEXT = `Generate %d multiple-choice questions covering these mastered topics:
%s`
)
