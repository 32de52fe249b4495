package genai

import (
	"fmt"
	"strings"

	"github.com/interviewkit/interview-assistant/internal/model"
)

// System prompts shared by all chat backends.
const (
	QuestionSystemPrompt = "You are an expert question generator in the context of technical interviews."
	TipSystemPrompt      = "You are an expert tip generator in the context of technical interviews."
)

// QuestionPrompt builds the user prompt for question generation. The model
// is asked for a JSON object matching model.QuestionContent.
func QuestionPrompt(req model.QuestionRequest, previous []string) string {
	var b strings.Builder

	fmt.Fprintf(&b, "TASK:\n")
	fmt.Fprintf(&b, "Generate a %s FINAL_QUESTION for a %s to test their skill in %s.\n\n",
		req.QuestionType, req.JobTitle, req.Skill)

	b.WriteString("CONSTRAINTS:\n")
	b.WriteString("Make sure this FINAL_QUESTION includes the following elements:\n")
	b.WriteString("- the expectedAnswer of the FINAL_QUESTION\n")
	b.WriteString("- the expectedDuration to answer the FINAL_QUESTION\n")
	b.WriteString("- a list of generic evaluationCriteria to assess the quality of the answer. " +
		"The evaluationCriteria should be generic and not job-specific, a list of distinct " +
		"and non-overlapping criteria. Do not define the evaluationCriteria, just give keywords.\n\n")

	if len(previous) > 0 {
		b.WriteString("ADDITIONAL CONSTRAINTS:\n")
		b.WriteString("Ensure that this QUESTION is unique and different from the following previously generated questions:\n")
		for i, q := range previous {
			fmt.Fprintf(&b, "- PREVIOUS QUESTION %d was %s\n", i, q)
		}
	}

	b.WriteString("\nFINAL INSTRUCTIONS:\n")
	b.WriteString("Respond with a single JSON object with the keys \"question\", \"expectedAnswer\", " +
		"\"evaluationCriteria\" and \"expectedDuration\". ")
	b.WriteString("Think through your reasoning internally, but do not include any of it in the output. " +
		"Only provide the final JSON object.\n")

	return b.String()
}

// TipPrompt builds the user prompt for tip generation. The stored question
// supplies the generation context.
func TipPrompt(q *model.Question, previous []string) string {
	var b strings.Builder

	b.WriteString("I need you to perform a TASK about this QUESTION:\n")
	b.WriteString(q.Question + "\n\n")

	b.WriteString("CONTEXT:\n")
	fmt.Fprintf(&b, "During a %s interview, this %s QUESTION was asked to test a candidate's %s skill.\n",
		q.Request.JobTitle, q.Request.QuestionType, q.Request.Skill)
	fmt.Fprintf(&b, "The ANSWER to the QUESTION is %s and the candidate will be evaluated on the following criteria: %s.\n\n",
		q.ExpectedAnswer, q.EvaluationCriteria)

	b.WriteString("TASK:\n")
	b.WriteString("Generate one short and concise FINAL_TIP to help the candidate answer the QUESTION. " +
		"Do not reveal the ANSWER to the question; only provide one short consideration to think about.\n\n")

	if len(previous) > 0 {
		b.WriteString("CONSTRAINTS:\n")
		b.WriteString("Ensure that the generated TIP is unique and different from the following tips:\n")
		for i, tip := range previous {
			fmt.Fprintf(&b, "- PREVIOUS TIP %d: %s\n", i, tip)
		}
		b.WriteString("\n")
	}

	b.WriteString("FINAL INSTRUCTIONS:\n")
	b.WriteString("Think through your reasoning internally, but do not include any of it in the output. " +
		"Only provide the final TIP below.\n\nFINAL_TIP:\n")

	return b.String()
}
