package topics

import "fmt"

// questionTemplates turn top keywords into candidate research questions.
// Only the first four are used per run.
var questionTemplates = []string{
	"How does %s impact %s in the context of %s?",
	"What are the effects of %s on %s performance?",
	"Can %s be used to improve %s systems?",
	"What is the relationship between %s and %s in %s?",
	"How can %s techniques enhance %s applications?",
	"What are the challenges of implementing %s in %s?",
	"How do %s methods compare to traditional %s approaches?",
	"What factors influence %s adoption in %s environments?",
}

const (
	maxTemplatesUsed = 4
	maxQuestions     = 5
)

// synthesizeQuestions fills the question templates from the top keywords.
// Fewer than three keywords yields no questions.
func synthesizeQuestions(keywords []string) []string {
	if len(keywords) < 3 {
		return nil
	}

	second := "system"
	if len(keywords) > 1 {
		second = keywords[1]
	}
	third := "modern applications"
	if len(keywords) > 2 {
		third = keywords[2]
	}
	args := []any{keywords[0], second, third}

	questions := make([]string, 0, maxTemplatesUsed)
	for _, tmpl := range questionTemplates[:maxTemplatesUsed] {
		n := countVerbs(tmpl)
		questions = append(questions, fmt.Sprintf(tmpl, args[:n]...))
	}

	if len(questions) > maxQuestions {
		questions = questions[:maxQuestions]
	}
	return questions
}

// countVerbs counts %s placeholders in a template.
func countVerbs(tmpl string) int {
	n := 0
	for i := 0; i+1 < len(tmpl); i++ {
		if tmpl[i] == '%' && tmpl[i+1] == 's' {
			n++
		}
	}
	return n
}
